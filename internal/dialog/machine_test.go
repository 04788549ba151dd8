package dialog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/hotelbot/internal/hotels"
	"github.com/m3rciful/hotelbot/internal/storage"
)

// fakeRepo keeps sessions in insertion order and resolves "latest" by the
// maximum start timestamp, matching the Postgres repository.
type fakeRepo struct {
	sessions map[int64][]*storage.Session
	history  map[int64][]*storage.History
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		sessions: make(map[int64][]*storage.Session),
		history:  make(map[int64][]*storage.History),
	}
}

func (r *fakeRepo) CreateSession(_ context.Context, chatID int64, kind storage.Kind, currency string, startedAt int64) error {
	r.sessions[chatID] = append(r.sessions[chatID], &storage.Session{
		ChatID:    chatID,
		Kind:      kind,
		Status:    storage.StatusActive,
		Currency:  currency,
		StartedAt: startedAt,
	})
	return nil
}

func (r *fakeRepo) latest(chatID int64) *storage.Session {
	var best *storage.Session
	for _, s := range r.sessions[chatID] {
		if best == nil || s.StartedAt > best.StartedAt {
			best = s
		}
	}
	return best
}

func (r *fakeRepo) UpdateSession(_ context.Context, chatID int64, field storage.Field, value any) error {
	if err := field.Validate(); err != nil {
		return err
	}
	s := r.latest(chatID)
	if s == nil {
		return nil
	}
	switch field {
	case storage.FieldLang:
		s.Lang = value.(string)
	case storage.FieldCity:
		s.City = value.(string)
	case storage.FieldLocation:
		s.LocationID = value.(string)
	case storage.FieldHotelCount:
		s.HotelCount = value.(int)
	case storage.FieldPersons:
		s.Persons = value.(string)
	case storage.FieldCheckIn:
		s.CheckIn = value.(string)
	case storage.FieldCheckOut:
		s.CheckOut = value.(string)
	case storage.FieldPriceMax:
		s.PriceMax = value.(int)
	case storage.FieldMaxDistance:
		s.MaxDistance = value.(float64)
	case storage.FieldStatus:
		s.Status = value.(storage.Status)
	}
	return nil
}

func (r *fakeRepo) LatestSession(_ context.Context, chatID int64) (*storage.Session, error) {
	if s := r.latest(chatID); s != nil {
		return s, nil
	}
	return nil, storage.ErrNotFound
}

func (r *fakeRepo) SessionAt(_ context.Context, chatID int64, startedAt int64) (*storage.Session, error) {
	for _, s := range r.sessions[chatID] {
		if s.StartedAt == startedAt {
			return s, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (r *fakeRepo) CreateHistory(_ context.Context, chatID int64, offers []byte, startedAt int64) error {
	r.history[chatID] = append(r.history[chatID], &storage.History{
		ChatID:    chatID,
		Offers:    offers,
		StartedAt: startedAt,
	})
	return nil
}

func (r *fakeRepo) LatestHistory(_ context.Context, chatID int64) (*storage.History, error) {
	var best *storage.History
	for _, h := range r.history[chatID] {
		if best == nil || h.StartedAt > best.StartedAt {
			best = h
		}
	}
	if best == nil {
		return nil, storage.ErrNotFound
	}
	return best, nil
}

type fakeFinder struct {
	locations []hotels.Location
	offers    []hotels.Offer
	details   string
	photos    []string

	searchParams []hotels.SearchParams
	detailParams []hotels.DetailParams
}

func (f *fakeFinder) SearchLocations(_ context.Context, _, _ string) []hotels.Location {
	return f.locations
}

func (f *fakeFinder) SearchProperties(_ context.Context, p hotels.SearchParams) []hotels.Offer {
	f.searchParams = append(f.searchParams, p)
	return f.offers
}

func (f *fakeFinder) PropertyDetails(_ context.Context, p hotels.DetailParams) string {
	f.detailParams = append(f.detailParams, p)
	return f.details
}

func (f *fakeFinder) PropertyPhotos(_ context.Context, _ string) []string {
	return f.photos
}

var testNow = time.Date(2026, time.August, 30, 12, 0, 0, 0, time.Local)

// newTestMachine pins the clock to testNow, ticking a microsecond per
// read so consecutive sessions never share a start timestamp.
func newTestMachine(repo storage.Repository, api Finder) *Machine {
	var tick int64
	return NewMachine(repo, api, "RUB").WithClock(func() time.Time {
		tick++
		return testNow.Add(time.Duration(tick) * time.Microsecond)
	})
}

const chatID = int64(42)

func ctxb() context.Context { return context.Background() }

func TestStartSearchAbortsPreviousActive(t *testing.T) {
	repo := newFakeRepo()
	m := newTestMachine(repo, &fakeFinder{})

	res := m.StartSearch(ctxb(), chatID, storage.KindLowPrice)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, msgAskLocale, res.Messages[0].Text)
	require.Len(t, res.Messages[0].Buttons, 2)
	assert.Equal(t, hotels.LocaleRU, res.Messages[0].Buttons[0].Payload)
	assert.Equal(t, StepNone, res.Next)

	m.StartSearch(ctxb(), chatID, storage.KindBestDeal)

	require.Len(t, repo.sessions[chatID], 2)
	assert.Equal(t, storage.StatusAborted, repo.sessions[chatID][0].Status)
	assert.Equal(t, storage.StatusActive, repo.sessions[chatID][1].Status)
	assert.Equal(t, storage.KindBestDeal, repo.latest(chatID).Kind)
}

func TestAbandonLeavesCompletedAlone(t *testing.T) {
	repo := newFakeRepo()
	m := newTestMachine(repo, &fakeFinder{})

	m.StartSearch(ctxb(), chatID, storage.KindLowPrice)
	require.NoError(t, repo.UpdateSession(ctxb(), chatID, storage.FieldStatus, storage.StatusCompleted))

	m.Abandon(ctxb(), chatID)
	assert.Equal(t, storage.StatusCompleted, repo.latest(chatID).Status)
}

func TestSubmitCityNotFound(t *testing.T) {
	repo := newFakeRepo()
	m := newTestMachine(repo, &fakeFinder{})
	m.StartSearch(ctxb(), chatID, storage.KindLowPrice)
	m.ChooseLanguage(ctxb(), chatID, hotels.LocaleRU)

	res := m.SubmitCity(ctxb(), chatID, "Nowhere")
	assert.Equal(t, StepCity, res.Next)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, msgCityNotFound, res.Messages[0].Text)
}

func TestSubmitCitySingleMatchAdvances(t *testing.T) {
	repo := newFakeRepo()
	api := &fakeFinder{locations: []hotels.Location{{Caption: "Paris, France", DestinationID: "100"}}}
	m := newTestMachine(repo, api)
	m.StartSearch(ctxb(), chatID, storage.KindLowPrice)
	m.ChooseLanguage(ctxb(), chatID, hotels.LocaleEN)

	res := m.SubmitCity(ctxb(), chatID, "Paris")
	assert.Equal(t, StepHotelCount, res.Next)
	assert.Equal(t, "100", repo.latest(chatID).LocationID)
	assert.Equal(t, "Paris", repo.latest(chatID).City)
	require.Len(t, res.Messages, 2)
	assert.Equal(t, kindIntro[storage.KindLowPrice], res.Messages[0].Text)
	assert.Equal(t, msgAskHotelCount, res.Messages[1].Text)
}

func TestSubmitCityAmbiguousShowsKeyboard(t *testing.T) {
	repo := newFakeRepo()
	api := &fakeFinder{locations: []hotels.Location{
		{Caption: "Paris, France", DestinationID: "100"},
		{Caption: "Paris, Texas", DestinationID: "200"},
	}}
	m := newTestMachine(repo, api)
	m.StartSearch(ctxb(), chatID, storage.KindLowPrice)
	m.ChooseLanguage(ctxb(), chatID, hotels.LocaleEN)

	res := m.SubmitCity(ctxb(), chatID, "Paris")
	assert.Equal(t, StepNone, res.Next)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, msgCityAmbiguous, res.Messages[0].Text)
	require.Len(t, res.Messages[0].Buttons, 2)
	assert.Equal(t, KeyCity, res.Messages[0].Buttons[0].Key)
	assert.Equal(t, "200", res.Messages[0].Buttons[1].Payload)
}

func TestSubmitHotelCountValidation(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"abc", msgBadInput},
		{"2.5", msgBadInput},
		{"-3", msgBadInput},
		{"", msgBadInput},
		{"0", msgBadHotelCount},
		{"26", msgBadHotelCount},
	}
	for _, tc := range cases {
		repo := newFakeRepo()
		m := newTestMachine(repo, &fakeFinder{})
		m.StartSearch(ctxb(), chatID, storage.KindLowPrice)

		res := m.SubmitHotelCount(ctxb(), chatID, tc.input)
		assert.Equal(t, StepHotelCount, res.Next, tc.input)
		require.Len(t, res.Messages, 1, tc.input)
		assert.Equal(t, tc.want, res.Messages[0].Text, tc.input)
	}
}

func TestSubmitHotelCountBranchesByKind(t *testing.T) {
	repo := newFakeRepo()
	m := newTestMachine(repo, &fakeFinder{})

	m.StartSearch(ctxb(), chatID, storage.KindLowPrice)
	res := m.SubmitHotelCount(ctxb(), chatID, "5")
	assert.Equal(t, StepPersons, res.Next)
	assert.Equal(t, 5, repo.latest(chatID).HotelCount)

	m.StartSearch(ctxb(), chatID, storage.KindBestDeal)
	res = m.SubmitHotelCount(ctxb(), chatID, "25")
	assert.Equal(t, StepDistance, res.Next)
}

func TestBestDealDistanceAndPrice(t *testing.T) {
	repo := newFakeRepo()
	m := newTestMachine(repo, &fakeFinder{})
	m.StartSearch(ctxb(), chatID, storage.KindBestDeal)
	m.SubmitHotelCount(ctxb(), chatID, "3")

	res := m.SubmitDistance(ctxb(), chatID, "not a number")
	assert.Equal(t, StepDistance, res.Next)
	assert.Equal(t, msgBadDistance, res.Messages[0].Text)

	res = m.SubmitDistance(ctxb(), chatID, "2")
	assert.Equal(t, StepPriceCeiling, res.Next)
	assert.Equal(t, 2.0, repo.latest(chatID).MaxDistance)

	res = m.SubmitPriceCeiling(ctxb(), chatID, "дорого")
	assert.Equal(t, StepPriceCeiling, res.Next)
	assert.Equal(t, msgBadMaxPrice, res.Messages[0].Text)

	res = m.SubmitPriceCeiling(ctxb(), chatID, "3000")
	assert.Equal(t, StepPersons, res.Next)
	assert.Equal(t, 3000, repo.latest(chatID).PriceMax)
}

func TestSubmitPersonsOpensCheckInCalendar(t *testing.T) {
	repo := newFakeRepo()
	m := newTestMachine(repo, &fakeFinder{})
	m.StartSearch(ctxb(), chatID, storage.KindLowPrice)

	res := m.SubmitPersons(ctxb(), chatID, " 2 взрослых ")
	assert.Equal(t, StepNone, res.Next)
	require.Len(t, res.Messages, 1)
	require.NotNil(t, res.Messages[0].Calendar)
	assert.Equal(t, CalendarCheckIn, res.Messages[0].Calendar.Name)
	assert.Equal(t, "2 взрослых", repo.latest(chatID).Persons)
}

func TestPickDateRejectsPastCheckIn(t *testing.T) {
	repo := newFakeRepo()
	m := newTestMachine(repo, &fakeFinder{})
	m.StartSearch(ctxb(), chatID, storage.KindLowPrice)

	res := m.PickDate(ctxb(), chatID, CalendarCheckIn, testNow.AddDate(0, 0, -1))
	require.Len(t, res.Messages, 3)
	assert.Equal(t, msgCheckInPast, res.Messages[0].Text)
	require.NotNil(t, res.Messages[2].Calendar)
	assert.Equal(t, CalendarCheckIn, res.Messages[2].Calendar.Name)
	assert.Empty(t, repo.latest(chatID).CheckIn)
}

func TestPickDateAcceptsToday(t *testing.T) {
	repo := newFakeRepo()
	m := newTestMachine(repo, &fakeFinder{})
	m.StartSearch(ctxb(), chatID, storage.KindLowPrice)

	today := time.Date(testNow.Year(), testNow.Month(), testNow.Day(), 0, 0, 0, 0, time.Local)
	res := m.PickDate(ctxb(), chatID, CalendarCheckIn, today)
	require.Len(t, res.Messages, 1)
	require.NotNil(t, res.Messages[0].Calendar)
	assert.Equal(t, CalendarCheckOut, res.Messages[0].Calendar.Name)
	assert.Equal(t, "2026-08-30", repo.latest(chatID).CheckIn)
}

func TestPickDateRejectsCheckOutNotAfterCheckIn(t *testing.T) {
	repo := newFakeRepo()
	m := newTestMachine(repo, &fakeFinder{})
	m.StartSearch(ctxb(), chatID, storage.KindLowPrice)

	checkIn := testNow.AddDate(0, 0, 2)
	m.PickDate(ctxb(), chatID, CalendarCheckIn, checkIn)

	res := m.PickDate(ctxb(), chatID, CalendarCheckOut, checkIn)
	assert.Equal(t, msgCheckOutEarly, res.Messages[0].Text)
	assert.Empty(t, repo.latest(chatID).CheckOut)

	res = m.PickDate(ctxb(), chatID, CalendarCheckOut, checkIn.AddDate(0, 0, -1))
	assert.Equal(t, msgCheckOutEarly, res.Messages[0].Text)
}

func TestLowPriceEndToEnd(t *testing.T) {
	repo := newFakeRepo()
	api := &fakeFinder{
		locations: []hotels.Location{{Caption: "Moscow, Russia", DestinationID: "500"}},
		offers: []hotels.Offer{
			{Caption: "Cheap Inn\n⭐️⭐️\n Lenina 1. \n1200 руб.\n0.8 \n до центра", HotelID: "h1"},
			{Caption: "Budget Stay\n⭐️⭐️⭐️\n Mira 2. \n1300 руб.\n1.4 \n до центра", HotelID: "h2"},
		},
	}
	m := newTestMachine(repo, api)

	m.StartSearch(ctxb(), chatID, storage.KindLowPrice)
	m.ChooseLanguage(ctxb(), chatID, hotels.LocaleRU)
	m.SubmitCity(ctxb(), chatID, "Москва")
	m.SubmitHotelCount(ctxb(), chatID, "2")
	m.SubmitPersons(ctxb(), chatID, "2")
	m.PickDate(ctxb(), chatID, CalendarCheckIn, testNow.AddDate(0, 0, 1))
	res := m.PickDate(ctxb(), chatID, CalendarCheckOut, testNow.AddDate(0, 0, 4))

	require.Len(t, api.searchParams, 1)
	params := api.searchParams[0]
	assert.Equal(t, hotels.SortPrice, params.Sort)
	assert.Equal(t, "500", params.DestinationID)
	assert.Equal(t, 2, params.Count)
	assert.Equal(t, "2026-08-31", params.CheckIn)
	assert.Equal(t, "2026-09-03", params.CheckOut)
	assert.Equal(t, "RUB", params.Currency)
	assert.Zero(t, params.PriceMax)
	assert.Zero(t, params.MaxDistanceKM)

	require.Len(t, res.Messages, 2)
	assert.Equal(t, msgSearching, res.Messages[0].Text)
	assert.Equal(t, msgHotelsFound, res.Messages[1].Text)
	require.Len(t, res.Messages[1].Buttons, 2)
	assert.Equal(t, KeyHotel, res.Messages[1].Buttons[0].Key)
	assert.Equal(t, "h1", res.Messages[1].Buttons[0].Payload)

	assert.Equal(t, storage.StatusCompleted, repo.latest(chatID).Status)
	h, err := repo.LatestHistory(ctxb(), chatID)
	require.NoError(t, err)
	offers, err := h.DecodeOffers()
	require.NoError(t, err)
	assert.Equal(t, api.offers, offers)
	assert.Equal(t, repo.latest(chatID).StartedAt, h.StartedAt)
}

func TestBestDealPassesLimits(t *testing.T) {
	repo := newFakeRepo()
	api := &fakeFinder{
		locations: []hotels.Location{{Caption: "Moscow", DestinationID: "500"}},
		offers:    []hotels.Offer{{Caption: "x\n0.5 \n до центра", HotelID: "h1"}},
	}
	m := newTestMachine(repo, api)

	m.StartSearch(ctxb(), chatID, storage.KindBestDeal)
	m.ChooseLanguage(ctxb(), chatID, hotels.LocaleRU)
	m.SubmitCity(ctxb(), chatID, "Москва")
	m.SubmitHotelCount(ctxb(), chatID, "1")
	m.SubmitDistance(ctxb(), chatID, "3")
	m.SubmitPriceCeiling(ctxb(), chatID, "5000")
	m.SubmitPersons(ctxb(), chatID, "1")
	m.PickDate(ctxb(), chatID, CalendarCheckIn, testNow.AddDate(0, 0, 1))
	m.PickDate(ctxb(), chatID, CalendarCheckOut, testNow.AddDate(0, 0, 2))

	require.Len(t, api.searchParams, 1)
	params := api.searchParams[0]
	assert.Equal(t, hotels.SortDistance, params.Sort)
	assert.Equal(t, 5000, params.PriceMax)
	assert.Equal(t, 3.0, params.MaxDistanceKM)
}

func TestSearchNothingFound(t *testing.T) {
	repo := newFakeRepo()
	api := &fakeFinder{locations: []hotels.Location{{DestinationID: "500"}}}
	m := newTestMachine(repo, api)

	m.StartSearch(ctxb(), chatID, storage.KindLowPrice)
	m.ChooseLanguage(ctxb(), chatID, hotels.LocaleRU)
	m.SubmitCity(ctxb(), chatID, "Москва")
	m.SubmitHotelCount(ctxb(), chatID, "2")
	m.SubmitPersons(ctxb(), chatID, "2")
	m.PickDate(ctxb(), chatID, CalendarCheckIn, testNow.AddDate(0, 0, 1))
	res := m.PickDate(ctxb(), chatID, CalendarCheckOut, testNow.AddDate(0, 0, 2))

	require.Len(t, res.Messages, 2)
	assert.Equal(t, msgNothingFound, res.Messages[1].Text)
	_, err := repo.LatestHistory(ctxb(), chatID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, storage.StatusActive, repo.latest(chatID).Status)
}

func TestChooseHotelAppendsDistance(t *testing.T) {
	repo := newFakeRepo()
	api := &fakeFinder{
		locations: []hotels.Location{{DestinationID: "500"}},
		offers:    []hotels.Offer{{Caption: "Inn\n⭐️\n st. \n900 руб.\n1,2 \n до центра", HotelID: "h1"}},
		details:   "Inn\nОписание",
	}
	m := newTestMachine(repo, api)

	m.StartSearch(ctxb(), chatID, storage.KindLowPrice)
	m.ChooseLanguage(ctxb(), chatID, hotels.LocaleRU)
	m.SubmitCity(ctxb(), chatID, "Москва")
	m.SubmitHotelCount(ctxb(), chatID, "1")
	m.SubmitPersons(ctxb(), chatID, "1")
	m.PickDate(ctxb(), chatID, CalendarCheckIn, testNow.AddDate(0, 0, 1))
	m.PickDate(ctxb(), chatID, CalendarCheckOut, testNow.AddDate(0, 0, 2))

	res := m.ChooseHotel(ctxb(), chatID, "h1")
	require.Len(t, res.Messages, 3)
	assert.Contains(t, res.Messages[0].Text, "Расстояние до центра города: 1.2 км.")
	assert.Equal(t, "https://ru.hotels.com/hoh1", res.Messages[1].Text)
	require.Len(t, res.Messages[2].Buttons, 2)
	assert.Equal(t, KeyPhotos, res.Messages[2].Buttons[0].Key)
	assert.Equal(t, "h1", res.Messages[2].Buttons[0].Payload)

	require.Len(t, api.detailParams, 1)
	assert.Equal(t, "h1", api.detailParams[0].HotelID)
	assert.Equal(t, "2026-08-31", api.detailParams[0].CheckIn)
}

func TestSubmitPhotoCount(t *testing.T) {
	repo := newFakeRepo()
	api := &fakeFinder{photos: []string{
		"https://img/1_{size}.jpg",
		"https://img/2_{size}.jpg",
		"https://img/3_{size}.jpg",
	}}
	m := newTestMachine(repo, api)

	res := m.SubmitPhotoCount(ctxb(), chatID, "h1", "11")
	assert.Equal(t, StepPhotoCount, res.Next)
	assert.Equal(t, msgBadPhotoCount, res.Messages[0].Text)

	res = m.SubmitPhotoCount(ctxb(), chatID, "h1", "2")
	assert.Equal(t, StepNone, res.Next)
	require.Len(t, res.Messages, 2)
	require.Len(t, res.Messages[0].Photos, 2)
	assert.Equal(t, "https://img/1_z.jpg", res.Messages[0].Photos[0])
	assert.Equal(t, msgChooseAction, res.Messages[1].Text)
}

func TestShowHistory(t *testing.T) {
	repo := newFakeRepo()
	m := newTestMachine(repo, &fakeFinder{})

	res := m.ShowHistory(ctxb(), chatID)
	assert.Equal(t, msgHistoryEmpty, res.Messages[0].Text)

	offers := []hotels.Offer{{Caption: "Inn", HotelID: "h1"}}
	encoded, err := storage.EncodeOffers(offers)
	require.NoError(t, err)
	startedAt := testNow.UnixMicro()
	require.NoError(t, repo.CreateSession(ctxb(), chatID, storage.KindHighPrice, "RUB", startedAt))
	require.NoError(t, repo.UpdateSession(ctxb(), chatID, storage.FieldCity, "Москва"))
	require.NoError(t, repo.CreateHistory(ctxb(), chatID, encoded, startedAt))

	res = m.ShowHistory(ctxb(), chatID)
	require.Len(t, res.Messages, 2)
	legend := res.Messages[0].Text
	assert.Contains(t, legend, "Команда: highprice")
	assert.Contains(t, legend, "Город поиска: Москва")
	assert.Contains(t, legend, testNow.Format("2006-01-02 15:04"))
	assert.Equal(t, msgHistoryResults, res.Messages[1].Text)
	require.Len(t, res.Messages[1].Buttons, 1)
	assert.Equal(t, "h1", res.Messages[1].Buttons[0].Payload)
}

func TestCalendarTitle(t *testing.T) {
	assert.Equal(t, msgAskCheckIn, CalendarTitle(CalendarCheckIn))
	assert.Equal(t, msgAskCheckOut, CalendarTitle(CalendarCheckOut))
}
