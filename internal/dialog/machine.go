// Package dialog implements the hotel-search conversation as an explicit
// state machine. Each method takes one user move (command, text answer,
// or keyboard choice), validates it, persists the answer, and returns
// the messages to send plus the next text step. The package has no
// Telegram dependency: the transport layer renders Result values.
package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/hotelbot/core/logger"
	"github.com/m3rciful/hotelbot/internal/hotels"
	"github.com/m3rciful/hotelbot/internal/storage"
)

const (
	component = "service.dialog"

	dateLayout = "2006-01-02"

	// photoSizeToken replaces the {size} placeholder in photo URL
	// templates.
	photoSizeToken = "z"

	hotelLinkBase = "https://ru.hotels.com/ho"
)

// Finder is the slice of the hotel API the dialogue needs.
type Finder interface {
	SearchLocations(ctx context.Context, query, locale string) []hotels.Location
	SearchProperties(ctx context.Context, p hotels.SearchParams) []hotels.Offer
	PropertyDetails(ctx context.Context, p hotels.DetailParams) string
	PropertyPhotos(ctx context.Context, hotelID string) []string
}

// Machine drives the conversation. It is stateless between calls; all
// collected answers live in the repository and the per-user step lives
// in the transport layer's FSM manager.
type Machine struct {
	repo     storage.Repository
	api      Finder
	currency string
	now      func() time.Time
}

// NewMachine wires the dialogue over a repository and an API adapter.
func NewMachine(repo storage.Repository, api Finder, currency string) *Machine {
	if currency == "" {
		currency = "RUB"
	}
	return &Machine{
		repo:     repo,
		api:      api,
		currency: currency,
		now:      time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (m *Machine) WithClock(now func() time.Time) *Machine {
	m.now = now
	return m
}

// Help answers /help.
func (m *Machine) Help() Result {
	return reply(StepNone, textMessage(msgHelp))
}

// Start answers /start.
func (m *Machine) Start() Result {
	return reply(StepNone, textMessage(msgStart))
}

// Unknown answers unrecognized commands and stray text.
func (m *Machine) Unknown() Result {
	return reply(StepNone, textMessage(msgUnknownCommand))
}

// StartSearch begins a new search chain: the previous active session (if
// any) is explicitly marked aborted, a fresh row is inserted, and the
// user picks the search language.
func (m *Machine) StartSearch(ctx context.Context, chatID int64, kind storage.Kind) Result {
	m.abandonActive(ctx, chatID)
	startedAt := m.now().UnixMicro()
	if err := m.repo.CreateSession(ctx, chatID, kind, m.currency, startedAt); err != nil {
		logger.Error(ctx, component, "chain.start.fail",
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
	}
	logger.Info(ctx, component, "chain.start",
		slog.Int64("chat_id", chatID),
		slog.String("kind", string(kind)),
	)
	return reply(StepNone, Outgoing{
		Text: msgAskLocale,
		Buttons: []Button{
			{Label: "Русский", Key: KeyLocale, Payload: hotels.LocaleRU},
			{Label: "English", Key: KeyLocale, Payload: hotels.LocaleEN},
		},
	})
}

// Abandon marks the chat's active session aborted; called when a command
// interrupts a running chain.
func (m *Machine) Abandon(ctx context.Context, chatID int64) {
	m.abandonActive(ctx, chatID)
}

func (m *Machine) abandonActive(ctx context.Context, chatID int64) {
	sess, err := m.repo.LatestSession(ctx, chatID)
	if err != nil || sess.Status != storage.StatusActive {
		return
	}
	if err := m.repo.UpdateSession(ctx, chatID, storage.FieldStatus, storage.StatusAborted); err == nil {
		logger.Debug(ctx, component, "chain.abandon", slog.Int64("chat_id", chatID))
	}
}

// ChooseLanguage stores the picked locale and asks for the city.
func (m *Machine) ChooseLanguage(ctx context.Context, chatID int64, locale string) Result {
	m.update(ctx, chatID, storage.FieldLang, locale)
	return reply(StepCity, textMessage(msgAskCity))
}

// SubmitCity resolves the typed city name. Zero candidates re-prompt,
// one advances directly, several go to a choice keyboard.
func (m *Machine) SubmitCity(ctx context.Context, chatID int64, text string) Result {
	city := strings.TrimSpace(text)
	m.update(ctx, chatID, storage.FieldCity, city)

	sess, err := m.repo.LatestSession(ctx, chatID)
	if err != nil {
		logger.Error(ctx, component, "city.session.fail", slog.String("err", err.Error()))
		return reply(StepCity, textMessage(msgCityNotFound))
	}
	candidates := m.api.SearchLocations(ctx, city, sess.Lang)
	switch len(candidates) {
	case 0:
		return reply(StepCity, textMessage(msgCityNotFound))
	case 1:
		return m.ChooseLocation(ctx, chatID, candidates[0].DestinationID)
	}

	buttons := make([]Button, 0, len(candidates))
	for _, c := range candidates {
		buttons = append(buttons, Button{Label: c.Caption, Key: KeyCity, Payload: c.DestinationID})
	}
	return reply(StepNone, Outgoing{Text: msgCityAmbiguous, Buttons: buttons})
}

// ChooseLocation fixes the destination and moves on to the hotel count.
func (m *Machine) ChooseLocation(ctx context.Context, chatID int64, destinationID string) Result {
	m.update(ctx, chatID, storage.FieldLocation, destinationID)
	intro := ""
	if sess, err := m.repo.LatestSession(ctx, chatID); err == nil {
		intro = kindIntro[sess.Kind]
	}
	return reply(StepHotelCount,
		textMessage(intro),
		textMessage(msgAskHotelCount),
	)
}

// SubmitHotelCount validates the requested result count (1-25). Best-deal
// chains continue with the distance limit, the others with occupants.
func (m *Machine) SubmitHotelCount(ctx context.Context, chatID int64, text string) Result {
	n, ok := parseCount(text)
	if !ok {
		return reply(StepHotelCount, textMessage(msgBadInput))
	}
	if n < 1 || n > maxHotelCount {
		return reply(StepHotelCount, textMessage(msgBadHotelCount))
	}
	m.update(ctx, chatID, storage.FieldHotelCount, n)

	sess, err := m.repo.LatestSession(ctx, chatID)
	if err == nil && sess.Kind == storage.KindBestDeal {
		return reply(StepDistance, textMessage(msgAskDistance))
	}
	return reply(StepPersons, textMessage(msgAskPersons))
}

// SubmitDistance stores the best-deal distance limit in kilometers.
func (m *Machine) SubmitDistance(ctx context.Context, chatID int64, text string) Result {
	n, ok := ValidateDistance(text)
	if !ok {
		return reply(StepDistance, textMessage(msgBadDistance))
	}
	m.update(ctx, chatID, storage.FieldMaxDistance, float64(n))
	return reply(StepPriceCeiling, textMessage(msgAskMaxPrice))
}

// SubmitPriceCeiling stores the best-deal nightly price limit.
func (m *Machine) SubmitPriceCeiling(ctx context.Context, chatID int64, text string) Result {
	n, ok := ValidatePriceCeiling(text)
	if !ok {
		return reply(StepPriceCeiling, textMessage(msgBadMaxPrice))
	}
	m.update(ctx, chatID, storage.FieldPriceMax, n)
	return reply(StepPersons, textMessage(msgAskPersons))
}

// SubmitPersons stores the occupant answer verbatim and opens the
// check-in calendar. The count is deliberately unvalidated free text.
func (m *Machine) SubmitPersons(ctx context.Context, chatID int64, text string) Result {
	m.update(ctx, chatID, storage.FieldPersons, strings.TrimSpace(text))
	return reply(StepNone, Outgoing{
		Calendar: &CalendarRequest{Title: msgAskCheckIn, Name: CalendarCheckIn},
	})
}

// PickDate handles a day chosen on either calendar. Check-in must be
// today or later; check-out must be strictly after the stored check-in.
// An invalid pick re-shows the same calendar with the reason.
func (m *Machine) PickDate(ctx context.Context, chatID int64, name string, date time.Time) Result {
	if name == CalendarCheckIn {
		today := m.today()
		if date.Before(today) {
			return reply(StepNone,
				textMessage(msgCheckInPast),
				textMessage(msgDateRetry),
				Outgoing{Calendar: &CalendarRequest{Title: msgAskCheckIn, Name: CalendarCheckIn}},
			)
		}
		m.update(ctx, chatID, storage.FieldCheckIn, date.Format(dateLayout))
		return reply(StepNone, Outgoing{
			Calendar: &CalendarRequest{Title: msgAskCheckOut, Name: CalendarCheckOut},
		})
	}

	sess, err := m.repo.LatestSession(ctx, chatID)
	if err != nil || sess.CheckIn == "" {
		return reply(StepNone,
			textMessage(msgDateRetry),
			Outgoing{Calendar: &CalendarRequest{Title: msgAskCheckIn, Name: CalendarCheckIn}},
		)
	}
	checkIn, parseErr := time.Parse(dateLayout, sess.CheckIn)
	if parseErr != nil || !date.After(checkIn) {
		return reply(StepNone,
			textMessage(msgCheckOutEarly),
			textMessage(msgDateRetry),
			Outgoing{Calendar: &CalendarRequest{Title: msgAskCheckOut, Name: CalendarCheckOut}},
		)
	}
	m.update(ctx, chatID, storage.FieldCheckOut, date.Format(dateLayout))
	return m.Search(ctx, chatID)
}

// Search runs the upstream query with every collected field, persists
// the result set as history, and presents the result keyboard.
func (m *Machine) Search(ctx context.Context, chatID int64) Result {
	sess, err := m.repo.LatestSession(ctx, chatID)
	if err != nil {
		logger.Error(ctx, component, "search.session.fail", slog.String("err", err.Error()))
		return reply(StepNone, textMessage(msgNothingFound))
	}

	params := hotels.SearchParams{
		Adults:        sess.Persons,
		DestinationID: sess.LocationID,
		Count:         sess.HotelCount,
		CheckIn:       sess.CheckIn,
		CheckOut:      sess.CheckOut,
		Sort:          sortOrder(sess.Kind),
		Locale:        sess.Lang,
		Currency:      sess.Currency,
	}
	if sess.Kind == storage.KindBestDeal {
		params.PriceMax = sess.PriceMax
		params.MaxDistanceKM = sess.MaxDistance
	}

	offers := m.api.SearchProperties(ctx, params)
	logger.Info(ctx, component, "search.done",
		slog.Int64("chat_id", chatID),
		slog.String("kind", string(sess.Kind)),
		slog.Int("hotels", len(offers)),
	)
	if len(offers) == 0 {
		return reply(StepNone, textMessage(msgSearching), textMessage(msgNothingFound))
	}

	if encoded, encErr := storage.EncodeOffers(offers); encErr == nil {
		if err := m.repo.CreateHistory(ctx, chatID, encoded, sess.StartedAt); err != nil {
			logger.Error(ctx, component, "search.history.fail", slog.String("err", err.Error()))
		}
	}
	m.update(ctx, chatID, storage.FieldStatus, storage.StatusCompleted)

	return reply(StepNone,
		textMessage(msgSearching),
		Outgoing{Text: msgHotelsFound, Buttons: offerButtons(offers)},
	)
}

// ChooseHotel shows the full description of a picked hotel, appends the
// distance-to-center figure recovered from the history row, and offers
// the photo / last-results follow-ups.
func (m *Machine) ChooseHotel(ctx context.Context, chatID int64, hotelID string) Result {
	sess, err := m.repo.LatestSession(ctx, chatID)
	if err != nil {
		logger.Error(ctx, component, "hotel.session.fail", slog.String("err", err.Error()))
		return reply(StepNone, textMessage(msgNothingFound))
	}

	info := m.api.PropertyDetails(ctx, hotels.DetailParams{
		HotelID:  hotelID,
		CheckIn:  sess.CheckIn,
		CheckOut: sess.CheckOut,
		Adults:   sess.Persons,
		Currency: sess.Currency,
		Locale:   sess.Lang,
	})

	if h, histErr := m.repo.LatestHistory(ctx, chatID); histErr == nil {
		if offers, decErr := h.DecodeOffers(); decErr == nil {
			for _, offer := range offers {
				if offer.HotelID != hotelID {
					continue
				}
				if figure, ok := hotels.CaptionDistance(offer.Caption); ok {
					km := hotels.DisplayDistanceKM(figure, sess.Lang)
					info += fmt.Sprintf("\nРасстояние до центра города: %v км.", km)
				}
			}
		}
	}

	return reply(StepNone,
		textMessage(info),
		textMessage(hotelLinkBase+hotelID),
		Outgoing{
			Text: msgChooseAction,
			Buttons: []Button{
				{Label: msgHotelShowPhotos, Key: KeyPhotos, Payload: hotelID},
				{Label: msgPhotosShowLast, Key: KeyHistory, Payload: fmt.Sprintf("%d", chatID)},
			},
		},
	)
}

// RequestPhotoCount asks how many photos to send for the hotel.
func (m *Machine) RequestPhotoCount() Result {
	return reply(StepPhotoCount, textMessage(msgAskPhotoCount))
}

// SubmitPhotoCount validates the count (1-10), fetches the photo URL
// templates, and emits up to count resolved URLs.
func (m *Machine) SubmitPhotoCount(ctx context.Context, chatID int64, hotelID, text string) Result {
	n, ok := ValidatePhotoCount(text)
	if !ok {
		return reply(StepPhotoCount, textMessage(msgBadPhotoCount))
	}

	templates := m.api.PropertyPhotos(ctx, hotelID)
	if len(templates) > n {
		templates = templates[:n]
	}
	urls := make([]string, 0, len(templates))
	for _, tpl := range templates {
		urls = append(urls, strings.ReplaceAll(tpl, "{size}", photoSizeToken))
	}
	logger.Debug(ctx, component, "photos.sent",
		slog.Int64("chat_id", chatID),
		slog.String("hotel_id", hotelID),
		slog.Int("photos", len(urls)),
	)

	msgs := []Outgoing{}
	if len(urls) > 0 {
		msgs = append(msgs, Outgoing{Photos: urls})
	}
	msgs = append(msgs, Outgoing{
		Text: msgChooseAction,
		Buttons: []Button{
			{Label: msgPhotosShowLast, Key: KeyHistory, Payload: fmt.Sprintf("%d", chatID)},
		},
	})
	return reply(StepNone, msgs...)
}

// ShowHistory prints the legend of the last completed search and
// redisplays its result keyboard.
func (m *Machine) ShowHistory(ctx context.Context, chatID int64) Result {
	h, err := m.repo.LatestHistory(ctx, chatID)
	if err != nil {
		return reply(StepNone, textMessage(msgHistoryEmpty))
	}
	offers, decErr := h.DecodeOffers()
	if decErr != nil || len(offers) == 0 {
		logger.Warn(ctx, component, "history.decode.fail", slog.Int64("chat_id", chatID))
		return reply(StepNone, textMessage(msgHistoryEmpty))
	}

	msgs := []Outgoing{}
	if sess, sessErr := m.repo.SessionAt(ctx, chatID, h.StartedAt); sessErr == nil {
		msgs = append(msgs, textMessage(historyLegend(sess, h.StartedAt)))
	}
	msgs = append(msgs, Outgoing{Text: msgHistoryResults, Buttons: offerButtons(offers)})
	return reply(StepNone, msgs...)
}

func (m *Machine) update(ctx context.Context, chatID int64, field storage.Field, value any) {
	// Write failures are logged by the repository; the conversation
	// carries on with whatever made it to disk.
	_ = m.repo.UpdateSession(ctx, chatID, field, value)
}

func (m *Machine) today() time.Time {
	now := m.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func sortOrder(kind storage.Kind) string {
	switch kind {
	case storage.KindHighPrice:
		return hotels.SortPriceHighest
	case storage.KindBestDeal:
		return hotels.SortDistance
	default:
		return hotels.SortPrice
	}
}

func offerButtons(offers []hotels.Offer) []Button {
	buttons := make([]Button, 0, len(offers))
	for _, o := range offers {
		buttons = append(buttons, Button{Label: o.Caption, Key: KeyHotel, Payload: o.HotelID})
	}
	return buttons
}

func historyLegend(sess *storage.Session, startedAt int64) string {
	when := time.UnixMicro(startedAt).Format("2006-01-02 15:04")
	return fmt.Sprintf("Последний запрос: \n"+
		"Время запроса: %s \n"+
		"Команда: %s \n"+
		"Город поиска: %s \n"+
		"Дата заезда: %s \n"+
		"Дата выезда: %s \n"+
		"Количество проживающих: %s \n"+
		"Язык поиска: %s \n"+
		"Количество отелей: %d \n",
		when,
		strings.TrimPrefix(sess.Kind.Command(), "/"),
		sess.City,
		sess.CheckIn,
		sess.CheckOut,
		sess.Persons,
		sess.Lang,
		sess.HotelCount,
	)
}
