package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/hotelbot/internal/hotels"
)

func TestOffersRoundTrip(t *testing.T) {
	offers := []hotels.Offer{
		{Caption: "Hotel A\n⭐️⭐️\n...", HotelID: "100"},
		{Caption: "Hotel B", HotelID: "200"},
	}

	data, err := EncodeOffers(offers)
	require.NoError(t, err)

	h := History{Offers: data}
	got, err := h.DecodeOffers()
	require.NoError(t, err)
	assert.Equal(t, offers, got)
}

func TestDecodeOffersCorrupt(t *testing.T) {
	h := History{Offers: []byte("{not json")}
	_, err := h.DecodeOffers()
	assert.Error(t, err)
}

func TestFieldValidate(t *testing.T) {
	for _, f := range []Field{
		FieldLang, FieldCity, FieldLocation, FieldHotelCount, FieldPersons,
		FieldCheckIn, FieldCheckOut, FieldPriceMax, FieldMaxDistance, FieldStatus,
	} {
		assert.NoError(t, f.Validate(), string(f))
	}

	assert.Error(t, Field("chat_id").Validate())
	assert.Error(t, Field("status; DROP TABLE sessions").Validate())
	assert.Error(t, Field("").Validate())
}

func TestKindCommand(t *testing.T) {
	assert.Equal(t, "/lowprice", KindLowPrice.Command())
	assert.Equal(t, "/highprice", KindHighPrice.Command())
	assert.Equal(t, "/bestdeal", KindBestDeal.Command())
}
