package hotels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptionDistance(t *testing.T) {
	caption := "Budget Inn\n⭐️⭐️⭐️\n Main st 1. \n1500 руб.\n1,2 км \n до центра"
	v, ok := CaptionDistance(caption)
	require.True(t, ok)
	assert.Equal(t, 1.2, v)
}

func TestCaptionDistanceMissing(t *testing.T) {
	_, ok := CaptionDistance("just one line")
	assert.False(t, ok)

	_, ok = CaptionDistance("name\n? \n до центра")
	assert.False(t, ok)
}

func TestThresholdFor(t *testing.T) {
	assert.Equal(t, 3.0, ThresholdFor(3, LocaleRU))
	assert.Equal(t, 1.86, ThresholdFor(3, LocaleEN))
}

func TestDisplayDistanceKM(t *testing.T) {
	assert.Equal(t, 1.2, DisplayDistanceKM(1.2, LocaleRU))
	assert.Equal(t, 1.93, DisplayDistanceKM(1.2, LocaleEN))
}

func TestOfferCaptionNoLandmarks(t *testing.T) {
	p := propertyResult{Name: "Lonely", StarRating: 2}
	p.RatePlan.Price.ExactCurrent = 999
	got := offerCaption(p)
	assert.Contains(t, got, "Lonely")
	assert.Contains(t, got, "⭐️⭐️")
	assert.Contains(t, got, "? \n до центра")
}
