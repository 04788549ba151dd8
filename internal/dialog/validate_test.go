package dialog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateHotelCount(t *testing.T) {
	for input, want := range map[string]int{
		"1": 1, "25": 25, " 10 ": 10,
	} {
		n, ok := ValidateHotelCount(input)
		assert.True(t, ok, input)
		assert.Equal(t, want, n, input)
	}

	for _, input := range []string{"0", "26", "-1", "2.5", "2,5", "abc", "", "5 hotels", "1e2"} {
		_, ok := ValidateHotelCount(input)
		assert.False(t, ok, input)
	}
}

func TestValidateDistanceAndPrice(t *testing.T) {
	n, ok := ValidateDistance("0")
	assert.True(t, ok)
	assert.Zero(t, n)

	_, ok = ValidateDistance("-1")
	assert.False(t, ok)

	n, ok = ValidatePriceCeiling("2500")
	assert.True(t, ok)
	assert.Equal(t, 2500, n)

	_, ok = ValidatePriceCeiling("2 500")
	assert.False(t, ok)
}

func TestValidatePhotoCount(t *testing.T) {
	n, ok := ValidatePhotoCount("10")
	assert.True(t, ok)
	assert.Equal(t, 10, n)

	for _, input := range []string{"0", "11", "ten"} {
		_, ok := ValidatePhotoCount(input)
		assert.False(t, ok, input)
	}
}
