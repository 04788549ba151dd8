package dialog

import (
	"strconv"
	"strings"
)

const (
	maxHotelCount = 25
	maxPhotoCount = 10
)

// parseCount accepts only unsigned decimal digits, mirroring the strict
// "is it a number" gate applied to every numeric answer. "2.5", "-3" and
// "5 hotels" are all rejected.
func parseCount(text string) (int, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ValidateHotelCount gates the requested result count to 1-25 inclusive.
func ValidateHotelCount(text string) (int, bool) {
	n, ok := parseCount(text)
	if !ok || n < 1 || n > maxHotelCount {
		return 0, false
	}
	return n, true
}

// ValidateDistance gates the best-deal distance limit to a non-negative
// integer number of kilometers.
func ValidateDistance(text string) (int, bool) {
	return parseCount(text)
}

// ValidatePriceCeiling gates the best-deal nightly price limit to a
// non-negative integer.
func ValidatePriceCeiling(text string) (int, bool) {
	return parseCount(text)
}

// ValidatePhotoCount gates the photo count to 1-10 inclusive.
func ValidatePhotoCount(text string) (int, bool) {
	n, ok := parseCount(text)
	if !ok || n < 1 || n > maxPhotoCount {
		return 0, false
	}
	return n, true
}
