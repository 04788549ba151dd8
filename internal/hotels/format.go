package hotels

import (
	"fmt"
	"strconv"
	"strings"
)

// KilometersPerMile converts upstream mile figures back to kilometers for
// the imperial locale.
const KilometersPerMile = 1.609

// milesPerKilometer converts a user-entered kilometer threshold into the
// miles the upstream reports for the imperial locale.
const milesPerKilometer = 0.62

// offerCaption renders one search result into the multi-line description
// shown on the result keyboard: name, star row, street address, nightly
// price, distance to center.
func offerCaption(p propertyResult) string {
	distance := "?"
	if len(p.Landmarks) > 0 {
		distance = firstToken(p.Landmarks[0].Distance)
	}
	return fmt.Sprintf("%s\n%s\n %s. \n%s руб.\n%s \n до центра",
		p.Name,
		strings.Repeat("⭐️", int(p.StarRating)),
		p.Address.StreetAddress,
		formatPrice(p.RatePlan.Price.ExactCurrent),
		distance,
	)
}

// CaptionDistance extracts the numeric distance figure from an offer
// caption produced by offerCaption. The figure sits on the second-to-last
// line; decimal commas are accepted.
func CaptionDistance(caption string) (float64, bool) {
	lines := strings.Split(caption, "\n")
	if len(lines) < 2 {
		return 0, false
	}
	return parseDistance(lines[len(lines)-2])
}

func parseDistance(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(firstToken(raw), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// firstToken returns the leading whitespace-delimited token with any
// decimal comma normalized, e.g. "1,2 км" -> "1.2".
func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.ReplaceAll(fields[0], ",", ".")
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ThresholdFor converts a kilometer distance limit into the unit the
// upstream reports for the given locale, rounded to two decimals.
func ThresholdFor(km float64, locale string) float64 {
	if locale == LocaleEN {
		return round2(km * milesPerKilometer)
	}
	return km
}

// DisplayDistanceKM converts a caption distance figure into kilometers
// for the detail view.
func DisplayDistanceKM(figure float64, locale string) float64 {
	if locale == LocaleEN {
		return round2(figure * KilometersPerMile)
	}
	return figure
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

// detailText assembles the full single-hotel description.
func detailText(d detailsResponse) string {
	body := d.Data.Body
	var b strings.Builder
	b.WriteString(body.PropertyDescription.Name)
	b.WriteString("\n")
	coords := body.PdpHeader.HotelLocation.Coordinates
	fmt.Fprintf(&b, "Координаты отеля: %v, %v\n\n", coords.Latitude, coords.Longitude)
	b.WriteString("Описание:\n")
	if len(body.Overview.OverviewSections) > 0 {
		b.WriteString(strings.Join(body.Overview.OverviewSections[0].Content, "\n"))
	}
	b.WriteString("\n\n")
	b.WriteString("Что находится рядом с отелем:\n")
	if len(body.Overview.OverviewSections) > 1 {
		b.WriteString(strings.Join(body.Overview.OverviewSections[1].Content, "\n"))
	}
	b.WriteString("\n")
	b.WriteString("Цена за одну ночь:\n")
	b.WriteString(body.PropertyDescription.FeaturedPrice.CurrentPrice.Plain.String())
	b.WriteString("\n")
	b.WriteString("Адрес отеля:\n")
	b.WriteString(body.PropertyDescription.Address.FullAddress)
	return b.String()
}
