package hotels

import "encoding/json"

// Sort orders accepted by the properties/list endpoint.
const (
	SortPrice        = "PRICE"
	SortPriceHighest = "PRICE_HIGHEST_FIRST"
	SortDistance     = "DISTANCE_FROM_LANDMARK"
)

// Search locales. LocaleEN is the imperial-unit locale: the upstream
// reports landmark distances in miles for it.
const (
	LocaleRU = "ru_RU"
	LocaleEN = "en_US"
)

// bestDealPriceFloor is the fixed lower price bound applied to
// distance-ranked searches.
const bestDealPriceFloor = 100

// Location is one resolved city candidate for a typed name.
type Location struct {
	Caption       string
	DestinationID string
}

// Offer is one search result: a ready-to-display multi-line caption and
// the upstream hotel identifier. The JSON tags define the history
// serialization format.
type Offer struct {
	Caption string `json:"caption"`
	HotelID string `json:"id"`
}

// SearchParams describes one properties/list query.
type SearchParams struct {
	Adults        string
	DestinationID string
	Count         int
	CheckIn       string
	CheckOut      string
	Sort          string
	Locale        string
	Currency      string

	// Distance-ranked searches only.
	PriceMax      int
	MaxDistanceKM float64
}

// DetailParams describes one properties/get-details query.
type DetailParams struct {
	HotelID  string
	CheckIn  string
	CheckOut string
	Adults   string
	Currency string
	Locale   string
}

type locationsResponse struct {
	Suggestions []struct {
		Entities []struct {
			Caption       string `json:"caption"`
			DestinationID string `json:"destinationId"`
			Name          string `json:"name"`
			Type          string `json:"type"`
		} `json:"entities"`
	} `json:"suggestions"`
}

type propertyResult struct {
	ID         json.Number `json:"id"`
	Name       string      `json:"name"`
	StarRating float64     `json:"starRating"`
	Address    struct {
		StreetAddress string `json:"streetAddress"`
	} `json:"address"`
	RatePlan struct {
		Price struct {
			ExactCurrent float64 `json:"exactCurrent"`
		} `json:"price"`
	} `json:"ratePlan"`
	Landmarks []struct {
		Distance string `json:"distance"`
	} `json:"landmarks"`
}

type propertiesResponse struct {
	Data struct {
		Body struct {
			SearchResults struct {
				Results    []propertyResult `json:"results"`
				Pagination struct {
					NextPageNumber json.Number `json:"nextPageNumber"`
				} `json:"pagination"`
			} `json:"searchResults"`
		} `json:"body"`
	} `json:"data"`
}

type detailsResponse struct {
	Result string `json:"result"`
	Data   struct {
		Body struct {
			PropertyDescription struct {
				Name    string `json:"name"`
				Address struct {
					FullAddress string `json:"fullAddress"`
				} `json:"address"`
				FeaturedPrice struct {
					CurrentPrice struct {
						Plain json.Number `json:"plain"`
					} `json:"currentPrice"`
				} `json:"featuredPrice"`
			} `json:"propertyDescription"`
			PdpHeader struct {
				HotelLocation struct {
					Coordinates struct {
						Latitude  float64 `json:"latitude"`
						Longitude float64 `json:"longitude"`
					} `json:"coordinates"`
				} `json:"hotelLocation"`
			} `json:"pdpHeader"`
			Overview struct {
				OverviewSections []struct {
					Content []string `json:"content"`
				} `json:"overviewSections"`
			} `json:"overview"`
		} `json:"body"`
	} `json:"data"`
}

type photosResponse struct {
	HotelImages []struct {
		BaseURL string `json:"baseUrl"`
	} `json:"hotelImages"`
}
