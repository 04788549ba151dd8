package hotels

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{Token: "test-token", BaseURL: srv.URL, Host: "test"})
}

func TestSearchLocationsFiltersCities(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/locations/search", r.URL.Path)
		require.Equal(t, "Paris", r.URL.Query().Get("query"))
		require.Equal(t, "test-token", r.Header.Get("x-rapidapi-key"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"suggestions": []map[string]any{{
				"entities": []map[string]any{
					{"caption": "Paris, France", "destinationId": "100", "name": "Paris", "type": "CITY"},
					{"caption": "Paris, Texas", "destinationId": "200", "name": "Paris", "type": "CITY"},
					{"caption": "Charles de Gaulle Airport", "destinationId": "300", "name": "Paris CDG", "type": "AIRPORT"},
					{"caption": "Lyon, France", "destinationId": "400", "name": "Lyon", "type": "CITY"},
				},
			}},
		})
	}))

	got := client.SearchLocations(context.Background(), "Paris", LocaleEN)
	require.Len(t, got, 2)
	assert.Equal(t, "100", got[0].DestinationID)
	assert.Equal(t, "Paris, France", got[0].Caption)
	assert.Equal(t, "200", got[1].DestinationID)
}

func TestSearchLocationsCaseInsensitive(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"suggestions": []map[string]any{{
				"entities": []map[string]any{
					{"caption": "Moscow, Russia", "destinationId": "1", "name": "Moscow", "type": "CITY"},
				},
			}},
		})
	}))

	got := client.SearchLocations(context.Background(), "moscow", LocaleEN)
	require.Len(t, got, 1)
}

func TestSearchLocationsUpstreamError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	got := client.SearchLocations(context.Background(), "Paris", LocaleEN)
	assert.Empty(t, got)
}

func propertyJSON(id int, name string, stars float64, price float64, distance string) map[string]any {
	return map[string]any{
		"id":         id,
		"name":       name,
		"starRating": stars,
		"address":    map[string]any{"streetAddress": "Main st 1"},
		"ratePlan":   map[string]any{"price": map[string]any{"exactCurrent": price}},
		"landmarks":  []map[string]any{{"distance": distance}},
	}
}

func propertiesPage(results []map[string]any, next any) map[string]any {
	return map[string]any{
		"data": map[string]any{
			"body": map[string]any{
				"searchResults": map[string]any{
					"results":    results,
					"pagination": map[string]any{"nextPageNumber": next},
				},
			},
		},
	}
}

func TestSearchPropertiesPriceSortSinglePage(t *testing.T) {
	var gotQuery map[string]string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/properties/list", r.URL.Path)
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		_ = json.NewEncoder(w).Encode(propertiesPage([]map[string]any{
			propertyJSON(11, "Budget Inn", 3, 1500, "0,6 км"),
			propertyJSON(12, "City Hotel", 4, 2500, "1,1 км"),
		}, 2))
	}))

	got := client.SearchProperties(context.Background(), SearchParams{
		Adults:        "2",
		DestinationID: "100",
		Count:         2,
		CheckIn:       "2026-09-01",
		CheckOut:      "2026-09-05",
		Sort:          SortPrice,
		Locale:        LocaleRU,
		Currency:      "RUB",
	})

	require.Len(t, got, 2)
	assert.Equal(t, "11", got[0].HotelID)
	assert.Equal(t, "PRICE", gotQuery["sortOrder"])
	assert.Equal(t, "2", gotQuery["pageSize"])
	assert.Equal(t, "1", gotQuery["pageNumber"])
	assert.NotContains(t, gotQuery, "priceMax")

	wantCaption := "Budget Inn\n⭐️⭐️⭐️\n Main st 1. \n1500 руб.\n0.6 \n до центра"
	assert.Equal(t, wantCaption, got[0].Caption)
}

func TestSearchByDistancePaginatesAndFilters(t *testing.T) {
	pages := map[string]map[string]any{
		"1": propertiesPage([]map[string]any{
			propertyJSON(1, "Near A", 3, 900, "0,5 км"),
			propertyJSON(2, "Far", 3, 900, "8,0 км"),
		}, 2),
		"2": propertiesPage([]map[string]any{
			propertyJSON(3, "Near B", 3, 900, "1,0 км"),
			propertyJSON(4, "Near C", 3, 900, "1,5 км"),
		}, 3),
	}
	var requested []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("pageNumber")
		requested = append(requested, page)
		require.Equal(t, "2000", r.URL.Query().Get("priceMax"))
		require.Equal(t, "100", r.URL.Query().Get("priceMin"))
		body, ok := pages[page]
		require.True(t, ok, "unexpected page %s", page)
		_ = json.NewEncoder(w).Encode(body)
	}))

	got := client.SearchProperties(context.Background(), SearchParams{
		Adults:        "1",
		DestinationID: "100",
		Count:         3,
		CheckIn:       "2026-09-01",
		CheckOut:      "2026-09-02",
		Sort:          SortDistance,
		Locale:        LocaleRU,
		Currency:      "RUB",
		PriceMax:      2000,
		MaxDistanceKM: 2,
	})

	require.Len(t, got, 3)
	assert.Equal(t, []string{"1", "2"}, requested)
	assert.Equal(t, "1", got[0].HotelID)
	assert.Equal(t, "3", got[1].HotelID)
	assert.Equal(t, "4", got[2].HotelID)
}

func TestSearchByDistanceStopsWhenNoNextPage(t *testing.T) {
	calls := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		// nextPageNumber equals the current page, so the walk must stop.
		_ = json.NewEncoder(w).Encode(propertiesPage([]map[string]any{
			propertyJSON(1, "Only", 3, 900, "0,5 км"),
		}, 1))
	}))

	got := client.SearchProperties(context.Background(), SearchParams{
		Count:         5,
		Sort:          SortDistance,
		Locale:        LocaleRU,
		MaxDistanceKM: 2,
		PriceMax:      1000,
	})

	assert.Equal(t, 1, calls)
	require.Len(t, got, 1)
}

func TestSearchByDistanceImperialThreshold(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// en_US reports miles: 3 km * 0.62 = 1.86 is the cut line.
		_ = json.NewEncoder(w).Encode(propertiesPage([]map[string]any{
			propertyJSON(1, "Inside", 3, 900, "1.8 miles"),
			propertyJSON(2, "Outside", 3, 900, "1.9 miles"),
		}, 1))
	}))

	got := client.SearchProperties(context.Background(), SearchParams{
		Count:         5,
		Sort:          SortDistance,
		Locale:        LocaleEN,
		MaxDistanceKM: 3,
		PriceMax:      1000,
	})

	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].HotelID)
}

func detailBody(result string) map[string]any {
	return map[string]any{
		"result": result,
		"data": map[string]any{
			"body": map[string]any{
				"propertyDescription": map[string]any{
					"name":    "Grand Hotel",
					"address": map[string]any{"fullAddress": "Tverskaya 1, Moscow"},
					"featuredPrice": map[string]any{
						"currentPrice": map[string]any{"plain": 4200},
					},
				},
				"pdpHeader": map[string]any{
					"hotelLocation": map[string]any{
						"coordinates": map[string]any{"latitude": 55.75, "longitude": 37.61},
					},
				},
				"overview": map[string]any{
					"overviewSections": []map[string]any{
						{"content": []string{"Nice rooms", "Free wifi"}},
						{"content": []string{"Red Square"}},
					},
				},
			},
		},
	}
}

func TestPropertyDetailsOK(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/properties/get-details", r.URL.Path)
		require.Equal(t, "777", r.URL.Query().Get("id"))
		_ = json.NewEncoder(w).Encode(detailBody("OK"))
	}))

	got := client.PropertyDetails(context.Background(), DetailParams{HotelID: "777"})
	assert.Contains(t, got, "Grand Hotel")
	assert.Contains(t, got, "Координаты отеля: 55.75, 37.61")
	assert.Contains(t, got, "Nice rooms\nFree wifi")
	assert.Contains(t, got, "Что находится рядом с отелем:\nRed Square")
	assert.Contains(t, got, "Цена за одну ночь:\n4200")
	assert.Contains(t, got, "Адрес отеля:\nTverskaya 1, Moscow")
}

func TestPropertyDetailsNotOK(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(detailBody("ERROR"))
	}))

	got := client.PropertyDetails(context.Background(), DetailParams{HotelID: "777"})
	assert.Equal(t, detailErrorText, got)
}

func TestPropertyPhotos(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/properties/get-hotel-photos", r.URL.Path)
		images := make([]map[string]any, 0, 3)
		for i := 0; i < 3; i++ {
			images = append(images, map[string]any{
				"baseUrl": fmt.Sprintf("https://img.example/%d_{size}.jpg", i),
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"hotelImages": images})
	}))

	got := client.PropertyPhotos(context.Background(), "777")
	require.Len(t, got, 3)
	assert.Equal(t, "https://img.example/0_{size}.jpg", got[0])
}

func TestPropertyPhotosUpstreamError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	assert.Empty(t, client.PropertyPhotos(context.Background(), "777"))
}
