// Package hotels adapts the Hotels4 search API: city lookup, hotel
// search, per-hotel details and photos. Every operation degrades to an
// empty result on transport or payload-shape errors instead of
// propagating them; callers present "nothing found" text.
package hotels

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/m3rciful/hotelbot/core/logger"
)

const (
	defaultBaseURL = "https://hotels4.p.rapidapi.com"
	defaultHost    = "hotels4.p.rapidapi.com"

	component = "service.hotels"

	// detailErrorText is shown when the upstream reports a non-success
	// result for a detail query.
	detailErrorText = "Произошла ошибка при обращении к сайту."
)

// Config carries the rapidapi credentials and endpoint overrides.
type Config struct {
	Token   string `yaml:"token" envconfig:"RAPI_TOKEN"`
	BaseURL string `yaml:"base_url" envconfig:"HOTELS_BASE_URL"`
	Host    string `yaml:"host" envconfig:"HOTELS_HOST"`
}

// Client issues queries against the hotel search API.
type Client struct {
	http *resty.Client
}

// NewClient builds a Client with the rapidapi headers applied to every
// request.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	host := cfg.Host
	if host == "" {
		host = defaultHost
	}
	httpc := resty.New().
		SetBaseURL(baseURL).
		SetHeader("x-rapidapi-key", cfg.Token).
		SetHeader("x-rapidapi-host", host)
	return &Client{http: httpc}
}

func (c *Client) get(ctx context.Context, path string, query map[string]string, out any) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(path)
	if err != nil {
		return fmt.Errorf("hotels: %s: %w", path, err)
	}
	if !res.IsSuccess() {
		return fmt.Errorf("hotels: %s: status %d", path, res.StatusCode())
	}
	if err := json.Unmarshal(res.Body(), out); err != nil {
		return fmt.Errorf("hotels: %s: decode: %w", path, err)
	}
	return nil
}

// SearchLocations resolves a typed city name into candidate locations,
// keeping only entities tagged CITY whose name contains the typed text
// (case-insensitive). Returns an empty list on any failure.
func (c *Client) SearchLocations(ctx context.Context, query, locale string) []Location {
	var resp locationsResponse
	err := c.get(ctx, "/locations/search", map[string]string{
		"query":  query,
		"locale": locale,
	}, &resp)
	if err != nil {
		logger.Warn(ctx, component, "locations.fail", slog.String("err", err.Error()))
		return nil
	}
	if len(resp.Suggestions) == 0 {
		logger.Warn(ctx, component, "locations.empty", slog.String("city", logger.SanitizeLimit(query, 64)))
		return nil
	}

	needle := strings.ToLower(query)
	var out []Location
	for _, e := range resp.Suggestions[0].Entities {
		if e.Type != "CITY" || !strings.Contains(strings.ToLower(e.Name), needle) {
			continue
		}
		out = append(out, Location{Caption: e.Caption, DestinationID: e.DestinationID})
	}
	logger.Debug(ctx, component, "locations.resolved",
		slog.String("city", logger.SanitizeLimit(query, 64)),
		slog.Int("count", len(out)),
	)
	return out
}

// SearchProperties runs one hotel search. Price-sorted queries are a
// single page sized to the requested count. Distance-ranked queries walk
// successive pages, keeping offers within the distance threshold, until
// the requested count is met or the upstream reports no further page.
func (c *Client) SearchProperties(ctx context.Context, p SearchParams) []Offer {
	query := map[string]string{
		"adults1":       p.Adults,
		"pageNumber":    "1",
		"destinationId": p.DestinationID,
		"pageSize":      strconv.Itoa(p.Count),
		"checkIn":       p.CheckIn,
		"checkOut":      p.CheckOut,
		"sortOrder":     p.Sort,
		"locale":        p.Locale,
		"currency":      p.Currency,
	}

	if p.Sort != SortDistance {
		var resp propertiesResponse
		if err := c.get(ctx, "/properties/list", query, &resp); err != nil {
			logger.Warn(ctx, component, "search.fail", slog.String("err", err.Error()))
			return nil
		}
		offers := make([]Offer, 0, len(resp.Data.Body.SearchResults.Results))
		for _, r := range resp.Data.Body.SearchResults.Results {
			offers = append(offers, Offer{Caption: offerCaption(r), HotelID: r.ID.String()})
		}
		return offers
	}

	return c.searchByDistance(ctx, query, p)
}

func (c *Client) searchByDistance(ctx context.Context, query map[string]string, p SearchParams) []Offer {
	threshold := ThresholdFor(p.MaxDistanceKM, p.Locale)
	query["priceMax"] = strconv.Itoa(p.PriceMax)
	query["priceMin"] = strconv.Itoa(bestDealPriceFloor)

	var offers []Offer
	page := 1
	pages := 0
	for len(offers) < p.Count {
		query["pageNumber"] = strconv.Itoa(page)
		var resp propertiesResponse
		if err := c.get(ctx, "/properties/list", query, &resp); err != nil {
			logger.Warn(ctx, component, "search.fail",
				slog.Int("page", page),
				slog.String("err", err.Error()),
			)
			break
		}
		pages++
		for _, r := range resp.Data.Body.SearchResults.Results {
			if len(r.Landmarks) == 0 {
				continue
			}
			dist, ok := parseDistance(r.Landmarks[0].Distance)
			if !ok || dist > threshold {
				continue
			}
			offers = append(offers, Offer{Caption: offerCaption(r), HotelID: r.ID.String()})
		}

		next, err := resp.Data.Body.SearchResults.Pagination.NextPageNumber.Int64()
		if err != nil || int(next) <= page {
			break
		}
		page = int(next)
	}

	if len(offers) > p.Count {
		offers = offers[:p.Count]
	}
	logger.Debug(ctx, component, "search.distance",
		slog.Int("count", len(offers)),
		slog.Int("pages", pages),
	)
	return offers
}

// PropertyDetails fetches and assembles the full description of one
// hotel. On any failure it returns user-facing error text rather than an
// error value; the conversation shows it verbatim.
func (c *Client) PropertyDetails(ctx context.Context, p DetailParams) string {
	var resp detailsResponse
	err := c.get(ctx, "/properties/get-details", map[string]string{
		"id":       p.HotelID,
		"checkIn":  p.CheckIn,
		"checkOut": p.CheckOut,
		"adults1":  p.Adults,
		"currency": p.Currency,
		"locale":   p.Locale,
	}, &resp)
	if err != nil {
		logger.Warn(ctx, component, "details.fail",
			slog.String("hotel_id", p.HotelID),
			slog.String("err", err.Error()),
		)
		return detailErrorText
	}
	if resp.Result != "OK" {
		logger.Warn(ctx, component, "details.not_ok",
			slog.String("hotel_id", p.HotelID),
			slog.String("status", resp.Result),
		)
		return detailErrorText
	}
	return detailText(resp)
}

// PropertyPhotos returns photo URL templates for a hotel. Each template
// contains a {size} placeholder that the caller substitutes before
// sending.
func (c *Client) PropertyPhotos(ctx context.Context, hotelID string) []string {
	var resp photosResponse
	err := c.get(ctx, "/properties/get-hotel-photos", map[string]string{"id": hotelID}, &resp)
	if err != nil {
		logger.Warn(ctx, component, "photos.fail",
			slog.String("hotel_id", hotelID),
			slog.String("err", err.Error()),
		)
		return nil
	}
	urls := make([]string, 0, len(resp.HotelImages))
	for _, img := range resp.HotelImages {
		urls = append(urls, img.BaseURL)
	}
	return urls
}
