package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	apperrors "github.com/facilitair/site-server-go/internal/errors"
)

const (
	cloudflareEndpoint = "https://api.cloudflare.com/client/v4/graphql"
	requestTimeout     = 15 * time.Second
	maxCountries       = 20
)

const zoneAnalyticsQuery = `
query GetZoneAnalytics($zoneTag: String!, $datetime_geq: DateTime!, $datetime_lt: DateTime!) {
    viewer {
        zones(filter: { zoneTag: $zoneTag }) {
            totals: httpRequests1dGroups(filter: { datetime_geq: $datetime_geq, datetime_lt: $datetime_lt }) {
                uniq { uniques }
                sum { requests pageViews }
            }
            timeSeries: httpRequests1dGroups(
                filter: { datetime_geq: $datetime_geq, datetime_lt: $datetime_lt }
                limit: 100
            ) {
                dimensions { date }
                uniq { uniques }
                sum { requests pageViews }
            }
            countryData: httpRequests1dGroups(
                filter: { datetime_geq: $datetime_geq, datetime_lt: $datetime_lt }
                limit: 100
            ) {
                dimensions { clientCountryName }
                uniq { uniques }
                sum { requests }
            }
        }
    }
}`

type Totals struct {
	UniqueVisitors int64 `json:"uniqueVisitors"`
	TotalRequests  int64 `json:"totalRequests"`
	PageViews      int64 `json:"pageViews"`
}

type TimePoint struct {
	Date           string `json:"date"`
	UniqueVisitors int64  `json:"uniqueVisitors"`
	Requests       int64  `json:"requests"`
	PageViews      int64  `json:"pageViews"`
}

type CountryStat struct {
	Country        string `json:"country"`
	UniqueVisitors int64  `json:"uniqueVisitors"`
	Requests       int64  `json:"requests"`
}

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Report is the traffic summary returned to the admin dashboard.
type Report struct {
	Period      string        `json:"period"`
	DateRange   DateRange     `json:"dateRange"`
	Totals      Totals        `json:"totals"`
	TimeSeries  []TimePoint   `json:"timeSeries"`
	CountryData []CountryStat `json:"countryData"`
}

// Client queries the Cloudflare GraphQL Analytics API for a single zone.
type Client struct {
	apiKey     string
	email      string
	zoneID     string
	endpoint   string
	httpClient *http.Client
}

func NewClient(apiKey, email, zoneID string) *Client {
	return &Client{
		apiKey:     apiKey,
		email:      email,
		zoneID:     zoneID,
		endpoint:   cloudflareEndpoint,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// PeriodWindow maps a named period to its lookback duration. Unknown
// periods fall back to a single day.
func PeriodWindow(period string) time.Duration {
	switch period {
	case "week":
		return 7 * 24 * time.Hour
	case "month":
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type zoneGroup struct {
	Dimensions struct {
		Date              string `json:"date"`
		ClientCountryName string `json:"clientCountryName"`
	} `json:"dimensions"`
	Uniq struct {
		Uniques int64 `json:"uniques"`
	} `json:"uniq"`
	Sum struct {
		Requests  int64 `json:"requests"`
		PageViews int64 `json:"pageViews"`
	} `json:"sum"`
}

type graphqlResponse struct {
	Data struct {
		Viewer struct {
			Zones []struct {
				Totals      []zoneGroup `json:"totals"`
				TimeSeries  []zoneGroup `json:"timeSeries"`
				CountryData []zoneGroup `json:"countryData"`
			} `json:"zones"`
		} `json:"viewer"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// FetchReport retrieves zone traffic for the named period (day, week
// or month) and aggregates it into a Report.
func (c *Client) FetchReport(ctx context.Context, period string) (*Report, error) {
	now := time.Now().UTC()
	start := now.Add(-PeriodWindow(period))

	datetimeGeq := start.Format(time.RFC3339)
	datetimeLt := now.Format(time.RFC3339)

	body, err := json.Marshal(graphqlRequest{
		Query: zoneAnalyticsQuery,
		Variables: map[string]interface{}{
			"zoneTag":      c.zoneID,
			"datetime_geq": datetimeGeq,
			"datetime_lt":  datetimeLt,
		},
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeExternal, "failed to encode analytics query", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeExternal, "failed to build analytics request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Auth-Email", c.email)
	req.Header.Set("X-Auth-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.External("cloudflare", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, apperrors.External("cloudflare", fmt.Errorf("status %d: %s", resp.StatusCode, string(detail)))
	}

	var parsed graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeExternal, "failed to decode analytics response", err)
	}

	if len(parsed.Errors) > 0 {
		return nil, apperrors.External("cloudflare", fmt.Errorf("graphql: %s", parsed.Errors[0].Message))
	}

	zones := parsed.Data.Viewer.Zones
	if len(zones) == 0 {
		return nil, apperrors.NotFound("analytics data for zone")
	}
	zone := zones[0]

	report := &Report{
		Period: period,
		DateRange: DateRange{
			Start: datetimeGeq,
			End:   datetimeLt,
		},
		TimeSeries:  make([]TimePoint, 0, len(zone.TimeSeries)),
		CountryData: make([]CountryStat, 0, len(zone.CountryData)),
	}

	if len(zone.Totals) > 0 {
		report.Totals = Totals{
			UniqueVisitors: zone.Totals[0].Uniq.Uniques,
			TotalRequests:  zone.Totals[0].Sum.Requests,
			PageViews:      zone.Totals[0].Sum.PageViews,
		}
	}

	for _, item := range zone.TimeSeries {
		report.TimeSeries = append(report.TimeSeries, TimePoint{
			Date:           item.Dimensions.Date,
			UniqueVisitors: item.Uniq.Uniques,
			Requests:       item.Sum.Requests,
			PageViews:      item.Sum.PageViews,
		})
	}

	countryTotals := make(map[string]*CountryStat)
	for _, item := range zone.CountryData {
		country := item.Dimensions.ClientCountryName
		if country == "" {
			country = "Unknown"
		}
		stat, ok := countryTotals[country]
		if !ok {
			stat = &CountryStat{Country: country}
			countryTotals[country] = stat
		}
		stat.UniqueVisitors += item.Uniq.Uniques
		stat.Requests += item.Sum.Requests
	}
	for _, stat := range countryTotals {
		report.CountryData = append(report.CountryData, *stat)
	}
	sort.Slice(report.CountryData, func(i, j int) bool {
		return report.CountryData[i].Requests > report.CountryData[j].Requests
	})
	if len(report.CountryData) > maxCountries {
		report.CountryData = report.CountryData[:maxCountries]
	}

	return report, nil
}
