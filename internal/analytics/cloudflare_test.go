package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/facilitair/site-server-go/internal/errors"
)

const sampleResponse = `{
	"data": {
		"viewer": {
			"zones": [{
				"totals": [{"uniq": {"uniques": 150}, "sum": {"requests": 1200, "pageViews": 800}}],
				"timeSeries": [
					{"dimensions": {"date": "2025-08-30"}, "uniq": {"uniques": 70}, "sum": {"requests": 500, "pageViews": 350}},
					{"dimensions": {"date": "2025-08-31"}, "uniq": {"uniques": 80}, "sum": {"requests": 700, "pageViews": 450}}
				],
				"countryData": [
					{"dimensions": {"clientCountryName": "United States"}, "uniq": {"uniques": 90}, "sum": {"requests": 600}},
					{"dimensions": {"clientCountryName": "United States"}, "uniq": {"uniques": 10}, "sum": {"requests": 100}},
					{"dimensions": {"clientCountryName": ""}, "uniq": {"uniques": 50}, "sum": {"requests": 500}}
				]
			}]
		}
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient("cf-key", "admin@facilitair.ai", "zone123")
	client.endpoint = server.URL
	return client
}

func TestPeriodWindow(t *testing.T) {
	assert.Equal(t, 24*time.Hour, PeriodWindow("day"))
	assert.Equal(t, 7*24*time.Hour, PeriodWindow("week"))
	assert.Equal(t, 30*24*time.Hour, PeriodWindow("month"))
	assert.Equal(t, 24*time.Hour, PeriodWindow("bogus"))
}

func TestFetchReport(t *testing.T) {
	ctx := context.Background()

	t.Run("aggregates zone data", func(t *testing.T) {
		var gotVariables map[string]interface{}
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "admin@facilitair.ai", r.Header.Get("X-Auth-Email"))
			assert.Equal(t, "cf-key", r.Header.Get("X-Auth-Key"))

			var req graphqlRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			gotVariables = req.Variables

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(sampleResponse))
		})

		report, err := client.FetchReport(ctx, "week")
		require.NoError(t, err)

		assert.Equal(t, "zone123", gotVariables["zoneTag"])
		assert.Equal(t, "week", report.Period)
		assert.Equal(t, int64(150), report.Totals.UniqueVisitors)
		assert.Equal(t, int64(1200), report.Totals.TotalRequests)
		assert.Len(t, report.TimeSeries, 2)
		assert.Equal(t, "2025-08-30", report.TimeSeries[0].Date)

		require.Len(t, report.CountryData, 2)
		assert.Equal(t, "United States", report.CountryData[0].Country)
		assert.Equal(t, int64(700), report.CountryData[0].Requests)
		assert.Equal(t, int64(100), report.CountryData[0].UniqueVisitors)
		assert.Equal(t, "Unknown", report.CountryData[1].Country)
	})

	t.Run("surfaces graphql errors", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"errors": [{"message": "zone not authorized"}]}`))
		})

		_, err := client.FetchReport(ctx, "day")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeExternal, apperrors.GetCode(err))
	})

	t.Run("returns not found for empty zone list", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data": {"viewer": {"zones": []}}}`))
		})

		_, err := client.FetchReport(ctx, "day")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})

	t.Run("returns error on http failure", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.FetchReport(ctx, "day")
		assert.Error(t, err)
	})
}
