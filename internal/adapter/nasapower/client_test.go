package nasapower

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/rtrwh-assessment-service/internal/domain"
)

const testUserAgent = "rtrwh-test/1.0"

var mumbai = domain.GeoPoint{Lat: 19.076, Lon: 72.8777}

func testClient(baseURL string, now time.Time) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		userAgent:  testUserAgent,
		clock:      clockwork.NewFakeClockAt(now),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestTrailingWindow(t *testing.T) {
	start, end := TrailingWindow(time.Date(2026, time.March, 1, 22, 30, 0, 0, time.UTC))
	assert.Equal(t, "20250301", start)
	assert.Equal(t, "20260301", end)

	// 2024 is a leap year: 365 days back from 2024-12-31 is 2024-01-01.
	start, end = TrailingWindow(time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "20240101", start)
	assert.Equal(t, "20241231", end)

	// The UTC date is used, not the local one.
	ist := time.FixedZone("IST", 5*3600+1800)
	_, end = TrailingWindow(time.Date(2026, time.January, 1, 2, 0, 0, 0, ist))
	assert.Equal(t, "20251231", end)
}

func TestClient_Rainfall_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "20250116", q.Get("start"))
		assert.Equal(t, "20260116", q.Get("end"))
		assert.Equal(t, "19.076", q.Get("latitude"))
		assert.Equal(t, "72.8777", q.Get("longitude"))
		assert.Equal(t, "ag", q.Get("community"))
		assert.Equal(t, "PRECTOT", q.Get("parameters"))
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, "utc", q.Get("time-standard"))
		assert.Equal(t, testUserAgent, r.Header.Get("User-Agent"))

		_, _ = io.WriteString(w, `{"properties": {"parameter": {"PRECTOT": {
			"2025061500": 10.4,
			"2025061501": 20.3,
			"2025071000": 5.5,
			"2026011200": 0.4,
			"2025011700": 0.3,
			"2025081000": -999,
			"2025090100": null,
			"bogus": 50
		}}}}`)
	}))
	defer srv.Close()

	c := testClient(srv.URL, time.Date(2026, time.January, 16, 8, 0, 0, 0, time.UTC))
	res, err := c.Rainfall(context.Background(), mumbai)
	require.NoError(t, err)

	var want [12]float64
	want[0] = 1 // 0.4 + 0.3 across two years, same calendar month
	want[5] = 31
	want[6] = 6
	assert.Equal(t, want, res.MonthlyMM)
	assert.InDelta(t, 37, res.AnnualMM, 1e-9) // round(36.9)
	assert.Equal(t, "20250116-20260116", res.DataPeriod)
	assert.Equal(t, 1, res.YearsCount)
}

func TestClient_Rainfall_MissingSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"properties": {"parameter": {"T2M": {}}}}`)
	}))
	defer srv.Close()

	c := testClient(srv.URL, time.Now())
	_, err := c.Rainfall(context.Background(), mumbai)
	require.ErrorIs(t, err, ErrMissingSeries)
}

func TestClient_Rainfall_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(srv.URL, time.Now())
	_, err := c.Rainfall(context.Background(), mumbai)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestProxyQuery_Missing(t *testing.T) {
	assert.Equal(t, []string{"start", "end", "lat", "lon"}, ProxyQuery{}.Missing())
	assert.Empty(t, ProxyQuery{Start: "1", End: "2", Lat: "3", Lon: "4"}.Missing())
	assert.Equal(t, []string{"lon"}, ProxyQuery{Start: "1", End: "2", Lat: "3"}.Missing())
}

func TestClient_Proxy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "20250101", q.Get("start"))
		assert.Equal(t, "20250102", q.Get("end"))
		assert.Equal(t, "12.9", q.Get("latitude"))
		assert.Equal(t, "77.5", q.Get("longitude"))
		assert.Equal(t, "re", q.Get("community"))
		assert.Equal(t, "T2M", q.Get("parameters"))
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, "metric", q.Get("units"))
		_, _ = io.WriteString(w, `{"type": "Feature", "properties": {"parameter": {"T2M": {"2025010100": 21.5}}}}`)
	}))
	defer srv.Close()

	c := testClient(srv.URL, time.Now())
	raw, err := c.Proxy(context.Background(), ProxyQuery{
		Start: "20250101", End: "20250102", Lat: "12.9", Lon: "77.5",
		Parameters: "T2M", Community: "re", Units: "metric",
	})
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "Feature", body["type"])
}

func TestClient_Proxy_Defaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "ag", q.Get("community"))
		assert.Equal(t, "PRECTOT", q.Get("parameters"))
		assert.False(t, q.Has("units"))
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	c := testClient(srv.URL, time.Now())
	_, err := c.Proxy(context.Background(), ProxyQuery{Start: "a", End: "b", Lat: "1", Lon: "2"})
	require.NoError(t, err)
}

func TestClient_Proxy_NonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<html>maintenance</html>`)
	}))
	defer srv.Close()

	c := testClient(srv.URL, time.Now())
	_, err := c.Proxy(context.Background(), ProxyQuery{Start: "a", End: "b", Lat: "1", Lon: "2"})
	require.Error(t, err)
}

func TestClient_Proxy_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := testClient(url, time.Now())
	_, err := c.Proxy(context.Background(), ProxyQuery{Start: "a", End: "b", Lat: "1", Lon: "2"})
	require.Error(t, err)
}
