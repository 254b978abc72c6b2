// Package openmeteo fetches historical daily precipitation from the
// Open-Meteo archive API and reduces it to average monthly rainfall.
package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/rtrwh-assessment-service/internal/domain"
)

// DefaultBaseURL is the public archive endpoint.
const DefaultBaseURL = "https://archive-api.open-meteo.com/v1/archive"

// SourceName identifies this provider in results, logs, and metrics.
const SourceName = "open-meteo"

// windowYears is the number of complete calendar years averaged.
const windowYears = 2

// ErrNoData is returned when the response carries no precipitation series.
var ErrNoData = errors.New("no precipitation data available")

// Client implements domain.RainfallSource using the Open-Meteo archive API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo archive client.
func NewClient(baseURL, userAgent string, timeout time.Duration, clock clockwork.Clock, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:   baseURL,
		userAgent: userAgent,
		clock:     clock,
		logger:    logger,
	}
}

// Name implements domain.RainfallSource.
func (c *Client) Name() string { return SourceName }

// Window returns the two most recent complete calendar years as of now. The
// current year counts as complete only in December.
func Window(now time.Time) (startYear, endYear int) {
	endYear = now.Year() - 1
	if now.Month() == time.December {
		endYear = now.Year()
	}
	return endYear - windowYears + 1, endYear
}

// Rainfall fetches daily precipitation over the window and returns the
// per-month average across its years.
func (c *Client) Rainfall(ctx context.Context, pt domain.GeoPoint) (domain.RainfallResult, error) {
	startYear, endYear := Window(c.clock.Now().UTC())
	params := url.Values{
		"latitude":   {strconv.FormatFloat(pt.Lat, 'f', -1, 64)},
		"longitude":  {strconv.FormatFloat(pt.Lon, 'f', -1, 64)},
		"start_date": {fmt.Sprintf("%d-01-01", startYear)},
		"end_date":   {fmt.Sprintf("%d-12-31", endYear)},
		"daily":      {"precipitation_sum"},
		"timezone":   {"auto"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.RainfallResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.RainfallResult{}, fmt.Errorf("archive request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.RainfallResult{}, fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, body)
	}

	var archive response
	if err := json.NewDecoder(resp.Body).Decode(&archive); err != nil {
		return domain.RainfallResult{}, fmt.Errorf("decode response: %w", err)
	}

	years := endYear - startYear + 1
	res, err := aggregate(archive.Daily.Time, archive.Daily.PrecipitationSum, years)
	if err != nil {
		return domain.RainfallResult{}, err
	}
	res.DataPeriod = fmt.Sprintf("%d-%d", startYear, endYear)

	c.logger.Debug("open-meteo rainfall fetched",
		"lat", pt.Lat, "lon", pt.Lon,
		"start_year", startYear, "end_year", endYear,
		"days", len(archive.Daily.Time), "annual_mm", res.AnnualMM,
	)
	return res, nil
}

// aggregate buckets daily totals by calendar month, averages each month over
// years, and rounds to whole millimetres. Null and negative days count as 0.
// The annual figure is the sum of the rounded months.
func aggregate(dates []string, precip []*float64, years int) (domain.RainfallResult, error) {
	if len(dates) == 0 || len(precip) == 0 {
		return domain.RainfallResult{}, ErrNoData
	}
	if len(dates) != len(precip) {
		return domain.RainfallResult{}, fmt.Errorf("series length mismatch: %d dates, %d values", len(dates), len(precip))
	}

	var totals [12]float64
	for i, d := range dates {
		day, err := time.Parse(time.DateOnly, d)
		if err != nil {
			return domain.RainfallResult{}, fmt.Errorf("parse date %q: %w", d, err)
		}
		if v := precip[i]; v != nil && *v > 0 {
			totals[day.Month()-1] += *v
		}
	}

	res := domain.RainfallResult{YearsCount: years}
	for m, total := range totals {
		res.MonthlyMM[m] = math.Round(total / float64(years))
		res.AnnualMM += res.MonthlyMM[m]
	}
	return res, nil
}

// Open-Meteo archive response types.

type response struct {
	Daily daily `json:"daily"`
}

type daily struct {
	Time             []string   `json:"time"`
	PrecipitationSum []*float64 `json:"precipitation_sum"`
}
