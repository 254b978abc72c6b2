// Package nasapower fetches recent hourly precipitation from the NASA POWER
// point API. It also relays raw hourly queries for callers that want the
// series itself.
package nasapower

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

// DefaultBaseURL is the public hourly point endpoint.
const DefaultBaseURL = "https://power.larc.nasa.gov/api/temporal/hourly/point"

// SourceName identifies this provider in results, logs, and metrics.
const SourceName = "nasa-power"

const (
	parameter  = "PRECTOT"
	community  = "ag"
	dateLayout = "20060102"
	windowDays = 365
)

// ErrMissingSeries is returned when the response has no PRECTOT series.
var ErrMissingSeries = errors.New("NASA POWER missing PRECTOT data")

// Client implements domain.RainfallSource using the NASA POWER hourly API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewClient creates a NASA POWER client.
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

// TrailingWindow returns the YYYYMMDD bounds of the 365 days ending on now's
// UTC date.
func TrailingWindow(now time.Time) (start, end string) {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -windowDays).Format(dateLayout), today.Format(dateLayout)
}

// Rainfall sums the trailing year of hourly precipitation into calendar-month
// buckets, ignoring the year.
func (c *Client) Rainfall(ctx context.Context, pt domain.GeoPoint) (domain.RainfallResult, error) {
	start, end := TrailingWindow(c.clock.Now())
	params := url.Values{
		"start":         {start},
		"end":           {end},
		"latitude":      {strconv.FormatFloat(pt.Lat, 'f', -1, 64)},
		"longitude":     {strconv.FormatFloat(pt.Lon, 'f', -1, 64)},
		"community":     {community},
		"parameters":    {parameter},
		"format":        {"json"},
		"time-standard": {"utc"},
	}

	body, err := c.get(ctx, params)
	if err != nil {
		return domain.RainfallResult{}, err
	}
	defer body.Close()

	var power response
	if err := json.NewDecoder(body).Decode(&power); err != nil {
		return domain.RainfallResult{}, fmt.Errorf("decode response: %w", err)
	}
	series := power.Properties.Parameter[parameter]
	if series == nil {
		return domain.RainfallResult{}, ErrMissingSeries
	}

	res := aggregate(series)
	res.DataPeriod = start + "-" + end
	res.YearsCount = 1

	c.logger.Debug("nasa power rainfall fetched",
		"lat", pt.Lat, "lon", pt.Lon,
		"start", start, "end", end,
		"hours", len(series), "annual_mm", res.AnnualMM,
	)
	return res, nil
}

// aggregate buckets hourly values by the month in characters 5-6 of each
// YYYYMMDDHH key. Keys without a valid month are skipped; null and negative
// values (the -999 fill) count as 0. Months and the annual total are each
// rounded from the raw sums.
func aggregate(series map[string]*float64) domain.RainfallResult {
	var (
		totals [12]float64
		annual float64
	)
	for ts, v := range series {
		if len(ts) < 6 || v == nil || *v <= 0 {
			continue
		}
		m, err := strconv.Atoi(ts[4:6])
		if err != nil || m < 1 || m > 12 {
			continue
		}
		totals[m-1] += *v
		annual += *v
	}

	res := domain.RainfallResult{AnnualMM: math.Round(annual)}
	for i, t := range totals {
		res.MonthlyMM[i] = math.Round(t)
	}
	return res
}

// ProxyQuery is a raw hourly request. Start, End, Lat, and Lon are required.
type ProxyQuery struct {
	Start      string
	End        string
	Lat        string
	Lon        string
	Parameters string
	Community  string
	Units      string
	Format     string
}

// Missing returns the names of required fields left empty.
func (q ProxyQuery) Missing() []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"start", q.Start}, {"end", q.End}, {"lat", q.Lat}, {"lon", q.Lon},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Proxy forwards q to the hourly endpoint and returns the JSON body as-is.
func (c *Client) Proxy(ctx context.Context, q ProxyQuery) (json.RawMessage, error) {
	params := url.Values{
		"start":         {q.Start},
		"end":           {q.End},
		"latitude":      {q.Lat},
		"longitude":     {q.Lon},
		"community":     {orDefault(q.Community, community)},
		"parameters":    {orDefault(q.Parameters, parameter)},
		"format":        {orDefault(q.Format, "json")},
		"time-standard": {"utc"},
	}
	if q.Units != "" {
		params.Set("units", q.Units)
	}

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if !json.Valid(raw) {
		return nil, errors.New("NASA POWER returned a non-JSON body")
	}
	return raw, nil
}

func (c *Client) get(ctx context.Context, params url.Values) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hourly request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("NASA POWER API error: status %d: %s", resp.StatusCode, body)
	}
	return resp.Body, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// NASA POWER response types.

type response struct {
	Properties struct {
		Parameter map[string]map[string]*float64 `json:"parameter"`
	} `json:"properties"`
}
