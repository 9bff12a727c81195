package heightmap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultIGNEndpoint is the IGN altimetry elevation endpoint.
	DefaultIGNEndpoint = "https://wxs.ign.fr/calcul/alti/rest/elevation.json"

	// IGNNoData is the elevation IGN returns for points outside its coverage.
	IGNNoData = -99999

	defaultUserAgent = "go-heightmap/1.0"
)

var (
	errElevationCount = errors.New("elevation count does not match point count")
	errNullElevation  = errors.New("null elevation")
)

// An HTTPClient performs HTTP requests. It is implemented by *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// An IGNClient fetches elevations from the IGN altimetry REST API.
type IGNClient struct {
	httpClient  HTTPClient
	endpoint    string
	userAgent   string
	noDataValue float64
	timeout     time.Duration
	logger      *slog.Logger
}

// An IGNClientOption sets an option on an IGNClient.
type IGNClientOption func(*IGNClient)

type ignResponse struct {
	Elevations []*float64 `json:"elevations"`
}

// NewIGNClient returns a new IGNClient with the given options.
func NewIGNClient(options ...IGNClientOption) *IGNClient {
	c := &IGNClient{
		httpClient:  http.DefaultClient,
		endpoint:    DefaultIGNEndpoint,
		userAgent:   defaultUserAgent,
		noDataValue: IGNNoData,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(httpClient HTTPClient) IGNClientOption {
	return func(c *IGNClient) {
		c.httpClient = httpClient
	}
}

// WithEndpoint sets the elevation service endpoint.
func WithEndpoint(endpoint string) IGNClientOption {
	return func(c *IGNClient) {
		c.endpoint = endpoint
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(userAgent string) IGNClientOption {
	return func(c *IGNClient) {
		c.userAgent = userAgent
	}
}

// WithNoDataValue sets the elevation value that is mapped to NaN.
func WithNoDataValue(noDataValue float64) IGNClientOption {
	return func(c *IGNClient) {
		c.noDataValue = noDataValue
	}
}

// WithTimeout sets a timeout on each request, including reading the response
// body. It applies to any HTTP client. Zero means no timeout.
func WithTimeout(timeout time.Duration) IGNClientOption {
	return func(c *IGNClient) {
		c.timeout = timeout
	}
}

// WithClientLogger sets the logger used for per-request debug traces.
func WithClientLogger(logger *slog.Logger) IGNClientOption {
	return func(c *IGNClient) {
		c.logger = logger
	}
}

// Fetch implements Fetcher.Fetch. It issues a single request for all points.
func (c *IGNClient) Fetch(ctx context.Context, points []Point) ([]float64, error) {
	if len(points) == 0 {
		return nil, nil
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	rawURL := c.endpoint + "?" + encodeIGNQuery(points)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{Method: http.MethodGet, URL: c.endpoint, Cause: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	startedAt := time.Now()
	c.logger.Debug("request", "method", http.MethodGet, "url", c.endpoint, "points", len(points))
	elevations, err := c.do(req, len(points))
	duration := time.Since(startedAt)
	requestDuration.Observe(duration.Seconds())
	if err != nil {
		c.logger.Debug("request failed", "url", c.endpoint, "duration", duration, "err", err)
		return nil, err
	}
	c.logger.Debug("response", "url", c.endpoint, "duration", duration, "elevations", len(elevations))
	return elevations, nil
}

func (c *IGNClient) do(req *http.Request, count int) ([]float64, error) {
	method, endpoint := req.Method, c.endpoint

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Method: method, URL: endpoint, Cause: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{
			Method:     method,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Cause:      fmt.Errorf("read response body: %w", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{
			Method:     method,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var payload ignResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &FetchError{
			Method:     method,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Cause:      fmt.Errorf("decode response body: %w", err),
		}
	}
	if len(payload.Elevations) != count {
		return nil, &FetchError{
			Method:     method,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Cause:      fmt.Errorf("%w: got %d, want %d", errElevationCount, len(payload.Elevations), count),
		}
	}

	elevations := make([]float64, count)
	for i, elevation := range payload.Elevations {
		switch {
		case elevation == nil:
			return nil, &FetchError{
				Method:     method,
				URL:        endpoint,
				StatusCode: resp.StatusCode,
				Body:       string(body),
				Cause:      fmt.Errorf("%w at index %d", errNullElevation, i),
			}
		case *elevation == c.noDataValue:
			elevations[i] = noData
		default:
			elevations[i] = *elevation
		}
	}
	return elevations, nil
}

// encodeIGNQuery returns the query string for points. Longitudes and
// latitudes are pipe-delimited in point order.
func encodeIGNQuery(points []Point) string {
	lons := make([]string, len(points))
	lats := make([]string, len(points))
	for i, point := range points {
		lons[i] = strconv.FormatFloat(point.Lon, 'f', -1, 64)
		lats[i] = strconv.FormatFloat(point.Lat, 'f', -1, 64)
	}
	query := url.Values{}
	query.Set("lon", strings.Join(lons, "|"))
	query.Set("lat", strings.Join(lats, "|"))
	query.Set("zonly", "true")
	return query.Encode()
}
