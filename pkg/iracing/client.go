// Package iracing provides a client for the iRacing members web API.
package iracing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/apexlaps/pitwall/internal/logger"
)

// sessionCookieName is the member session cookie the upstream API issues.
const sessionCookieName = "irsso_membersv2"

// defaultTimeout bounds every upstream call so a stalled connection cannot
// hang a request indefinitely.
const defaultTimeout = 10 * time.Second

// StatusError is returned when the upstream API responds with a non-success
// status. Code carries the upstream status so callers can pass it through.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("iRacing returned status %d: %s", e.Code, e.Body)
}

// AuthError is returned when the upstream API rejects the configured
// credentials.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("iRacing login failed: %s", e.Message)
}

// Client defines the interface for iRacing API operations
type Client interface {
	// Login authenticates with the configured credentials and stores the
	// resulting session cookie for subsequent calls
	Login(ctx context.Context) error
	// SetCredentials configures email/password authentication
	SetCredentials(email, password string)
	// SetSessionCookie configures a pre-established session cookie instead
	// of credentials
	SetSessionCookie(value string)
	// HasCredentials reports whether the client can authenticate at all
	HasCredentials() bool
	// MemberRecap retrieves a driver's recap for one year and season quarter
	MemberRecap(ctx context.Context, custID, year, season int) (*MemberRecap, error)
	// MemberProfile retrieves a driver's member record with license info
	MemberProfile(ctx context.Context, custID int) (MemberProfile, error)
	// MemberYearlyStats retrieves per-year stat summaries for a driver
	MemberYearlyStats(ctx context.Context, custID int) ([]YearlyStat, error)
	// Categories retrieves the static category list (no authentication)
	Categories(ctx context.Context) ([]Category, error)
	// ChartData retrieves a rating history series for one member and category
	ChartData(ctx context.Context, custID, categoryID, chartType int) (*ChartData, error)
	// SearchDrivers looks up driver identities matching a search term
	SearchDrivers(ctx context.Context, term string) ([]Driver, error)
	// SubsessionResult retrieves the full per-entrant result set of one race
	SubsessionResult(ctx context.Context, subsessionID int) (json.RawMessage, error)
	// BaseURL returns the configured upstream base URL
	BaseURL() string
	// SetBaseURL updates the upstream base URL
	SetBaseURL(url string)
}

// HTTPClient is a real HTTP client for the iRacing members API
type HTTPClient struct {
	httpClient *http.Client
	log        logger.Logger

	// mu guards the fields below. The aggregator issues concurrent calls on a
	// shared client, so the lazy login must be serialized: the first caller
	// authenticates while the rest wait, and the session is established at
	// most once.
	mu            sync.Mutex
	baseURL       string
	email         string
	password      string
	sessionCookie string
	authenticated bool
}

// NewHTTPClient creates a new iRacing HTTP client with cookie support and
// outbound cache-directive normalization on every call.
func NewHTTPClient(baseURL string, log logger.Logger) *HTTPClient {
	jar, _ := cookiejar.New(nil)
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Jar:       jar,
			Transport: NewCacheDirectiveTransport(nil),
		},
		log: log,
	}
}

// NewHTTPClientWithHTTPClient creates a new iRacing client with a custom
// http.Client. The caller is responsible for wrapping its transport with
// NewCacheDirectiveTransport if normalization is wanted.
func NewHTTPClientWithHTTPClient(baseURL string, httpClient *http.Client, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		log:        log,
	}
}

// BaseURL returns the configured upstream base URL
func (c *HTTPClient) BaseURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseURL
}

// SetBaseURL updates the upstream base URL
func (c *HTTPClient) SetBaseURL(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = url
}

// SetCredentials configures email/password authentication
func (c *HTTPClient) SetCredentials(email, password string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.email = email
	c.password = password
	c.authenticated = false // Reset auth state when credentials change
}

// SetSessionCookie configures a pre-established session cookie. When set, the
// client skips the login call entirely and sends the cookie on every request.
func (c *HTTPClient) SetSessionCookie(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionCookie = value
	c.authenticated = value != ""
}

// HasCredentials reports whether the client can authenticate at all
func (c *HTTPClient) HasCredentials() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasCredentials()
}

// hasCredentials requires c.mu to be held
func (c *HTTPClient) hasCredentials() bool {
	return (c.email != "" && c.password != "") || c.sessionCookie != ""
}

// Login authenticates with the configured credentials. Exactly one
// authentication call is made; a rejected login is returned as *AuthError
// with no retry. Concurrent callers block until the first login resolves.
func (c *HTTPClient) Login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.login(ctx)
}

// login requires c.mu to be held. Holding the lock across the auth POST is
// what makes concurrent first requests share a single login.
func (c *HTTPClient) login(ctx context.Context) error {
	if c.sessionCookie != "" {
		c.authenticated = true
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"email":    c.email,
		"password": c.password,
	})
	if err != nil {
		return fmt.Errorf("failed to encode login request: %w", err)
	}

	apiURL := fmt.Sprintf("%s/auth", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to iRacing: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read login response: %w", err)
	}

	c.log.Debug("iRacing login response", "status", resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		return &AuthError{Message: string(body)}
	}

	c.authenticated = true
	c.log.Info("iRacing login successful", "email", c.email)
	return nil
}

// doGet executes an authenticated GET request against the upstream API and
// decodes the JSON response into response. It logs in first when no session
// has been established yet.
func (c *HTTPClient) doGet(ctx context.Context, path string, params url.Values, response interface{}) error {
	if err := c.ensureAuthenticated(ctx); err != nil {
		return err
	}
	return c.doPublicGet(ctx, path, params, response)
}

// ensureAuthenticated establishes a session if none exists yet. The
// authenticated check and the login run under one lock so a batch of
// concurrent calls on a fresh client produces exactly one auth POST.
func (c *HTTPClient) ensureAuthenticated(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.authenticated {
		return nil
	}
	if !c.hasCredentials() {
		return &AuthError{Message: "no credentials configured"}
	}
	c.log.Debug("Not authenticated, logging in before request")
	return c.login(ctx)
}

// doPublicGet executes a GET request without forcing authentication first.
// The session cookie, when configured, is still attached.
func (c *HTTPClient) doPublicGet(ctx context.Context, path string, params url.Values, response interface{}) error {
	c.mu.Lock()
	baseURL := c.baseURL
	sessionCookie := c.sessionCookie
	c.mu.Unlock()

	reqURL := fmt.Sprintf("%s%s", baseURL, path)
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	c.log.Debug("iRacing request", "method", "GET", "url", reqURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if sessionCookie != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sessionCookie})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to iRacing: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug("iRacing response", "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, response); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// MemberRecap retrieves a driver's recap for one year and season quarter.
// The returned recap always has a non-nil Races slice.
func (c *HTTPClient) MemberRecap(ctx context.Context, custID, year, season int) (*MemberRecap, error) {
	params := url.Values{}
	params.Set("cust_id", strconv.Itoa(custID))
	params.Set("year", strconv.Itoa(year))
	params.Set("season", strconv.Itoa(season))

	var recap MemberRecap
	if err := c.doGet(ctx, "/data/stats/member_recap", params, &recap); err != nil {
		return nil, err
	}
	if recap.Races == nil {
		recap.Races = []RaceRecord{}
	}
	return &recap, nil
}

// MemberProfile retrieves a driver's member record with license info. A
// response containing no member records yields an empty profile, not an
// error.
func (c *HTTPClient) MemberProfile(ctx context.Context, custID int) (MemberProfile, error) {
	params := url.Values{}
	params.Set("cust_ids", strconv.Itoa(custID))
	params.Set("include_licenses", "true")

	var envelope memberEnvelope
	if err := c.doGet(ctx, "/data/member/get", params, &envelope); err != nil {
		return MemberProfile{}, err
	}
	return envelope.First(), nil
}

// MemberYearlyStats retrieves per-year stat summaries for a driver, sorted by
// year ascending. The result is never nil.
func (c *HTTPClient) MemberYearlyStats(ctx context.Context, custID int) ([]YearlyStat, error) {
	params := url.Values{}
	params.Set("cust_id", strconv.Itoa(custID))

	var envelope yearlyStatsEnvelope
	if err := c.doGet(ctx, "/data/stats/member_yearly", params, &envelope); err != nil {
		return nil, err
	}
	if envelope.Stats == nil {
		return []YearlyStat{}, nil
	}
	return envelope.Stats, nil
}

// Categories retrieves the static category list. The endpoint does not
// require authentication. A non-array response body (error object, null)
// yields an empty slice rather than a decode error.
func (c *HTTPClient) Categories(ctx context.Context) ([]Category, error) {
	var raw json.RawMessage
	if err := c.doPublicGet(ctx, "/data/constants/categories", nil, &raw); err != nil {
		return nil, err
	}

	var categories []Category
	if err := json.Unmarshal(raw, &categories); err != nil {
		c.log.Warn("Category list had unexpected shape, substituting empty list", "body", string(raw))
		return []Category{}, nil
	}
	if categories == nil {
		categories = []Category{}
	}
	return categories, nil
}

// ChartData retrieves a rating history series for one member and category.
// chartType is one of the ChartType constants.
func (c *HTTPClient) ChartData(ctx context.Context, custID, categoryID, chartType int) (*ChartData, error) {
	params := url.Values{}
	params.Set("cust_id", strconv.Itoa(custID))
	params.Set("category_id", strconv.Itoa(categoryID))
	params.Set("chart_type", strconv.Itoa(chartType))

	var chart ChartData
	if err := c.doGet(ctx, "/data/member/chart_data", params, &chart); err != nil {
		return nil, err
	}
	if chart.Points == nil {
		chart.Points = []ChartPoint{}
	}
	return &chart, nil
}

// SearchDrivers looks up driver identities matching a search term
func (c *HTTPClient) SearchDrivers(ctx context.Context, term string) ([]Driver, error) {
	params := url.Values{}
	params.Set("search_term", term)

	var drivers []Driver
	if err := c.doGet(ctx, "/data/lookup/drivers", params, &drivers); err != nil {
		return nil, err
	}
	if drivers == nil {
		drivers = []Driver{}
	}
	return drivers, nil
}

// SubsessionResult retrieves the full per-entrant result set of one race.
// The payload is forwarded without transformation.
func (c *HTTPClient) SubsessionResult(ctx context.Context, subsessionID int) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("subsession_id", strconv.Itoa(subsessionID))
	params.Set("include_licenses", "true")

	var raw json.RawMessage
	if err := c.doGet(ctx, "/data/results/get", params, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Ensure HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)
