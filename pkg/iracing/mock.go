package iracing

import (
	"context"
	"encoding/json"
	"sync"
)

// MockClient is a mock iRacing client for testing
type MockClient struct {
	recap          *MemberRecap
	profile        MemberProfile
	yearlyStats    []YearlyStat
	categories     []Category
	charts         map[int]*ChartData // chartType -> series
	drivers        []Driver
	subsession     json.RawMessage
	loginErr       error
	recapErr       error
	profileErr     error
	yearlyErr      error
	categoriesErr  error
	chartErr       error
	searchErr      error
	subsessionErr  error
	hasCredentials bool
	baseURL        string

	// mu guards the call recorders below; the aggregator invokes the client
	// from concurrent goroutines.
	mu            sync.Mutex
	loginCalls    int
	chartRequests [][2]int
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithRecap sets the recap to return
func WithRecap(recap *MemberRecap) MockOption {
	return func(m *MockClient) { m.recap = recap }
}

// WithRecapError sets an error to return from MemberRecap
func WithRecapError(err error) MockOption {
	return func(m *MockClient) { m.recapErr = err }
}

// WithProfile sets the member profile to return
func WithProfile(profile MemberProfile) MockOption {
	return func(m *MockClient) { m.profile = profile }
}

// WithProfileError sets an error to return from MemberProfile
func WithProfileError(err error) MockOption {
	return func(m *MockClient) { m.profileErr = err }
}

// WithYearlyStats sets the yearly stats to return
func WithYearlyStats(stats []YearlyStat) MockOption {
	return func(m *MockClient) { m.yearlyStats = stats }
}

// WithYearlyStatsError sets an error to return from MemberYearlyStats
func WithYearlyStatsError(err error) MockOption {
	return func(m *MockClient) { m.yearlyErr = err }
}

// WithCategories sets the category list to return
func WithCategories(categories []Category) MockOption {
	return func(m *MockClient) { m.categories = categories }
}

// WithCategoriesError sets an error to return from Categories
func WithCategoriesError(err error) MockOption {
	return func(m *MockClient) { m.categoriesErr = err }
}

// WithChart sets the chart series to return for a chart type
func WithChart(chartType int, chart *ChartData) MockOption {
	return func(m *MockClient) {
		if m.charts == nil {
			m.charts = make(map[int]*ChartData)
		}
		m.charts[chartType] = chart
	}
}

// WithChartError sets an error to return from ChartData
func WithChartError(err error) MockOption {
	return func(m *MockClient) { m.chartErr = err }
}

// WithDrivers sets the driver search results to return
func WithDrivers(drivers []Driver) MockOption {
	return func(m *MockClient) { m.drivers = drivers }
}

// WithSearchError sets an error to return from SearchDrivers
func WithSearchError(err error) MockOption {
	return func(m *MockClient) { m.searchErr = err }
}

// WithSubsession sets the subsession result payload to return
func WithSubsession(raw json.RawMessage) MockOption {
	return func(m *MockClient) { m.subsession = raw }
}

// WithSubsessionError sets an error to return from SubsessionResult
func WithSubsessionError(err error) MockOption {
	return func(m *MockClient) { m.subsessionErr = err }
}

// WithLoginError sets an error to return from Login
func WithLoginError(err error) MockOption {
	return func(m *MockClient) { m.loginErr = err }
}

// WithoutCredentials makes HasCredentials report false
func WithoutCredentials() MockOption {
	return func(m *MockClient) { m.hasCredentials = false }
}

// NewMockClient creates a mock iRacing client. Credentials are considered
// configured unless WithoutCredentials is applied.
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{hasCredentials: true}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MockClient) Login(ctx context.Context) error {
	m.mu.Lock()
	m.loginCalls++
	m.mu.Unlock()
	return m.loginErr
}

// LoginCalls reports how many times Login was invoked, so tests can assert
// the one-login-per-batch contract.
func (m *MockClient) LoginCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loginCalls
}

// ChartRequests returns the (categoryID, chartType) pairs passed to ChartData.
func (m *MockClient) ChartRequests() [][2]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	requests := make([][2]int, len(m.chartRequests))
	copy(requests, m.chartRequests)
	return requests
}

func (m *MockClient) SetCredentials(email, password string) {
	m.hasCredentials = email != "" && password != ""
}

func (m *MockClient) SetSessionCookie(value string) {
	m.hasCredentials = value != ""
}

func (m *MockClient) HasCredentials() bool {
	return m.hasCredentials
}

func (m *MockClient) MemberRecap(ctx context.Context, custID, year, season int) (*MemberRecap, error) {
	if m.recapErr != nil {
		return nil, m.recapErr
	}
	if m.recap == nil {
		return &MemberRecap{Year: year, Season: season, Races: []RaceRecord{}}, nil
	}
	recap := *m.recap
	if recap.Races == nil {
		recap.Races = []RaceRecord{}
	}
	return &recap, nil
}

func (m *MockClient) MemberProfile(ctx context.Context, custID int) (MemberProfile, error) {
	if m.profileErr != nil {
		return MemberProfile{}, m.profileErr
	}
	return m.profile, nil
}

func (m *MockClient) MemberYearlyStats(ctx context.Context, custID int) ([]YearlyStat, error) {
	if m.yearlyErr != nil {
		return nil, m.yearlyErr
	}
	if m.yearlyStats == nil {
		return []YearlyStat{}, nil
	}
	return m.yearlyStats, nil
}

func (m *MockClient) Categories(ctx context.Context) ([]Category, error) {
	if m.categoriesErr != nil {
		return nil, m.categoriesErr
	}
	if m.categories == nil {
		return []Category{}, nil
	}
	return m.categories, nil
}

func (m *MockClient) ChartData(ctx context.Context, custID, categoryID, chartType int) (*ChartData, error) {
	m.mu.Lock()
	m.chartRequests = append(m.chartRequests, [2]int{categoryID, chartType})
	m.mu.Unlock()
	if m.chartErr != nil {
		return nil, m.chartErr
	}
	if chart, ok := m.charts[chartType]; ok {
		return chart, nil
	}
	return &ChartData{CategoryID: categoryID, ChartType: chartType, Points: []ChartPoint{}}, nil
}

func (m *MockClient) SearchDrivers(ctx context.Context, term string) ([]Driver, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if m.drivers == nil {
		return []Driver{}, nil
	}
	return m.drivers, nil
}

func (m *MockClient) SubsessionResult(ctx context.Context, subsessionID int) (json.RawMessage, error) {
	if m.subsessionErr != nil {
		return nil, m.subsessionErr
	}
	if m.subsession == nil {
		return json.RawMessage(`{}`), nil
	}
	return m.subsession, nil
}

func (m *MockClient) BaseURL() string {
	return m.baseURL
}

func (m *MockClient) SetBaseURL(url string) {
	m.baseURL = url
}

// Ensure MockClient implements Client
var _ Client = (*MockClient)(nil)
