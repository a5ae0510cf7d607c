package iracing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/apexlaps/pitwall/internal/logger"
)

func newTestClient(serverURL string) *HTTPClient {
	client := NewHTTPClient(serverURL, logger.Noop{})
	client.SetCredentials("driver@example.com", "secret")
	return client
}

func TestHTTPClient_Login_Success(t *testing.T) {
	var loginBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth" {
			t.Errorf("expected path /auth, got %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&loginBody); err != nil {
			t.Errorf("failed to decode login body: %v", err)
		}
		w.Write([]byte(`{"authcode":"ok"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if err := client.Login(context.Background()); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if loginBody["email"] != "driver@example.com" {
		t.Errorf("expected email in login body, got %q", loginBody["email"])
	}
}

func TestHTTPClient_Login_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`invalid credentials`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	err := client.Login(context.Background())
	if err == nil {
		t.Fatal("expected error for rejected login")
	}
	if _, ok := err.(*AuthError); !ok {
		t.Errorf("expected *AuthError, got %T", err)
	}
}

func TestHTTPClient_Login_SkippedWithSessionCookie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth" {
			t.Error("login endpoint should not be called in cookie mode")
		}
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value != "session-value" {
			t.Errorf("expected session cookie on request, got %v", cookie)
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, logger.Noop{})
	client.SetSessionCookie("session-value")

	if _, err := client.SearchDrivers(context.Background(), "smith"); err != nil {
		t.Fatalf("SearchDrivers failed: %v", err)
	}
}

func TestHTTPClient_AutoLoginBeforeFirstRequest(t *testing.T) {
	loginCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth":
			loginCalls++
			w.Write([]byte(`{}`))
		case "/data/lookup/drivers":
			w.Write([]byte(`[{"custId":123,"displayName":"Test Driver"}]`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	drivers, err := client.SearchDrivers(context.Background(), "test")
	if err != nil {
		t.Fatalf("SearchDrivers failed: %v", err)
	}
	if loginCalls != 1 {
		t.Errorf("expected 1 login call, got %d", loginCalls)
	}
	if len(drivers) != 1 || drivers[0].CustID != 123 {
		t.Errorf("unexpected drivers: %+v", drivers)
	}

	// Second call reuses the session
	if _, err := client.SearchDrivers(context.Background(), "test"); err != nil {
		t.Fatalf("second SearchDrivers failed: %v", err)
	}
	if loginCalls != 1 {
		t.Errorf("expected session reuse, got %d login calls", loginCalls)
	}
}

func TestHTTPClient_ConcurrentFirstRequests_ShareOneLogin(t *testing.T) {
	var mu sync.Mutex
	loginCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth":
			mu.Lock()
			loginCalls++
			mu.Unlock()
			w.Write([]byte(`{}`))
		default:
			w.Write([]byte(`{"year":2024,"season":2,"races":[]}`))
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.MemberRecap(context.Background(), 123, 2024, 2)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("concurrent MemberRecap %d failed: %v", i, err)
		}
	}
	if loginCalls != 1 {
		t.Errorf("expected exactly 1 auth call for concurrent first requests, got %d", loginCalls)
	}
}

func TestHTTPClient_NoCredentials(t *testing.T) {
	client := NewHTTPClient("http://unused", logger.Noop{})
	_, err := client.SearchDrivers(context.Background(), "test")
	if err == nil {
		t.Fatal("expected error without credentials")
	}
	if _, ok := err.(*AuthError); !ok {
		t.Errorf("expected *AuthError, got %T", err)
	}
}

func TestHTTPClient_MemberRecap_MissingRaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth" {
			w.Write([]byte(`{}`))
			return
		}
		if got := r.URL.Query().Get("cust_id"); got != "123" {
			t.Errorf("expected cust_id=123, got %s", got)
		}
		// No races field at all
		w.Write([]byte(`{"year":2024,"season":2,"stats":{"starts":4,"wins":1}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	recap, err := client.MemberRecap(context.Background(), 123, 2024, 2)
	if err != nil {
		t.Fatalf("MemberRecap failed: %v", err)
	}
	if recap.Races == nil {
		t.Fatal("expected non-nil Races slice when upstream omits the field")
	}
	if len(recap.Races) != 0 {
		t.Errorf("expected empty Races, got %d", len(recap.Races))
	}
	if recap.Stats.Starts != 4 {
		t.Errorf("expected 4 starts, got %d", recap.Stats.Starts)
	}
}

func TestHTTPClient_MemberProfile_Shapes(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantName string
	}{
		{
			name:     "bare array",
			body:     `[{"custId":123,"displayName":"Array Driver"}]`,
			wantName: "Array Driver",
		},
		{
			name:     "members object",
			body:     `{"members":[{"custId":123,"displayName":"Wrapped Driver"}]}`,
			wantName: "Wrapped Driver",
		},
		{
			name:     "empty members",
			body:     `{"members":[]}`,
			wantName: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/auth" {
					w.Write([]byte(`{}`))
					return
				}
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			profile, err := client.MemberProfile(context.Background(), 123)
			if err != nil {
				t.Fatalf("MemberProfile failed: %v", err)
			}
			if profile.DisplayName != tt.wantName {
				t.Errorf("expected display name %q, got %q", tt.wantName, profile.DisplayName)
			}
		})
	}
}

func TestHTTPClient_MemberYearlyStats_Shapes(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantYears []int
	}{
		{
			name:      "array shape",
			body:      `{"stats":[{"year":2023,"starts":10},{"year":2024,"starts":5}]}`,
			wantYears: []int{2023, 2024},
		},
		{
			name:      "object keyed by year",
			body:      `{"stats":{"2024":{"starts":5},"2022":{"starts":8}}}`,
			wantYears: []int{2022, 2024},
		},
		{
			name:      "null stats",
			body:      `{"stats":null}`,
			wantYears: []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/auth" {
					w.Write([]byte(`{}`))
					return
				}
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			stats, err := client.MemberYearlyStats(context.Background(), 123)
			if err != nil {
				t.Fatalf("MemberYearlyStats failed: %v", err)
			}
			if len(stats) != len(tt.wantYears) {
				t.Fatalf("expected %d entries, got %d", len(tt.wantYears), len(stats))
			}
			for i, year := range tt.wantYears {
				if stats[i].Year != year {
					t.Errorf("entry %d: expected year %d, got %d", i, year, stats[i].Year)
				}
			}
		})
	}
}

func TestHTTPClient_Categories_NoAuthRequired(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth" {
			t.Error("categories endpoint should not trigger a login")
		}
		w.Write([]byte(`[{"categoryId":2,"label":"Road"},{"categoryId":5,"label":"Sports Car"}]`))
	}))
	defer server.Close()

	// No credentials configured at all
	client := NewHTTPClient(server.URL, logger.Noop{})
	categories, err := client.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
	if categories[1].Label != "Sports Car" {
		t.Errorf("expected Sports Car, got %q", categories[1].Label)
	}
}

func TestHTTPClient_Categories_NonArrayShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "null", body: `null`},
		{name: "error object", body: `{"error":"maintenance"}`},
		{name: "empty array", body: `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewHTTPClient(server.URL, logger.Noop{})
			categories, err := client.Categories(context.Background())
			if err != nil {
				t.Fatalf("Categories failed: %v", err)
			}
			if categories == nil {
				t.Fatal("expected non-nil category slice")
			}
			if len(categories) != 0 {
				t.Errorf("expected empty slice, got %d entries", len(categories))
			}
		})
	}
}

func TestHTTPClient_StatusErrorPassthrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth" {
			w.Write([]byte(`{}`))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`upstream down`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.MemberRecap(context.Background(), 123, 2024, 2)
	if err == nil {
		t.Fatal("expected error for 503 response")
	}
	statusErr, ok := err.(*StatusError)
	if !ok {
		t.Fatalf("expected *StatusError, got %T: %v", err, err)
	}
	if statusErr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected code 503, got %d", statusErr.Code)
	}
	if statusErr.Body != "upstream down" {
		t.Errorf("expected upstream body, got %q", statusErr.Body)
	}
}

func TestHTTPClient_ChartData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth" {
			w.Write([]byte(`{}`))
			return
		}
		if got := r.URL.Query().Get("chart_type"); got != "1" {
			t.Errorf("expected chart_type=1, got %s", got)
		}
		if got := r.URL.Query().Get("category_id"); got != "2" {
			t.Errorf("expected category_id=2, got %s", got)
		}
		w.Write([]byte(`{"categoryId":2,"chartType":1,"data":[{"when":"2024-05-01","value":2350}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	chart, err := client.ChartData(context.Background(), 123, 2, ChartTypeIRating)
	if err != nil {
		t.Fatalf("ChartData failed: %v", err)
	}
	if len(chart.Points) != 1 || chart.Points[0].Value != 2350 {
		t.Errorf("unexpected points: %+v", chart.Points)
	}
}

func TestHTTPClient_SubsessionResult_Passthrough(t *testing.T) {
	payload := `{"subsessionId":999,"sessionResults":[{"custId":123,"finishPosition":1}]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth" {
			w.Write([]byte(`{}`))
			return
		}
		if got := r.URL.Query().Get("subsession_id"); got != "999" {
			t.Errorf("expected subsession_id=999, got %s", got)
		}
		w.Write([]byte(payload))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	raw, err := client.SubsessionResult(context.Background(), 999)
	if err != nil {
		t.Fatalf("SubsessionResult failed: %v", err)
	}
	if string(raw) != payload {
		t.Errorf("expected passthrough payload, got %s", raw)
	}
}
