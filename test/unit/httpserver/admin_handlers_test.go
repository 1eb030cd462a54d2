package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/gatewarden/gatewarden/internal/core/domain/access"
	"github.com/gatewarden/gatewarden/internal/core/domain/audit"
	"github.com/gatewarden/gatewarden/internal/core/domain/ratelimit"
	"github.com/gatewarden/gatewarden/internal/core/ports"
	gatewarden_http "github.com/gatewarden/gatewarden/internal/infrastructure/httpserver"
	"github.com/gatewarden/gatewarden/test/mocks"
)

const testJWTSecret = "test-jwt-secret"

func newTestServer(t *testing.T, deps gatewarden_http.ServerDeps) *httptest.Server {
	t.Helper()
	if deps.DecisionEngine == nil {
		deps.DecisionEngine = &mocks.DecisionEngineMock{}
	}
	if deps.RateLimiter == nil {
		deps.RateLimiter = &mocks.RateLimiterMock{}
	}
	if deps.ListAdmin == nil {
		deps.ListAdmin = &mocks.ListAdminServiceMock{}
	}
	if deps.Reports == nil {
		deps.Reports = &mocks.ReportServiceMock{}
	}

	srv := gatewarden_http.NewServer(&gatewarden_http.ServerConfig{
		Host:         "127.0.0.1",
		Port:         "0",
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		IdleTimeout:  time.Second,
	}, testJWTSecret, logrus.New(), deps)

	ts := httptest.NewServer(srv.Echo())
	t.Cleanup(ts.Close)
	return ts
}

func adminToken(t *testing.T) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  uuid.New().String(),
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, ts *httptest.Server, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, respBody
}

func TestAdminEndpoints_RequireAuthentication(t *testing.T) {
	ts := newTestServer(t, gatewarden_http.ServerDeps{})

	resp, _ := doRequest(t, ts, http.MethodGet, "/api/v1/admin/blacklist", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminEndpoints_GuardedByEngine(t *testing.T) {
	engine := &mocks.DecisionEngineMock{
		DecideFn: func(ctx context.Context, id access.Identity, endpoint string) access.Verdict {
			return access.VerdictRateLimited
		},
	}
	ts := newTestServer(t, gatewarden_http.ServerDeps{DecisionEngine: engine})

	resp, _ := doRequest(t, ts, http.MethodGet, "/api/v1/admin/blacklist", adminToken(t), nil)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestAdminEndpoints_AnonymousRequestsAreCounted(t *testing.T) {
	var gotID *access.Identity
	engine := &mocks.DecisionEngineMock{
		DecideFn: func(ctx context.Context, id access.Identity, endpoint string) access.Verdict {
			gotID = &id
			return access.VerdictRateLimited
		},
	}
	ts := newTestServer(t, gatewarden_http.ServerDeps{DecisionEngine: engine})

	// No token: the engine still sees the request and its verdict wins
	// over the role check, so abusive anonymous clients get throttled
	// and escalated instead of only collecting 401s.
	resp, _ := doRequest(t, ts, http.MethodGet, "/api/v1/admin/blacklist", "", nil)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.NotNil(t, gotID)
	require.Nil(t, gotID.Principal)
}

func TestGetBlacklist_ReturnsEntriesAndPagination(t *testing.T) {
	ip := "203.0.113.7"
	reports := &mocks.ReportServiceMock{
		GetBlacklistFn: func(ctx context.Context, filter *access.BlacklistFilter, page ports.PageRequest) ([]*access.BlacklistEntry, *ports.Pagination, *access.BlacklistStats, error) {
			entries := []*access.BlacklistEntry{{IPAddress: &ip, TargetType: access.TargetIP, Reason: access.ReasonRateLimitAbuse, IsActive: true}}
			return entries, &ports.Pagination{CurrentPage: 1, PageSize: 20, TotalCount: 1, TotalPages: 1}, &access.BlacklistStats{TotalEntries: 1, ActiveEntries: 1}, nil
		},
	}
	ts := newTestServer(t, gatewarden_http.ServerDeps{Reports: reports})

	resp, body := doRequest(t, ts, http.MethodGet, "/api/v1/admin/blacklist", adminToken(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Entries    []map[string]interface{} `json:"entries"`
		Pagination map[string]interface{}   `json:"pagination"`
		Statistics map[string]interface{}   `json:"statistics"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Len(t, payload.Entries, 1)
	require.Equal(t, ip, payload.Entries[0]["ip_address"])
	require.EqualValues(t, 1, payload.Pagination["total_count"])
}

func TestGetRateWindows_PassesFilterAndPage(t *testing.T) {
	var gotFilter *ratelimit.WindowFilter
	var gotPage ports.PageRequest
	reports := &mocks.ReportServiceMock{
		GetWindowsFn: func(ctx context.Context, filter *ratelimit.WindowFilter, page ports.PageRequest) ([]*ratelimit.RateWindow, *ports.Pagination, *ratelimit.WindowStats, error) {
			gotFilter = filter
			gotPage = page
			return nil, &ports.Pagination{}, &ratelimit.WindowStats{}, nil
		},
	}
	ts := newTestServer(t, gatewarden_http.ServerDeps{Reports: reports})

	resp, _ := doRequest(t, ts, http.MethodGet, "/api/v1/admin/rate-limits?ip_address=10.0.0.1&endpoint=login_rate&page=2&page_size=50", adminToken(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, gotFilter.IPAddress)
	require.Equal(t, "10.0.0.1", *gotFilter.IPAddress)
	require.NotNil(t, gotFilter.Endpoint)
	require.Equal(t, "login_rate", *gotFilter.Endpoint)
	require.Equal(t, 2, gotPage.Page)
	require.Equal(t, 50, gotPage.PageSize)
}

func TestGetDecisionEvents_ReturnsEvents(t *testing.T) {
	reports := &mocks.ReportServiceMock{
		GetEventsFn: func(ctx context.Context, filter *audit.EventFilter, page ports.PageRequest) ([]*audit.DecisionEvent, *ports.Pagination, error) {
			return []*audit.DecisionEvent{{IPAddress: "10.0.0.1", Endpoint: "login_rate", Kind: audit.EventAutoBlacklist}}, &ports.Pagination{TotalCount: 1}, nil
		},
	}
	ts := newTestServer(t, gatewarden_http.ServerDeps{Reports: reports})

	resp, body := doRequest(t, ts, http.MethodGet, "/api/v1/admin/events", adminToken(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Events []map[string]interface{} `json:"events"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Len(t, payload.Events, 1)
	require.Equal(t, string(audit.EventAutoBlacklist), payload.Events[0]["kind"])
}

func TestAddToBlacklist_CreatedByDefaultsToPrincipal(t *testing.T) {
	var gotReq *access.UpsertBlacklistRequest
	listAdmin := &mocks.ListAdminServiceMock{
		AddToBlacklistFn: func(ctx context.Context, req *access.UpsertBlacklistRequest) (*access.BlacklistEntry, error) {
			gotReq = req
			ip := req.IPAddress
			return &access.BlacklistEntry{IPAddress: &ip, TargetType: access.TargetIP, Reason: req.Reason, CreatedBy: req.CreatedBy, IsActive: true}, nil
		},
	}
	ts := newTestServer(t, gatewarden_http.ServerDeps{ListAdmin: listAdmin})

	resp, _ := doRequest(t, ts, http.MethodPost, "/api/v1/admin/blacklist", adminToken(t), map[string]interface{}{
		"ip_address": "203.0.113.7",
		"reason":     "manual",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotNil(t, gotReq)
	require.Equal(t, "203.0.113.7", gotReq.IPAddress)
	require.NotEmpty(t, gotReq.CreatedBy)
	_, err := uuid.Parse(gotReq.CreatedBy)
	require.NoError(t, err)
}

func TestAddToBlacklist_ValidationErrorReturns400(t *testing.T) {
	listAdmin := &mocks.ListAdminServiceMock{
		AddToBlacklistFn: func(ctx context.Context, req *access.UpsertBlacklistRequest) (*access.BlacklistEntry, error) {
			return nil, access.ErrValidation
		},
	}
	ts := newTestServer(t, gatewarden_http.ServerDeps{ListAdmin: listAdmin})

	resp, _ := doRequest(t, ts, http.MethodPost, "/api/v1/admin/blacklist", adminToken(t), map[string]interface{}{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRemoveFromLists_RequiresTarget(t *testing.T) {
	ts := newTestServer(t, gatewarden_http.ServerDeps{})

	resp, _ := doRequest(t, ts, http.MethodDelete, "/api/v1/admin/lists", adminToken(t), nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRemoveFromLists_ReturnsDeactivatedCount(t *testing.T) {
	listAdmin := &mocks.ListAdminServiceMock{
		RemoveFromListsFn: func(ctx context.Context, id access.Identity) (int64, error) {
			require.Equal(t, "203.0.113.7", id.IP)
			return 2, nil
		},
	}
	ts := newTestServer(t, gatewarden_http.ServerDeps{ListAdmin: listAdmin})

	resp, body := doRequest(t, ts, http.MethodDelete, "/api/v1/admin/lists?ip_address=203.0.113.7", adminToken(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.EqualValues(t, 2, payload["deactivated"])
}

func TestResetRateLimit_DefaultsEndpoint(t *testing.T) {
	var gotEndpoint string
	limiter := &mocks.RateLimiterMock{
		ResetFn: func(ctx context.Context, id access.Identity, endpoint string) (int64, error) {
			gotEndpoint = endpoint
			return 1, nil
		},
	}
	ts := newTestServer(t, gatewarden_http.ServerDeps{RateLimiter: limiter})

	resp, body := doRequest(t, ts, http.MethodDelete, "/api/v1/admin/rate-limits?ip_address=10.0.0.1", adminToken(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, ratelimit.EndpointAPIGeneral, gotEndpoint)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.EqualValues(t, 1, payload["deleted"])
}

func TestHealthEndpoint_IsPublic(t *testing.T) {
	ts := newTestServer(t, gatewarden_http.ServerDeps{})

	resp, body := doRequest(t, ts, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Equal(t, "gatewarden", payload["service"])
}
