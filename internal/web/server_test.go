package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/datasets/internal/config"
	"github.com/JonMunkholm/datasets/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(func(string) (string, bool) { return "", false })
	require.NoError(t, err)
	return cfg
}

func testStore() *core.Store {
	return core.NewStore(core.DefaultTables(), map[string]core.Table{
		core.TableFactors: {
			core.NewRow(core.Str("State", "NY"), core.Str("Score", "3")),
			core.NewRow(core.Str("State", "CA"), core.Str("Score", "5")),
			core.NewRow(core.Str("State", "NY"), core.Str("Score", "4")),
			core.NewRow(core.Null("State"), core.Str("Score", "")),
		},
		core.TablePerformance: {
			core.NewRow(core.Str("<b>", "1"), core.Str("Note", "a & b")),
		},
	})
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	s := NewServer(testStore(), cfg)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func do(t *testing.T, s *Server, method, target string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, testConfig(t))

	rec := do(t, s, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, s.store.ID().String(), resp.Snapshot)
	assert.Equal(t, map[string]int{
		"conditions":  0,
		"factors":     4,
		"performance": 1,
		"treatment":   0,
	}, resp.Tables)
}

func TestSummaryEndpoint(t *testing.T) {
	s := newTestServer(t, testConfig(t))

	rec := do(t, s, http.MethodGet, "/api/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, `{"conditions":{"rows":0},"factors":`), body)
	assert.Contains(t, body, `"treatment":{"rows":0}`)

	var sum map[string]struct {
		Rows           int                         `json:"rows"`
		NumericColumns []string                    `json:"numeric_columns"`
		Stats          map[string]core.ColumnStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))

	factors := sum["factors"]
	assert.Equal(t, 4, factors.Rows)
	assert.Equal(t, []string{"Score"}, factors.NumericColumns)
	assert.Equal(t, core.ColumnStats{Count: 3, Mean: 4, Min: 3, Max: 5}, factors.Stats["Score"])
}

func TestListTables(t *testing.T) {
	s := newTestServer(t, testConfig(t))

	rec := do(t, s, http.MethodGet, "/api/tables", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[
		{"name":"conditions","rows":0},
		{"name":"factors","rows":4},
		{"name":"performance","rows":1},
		{"name":"treatment","rows":0}
	]`, rec.Body.String())
}

func TestTableRows(t *testing.T) {
	s := newTestServer(t, testConfig(t))

	for _, path := range []string{"/api/tables/factors", "/api/factors"} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, path, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t,
				`[{"State":"NY","Score":"3"},{"State":"CA","Score":"5"},{"State":"NY","Score":"4"},{"State":null,"Score":""}]`,
				strings.TrimSpace(rec.Body.String()))
		})
	}
}

func TestTableRows_EmptyTable(t *testing.T) {
	s := newTestServer(t, testConfig(t))

	rec := do(t, s, http.MethodGet, "/api/tables/treatment", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestTableRows_UnknownTable(t *testing.T) {
	s := newTestServer(t, testConfig(t))

	for _, path := range []string{"/api/tables/nope", "/api/nope"} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, path, nil)
			require.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, "TBL001", decodeError(t, rec).Code)
		})
	}
}

func TestGroup(t *testing.T) {
	s := newTestServer(t, testConfig(t))

	for _, path := range []string{
		"/api/tables/factors/group?field=State",
		"/api/factors/group-by?field=State",
	} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, path, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t,
				`[{"key":"NY","count":2},{"key":"CA","count":1},{"key":"Unknown","count":1}]`,
				strings.TrimSpace(rec.Body.String()))
		})
	}
}

func TestGroup_AbsentFieldIsUnknown(t *testing.T) {
	s := newTestServer(t, testConfig(t))

	rec := do(t, s, http.MethodGet, "/api/tables/factors/group?field=Missing", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `[{"key":"Unknown","count":4}]`, strings.TrimSpace(rec.Body.String()))
}

func TestGroup_EmptyTable(t *testing.T) {
	s := newTestServer(t, testConfig(t))

	rec := do(t, s, http.MethodGet, "/api/tables/conditions/group?field=State", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestGroup_Errors(t *testing.T) {
	s := newTestServer(t, testConfig(t))

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantErr  string
	}{
		{"missing field", "/api/tables/factors/group", http.StatusBadRequest, "REQ001"},
		{"blank field", "/api/tables/factors/group?field=%20%20", http.StatusBadRequest, "REQ001"},
		{"missing field on legacy route", "/api/factors/group-by", http.StatusBadRequest, "REQ001"},
		{"missing field on unknown table", "/api/tables/nope/group", http.StatusBadRequest, "REQ001"},
		{"unknown table", "/api/tables/nope/group?field=State", http.StatusNotFound, "TBL001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, tt.path, nil)
			require.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantErr, resp.Code)
			assert.NotEmpty(t, resp.Message)
			assert.NotEmpty(t, resp.Action)
		})
	}
}

func TestOverview(t *testing.T) {
	s := newTestServer(t, testConfig(t))

	rec := do(t, s, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	for _, name := range core.DefaultTables() {
		assert.Contains(t, body, `<h2>`+name+`</h2>`)
	}
	assert.Contains(t, body, "&lt;b&gt;")
	assert.NotContains(t, body, "<td><b></td>")
	assert.Contains(t, body, s.store.ID().String())
}

func TestSecurityHeaders(t *testing.T) {
	cfg := testConfig(t)
	s := newTestServer(t, cfg)

	rec := do(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))

	cfg = testConfig(t)
	cfg.Security.EnableCSP = false
	s = newTestServer(t, cfg)

	rec = do(t, s, http.MethodGet, "/healthz", nil)
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, testConfig(t))

	rec := do(t, s, http.MethodGet, "/api/tables", map[string]string{"Origin": "http://localhost:3000"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_RestrictedOrigins(t *testing.T) {
	cfg := testConfig(t)
	cfg.CORS.AllowedOrigins = []string{"https://dash.example.com"}
	s := newTestServer(t, cfg)

	rec := do(t, s, http.MethodGet, "/api/tables", map[string]string{"Origin": "https://dash.example.com"})
	assert.Equal(t, "https://dash.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(t, s, http.MethodGet, "/api/tables", map[string]string{"Origin": "https://evil.example.com"})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := testConfig(t)
	cfg.Rate.RequestsPerMinute = 2
	s := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		rec := do(t, s, http.MethodGet, "/api/tables", nil)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}

	rec := do(t, s, http.MethodGet, "/api/tables", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "RATE001", decodeError(t, rec).Code)
}

func TestRateLimitDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Rate.Enabled = false
	cfg.Rate.RequestsPerMinute = 1
	s := newTestServer(t, cfg)

	for i := 0; i < 5; i++ {
		rec := do(t, s, http.MethodGet, "/healthz", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Nil(t, s.limiter)
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)
	defer rl.stop()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.2"), "limits are per IP")

	now = now.Add(time.Minute + time.Second)
	assert.True(t, rl.allow("10.0.0.1"), "new window")
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := newRateLimiter(5, time.Minute)
	defer rl.stop()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.allow("10.0.0.1")
	now = now.Add(30 * time.Second)
	rl.allow("10.0.0.2")

	now = now.Add(100 * time.Second)
	rl.cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.visitors, "10.0.0.1")
	assert.Contains(t, rl.visitors, "10.0.0.2")
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := newRateLimiter(1, time.Minute)
	rl.stop()
	rl.stop()
}

func TestShutdownWithoutStart(t *testing.T) {
	s := NewServer(testStore(), testConfig(t))
	assert.NoError(t, s.Shutdown(context.Background()))
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte("body{}"), 0o644))

	cfg := testConfig(t)
	cfg.Data.StaticDir = dir
	s := newTestServer(t, cfg)

	rec := do(t, s, http.MethodGet, "/static/style.css", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body{}", rec.Body.String())

	rec = do(t, s, http.MethodGet, "/", nil)
	assert.Contains(t, rec.Body.String(), `href="/static/style.css"`)
}
