package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Mpratama260304/proxy-scraper-checker/internal/shared/types"
	"github.com/Mpratama260304/proxy-scraper-checker/internal/tool"
)

type testEnv struct {
	handler  *Handler
	outDir   string
	cacheDir string
	binDir   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	base := t.TempDir()
	outDir := filepath.Join(base, "out")
	cacheDir := filepath.Join(base, "cache")
	binDir := filepath.Join(base, "bin")
	for _, dir := range []string{outDir, cacheDir, binDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return &testEnv{
		handler: &Handler{
			binaryCandidates: []string{filepath.Join(binDir, "fake-checker")},
			outputCandidates: []string{outDir},
			fallbackOut:      filepath.Join(base, "fallback"),
			configPath:       filepath.Join(base, "config.toml"),
			cacheDir:         cacheDir,
			runLock:          NewRunLock(),
		},
		outDir:   outDir,
		cacheDir: cacheDir,
		binDir:   binDir,
	}
}

func (e *testEnv) installBinary(t *testing.T, body string) {
	t.Helper()
	path := filepath.Join(e.binDir, "fake-checker")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
}

func (e *testEnv) writeStructured(t *testing.T, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(e.outDir, tool.StructuredArtifact), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("bad response body %q: %v", rec.Body.String(), err)
	}
}

func TestHandleStatusNoData(t *testing.T) {
	env := newTestEnv(t)
	rec := httptest.NewRecorder()
	env.handler.HandleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	var resp StatusResponse
	decodeBody(t, rec, &resp)
	if resp.HasData {
		t.Error("hasData must be false without artifacts")
	}
	if resp.LastUpdated != nil {
		t.Errorf("lastUpdated must be null, got %q", *resp.LastUpdated)
	}
	if resp.OutputDir == "" {
		t.Error("outputDir missing")
	}
}

func TestHandleStatusWithData(t *testing.T) {
	env := newTestEnv(t)
	env.writeStructured(t, `[{"protocol": "http", "host": "1.2.3.4", "port": 8080, "timeout": 0.3}]`)

	rec := httptest.NewRecorder()
	env.handler.HandleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	var resp StatusResponse
	decodeBody(t, rec, &resp)
	if !resp.HasData {
		t.Error("hasData must be true")
	}
	if resp.Stats.Working != 1 || resp.Stats.HTTP != 1 {
		t.Errorf("stats = %+v", resp.Stats)
	}
	if resp.LastUpdated == nil {
		t.Fatal("lastUpdated missing")
	}
	if !strings.Contains(*resp.LastUpdated, "T") {
		t.Errorf("lastUpdated not RFC3339: %q", *resp.LastUpdated)
	}
	if resp.OutputDir != env.outDir {
		t.Errorf("outputDir = %q, want %q", resp.OutputDir, env.outDir)
	}
}

func TestHandleProxiesFiltered(t *testing.T) {
	env := newTestEnv(t)
	env.writeStructured(t, `[
		{"protocol": "http", "host": "1.1.1.1", "port": 80},
		{"protocol": "socks5", "host": "2.2.2.2", "port": 1080}
	]`)

	rec := httptest.NewRecorder()
	env.handler.HandleProxies(rec, httptest.NewRequest(http.MethodGet, "/api/proxies?protocol=socks5", nil))

	var resp ProxiesResponse
	decodeBody(t, rec, &resp)
	if resp.Total != 1 {
		t.Fatalf("total = %d, want 1", resp.Total)
	}
	if resp.Proxies[0].Host != "2.2.2.2" {
		t.Errorf("wrong record: %+v", resp.Proxies[0])
	}
}

func TestHandleDownload(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.handler.HandleDownload(rec, httptest.NewRequest(http.MethodGet, "/api/download?type=ftp", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown selector: code = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	env.handler.HandleDownload(rec, httptest.NewRequest(http.MethodGet, "/api/download?type=socks4", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing artifact: code = %d, want 404", rec.Code)
	}

	if err := os.MkdirAll(filepath.Join(env.outDir, tool.TextArtifactDir), 0o755); err != nil {
		t.Fatal(err)
	}
	content := "socks4://3.3.3.3:1080\n"
	if err := os.WriteFile(filepath.Join(env.outDir, tool.TextArtifactDir, "socks4.txt"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	rec = httptest.NewRecorder()
	env.handler.HandleDownload(rec, httptest.NewRequest(http.MethodGet, "/api/download?type=socks4", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", rec.Code)
	}
	if rec.Body.String() != content {
		t.Errorf("body = %q, want raw artifact bytes", rec.Body.String())
	}
}

func TestHandleCacheEndpoints(t *testing.T) {
	env := newTestEnv(t)
	if err := os.WriteFile(filepath.Join(env.cacheDir, tool.CacheFiles[0]), []byte("db"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	env.handler.HandleCacheStatus(rec, httptest.NewRequest(http.MethodGet, "/api/cache/status", nil))
	var status tool.CacheStatus
	decodeBody(t, rec, &status)
	if status.TotalSize != 2 {
		t.Errorf("totalSize = %d, want 2", status.TotalSize)
	}

	rec = httptest.NewRecorder()
	env.handler.HandleCacheClear(rec, httptest.NewRequest(http.MethodPost, "/api/cache/clear", nil))
	var cleared tool.ClearResult
	decodeBody(t, rec, &cleared)
	if !cleared.Success || len(cleared.FilesDeleted) != 1 {
		t.Errorf("clear result = %+v", cleared)
	}
	if _, err := os.Stat(filepath.Join(env.cacheDir, tool.CacheFiles[0])); !os.IsNotExist(err) {
		t.Error("cache file survived the clear")
	}
}

func TestHandleScrapeMethodGuard(t *testing.T) {
	env := newTestEnv(t)
	rec := httptest.NewRecorder()
	env.handler.HandleScrape(rec, httptest.NewRequest(http.MethodGet, "/api/scrape", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("code = %d, want 405", rec.Code)
	}
}

func TestHandleScrapeRejectsConcurrentRun(t *testing.T) {
	env := newTestEnv(t)
	if !env.handler.runLock.TryAcquire() {
		t.Fatal("could not arm run lock")
	}
	defer env.handler.runLock.Release()

	rec := httptest.NewRecorder()
	env.handler.HandleScrape(rec, httptest.NewRequest(http.MethodPost, "/api/scrape", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("code = %d, want 409", rec.Code)
	}
	var resp ScrapeResponse
	decodeBody(t, rec, &resp)
	if resp.Success {
		t.Error("busy rejection must not report success")
	}
}

func TestHandleScrapeMissingBinary(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.handler.HandleScrape(rec, httptest.NewRequest(http.MethodPost, "/api/scrape", nil))

	var resp ScrapeResponse
	decodeBody(t, rec, &resp)
	if resp.Success {
		t.Error("missing binary must not report success")
	}
	if !strings.Contains(resp.Message, "not found") {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestHandleScrapeRunsToolAndParsesResults(t *testing.T) {
	env := newTestEnv(t)
	env.installBinary(t, `echo scraping
cat > "$PSC_TEST_OUT/proxies.json" <<'EOF'
[{"protocol": "http", "host": "1.2.3.4", "port": 8080, "timeout": 0.5}]
EOF
`)
	t.Setenv("PSC_TEST_OUT", env.outDir)

	rec := httptest.NewRecorder()
	env.handler.HandleScrape(rec, httptest.NewRequest(http.MethodPost, "/api/scrape", nil))

	var resp ScrapeResponse
	decodeBody(t, rec, &resp)
	if !resp.Success {
		t.Fatalf("run failed: %+v", resp)
	}
	if resp.TotalProxies != 1 || len(resp.Proxies) != 1 {
		t.Fatalf("proxies = %d/%d, want 1/1", len(resp.Proxies), resp.TotalProxies)
	}
	if resp.Stats.Working != 1 {
		t.Errorf("stats = %+v", resp.Stats)
	}
}

func TestBasicAuth(t *testing.T) {
	env := newTestEnv(t)
	cfg := &types.Config{WebConf: types.WebConf{User: "admin", Password: "secret"}}
	mux := NewMux(cfg, env.handler)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated code = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.SetBasicAuth("admin", "secret")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("authenticated code = %d, want 200", rec.Code)
	}
}
