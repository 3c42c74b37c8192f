package web

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Mpratama260304/proxy-scraper-checker/internal/results"
	"github.com/Mpratama260304/proxy-scraper-checker/internal/shared/logger"
	"github.com/Mpratama260304/proxy-scraper-checker/internal/shared/types"
	"github.com/Mpratama260304/proxy-scraper-checker/internal/tool"
)

// maxInlineProxies caps how many records the synchronous trigger response
// inlines; the full set stays available via /api/proxies.
const maxInlineProxies = 100

// Handler serves the panel API. Candidate lists are computed once from the
// config; every request re-resolves against the live filesystem.
type Handler struct {
	binaryCandidates []string
	outputCandidates []string
	fallbackOut      string
	configPath       string
	cacheDir         string
	runLock          *RunLock
}

func NewHandler(cfg *types.Config) *Handler {
	return &Handler{
		binaryCandidates: tool.BinaryCandidates(cfg.ToolConf.Binary),
		outputCandidates: tool.OutputCandidates(cfg.ToolConf.OutputDir),
		fallbackOut:      tool.DefaultOutputDir,
		configPath:       cfg.ToolConf.ConfigPath,
		cacheDir:         cfg.ToolConf.CacheDir,
		runLock:          NewRunLock(),
	}
}

func (h *Handler) resolveOutputDir() string {
	return tool.ResolveOutputDir(h.outputCandidates, h.fallbackOut)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ScrapeResponse is the synchronous trigger result.
type ScrapeResponse struct {
	Success      bool             `json:"success"`
	Message      string           `json:"message"`
	Proxies      []results.Record `json:"proxies"`
	Stats        results.Stats    `json:"stats"`
	TotalProxies int              `json:"totalProxies"`
}

// HandleScrape runs the external checker to completion and returns the
// normalized results. POST /api/scrape.
func (h *Handler) HandleScrape(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.runLock.TryAcquire() {
		writeJSON(w, http.StatusConflict, ScrapeResponse{
			Message: "A scraper run is already in progress",
			Proxies: []results.Record{},
		})
		return
	}
	defer h.runLock.Release()

	binPath, found := tool.LocateBinary(h.binaryCandidates)
	if !found {
		writeJSON(w, http.StatusOK, ScrapeResponse{
			Message: "proxy-scraper-checker executable not found",
			Proxies: []results.Record{},
		})
		return
	}

	l := logger.WithComponent("Web/Scrape")
	result := tool.Run(r.Context(), binPath, h.configPath, func(stream tool.Stream, chunk string) {
		l.Debug().Int("stream", int(stream)).Msgf("%s", chunk)
	})

	outputDir := h.resolveOutputDir()
	records := results.LoadRecords(outputDir)
	stats := results.ComputeStats(records)

	inline := records
	if len(inline) > maxInlineProxies {
		inline = inline[:maxInlineProxies]
	}
	writeJSON(w, http.StatusOK, ScrapeResponse{
		Success:      result.Success,
		Message:      result.Message,
		Proxies:      inline,
		Stats:        stats,
		TotalProxies: len(records),
	})
}

// StatusResponse answers the dashboard status poll.
type StatusResponse struct {
	HasData     bool          `json:"hasData"`
	Stats       results.Stats `json:"stats"`
	LastUpdated *string       `json:"lastUpdated"`
	OutputDir   string        `json:"outputDir"`
}

// HandleStatus reports whether results exist and how fresh they are.
// GET /api/status.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	outputDir := h.resolveOutputDir()
	records := results.LoadRecords(outputDir)

	resp := StatusResponse{
		HasData:   len(records) > 0,
		Stats:     results.ComputeStats(records),
		OutputDir: outputDir,
	}
	if ts, ok := newestArtifactTime(outputDir); ok {
		formatted := ts.UTC().Format(time.RFC3339)
		resp.LastUpdated = &formatted
	}
	writeJSON(w, http.StatusOK, resp)
}

func newestArtifactTime(outputDir string) (time.Time, bool) {
	var newest time.Time
	for _, path := range []string{
		filepath.Join(outputDir, tool.StructuredArtifact),
		filepath.Join(outputDir, tool.TextArtifactDir, tool.AllProtocolsFile),
	} {
		if info, err := os.Stat(path); err == nil && info.ModTime().After(newest) {
			newest = info.ModTime()
		}
	}
	return newest, !newest.IsZero()
}

// HandleCacheClear deletes the GeoLite2 cache files. POST /api/cache/clear.
func (h *Handler) HandleCacheClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, tool.ClearCache(h.cacheDir))
}

// HandleCacheStatus reports the live state of the cache files.
// GET /api/cache/status.
func (h *Handler) HandleCacheStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, tool.GetCacheStatus(h.cacheDir))
}

// downloadTargets maps the download selector onto an artifact path relative
// to the output directory.
var downloadTargets = map[string]struct {
	relPath     string
	contentType string
}{
	"json":   {tool.StructuredArtifact, "application/json"},
	"all":    {filepath.Join(tool.TextArtifactDir, "all.txt"), "text/plain; charset=utf-8"},
	"http":   {filepath.Join(tool.TextArtifactDir, "http.txt"), "text/plain; charset=utf-8"},
	"socks4": {filepath.Join(tool.TextArtifactDir, "socks4.txt"), "text/plain; charset=utf-8"},
	"socks5": {filepath.Join(tool.TextArtifactDir, "socks5.txt"), "text/plain; charset=utf-8"},
}

// HandleDownload serves a raw result artifact.
// GET /api/download?type=json|all|http|socks4|socks5.
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	target, ok := downloadTargets[r.URL.Query().Get("type")]
	if !ok {
		http.Error(w, "Unknown download type", http.StatusBadRequest)
		return
	}

	path := filepath.Join(h.resolveOutputDir(), target.relPath)
	data, err := os.ReadFile(path)
	if err != nil {
		http.Error(w, "Artifact not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", target.contentType)
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filepath.Base(path)+"\"")
	w.Write(data)
}

// ProxiesResponse is the record query result.
type ProxiesResponse struct {
	Proxies []results.Record `json:"proxies"`
	Total   int              `json:"total"`
}

// HandleProxies returns the full or protocol-filtered record list.
// GET /api/proxies[?protocol=http|https|socks4|socks5|unknown].
func (h *Handler) HandleProxies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records := results.LoadRecords(h.resolveOutputDir())
	if selector := r.URL.Query().Get("protocol"); selector != "" {
		records = results.FilterByProtocol(records, results.ParseProtocol(selector))
	}
	writeJSON(w, http.StatusOK, ProxiesResponse{Proxies: records, Total: len(records)})
}
