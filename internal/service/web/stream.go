package web

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Mpratama260304/proxy-scraper-checker/internal/results"
	"github.com/Mpratama260304/proxy-scraper-checker/internal/shared/logger"
	"github.com/Mpratama260304/proxy-scraper-checker/internal/tool"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // Allow all origins
}

// streamEvent is one message on the live-log channel.
type streamEvent struct {
	Type         string         `json:"type"`
	Message      string         `json:"message"`
	Success      *bool          `json:"success,omitempty"`
	Stats        *results.Stats `json:"stats,omitempty"`
	TotalProxies *int           `json:"totalProxies,omitempty"`
}

// severityRules classify stderr lines, first match wins. Kept as an ordered
// table so new patterns slot in without touching the session logic.
var severityRules = []struct {
	substr string
	event  string
}{
	{"ERROR", "error"},
	{"WARN", "warning"},
	{"INFO", "info"},
}

func classifyStderrLine(line string) string {
	for _, rule := range severityRules {
		if strings.Contains(line, rule.substr) {
			return rule.event
		}
	}
	return "log"
}

// session is the live state of one in-flight checker invocation, owned by a
// single websocket connection. It is created on upgrade and gone when the
// process exits or the client disconnects, whichever comes first.
type session struct {
	id     string
	conn   *websocket.Conn
	log    zerolog.Logger
	cancel context.CancelFunc
	gone   atomic.Bool
}

// emit writes one event to the client. A write failure marks the client as
// gone and cancels the run; no further events will be delivered.
func (s *session) emit(event streamEvent) {
	if s.gone.Load() {
		return
	}
	if err := s.conn.WriteJSON(event); err != nil {
		s.log.Warn().Err(err).Msg("Write to streaming client failed, cancelling run.")
		s.gone.Store(true)
		s.cancel()
	}
}

func (s *session) emitTerminal(success bool, message string, stats *results.Stats, total *int) {
	s.emit(streamEvent{Type: "complete", Message: message, Success: &success, Stats: stats, TotalProxies: total})
}

// HandleScrapeStream runs the checker with live output streamed to a
// websocket client. GET /ws/scrape?clearCache=0|1.
//
// Event ordering follows chunk arrival from the child process. A chunk
// boundary is treated as a line boundary: a logical line split across two
// chunks becomes two events. Display-only limitation, deliberately not
// papered over with a carry buffer.
func (h *Handler) HandleScrapeStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to upgrade websocket")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessionID := uuid.NewString()
	s := &session{
		id:     sessionID,
		conn:   conn,
		log:    logger.WithComponent("Web/Stream").With().Str("session", sessionID).Logger(),
		cancel: cancel,
	}
	s.log.Info().Str("remote_addr", conn.RemoteAddr().String()).Msg("Streaming session opened.")

	// Read pump: the client never sends data, but reading is how we notice
	// the disconnect that cancels the run.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.gone.Store(true)
				cancel()
				return
			}
		}
	}()

	if !h.runLock.TryAcquire() {
		s.emit(streamEvent{Type: "error", Message: "A scraper run is already in progress"})
		s.emitTerminal(false, "Run rejected: another run is in progress", nil, nil)
		return
	}
	defer h.runLock.Release()

	binPath, found := tool.LocateBinary(h.binaryCandidates)
	if !found {
		// Terminal shortcut: exactly two events, never any log output.
		s.emit(streamEvent{Type: "error", Message: "proxy-scraper-checker executable not found"})
		s.emitTerminal(false, "Cannot start: executable not found", nil, nil)
		return
	}

	s.emit(streamEvent{Type: "status", Message: "Starting proxy scraper..."})

	if wantsCacheClear(r) {
		cleared := tool.ClearCache(h.cacheDir)
		s.emit(streamEvent{Type: "info", Message: cleared.Message})
		for _, name := range cleared.FilesDeleted {
			s.emit(streamEvent{Type: "log", Message: "Deleted " + name})
		}
	}

	result := tool.Run(ctx, binPath, h.configPath, func(stream tool.Stream, chunk string) {
		for _, line := range strings.Split(chunk, "\n") {
			if line == "" {
				continue
			}
			eventType := "log"
			if stream == tool.Stderr {
				eventType = classifyStderrLine(line)
			}
			s.emit(streamEvent{Type: eventType, Message: line})
		}
	})

	if s.gone.Load() {
		// Client disconnected mid-run; the context cancellation already
		// signalled the child. Nothing more to say to nobody.
		s.log.Info().Msg("Client disconnected, run cancelled.")
		return
	}

	if !result.Started {
		s.emit(streamEvent{Type: "error", Message: result.Message})
		s.emitTerminal(false, "Scraper failed to start", nil, nil)
		return
	}

	outputDir := tool.ResolveOutputDir(h.outputCandidates, h.fallbackOut)
	records := results.LoadRecords(outputDir)
	stats := results.ComputeStats(records)
	total := len(records)
	s.emitTerminal(result.Success, result.Message, &stats, &total)
	s.log.Info().Bool("success", result.Success).Int("proxies", total).Msg("Streaming session finished.")
}

func wantsCacheClear(r *http.Request) bool {
	switch r.URL.Query().Get("clearCache") {
	case "1", "true", "yes":
		return true
	}
	return false
}
