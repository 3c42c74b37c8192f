package tool

import (
	"os"

	"github.com/Mpratama260304/proxy-scraper-checker/internal/shared/logger"
)

// defaultBinaryCandidates lists conventional install locations for the
// external checker, most specific deployment first: container image, bare
// metal, then a sibling checkout built during development.
var defaultBinaryCandidates = []string{
	"/app/proxy-scraper-checker/proxy-scraper-checker",
	"/usr/local/bin/proxy-scraper-checker",
	"/usr/bin/proxy-scraper-checker",
	"/opt/proxy-scraper-checker/proxy-scraper-checker",
	"../proxy-scraper-checker/target/release/proxy-scraper-checker",
}

// BinaryCandidates returns the ordered candidate list for the executable.
// An explicit override (config key or PSC_BIN) is tried first.
func BinaryCandidates(override string) []string {
	if override == "" {
		return defaultBinaryCandidates
	}
	return append([]string{override}, defaultBinaryCandidates...)
}

// LocateBinary returns the first candidate that exists on the filesystem.
// It checks existence only; permission problems surface later when the
// runner tries to start the process. The result is never cached because a
// build step may drop the binary in place after the panel starts.
func LocateBinary(candidates []string) (string, bool) {
	l := logger.WithComponent("Tool/Locator")
	for _, candidate := range candidates {
		_, err := os.Stat(candidate)
		l.Debug().Str("candidate", candidate).Bool("exists", err == nil).Msg("Probing executable candidate.")
		if err == nil {
			return candidate, true
		}
	}
	l.Warn().Int("candidates", len(candidates)).Msg("External checker executable not found.")
	return "", false
}
