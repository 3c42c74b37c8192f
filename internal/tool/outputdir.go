package tool

import (
	"os"
	"path/filepath"

	"github.com/Mpratama260304/proxy-scraper-checker/internal/shared/logger"
)

// Artifact names written by the external checker inside its output directory.
const (
	StructuredArtifact = "proxies.json"
	TextArtifactDir    = "proxies"
	AllProtocolsFile   = "all.txt"
)

// defaultOutputCandidates lists plausible output roots across deployments.
var defaultOutputCandidates = []string{
	"/app/proxy-scraper-checker/out",
	"/var/lib/proxy-scraper-checker/out",
	"../proxy-scraper-checker/out",
	"./out",
}

// DefaultOutputDir is created lazily when no candidate matches.
const DefaultOutputDir = "./out"

// OutputCandidates returns the ordered candidate list for the result
// directory, with an optional configured override tried first.
func OutputCandidates(override string) []string {
	if override == "" {
		return defaultOutputCandidates
	}
	return append([]string{override}, defaultOutputCandidates...)
}

// hasResultArtifacts reports whether dir holds evidence of a prior run:
// either the structured result file or the aggregated text file.
func hasResultArtifacts(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, StructuredArtifact)); err == nil {
		return true
	}
	if _, err := os.Stat(filepath.Join(dir, TextArtifactDir, AllProtocolsFile)); err == nil {
		return true
	}
	return false
}

// ResolveOutputDir picks the directory holding the freshest result artifacts.
// A candidate with actual artifacts wins over one that merely exists, so a
// mounted-but-empty output volume cannot shadow a sibling directory holding
// prior results. Resolution is recomputed per request; the checker creates
// its output directory lazily mid-run.
func ResolveOutputDir(candidates []string, fallback string) string {
	l := logger.WithComponent("Tool/OutputDir")

	for _, dir := range candidates {
		if hasResultArtifacts(dir) {
			l.Debug().Str("dir", dir).Msg("Resolved output directory with existing artifacts.")
			return dir
		}
	}
	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			l.Debug().Str("dir", dir).Msg("Resolved empty but existing output directory.")
			return dir
		}
	}

	if err := os.MkdirAll(fallback, 0o755); err != nil {
		l.Warn().Err(err).Str("dir", fallback).Msg("Failed to create fallback output directory.")
	}
	return fallback
}
