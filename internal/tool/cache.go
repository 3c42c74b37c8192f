package tool

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Mpratama260304/proxy-scraper-checker/internal/shared/logger"
)

// CacheFiles is the full set of auxiliary files the external checker
// downloads: the GeoLite2 databases plus their etag sidecars. Nothing else
// in the cache directory is ever touched.
var CacheFiles = []string{
	"GeoLite2-ASN.mmdb",
	"GeoLite2-ASN.mmdb.etag",
	"GeoLite2-City.mmdb",
	"GeoLite2-City.mmdb.etag",
}

// ClearResult reports one cache clear invocation. Success means zero
// per-file errors; absent files are skipped silently.
type ClearResult struct {
	Success      bool     `json:"success"`
	Message      string   `json:"message"`
	FilesDeleted []string `json:"filesDeleted"`
	Errors       []string `json:"errors"`
}

// ClearCache removes the known cache files from dir. Deletion failures are
// collected per file and never abort the remaining deletions. Calling it
// twice in a row is safe; the second call simply deletes nothing.
func ClearCache(dir string) ClearResult {
	l := logger.WithComponent("Tool/Cache")

	result := ClearResult{FilesDeleted: []string{}, Errors: []string{}}
	for _, name := range CacheFiles {
		path := filepath.Join(dir, name)
		err := os.Remove(path)
		switch {
		case err == nil:
			l.Info().Str("file", name).Msg("Deleted cache file.")
			result.FilesDeleted = append(result.FilesDeleted, name)
		case os.IsNotExist(err):
			// Absent is fine, clearing is idempotent.
		default:
			l.Warn().Err(err).Str("file", name).Msg("Failed to delete cache file.")
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
		}
	}

	result.Success = len(result.Errors) == 0
	if result.Success {
		result.Message = fmt.Sprintf("Cache cleared, %d file(s) deleted", len(result.FilesDeleted))
	} else {
		result.Message = fmt.Sprintf("Cache clear finished with %d error(s)", len(result.Errors))
	}
	return result
}

// CacheEntry is the live filesystem state of one known cache file.
type CacheEntry struct {
	File     string    `json:"file"`
	Exists   bool      `json:"exists"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified,omitzero"`
}

// CacheStatus describes all known cache files plus their aggregate size.
type CacheStatus struct {
	Files          []CacheEntry `json:"files"`
	TotalSize      int64        `json:"totalSize"`
	TotalSizeHuman string       `json:"totalSizeHuman"`
}

// GetCacheStatus stats every known cache file. There is no in-memory
// tracking; existence, size and mtime are read live.
func GetCacheStatus(dir string) CacheStatus {
	status := CacheStatus{Files: make([]CacheEntry, 0, len(CacheFiles))}
	for _, name := range CacheFiles {
		entry := CacheEntry{File: name}
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil {
			entry.Exists = true
			entry.Size = info.Size()
			entry.Modified = info.ModTime()
			status.TotalSize += info.Size()
		}
		status.Files = append(status.Files, entry)
	}
	status.TotalSizeHuman = humanize.IBytes(uint64(status.TotalSize))
	return status
}
