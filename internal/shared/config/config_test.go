package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Mpratama260304/proxy-scraper-checker/internal/shared/types"
)

const sampleIni = `[web]
port = 8080
user = admin
password = secret

[tool]
binary = /opt/psc/proxy-scraper-checker
config_path = /opt/psc/config.toml
cache_dir = /var/cache/psc

[log]
level = debug
`

func writeIni(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "panel.ini")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadIni(t *testing.T) {
	cfg := new(types.Config)
	if err := LoadIni(cfg, writeIni(t, sampleIni)); err != nil {
		t.Fatal(err)
	}

	if cfg.WebConf.Port != 8080 || cfg.WebConf.User != "admin" {
		t.Errorf("web conf = %+v", cfg.WebConf)
	}
	if cfg.ToolConf.Binary != "/opt/psc/proxy-scraper-checker" {
		t.Errorf("binary = %q", cfg.ToolConf.Binary)
	}
	if cfg.LogConf.Level != "debug" {
		t.Errorf("level = %q", cfg.LogConf.Level)
	}
}

func TestLoadIniEnvOverrides(t *testing.T) {
	t.Setenv("PSC_WEB_PORT", "9999")
	t.Setenv("PSC_BIN", "/from/env/psc")

	cfg := new(types.Config)
	if err := LoadIni(cfg, writeIni(t, sampleIni)); err != nil {
		t.Fatal(err)
	}

	if cfg.WebConf.Port != 9999 {
		t.Errorf("port = %d, env override lost", cfg.WebConf.Port)
	}
	if cfg.ToolConf.Binary != "/from/env/psc" {
		t.Errorf("binary = %q, env override lost", cfg.ToolConf.Binary)
	}
}

func TestLoadIniMissingFile(t *testing.T) {
	cfg := new(types.Config)
	if err := LoadIni(cfg, filepath.Join(t.TempDir(), "absent.ini")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
