package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Mpratama260304/proxy-scraper-checker/internal/service/web"
	"github.com/Mpratama260304/proxy-scraper-checker/internal/shared/config"
	"github.com/Mpratama260304/proxy-scraper-checker/internal/shared/logger"
	"github.com/Mpratama260304/proxy-scraper-checker/internal/shared/types"
)

func main() {
	configDir := flag.String("configdir", "configs", "Path to config directory")
	flag.Parse()

	iniPath := filepath.Join(*configDir, "panel.ini")

	cfg := new(types.Config)
	if err := config.LoadIni(cfg, iniPath); err != nil {
		// Use standard fmt before the logger is initialized.
		fmt.Fprintf(os.Stderr, "Fatal: Failed to load config file '%s': %v\n", iniPath, err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogConf); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal: Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	var wg sync.WaitGroup
	web.StartServer(&wg, cfg)
	wg.Wait()
}
