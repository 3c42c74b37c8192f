package config

import (
	"os"
	"strconv"

	"gopkg.in/ini.v1"

	"github.com/Mpratama260304/proxy-scraper-checker/internal/shared/types"
)

// LoadIni loads the panel behaviour configuration. Environment variables
// override selected keys so container deployments can avoid editing the file.
func LoadIni(cfg *types.Config, fileName string) error {
	iniFile, err := ini.Load(fileName)
	if err != nil {
		return err
	}
	if err := iniFile.MapTo(cfg); err != nil {
		return err
	}
	overrideFromEnvInt(&cfg.WebConf.Port, "PSC_WEB_PORT")
	overrideFromEnvStr(&cfg.ToolConf.Binary, "PSC_BIN")
	overrideFromEnvStr(&cfg.ToolConf.ConfigPath, "PSC_CONFIG")
	overrideFromEnvStr(&cfg.ToolConf.OutputDir, "PSC_OUTPUT_DIR")
	overrideFromEnvStr(&cfg.ToolConf.CacheDir, "PSC_CACHE_DIR")
	return nil
}

func overrideFromEnvInt(target *int, envName string) {
	envValue := os.Getenv(envName)
	if envValue != "" {
		if intValue, err := strconv.Atoi(envValue); err == nil {
			*target = intValue
		}
	}
}

func overrideFromEnvStr(target *string, envName string) {
	if envValue := os.Getenv(envName); envValue != "" {
		*target = envValue
	}
}
