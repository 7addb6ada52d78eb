package configs

import (
	"flag"
	"os"

	"github.com/hilthontt/ridehail/internal/infrastructure/env"
)

var configCandidates = []string{
	"./config.yaml",
	"./config.yml",
	"./tmp/config.yaml",
	"../../config.yaml", // keep for local dev
	"/etc/ridehail/config.yaml",
	"/app/config.yaml", // common in Docker
}

// DetermineConfigPath returns an empty string when no file is found; Load then
// runs on defaults and env alone.
func DetermineConfigPath() string {
	var configPath string

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	return resolveConfigPath(configPath, configCandidates)
}

func resolveConfigPath(flagValue string, candidates []string) string {
	if flagValue != "" {
		return flagValue
	}

	if p := env.GetString("RIDEHAIL_CONFIG", ""); p != "" {
		return p
	}

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
