package logging

import (
	"io"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const appName = "ridehail"

func prepareLogInfo(cat Category, sub SubCategory, extra map[ExtraKey]any) map[ExtraKey]any {
	params := make(map[ExtraKey]any, len(extra)+2)
	for k, v := range extra {
		params[k] = v
	}
	params["Category"] = string(cat)
	params["SubCategory"] = string(sub)
	return params
}

func logParamsToZapParams(keys map[ExtraKey]any) []any {
	params := make([]any, 0, len(keys)*2)

	for k, v := range keys {
		params = append(params, string(k))
		params = append(params, v)
	}

	return params
}

func logParamsToZeroParams(keys map[ExtraKey]any) map[string]any {
	params := map[string]any{}

	for k, v := range keys {
		params[string(k)] = v
	}

	return params
}

// rotatingFile returns nil when no file path is configured.
func rotatingFile(cfg *LoggerConfig) io.Writer {
	if cfg.FilePath == "" {
		return nil
	}

	return &lumberjack.Logger{
		Filename:   filepath.Join(cfg.FilePath, appName+".log"),
		MaxSize:    10,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
		LocalTime:  true,
	}
}

func stdout() io.Writer {
	return os.Stdout
}
