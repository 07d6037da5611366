package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger.
// format is "json" (production encoder) or "console" (development encoder).
// output is "stderr", "stdout" or a file path; the interactive shell points it
// at a file so log lines do not interleave with rendered tables.
func NewLogger(level, format, output string) (*zap.Logger, error) {
	atomicLevel, err := zap.ParseAtomicLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	switch format {
	case "json":
		cfg = zap.NewProductionConfig()
	case "console", "":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if output != "" && output != "stderr" && output != "stdout" {
			// No ANSI colour codes in files.
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		}
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	if output == "" {
		output = "stderr"
	}
	cfg.Level = atomicLevel
	cfg.OutputPaths = []string{output}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
