// Package logging builds the process logger from the logging config.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mozsearch/internal/config"
)

// New builds a logger writing to stderr.
func New(cfg config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	return NewWriter(os.Stderr, cfg, verbose)
}

// NewWriter builds a logger on w. Format "json" uses the production
// encoder; "text" uses the console encoder. verbose forces debug level.
func NewWriter(w io.Writer, cfg config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level, verbose)
	if err != nil {
		return nil, err
	}
	opts := []zap.Option{zap.AddCaller()}
	var enc zapcore.Encoder
	switch cfg.Format {
	case "json":
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	case "", "text":
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(ec)
	default:
		return nil, fmt.Errorf("DOC_CONFIG_LOGGING: invalid format %q", cfg.Format)
	}
	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core, opts...), nil
}

func parseLevel(s string, verbose bool) (zapcore.Level, error) {
	if verbose {
		return zapcore.DebugLevel, nil
	}
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("DOC_CONFIG_LOGGING: %w", err)
	}
	return level, nil
}
