package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"

	"surfup-server/internal/config"
)

// New returns the process logger. Development builds get colourised tint output,
// anything else writes JSON records tagged with version and environment.
func New(w io.Writer, cfg config.Config, version string, appName string) *slog.Logger {
	level := Level(cfg)

	if version == "dev" {
		h := tint.NewHandler(w, &tint.Options{
			Level:      level,
			AddSource:  true,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("app", appName)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: durationsAsMillis,
	})
	return slog.New(h).With(
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
	)
}

// Level is the configured level, lowered to debug when SQL statement logging
// is on since statements are logged at debug.
func Level(cfg config.Config) slog.Level {
	if cfg.LogSQL && cfg.LogLevel > slog.LevelDebug {
		return slog.LevelDebug
	}
	return cfg.LogLevel
}

// durationsAsMillis writes time.Duration attributes (such as the connection
// lifetime in the startup record) as fractional milliseconds instead of nanoseconds.
func durationsAsMillis(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindDuration {
		return slog.Float64(a.Key, float64(a.Value.Duration())/float64(time.Millisecond))
	}
	return a
}
