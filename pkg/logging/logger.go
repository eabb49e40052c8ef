// Package logging configures zerolog for the cacheable binaries and bridges
// it to cache.Logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/goliatone/go-cacheable/cache"
	zlog "github.com/goliatone/go-cacheable/log/zerolog"
)

// Level is a textual log level as read from flags or config.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Config holds logger configuration.
type Config struct {
	Level Level `mapstructure:"level"`

	// Pretty switches from JSON lines to zerolog's console writer.
	Pretty bool `mapstructure:"pretty"`

	// Output defaults to os.Stderr.
	Output io.Writer `mapstructure:"-"`
}

// DefaultConfig returns JSON logging at info level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}

	logger := zerolog.New(out).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// ParseLevel maps a level name to zerolog. Unknown names fall back to info.
func ParseLevel(level Level) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger returns the global logger tagged with component.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// CacheLogger returns NewLogger(component) as a cache.Logger, ready for
// cache.WithLogger.
//
// Levels used by the cache: debug for hits, misses, sets and syncs; warn for
// backend failures; error for failed model syncs.
func CacheLogger(component string) cache.Logger {
	return zlog.ZerologLogger{L: NewLogger(component)}
}
