package zerolog

import (
	"github.com/rs/zerolog"

	"github.com/goliatone/go-cacheable/cache"
)

// ZerologLogger adapts a zerolog.Logger to cache.Logger.
type ZerologLogger struct{ L zerolog.Logger }

var _ cache.Logger = ZerologLogger{}

func (z ZerologLogger) Debug(msg string, f cache.Fields) { z.L.Debug().Fields(map[string]any(f)).Msg(msg) }
func (z ZerologLogger) Info(msg string, f cache.Fields)  { z.L.Info().Fields(map[string]any(f)).Msg(msg) }
func (z ZerologLogger) Warn(msg string, f cache.Fields)  { z.L.Warn().Fields(map[string]any(f)).Msg(msg) }
func (z ZerologLogger) Error(msg string, f cache.Fields) { z.L.Error().Fields(map[string]any(f)).Msg(msg) }
