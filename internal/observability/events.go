// File: internal/observability/events.go
package observability

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/macro-cli/api/schemas"
)

// LogEvents writes every event received on ch to logger until ch is closed.
// Progress is logged at debug so long waits do not flood the console.
func LogEvents(logger *zap.Logger, ch <-chan schemas.Event) {
	logger = logger.Named("events")
	for ev := range ch {
		fields := []zap.Field{
			zap.String("kind", string(ev.Kind)),
			zap.Int("line", ev.Line),
		}
		if ev.Command != "" {
			fields = append(fields, zap.String("command", ev.Command))
		}
		if ev.RunID != "" {
			fields = append(fields, zap.String("run_id", ev.RunID))
		}

		switch ev.Kind {
		case schemas.EventProgress:
			logger.Debug("Progress", append(fields, zap.Int("percent", ev.Percent))...)
		case schemas.EventDoing:
			logger.Info(ev.Detail, fields...)
		case schemas.EventRunStart, schemas.EventRunFinish:
			logger.Info("Run "+string(ev.Kind), append(fields, zap.String("detail", ev.Detail))...)
		default:
			logger.Debug("Command "+string(ev.Kind), fields...)
		}
	}
}
