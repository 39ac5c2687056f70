package logger

import (
	"context"
	"log/slog"
	"sort"

	"github.com/jackc/pgx/v5/tracelog"
)

// NewPGXTracer forwards pgx query logs into slog. Query arguments are dropped
// so that password hashes and tokens never reach the log.
func NewPGXTracer(l *slog.Logger) *tracelog.TraceLog {
	return &tracelog.TraceLog{
		Logger: tracelog.LoggerFunc(func(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
			attrs := make([]slog.Attr, 0, len(data))
			for k, v := range data {
				switch k {
				case "args", "pid":
				default:
					attrs = append(attrs, slog.Any(k, v))
				}
			}
			sort.Slice(attrs, func(i, j int) bool {
				return attrs[i].Key < attrs[j].Key
			})

			l.LogAttrs(ctx, pgxLevel(level), "pgx: "+msg, attrs...)
		}),
		LogLevel: tracelog.LogLevelDebug,
	}
}

func pgxLevel(l tracelog.LogLevel) slog.Level {
	switch l {
	case tracelog.LogLevelTrace, tracelog.LogLevelDebug, tracelog.LogLevelInfo:
		return slog.LevelDebug
	case tracelog.LogLevelWarn:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
