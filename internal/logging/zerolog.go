package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts a zerolog.Logger to the Logger interface. Used for
// the human-readable console format in development.
type ZerologLogger struct {
	l zerolog.Logger
}

func NewZerologLogger(l zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{l: l}
}

func (z *ZerologLogger) log(e *zerolog.Event, msg string, args ...any) {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, args[i+1])
	}
	e.Msg(msg)
}

func (z *ZerologLogger) Debug(_ context.Context, msg string, args ...any) {
	z.log(z.l.Debug(), msg, args...)
}

func (z *ZerologLogger) Info(_ context.Context, msg string, args ...any) {
	z.log(z.l.Info(), msg, args...)
}

func (z *ZerologLogger) Warn(_ context.Context, msg string, args ...any) {
	z.log(z.l.Warn(), msg, args...)
}

func (z *ZerologLogger) Error(_ context.Context, msg string, args ...any) {
	z.log(z.l.Error(), msg, args...)
}

func (z *ZerologLogger) With(args ...any) Logger {
	c := z.l.With()
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		c = c.Interface(key, args[i+1])
	}
	return &ZerologLogger{l: c.Logger()}
}
