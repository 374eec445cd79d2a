package peg

import "github.com/rs/zerolog"

// NewZerologTracer adapts a zerolog.Logger to the Tracer signature, so
// a parse's trace lines go through the same structured logging
// backend as the rest of a program rather than fmt.Print.
func NewZerologTracer(logger zerolog.Logger) Tracer {
	return func(v ...any) {
		ev := logger.Debug()
		if len(v) == 1 {
			if s, ok := v[0].(string); ok {
				ev.Msg(s)
				return
			}
		}
		ev.Interface("trace", v).Msg("peg trace")
	}
}
