package logging

import "github.com/rs/zerolog"

// ZerologAdapter adapts a zerolog.Logger to the Logger interface. This
// is the concrete logging backend this module ships, since zerolog is
// a structured-logging library commonly reached for by real-time
// processing pipelines in this style.
type ZerologAdapter struct {
	log zerolog.Logger
}

// NewZerologAdapter wraps an existing zerolog.Logger.
func NewZerologAdapter(log zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{log: log}
}

func (z *ZerologAdapter) Debug(msg string, kv ...any) { z.event(z.log.Debug(), msg, kv...) }
func (z *ZerologAdapter) Info(msg string, kv ...any)  { z.event(z.log.Info(), msg, kv...) }
func (z *ZerologAdapter) Warn(msg string, kv ...any)  { z.event(z.log.Warn(), msg, kv...) }
func (z *ZerologAdapter) Error(msg string, kv ...any) { z.event(z.log.Error(), msg, kv...) }

func (z *ZerologAdapter) event(e *zerolog.Event, msg string, kv ...any) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, kv[i+1])
	}
	e.Msg(msg)
}
