package log

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

type (
	requestID struct{}
	sessionID struct{}
)

func RequestIDFromContext(c context.Context) string {
	id, _ := c.Value(requestID{}).(string)
	return id
}

func AttachRequestIDToContext(c context.Context, id string) context.Context {
	return context.WithValue(c, requestID{}, id)
}

func SessionIDFromContext(c context.Context) string {
	id, _ := c.Value(sessionID{}).(string)
	return id
}

func AttachSessionIDToContext(c context.Context, id string) context.Context {
	return context.WithValue(c, sessionID{}, id)
}

// AttachTraceIDFromContext copies the request id and the active span of the event
// context onto every event logged with Ctx(c).
func AttachTraceIDFromContext() zerolog.HookFunc {
	return func(e *zerolog.Event, level zerolog.Level, message string) {
		c := e.GetCtx()
		if c == nil {
			return
		}
		if reqID := RequestIDFromContext(c); reqID != "" {
			e.Str(KeyRequestID, reqID)
		}
		spanCtx := trace.SpanContextFromContext(c)
		if spanCtx.IsValid() {
			e.Str(KeyTraceID, spanCtx.TraceID().String()).
				Str(KeySpanID, spanCtx.SpanID().String())
		}
	}
}
