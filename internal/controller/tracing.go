package controller

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("secretscanner/controller")

// withTracing starts a span per request named after the route, mirroring the
// span-per-call discipline the teacher's grpc interceptor provided for free;
// plain net/http has no such interceptor, so each handler's traceID comes
// from this span instead of a bespoke request-id scheme.
func withTracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path)
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func traceIDFromContext(r *http.Request) string {
	span := trace.SpanFromContext(r.Context())
	return span.SpanContext().TraceID().String()
}
