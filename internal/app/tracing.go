package app

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// setupTracing wires a jaeger-backed TracerProvider as the global provider so
// every otel.Tracer("...") call in the controller package exports real spans.
// A blank jaegerURL disables export but still installs a provider, so
// tracer.Start never panics against an unconfigured global.
func setupTracing(ctx context.Context, jaegerURL string) (*sdktrace.TracerProvider, error) {
	res := resource.NewSchemaless(attribute.String("service.name", "secretscanner"))

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}

	if jaegerURL != "" {
		exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(jaegerURL)))
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdktrace.WithBatcher(exp))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	return tp, nil
}
