package otel

import (
	"context"
	"log/slog"

	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

type OtelController struct {
	traceProvider *sdktrace.TracerProvider
}

// MustInitOtel installs the global tracer provider for the named component.
// With otel.enabled=false spans are recorded by a provider without exporters.
func MustInitOtel(component string) *OtelController {
	tp := sdktrace.NewTracerProvider(providerOptions(component)...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &OtelController{
		traceProvider: tp,
	}
}

func providerOptions(component string) []sdktrace.TracerProviderOption {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName(component)),
		)),
		sdktrace.WithSampler(sdktrace.ParentBased(
			sdktrace.TraceIDRatioBased(sampleRatio()),
		)),
	}

	if !viper.GetBool("otel.enabled") {
		return opts
	}

	endpoint := viper.GetString("otel.jaeger_endpoint")
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)))
	if err != nil {
		panic(err)
	}
	slog.Info("Tracing enabled", "endpoint", endpoint, "component", component)

	return append(opts, sdktrace.WithBatcher(exp))
}

func serviceName(component string) string {
	base := viper.GetString("otel.service_name")
	if base == "" {
		return component
	}

	return base + "-" + component
}

// sampleRatio clamps otel.sample_ratio to [0, 1]; unset means sample everything.
func sampleRatio() float64 {
	if !viper.IsSet("otel.sample_ratio") {
		return 1
	}

	return min(max(viper.GetFloat64("otel.sample_ratio"), 0), 1)
}

func (o *OtelController) Shutdown(ctx context.Context) error {
	return o.traceProvider.Shutdown(ctx)
}
