package telemetry

import (
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const serviceNamespace = "dineahead"

// newResource describes one DineAhead process. Traces and metrics share it
// so both signals join on the same service attributes.
func newResource(serviceName, serviceVersion string) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNamespace(serviceNamespace),
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(serviceVersion),
	)
}
