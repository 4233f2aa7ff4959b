package telemetry

import (
	"context"
	"testing"

	"ctchen222/Tikki-Tacca/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitOtel_Disabled(t *testing.T) {
	shutdown, err := InitOtel(context.Background(), config.Telemetry{Enabled: false})

	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")
}

func TestInitOtel_Enabled(t *testing.T) {
	// The gRPC client connects lazily, so no collector is needed to set up and shut down.
	shutdown, err := InitOtel(context.Background(), config.Telemetry{
		Enabled:     true,
		Endpoint:    "localhost:4317",
		ServiceName: "tikki-tacca-test",
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Flushing against a missing collector may fail; it must not hang.
	_ = shutdown(ctx)
}
