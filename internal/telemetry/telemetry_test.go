package telemetry

import (
	"context"
	"testing"

	"github.com/grvsharma1810/pulse/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_DisabledWithoutEndpoint(t *testing.T) {
	p, err := New(context.Background(), &config.Config{}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	assert.NotNil(t, p.Tracer())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNew_Enabled(t *testing.T) {
	// The exporter connects lazily, so no collector is needed here.
	p, err := New(context.Background(), &config.Config{
		OTelEndpoint:    "localhost:4318",
		OTelInsecure:    true,
		OTelServiceName: "pulse-test",
	}, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, p.Enabled())

	_, span := p.Tracer().Start(context.Background(), "test")
	span.End()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Flushing against a missing collector may fail; shutdown must still return.
	_ = p.Shutdown(ctx)
}

func TestNilProvider(t *testing.T) {
	var p *Provider
	assert.False(t, p.Enabled())
	assert.NotNil(t, p.Tracer())
	assert.NoError(t, p.Shutdown(context.Background()))
}
