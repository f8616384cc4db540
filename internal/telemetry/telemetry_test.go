package telemetry_test

import (
	"context"
	"testing"

	"tscribe/internal/config"
	"tscribe/internal/telemetry"
)

func TestSetupNoopWhenDisabled(t *testing.T) {
	shutdown, err := telemetry.Setup(context.Background(), config.Telemetry{
		Enabled:  false,
		Endpoint: "http://localhost:4318",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetupNoopWhenEndpointEmpty(t *testing.T) {
	shutdown, err := telemetry.Setup(context.Background(), config.Telemetry{Enabled: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetupCreatesProviderWhenEnabled(t *testing.T) {
	// Non-routable address; no spans are recorded so nothing is exported.
	shutdown, err := telemetry.Setup(context.Background(), config.Telemetry{
		Enabled:     true,
		Endpoint:    "http://192.0.2.1:4318",
		ServiceName: "tscribe-test",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}
