package services_test

import (
	"context"
	"testing"

	"tscribe/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRequestID(ctx, "req-123")
	ctx = services.WithOperation(ctx, "prompts.save")

	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
	if op, ok := services.OperationFromContext(ctx); !ok || op != "prompts.save" {
		t.Fatalf("unexpected operation: %v %v", op, ok)
	}
}

func TestOperationBlankPreservesContext(t *testing.T) {
	ctx := services.WithOperation(context.Background(), "")
	if _, ok := services.OperationFromContext(ctx); ok {
		t.Fatal("expected no operation value")
	}
}
