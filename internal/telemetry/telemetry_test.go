package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestSetupExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Setup(&buf, "test")
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	_, span := Tracer().Start(context.Background(), "similarity.pairs")
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error = %v", err)
	}
	if !strings.Contains(buf.String(), "similarity.pairs") {
		t.Errorf("expected exported span, got %q", buf.String())
	}
}
