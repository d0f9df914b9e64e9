package ai

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"dermo-chatbot-platform/internal/telemetry"
)

func TestDispatch(t *testing.T) {
	// Without an SDK meter provider the recorders are no-ops; dispatch must
	// still work and record against them.
	metrics, err := telemetry.InitMetrics()
	if err != nil {
		t.Fatal(err)
	}

	a := &Assistant{metrics: metrics, tools: map[string]Tool{
		"echo": {
			Name: "echo",
			Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
				var p struct {
					Text string `json:"text"`
				}
				if err := json.Unmarshal(args, &p); err != nil {
					return "", err
				}
				return p.Text, nil
			},
		},
		"boom": {
			Name: "boom",
			Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
				return "", errors.New("sin conexión")
			},
		},
	}}

	if got := a.dispatch(context.Background(), "echo", json.RawMessage(`{"text":"hola"}`)); got != "hola" {
		t.Errorf("dispatch echo = %q, want %q", got, "hola")
	}

	want := "No se encontró la función inventada."
	if got := a.dispatch(context.Background(), "inventada", nil); got != want {
		t.Errorf("dispatch unknown = %q, want %q", got, want)
	}

	want = "La función boom falló: sin conexión."
	if got := a.dispatch(context.Background(), "boom", json.RawMessage(`{}`)); got != want {
		t.Errorf("dispatch failing = %q, want %q", got, want)
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := estimateTokens(nil); got != 1 {
		t.Errorf("estimateTokens(nil) = %d, want 1", got)
	}

	history := []Message{
		{Role: "user", Content: "hola, ¿tienen protector solar?"},
		{Role: "assistant", Content: "sí, varias marcas"},
	}
	total := len(history[0].Content) + len(history[1].Content)
	if got := estimateTokens(history); got != total/4 {
		t.Errorf("estimateTokens = %d, want %d", got, total/4)
	}
}
