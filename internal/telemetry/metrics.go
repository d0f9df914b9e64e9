package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics
type Metrics struct {
	RequestCounter      metric.Int64Counter
	RequestDuration     metric.Float64Histogram
	TokensUsed          metric.Int64Counter
	ToolCalls           metric.Int64Counter
	StockSyncDuration   metric.Float64Histogram
	ChatExports         metric.Int64Counter
	CircuitBreakerState metric.Int64Counter
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("dermo-chatbot-platform")

	requestCounter, err := meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	tokensUsed, err := meter.Int64Counter(
		"assistant.tokens.used",
		metric.WithDescription("Total completion tokens used"),
	)
	if err != nil {
		return nil, err
	}

	toolCalls, err := meter.Int64Counter(
		"assistant.tool.calls",
		metric.WithDescription("Tool invocations requested by the model"),
	)
	if err != nil {
		return nil, err
	}

	stockSyncDuration, err := meter.Float64Histogram(
		"stock.sync.duration",
		metric.WithDescription("Stock sheet sync duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	chatExports, err := meter.Int64Counter(
		"chat.exports.total",
		metric.WithDescription("Chat transcripts exported by email"),
	)
	if err != nil {
		return nil, err
	}

	circuitBreakerState, err := meter.Int64Counter(
		"circuit_breaker.state_changes",
		metric.WithDescription("Circuit breaker state changes"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCounter:      requestCounter,
		RequestDuration:     requestDuration,
		TokensUsed:          tokensUsed,
		ToolCalls:           toolCalls,
		StockSyncDuration:   stockSyncDuration,
		ChatExports:         chatExports,
		CircuitBreakerState: circuitBreakerState,
	}, nil
}

// RecordRequest records HTTP request metrics
func (m *Metrics) RecordRequest(method, path, status string, duration float64) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.path", path),
		attribute.String("http.status", status),
	}

	m.RequestCounter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.RequestDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordTokensUsed records completion token usage
func (m *Metrics) RecordTokensUsed(tokens int64, model string) {
	attrs := []attribute.KeyValue{
		attribute.String("assistant.model", model),
	}

	m.TokensUsed.Add(context.Background(), tokens, metric.WithAttributes(attrs...))
}

// RecordToolCall records a tool invocation requested by the model
func (m *Metrics) RecordToolCall(tool string, success bool) {
	attrs := []attribute.KeyValue{
		attribute.String("tool.name", tool),
		attribute.Bool("tool.success", success),
	}

	m.ToolCalls.Add(context.Background(), 1, metric.WithAttributes(attrs...))
}

// RecordStockSync records a stock sheet sync
func (m *Metrics) RecordStockSync(duration float64, status string) {
	attrs := []attribute.KeyValue{
		attribute.String("sync.status", status),
	}

	m.StockSyncDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordChatExport records a transcript export
func (m *Metrics) RecordChatExport(status string) {
	attrs := []attribute.KeyValue{
		attribute.String("export.status", status),
	}

	m.ChatExports.Add(context.Background(), 1, metric.WithAttributes(attrs...))
}

// RecordCircuitBreakerState records circuit breaker state changes
func (m *Metrics) RecordCircuitBreakerState(service, state string) {
	attrs := []attribute.KeyValue{
		attribute.String("service", service),
		attribute.String("state", state),
	}

	m.CircuitBreakerState.Add(context.Background(), 1, metric.WithAttributes(attrs...))
}
