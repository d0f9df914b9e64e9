package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	openai "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"dermo-chatbot-platform/internal/config"
	"dermo-chatbot-platform/internal/telemetry"
)

// Spanish fallback shown when the OpenAI circuit is open.
const fallbackResponse = "Estoy experimentando mucha demanda en este momento. Por favor, intentá de nuevo en unos minutos."

// maxToolRounds bounds how many consecutive tool-call batches one user turn
// may trigger before the run is aborted.
const maxToolRounds = 5

// Tool is a function the assistant may call during a run. Parameters is the
// JSON schema advertised to the model; Handler receives the raw arguments the
// model produced.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
	Handler     func(ctx context.Context, args json.RawMessage) (string, error)
}

// Message is one prior conversation turn. Role is "user" or "assistant".
type Message struct {
	Role    string
	Content string
}

type Assistant struct {
	client       openai.Client
	model        string
	instructions string
	tools        map[string]Tool
	toolDefs     []openai.ChatCompletionToolUnionParam
	breaker      *gobreaker.CircuitBreaker
	rateLimiter  *rate.Limiter
	tokenCounter *TokenCounter
	metrics      *telemetry.Metrics
}

type TokenCounter struct {
	mu              sync.Mutex
	minuteTokens    int
	minuteRequests  int
	lastMinuteReset time.Time
}

type RateLimits struct {
	RPM int // Requests per minute
	TPM int // Tokens per minute
}

var assistantLimits = RateLimits{RPM: 60, TPM: 250000}

func NewAssistant(cfg *config.Config, instructions string, tools []Tool, metrics *telemetry.Metrics) *Assistant {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "OpenAIAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("Circuit breaker %s: %s -> %s", name, from, to)
			if metrics != nil {
				metrics.RecordCircuitBreakerState(name, to.String())
			}
			if to == gobreaker.StateOpen {
				alertOps("OpenAI API circuit breaker opened - service degraded")
			}
		},
	})

	// RPM limit with some buffer
	rateLimiter := rate.NewLimiter(rate.Limit(float64(assistantLimits.RPM)*0.9/60.0), assistantLimits.RPM/10)

	byName := make(map[string]Tool, len(tools))
	toolDefs := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, t := range tools {
		byName[t.Name] = t
		toolDefs = append(toolDefs, openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        t.Name,
			Description: openai.String(t.Description),
			Parameters:  shared.FunctionParameters(t.Parameters),
		}))
	}

	return &Assistant{
		client:       openai.NewClient(openaioption.WithAPIKey(cfg.OpenAIAPIKey)),
		model:        cfg.AssistantModel,
		instructions: instructions,
		tools:        byName,
		toolDefs:     toolDefs,
		breaker:      breaker,
		rateLimiter:  rateLimiter,
		tokenCounter: &TokenCounter{},
		metrics:      metrics,
	}
}

// Reply runs one assistant turn over the conversation so far. When the model
// requests tools, the whole batch is executed and its outputs are submitted
// together before the model speaks again.
func (a *Assistant) Reply(ctx context.Context, history []Message) (string, error) {
	tracer := otel.Tracer("assistant")
	ctx, span := tracer.Start(ctx, "assistant.reply")
	defer span.End()

	estimatedTokens := estimateTokens(history)
	span.SetAttributes(
		attribute.Int("assistant.estimated_tokens", estimatedTokens),
		attribute.Int("assistant.history_turns", len(history)),
		attribute.String("assistant.model", a.model),
	)

	if !a.tokenCounter.CanConsume(estimatedTokens, 1) {
		span.SetAttributes(attribute.Bool("assistant.rate_limited", true))
		return "", errors.New("rate limit exceeded: wait before retry")
	}

	if err := a.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("assistant.rate_limited", true))
		return "", err
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	messages = append(messages, openai.SystemMessage(a.instructions))
	for _, m := range history {
		if m.Role == "assistant" {
			messages = append(messages, openai.AssistantMessage(m.Content))
		} else {
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	for round := 0; round < maxToolRounds; round++ {
		completion, err := a.complete(ctx, messages)
		if err != nil {
			if err == gobreaker.ErrOpenState {
				span.SetAttributes(attribute.Bool("assistant.circuit_breaker_open", true))
				return fallbackResponse, nil
			}
			span.SetAttributes(attribute.Bool("assistant.error", true))
			return "", err
		}

		if len(completion.Choices) == 0 {
			return "", errors.New("no completion choices returned")
		}
		choice := completion.Choices[0]

		if len(choice.Message.ToolCalls) == 0 {
			span.SetAttributes(attribute.Bool("assistant.success", true))
			return choice.Message.Content, nil
		}

		span.SetAttributes(attribute.Int(fmt.Sprintf("assistant.tool_calls.round_%d", round), len(choice.Message.ToolCalls)))
		messages = append(messages, choice.Message.ToParam())
		for _, call := range choice.Message.ToolCalls {
			output := a.dispatch(ctx, call.Function.Name, json.RawMessage(call.Function.Arguments))
			messages = append(messages, openai.ToolMessage(output, call.ID))
		}
	}

	return "", fmt.Errorf("assistant did not finish after %d tool rounds", maxToolRounds)
}

func (a *Assistant) complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (*openai.ChatCompletion, error) {
	params := openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    shared.ChatModel(a.model),
	}
	if len(a.toolDefs) > 0 {
		params.Tools = a.toolDefs
	}

	result, err := a.breaker.Execute(func() (interface{}, error) {
		resp, err := a.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return nil, err
		}
		a.tokenCounter.RecordUsage(int(resp.Usage.TotalTokens), 1)
		if a.metrics != nil {
			a.metrics.RecordTokensUsed(resp.Usage.TotalTokens, a.model)
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*openai.ChatCompletion), nil
}

// dispatch runs one named tool. Tool failures come back as tool output so the
// model can apologize instead of the whole run erroring out.
func (a *Assistant) dispatch(ctx context.Context, name string, args json.RawMessage) string {
	tool, ok := a.tools[name]
	if !ok {
		log.Printf("Assistant requested unknown tool: %s", name)
		if a.metrics != nil {
			a.metrics.RecordToolCall(name, false)
		}
		return fmt.Sprintf("No se encontró la función %s.", name)
	}
	output, err := tool.Handler(ctx, args)
	if a.metrics != nil {
		a.metrics.RecordToolCall(name, err == nil)
	}
	if err != nil {
		log.Printf("Tool %s failed: %v", name, err)
		return fmt.Sprintf("La función %s falló: %v.", name, err)
	}
	return output
}

func (tc *TokenCounter) CanConsume(tokens, requests int) bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	now := time.Now()
	if now.Sub(tc.lastMinuteReset) >= time.Minute {
		tc.minuteTokens = 0
		tc.minuteRequests = 0
		tc.lastMinuteReset = now
	}

	if tc.minuteRequests+requests > assistantLimits.RPM {
		return false
	}
	if tc.minuteTokens+tokens > assistantLimits.TPM {
		return false
	}
	return true
}

func (tc *TokenCounter) RecordUsage(tokens, requests int) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	tc.minuteTokens += tokens
	tc.minuteRequests += requests
}

// Rough estimation: 1 token ≈ 4 characters.
func estimateTokens(history []Message) int {
	total := 0
	for _, m := range history {
		total += len(m.Content)
	}
	estimated := total / 4
	if estimated < 1 {
		estimated = 1
	}
	return estimated
}

// Alert operations team
func alertOps(message string) {
	log.Printf("🚨 ALERT: %s", message)
	// In production, send to monitoring service (PagerDuty, Slack, etc.)
}
