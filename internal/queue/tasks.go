package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"dermo-chatbot-platform/internal/logger"
	"dermo-chatbot-platform/internal/stock"
	"dermo-chatbot-platform/internal/telemetry"
	"dermo-chatbot-platform/services"
)

const (
	TaskChatExport   = "chat:export"
	TaskStockRefresh = "stock:refresh"
)

type ChatExportPayload struct {
	SessionID string `json:"session_id"`
}

// Task creators
func NewChatExportTask(sessionID string) (*asynq.Task, error) {
	payload, err := json.Marshal(ChatExportPayload{SessionID: sessionID})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskChatExport,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(2*time.Minute),
		asynq.Queue("default"),
	), nil
}

func NewStockRefreshTask() (*asynq.Task, error) {
	return asynq.NewTask(
		TaskStockRefresh,
		nil,
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
		asynq.Queue("critical"),
	), nil
}

// Task handlers
type TaskProcessor struct {
	sessions *services.SessionService
	email    services.EmailSender
	syncer   *stock.Syncer
	metrics  *telemetry.Metrics
}

func NewTaskProcessor(sessions *services.SessionService, email services.EmailSender, syncer *stock.Syncer, metrics *telemetry.Metrics) *TaskProcessor {
	return &TaskProcessor{
		sessions: sessions,
		email:    email,
		syncer:   syncer,
		metrics:  metrics,
	}
}

// ExportChat mails the transcript of an idle session to the admins, then
// disarms the session so it is not exported again until new activity.
func (p *TaskProcessor) ExportChat(ctx context.Context, t *asynq.Task) error {
	var payload ChatExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}

	transcript, err := p.sessions.Transcript(ctx, payload.SessionID)
	if err != nil {
		return err
	}
	if transcript == "" {
		logger.Warn("skipping export of empty transcript", "session_id", payload.SessionID)
		return p.sessions.MarkExported(ctx, payload.SessionID)
	}

	if err := p.email.SendTranscript(payload.SessionID, transcript); err != nil {
		if p.metrics != nil {
			p.metrics.RecordChatExport("error")
		}
		return fmt.Errorf("send transcript: %w", err)
	}

	if p.metrics != nil {
		p.metrics.RecordChatExport("success")
	}
	logger.Info("chat transcript exported", "session_id", payload.SessionID)
	return p.sessions.MarkExported(ctx, payload.SessionID)
}

// RefreshStock pulls the latest inventory sheet into the local stock CSV.
func (p *TaskProcessor) RefreshStock(ctx context.Context, t *asynq.Task) error {
	start := time.Now()
	n, err := p.syncer.Pull(ctx)
	if err != nil {
		if p.metrics != nil {
			p.metrics.RecordStockSync(time.Since(start).Seconds(), "error")
		}
		return fmt.Errorf("refresh stock: %w", err)
	}

	if p.metrics != nil {
		p.metrics.RecordStockSync(time.Since(start).Seconds(), "success")
	}
	logger.Info("stock snapshot refreshed", "items", n)
	return nil
}
