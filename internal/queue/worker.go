package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ironsheep/math-tools-mcp/internal/config"
	apperrors "github.com/ironsheep/math-tools-mcp/internal/errors"
	"github.com/ironsheep/math-tools-mcp/internal/logging"
	"github.com/ironsheep/math-tools-mcp/internal/pipeline"
)

// Handler runs queued jobs through a Pipeline.
type Handler struct {
	pipeline *pipeline.Pipeline
	logger   *logging.Logger
}

// NewHandler creates a Handler.
func NewHandler(p *pipeline.Pipeline, logger *logging.Logger) *Handler {
	return &Handler{pipeline: p, logger: logger}
}

// Register routes both task types to h on mux.
func (h *Handler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeSolveText, h.ProcessSolveText)
	mux.HandleFunc(TypeSolveImage, h.ProcessSolveImage)
}

// ProcessSolveText is the asynq handler for math:solve_text.
func (h *Handler) ProcessSolveText(ctx context.Context, task *asynq.Task) error {
	data, err := h.solveText(task.Payload())
	if err != nil {
		return err
	}
	return writeResult(task, data)
}

// ProcessSolveImage is the asynq handler for math:solve_image.
func (h *Handler) ProcessSolveImage(ctx context.Context, task *asynq.Task) error {
	data, err := h.solveImage(ctx, task.Payload())
	if err != nil {
		return err
	}
	return writeResult(task, data)
}

func (h *Handler) solveText(payload []byte) ([]byte, error) {
	var p SolveTextPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, skipRetry(apperrors.NewInvalidPayloadError(TypeSolveText, err))
	}

	res := h.pipeline.SolveText(p.Text)
	h.logger.Info("text job solved", "job", p.JobID, "handled", res.Handled)

	return json.Marshal(TextJobResult{JobID: p.JobID, Solution: res})
}

func (h *Handler) solveImage(ctx context.Context, payload []byte) ([]byte, error) {
	start := time.Now()

	var p SolveImagePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, skipRetry(apperrors.NewInvalidPayloadError(TypeSolveImage, err))
	}

	h.logger.Info("processing image job", "job", p.JobID, "bytes", len(p.Image), "transcript", p.Transcript != "")

	res, err := h.pipeline.ProcessImage(ctx, p.Image, p.Transcript)
	if err != nil {
		h.logger.Error("image job failed", "job", p.JobID, "duration", time.Since(start), "error", err)
		var pe *apperrors.ProcessingError
		if errors.As(err, &pe) {
			err = pe.WithJob(p.JobID)
		}
		if apperrors.IsCode(err, apperrors.ErrorDecodeFailed) {
			return nil, skipRetry(err)
		}
		return nil, err
	}

	h.logger.Info("image job solved", "job", p.JobID,
		"glyphs", len(res.Glyphs), "handled", res.Solution.Handled, "duration", res.Duration)

	return json.Marshal(ImageJobResult{JobID: p.JobID, Result: res})
}

// skipRetry marks err as permanent so asynq archives the task instead of
// retrying it.
func skipRetry(err error) error {
	return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
}

// writeResult stores data with the task. Tasks built outside a worker
// have no result writer.
func writeResult(task *asynq.Task, data []byte) error {
	w := task.ResultWriter()
	if w == nil {
		return nil
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write task result: %w", err)
	}
	return nil
}

// Worker consumes solve jobs from Redis.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *logging.Logger
	cfg    *config.Config
}

// NewWorker creates a worker for the queue named in cfg.
func NewWorker(cfg *config.Config, p *pipeline.Pipeline, logger *logging.Logger) (*Worker, error) {
	if err := cfg.ValidateWorker(); err != nil {
		return nil, err
	}
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Queues: map[string]int{
			cfg.QueueName: 10,
			"default":     1,
		},
		RetryDelayFunc: retryDelay,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error("task failed", "type", task.Type(), "error", err)
		}),
		Logger:   asynqLogger{logger.With("asynq")},
		LogLevel: asynqLogLevel(cfg.LogLevel),
	})

	mux := asynq.NewServeMux()
	NewHandler(p, logger).Register(mux)

	return &Worker{server: server, mux: mux, logger: logger, cfg: cfg}, nil
}

// retryDelay backs off exponentially from 5s, capped at one minute.
func retryDelay(n int, err error, task *asynq.Task) time.Duration {
	if n < 0 || n > 3 {
		return time.Minute
	}
	return time.Duration(5<<uint(n)) * time.Second
}

// Run processes jobs until the process receives SIGTERM or SIGINT.
func (w *Worker) Run() error {
	w.logger.Info("starting worker", "queue", w.cfg.QueueName, "concurrency", w.cfg.WorkerConcurrency)
	if err := w.server.Run(w.mux); err != nil {
		return fmt.Errorf("worker stopped: %w", err)
	}
	w.logger.Info("worker stopped")
	return nil
}

// asynqLogger adapts logging.Logger to asynq.Logger.
type asynqLogger struct {
	l *logging.Logger
}

func (a asynqLogger) Debug(args ...interface{}) { a.l.Debug(fmt.Sprint(args...)) }
func (a asynqLogger) Info(args ...interface{})  { a.l.Info(fmt.Sprint(args...)) }
func (a asynqLogger) Warn(args ...interface{})  { a.l.Warn(fmt.Sprint(args...)) }
func (a asynqLogger) Error(args ...interface{}) { a.l.Error(fmt.Sprint(args...)) }

func (a asynqLogger) Fatal(args ...interface{}) {
	a.l.Error(fmt.Sprint(args...))
	os.Exit(1)
}

func asynqLogLevel(level string) asynq.LogLevel {
	switch logging.ParseLevel(level) {
	case logging.LevelDebug:
		return asynq.DebugLevel
	case logging.LevelWarn:
		return asynq.WarnLevel
	case logging.LevelError:
		return asynq.ErrorLevel
	default:
		return asynq.InfoLevel
	}
}
