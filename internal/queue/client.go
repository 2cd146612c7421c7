package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ironsheep/math-tools-mcp/internal/config"
)

// Client enqueues solve jobs and reads back their results.
type Client struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	queue     string
	retention time.Duration
	timeout   time.Duration
}

// JobStatus is the state of an enqueued job.
type JobStatus struct {
	JobID  string `json:"job_id"`
	State  string `json:"state"`
	Result []byte `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// NewClient connects to the Redis instance named in cfg.
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("RedisURL is required")
	}
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	return &Client{
		client:    asynq.NewClient(redisOpt),
		inspector: asynq.NewInspector(redisOpt),
		queue:     cfg.QueueName,
		retention: DefaultRetention,
		timeout:   taskTimeout(cfg.PipelineTimeout),
	}, nil
}

// taskTimeout leaves headroom over the pipeline timeout for decoding the
// payload and writing the result.
func taskTimeout(pipelineTimeout time.Duration) time.Duration {
	return pipelineTimeout + 5*time.Second
}

func (c *Client) options(jobID string) []asynq.Option {
	return []asynq.Option{
		asynq.Queue(c.queue),
		asynq.TaskID(jobID),
		asynq.Retention(c.retention),
		asynq.Timeout(c.timeout),
		asynq.MaxRetry(3),
	}
}

// EnqueueSolveText queues text for solving and returns the job id.
func (c *Client) EnqueueSolveText(ctx context.Context, text string) (string, error) {
	jobID := uuid.New().String()
	task, err := NewSolveTextTask(SolveTextPayload{JobID: jobID, Text: text}, c.options(jobID)...)
	if err != nil {
		return "", err
	}
	if _, err := c.client.EnqueueContext(ctx, task); err != nil {
		return "", fmt.Errorf("failed to enqueue %s: %w", TypeSolveText, err)
	}
	return jobID, nil
}

// EnqueueSolveImage queues an encoded image with an optional transcript and
// returns the job id.
func (c *Client) EnqueueSolveImage(ctx context.Context, image []byte, transcript string) (string, error) {
	jobID := uuid.New().String()
	task, err := NewSolveImageTask(SolveImagePayload{JobID: jobID, Image: image, Transcript: transcript}, c.options(jobID)...)
	if err != nil {
		return "", err
	}
	if _, err := c.client.EnqueueContext(ctx, task); err != nil {
		return "", fmt.Errorf("failed to enqueue %s: %w", TypeSolveImage, err)
	}
	return jobID, nil
}

// Status looks up a job by id.
func (c *Client) Status(jobID string) (*JobStatus, error) {
	info, err := c.inspector.GetTaskInfo(c.queue, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up job %s: %w", jobID, err)
	}
	return &JobStatus{
		JobID:  jobID,
		State:  info.State.String(),
		Result: info.Result,
		Error:  info.LastErr,
	}, nil
}

// Close releases the Redis connections.
func (c *Client) Close() error {
	if err := c.inspector.Close(); err != nil {
		c.client.Close()
		return err
	}
	return c.client.Close()
}
