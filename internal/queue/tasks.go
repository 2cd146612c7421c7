// Package queue runs solve requests as background jobs on Redis via asynq.
//
// Clients enqueue text or image jobs and receive a job id; workers run the
// pipeline and store the JSON result with the task so it can be read back
// until the retention period ends.
package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ironsheep/math-tools-mcp/internal/pipeline"
	"github.com/ironsheep/math-tools-mcp/internal/solver"
)

// Task types
const (
	TypeSolveText  = "math:solve_text"
	TypeSolveImage = "math:solve_image"
)

// DefaultRetention is how long completed job results stay readable.
const DefaultRetention = 24 * time.Hour

// SolveTextPayload is the payload of a math:solve_text task.
type SolveTextPayload struct {
	JobID string `json:"job_id"`
	Text  string `json:"text"`
}

// SolveImagePayload is the payload of a math:solve_image task.
type SolveImagePayload struct {
	JobID      string `json:"job_id"`
	Image      []byte `json:"image"`
	Transcript string `json:"transcript,omitempty"`
}

// TextJobResult is stored as the result of a math:solve_text task.
type TextJobResult struct {
	JobID    string        `json:"job_id"`
	Solution solver.Result `json:"solution"`
}

// ImageJobResult is stored as the result of a math:solve_image task.
type ImageJobResult struct {
	JobID  string           `json:"job_id"`
	Result *pipeline.Result `json:"result"`
}

// NewSolveTextTask builds a text task. Options such as the queue name,
// task id and retention are passed through to asynq.
func NewSolveTextTask(p SolveTextPayload, opts ...asynq.Option) (*asynq.Task, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSolveText, data, opts...), nil
}

// NewSolveImageTask builds an image task.
func NewSolveImageTask(p SolveImagePayload, opts ...asynq.Option) (*asynq.Task, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSolveImage, data, opts...), nil
}
