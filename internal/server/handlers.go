package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ironsheep/math-tools-mcp/internal/detection"
	"github.com/ironsheep/math-tools-mcp/internal/imaging"
	"github.com/ironsheep/math-tools-mcp/internal/ocr"
	"github.com/ironsheep/math-tools-mcp/internal/pipeline"
	"github.com/ironsheep/math-tools-mcp/internal/solver"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "math_solve_text").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// paramsError marks a tool call the client got wrong, as opposed to one
// that failed while running.
type paramsError struct {
	err error
}

func (e *paramsError) Error() string { return e.err.Error() }
func (e *paramsError) Unwrap() error { return e.err }

func invalidParams(format string, args ...interface{}) error {
	return &paramsError{err: fmt.Errorf(format, args...)}
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Bad arguments and unknown tools return -32602. Tool execution errors
// return -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		var pe *paramsError
		if errors.As(err, &pe) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case toolSolveText:
		return s.handleSolveText(ctx, args)
	case toolSolveImage:
		return s.handleSolveImage(ctx, args)
	case toolDetectGlyphs:
		return s.handleDetectGlyphs(ctx, args)
	case toolBinarize:
		return s.handleBinarize(args)
	case toolAnnotateGlyphs:
		return s.handleAnnotateGlyphs(ctx, args)
	case toolOCR:
		return s.handleOCR(ctx, args)
	case toolJobStatus:
		return s.handleJobStatus(args)
	default:
		return nil, invalidParams("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return invalidParams("invalid arguments: %v", err)
	}
	return nil
}

type pathArgs struct {
	Path string `json:"path"`
}

func (a pathArgs) validate() error {
	if strings.TrimSpace(a.Path) == "" {
		return invalidParams("path is required")
	}
	return nil
}

// === Solving ===

type solveTextArgs struct {
	Text     string `json:"text"`
	Variable string `json:"variable"`
	Async    bool   `json:"async"`
}

type solveTextResult struct {
	Text     string `json:"text"`
	Variable string `json:"variable"`
	solver.Result
}

type jobQueuedResult struct {
	JobID  string `json:"job_id"`
	Queued bool   `json:"queued"`
}

func (s *Server) handleSolveText(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a solveTextArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if strings.TrimSpace(a.Text) == "" {
		return nil, invalidParams("text is required")
	}

	if a.Async {
		if s.jobs == nil {
			return nil, fmt.Errorf("async solving needs a job queue; set MATH_MCP_REDIS_URL")
		}
		jobID, err := s.jobs.EnqueueSolveText(ctx, a.Text)
		if err != nil {
			return nil, err
		}
		return &jobQueuedResult{JobID: jobID, Queued: true}, nil
	}

	sv := s.pipeline.Solver()
	if a.Variable != "" {
		sv = solver.New(solver.WithVariable(a.Variable))
	}
	return &solveTextResult{
		Text:     a.Text,
		Variable: sv.Variable(),
		Result:   sv.Solve(a.Text),
	}, nil
}

type solveImageArgs struct {
	Path       string `json:"path"`
	Transcript string `json:"transcript"`
	Async      bool   `json:"async"`
}

func (s *Server) handleSolveImage(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a solveImageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := (pathArgs{Path: a.Path}).validate(); err != nil {
		return nil, err
	}

	if a.Async {
		if s.jobs == nil {
			return nil, fmt.Errorf("async solving needs a job queue; set MATH_MCP_REDIS_URL")
		}
		data, err := os.ReadFile(a.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read image: %w", err)
		}
		jobID, err := s.jobs.EnqueueSolveImage(ctx, data, a.Transcript)
		if err != nil {
			return nil, err
		}
		return &jobQueuedResult{JobID: jobID, Queued: true}, nil
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return s.pipeline.ProcessDecoded(ctx, img, a.Transcript)
}

// === Inspection ===

type detectGlyphsArgs struct {
	Path    string `json:"path"`
	MinArea int    `json:"min_area"`
}

type detectGlyphsResult struct {
	Width    int               `json:"width"`
	Height   int               `json:"height"`
	Detector string            `json:"detector"`
	Count    int               `json:"count"`
	Glyphs   []detection.Glyph `json:"glyphs"`
}

// detectGlyphs normalizes the image at path and runs glyph detection on it.
// A positive minArea swaps in a heuristic detector with that noise floor.
func (s *Server) detectGlyphs(ctx context.Context, path string, minArea int) (*imaging.PixelBuffer, *detectGlyphsResult, error) {
	if minArea < 0 {
		return nil, nil, invalidParams("min_area must not be negative, got %d", minArea)
	}

	img, err := s.cache.Load(path)
	if err != nil {
		return nil, nil, err
	}
	buf, err := imaging.Normalize(img, s.pipeline.GlyphOptions())
	if err != nil {
		return nil, nil, err
	}

	var (
		glyphs []detection.Glyph
		name   string
	)
	if minArea > 0 {
		d := detection.NewHeuristicDetector(minArea)
		name = d.Name()
		glyphs, err = detection.SegmentAndClassify(ctx, d, buf)
	} else {
		name = s.pipeline.Detector().Name()
		glyphs, err = s.pipeline.SegmentAndClassify(ctx, buf)
	}
	if err != nil {
		return nil, nil, err
	}

	return buf, &detectGlyphsResult{
		Width:    buf.Width,
		Height:   buf.Height,
		Detector: name,
		Count:    len(glyphs),
		Glyphs:   glyphs,
	}, nil
}

func (s *Server) handleDetectGlyphs(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a detectGlyphsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := (pathArgs{Path: a.Path}).validate(); err != nil {
		return nil, err
	}
	_, res, err := s.detectGlyphs(ctx, a.Path, a.MinArea)
	return res, err
}

type binarizeResult struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Threshold   int     `json:"threshold"`
	MeanLuma    float64 `json:"mean_luma"`
	InkPixels   int     `json:"ink_pixels"`
	ImageBase64 string  `json:"image_base64"`
	MimeType    string  `json:"mime_type"`
}

func (s *Server) handleBinarize(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	buf, err := imaging.Normalize(img, s.pipeline.GlyphOptions())
	if err != nil {
		return nil, err
	}

	mask := imaging.Binarize(buf)
	encoded, err := imaging.EncodePNGBase64(imaging.MaskPreview(buf))
	if err != nil {
		return nil, err
	}

	return &binarizeResult{
		Width:       buf.Width,
		Height:      buf.Height,
		Threshold:   mask.Threshold(),
		MeanLuma:    imaging.MeanLuma(buf),
		InkPixels:   mask.Foreground(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

type annotateGlyphsResult struct {
	*imaging.AnnotateResult
	Glyphs []detection.Glyph `json:"glyphs"`
}

func (s *Server) handleAnnotateGlyphs(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}

	buf, detected, err := s.detectGlyphs(ctx, a.Path, 0)
	if err != nil {
		return nil, err
	}

	annotations := make([]imaging.Annotation, len(detected.Glyphs))
	for i, g := range detected.Glyphs {
		annotations[i] = imaging.Annotation{Rect: g.Bounds.Rect(), Label: string(g.Label)}
	}
	overlay, err := imaging.Annotate(buf.Gray(), annotations)
	if err != nil {
		return nil, err
	}

	return &annotateGlyphsResult{AnnotateResult: overlay, Glyphs: detected.Glyphs}, nil
}

type ocrArgs struct {
	Path     string `json:"path"`
	Language string `json:"language"`
}

type ocrResult struct {
	Language      string   `json:"language"`
	Lines         []string `json:"lines"`
	Text          string   `json:"text"`
	Words         int      `json:"words"`
	Confidence    float64  `json:"confidence,omitempty"`
	HasConfidence bool     `json:"has_confidence"`
}

// languageRecognizer is a recognizer that reports its language.
type languageRecognizer interface {
	ocr.TextRecognizer
	Language() string
}

// recognizerFor returns the pipeline's engine when it already reads
// language, or a fresh Tesseract engine the caller must close.
func (s *Server) recognizerFor(language string) (rec ocr.TextRecognizer, lang string, owned bool, err error) {
	if current := s.pipeline.Recognizer(); current != nil {
		lr, ok := current.(languageRecognizer)
		if language == "" {
			if ok {
				return current, lr.Language(), false, nil
			}
			return current, "", false, nil
		}
		if ok && lr.Language() == language {
			return current, language, false, nil
		}
	}

	t, err := ocr.NewTesseractRecognizer(ocr.TesseractOptions{Language: language})
	if err != nil {
		return nil, "", false, err
	}
	return t, t.Language(), true, nil
}

func (s *Server) handleOCR(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a ocrArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := (pathArgs{Path: a.Path}).validate(); err != nil {
		return nil, err
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	buf, err := imaging.Normalize(img, s.pipeline.OCROptions())
	if err != nil {
		return nil, err
	}

	rec, lang, owned, err := s.recognizerFor(a.Language)
	if err != nil {
		return nil, err
	}
	if owned {
		defer rec.Close()
	}

	ctx, cancel := context.WithTimeout(ctx, pipeline.DefaultTimeout)
	defer cancel()

	t, err := rec.Recognize(ctx, buf.Gray())
	if err != nil {
		return nil, err
	}

	return &ocrResult{
		Language:      lang,
		Lines:         t.Lines,
		Text:          t.Text(),
		Words:         len(t.Words),
		Confidence:    t.Confidence,
		HasConfidence: t.HasConfidence,
	}, nil
}

// === Background jobs ===

type jobStatusArgs struct {
	JobID string `json:"job_id"`
}

type jobStatusResult struct {
	JobID  string          `json:"job_id"`
	State  string          `json:"state"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func (s *Server) handleJobStatus(args json.RawMessage) (interface{}, error) {
	if s.jobs == nil {
		return nil, fmt.Errorf("no job queue configured; set MATH_MCP_REDIS_URL")
	}

	var a jobStatusArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if strings.TrimSpace(a.JobID) == "" {
		return nil, invalidParams("job_id is required")
	}

	status, err := s.jobs.Status(a.JobID)
	if err != nil {
		return nil, err
	}

	res := &jobStatusResult{JobID: status.JobID, State: status.State, Error: status.Error}
	if len(status.Result) > 0 && json.Valid(status.Result) {
		res.Result = json.RawMessage(status.Result)
	}
	return res, nil
}
