package server

// Tool names.
const (
	toolSolveText      = "math_solve_text"
	toolSolveImage     = "math_solve_image"
	toolDetectGlyphs   = "math_detect_glyphs"
	toolBinarize       = "math_binarize"
	toolAnnotateGlyphs = "math_annotate_glyphs"
	toolOCR            = "math_ocr"
	toolJobStatus      = "math_job_status"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the worksheet image (PNG, JPEG, GIF, BMP, TIFF or WebP)",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Solving
		{
			Name:        toolSolveText,
			Description: "Solve a typed math question: an arithmetic expression, a linear equation in one variable, or a simple word problem. Returns the answer and the working steps.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "The question, e.g. \"2x + 3 = 7\" or \"what is the sum of 4 and 5\"",
					},
					"variable": map[string]interface{}{
						"type":        "string",
						"description": "Unknown to solve for. Default x",
					},
					"async": map[string]interface{}{
						"type":        "boolean",
						"description": "Queue the job for a background worker and return its job id. Requires a configured Redis queue",
						"default":     false,
					},
				},
				"required": []string{"text"},
			},
		},
		{
			Name:        toolSolveImage,
			Description: "Read a photo or scan of a worksheet: detect operator and shape glyphs, read the text with OCR (or use the supplied transcript), merge both and solve the result.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"transcript": map[string]interface{}{
						"type":        "string",
						"description": "Optional text already read from the image. Skips OCR when set",
					},
					"async": map[string]interface{}{
						"type":        "boolean",
						"description": "Queue the job for a background worker and return its job id. Requires a configured Redis queue",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},

		// Inspection
		{
			Name:        toolDetectGlyphs,
			Description: "Find hand-drawn math symbols (+ - × ÷ =), shapes (circle, triangle, square), lines and arrows. Coordinates refer to the normalized image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"min_area": map[string]interface{}{
						"type":        "integer",
						"description": "Ignore ink blobs smaller than this many pixels. Default from server configuration",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        toolBinarize,
			Description: "Show the ink/paper split used for glyph detection as a black-on-white PNG, with the adaptive threshold that produced it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        toolAnnotateGlyphs,
			Description: "Draw a labelled box around every detected glyph and return the overlay as base64-encoded PNG together with the glyph list.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        toolOCR,
			Description: "Read the text on a worksheet with Tesseract. Returns one entry per non-empty line and the mean word confidence when available.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language code. Default from server configuration",
					},
				},
				"required": []string{"path"},
			},
		},

		// Background jobs
		{
			Name:        toolJobStatus,
			Description: "Look up a job queued with async=true. Returns its state and, once completed, the result.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"job_id": map[string]interface{}{
						"type":        "string",
						"description": "Job id returned by the solve tool",
					},
				},
				"required": []string{"job_id"},
			},
		},
	}
}

// handleToolsList returns the tool definitions. math_job_status is only
// listed when a job queue is configured.
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	tools := GetToolDefinitions()
	if s.jobs == nil {
		filtered := tools[:0]
		for _, t := range tools {
			if t.Name != toolJobStatus {
				filtered = append(filtered, t)
			}
		}
		tools = filtered
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": tools,
		},
	}
}
