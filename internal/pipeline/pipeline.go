// Package pipeline runs a worksheet image or a chat message through glyph
// detection, OCR, stream merging and the solver.
//
// A Pipeline holds only configuration and engine handles; requests share
// no mutable state, so ProcessImage may be called concurrently.
package pipeline

import (
	"context"
	"errors"
	"image"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/math-tools-mcp/internal/config"
	"github.com/ironsheep/math-tools-mcp/internal/detection"
	apperrors "github.com/ironsheep/math-tools-mcp/internal/errors"
	"github.com/ironsheep/math-tools-mcp/internal/imaging"
	"github.com/ironsheep/math-tools-mcp/internal/logging"
	"github.com/ironsheep/math-tools-mcp/internal/ocr"
	"github.com/ironsheep/math-tools-mcp/internal/solver"
	"github.com/ironsheep/math-tools-mcp/internal/stream"
)

// DefaultTimeout bounds the processing of one image.
const DefaultTimeout = 10 * time.Second

// Result is everything produced for one image.
type Result struct {
	Glyphs           []detection.Glyph `json:"glyphs"`
	Lines            []string          `json:"lines"`
	OCRConfidence    float64           `json:"ocr_confidence,omitempty"`
	HasOCRConfidence bool              `json:"has_ocr_confidence"`
	Tokens           []stream.Token    `json:"tokens"`
	Merged           string            `json:"merged"`
	Solution         solver.Result     `json:"solution"`
	Duration         time.Duration     `json:"-"`
	DurationMS       int64             `json:"duration_ms"`
}

// Pipeline wires the detector, recognizer and solver together.
type Pipeline struct {
	detector   detection.GlyphDetector
	recognizer ocr.TextRecognizer
	solver     *solver.Solver
	glyphOpts  imaging.NormalizeOptions
	ocrOpts    imaging.NormalizeOptions
	timeout    time.Duration
	logger     *logging.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDetector sets the glyph detector.
func WithDetector(d detection.GlyphDetector) Option {
	return func(p *Pipeline) { p.detector = d }
}

// WithRecognizer enables OCR for images submitted without a transcript.
func WithRecognizer(r ocr.TextRecognizer) Option {
	return func(p *Pipeline) { p.recognizer = r }
}

// WithSolver sets the solver.
func WithSolver(s *solver.Solver) Option {
	return func(p *Pipeline) { p.solver = s }
}

// WithNormalizeOptions sets the preprocessing for the glyph path and the OCR path.
func WithNormalizeOptions(glyph, text imaging.NormalizeOptions) Option {
	return func(p *Pipeline) {
		p.glyphOpts = glyph
		p.ocrOpts = text
	}
}

// WithTimeout bounds ProcessImage. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// New creates a Pipeline. Without options it uses the heuristic detector,
// no OCR, a solver for x and a 10 second timeout.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		solver:    solver.New(),
		glyphOpts: imaging.DefaultNormalizeOptions(),
		ocrOpts:   imaging.OCRNormalizeOptions(),
		timeout:   DefaultTimeout,
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.detector == nil {
		p.detector = detection.NewHeuristicDetector(detection.DefaultMinArea)
	}
	return p
}

// NewFromConfig builds a Pipeline from cfg. An OCR engine that cannot be
// started is logged and OCR is left disabled; callers can still supply
// transcripts.
func NewFromConfig(cfg *config.Config, logger *logging.Logger) *Pipeline {
	detector := detection.NewDetector(detection.Options{
		MinArea: cfg.MinComponentArea,
		Learned: detection.LearnedOptions{
			Model:    cfg.DetectorModel,
			Config:   cfg.DetectorConfig,
			Labels:   cfg.DetectorLabels,
			MinScore: cfg.DetectorMinScore,
		},
	}, logger)

	opts := []Option{
		WithDetector(detector),
		WithSolver(solver.New(solver.WithVariable(cfg.Variable))),
		WithNormalizeOptions(
			imaging.NormalizeOptions{MaxDimension: cfg.MaxDimension, Contrast: cfg.GlyphContrast},
			imaging.NormalizeOptions{MaxDimension: cfg.MaxDimension, Contrast: cfg.OCRContrast},
		),
		WithTimeout(cfg.PipelineTimeout),
		WithLogger(logger),
	}

	if cfg.OCREnabled {
		rec, err := ocr.NewTesseractRecognizer(ocr.TesseractOptions{
			Language:       cfg.OCRLanguage,
			TessdataPrefix: cfg.TessdataPrefix,
		})
		if err != nil {
			logger.Warn("OCR disabled", "error", err)
		} else {
			opts = append(opts, WithRecognizer(rec))
		}
	}

	p := New(opts...)
	logger.Info("pipeline ready", "detector", p.detector.Name(), "ocr", p.recognizer != nil, "timeout", p.timeout)
	return p
}

// Detector returns the configured glyph detector.
func (p *Pipeline) Detector() detection.GlyphDetector { return p.detector }

// Recognizer returns the OCR engine, or nil when OCR is disabled.
func (p *Pipeline) Recognizer() ocr.TextRecognizer { return p.recognizer }

// Solver returns the configured solver.
func (p *Pipeline) Solver() *solver.Solver { return p.solver }

// GlyphOptions returns the normalization used ahead of glyph detection.
func (p *Pipeline) GlyphOptions() imaging.NormalizeOptions { return p.glyphOpts }

// OCROptions returns the normalization used ahead of OCR.
func (p *Pipeline) OCROptions() imaging.NormalizeOptions { return p.ocrOpts }

// Close releases the OCR engine.
func (p *Pipeline) Close() error {
	if p.recognizer == nil {
		return nil
	}
	return p.recognizer.Close()
}

// SegmentAndClassify finds glyphs in a normalized image. A blank page
// yields an empty slice, not an error.
func (p *Pipeline) SegmentAndClassify(ctx context.Context, buf *imaging.PixelBuffer) ([]detection.Glyph, error) {
	glyphs, err := detection.SegmentAndClassify(ctx, p.detector, buf)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, apperrors.NewDetectorFailedError(p.detector.Name(), err)
	}
	return glyphs, nil
}

// SolveText solves a plain chat message.
func (p *Pipeline) SolveText(text string) solver.Result {
	return p.solver.Solve(text)
}

// ProcessImage decodes data and runs ProcessDecoded on it.
func (p *Pipeline) ProcessImage(ctx context.Context, data []byte, transcript string) (*Result, error) {
	img, err := imaging.DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	return p.ProcessDecoded(ctx, img, transcript)
}

// ProcessDecoded detects glyphs in img, obtains a transcript, merges the two
// and solves the merged text.
//
// A non-empty transcript is used as given; otherwise the OCR engine reads
// the image when one is configured. Glyph detection and OCR run
// concurrently. The whole call is bounded by the pipeline timeout and
// returns a PIPELINE_TIMEOUT error with no partial result when it expires.
// OCR failures are logged and leave the transcript empty.
func (p *Pipeline) ProcessDecoded(ctx context.Context, img image.Image, transcript string) (*Result, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	type outcome struct {
		res *Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := p.process(ctx, img, transcript)
		done <- outcome{res, err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return nil, p.contextError(ctx, out.err)
		}
		out.res.Duration = time.Since(start)
		out.res.DurationMS = out.res.Duration.Milliseconds()
		p.logger.Debug("image processed",
			"glyphs", len(out.res.Glyphs), "lines", len(out.res.Lines),
			"handled", out.res.Solution.Handled, "duration", out.res.Duration)
		return out.res, nil
	case <-ctx.Done():
		return nil, p.contextError(ctx, ctx.Err())
	}
}

func (p *Pipeline) contextError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		p.logger.Warn("image processing timed out", "timeout", p.timeout)
		return apperrors.NewPipelineTimeoutError(p.timeout, ctx.Err())
	}
	return err
}

func (p *Pipeline) process(ctx context.Context, img image.Image, transcript string) (*Result, error) {
	var (
		glyphs []detection.Glyph
		text   *ocr.Transcript
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		buf, err := imaging.Normalize(img, p.glyphOpts)
		if err != nil {
			return err
		}
		glyphs, err = p.SegmentAndClassify(gctx, buf)
		return err
	})
	g.Go(func() error {
		text = p.transcribe(gctx, img, transcript)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tokens := stream.Merge(text.Lines, glyphs)
	merged := stream.Join(tokens)

	return &Result{
		Glyphs:           glyphs,
		Lines:            text.Lines,
		OCRConfidence:    text.Confidence,
		HasOCRConfidence: text.HasConfidence,
		Tokens:           tokens,
		Merged:           merged,
		Solution:         p.solver.Solve(merged),
	}, nil
}

// transcribe returns the caller's transcript, or OCR output, or an empty
// transcript. It never fails; OCR errors are logged.
func (p *Pipeline) transcribe(ctx context.Context, img image.Image, transcript string) *ocr.Transcript {
	if transcript != "" || p.recognizer == nil {
		return ocr.ParseTranscript(transcript)
	}

	buf, err := imaging.Normalize(img, p.ocrOpts)
	if err != nil {
		p.logger.Warn("OCR preprocessing failed", "error", err)
		return ocr.ParseTranscript("")
	}
	t, err := p.recognizer.Recognize(ctx, buf.Gray())
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("OCR failed", "error", err)
		}
		return ocr.ParseTranscript("")
	}
	return t
}
