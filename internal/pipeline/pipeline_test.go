package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/math-tools-mcp/internal/config"
	"github.com/ironsheep/math-tools-mcp/internal/detection"
	apperrors "github.com/ironsheep/math-tools-mcp/internal/errors"
	"github.com/ironsheep/math-tools-mcp/internal/imaging"
	"github.com/ironsheep/math-tools-mcp/internal/logging"
	"github.com/ironsheep/math-tools-mcp/internal/ocr"
)

// fakeRecognizer returns a fixed transcript and counts calls.
type fakeRecognizer struct {
	transcript *ocr.Transcript
	err        error
	calls      atomic.Int32
	closed     bool
}

func (f *fakeRecognizer) Recognize(ctx context.Context, img image.Image) (*ocr.Transcript, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.transcript, nil
}

func (f *fakeRecognizer) Close() error {
	f.closed = true
	return nil
}

// blockingDetector waits for cancellation.
type blockingDetector struct{}

func (blockingDetector) Name() string { return "blocking" }

func (blockingDetector) Detect(ctx context.Context, buf *imaging.PixelBuffer) ([]detection.Glyph, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type failingDetector struct{}

func (failingDetector) Name() string { return "failing" }

func (failingDetector) Detect(ctx context.Context, buf *imaging.PixelBuffer) ([]detection.Glyph, error) {
	return nil, errors.New("model exploded")
}

// pagePNG renders a white page with black rectangles and encodes it as PNG.
func pagePNG(t *testing.T, w, h int, rects ...image.Rectangle) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for _, r := range rects {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPipeline_SolveText(t *testing.T) {
	p := New()

	res := p.SolveText("2x + 3 = 11")
	assert.True(t, res.Handled)
	assert.Equal(t, "x = 4", res.Answer)

	assert.False(t, p.SolveText("hello how are you").Handled)
}

func TestPipeline_CallerTranscript(t *testing.T) {
	rec := &fakeRecognizer{transcript: &ocr.Transcript{Lines: []string{"ignored"}}}
	p := New(WithRecognizer(rec))

	res, err := p.ProcessImage(context.Background(), pagePNG(t, 120, 80), "12 + 7\n")
	require.NoError(t, err)

	assert.Empty(t, res.Glyphs)
	assert.Equal(t, []string{"12 + 7"}, res.Lines)
	assert.Equal(t, "12 + 7", res.Merged)
	assert.True(t, res.Solution.Handled)
	assert.Equal(t, "19", res.Solution.Answer)
	assert.False(t, res.HasOCRConfidence)
	assert.Equal(t, int32(0), rec.calls.Load(), "OCR must not run when a transcript is supplied")
}

func TestPipeline_OCRTranscript(t *testing.T) {
	rec := &fakeRecognizer{transcript: &ocr.Transcript{
		Lines:         []string{"2x + 3 = 11"},
		Confidence:    0.87,
		HasConfidence: true,
	}}
	p := New(WithRecognizer(rec))

	res, err := p.ProcessImage(context.Background(), pagePNG(t, 120, 80), "")
	require.NoError(t, err)

	assert.Equal(t, int32(1), rec.calls.Load())
	assert.True(t, res.HasOCRConfidence)
	assert.InDelta(t, 0.87, res.OCRConfidence, 1e-9)
	assert.Equal(t, "x = 4", res.Solution.Answer)
	assert.GreaterOrEqual(t, res.DurationMS, int64(0))
}

func TestPipeline_OCRFailureIsNotFatal(t *testing.T) {
	rec := &fakeRecognizer{err: apperrors.NewOCRFailedError("fake", errors.New("no tessdata"))}
	p := New(WithRecognizer(rec))

	res, err := p.ProcessImage(context.Background(), pagePNG(t, 120, 80), "")
	require.NoError(t, err)
	assert.Empty(t, res.Lines)
	assert.False(t, res.Solution.Handled)
}

func TestPipeline_GlyphsMergedAfterText(t *testing.T) {
	// a single horizontal bar reads as a minus sign
	data := pagePNG(t, 120, 80, image.Rect(20, 37, 80, 44))
	p := New()

	res, err := p.ProcessImage(context.Background(), data, "9 4")
	require.NoError(t, err)

	require.Len(t, res.Glyphs, 1)
	assert.Equal(t, detection.LabelMinus, res.Glyphs[0].Label)
	assert.Equal(t, "9 4 -", res.Merged)
	require.Len(t, res.Tokens, 3)
	assert.Equal(t, "-", res.Tokens[2].Text)
}

func TestPipeline_DecodeFailure(t *testing.T) {
	p := New()

	_, err := p.ProcessImage(context.Background(), []byte("definitely not an image"), "1 + 1")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrorDecodeFailed))

	_, err = p.ProcessImage(context.Background(), nil, "")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrorDecodeFailed))
}

func TestPipeline_Timeout(t *testing.T) {
	p := New(WithDetector(blockingDetector{}), WithTimeout(20*time.Millisecond))

	res, err := p.ProcessImage(context.Background(), pagePNG(t, 64, 64), "1 + 1")
	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrorPipelineTimeout))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPipeline_Canceled(t *testing.T) {
	p := New(WithDetector(blockingDetector{}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ProcessImage(ctx, pagePNG(t, 64, 64), "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, apperrors.IsCode(err, apperrors.ErrorPipelineTimeout))
}

func TestPipeline_DetectorFailure(t *testing.T) {
	p := New(WithDetector(failingDetector{}))

	_, err := p.ProcessImage(context.Background(), pagePNG(t, 64, 64), "")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrorDetectorFailed))
}

func TestPipeline_Concurrent(t *testing.T) {
	p := New()
	data := pagePNG(t, 160, 100, image.Rect(20, 30, 80, 36), image.Rect(20, 44, 80, 50))

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := p.ProcessImage(context.Background(), data, "")
			if err == nil {
				results[i] = res.Merged
			}
		}(i)
	}
	wg.Wait()

	for _, merged := range results {
		assert.Equal(t, "=", merged)
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := &config.Config{
		MaxDimension:     800,
		GlyphContrast:    1.2,
		OCRContrast:      1.6,
		MinComponentArea: 40,
		Variable:         "y",
		PipelineTimeout:  3 * time.Second,
		OCREnabled:       false,
	}
	p := NewFromConfig(cfg, logging.Nop())
	defer p.Close()

	assert.Equal(t, "heuristic", p.Detector().Name())
	assert.Nil(t, p.Recognizer())
	assert.Equal(t, "y", p.Solver().Variable())
	assert.Equal(t, imaging.NormalizeOptions{MaxDimension: 800, Contrast: 1.2}, p.GlyphOptions())
	assert.Equal(t, imaging.NormalizeOptions{MaxDimension: 800, Contrast: 1.6}, p.OCROptions())
	assert.Equal(t, 3*time.Second, p.timeout)
}

func TestPipeline_Close(t *testing.T) {
	rec := &fakeRecognizer{}
	require.NoError(t, New(WithRecognizer(rec)).Close())
	assert.True(t, rec.closed)
	assert.NoError(t, New().Close())
}
