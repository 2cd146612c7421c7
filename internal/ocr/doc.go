// Package ocr reads text from images for the math pipeline.
//
// TextRecognizer is the seam the pipeline depends on. TesseractRecognizer
// implements it with the gosseract bindings; tests and callers that already
// have a transcript use ParseTranscript instead.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Set MATH_MCP_TESSDATA_PREFIX when the traineddata files live outside the
// engine's default search path.
//
// # Confidence
//
// Word confidences are averaged into Transcript.Confidence. The value is
// reported to callers but never used to drop text.
package ocr
