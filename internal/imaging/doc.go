// Package imaging turns uploaded worksheet photos into pixel data the glyph
// detector can work on.
//
// The package covers the first two stages of recognition:
//
//   - Normalize decodes, flattens, shrinks and contrast-stretches an image into
//     a single-channel PixelBuffer.
//   - Binarize applies an adaptive threshold to a PixelBuffer and produces a
//     BinaryMask of ink pixels.
//
// It also carries the image helpers the MCP tools need: an ImageCache for
// files on disk, a mask preview and a labelled-box overlay.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. PixelBuffer and BinaryMask values are
// never modified after construction, so any number of goroutines may read them.
//
// # Error Handling
//
// Decode failures are reported as DECODE_FAILED ProcessingErrors from the
// internal errors package. They are fatal for the request.
package imaging
