// Package detection finds and classifies math glyphs in a binarized page.
//
// The heuristic path has three stages:
//
//  1. Segment: label 4-connected ink components and drop specks.
//  2. Classify: measure each component's stroke profile (row and column
//     sums, diagonals, circularity) and apply an ordered rule list.
//  3. DetectArrows: probe beside line-like glyphs for detached arrowheads.
//
// GroupStacked runs between the first two stages so that glyphs drawn with
// separate strokes (= and ÷) are classified as one mark.
//
// A LearnedDetector backed by an OpenCV DNN can replace the heuristic path
// when the binary is built with the gocv tag and a model is configured. Both
// satisfy GlyphDetector and the choice is made once, at construction.
//
// # Coordinate System
//
// All coordinates use the normalized image's convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounds are {X, Y, W, H} with X, Y inclusive
//
// # Scores
//
// Heuristic scores are fixed per rule (0.92 for -, + and =, down to 0.6 for
// unknown). They rank rules, they are not probabilities.
//
// # Concurrency
//
// Nothing in this package keeps state between calls. Segment allocates its
// label arena per call, so any number of images can be processed at once.
package detection
