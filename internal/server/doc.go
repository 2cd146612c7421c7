// Package server implements the MCP (Model Context Protocol) server for the
// math tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the worksheet
// pipeline and the solver through the MCP protocol, so that a chat assistant
// can hand over a typed question or a photo of homework and get back an
// answer with its working.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Solving:
//   - math_solve_text: Solve an expression, linear equation or word problem
//   - math_solve_image: Detect glyphs, read text and solve a worksheet image
//
// Inspection:
//   - math_detect_glyphs: List detected symbols and shapes
//   - math_binarize: Preview the ink mask and its threshold
//   - math_annotate_glyphs: Overlay labelled glyph boxes on the image
//   - math_ocr: Read the text on the image
//
// Background jobs (only when a Redis queue is configured):
//   - math_job_status: Look up a job queued with async=true
//
// # Image Caching
//
// Decoded images are cached by path for the lifetime of the process, so
// inspecting and then solving the same worksheet decodes it once.
//
// # Error Handling
//
// Missing or malformed arguments and unknown tools return -32602. Failures
// while running a tool (unreadable image, OCR engine missing, pipeline
// timeout) return -32000 with the error text in data. Unknown methods return
// -32601. A question the solver does not understand is not an error: the
// result carries handled=false.
//
// # Usage
//
//	srv := server.New(pipeline.NewFromConfig(cfg, logger), server.WithLogger(logger))
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
