package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ironsheep/math-tools-mcp/internal/config"
	"github.com/ironsheep/math-tools-mcp/internal/logging"
	"github.com/ironsheep/math-tools-mcp/internal/pipeline"
	"github.com/ironsheep/math-tools-mcp/internal/queue"
	"github.com/ironsheep/math-tools-mcp/internal/server"
	"github.com/ironsheep/math-tools-mcp/internal/solver"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("math-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "math-tools-mcp: %v\n", err)
		os.Exit(1)
	}

	// stdout is for MCP protocol; the logger writes to stderr
	logger := logging.NewLogger("math-mcp", logging.ParseLevel(cfg.LogLevel))
	logger.Debug("starting", "version", Version, "built", BuildTime, "commit", GitCommit)

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "solve":
			os.Exit(runSolve(cfg, os.Args[2:]))
		case "worker":
			os.Exit(runWorker(cfg, logger))
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q; see --help\n", os.Args[1])
			os.Exit(2)
		}
	}

	os.Exit(runServer(cfg, logger))
}

func printHelp() {
	fmt.Println("math-tools-mcp - MCP server that solves math homework from text and worksheet images")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  math-tools-mcp                 Serve MCP over stdin/stdout")
	fmt.Println("  math-tools-mcp solve <text>    Solve one question and print the answer")
	fmt.Println("  math-tools-mcp worker          Process queued jobs from Redis")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables (a .env file in the working directory is read too):")
	fmt.Println("  MATH_MCP_LOG_LEVEL=debug          debug, info, warn or error")
	fmt.Println("  MATH_MCP_VARIABLE=x               Unknown solved for in equations")
	fmt.Println("  MATH_MCP_PIPELINE_TIMEOUT=10s     Time limit per image")
	fmt.Println("  MATH_MCP_OCR_ENABLED=true         Read text with Tesseract")
	fmt.Println("  MATH_MCP_OCR_LANGUAGE=eng         Tesseract language")
	fmt.Println("  MATH_MCP_TESSDATA_PREFIX=         Directory holding traineddata files")
	fmt.Println("  MATH_MCP_DETECTOR_MODEL=          Glyph detection model (gocv builds only)")
	fmt.Println("  MATH_MCP_REDIS_URL=               Enables async jobs and the worker")
	fmt.Println("  MATH_MCP_QUEUE=math               Queue name")
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}

// runSolve answers a question given on the command line or, without
// arguments, on stdin.
func runSolve(cfg *config.Config, args []string) int {
	text := strings.Join(args, " ")
	if strings.TrimSpace(text) == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read stdin: %v\n", err)
			return 1
		}
		text = string(data)
	}

	p := pipeline.New(pipeline.WithSolver(solver.New(solver.WithVariable(cfg.Variable))))
	res := p.SolveText(text)
	if !res.Handled {
		fmt.Fprintln(os.Stderr, "no math found in input")
		return 3
	}

	for _, step := range res.Steps {
		fmt.Fprintf(os.Stderr, "  %s\n", step)
	}
	fmt.Println(res.Answer)
	return 0
}

func runWorker(cfg *config.Config, logger *logging.Logger) int {
	p := pipeline.NewFromConfig(cfg, logger.With("pipeline"))
	defer p.Close()

	w, err := queue.NewWorker(cfg, p, logger.With("worker"))
	if err != nil {
		logger.Error("worker setup failed", "error", err)
		return 1
	}
	if err := w.Run(); err != nil {
		logger.Error("worker error", "error", err)
		return 1
	}
	return 0
}

func runServer(cfg *config.Config, logger *logging.Logger) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.NewFromConfig(cfg, logger.With("pipeline"))
	defer p.Close()

	opts := []server.Option{server.WithLogger(logger.With("server"))}
	if cfg.RedisURL != "" {
		client, err := queue.NewClient(cfg)
		if err != nil {
			logger.Warn("job queue unavailable, async tools disabled", "error", err)
		} else {
			defer client.Close()
			opts = append(opts, server.WithJobQueue(client))
			logger.Info("job queue enabled", "queue", cfg.QueueName)
		}
	}

	srv := server.New(p, opts...)
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server error", "error", err)
		return 1
	}
	return 0
}
