// Package report renders clinical records to PDF by handing them to an
// external generator process.
//
// The generator reads one JSON document on stdin and answers with a single
// JSON object on stdout:
//
//	{"status":"success","files":["/tmp/report-123.pdf"]}
//	{"status":"error","message":"template not found"}
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ehr/carelog/internal/platform/metrics"
)

// ErrGenerationFailed wraps every failure of the generator process.
var ErrGenerationFailed = errors.New("report generation failed")

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Result is the generator's answer.
type Result struct {
	Status  string   `json:"status"`
	Files   []string `json:"files,omitempty"`
	Message string   `json:"message,omitempty"`
}

// File returns the first generated file.
func (r *Result) File() string {
	if r == nil || len(r.Files) == 0 {
		return ""
	}
	return r.Files[0]
}

type Generator struct {
	args    []string
	timeout time.Duration
	logger  zerolog.Logger
}

// NewGenerator returns a Generator running args[0] with args[1:]. A zero
// timeout leaves the run bounded only by the caller's context.
func NewGenerator(args []string, timeout time.Duration, logger zerolog.Logger) *Generator {
	return &Generator{args: args, timeout: timeout, logger: logger.With().Str("component", "report").Logger()}
}

// Generate runs the generator with record encoded as JSON on stdin.
func (g *Generator) Generate(ctx context.Context, record any) (*Result, error) {
	if len(g.args) == 0 {
		return nil, fmt.Errorf("%w: no generator command configured", ErrGenerationFailed)
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode report input: %w", err)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := g.run(ctx, payload)
	elapsed := time.Since(start)
	if err != nil {
		metrics.RecordReport(statusError, elapsed)
		g.logger.Error().Err(err).Dur("duration", elapsed).Msg("report generation failed")
		return nil, err
	}

	metrics.RecordReport(statusSuccess, elapsed)
	g.logger.Info().Str("file", res.File()).Dur("duration", elapsed).Msg("report generated")
	return res, nil
}

func (g *Generator) run(ctx context.Context, payload []byte) (*Result, error) {
	cmd := exec.CommandContext(ctx, g.args[0], g.args[1:]...)
	cmd.Stdin = bytes.NewReader(payload)
	cmd.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, ctx.Err())
	}

	res, parseErr := parseResult(stdout.Bytes())
	if runErr != nil {
		// Prefer the generator's own message when it managed to print one.
		if parseErr == nil && res.Status == statusError && res.Message != "" {
			return nil, fmt.Errorf("%w: %s", ErrGenerationFailed, res.Message)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = runErr.Error()
		}
		return nil, fmt.Errorf("%w: %s", ErrGenerationFailed, msg)
	}
	if parseErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, parseErr)
	}

	switch res.Status {
	case statusSuccess:
		if res.File() == "" {
			return nil, fmt.Errorf("%w: generator returned no files", ErrGenerationFailed)
		}
		return res, nil
	case statusError:
		return nil, fmt.Errorf("%w: %s", ErrGenerationFailed, res.Message)
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrGenerationFailed, res.Status)
	}
}

// parseResult decodes the last non-empty line of out.
func parseResult(out []byte) (*Result, error) {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if last == "" {
		return nil, errors.New("generator produced no output")
	}
	var res Result
	if err := json.Unmarshal([]byte(last), &res); err != nil {
		return nil, fmt.Errorf("decode generator output: %w", err)
	}
	return &res, nil
}
