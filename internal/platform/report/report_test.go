package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// script writes an executable shell script into a temp dir and returns the
// argv to run it.
func script(t *testing.T, body string) []string {
	t.Helper()
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("requires /bin/sh")
	}
	path := filepath.Join(t.TempDir(), "gen.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return []string{"/bin/sh", path}
}

func TestGenerate_Success(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "input.json")
	args := script(t, `cat > `+out+`
echo '{"status":"success","files":["/tmp/report.pdf"]}'
`)

	g := NewGenerator(args, 5*time.Second, zerolog.Nop())
	res, err := g.Generate(context.Background(), map[string]string{"name": "Maria"})

	require.NoError(t, err)
	assert.Equal(t, "/tmp/report.pdf", res.File())

	input, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Maria"}`, string(input))
}

func TestGenerate_UsesLastLine(t *testing.T) {
	args := script(t, `echo "rendering..."
echo '{"status":"success","files":["a.pdf","b.pdf"]}'
`)
	res, err := NewGenerator(args, 5*time.Second, zerolog.Nop()).Generate(context.Background(), struct{}{})
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", res.File())
}

func TestGenerate_ErrorStatus(t *testing.T) {
	args := script(t, `echo '{"status":"error","message":"template missing"}'
`)
	_, err := NewGenerator(args, 5*time.Second, zerolog.Nop()).Generate(context.Background(), struct{}{})

	require.ErrorIs(t, err, ErrGenerationFailed)
	assert.Contains(t, err.Error(), "template missing")
}

func TestGenerate_ErrorStatusWithExitCode(t *testing.T) {
	args := script(t, `echo '{"status":"error","message":"bad input"}'
exit 1
`)
	_, err := NewGenerator(args, 5*time.Second, zerolog.Nop()).Generate(context.Background(), struct{}{})

	require.ErrorIs(t, err, ErrGenerationFailed)
	assert.Contains(t, err.Error(), "bad input")
}

func TestGenerate_NonZeroExitUsesStderr(t *testing.T) {
	args := script(t, `echo "boom" >&2
exit 3
`)
	_, err := NewGenerator(args, 5*time.Second, zerolog.Nop()).Generate(context.Background(), struct{}{})

	require.ErrorIs(t, err, ErrGenerationFailed)
	assert.Contains(t, err.Error(), "boom")
}

func TestGenerate_NoFiles(t *testing.T) {
	args := script(t, `echo '{"status":"success","files":[]}'
`)
	_, err := NewGenerator(args, 5*time.Second, zerolog.Nop()).Generate(context.Background(), struct{}{})
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestGenerate_GarbageOutput(t *testing.T) {
	args := script(t, `echo 'not json'
`)
	_, err := NewGenerator(args, 5*time.Second, zerolog.Nop()).Generate(context.Background(), struct{}{})
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestGenerate_NoOutput(t *testing.T) {
	args := script(t, "exit 0\n")
	_, err := NewGenerator(args, 5*time.Second, zerolog.Nop()).Generate(context.Background(), struct{}{})
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestGenerate_Timeout(t *testing.T) {
	args := script(t, "exec sleep 5\n")
	start := time.Now()
	_, err := NewGenerator(args, 100*time.Millisecond, zerolog.Nop()).Generate(context.Background(), struct{}{})

	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestGenerate_NoCommand(t *testing.T) {
	_, err := NewGenerator(nil, time.Second, zerolog.Nop()).Generate(context.Background(), struct{}{})
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestGenerate_UnencodableInput(t *testing.T) {
	args := script(t, "exit 0\n")
	_, err := NewGenerator(args, time.Second, zerolog.Nop()).Generate(context.Background(), make(chan int))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrGenerationFailed)
}

func TestResult_File(t *testing.T) {
	var r *Result
	assert.Equal(t, "", r.File())
	assert.Equal(t, "x.pdf", (&Result{Files: []string{"x.pdf"}}).File())
}
