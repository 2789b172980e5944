package ghauth

import (
	"context"
	osexec "os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/repohealth/errors"
)

// fakeRunner records invocations and returns a canned result.
type fakeRunner struct {
	calls  [][]string
	result *Result
	err    error
	block  bool
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.block {
		<-ctx.Done()
		return &Result{ExitCode: -1}, &ExecError{ExitCode: -1, Err: ctx.Err()}
	}
	return f.result, f.err
}

func TestSource_Token(t *testing.T) {
	t.Run("returns trimmed token", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{result: &Result{Stdout: "gho_abc123\n"}}
		token, err := New(WithRunner(runner)).Token(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "gho_abc123", token)
		assert.Equal(t, [][]string{{"gh", "auth", "token"}}, runner.calls)
	})

	t.Run("passes hostname and binary", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{result: &Result{Stdout: "tok"}}
		_, err := New(
			WithRunner(runner),
			WithBinary("/usr/local/bin/gh"),
			WithHostname("ghe.example.com"),
		).Token(context.Background())

		require.NoError(t, err)
		assert.Equal(t, [][]string{{"/usr/local/bin/gh", "auth", "token", "--hostname", "ghe.example.com"}}, runner.calls)
	})

	t.Run("empty output is unauthorized", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{result: &Result{Stdout: "  \n"}}
		_, err := New(WithRunner(runner)).Token(context.Background())

		require.Error(t, err)
		assert.Equal(t, errors.CodeUnauthorized, errors.GetCode(err))
	})

	t.Run("not logged in is unauthorized", func(t *testing.T) {
		t.Parallel()

		stderr := "no oauth token found for github.com " + strings.Repeat("x", 300)
		runner := &fakeRunner{
			result: &Result{Stderr: stderr, ExitCode: 1},
			err:    &ExecError{Command: []string{"gh", "auth", "token"}, ExitCode: 1, Stderr: stderr},
		}
		_, err := New(WithRunner(runner)).Token(context.Background())

		require.Error(t, err)
		assert.Equal(t, errors.CodeUnauthorized, errors.GetCode(err))

		code, _ := errors.ContextValue(err, "exit_code")
		assert.Equal(t, 1, code)
		logged, _ := errors.ContextValue(err, "stderr")
		assert.Len(t, logged, maxStderr)

		var execErr *ExecError
		assert.True(t, errors.As(err, &execErr))
	})

	t.Run("missing binary is a configuration error", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{
			result: &Result{ExitCode: -1},
			err:    &ExecError{ExitCode: -1, Err: osexec.ErrNotFound},
		}
		_, err := New(WithRunner(runner)).Token(context.Background())

		require.Error(t, err)
		assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
		assert.True(t, errors.Is(err, osexec.ErrNotFound))
	})

	t.Run("hung gh times out", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{block: true}
		_, err := New(WithRunner(runner), WithTimeout(10*time.Millisecond)).Token(context.Background())

		require.Error(t, err)
		assert.Equal(t, errors.CodeTimeout, errors.GetCode(err))
	})
}

func TestCommandRunner(t *testing.T) {
	if _, err := osexec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	t.Run("captures output", func(t *testing.T) {
		t.Parallel()

		runner := CommandRunner{Env: map[string]string{"GHAUTH_TEST": "value"}}
		result, err := runner.Run(context.Background(), "sh", "-c", `echo "$GHAUTH_TEST"; echo oops 1>&2`)

		require.NoError(t, err)
		assert.Equal(t, "value\n", result.Stdout)
		assert.Equal(t, "oops\n", result.Stderr)
		assert.Equal(t, 0, result.ExitCode)
	})

	t.Run("reports exit code", func(t *testing.T) {
		t.Parallel()

		result, err := CommandRunner{}.Run(context.Background(), "sh", "-c", "exit 3")

		require.Error(t, err)
		assert.Equal(t, 3, result.ExitCode)

		var execErr *ExecError
		require.True(t, errors.As(err, &execErr))
		assert.Equal(t, []string{"sh", "-c", "exit 3"}, execErr.Command)
		assert.Contains(t, execErr.Error(), "exit code 3")
	})

	t.Run("missing binary", func(t *testing.T) {
		t.Parallel()

		result, err := CommandRunner{}.Run(context.Background(), "definitely-not-a-real-binary-name")

		require.Error(t, err)
		assert.Equal(t, -1, result.ExitCode)
		assert.True(t, errors.Is(err, osexec.ErrNotFound))
	})
}
