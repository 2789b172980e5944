// Package ghauth reads the token of an authenticated gh CLI session.
//
// It lets the command line tool reuse `gh auth login` credentials when no
// token is configured:
//
//	token, err := ghauth.New().Token(ctx)
//	if errors.GetCode(err) == errors.CodeUnauthorized {
//	    // gh is installed but not logged in
//	}
package ghauth

import (
	"context"
	"strings"
	"time"

	"github.com/jmgilman/go/repohealth/errors"
)

const (
	// DefaultBinary is the gh executable looked up on PATH.
	DefaultBinary = "gh"

	// DefaultTimeout bounds a single gh invocation.
	DefaultTimeout = 10 * time.Second

	maxStderr = 200
)

// Source resolves tokens through the gh CLI.
type Source struct {
	runner   Runner
	binary   string
	hostname string
	timeout  time.Duration
}

// Option configures a Source.
type Option func(*Source)

// WithRunner replaces the command runner, typically with a fake in tests.
func WithRunner(r Runner) Option {
	return func(s *Source) {
		s.runner = r
	}
}

// WithBinary sets the gh executable.
func WithBinary(path string) Option {
	return func(s *Source) {
		s.binary = path
	}
}

// WithHostname selects the GitHub host whose token is read, for example a
// GitHub Enterprise server. Empty means the gh default host.
func WithHostname(host string) Option {
	return func(s *Source) {
		s.hostname = host
	}
}

// WithTimeout bounds each gh invocation.
func WithTimeout(d time.Duration) Option {
	return func(s *Source) {
		s.timeout = d
	}
}

// New creates a Source.
func New(opts ...Option) *Source {
	s := &Source{
		runner:  CommandRunner{Env: map[string]string{"NO_COLOR": "1", "GH_PROMPT_DISABLED": "1"}},
		binary:  DefaultBinary,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Token returns the token of the active gh session.
// Returns CodeInvalidConfig when gh cannot be run and CodeUnauthorized when
// gh reports no usable session.
func (s *Source) Token(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	args := []string{"auth", "token"}
	if s.hostname != "" {
		args = append(args, "--hostname", s.hostname)
	}

	result, err := s.runner.Run(ctx, s.binary, args...)
	if err != nil {
		return "", s.wrapError(ctx, err, result)
	}

	token := strings.TrimSpace(result.Stdout)
	if token == "" {
		return "", errors.New(errors.CodeUnauthorized, "gh CLI returned an empty token")
	}
	return token, nil
}

func (s *Source) wrapError(ctx context.Context, err error, result *Result) error {
	if ctx.Err() != nil {
		return errors.WithContext(
			errors.Wrap(ctx.Err(), errors.CodeTimeout, "gh CLI did not respond"), "binary", s.binary)
	}

	var execErr *ExecError
	if !errors.As(err, &execErr) || result == nil || result.ExitCode < 0 {
		// gh never ran, e.g. it is not installed.
		return errors.WithContext(
			errors.Wrap(err, errors.CodeInvalidConfig, "failed to run gh CLI"), "binary", s.binary)
	}

	stderr := strings.TrimSpace(result.Stderr)
	if len(stderr) > maxStderr {
		stderr = stderr[:maxStderr]
	}
	return errors.WrapWithContext(err, errors.CodeUnauthorized, "gh CLI not authenticated", map[string]any{
		"exit_code": result.ExitCode,
		"stderr":    stderr,
	})
}
