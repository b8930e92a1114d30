// Package decompile invokes the external revela decompiler, mapping one
// module's bytecode to move source text.
package decompile

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/PassKeyRa/suisource-mcp/internal/errors"
)

const availableTimeout = 5 * time.Second

// Revela shells out to the revela binary. Safe for concurrent use: every
// invocation gets its own temp directory.
type Revela struct {
	bin     string
	timeout time.Duration
}

// New creates an adapter for the given binary name or path.
func New(bin string, timeout time.Duration) *Revela {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Revela{bin: bin, timeout: timeout}
}

// Available reports whether the decompiler binary can be executed.
func (r *Revela) Available(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, availableTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.bin, "--help")
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s --help: %w", r.bin, err)
	}
	return nil
}

// Decompile writes the module bytecode to a scoped temporary location,
// runs the decompiler on it, and returns the source text. The temporary
// directory is removed on every exit path. Failures map to
// DECOMPILE_FAILED and are per-module; callers continue with siblings.
func (r *Revela) Decompile(ctx context.Context, moduleName string, code []byte) (string, error) {
	if err := checkModuleName(moduleName); err != nil {
		return "", err
	}
	if len(code) == 0 {
		return "", errors.NewDecompileFailed(moduleName, "empty bytecode")
	}

	dir := filepath.Join(os.TempDir(), "suisource-"+newInvocationID())
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", errors.NewDecompileFailed(moduleName, "create temp dir: "+err.Error())
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, moduleName+".mv")
	if err := os.WriteFile(input, code, 0600); err != nil {
		return "", errors.NewDecompileFailed(moduleName, "write bytecode: "+err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.bin, "-b", input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", errors.NewDecompileFailed(moduleName, fmt.Sprintf("timed out after %s", r.timeout))
		}
		return "", errors.NewDecompileFailed(moduleName, fmt.Sprintf("%v: %s", err, tail(stderr.String(), 200)))
	}

	source := strings.TrimSpace(stdout.String())
	if source == "" {
		return "", errors.NewDecompileFailed(moduleName, "decompiler produced no output")
	}
	return source, nil
}

// checkModuleName rejects names that would place the bytecode outside
// the invocation's temp directory. Module names come from the RPC
// response and are not trusted.
func checkModuleName(name string) error {
	if name == "" {
		return errors.NewDecompileFailed(name, "empty module name")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || strings.Contains(name, "..") {
		return errors.NewDecompileFailed(name, "invalid module name")
	}
	return nil
}

// newInvocationID returns a fresh ULID so concurrent decompile calls never
// share a temp path.
func newInvocationID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		// rand.Reader failing is not a recoverable state
		panic(fmt.Sprintf("generate ulid: %v", err))
	}
	return id.String()
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
