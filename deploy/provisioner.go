package deploy

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Params are the inputs handed to the external provisioning process.
// Payees and Shares are parallel lists in share-table order.
type Params struct {
	Owner  string
	Payees []string
	Shares []uint64
	Cap    string // decimal string in whole settlement units
}

// Provisioner materializes a new ledger instance and returns its address.
//
// The returned error distinguishes two failure classes: errors wrapping
// ErrProvisionFailed mean the attempt cleanly did not happen and may be
// retried; errors wrapping ErrAmbiguousDeployment mean the process may have
// provisioned a ledger whose address was not observed, and must never be
// retried automatically.
type Provisioner interface {
	Provision(ctx context.Context, params Params) (string, error)
}

// ExecProvisioner runs an external command to provision a ledger.
//
// Output contract: on success (exit 0) the command must write exactly one
// line to stdout -- the new ledger's address, nothing else. Diagnostics go to
// stderr. Nonzero exit is a clean, retryable failure.
//
// The process is never killed on context expiry: a half-finished provisioning
// could already have created on-chain state, so the command is left to run to
// completion in the background while the caller is told the outcome is
// ambiguous.
type ExecProvisioner struct {
	// Command is the argv prefix to run, e.g. {"npx", "hardhat", "run", "deploy.js"}.
	Command []string
}

// Compile-time interface check.
var _ Provisioner = (*ExecProvisioner)(nil)

// Provision runs the configured command with the deployment parameters
// appended as flags and returns the single-line stdout payload.
func (p *ExecProvisioner) Provision(ctx context.Context, params Params) (string, error) {
	if len(p.Command) == 0 {
		return "", ErrNoCommand
	}

	shares := make([]string, len(params.Shares))
	for i, s := range params.Shares {
		shares[i] = strconv.FormatUint(s, 10)
	}
	args := append([]string(nil), p.Command[1:]...)
	args = append(args,
		"--owner", params.Owner,
		"--payees", strings.Join(params.Payees, ","),
		"--shares", strings.Join(shares, ","),
		"--cap", params.Cap,
	)

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(p.Command[0], args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("%w: start %s: %w", ErrProvisionFailed, p.Command[0], err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		// The process keeps running; its effects are unknown. The Wait
		// goroutine reaps it whenever it finishes.
		return "", fmt.Errorf("%w: %s still running after %v", ErrAmbiguousDeployment, p.Command[0], ctx.Err())
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w: %s", ErrProvisionFailed, p.Command[0], err, firstLine(stderr.String()))
		}
	}

	address, err := parseSingleLine(stdout.String())
	if err != nil {
		// Exit was clean, so a ledger likely exists -- only its address is lost.
		return "", fmt.Errorf("%w: %w", ErrAmbiguousDeployment, err)
	}
	return address, nil
}

// parseSingleLine enforces the one-line stdout contract and returns the line.
// Exactly one trailing line terminator is tolerated; a trailing blank line is
// a second line, not whitespace.
func parseSingleLine(out string) (string, error) {
	trimmed := strings.TrimSuffix(out, "\n")
	trimmed = strings.TrimSuffix(trimmed, "\r")
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty stdout", ErrMalformedOutput)
	}
	if strings.ContainsAny(trimmed, "\n\r") {
		return "", fmt.Errorf("%w: expected exactly one line, got %d", ErrMalformedOutput, strings.Count(trimmed, "\n")+1)
	}
	return strings.TrimSpace(trimmed), nil
}

// firstLine truncates multi-line diagnostics for error messages.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
