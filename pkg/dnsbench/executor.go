package dnsbench

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNoLookupExecutor is returned when neither of the supported lookup tools is installed on the host.
	ErrNoLookupExecutor = errors.New("neither 'dig' nor 'nslookup' command found, " +
		"please install dnsutils (Ubuntu/Debian) or bind-utils (CentOS/RHEL)")

	errEmptyResponse = errors.New("empty response")
	errNameNotFound  = errors.New("name not found")
)

const (
	digCommand      = "dig"
	nslookupCommand = "nslookup"
)

// LookupExecutor resolves a single domain against a single DNS server.
// Lookup returns nil only when the domain was successfully resolved.
type LookupExecutor interface {
	Name() string
	Lookup(ctx context.Context, domain, server string) error
}

// CommandRunner runs an external command and returns its standard output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), fmt.Errorf("%s failed: %w", name, err)
	}
	return stdout.Bytes(), nil
}

// DigExecutor resolves domains using the dig utility.
type DigExecutor struct {
	// Timeout is passed to dig as the per-try timeout, DefaultLookupToolTimeout is used when zero.
	Timeout time.Duration
	Run     CommandRunner
}

// Name returns name of the executor.
func (d *DigExecutor) Name() string {
	return digCommand
}

// Lookup runs `dig +short` against the server, any non-empty answer is considered a success.
func (d *DigExecutor) Lookup(ctx context.Context, domain, server string) error {
	out, err := runner(d.Run)(ctx, digCommand,
		"+short", "+time="+toolSeconds(d.Timeout), "+tries=1", "@"+server, domain)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(out)) == 0 {
		return errEmptyResponse
	}
	return nil
}

// NslookupExecutor resolves domains using the nslookup utility.
type NslookupExecutor struct {
	// Timeout is passed to nslookup, DefaultLookupToolTimeout is used when zero.
	Timeout time.Duration
	Run     CommandRunner
}

// Name returns name of the executor.
func (n *NslookupExecutor) Name() string {
	return nslookupCommand
}

// Lookup runs nslookup against the server. The output is human-oriented, so the check for negative
// answers is a best effort one.
func (n *NslookupExecutor) Lookup(ctx context.Context, domain, server string) error {
	out, err := runner(n.Run)(ctx, nslookupCommand, "-timeout="+toolSeconds(n.Timeout), domain, server)
	if err != nil {
		return err
	}
	text := strings.TrimSpace(string(out))
	if len(text) == 0 {
		return errEmptyResponse
	}
	if strings.Contains(text, "NXDOMAIN") || strings.Contains(text, "can't find") {
		return errNameNotFound
	}
	return nil
}

// SelectExecutor picks dig when it is installed and falls back to nslookup.
// If none of them is found ErrNoLookupExecutor is returned.
func SelectExecutor(lookPath func(string) (string, error)) (LookupExecutor, error) {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if _, err := lookPath(digCommand); err == nil {
		return &DigExecutor{}, nil
	}
	if _, err := lookPath(nslookupCommand); err == nil {
		return &NslookupExecutor{}, nil
	}
	return nil, ErrNoLookupExecutor
}

func runner(r CommandRunner) CommandRunner {
	if r == nil {
		return execCommand
	}
	return r
}

func toolSeconds(d time.Duration) string {
	if d <= 0 {
		d = DefaultLookupToolTimeout
	}
	secs := int(d.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
