package sandbox

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/stepfs/pkg/stepfs/core"
)

// Command is a program and its arguments.
type Command struct {
	Name string
	Args []string
}

// ParseCommand splits a command line on whitespace.
func ParseCommand(line string) Command {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}
	}
	return Command{Name: fields[0], Args: fields[1:]}
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

var (
	// DefaultInstall installs the project's dependencies.
	DefaultInstall = Command{Name: "npm", Args: []string{"install"}}
	// DefaultDev starts the project's development server.
	DefaultDev = Command{Name: "npm", Args: []string{"run", "dev"}}
)

// ExitError reports a command that exited with a non-zero status.
type ExitError struct {
	Command string
	Code    int
	Cause   error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s failed with code %d", e.Command, e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

var (
	ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)
	urlPattern  = regexp.MustCompile(`https?://[^\s"'<>]+`)
)

// DevServer installs dependencies and runs the dev server in a directory.
// The first URL the dev command prints is reported as its readiness.
type DevServer struct {
	dir     string
	install Command
	dev     Command
	logger  core.Logger
	hub     readyHub
	once    sync.Once
}

// DevServerOption configures a DevServer.
type DevServerOption func(*DevServer)

// WithInstallCommand replaces the install command. An empty command skips installation.
func WithInstallCommand(c Command) DevServerOption {
	return func(d *DevServer) { d.install = c }
}

// WithDevCommand replaces the dev server command.
func WithDevCommand(c Command) DevServerOption {
	return func(d *DevServer) { d.dev = c }
}

// NewDevServer creates a dev server runner for dir.
func NewDevServer(dir string, logger core.Logger, opts ...DevServerOption) *DevServer {
	if logger == nil {
		logger = core.NopLogger{}
	}
	d := &DevServer{
		dir:     dir,
		install: DefaultInstall,
		dev:     DefaultDev,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// OnServerReady implements ReadyNotifier.
func (d *DevServer) OnServerReady(fn func(core.ServerReady)) {
	d.hub.add(fn)
}

// Run runs the install command and then the dev command, blocking until the
// dev command exits or ctx is done.
func (d *DevServer) Run(ctx context.Context) error {
	if d.install.Name != "" {
		d.logger.Info().Str("command", d.install.String()).Msg("installing dependencies")
		if err := d.run(ctx, d.install, false); err != nil {
			return err
		}
	}
	d.logger.Info().Str("command", d.dev.String()).Msg("starting development server")
	return d.run(ctx, d.dev, true)
}

func (d *DevServer) run(ctx context.Context, c Command, watch bool) error {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = d.dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open stdout for %s: %w", c, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to open stderr for %s: %w", c, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", c, err)
	}

	var group errgroup.Group
	group.Go(func() error { return d.pump(stdout, "stdout", watch) })
	group.Go(func() error { return d.pump(stderr, "stderr", watch) })
	pumpErr := group.Wait()

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Command: c.String(), Code: exitErr.ExitCode(), Cause: err}
		}
		return fmt.Errorf("%s failed: %w", c, err)
	}
	return pumpErr
}

// maxLineSize bounds a single line of command output.
const maxLineSize = 1 << 20

// pump logs r line by line until EOF. A line longer than maxLineSize ends
// line scanning; the rest of the stream is discarded so the command never
// blocks on a full pipe.
func (d *DevServer) pump(r io.Reader, stream string, watch bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineSize)
	for scanner.Scan() {
		line := ansiPattern.ReplaceAllString(scanner.Text(), "")
		d.logger.Debug().Str("stream", stream).Msg(line)
		if !watch {
			continue
		}
		if ready, ok := ReadyFromLine(line); ok {
			d.once.Do(func() {
				d.logger.Info().Str("url", ready.URL).Msg("development server ready")
				d.hub.notify(ready)
			})
		}
	}

	err := scanner.Err()
	if err == nil {
		return nil
	}
	if _, drainErr := io.Copy(io.Discard, r); drainErr != nil {
		return fmt.Errorf("failed to drain %s: %w", stream, drainErr)
	}
	if errors.Is(err, bufio.ErrTooLong) {
		d.logger.Warn().Str("stream", stream).Msg("output line too long, discarding the rest of the stream")
		return nil
	}
	return fmt.Errorf("failed to read %s: %w", stream, err)
}

// ReadyFromLine extracts the first URL printed on a line of dev server
// output. Escape sequences must already be stripped.
func ReadyFromLine(line string) (core.ServerReady, bool) {
	raw := urlPattern.FindString(line)
	if raw == "" {
		return core.ServerReady{}, false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return core.ServerReady{}, false
	}

	port := 80
	if u.Scheme == "https" {
		port = 443
	}
	if p := u.Port(); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			port = n
		}
	}
	return core.ServerReady{Host: u.Hostname(), Port: port, URL: raw}, true
}
