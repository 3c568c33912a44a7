package sandbox_test

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/stepfs/pkg/stepfs/core"
	"github.com/arthur-debert/stepfs/pkg/stepfs/sandbox"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
}

func shell(script string) sandbox.Command {
	return sandbox.Command{Name: "sh", Args: []string{"-c", script}}
}

func TestReadyFromLine(t *testing.T) {
	testCases := []struct {
		line  string
		want  core.ServerReady
		found bool
	}{
		{"  ➜  Local:   http://localhost:5173/", core.ServerReady{Host: "localhost", Port: 5173, URL: "http://localhost:5173/"}, true},
		{"ready on https://example.test", core.ServerReady{Host: "example.test", Port: 443, URL: "https://example.test"}, true},
		{"listening at http://127.0.0.1 now", core.ServerReady{Host: "127.0.0.1", Port: 80, URL: "http://127.0.0.1"}, true},
		{"added 120 packages in 3s", core.ServerReady{}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.line, func(t *testing.T) {
			got, ok := sandbox.ReadyFromLine(tc.line)
			assert.Equal(t, tc.found, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseCommand(t *testing.T) {
	assert.Equal(t, sandbox.Command{Name: "npm", Args: []string{"run", "dev"}}, sandbox.ParseCommand(" npm  run dev "))
	assert.Equal(t, sandbox.Command{}, sandbox.ParseCommand(""))
	assert.Equal(t, "npm install", sandbox.DefaultInstall.String())
}

func TestDevServer_ReportsReady(t *testing.T) {
	skipWithoutShell(t)

	dev := sandbox.NewDevServer(t.TempDir(), nil,
		sandbox.WithInstallCommand(shell("echo installing")),
		sandbox.WithDevCommand(shell(`printf '\033[36mLocal: http://localhost:\033[1m5173\033[22m/\033[39m\n'; echo 'Network: http://10.0.0.2:5173/'`)),
	)

	var mu sync.Mutex
	var reports []core.ServerReady
	dev.OnServerReady(func(r core.ServerReady) {
		mu.Lock()
		defer mu.Unlock()
		reports = append(reports, r)
	})

	require.NoError(t, dev.Run(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, reports, 1)
	assert.Equal(t, core.ServerReady{Host: "localhost", Port: 5173, URL: "http://localhost:5173/"}, reports[0])

	// late subscribers see the earlier notification
	var late core.ServerReady
	dev.OnServerReady(func(r core.ServerReady) { late = r })
	assert.Equal(t, 5173, late.Port)
}

func TestDevServer_InstallFailure(t *testing.T) {
	skipWithoutShell(t)

	devRan := false
	dev := sandbox.NewDevServer(t.TempDir(), nil,
		sandbox.WithInstallCommand(shell("exit 3")),
		sandbox.WithDevCommand(shell("echo http://localhost:1")),
	)
	dev.OnServerReady(func(core.ServerReady) { devRan = true })

	err := dev.Run(context.Background())

	var exitErr *sandbox.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, "sh -c exit 3", exitErr.Command)
	assert.False(t, devRan)
}

func TestDevServer_SkipInstall(t *testing.T) {
	skipWithoutShell(t)

	dev := sandbox.NewDevServer(t.TempDir(), nil,
		sandbox.WithInstallCommand(sandbox.Command{}),
		sandbox.WithDevCommand(shell("true")),
	)
	assert.NoError(t, dev.Run(context.Background()))
}

func TestDevServer_LongOutputLines(t *testing.T) {
	skipWithoutShell(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	t.Run("line within the limit", func(t *testing.T) {
		dev := sandbox.NewDevServer(t.TempDir(), nil,
			sandbox.WithInstallCommand(sandbox.Command{}),
			sandbox.WithDevCommand(shell(`head -c 200000 /dev/zero | tr '\0' x; echo; echo 'Local: http://localhost:3000/'`)),
		)
		var ready core.ServerReady
		dev.OnServerReady(func(r core.ServerReady) { ready = r })

		require.NoError(t, dev.Run(ctx))
		assert.Equal(t, 3000, ready.Port)
	})

	t.Run("line over the limit does not block the command", func(t *testing.T) {
		dev := sandbox.NewDevServer(t.TempDir(), nil,
			sandbox.WithInstallCommand(shell(`head -c 2000000 /dev/zero | tr '\0' x; echo; head -c 500000 /dev/zero | tr '\0' y; echo done`)),
			sandbox.WithDevCommand(shell("true")),
		)

		require.NoError(t, dev.Run(ctx))
		assert.NoError(t, ctx.Err())
	})
}
