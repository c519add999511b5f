package e2e

import (
	"bytes"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/mobile/health" {
			fmt.Fprint(w, `{"success":true,"version":"1.0.0"}`)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()
	host, port := splitHostPort(t, server.URL)

	stdout, stderr, err := runPocket(t, binaryPath, home, host, port, "version")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "dev")

	stdout, stderr, err = runPocket(t, binaryPath, home, host, port, "status", "--probe", "--json")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, `"Healthy": true`)
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "pocket-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/pocket")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build pocket binary: %s", string(output))
	return binaryPath
}

func runPocket(t *testing.T, binaryPath, home, host, port string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(),
		"HOME="+home,
		"POCKET_SERVER_HOST="+host,
		"POCKET_SERVER_PORT="+port,
	)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}

func splitHostPort(t *testing.T, rawURL string) (string, string) {
	t.Helper()

	parsed, err := url.Parse(rawURL)
	require.NoError(t, err)
	host, port, err := net.SplitHostPort(parsed.Host)
	require.NoError(t, err)
	return host, port
}
