package e2e_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/apl-auction/internal/api"
	"github.com/mcoot/apl-auction/internal/api/response"
	"github.com/mcoot/apl-auction/internal/factory"
	"github.com/mcoot/apl-auction/internal/seed"
	"github.com/mcoot/apl-auction/internal/testutil"
)

const (
	adminUsername = "admin"
	adminPassword = "correct-horse"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "auctionctl")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/auctionctl")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	// Keep the developer's own AUCTIONCTL_* settings out of the test
	cmd.Env = []string{"HOME=" + filepath.Dir(r.tokenFile)}
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// runJSON runs a command and decodes its JSON output into v
func (r *cliRunner) runJSON(t *testing.T, v any, args ...string) {
	t.Helper()
	output, err := r.run(args...)
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), v), "output: %s", output)
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// startTestServer runs the full server on a free port with the sample league loaded
func startTestServer(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	logger := testutil.NopLogger()
	app, err := factory.New(t.Context(), factory.Config{Logger: logger})
	require.NoError(t, err)

	leagueFile := filepath.Join(findProjectRoot(t), "internal", "seed", "testdata", "league.yaml")
	_, err = seed.LoadFile(t.Context(), leagueFile, app.League, logger)
	require.NoError(t, err)
	require.NoError(t, app.AuthService.EnsureAdmin(t.Context(), adminUsername, adminPassword))
	require.NoError(t, app.Start(t.Context()))

	server := api.NewServer(app.Handler(factory.HandlerConfig{Logger: logger}), api.DefaultServerConfig(ln.Addr().String()), logger)
	server.OnShutdown(app.Hub.Close)
	go func() { _ = server.Serve(ln) }()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
		_ = app.Close()
	})

	serverURL := "http://" + ln.Addr().String()
	waitForServer(t, serverURL+"/api/v1/health")
	return serverURL
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

func TestCLI_HealthCheck(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	var resp struct {
		Status string `json:"status"`
	}
	cli.runJSON(t, &resp, "health")
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_RequiresLogin(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	output, err := cli.run("team", "list")
	require.Error(t, err)
	assert.Contains(t, output, "UNAUTHORIZED")
}

func TestCLI_FullAuction(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	var auth response.AuthResponse
	cli.runJSON(t, &auth, "login", "--user", adminUsername, "--pass", adminPassword)
	assert.Equal(t, adminUsername, auth.Username)

	var teams []response.Team
	cli.runJSON(t, &teams, "team", "list")
	require.Len(t, teams, 2)

	var pool []response.Player
	cli.runJSON(t, &pool, "player", "list", "--status", "unsold")
	require.Len(t, pool, 3)

	// Sell every pool player, alternating teams
	for i := range pool {
		var next response.NextResponse
		cli.runJSON(t, &next, "auction", "next")
		require.False(t, next.Finished)
		require.NotNil(t, next.Player)

		team := teams[i%2]
		var sold response.Player
		cli.runJSON(t, &sold, "player", "sell", next.Player.ID, "--team", team.ID, "--amount", "1250")
		assert.True(t, sold.Sold)
		assert.Equal(t, team.ID, sold.TeamID)

		var view response.SoldResponse
		cli.runJSON(t, &view, "auction", "sold", next.Player.ID)
		assert.Equal(t, team.Name, view.Team.Name)

		_, err := cli.run("auction", "advance")
		require.NoError(t, err)
	}

	var next response.NextResponse
	cli.runJSON(t, &next, "auction", "next")
	assert.True(t, next.Finished)

	var finished response.FinishResponse
	cli.runJSON(t, &finished, "auction", "finish")
	require.True(t, finished.Finished)
	require.Len(t, finished.Rosters, 2)
	spent := map[string]float64{}
	for _, roster := range finished.Rosters {
		spent[roster.Team.ID] = roster.Spent
	}
	assert.Equal(t, 2500.0, spent[teams[0].ID])
	assert.Equal(t, 1250.0, spent[teams[1].ID])

	var reset response.ResetResponse
	cli.runJSON(t, &reset, "auction", "reset", "--yes")
	assert.Equal(t, 3, reset.Returned)

	cli.runJSON(t, &pool, "player", "list", "--status", "unsold")
	assert.Len(t, pool, 3)
}

func TestCLI_DoubleSaleRejected(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	_, err := cli.run("login", "--user", adminUsername, "--pass", adminPassword)
	require.NoError(t, err)

	var teams []response.Team
	cli.runJSON(t, &teams, "team", "list")
	var player response.Player
	cli.runJSON(t, &player, "player", "random")

	_, err = cli.run("player", "sell", player.ID, "--team", teams[0].ID, "--amount", "900")
	require.NoError(t, err)

	output, err := cli.run("player", "sell", player.ID, "--team", teams[1].ID, "--amount", "1900")
	require.Error(t, err)
	assert.Contains(t, output, "ALREADY_SOLD")
}
