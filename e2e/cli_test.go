package e2e_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gomoku-go/internal/api"
	"github.com/mcoot/gomoku-go/internal/api/response"
	"github.com/mcoot/gomoku-go/internal/factory"
	"github.com/mcoot/gomoku-go/internal/services/game"
	"github.com/mcoot/gomoku-go/internal/web"
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

	binaryPath := filepath.Join(projectRoot, "bin", "gomoku-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/gomoku")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
}

func (r *cliRunner) args(args ...string) []string {
	return append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)
}

func (r *cliRunner) run(args ...string) (string, error) {
	cmd := exec.Command(r.binaryPath, r.args(args...)...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithToken(token string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token", token,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// runJSON runs a command that must succeed and decodes its output
func (r *cliRunner) runJSON(t *testing.T, result any, args ...string) {
	t.Helper()
	output, err := r.run(args...)
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), result), "output: %s", output)
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

// startTestServer runs the full application on a free port until the test ends
func startTestServer(t *testing.T) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	gameCfg := game.DefaultConfig()
	gameCfg.BoardSize = 9

	app, err := factory.New(factory.Config{Logger: logger, Game: gameCfg})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	app.Start(ctx)

	mux := http.NewServeMux()
	mux.Handle("/api/", api.NewRouter(api.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		GameController: app.GameController,
		HubManager:     app.HubManager,
	}))
	mux.Handle("/", web.NewRouter(web.RouterConfig{
		Logger:           logger,
		AuthService:      app.AuthService,
		GameController:   app.GameController,
		HubManager:       app.HubManager,
		DefaultBoardSize: gameCfg.BoardSize,
	}))

	server := api.NewServer(mux, api.DefaultServerConfig(), logger, app.HubManager.Shutdown)
	go func() {
		if err := server.Serve(listener); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	t.Cleanup(func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
		_ = app.Shutdown()
		cancel()
	})

	serverURL := "http://" + listener.Addr().String()
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

func countStones(b *response.Board) (black, white int) {
	for _, row := range b.Rows {
		black += strings.Count(row, string(rune(response.CellBlack)))
		white += strings.Count(row, string(rune(response.CellWhite)))
	}
	return black, white
}

func TestCLI_HealthCheck(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	var resp struct {
		Status string `json:"status"`
	}
	cli.runJSON(t, &resp, "health")
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_PlayerCommands(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	var authResp response.AuthResponse
	cli.runJSON(t, &authResp, "player", "guest", "--name", "Alice")
	assert.Equal(t, "Alice", authResp.Player.DisplayName)
	assert.True(t, authResp.Player.IsGuest)
	assert.NotEmpty(t, authResp.SessionToken)

	// The token was saved to the token file
	var player response.Player
	cli.runJSON(t, &player, "player", "me")
	assert.Equal(t, authResp.Player.ID, player.ID)

	output, err := cli.run("player", "logout")
	require.NoError(t, err, "output: %s", output)
	assert.Contains(t, output, "Logged out")

	output, err = cli.runWithToken(authResp.SessionToken, "player", "me")
	require.Error(t, err)
	assert.Contains(t, output, "UNAUTHORIZED")
}

func TestCLI_RegisterAndLogin(t *testing.T) {
	serverURL := startTestServer(t)
	cli := newCLIRunner(t, serverURL)

	var registered response.AuthResponse
	cli.runJSON(t, &registered, "player", "register", "--name", "Bob", "--user", "bob", "--pass", "correct-horse")
	assert.False(t, registered.Player.IsGuest)

	other := &cliRunner{
		binaryPath: cli.binaryPath,
		serverURL:  serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
	var loggedIn response.AuthResponse
	other.runJSON(t, &loggedIn, "player", "login", "--user", "bob", "--pass", "correct-horse")
	assert.Equal(t, registered.Player.ID, loggedIn.Player.ID)
	assert.NotEqual(t, registered.SessionToken, loggedIn.SessionToken)

	output, err := other.run("player", "login", "--user", "bob", "--pass", "wrong-password")
	require.Error(t, err)
	assert.Contains(t, output, "INVALID_CREDENTIALS")
}

func TestCLI_FullGameFlow(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	var auth response.AuthResponse
	cli.runJSON(t, &auth, "player", "guest", "--name", "Alice")

	var g response.Game
	cli.runJSON(t, &g, "game", "new", "--size", "9")
	assert.Equal(t, "human_turn", g.State)
	assert.Equal(t, 9, g.BoardSize)
	assert.Equal(t, "heuristic", g.Strategy)
	assert.Equal(t, "black", g.HumanStone)

	// place waits for the AI reply by default
	var placed response.PlaceResponse
	cli.runJSON(t, &placed, "game", "place", g.ID, "4", "4")
	require.NotNil(t, placed.HumanMove)
	assert.Equal(t, 4, placed.HumanMove.Row)
	assert.Equal(t, 4, placed.HumanMove.Col)
	require.NotNil(t, placed.AIMove, "expected the AI reply")
	assert.Equal(t, "white", placed.AIMove.Stone)
	assert.Equal(t, "human_turn", placed.Game.State)

	var current response.Game
	cli.runJSON(t, &current, "game", "get", g.ID)
	assert.Equal(t, 2, current.MoveCount)
	require.NotNil(t, current.Board)
	black, white := countStones(current.Board)
	assert.Equal(t, 1, black)
	assert.Equal(t, 1, white)

	var hint response.Hint
	cli.runJSON(t, &hint, "game", "hint", g.ID)
	assert.Equal(t, byte(response.CellEmpty), current.Board.Rows[hint.Row][hint.Col], "hint must be an empty cell")

	var score response.ScoreResponse
	cli.runJSON(t, &score, "game", "score", g.ID, "4", "5")
	assert.Equal(t, 4, score.Position.Row)
	assert.Equal(t, 5, score.Position.Col)
	assert.Equal(t, "black", score.Human.Stone)
	assert.Equal(t, "white", score.AI.Stone)
	assert.Len(t, score.Human.Directions, 4)

	var list response.GameList
	cli.runJSON(t, &list, "game", "list")
	require.Len(t, list.Games, 1)
	assert.Equal(t, g.ID, list.Games[0].ID)
}

func TestCLI_AIFirst(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	var auth response.AuthResponse
	cli.runJSON(t, &auth, "player", "guest")
	assert.True(t, strings.HasPrefix(auth.Player.DisplayName, "Guest"))

	var g response.Game
	cli.runJSON(t, &g, "game", "new", "--size", "7", "--ai-first")
	assert.Equal(t, "white", g.HumanStone)

	// Wait for the opening AI move to land
	require.Eventually(t, func() bool {
		var current response.Game
		output, err := cli.run("game", "get", g.ID)
		if err != nil || json.Unmarshal([]byte(output), &current) != nil {
			return false
		}
		return current.State == "human_turn" && current.MoveCount == 1
	}, 5*time.Second, 50*time.Millisecond)
}

func TestCLI_GameResignWithEvents(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	var auth response.AuthResponse
	cli.runJSON(t, &auth, "player", "guest", "--name", "Carol")

	var g response.Game
	cli.runJSON(t, &g, "game", "new")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	events := exec.CommandContext(ctx, cli.binaryPath, cli.args("events", g.ID, "--until-over")...)
	stdout, err := events.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, events.Start())

	lines := bufio.NewScanner(stdout)
	require.True(t, lines.Scan(), "expected a connected event")
	var first struct {
		Event string        `json:"event"`
		Data  response.Game `json:"data"`
	}
	require.NoError(t, json.Unmarshal(lines.Bytes(), &first))
	assert.Equal(t, "connected", first.Event)
	assert.Equal(t, g.ID, first.Data.ID)

	var resigned response.Game
	cli.runJSON(t, &resigned, "game", "resign", g.ID)
	assert.Equal(t, "abandoned", resigned.State)

	var names []string
	for lines.Scan() {
		var evt struct {
			Event string `json:"event"`
		}
		require.NoError(t, json.Unmarshal(lines.Bytes(), &evt))
		names = append(names, evt.Event)
	}
	_, _ = io.Copy(io.Discard, stdout)
	require.NoError(t, events.Wait())
	assert.Equal(t, []string{"game_over"}, names)

	output, err := cli.run("game", "place", g.ID, "0", "0")
	require.Error(t, err)
	assert.Contains(t, output, "GAME_ABANDONED")
}

func TestCLI_ErrorHandling(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	t.Run("requires a session", func(t *testing.T) {
		output, err := cli.run("game", "new")
		require.Error(t, err)
		assert.Contains(t, output, "UNAUTHORIZED")
	})

	var auth response.AuthResponse
	cli.runJSON(t, &auth, "player", "guest", "--name", "Dave")

	var g response.Game
	cli.runJSON(t, &g, "game", "new", "--size", "9")

	t.Run("unknown game", func(t *testing.T) {
		output, err := cli.run("game", "get", "does-not-exist")
		require.Error(t, err)
		assert.Contains(t, output, "GAME_NOT_FOUND")
	})

	t.Run("invalid board size", func(t *testing.T) {
		output, err := cli.run("game", "new", "--size", "3")
		require.Error(t, err)
		assert.Contains(t, output, "INVALID_BOARD_SIZE")
	})

	t.Run("off the board", func(t *testing.T) {
		output, err := cli.run("game", "place", g.ID, "9", "0")
		require.Error(t, err)
		assert.Contains(t, output, "INVALID_POSITION")
	})

	t.Run("non-numeric position", func(t *testing.T) {
		output, err := cli.run("game", "place", g.ID, "a", "0")
		require.Error(t, err)
		assert.Contains(t, output, "row must be a number")
	})

	t.Run("occupied cell", func(t *testing.T) {
		var placed response.PlaceResponse
		cli.runJSON(t, &placed, "game", "place", g.ID, "0", "0")

		output, err := cli.run("game", "place", g.ID, "0", "0")
		require.Error(t, err)
		assert.Contains(t, output, "CELL_OCCUPIED")
	})

	t.Run("unknown output format", func(t *testing.T) {
		cmd := exec.Command(cli.binaryPath, "--server", cli.serverURL, "--output", "yaml", "health")
		output, err := cmd.CombinedOutput()
		require.Error(t, err)
		assert.Contains(t, string(output), "unknown output format")
	})
}
