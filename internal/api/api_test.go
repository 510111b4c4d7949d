package api_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gomoku-go/internal/api"
	"github.com/mcoot/gomoku-go/internal/api/apierr"
	"github.com/mcoot/gomoku-go/internal/api/response"
	"github.com/mcoot/gomoku-go/internal/factory"
	"github.com/mcoot/gomoku-go/internal/testutil"
	"github.com/mcoot/gomoku-go/internal/web/sse"
)

type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	app.Start(context.Background())
	t.Cleanup(func() {
		require.NoError(t, app.Shutdown())
	})

	router := api.NewRouter(api.RouterConfig{
		Logger:         testutil.NopLogger(),
		AuthService:    app.AuthService,
		GameController: app.GameController,
		HubManager:     app.HubManager,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	reqBody := bytes.NewBuffer(nil)
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) guest(t *testing.T, name string) response.AuthResponse {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/players/guest", map[string]string{"display_name": name}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[response.AuthResponse](t, rr)
}

func (ts *testServer) newGame(t *testing.T, token string, body map[string]any) response.Game {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/games", body, token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[response.Game](t, rr)
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[apierr.ErrorResponse](t, rr).Error.Code
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestCreateGuestPlayer(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.guest(t, "Alice")
	assert.Equal(t, "Alice", resp.Player.DisplayName)
	assert.True(t, resp.Player.IsGuest)
	assert.NotEmpty(t, resp.SessionToken)
}

func TestCreateGuestWithoutBody(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players/guest", nil, "")
	require.Equal(t, http.StatusCreated, rr.Code)
	resp := decode[response.AuthResponse](t, rr)
	assert.True(t, strings.HasPrefix(resp.Player.DisplayName, "Guest "))
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players/register", map[string]string{
		"username":     "alice",
		"password":     "secret123",
		"display_name": "Alice",
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code)
	registered := decode[response.AuthResponse](t, rr)
	assert.False(t, registered.Player.IsGuest)

	rr = ts.request(http.MethodPost, "/api/v1/players/login", map[string]string{
		"username": "alice",
		"password": "secret123",
	}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	loggedIn := decode[response.AuthResponse](t, rr)
	assert.Equal(t, registered.Player.ID, loggedIn.Player.ID)
}

func TestRegisterErrors(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players/register", map[string]string{
		"username": "alice",
		"password": "short",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeWeakPassword, errorCode(t, rr))

	body := map[string]string{"username": "alice", "password": "secret123"}
	rr = ts.request(http.MethodPost, "/api/v1/players/register", body, "")
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = ts.request(http.MethodPost, "/api/v1/players/register", body, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeUsernameExists, errorCode(t, rr))
}

func TestLoginInvalidCredentials(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players/login", map[string]string{
		"username": "nobody",
		"password": "secret123",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeInvalidCredentials, errorCode(t, rr))
}

func TestGetMeAndLogout(t *testing.T) {
	ts := newTestServer(t)
	session := ts.guest(t, "Bob")

	rr := ts.request(http.MethodGet, "/api/v1/players/me", nil, session.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	me := decode[response.Player](t, rr)
	assert.Equal(t, "Bob", me.DisplayName)

	rr = ts.request(http.MethodPost, "/api/v1/players/logout", nil, session.SessionToken)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/players/me", nil, session.SessionToken)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUnauthenticatedAccess(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/players/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/games", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/games", nil, "invalid-token")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCreateAndGetGame(t *testing.T) {
	ts := newTestServer(t)
	session := ts.guest(t, "Alice")
	ts.app.MockRandom.QueueID("GAME000001")

	created := ts.newGame(t, session.SessionToken, map[string]any{"board_size": 7})
	assert.Equal(t, "GAME000001", created.ID)
	assert.Equal(t, "human_turn", created.State)
	assert.Equal(t, 7, created.BoardSize)
	assert.Equal(t, "black", created.HumanStone)
	assert.Equal(t, "white", created.AIStone)
	assert.Equal(t, "heuristic", created.Strategy)
	require.NotNil(t, created.Board)
	assert.Len(t, created.Board.Rows, 7)
	assert.Equal(t, ".......", created.Board.Rows[0])

	rr := ts.request(http.MethodGet, "/api/v1/games/GAME000001", nil, session.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, created.ID, decode[response.Game](t, rr).ID)

	rr = ts.request(http.MethodGet, "/api/v1/games/NOPE", nil, session.SessionToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeGameNotFound, errorCode(t, rr))
}

func TestCreateGameValidation(t *testing.T) {
	ts := newTestServer(t)
	session := ts.guest(t, "Alice")

	tests := []struct {
		name     string
		body     map[string]any
		wantCode string
	}{
		{name: "board too small", body: map[string]any{"board_size": 4}, wantCode: apierr.CodeInvalidBoardSize},
		{name: "board too large", body: map[string]any{"board_size": 26}, wantCode: apierr.CodeInvalidBoardSize},
		{name: "unknown strategy", body: map[string]any{"strategy": "minimax"}, wantCode: apierr.CodeUnknownStrategy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPost, "/api/v1/games", tt.body, session.SessionToken)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, rr))
		})
	}
}

func TestPlaceAndWaitForAI(t *testing.T) {
	ts := newTestServer(t)
	session := ts.guest(t, "Alice")
	g := ts.newGame(t, session.SessionToken, nil)

	rr := ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/moves?wait=true",
		map[string]int{"row": 4, "col": 4}, session.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decode[response.PlaceResponse](t, rr)
	require.NotNil(t, resp.HumanMove)
	assert.Equal(t, 4, resp.HumanMove.Row)
	assert.Equal(t, "black", resp.HumanMove.Stone)
	require.NotNil(t, resp.AIMove)
	assert.Equal(t, "white", resp.AIMove.Stone)
	assert.Equal(t, 2, resp.AIMove.Number)
	assert.False(t, resp.AIPending)
	assert.Equal(t, "human_turn", resp.Game.State)
	assert.Equal(t, byte(response.CellBlack), resp.Game.Board.Rows[4][4])
	assert.Equal(t, byte(response.CellWhite), resp.Game.Board.Rows[resp.AIMove.Row][resp.AIMove.Col])
}

func TestPlaceWithoutWait(t *testing.T) {
	ts := newTestServer(t)
	session := ts.guest(t, "Alice")
	g := ts.newGame(t, session.SessionToken, nil)

	rr := ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/moves",
		map[string]int{"row": 0, "col": 0}, session.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[response.PlaceResponse](t, rr)
	assert.True(t, resp.AIPending)
	assert.Nil(t, resp.AIMove)

	// ai-move joins the pending turn or reports it already applied
	rr = ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/ai-move", nil, session.SessionToken)
	if rr.Code == http.StatusOK {
		aiResp := decode[response.AIMoveResponse](t, rr)
		require.NotNil(t, aiResp.AIMove)
		assert.Equal(t, "human_turn", aiResp.Game.State)
	} else {
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, apierr.CodeNotYourTurn, errorCode(t, rr))
	}

	assert.Eventually(t, func() bool {
		rr := ts.request(http.MethodGet, "/api/v1/games/"+g.ID, nil, session.SessionToken)
		return decode[response.Game](t, rr).MoveCount == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPlaceValidation(t *testing.T) {
	ts := newTestServer(t)
	session := ts.guest(t, "Alice")
	g := ts.newGame(t, session.SessionToken, nil)
	movesPath := "/api/v1/games/" + g.ID + "/moves"

	rr := ts.request(http.MethodPost, movesPath, map[string]int{"row": 1}, session.SessionToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, errorCode(t, rr))

	rr = ts.request(http.MethodPost, movesPath, map[string]int{"row": 9, "col": 0}, session.SessionToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidPosition, errorCode(t, rr))

	rr = ts.request(http.MethodPost, movesPath+"?wait=true", map[string]int{"row": 2, "col": 2}, session.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, movesPath, map[string]int{"row": 2, "col": 2}, session.SessionToken)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeCellOccupied, errorCode(t, rr))
}

func TestPlaceWhileBotServiceClosed(t *testing.T) {
	ts := newTestServer(t)
	session := ts.guest(t, "Alice")
	g := ts.newGame(t, session.SessionToken, nil)

	// No stone is placed when the AI cannot reply
	require.NoError(t, ts.app.BotService.Close(context.Background()))
	rr := ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/moves",
		map[string]int{"row": 0, "col": 0}, session.SessionToken)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, apierr.CodeUnavailable, errorCode(t, rr))
}

func TestOtherPlayersCannotMove(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.guest(t, "Alice")
	other := ts.guest(t, "Mallory")
	g := ts.newGame(t, owner.SessionToken, nil)

	rr := ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/moves",
		map[string]int{"row": 0, "col": 0}, other.SessionToken)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, apierr.CodeNotGameOwner, errorCode(t, rr))

	rr = ts.request(http.MethodDelete, "/api/v1/games/"+g.ID, nil, other.SessionToken)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/games/"+g.ID+"/hint", nil, other.SessionToken)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// Watching is allowed
	rr = ts.request(http.MethodGet, "/api/v1/games/"+g.ID, nil, other.SessionToken)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHintAndScore(t *testing.T) {
	ts := newTestServer(t)
	session := ts.guest(t, "Alice")
	g := ts.newGame(t, session.SessionToken, nil)

	rr := ts.request(http.MethodGet, "/api/v1/games/"+g.ID+"/hint", nil, session.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	hint := decode[response.Hint](t, rr)
	assert.Equal(t, response.Hint{Row: 0, Col: 0}, hint)

	rr = ts.request(http.MethodGet, "/api/v1/games/"+g.ID+"/score?row=4&col=4", nil, session.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	score := decode[response.ScoreResponse](t, rr)
	assert.Equal(t, response.Position{Row: 4, Col: 4}, score.Position)
	assert.Equal(t, "black", score.Human.Stone)
	assert.Equal(t, "white", score.AI.Stone)
	assert.Len(t, score.Human.Directions, 4)

	rr = ts.request(http.MethodGet, "/api/v1/games/"+g.ID+"/score?row=x", nil, session.SessionToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAbandonGame(t *testing.T) {
	ts := newTestServer(t)
	session := ts.guest(t, "Alice")
	g := ts.newGame(t, session.SessionToken, nil)

	rr := ts.request(http.MethodDelete, "/api/v1/games/"+g.ID, nil, session.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	abandoned := decode[response.Game](t, rr)
	assert.Equal(t, "abandoned", abandoned.State)
	assert.Empty(t, abandoned.Winner)

	rr = ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/moves",
		map[string]int{"row": 0, "col": 0}, session.SessionToken)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeGameAbandoned, errorCode(t, rr))
}

func TestListGames(t *testing.T) {
	ts := newTestServer(t)
	session := ts.guest(t, "Alice")
	other := ts.guest(t, "Bob")

	ts.newGame(t, session.SessionToken, nil)
	ts.app.MockClock.Advance(time.Second)
	ts.newGame(t, session.SessionToken, map[string]any{"strategy": "random"})
	ts.newGame(t, other.SessionToken, nil)

	rr := ts.request(http.MethodGet, "/api/v1/games", nil, session.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[response.GameList](t, rr)
	require.Len(t, list.Games, 2)
	assert.Equal(t, "heuristic", list.Games[0].Strategy)
	assert.Equal(t, "random", list.Games[1].Strategy)
	assert.Nil(t, list.Games[0].Board)
}

func TestEventStream(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.handler)
	t.Cleanup(srv.Close)

	session := ts.guest(t, "Alice")
	g := ts.newGame(t, session.SessionToken, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		srv.URL+"/api/v1/games/"+g.ID+"/events?token="+session.SessionToken, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	frames := make(chan [2]string, 16)
	go readFrames(resp, frames)

	connected := nextFrame(t, frames)
	assert.Equal(t, "connected", connected[0])
	assert.Contains(t, connected[1], `"id":"`+g.ID+`"`)

	rr := ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/moves?wait=true",
		map[string]int{"row": 3, "col": 3}, session.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)

	var events []sse.EventData
	var names []string
	for len(names) < 3 {
		frame := nextFrame(t, frames)
		names = append(names, frame[0])
		var data sse.EventData
		require.NoError(t, json.Unmarshal([]byte(frame[1]), &data))
		events = append(events, data)
	}
	assert.Equal(t, []string{"stone_placed", "ai_thinking", "stone_placed"}, names)
	require.NotNil(t, events[0].Position)
	assert.Equal(t, sse.PositionData{Row: 3, Col: 3}, *events[0].Position)
	assert.False(t, events[0].ByAI)
	assert.True(t, events[2].ByAI)
	assert.Equal(t, "white", events[2].Stone)
}

// readFrames parses server-sent events into (event, data) pairs
func readFrames(resp *http.Response, out chan<- [2]string) {
	defer close(out)
	scanner := bufio.NewScanner(resp.Body)
	var name string
	var data []string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = append(data, strings.TrimPrefix(line, "data: "))
		case line == "" && name != "":
			out <- [2]string{name, strings.Join(data, "\n")}
			name, data = "", nil
		}
	}
}

func nextFrame(t *testing.T, frames <-chan [2]string) [2]string {
	t.Helper()
	select {
	case frame, ok := <-frames:
		require.True(t, ok, "event stream closed")
		return frame
	case <-time.After(2 * time.Second):
		require.FailNow(t, "timed out waiting for an event")
		return [2]string{}
	}
}
