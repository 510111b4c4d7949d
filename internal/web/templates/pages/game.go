package pages

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/web/templates/components"
	"github.com/mcoot/gomoku-go/internal/web/templates/layout"
)

// GameData is the data for the game page
type GameData struct {
	layout.PageData
	Game    *model.Game
	Board   *model.Board
	IsOwner bool
	Hint    *model.Position
}

// liveScript reloads the page when the AI moves or the game ends. The human's
// own moves arrive through the form redirect instead.
const liveScript = `<script>
(function () {
  var container = document.getElementById("board-container");
  if (!container || !window.EventSource) { return; }
  var source = new EventSource(container.dataset.events);
  source.addEventListener("stone_placed", function (e) {
    if (JSON.parse(e.data).by_ai) { location.reload(); }
  });
  source.addEventListener("game_over", function () { location.reload(); });
})();
</script>`

// Game renders the board page
func Game(data GameData) templ.Component {
	return layout.Page(data.PageData, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		g := data.Game
		hw := layout.NewWriter(w)
		gamePath := "/games/" + templ.EscapeString(string(g.ID))
		playable := data.IsOwner && g.State == model.GameStateHumanTurn

		hw.Raw(`<h1>Game `)
		hw.Text(string(g.ID))
		hw.Raw(`</h1><p id="game-info">`)
		hw.Text(strconv.Itoa(g.BoardSize) + "x" + strconv.Itoa(g.BoardSize) +
			" against " + model.BotStrategyDisplayName(g.Strategy) +
			". You play " + g.HumanStone.String() + ".")
		hw.Raw(`</p>`)
		hw.Component(ctx, components.GameStatus(g))

		var lastMove *model.Position
		if g.LastMove != nil {
			lastMove = &g.LastMove.Position
		}
		hw.Raw(`<div id="board-container" data-events="` + gamePath + `/events">`)
		hw.Component(ctx, components.Board(components.BoardView{
			GameID:   g.ID,
			Board:    data.Board,
			Playable: playable,
			LastMove: lastMove,
			Hint:     data.Hint,
		}))
		hw.Raw(`</div>`)

		if data.Hint != nil {
			hw.Raw(`<p id="hint">Suggested move: row `)
			hw.Text(strconv.Itoa(data.Hint.Row))
			hw.Raw(`, column `)
			hw.Text(strconv.Itoa(data.Hint.Col))
			hw.Raw(`</p>`)
		}

		if playable {
			hw.Raw(`<form id="hint-form" method="post" action="` + gamePath + `/hint" style="display:inline">`)
			hw.Raw(`<button type="submit">Hint</button></form> `)
		}
		if data.IsOwner && !g.IsFinished() {
			hw.Raw(`<form id="abandon-form" method="post" action="` + gamePath + `/abandon" style="display:inline">`)
			hw.Raw(`<button type="submit">Resign</button></form>`)
		}
		if g.IsFinished() {
			hw.Raw(`<p><a id="play-again" href="/">Back to games</a></p>`)
		} else {
			hw.Raw(liveScript)
		}
		return hw.Err()
	}))
}
