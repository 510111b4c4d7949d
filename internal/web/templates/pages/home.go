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

// HomeData is the data for the home page
type HomeData struct {
	layout.PageData
	Next             string // where to go after signing in
	DefaultBoardSize int
	Games            []*model.Game // the player's games, oldest first
}

// Home renders the sign-in form for visitors and the new-game form plus game
// list for signed-in players
func Home(data HomeData) templ.Component {
	return layout.Page(data.PageData, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := layout.NewWriter(w)
		hw.Raw(`<h1>Gomoku</h1><p>Five in a row against the computer.</p>`)

		if data.Player == nil {
			hw.Raw(`<form id="guest-form" method="post" action="/auth/guest">`)
			hw.Raw(`<label for="display_name">Display name</label> `)
			hw.Raw(`<input type="text" id="display_name" name="display_name" maxlength="40" placeholder="Guest"> `)
			if data.Next != "" {
				hw.Raw(`<input type="hidden" name="next" value="`)
				hw.Text(data.Next)
				hw.Raw(`">`)
			}
			hw.Raw(`<button type="submit">Play as guest</button></form>`)
			return hw.Err()
		}

		hw.Raw(`<h2>New game</h2><form id="new-game-form" method="post" action="/games">`)
		hw.Raw(`<label for="board_size">Board size</label> `)
		hw.Raw(`<input type="number" id="board_size" name="board_size" min="` + strconv.Itoa(model.MinBoardSize) +
			`" max="` + strconv.Itoa(model.MaxBoardSize) + `" value="` + strconv.Itoa(data.DefaultBoardSize) + `"> `)
		hw.Raw(`<label for="strategy">Opponent</label> <select id="strategy" name="strategy">`)
		for _, strategy := range model.ValidBotStrategies() {
			hw.Raw(`<option value="`)
			hw.Text(strategy)
			hw.Raw(`">`)
			hw.Text(model.BotStrategyDisplayName(strategy))
			hw.Raw(`</option>`)
		}
		hw.Raw(`</select> <label><input type="checkbox" name="ai_first" value="true"> AI moves first</label> `)
		hw.Raw(`<button type="submit">Start</button></form>`)

		hw.Raw(`<h2>Your games</h2>`)
		if len(data.Games) == 0 {
			hw.Raw(`<p id="no-games">No games yet.</p>`)
			return hw.Err()
		}
		hw.Raw(`<ul id="game-list">`)
		for _, g := range data.Games {
			hw.Raw(`<li data-game-id="`)
			hw.Text(string(g.ID))
			hw.Raw(`"><a href="/games/`)
			hw.Text(string(g.ID))
			hw.Raw(`">`)
			hw.Text(string(g.ID))
			hw.Raw(`</a> `)
			hw.Text(strconv.Itoa(g.BoardSize) + "x" + strconv.Itoa(g.BoardSize) + ", " +
				model.BotStrategyDisplayName(g.Strategy) + ": " + components.StatusText(g))
			hw.Raw(`</li>`)
		}
		hw.Raw(`</ul>`)
		return hw.Err()
	}))
}
