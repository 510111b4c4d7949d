package components

import (
	"github.com/mcoot/gomoku-go/internal/model"
)

// BoardView is what the board grid needs to render
type BoardView struct {
	GameID   model.GameID
	Board    *model.Board
	Playable bool // empty cells become place buttons
	LastMove *model.Position
	Hint     *model.Position
}

// StatusText describes the game from the human's side
func StatusText(g *model.Game) string {
	switch g.State {
	case model.GameStateHumanTurn:
		return "Your turn (" + g.HumanStone.String() + ")"
	case model.GameStateAIThinking:
		return "The AI is thinking..."
	case model.GameStateWon:
		if g.HumanWon() {
			return "You won!"
		}
		return "The AI won"
	case model.GameStateDrawn:
		return "Draw"
	case model.GameStateAbandoned:
		return "Abandoned"
	default:
		return string(g.State)
	}
}

func (v BoardView) placeable(row, col int) bool {
	return v.Playable && v.Board.At(model.Position{Row: row, Col: col}) == model.StoneEmpty
}

func (v BoardView) placeURL() string {
	return "/games/" + string(v.GameID) + "/place"
}

func (v BoardView) cellClass(row, col int) string {
	pos := model.Position{Row: row, Col: col}
	class := v.Board.At(pos).String()
	if v.LastMove != nil && *v.LastMove == pos {
		class += " last"
	}
	if v.Hint != nil && *v.Hint == pos {
		class += " hint"
	}
	return class
}
