package response

import (
	"strings"
	"time"

	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/services/auth"
	"github.com/mcoot/gomoku-go/internal/services/game"
)

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		IsGuest:     p.IsGuest,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player    `json:"player"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&s.Player),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// Position is a board coordinate
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// PositionFromModel converts model.Position
func PositionFromModel(p model.Position) Position {
	return Position{Row: p.Row, Col: p.Col}
}

// Move is one placed stone
type Move struct {
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Stone  string `json:"stone"`
	Number int    `json:"number"`
}

// MoveFromModel converts model.Move; nil stays nil
func MoveFromModel(m *model.Move) *Move {
	if m == nil {
		return nil
	}
	return &Move{
		Row:    m.Position.Row,
		Col:    m.Position.Col,
		Stone:  m.Stone.String(),
		Number: m.Number,
	}
}

// Board cell markers used in Board.Rows
const (
	CellEmpty = '.'
	CellBlack = 'X'
	CellWhite = 'O'
)

// Board is the grid as one string per row, using CellEmpty/CellBlack/CellWhite
type Board struct {
	Size int      `json:"size"`
	Rows []string `json:"rows"`
}

// BoardFromModel converts model.Board to response Board
func BoardFromModel(b *model.Board) *Board {
	rows := make([]string, b.Size)
	var sb strings.Builder
	for row := 0; row < b.Size; row++ {
		sb.Reset()
		for col := 0; col < b.Size; col++ {
			switch b.Cells[row][col] {
			case model.StoneBlack:
				sb.WriteByte(CellBlack)
			case model.StoneWhite:
				sb.WriteByte(CellWhite)
			default:
				sb.WriteByte(CellEmpty)
			}
		}
		rows[row] = sb.String()
	}
	return &Board{Size: b.Size, Rows: rows}
}

// Game represents a game in API responses
type Game struct {
	ID         string    `json:"id"`
	State      string    `json:"state"`
	BoardSize  int       `json:"board_size"`
	Strategy   string    `json:"strategy"`
	HumanStone string    `json:"human_stone"`
	AIStone    string    `json:"ai_stone"`
	MoveCount  int       `json:"move_count"`
	LastMove   *Move     `json:"last_move,omitempty"`
	Winner     string    `json:"winner,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Board      *Board    `json:"board,omitempty"`
}

// GameFromModel converts model.Game, including the board when given
func GameFromModel(g *model.Game, b *model.Board) Game {
	resp := Game{
		ID:         string(g.ID),
		State:      string(g.State),
		BoardSize:  g.BoardSize,
		Strategy:   g.Strategy,
		HumanStone: g.HumanStone.String(),
		AIStone:    g.AIStone.String(),
		MoveCount:  g.MoveCount,
		LastMove:   MoveFromModel(g.LastMove),
		CreatedAt:  g.CreatedAt,
		UpdatedAt:  g.UpdatedAt,
	}
	if g.Winner != model.StoneEmpty {
		resp.Winner = g.Winner.String()
	}
	if b != nil {
		resp.Board = BoardFromModel(b)
	}
	return resp
}

// GameList is the response for listing a player's games
type GameList struct {
	Games []Game `json:"games"`
}

// GameListFromModel converts a slice of games without boards
func GameListFromModel(games []*model.Game) GameList {
	list := GameList{Games: make([]Game, len(games))}
	for i, g := range games {
		list.Games[i] = GameFromModel(g, nil)
	}
	return list
}

// PlaceResponse is the response after placing a stone. AIMove is only set
// when the request waited for the reply.
type PlaceResponse struct {
	Game      Game  `json:"game"`
	HumanMove *Move `json:"human_move"`
	AIMove    *Move `json:"ai_move,omitempty"`
	AIPending bool  `json:"ai_pending"`
}

// AIMoveResponse is the response after an AI turn has been applied
type AIMoveResponse struct {
	Game   Game  `json:"game"`
	AIMove *Move `json:"ai_move,omitempty"`
}

// Hint is a suggested move for the human
type Hint struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// CellScore is the scorer's view of a cell for one colour
type CellScore struct {
	Stone      string `json:"stone"`
	Directions []int  `json:"directions"`
	Combined   int    `json:"combined"`
}

// CellScoreFromModel converts model.CellScore
func CellScoreFromModel(c model.CellScore) CellScore {
	return CellScore{
		Stone:      c.Stone.String(),
		Directions: c.Directions[:],
		Combined:   c.Combined,
	}
}

// ScoreResponse shows a cell's scores for both sides
type ScoreResponse struct {
	Position Position  `json:"position"`
	Human    CellScore `json:"human"`
	AI       CellScore `json:"ai"`
}

// ScoreResponseFromInspection converts a game.CellInspection
func ScoreResponseFromInspection(pos model.Position, ci *game.CellInspection) ScoreResponse {
	return ScoreResponse{
		Position: PositionFromModel(pos),
		Human:    CellScoreFromModel(ci.Human),
		AI:       CellScoreFromModel(ci.AI),
	}
}
