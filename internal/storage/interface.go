package storage

import (
	"context"

	"github.com/mcoot/gomoku-go/internal/model"
)

// PlayerStore persists players and their login records. Lookups of a missing
// player return model.ErrPlayerNotFound.
type PlayerStore interface {
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error
	GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error)
	GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error)
}

// GameStore persists game records. GetGamesForPlayer returns the owner's
// games oldest first.
type GameStore interface {
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	DeleteGame(ctx context.Context, id model.GameID) error
	GetGamesForPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Game, error)
}

// BoardStore persists the one board belonging to each game
type BoardStore interface {
	SaveBoard(ctx context.Context, board *model.Board) error
	GetBoard(ctx context.Context, gameID model.GameID) (*model.Board, error)
	DeleteBoard(ctx context.Context, gameID model.GameID) error
}

// Storage is everything the application persists
type Storage interface {
	PlayerStore
	GameStore
	BoardStore
}
