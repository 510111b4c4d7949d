package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/storage"
)

// Storage keeps everything in maps behind one lock. Records are copied on
// the way in and out, so callers never share mutable state with the store
// (the same guarantee the Redis backend gets from serialization).
type Storage struct {
	mu sync.RWMutex

	players           map[model.PlayerID]model.Player
	registeredPlayers map[model.PlayerID]model.RegisteredPlayer
	usernameIndex     map[string]model.PlayerID
	games             map[model.GameID]*model.Game
	boards            map[model.GameID]*model.Board

	// gamesByPlayer lists each owner's game IDs in the order they were first
	// saved; it breaks CreatedAt ties when listing
	gamesByPlayer map[model.PlayerID][]model.GameID
}

var _ storage.Storage = (*Storage)(nil)

// New creates an empty store
func New() *Storage {
	return &Storage{
		players:           make(map[model.PlayerID]model.Player),
		registeredPlayers: make(map[model.PlayerID]model.RegisteredPlayer),
		usernameIndex:     make(map[string]model.PlayerID),
		games:             make(map[model.GameID]*model.Game),
		boards:            make(map[model.GameID]*model.Board),
		gamesByPlayer:     make(map[model.PlayerID][]model.GameID),
	}
}

func (s *Storage) SavePlayer(_ context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.ID] = *player
	return nil
}

func (s *Storage) GetPlayer(_ context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return &player, nil
}

func (s *Storage) DeletePlayer(_ context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	return nil
}

func (s *Storage) SaveRegisteredPlayer(_ context.Context, rp *model.RegisteredPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registeredPlayers[rp.PlayerID] = *rp
	s.usernameIndex[rp.Username] = rp.PlayerID
	return nil
}

func (s *Storage) GetRegisteredPlayer(_ context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registeredLocked(playerID)
}

func (s *Storage) GetRegisteredPlayerByUsername(_ context.Context, username string) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	playerID, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return s.registeredLocked(playerID)
}

func (s *Storage) registeredLocked(playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	rp, ok := s.registeredPlayers[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return &rp, nil
}

func (s *Storage) SaveGame(_ context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.games[game.ID]; !exists {
		s.gamesByPlayer[game.PlayerID] = append(s.gamesByPlayer[game.PlayerID], game.ID)
	}
	s.games[game.ID] = copyGame(game)
	return nil
}

func (s *Storage) GetGame(_ context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return copyGame(game), nil
}

func (s *Storage) DeleteGame(_ context.Context, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return nil
	}
	delete(s.games, id)
	ids := slices.DeleteFunc(s.gamesByPlayer[game.PlayerID], func(g model.GameID) bool { return g == id })
	if len(ids) == 0 {
		delete(s.gamesByPlayer, game.PlayerID)
	} else {
		s.gamesByPlayer[game.PlayerID] = ids
	}
	return nil
}

// GetGamesForPlayer returns the player's games oldest first
func (s *Storage) GetGamesForPlayer(_ context.Context, playerID model.PlayerID) ([]*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.gamesByPlayer[playerID]
	games := make([]*model.Game, 0, len(ids))
	for _, id := range ids {
		games = append(games, copyGame(s.games[id]))
	}
	slices.SortStableFunc(games, func(a, b *model.Game) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return games, nil
}

func (s *Storage) SaveBoard(_ context.Context, board *model.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards[board.GameID] = board.Clone()
	return nil
}

func (s *Storage) GetBoard(_ context.Context, gameID model.GameID) (*model.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	board, ok := s.boards[gameID]
	if !ok {
		return nil, model.ErrBoardNotFound
	}
	return board.Clone(), nil
}

func (s *Storage) DeleteBoard(_ context.Context, gameID model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.boards, gameID)
	return nil
}

func copyGame(g *model.Game) *model.Game {
	c := *g
	if g.LastMove != nil {
		move := *g.LastMove
		c.LastMove = &move
	}
	return &c
}
