package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gomoku-go/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.GuestPlayerTTL = time.Hour
	cfg.GameTTL = 2 * time.Hour
	cfg.BoardTTL = 2 * time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

// Player tests

func (s *StorageSuite) TestSaveAndGetPlayer() {
	player := &model.Player{
		ID:          "player-1",
		DisplayName: "Alice",
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}

	s.Require().NoError(s.storage.SavePlayer(s.ctx, player))

	retrieved, err := s.storage.GetPlayer(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(player.ID, retrieved.ID)
	s.Equal(player.DisplayName, retrieved.DisplayName)
	s.True(player.CreatedAt.Equal(retrieved.CreatedAt))
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestGuestPlayerExpires() {
	guest := &model.Player{ID: "guest-1", DisplayName: "Guest", IsGuest: true}
	s.Require().NoError(s.storage.SavePlayer(s.ctx, guest))
	s.Equal(time.Hour, s.mini.TTL(playerKey("guest-1")))

	s.mini.FastForward(time.Hour + time.Second)

	_, err := s.storage.GetPlayer(s.ctx, "guest-1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestRegisteredPlayerHasNoTTL() {
	player := &model.Player{ID: "player-1", DisplayName: "Alice"}
	s.Require().NoError(s.storage.SavePlayer(s.ctx, player))
	s.Equal(time.Duration(0), s.mini.TTL(playerKey("player-1")))
}

func (s *StorageSuite) TestDeletePlayer() {
	_ = s.storage.SavePlayer(s.ctx, &model.Player{ID: "player-1"})

	s.Require().NoError(s.storage.DeletePlayer(s.ctx, "player-1"))

	_, err := s.storage.GetPlayer(s.ctx, "player-1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Registered player tests

func (s *StorageSuite) TestSaveAndGetRegisteredPlayer() {
	rp := &model.RegisteredPlayer{PlayerID: "player-1", Username: "alice", PasswordHash: "hash"}
	s.Require().NoError(s.storage.SaveRegisteredPlayer(s.ctx, rp))

	byID, err := s.storage.GetRegisteredPlayer(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal("alice", byID.Username)

	byName, err := s.storage.GetRegisteredPlayerByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-1"), byName.PlayerID)
	s.Equal("hash", byName.PasswordHash)
}

func (s *StorageSuite) TestGetRegisteredPlayerByUsernameNotFound() {
	_, err := s.storage.GetRegisteredPlayerByUsername(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Game tests

func (s *StorageSuite) TestSaveAndGetGame() {
	game := &model.Game{
		ID:         "game-1",
		PlayerID:   "player-1",
		State:      model.GameStateAIThinking,
		BoardSize:  15,
		HumanStone: model.StoneBlack,
		AIStone:    model.StoneWhite,
		Strategy:   model.BotStrategyHeuristic,
		MoveCount:  3,
		LastMove:   &model.Move{Position: model.Position{Row: 7, Col: 8}, Stone: model.StoneBlack, Number: 3},
	}

	s.Require().NoError(s.storage.SaveGame(s.ctx, game))
	s.Equal(2*time.Hour, s.mini.TTL(gameKey("game-1")))

	retrieved, err := s.storage.GetGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(model.GameStateAIThinking, retrieved.State)
	s.Equal(model.StoneBlack, retrieved.HumanStone)
	s.Require().NotNil(retrieved.LastMove)
	s.Equal(model.Position{Row: 7, Col: 8}, retrieved.LastMove.Position)
}

func (s *StorageSuite) TestGetGameNotFound() {
	_, err := s.storage.GetGame(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestGetGamesForPlayer() {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	_ = s.storage.SaveGame(s.ctx, &model.Game{ID: "g2", PlayerID: "p1", CreatedAt: base.Add(time.Minute)})
	_ = s.storage.SaveGame(s.ctx, &model.Game{ID: "g1", PlayerID: "p1", CreatedAt: base})
	_ = s.storage.SaveGame(s.ctx, &model.Game{ID: "g3", PlayerID: "p2", CreatedAt: base})

	games, err := s.storage.GetGamesForPlayer(s.ctx, "p1")
	s.Require().NoError(err)
	s.Require().Len(games, 2)
	s.Equal(model.GameID("g1"), games[0].ID)
	s.Equal(model.GameID("g2"), games[1].ID)
}

func (s *StorageSuite) TestGetGamesForPlayerSkipsExpired() {
	_ = s.storage.SaveGame(s.ctx, &model.Game{ID: "g1", PlayerID: "p1"})
	s.mini.Del(gameKey("g1"))

	games, err := s.storage.GetGamesForPlayer(s.ctx, "p1")
	s.Require().NoError(err)
	s.Empty(games)
}

func (s *StorageSuite) TestGetGamesForPlayerEmpty() {
	games, err := s.storage.GetGamesForPlayer(s.ctx, "nobody")
	s.Require().NoError(err)
	s.NotNil(games)
	s.Empty(games)
}

func (s *StorageSuite) TestDeleteGameRemovesFromIndex() {
	_ = s.storage.SaveGame(s.ctx, &model.Game{ID: "g1", PlayerID: "p1"})

	s.Require().NoError(s.storage.DeleteGame(s.ctx, "g1"))

	_, err := s.storage.GetGame(s.ctx, "g1")
	s.ErrorIs(err, model.ErrGameNotFound)

	games, err := s.storage.GetGamesForPlayer(s.ctx, "p1")
	s.Require().NoError(err)
	s.Empty(games)
}

func (s *StorageSuite) TestDeleteGameMissingIsNoop() {
	s.NoError(s.storage.DeleteGame(s.ctx, "nonexistent"))
}

// Board tests

func (s *StorageSuite) TestSaveAndGetBoard() {
	board := model.NewBoard("game-1", 6)
	board.PlaceStone(model.Position{Row: 1, Col: 2}, model.StoneBlack)
	board.PlaceStone(model.Position{Row: 5, Col: 5}, model.StoneWhite)

	s.Require().NoError(s.storage.SaveBoard(s.ctx, board))
	s.Equal(2*time.Hour, s.mini.TTL(boardKey("game-1")))

	retrieved, err := s.storage.GetBoard(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(6, retrieved.Size)
	s.Equal(model.StoneBlack, retrieved.At(model.Position{Row: 1, Col: 2}))
	s.Equal(model.StoneWhite, retrieved.At(model.Position{Row: 5, Col: 5}))
	s.Equal(34, retrieved.EmptyCount())
}

func (s *StorageSuite) TestGetBoardNotFound() {
	_, err := s.storage.GetBoard(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrBoardNotFound)
}

func (s *StorageSuite) TestDeleteBoard() {
	_ = s.storage.SaveBoard(s.ctx, model.NewBoard("game-1", 5))

	s.Require().NoError(s.storage.DeleteBoard(s.ctx, "game-1"))

	_, err := s.storage.GetBoard(s.ctx, "game-1")
	s.ErrorIs(err, model.ErrBoardNotFound)
}

func (s *StorageSuite) TestNewConnectsByURL() {
	cfg := DefaultConfig()
	cfg.URL = "redis://" + s.mini.Addr() + "/0"
	cfg.ConnectTimeout = time.Second

	store, err := New(cfg)
	s.Require().NoError(err)
	defer func() { _ = store.Close() }()

	s.Require().NoError(store.SaveGame(s.ctx, &model.Game{ID: "g1", PlayerID: "p1"}))
	_, err = s.storage.GetGame(s.ctx, "g1")
	s.NoError(err, "both clients talk to the same server")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"no url", func(c *Config) { c.URL = "" }, false},
		{"negative ttl", func(c *Config) { c.GameTTL = -time.Second }, false},
		{"board expires before game", func(c *Config) { c.BoardTTL = time.Hour; c.GameTTL = 2 * time.Hour }, false},
		{"no expiry", func(c *Config) { c.GameTTL = 0; c.BoardTTL = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if tt.ok {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.URL = "not a url"
	_, err := New(cfg)
	assert.Error(t, err)
}
