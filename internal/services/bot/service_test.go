package bot_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gomoku-go/internal/dependencies/mocks"
	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/services/bot"
	"github.com/mcoot/gomoku-go/internal/testutil"
)

// gatedStrategy blocks every move until release is closed and records the
// highest number of moves running at once
type gatedStrategy struct {
	release chan struct{}
	running atomic.Int32
	peak    atomic.Int32
	started chan struct{}
}

func newGatedStrategy() *gatedStrategy {
	return &gatedStrategy{
		release: make(chan struct{}),
		started: make(chan struct{}, 16),
	}
}

func (g *gatedStrategy) ChooseMove(_ context.Context, _ *model.Board, _ model.Stone) (model.Position, error) {
	n := g.running.Add(1)
	for {
		peak := g.peak.Load()
		if n <= peak || g.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	g.started <- struct{}{}
	<-g.release
	g.running.Add(-1)
	return model.Position{Row: 1, Col: 1}, nil
}

type ServiceSuite struct {
	suite.Suite
	mockRandom *mocks.MockRandom
	gated      *gatedStrategy
	service    *bot.Service
	results    chan bot.Result
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.mockRandom = mocks.NewMockRandom()
	s.gated = newGatedStrategy()
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	strategies := map[string]bot.Strategy{
		model.BotStrategyRandom: bot.NewRandomStrategy(s.mockRandom),
		"gated":                 s.gated,
	}
	s.service = bot.NewService(strategies, 2, clk, testutil.NopLogger())
	s.results = make(chan bot.Result, 16)
}

func (s *ServiceSuite) receive() bot.Result {
	select {
	case res := <-s.results:
		return res
	case <-time.After(2 * time.Second):
		s.FailNow("timed out waiting for bot result")
		return bot.Result{}
	}
}

func (s *ServiceSuite) TestSubmitDeliversResult() {
	board := model.NewBoard("game-1", 5)
	s.mockRandom.QueueIntn(6)

	err := s.service.Submit(bot.Request{
		GameID:   "game-1",
		Board:    board,
		Stone:    model.StoneWhite,
		Strategy: model.BotStrategyRandom,
	}, s.results)
	s.Require().NoError(err)

	res := s.receive()
	s.NoError(res.Err)
	s.Equal(model.GameID("game-1"), res.GameID)
	s.Equal(model.StoneWhite, res.Stone)
	s.Equal(model.Position{Row: 1, Col: 1}, res.Position)
}

func (s *ServiceSuite) TestSubmitReportsNoMove() {
	board := model.NewBoard("game-1", 5)
	fillBoard(board)

	err := s.service.Submit(bot.Request{
		GameID:   "game-1",
		Board:    board,
		Stone:    model.StoneWhite,
		Strategy: model.BotStrategyRandom,
	}, s.results)
	s.Require().NoError(err)

	res := s.receive()
	s.ErrorIs(res.Err, model.ErrNoMoveAvailable)
}

func (s *ServiceSuite) TestSubmitUnknownStrategy() {
	err := s.service.Submit(bot.Request{GameID: "game-1", Strategy: "minimax"}, s.results)
	s.ErrorIs(err, model.ErrUnknownStrategy)
}

func (s *ServiceSuite) TestWorkersAreBounded() {
	for i := 0; i < 5; i++ {
		err := s.service.Submit(bot.Request{
			GameID:   model.GameID("game-" + string(rune('a'+i))),
			Board:    model.NewBoard("game", 5),
			Stone:    model.StoneWhite,
			Strategy: "gated",
		}, s.results)
		s.Require().NoError(err)
	}

	// Two workers start, the rest wait for a slot
	<-s.gated.started
	<-s.gated.started
	select {
	case <-s.gated.started:
		s.Fail("third move started while both workers were busy")
	case <-time.After(50 * time.Millisecond):
	}

	close(s.gated.release)
	for i := 0; i < 5; i++ {
		s.NoError(s.receive().Err)
	}
	s.LessOrEqual(s.gated.peak.Load(), int32(2))
}

func (s *ServiceSuite) TestCloseWaitsAndRejects() {
	err := s.service.Submit(bot.Request{
		GameID:   "game-1",
		Board:    model.NewBoard("game-1", 5),
		Stone:    model.StoneWhite,
		Strategy: "gated",
	}, s.results)
	s.Require().NoError(err)
	<-s.gated.started

	var wg sync.WaitGroup
	closed := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.NoError(s.service.Close(context.Background()))
		close(closed)
	}()

	select {
	case <-closed:
		s.Fail("Close returned while a move was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(s.gated.release)
	wg.Wait()
	s.NoError(s.receive().Err)

	err = s.service.Submit(bot.Request{GameID: "game-2", Strategy: "gated"}, s.results)
	s.ErrorIs(err, bot.ErrServiceClosed)
}

func (s *ServiceSuite) TestCloseGivesUpWhenResultsAreNotRead() {
	s.mockRandom.QueueIntn(0)
	unread := make(chan bot.Result)
	err := s.service.Submit(bot.Request{
		GameID:   "game-1",
		Board:    model.NewBoard("game-1", 5),
		Stone:    model.StoneWhite,
		Strategy: model.BotStrategyRandom,
	}, unread)
	s.Require().NoError(err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	returned := make(chan error, 1)
	go func() { returned <- s.service.Close(ctx) }()

	select {
	case err := <-returned:
		s.ErrorIs(err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		s.FailNow("Close blocked on an unread results channel")
	}
	s.True(s.service.Closed())
}

func (s *ServiceSuite) TestSuggestRunsSynchronously() {
	board := model.NewBoard("game-1", 5)
	s.mockRandom.QueueIntn(24)

	pos, err := s.service.Suggest(context.Background(), board, model.StoneBlack, model.BotStrategyRandom)
	s.Require().NoError(err)
	s.Equal(model.Position{Row: 4, Col: 4}, pos)
}
