package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/mcoot/gomoku-go/internal/dependencies/clock"
	"github.com/mcoot/gomoku-go/internal/model"
)

// DefaultWorkers is the number of AI moves computed at once
const DefaultWorkers = 4

// ErrServiceClosed is returned by Submit after Close has been called
var ErrServiceClosed = errors.New("bot service is closed")

// Request is one AI turn handed to a worker
type Request struct {
	GameID   model.GameID
	Board    *model.Board // Snapshot owned by the worker
	Stone    model.Stone
	Strategy string
}

// Result is delivered once per accepted Request
type Result struct {
	GameID   model.GameID
	Stone    model.Stone
	Position model.Position
	Err      error
	Elapsed  time.Duration
}

// Service runs AI turns on a bounded set of worker goroutines.
// It never touches stored state; results go back to whoever owns the board.
type Service struct {
	strategies map[string]Strategy
	sem        *semaphore.Weighted
	clock      clock.Clock
	logger     *slog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup

	// abandon is closed when Close gives up waiting, releasing workers
	// blocked on a results channel nobody is reading
	abandon chan struct{}
}

// NewService creates a bot Service running at most workers moves at a time
func NewService(strategies map[string]Strategy, workers int, clk clock.Clock, logger *slog.Logger) *Service {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Service{
		strategies: strategies,
		sem:        semaphore.NewWeighted(int64(workers)),
		clock:      clk,
		logger:     logger.With(slog.String("component", "bot-service")),
		abandon:    make(chan struct{}),
	}
}

// Strategy looks up a registered strategy by name
func (s *Service) Strategy(name string) (Strategy, error) {
	st, ok := s.strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrUnknownStrategy, name)
	}
	return st, nil
}

// Submit queues an AI turn. The result is sent on out at most once, after the
// move has been computed; the computation itself is never cancelled. Results
// are only dropped when Close times out with nobody receiving from out.
func (s *Service) Submit(req Request, out chan<- Result) error {
	st, err := s.Strategy(req.Strategy)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrServiceClosed
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		res := s.run(st, req)
		select {
		case out <- res:
		case <-s.abandon:
			s.logger.Warn("dropping ai result after shutdown",
				slog.String("game_id", string(req.GameID)),
			)
		}
	}()
	return nil
}

// Suggest computes a move synchronously on the caller's goroutine
func (s *Service) Suggest(ctx context.Context, board *model.Board, stone model.Stone, strategy string) (model.Position, error) {
	st, err := s.Strategy(strategy)
	if err != nil {
		return model.Position{}, err
	}
	return st.ChooseMove(ctx, board, stone)
}

// Close stops accepting requests and waits for in-flight ones to deliver
// their results. Whoever reads the results channel must keep doing so until
// Close returns; if ctx ends first, undelivered results are dropped and
// ctx's error is returned.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		close(s.abandon)
		return ctx.Err()
	}
}

// Closed reports whether Close has been called
func (s *Service) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Service) run(st Strategy, req Request) Result {
	// Background context: a queued turn always runs eventually
	ctx := context.Background()
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return Result{GameID: req.GameID, Stone: req.Stone, Err: err}
	}
	defer s.sem.Release(1)

	start := s.clock.Now()
	pos, err := st.ChooseMove(ctx, req.Board, req.Stone)
	elapsed := s.clock.Since(start)

	logger := s.logger.With(
		slog.String("game_id", string(req.GameID)),
		slog.String("strategy", req.Strategy),
	)
	if err != nil {
		logger.Info("ai found no move", slog.String("error", err.Error()))
	} else {
		logger.Debug("ai move computed",
			slog.String("position", pos.String()),
			slog.Duration("elapsed", elapsed),
		)
	}

	return Result{
		GameID:   req.GameID,
		Stone:    req.Stone,
		Position: pos,
		Err:      err,
		Elapsed:  elapsed,
	}
}
