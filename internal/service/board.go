// Package service composes the tracker fetcher, the cache
// orchestrator, and the board assembler into the operations the HTTP
// layer exposes.
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/clientview/boardd/internal/board"
	"github.com/clientview/boardd/internal/cache"
	"github.com/clientview/boardd/internal/tracker"
)

// BoardService serves assembled board views through the cache.
type BoardService struct {
	fetcher   tracker.Fetcher
	orch      *cache.Orchestrator
	assembler *board.Assembler
	logger    *zap.Logger
}

// NewBoardService creates a BoardService. Logger may be nil.
func NewBoardService(fetcher tracker.Fetcher, orch *cache.Orchestrator, assembler *board.Assembler, logger *zap.Logger) *BoardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BoardService{
		fetcher:   fetcher,
		orch:      orch,
		assembler: assembler,
		logger:    logger,
	}
}

// Board returns the assembled board view for a team. Issue lists and
// workflow states are served from the cache when live; misses collapse
// into a single upstream fetch per key. Workflow-state definitions
// change rarely, so they are written through to the durable tier.
func (s *BoardService) Board(ctx context.Context, teamID string) (board.View, error) {
	ttls := s.orch.TTLs()

	issues, err := cache.GetOrFetch(ctx, s.orch, cache.IssuesKey(teamID), ttls.Issues,
		func(ctx context.Context) ([]tracker.Issue, error) {
			return s.fetcher.Issues(ctx, teamID)
		})
	if err != nil {
		return board.View{}, fmt.Errorf("failed to load issues for team %s: %w", teamID, err)
	}

	states, err := cache.GetOrFetch(ctx, s.orch, cache.ConfigKey(teamID), ttls.Config,
		func(ctx context.Context) ([]tracker.WorkflowState, error) {
			return s.fetcher.WorkflowStates(ctx, teamID)
		}, cache.WithDurable())
	if err != nil {
		return board.View{}, fmt.Errorf("failed to load workflow states for team %s: %w", teamID, err)
	}

	return s.assembler.Assemble(issues, states), nil
}

// Invalidate applies a domain event to the cache. Mutating actions
// (approve, request changes, state transitions) call this through the
// same interface before their next read; there is no ambient event
// broadcast.
func (s *BoardService) Invalidate(event cache.Event, teamID string) error {
	return s.orch.Invalidate(event, teamID)
}

// CacheStats returns the cache observability snapshot.
func (s *BoardService) CacheStats() cache.Stats {
	return s.orch.Stats()
}
