package progress

import (
	"errors"
	"time"

	"finquest/backend/gamification"
)

// maxDispatchAttempts bounds the read-compute-write loop. Conflicts past
// this point surface as ErrVersionConflict for the HTTP layer to report.
const maxDispatchAttempts = 3

// Ranker receives XP totals after each successful dispatch. The redis
// leaderboard implements it; a nil ranker disables ranking.
type Ranker interface {
	SetScore(userID uint, xp int) error
}

// Service is the only writer of gamification state. It runs every event
// through the engine against a freshly loaded snapshot and saves the
// result conditioned on the version it read.
type Service struct {
	store  Store
	engine *gamification.Engine
	ranker Ranker
	now    func() time.Time
}

func NewService(store Store, engine *gamification.Engine, ranker Ranker) *Service {
	return &Service{
		store:  store,
		engine: engine,
		ranker: ranker,
		now:    time.Now,
	}
}

// WithStore returns a copy of the service bound to another store, so a
// handler can run a dispatch against a transaction-scoped store and
// have it commit or roll back together with its own writes.
func (s *Service) WithStore(store Store) *Service {
	clone := *s
	clone.store = store
	return &clone
}

// Levels exposes the level table the engine actually applies, for
// presentation alongside snapshots.
func (s *Service) Levels() gamification.LevelTable {
	return s.engine.Levels()
}

// Init creates the zero-valued snapshot row for a new user.
func (s *Service) Init(userID uint) error {
	return s.store.Create(userID)
}

// Snapshot returns the current state without applying anything.
func (s *Service) Snapshot(userID uint) (gamification.Snapshot, error) {
	snapshot, _, err := s.store.Load(userID)
	return snapshot, err
}

// Dispatch applies one event. On a version conflict the whole
// read-compute-write cycle is retried so the engine always computes
// against current state; engine validation errors are never retried.
func (s *Service) Dispatch(userID uint, event gamification.Event) (gamification.Snapshot, []gamification.Notification, error) {
	var lastErr error

	for attempt := 0; attempt < maxDispatchAttempts; attempt++ {
		snapshot, version, err := s.store.Load(userID)
		if err != nil {
			return gamification.Snapshot{}, nil, err
		}

		next, notifications, err := s.engine.Apply(snapshot, event, s.now())
		if err != nil {
			return snapshot, nil, err
		}

		if err := s.store.Save(userID, version, next); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				lastErr = err
				continue
			}
			return gamification.Snapshot{}, nil, err
		}

		if s.ranker != nil {
			// Ranking is best-effort; a cache miss must not fail the event.
			_ = s.ranker.SetScore(userID, next.XP)
		}
		return next, notifications, nil
	}

	return gamification.Snapshot{}, nil, lastErr
}
