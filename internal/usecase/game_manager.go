package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/disappearing-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/disappearing-tictactoe/internal/entity"
	"github.com/rocketscienceinc/disappearing-tictactoe/internal/observability"
	"github.com/rocketscienceinc/disappearing-tictactoe/internal/pkg"
)

// GameManager runs one game per browser session. Operations on the same session are
// serialised so a move is loaded, applied and saved as a single step.
type GameManager struct {
	logger      *slog.Logger
	sessionRepo sessionRepo

	locksMutex sync.Mutex
	locks      map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewGameManager(logger *slog.Logger, sessionRepo sessionRepo) *GameManager {
	return &GameManager{
		logger:      logger,
		sessionRepo: sessionRepo,
		locks:       make(map[string]*sessionLock),
	}
}

// lock takes the session's mutex and returns its release. Idle entries are dropped.
// An empty id is about to get a fresh one, so nothing can contend for it.
func (that *GameManager) lock(sessionID string) func() {
	if sessionID == "" {
		return func() {}
	}

	that.locksMutex.Lock()
	l, ok := that.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		that.locks[sessionID] = l
	}
	l.refs++
	that.locksMutex.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		that.locksMutex.Lock()
		l.refs--
		if l.refs == 0 {
			delete(that.locks, sessionID)
		}
		that.locksMutex.Unlock()
	}
}

// GetOrCreateSession returns the stored session or starts a new one. An empty id gets a
// freshly generated one; an unknown id is kept so the caller's cookie stays valid.
func (that *GameManager) GetOrCreateSession(ctx context.Context, sessionID string) (*entity.Session, error) {
	defer that.lock(sessionID)()

	return that.getOrCreateSession(ctx, sessionID)
}

// StartGame restarts the session's round unconditionally.
func (that *GameManager) StartGame(ctx context.Context, sessionID string) (*entity.Session, error) {
	defer that.lock(sessionID)()

	log := that.logger.With("method", "StartGame", "sessionID", sessionID)

	session, err := that.getOrCreateSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.Restart()

	if err = that.saveSession(ctx, session); err != nil {
		return nil, err
	}

	observability.RoundsStartedTotal.Inc()
	log.Debug("round started")

	return session, nil
}

// MakeMove applies a move intent. A rejected move returns the unchanged session together
// with an error wrapping apperror.ErrInvalidMove.
func (that *GameManager) MakeMove(ctx context.Context, sessionID string, cell int) (*entity.Session, *entity.MoveResult, error) {
	defer that.lock(sessionID)()

	log := that.logger.With("method", "MakeMove", "sessionID", sessionID, "cell", cell)

	session, err := that.getOrCreateSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	result, err := session.ApplyMove(cell)
	if errors.Is(err, apperror.ErrInvalidMove) {
		observability.MovesTotal.WithLabelValues(observability.MoveRejected).Inc()
		log.Debug("move rejected", "error", err)

		return session, nil, err
	}

	if err != nil {
		return nil, nil, fmt.Errorf("failed to apply move: %w", err)
	}

	if err = that.saveSession(ctx, session); err != nil {
		return nil, nil, err
	}

	that.recordMove(log, result)

	return session, result, nil
}

func (that *GameManager) recordMove(log *slog.Logger, result *entity.MoveResult) {
	observability.MovesTotal.WithLabelValues(observability.MoveAccepted).Inc()

	if result.Evicted != nil {
		observability.EvictionsTotal.Inc()
	}

	if result.Disappearing {
		observability.DisappearingActivationsTotal.Inc()
		log.Info("disappearing mode activated")
	}

	switch {
	case result.Status == entity.StatusDraw:
		observability.RoundsFinishedTotal.WithLabelValues(observability.OutcomeDraw).Inc()
		log.Info("round finished", "status", result.Status)
	case result.Status == entity.StatusWin && result.Winner == entity.MarkX:
		observability.RoundsFinishedTotal.WithLabelValues(observability.OutcomeWinX).Inc()
		log.Info("round finished", "status", result.Status, "winner", result.Winner)
	case result.Status == entity.StatusWin:
		observability.RoundsFinishedTotal.WithLabelValues(observability.OutcomeWinO).Inc()
		log.Info("round finished", "status", result.Status, "winner", result.Winner)
	}
}

func (that *GameManager) getOrCreateSession(ctx context.Context, sessionID string) (*entity.Session, error) {
	if sessionID == "" {
		sessionID = pkg.GenerateNewSessionID()
	} else {
		session, err := that.sessionRepo.GetByID(ctx, sessionID)
		switch {
		case err == nil:
			return session, nil
		case errors.Is(err, apperror.ErrCorrupted):
			that.logger.Warn("dropping corrupted session", "sessionID", sessionID, "error", err)

			if err = that.sessionRepo.DeleteByID(ctx, sessionID); err != nil && !errors.Is(err, apperror.ErrNotFound) {
				return nil, fmt.Errorf("failed to delete session: %w", err)
			}
		case !errors.Is(err, apperror.ErrNotFound):
			return nil, fmt.Errorf("failed to get session: %w", err)
		}
	}

	session := entity.NewSession(sessionID)
	if err := that.saveSession(ctx, session); err != nil {
		return nil, err
	}

	observability.RoundsStartedTotal.Inc()
	that.logger.Info("session created", "sessionID", sessionID)

	return session, nil
}

func (that *GameManager) saveSession(ctx context.Context, session *entity.Session) error {
	if err := that.sessionRepo.Save(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}
