package usecase

import (
	"context"

	"github.com/rocketscienceinc/disappearing-tictactoe/internal/entity"
)

// GameUseCase is what the transports need from the game layer.
type GameUseCase interface {
	GetOrCreateSession(ctx context.Context, sessionID string) (*entity.Session, error)
	StartGame(ctx context.Context, sessionID string) (*entity.Session, error)
	MakeMove(ctx context.Context, sessionID string, cell int) (*entity.Session, *entity.MoveResult, error)
}

type sessionRepo interface {
	Save(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

var _ GameUseCase = (*GameManager)(nil)
