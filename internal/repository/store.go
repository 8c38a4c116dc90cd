package repository

import (
	"context"

	"github.com/internnepal/jobboard/internal/db"
	"github.com/jmoiron/sqlx"
)

// Store vends repositories bound either to the pool or to a transaction.
type Store struct {
	db     *sqlx.DB
	Users  UserRepository
	Tokens TokenRepository
}

func NewStore(conn *sqlx.DB) *Store {
	return &Store{
		db:     conn,
		Users:  NewUserRepository(conn),
		Tokens: NewTokenRepository(conn),
	}
}

// InTx runs fn with repositories that share one transaction.
func (s *Store) InTx(ctx context.Context, fn func(users UserRepository, tokens TokenRepository) error) error {
	return db.WithTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		return fn(NewUserRepository(tx), NewTokenRepository(tx))
	})
}
