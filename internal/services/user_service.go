package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/PauloHFS/embedsim/internal/db"
	"github.com/PauloHFS/embedsim/internal/validator"
	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	pool     *db.DualPool
	hashCost int
}

func NewUserService(pool *db.DualPool) *UserService {
	return &UserService{
		pool:     pool,
		hashCost: bcrypt.DefaultCost,
	}
}

type CreateUserInput struct {
	Email    string
	Password string
}

func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (db.User, error) {
	validation := validator.ValidateRegistration(input.Email, input.Password)
	if !validation.Valid {
		return db.User{}, fmt.Errorf("%w: %s", ErrInvalidInput, validation.Error())
	}

	_, err := s.pool.Queries().GetUserByEmail(ctx, input.Email)
	if err == nil {
		return db.User{}, ErrEmailTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return db.User{}, fmt.Errorf("failed to look up email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.hashCost)
	if err != nil {
		return db.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	q := s.pool.QueriesWrite()
	id, err := q.CreateUser(ctx, db.CreateUserParams{
		Email:        input.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		// corrida entre o lookup e o insert
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return db.User{}, ErrEmailTaken
		}
		return db.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	user, err := q.GetUser(ctx, id)
	if err != nil {
		return db.User{}, fmt.Errorf("failed to load created user: %w", err)
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (db.User, error) {
	user, err := s.pool.Queries().GetUser(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return db.User{}, ErrUserNotFound
	}
	if err != nil {
		return db.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
