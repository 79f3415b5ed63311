package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repo interface {
	CreateUser(ctx context.Context, user User) (int, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	UpdateUser(ctx context.Context, userId int, user User) (User, error)
}

type UserRepoImpl struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepoImpl {
	return &UserRepoImpl{db: db}
}

const uniqueViolation = "23505"

func (u *UserRepoImpl) CreateUser(ctx context.Context, user User) (int, error) {
	query := `INSERT INTO users (uid, username, display_name, currency) VALUES ($1, $2, $3, $4) RETURNING id`
	var id int
	err := u.db.QueryRow(ctx, query, user.Uid, user.Username, user.DisplayName, user.Currency).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, ErrUsernameTaken
		}
		log.Errorf("failed to create user: %v", err)
		return 0, err
	}
	return id, nil
}

func (u *UserRepoImpl) GetUser(ctx context.Context, id int) (User, error) {
	query := `SELECT id, uid, username, display_name, currency FROM users WHERE id = $1`
	return u.getOne(ctx, query, id)
}

func (u *UserRepoImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	query := `SELECT id, uid, username, display_name, currency FROM users WHERE uid = $1`
	return u.getOne(ctx, query, uid)
}

func (u *UserRepoImpl) getOne(ctx context.Context, query string, arg any) (User, error) {
	var user User
	err := u.db.QueryRow(ctx, query, arg).
		Scan(&user.Id, &user.Uid, &user.Username, &user.DisplayName, &user.Currency)
	if errors.Is(err, pgx.ErrNoRows) {
		log.Infof("user %v not found", arg)
		return User{}, ErrUserNotFound
	} else if err != nil {
		log.Errorf("failed to get user: %v", err)
		return User{}, err
	}
	return user, nil
}

func (u *UserRepoImpl) UpdateUser(ctx context.Context, userId int, user User) (User, error) {
	query := `UPDATE users SET display_name = $1, currency = $2 WHERE id = $3`
	result, err := u.db.Exec(ctx, query, user.DisplayName, user.Currency, userId)
	if err != nil {
		log.Errorf("failed to update user: %v", err)
		return User{}, err
	}
	if result.RowsAffected() == 0 {
		log.Info("no rows affected of updating user")
		return User{}, ErrUserNotFound
	}
	return u.GetUser(ctx, userId)
}
