package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

type Repo interface {
	CreateUser(ctx context.Context, user User) (int, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
}

type RepoImpl struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) CreateUser(ctx context.Context, user User) (int, error) {
	query := "INSERT INTO user (uid, username, display_name) VALUES (?, ?, ?)"
	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %v", err)
		log.Error(err)
		return 0, err
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, user.Uid, user.Username, user.DisplayName)
	if err != nil {
		err := fmt.Errorf("could not execute query: %v", err)
		log.Error(err)
		return 0, err
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		err := fmt.Errorf("could not retrieve last insert id: %w", err)
		log.Error(err)
		return 0, err
	}

	return int(lastInsertID), nil
}

func (r *RepoImpl) GetUser(ctx context.Context, id int) (User, error) {
	query := "SELECT id, uid, username, display_name FROM user WHERE id = ?"
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *RepoImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	query := "SELECT id, uid, username, display_name FROM user WHERE uid = ?"
	return r.scanUser(r.db.QueryRowContext(ctx, query, uid))
}

func (r *RepoImpl) scanUser(row *sql.Row) (User, error) {
	var user User
	if err := row.Scan(&user.Id, &user.Uid, &user.Username, &user.DisplayName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		err := fmt.Errorf("could not scan user: %w", err)
		log.Error(err)
		return User{}, err
	}
	return user, nil
}
