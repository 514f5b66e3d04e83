package budget

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

type Repo interface {
	// Get returns the stored budget record, or ErrBudgetNotFound when the
	// user has not had one created yet.
	Get(ctx context.Context, userId int) (Budget, error)
	Upsert(ctx context.Context, userId int, budget Budget) error
}

type RepoImpl struct {
	db *sql.DB
}

func NewBudgetRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) Get(ctx context.Context, userId int) (Budget, error) {
	query := "SELECT sparing, current_balance, last_increment FROM budget WHERE user_id = ?"
	row := r.db.QueryRowContext(ctx, query, userId)

	budget := Budget{UserId: userId}
	var lastIncrement sql.NullString
	if err := row.Scan(&budget.Sparing, &budget.CurrentBalance, &lastIncrement); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Budget{}, ErrBudgetNotFound
		}
		err := fmt.Errorf("could not scan budget: %w", err)
		log.Error(err)
		return Budget{}, err
	}
	if lastIncrement.Valid {
		parsed, err := time.Parse(time.RFC3339, lastIncrement.String)
		if err != nil {
			err := fmt.Errorf("could not parse last increment: %w", err)
			log.Error(err)
			return Budget{}, err
		}
		budget.LastIncrement = parsed
	}
	return budget, nil
}

func (r *RepoImpl) Upsert(ctx context.Context, userId int, budget Budget) error {
	query := `INSERT INTO budget (user_id, sparing, current_balance, last_increment)
				VALUES (?, ?, ?, ?)
				ON CONFLICT (user_id) DO UPDATE SET
				    sparing = excluded.sparing,
				    current_balance = excluded.current_balance,
				    last_increment = excluded.last_increment`

	var lastIncrementParam interface{}
	if !budget.LastIncrement.IsZero() {
		lastIncrementParam = budget.LastIncrement.Format(time.RFC3339)
	} else {
		lastIncrementParam = nil
	}

	_, err := r.db.ExecContext(ctx, query, userId, budget.Sparing, budget.CurrentBalance, lastIncrementParam)
	if err != nil {
		err := fmt.Errorf("could not upsert budget: %w", err)
		log.Error(err)
		return err
	}
	return nil
}
