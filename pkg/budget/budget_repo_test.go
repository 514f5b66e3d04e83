package budget

import (
	"context"
	"testing"
	"time"

	"github.com/buckr/buckr/internal/test_utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepoImpl_GetAndUpsert(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	userId := test_utils.StoreTestUser(t, db)
	repo := NewBudgetRepo(db)
	background := context.Background()

	t.Run("should report a missing record", func(t *testing.T) {
		_, err := repo.Get(background, userId)

		assert.ErrorIs(t, err, ErrBudgetNotFound)
	})

	t.Run("should round trip a full record", func(t *testing.T) {
		// given
		lastIncrement := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		stored := Budget{
			Sparing:        decimal.RequireFromString("99.50"),
			CurrentBalance: decimal.RequireFromString("150"),
			LastIncrement:  lastIncrement,
		}

		// when
		require.NoError(t, repo.Upsert(background, userId, stored))
		found, err := repo.Get(background, userId)

		// then
		require.NoError(t, err)
		assert.Equal(t, userId, found.UserId)
		assert.Equal(t, "99.5", found.Sparing.String())
		assert.Equal(t, "150", found.CurrentBalance.String())
		assert.True(t, lastIncrement.Equal(found.LastIncrement))
	})

	t.Run("should overwrite on a second upsert", func(t *testing.T) {
		updated := Budget{
			Sparing:        decimal.NewFromInt(20),
			CurrentBalance: decimal.NewFromInt(75),
		}

		require.NoError(t, repo.Upsert(background, userId, updated))
		found, err := repo.Get(background, userId)

		require.NoError(t, err)
		assert.Equal(t, "20", found.Sparing.String())
		assert.Equal(t, "75", found.CurrentBalance.String())
		assert.True(t, found.LastIncrement.IsZero())
	})
}
