package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
)

func incomingFixture(orderRef string) payment.IncomingNotification {
	return payment.IncomingNotification{
		OrderRef:    orderRef,
		TxnRef:      "txn-42",
		Status:      "SUCCESS",
		AmountMinor: 3998,
		Currency:    "USD",
		ReceivedAt:  time.Now(),
	}
}

func TestNotificationRepositoryCreate(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormNotificationRepository(db)

	t.Run("first insert wins", func(t *testing.T) {
		n, err := payment.NewNotification(incomingFixture("AABBCCDD11223344AABBCCDD"), uuid.New(), payment.OutcomeSuccess)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, n))

		found, err := repo.FindByProviderOrderRef(ctx, "AABBCCDD11223344AABBCCDD")
		require.NoError(t, err)
		assert.Equal(t, n.ID, found.ID)
		assert.Equal(t, payment.OutcomeSuccess, found.Outcome)
		assert.Equal(t, int64(3998), found.AmountMinor)
	})

	t.Run("duplicate order reference collides", func(t *testing.T) {
		dup, err := payment.NewNotification(incomingFixture("AABBCCDD11223344AABBCCDD"), uuid.New(), payment.OutcomeFailure)
		require.NoError(t, err)

		err = repo.Create(ctx, dup)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})
}

func TestNotificationRepositoryFindUnknownRef(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormNotificationRepository(db)

	_, err := repo.FindByProviderOrderRef(ctx, "0000000000000000DEADBEEF")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestNotificationRepositorySaveReviewFlag(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormNotificationRepository(db)

	n, err := payment.NewNotification(incomingFixture("FFEEDDCCBBAA998877665544"), uuid.New(), payment.OutcomeFailure)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, n))

	n.FlagReview("amount mismatch: notified 100, order total 3998")
	require.NoError(t, repo.Save(ctx, n))

	found, err := repo.FindByProviderOrderRef(ctx, "FFEEDDCCBBAA998877665544")
	require.NoError(t, err)
	assert.True(t, found.NeedsReview)
	assert.Contains(t, found.ReviewNote, "amount mismatch")
}
