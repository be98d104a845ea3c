package shipping

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/shared"
)

func testCandidates() []Candidate {
	return []Candidate{
		{ID: "offer-1", Carrier: "FastShip", Service: "express", Cost: decimal.NewFromFloat(12.50), Currency: "USD", EstimateDay: 1},
		{ID: "offer-2", Carrier: "EconoPost", Service: "ground", Cost: decimal.NewFromFloat(4.99), Currency: "USD", EstimateDay: 5},
	}
}

func testQuote(t *testing.T) *Quote {
	t.Helper()
	q, err := NewQuote(uuid.New(), testCandidates(), 30*time.Minute)
	require.NoError(t, err)
	return q
}

func TestNewQuote(t *testing.T) {
	t.Run("creates open quote with expiry", func(t *testing.T) {
		q := testQuote(t)
		assert.Equal(t, QuoteStatusOpen, q.Status)
		assert.Len(t, q.Candidates, 2)
		assert.True(t, q.ExpiresAt.After(time.Now()))
	})

	t.Run("rejects empty candidate list", func(t *testing.T) {
		_, err := NewQuote(uuid.New(), nil, time.Minute)
		require.Error(t, err)
	})

	t.Run("rejects non-positive ttl", func(t *testing.T) {
		_, err := NewQuote(uuid.New(), testCandidates(), 0)
		require.Error(t, err)
	})
}

func TestQuoteConfirm(t *testing.T) {
	now := time.Now()

	t.Run("confirms a candidate and records the booking", func(t *testing.T) {
		q := testQuote(t)

		ref, err := q.Confirm("offer-2", "ship-555", now)
		require.NoError(t, err)
		assert.Equal(t, "ship-555", ref)
		assert.Equal(t, QuoteStatusConfirmed, q.Status)
		assert.Equal(t, "offer-2", q.ChosenID)
	})

	t.Run("confirming the same candidate again returns the same reference", func(t *testing.T) {
		q := testQuote(t)
		_, err := q.Confirm("offer-1", "ship-1", now)
		require.NoError(t, err)
		version := q.GetVersion()

		ref, err := q.Confirm("offer-1", "ship-other", now)
		require.NoError(t, err)
		assert.Equal(t, "ship-1", ref)
		assert.Equal(t, version, q.GetVersion())
	})

	t.Run("confirming a different candidate after booking is rejected", func(t *testing.T) {
		q := testQuote(t)
		_, err := q.Confirm("offer-1", "ship-1", now)
		require.NoError(t, err)

		_, err = q.Confirm("offer-2", "ship-2", now)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "QUOTE_CONFLICT", domainErr.Code)
	})

	t.Run("rejects unknown candidate", func(t *testing.T) {
		q := testQuote(t)
		_, err := q.Confirm("offer-99", "ship-1", now)
		require.Error(t, err)
	})

	t.Run("rejects expired quote", func(t *testing.T) {
		q := testQuote(t)
		_, err := q.Confirm("offer-1", "ship-1", q.ExpiresAt.Add(time.Second))
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "QUOTE_EXPIRED", domainErr.Code)
	})
}

func TestQuoteExpire(t *testing.T) {
	now := time.Now()

	q := testQuote(t)
	q.Expire(now)
	assert.Equal(t, QuoteStatusExpired, q.Status)
	assert.True(t, q.IsExpired(now))

	confirmed := testQuote(t)
	_, err := confirmed.Confirm("offer-1", "ship-1", now)
	require.NoError(t, err)
	confirmed.Expire(now)
	assert.Equal(t, QuoteStatusConfirmed, confirmed.Status)
}
