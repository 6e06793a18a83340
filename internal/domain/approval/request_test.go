package approval

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRequest(t *testing.T, totalLevels int) *Request {
	t.Helper()
	req, err := NewRequest(
		uuid.New(), KindInvoice, uuid.New(),
		"INV-2024-001", "Office supplies",
		decimal.NewFromFloat(1250.00), uuid.New(), totalLevels,
	)
	require.NoError(t, err)
	return req
}

func TestNewRequest(t *testing.T) {
	t.Run("starts pending at level 1", func(t *testing.T) {
		req := newTestRequest(t, 3)
		assert.Equal(t, StatusPending, req.Status)
		assert.Equal(t, 1, req.CurrentLevel)
		assert.Equal(t, 3, req.TotalLevels)
		assert.False(t, req.IsFinalLevel())
	})

	t.Run("rejects total levels below 1", func(t *testing.T) {
		_, err := NewRequest(uuid.New(), KindExpense, uuid.New(), "", "", decimal.NewFromInt(10), uuid.New(), 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 1")
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		_, err := NewRequest(uuid.New(), KindExpense, uuid.New(), "", "", decimal.NewFromInt(-1), uuid.New(), 1)
		require.Error(t, err)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		_, err := NewRequest(uuid.New(), Kind("RECEIPT"), uuid.New(), "", "", decimal.NewFromInt(10), uuid.New(), 1)
		require.Error(t, err)
	})
}

func TestRequestAdvance(t *testing.T) {
	req := newTestRequest(t, 3)

	require.NoError(t, req.Advance())
	assert.Equal(t, 2, req.CurrentLevel)
	require.NoError(t, req.Advance())
	assert.Equal(t, 3, req.CurrentLevel)
	assert.True(t, req.IsFinalLevel())

	// at the final level only Finalize may complete the request
	assert.Error(t, req.Advance())
	assert.Equal(t, 3, req.CurrentLevel)
	assert.True(t, req.CurrentLevel >= 1 && req.CurrentLevel <= req.TotalLevels)
}

func TestRequestFinalize(t *testing.T) {
	reviewer := uuid.New()
	now := time.Now()

	t.Run("finalizes at final level", func(t *testing.T) {
		req := newTestRequest(t, 1)
		require.NoError(t, req.Finalize(reviewer, now))
		assert.Equal(t, StatusApproved, req.Status)
		assert.Equal(t, reviewer, *req.ReviewerID)
		assert.Equal(t, now, *req.ReviewedAt)
	})

	t.Run("refuses below final level", func(t *testing.T) {
		req := newTestRequest(t, 2)
		assert.Error(t, req.Finalize(reviewer, now))
		assert.Equal(t, StatusPending, req.Status)
	})

	t.Run("finalizes exactly once", func(t *testing.T) {
		req := newTestRequest(t, 1)
		require.NoError(t, req.Finalize(reviewer, now))
		assert.Error(t, req.Finalize(reviewer, now))
		assert.Error(t, req.Reject(reviewer, now))
	})
}

func TestRequestReject(t *testing.T) {
	reviewer := uuid.New()
	now := time.Now()

	t.Run("final from any level", func(t *testing.T) {
		req := newTestRequest(t, 5)
		require.NoError(t, req.Reject(reviewer, now))
		assert.Equal(t, StatusRejected, req.Status)
		assert.Equal(t, 1, req.CurrentLevel)
	})

	t.Run("terminal requests stay rejected", func(t *testing.T) {
		req := newTestRequest(t, 5)
		require.NoError(t, req.Reject(reviewer, now))
		assert.Error(t, req.Advance())
		assert.Error(t, req.Finalize(reviewer, now))
	})
}

func TestRequestCancel(t *testing.T) {
	now := time.Now()

	t.Run("requester cancels pending request", func(t *testing.T) {
		req := newTestRequest(t, 2)
		require.NoError(t, req.Cancel(req.RequesterID, now))
		assert.Equal(t, StatusCancelled, req.Status)
	})

	t.Run("other actors cannot cancel", func(t *testing.T) {
		req := newTestRequest(t, 2)
		assert.Error(t, req.Cancel(uuid.New(), now))
		assert.Equal(t, StatusPending, req.Status)
	})

	t.Run("terminal request cannot be cancelled", func(t *testing.T) {
		req := newTestRequest(t, 1)
		require.NoError(t, req.Finalize(uuid.New(), now))
		assert.Error(t, req.Cancel(req.RequesterID, now))
	})
}

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusApproved.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
}

func TestAuthorityAllows(t *testing.T) {
	unlimited := UnlimitedAuthority()
	assert.True(t, unlimited.Allows(decimal.NewFromInt(1_000_000_000)))

	limited := LimitedAuthority(decimal.NewFromInt(500))
	assert.True(t, limited.Allows(decimal.NewFromInt(500)))
	assert.False(t, limited.Allows(decimal.NewFromFloat(500.01)))
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"EXPENSE", "JOURNAL_ENTRY", "INVOICE", "OTHER"} {
		k, err := ParseKind(s)
		require.NoError(t, err)
		assert.Equal(t, s, k.String())
	}
	_, err := ParseKind("BUDGET")
	assert.Error(t, err)
}
