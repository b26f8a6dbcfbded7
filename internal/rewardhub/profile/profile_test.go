package profile

import (
	"testing"

	"github.com/earningbd/rewardhub/internal/rewardhub/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore() *Store {
	return NewStore("EBD-TEST00001", "Earner", zap.NewNop())
}

func TestReward_NoTaskID(t *testing.T) {
	s := newTestStore()
	before := s.Snapshot()

	amounts := []int64{5, 10, 25}
	total := decimal.Zero
	for _, a := range amounts {
		_, err := s.Reward(decimal.NewFromInt(a), "")
		require.NoError(t, err)
		total = total.Add(decimal.NewFromInt(a))
	}

	after := s.Snapshot()
	assert.True(t, after.Balance.Equal(before.Balance.Add(total)),
		"balance should grow by the sum of rewards, got %s", after.Balance)
	assert.Equal(t, before.CompletedTasks, after.CompletedTasks)
	assert.Empty(t, after.CompletedTaskIDs)
}

func TestReward_WithTaskID(t *testing.T) {
	s := newTestStore()
	before := s.Snapshot()

	balance, err := s.Reward(decimal.NewFromInt(5), "task1")
	require.NoError(t, err)

	after := s.Snapshot()
	assert.True(t, balance.Equal(before.Balance.Add(decimal.NewFromInt(5))))
	assert.Equal(t, []string{"task1"}, after.CompletedTaskIDs)
	assert.Equal(t, before.CompletedTasks+1, after.CompletedTasks)
	assert.True(t, s.HasCompleted("task1"))
	assert.False(t, s.HasCompleted("task2"))
}

func TestReward_DuplicateTaskIsRejected(t *testing.T) {
	s := newTestStore()
	_, err := s.Reward(decimal.NewFromInt(5), "task1")
	require.NoError(t, err)
	before := s.Snapshot()

	_, err = s.Reward(decimal.NewFromInt(5), "task1")
	assert.ErrorIs(t, err, ErrTaskAlreadyCompleted)

	after := s.Snapshot()
	assert.True(t, after.Balance.Equal(before.Balance), "a duplicate reward must not credit")
	assert.Equal(t, before.CompletedTasks, after.CompletedTasks)
	assert.Equal(t, before.CompletedTaskIDs, after.CompletedTaskIDs)
}

func TestReward_NonPositiveAmount(t *testing.T) {
	s := newTestStore()
	before := s.Snapshot()

	_, err := s.Reward(decimal.Zero, "task1")
	assert.ErrorIs(t, err, ErrInvalidRewardAmount)
	_, err = s.Reward(decimal.NewFromInt(-3), "")
	assert.ErrorIs(t, err, ErrInvalidRewardAmount)

	after := s.Snapshot()
	assert.True(t, after.Balance.Equal(before.Balance))
	assert.False(t, s.HasCompleted("task1"))
}

func TestRequestWithdrawal(t *testing.T) {
	s := newTestStore()
	before := s.Snapshot()

	record, err := s.RequestWithdrawal(decimal.NewFromInt(50), "bkash", "017XXXXXXXX")
	require.NoError(t, err)

	assert.Regexp(t, `^W\d{4}$`, record.ID)
	assert.Equal(t, types.WithdrawalPending, record.Status)
	assert.Equal(t, "bkash", record.Method)
	assert.Equal(t, "017XXXXXXXX", record.Account)
	assert.True(t, record.Amount.Equal(decimal.NewFromInt(50)))

	after := s.Snapshot()
	assert.True(t, after.Balance.Equal(before.Balance.Sub(decimal.NewFromInt(50))))
	require.Len(t, after.WithdrawalHistory, 1)
	assert.Equal(t, record.ID, after.WithdrawalHistory[0].ID)
	require.NotNil(t, after.PendingWithdrawal)
	assert.True(t, after.PendingWithdrawal.Amount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, "bkash", after.PendingWithdrawal.Method)
}

func TestRequestWithdrawal_Validation(t *testing.T) {
	testCases := []struct {
		name     string
		amount   decimal.Decimal
		expected error
	}{
		{name: "zero amount", amount: decimal.Zero, expected: ErrInvalidWithdrawalAmount},
		{name: "negative amount", amount: decimal.NewFromInt(-10), expected: ErrInvalidWithdrawalAmount},
		{name: "over balance", amount: decimal.NewFromInt(151), expected: ErrInsufficientFunds},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestStore()
			before := s.Snapshot()

			_, err := s.RequestWithdrawal(tc.amount, "bkash", "017XXXXXXXX")
			assert.ErrorIs(t, err, tc.expected)

			after := s.Snapshot()
			assert.True(t, after.Balance.Equal(before.Balance), "a rejected withdrawal must not touch the balance")
			assert.Empty(t, after.WithdrawalHistory)
			assert.Nil(t, after.PendingWithdrawal)
		})
	}
}

func TestRequestWithdrawal_PendingLock(t *testing.T) {
	s := newTestStore()
	_, err := s.RequestWithdrawal(decimal.NewFromInt(50), "bkash", "017XXXXXXXX")
	require.NoError(t, err)

	_, err = s.RequestWithdrawal(decimal.NewFromInt(10), "nagad", "018XXXXXXXX")
	assert.ErrorIs(t, err, ErrWithdrawalPending)

	after := s.Snapshot()
	assert.Len(t, after.WithdrawalHistory, 1)

	s.ClearPendingWithdrawal()
	_, err = s.RequestWithdrawal(decimal.NewFromInt(10), "nagad", "018XXXXXXXX")
	assert.NoError(t, err)
}

func TestRequestWithdrawal_HistoryNewestFirst(t *testing.T) {
	s := newTestStore()
	first, err := s.RequestWithdrawal(decimal.NewFromInt(20), "bkash", "017XXXXXXXX")
	require.NoError(t, err)
	s.ClearPendingWithdrawal()
	second, err := s.RequestWithdrawal(decimal.NewFromInt(30), "nagad", "018XXXXXXXX")
	require.NoError(t, err)

	history := s.Snapshot().WithdrawalHistory
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)
}

func TestClearPendingWithdrawal(t *testing.T) {
	s := newTestStore()

	// clearing with nothing pending is fine
	s.ClearPendingWithdrawal()
	assert.Nil(t, s.Snapshot().PendingWithdrawal)

	_, err := s.RequestWithdrawal(decimal.NewFromInt(50), "bkash", "017XXXXXXXX")
	require.NoError(t, err)
	s.ClearPendingWithdrawal()

	after := s.Snapshot()
	assert.Nil(t, after.PendingWithdrawal)
	assert.Len(t, after.WithdrawalHistory, 1, "clearing the pending summary must not touch history")
}

func TestSettleWithdrawal(t *testing.T) {
	t.Run("completed keeps the deduction", func(t *testing.T) {
		s := newTestStore()
		record, err := s.RequestWithdrawal(decimal.NewFromInt(50), "bkash", "017XXXXXXXX")
		require.NoError(t, err)
		balanceAfterRequest := s.Snapshot().Balance

		settled, err := s.SettleWithdrawal(record.ID, types.WithdrawalCompleted)
		require.NoError(t, err)
		assert.Equal(t, types.WithdrawalCompleted, settled.Status)

		after := s.Snapshot()
		assert.True(t, after.Balance.Equal(balanceAfterRequest))
		assert.Nil(t, after.PendingWithdrawal)
		assert.Equal(t, types.WithdrawalCompleted, after.WithdrawalHistory[0].Status)
	})

	t.Run("failed refunds the amount", func(t *testing.T) {
		s := newTestStore()
		before := s.Snapshot().Balance
		record, err := s.RequestWithdrawal(decimal.NewFromInt(50), "bkash", "017XXXXXXXX")
		require.NoError(t, err)

		_, err = s.SettleWithdrawal(record.ID, types.WithdrawalFailed)
		require.NoError(t, err)

		after := s.Snapshot()
		assert.True(t, after.Balance.Equal(before), "a failed payout must roll the deduction back")
		assert.Nil(t, after.PendingWithdrawal)
		assert.Equal(t, types.WithdrawalFailed, after.WithdrawalHistory[0].Status)
	})

	t.Run("settling twice is rejected", func(t *testing.T) {
		s := newTestStore()
		record, err := s.RequestWithdrawal(decimal.NewFromInt(50), "bkash", "017XXXXXXXX")
		require.NoError(t, err)

		_, err = s.SettleWithdrawal(record.ID, types.WithdrawalCompleted)
		require.NoError(t, err)
		_, err = s.SettleWithdrawal(record.ID, types.WithdrawalFailed)
		assert.ErrorIs(t, err, ErrWithdrawalSettled)
	})

	t.Run("unknown id", func(t *testing.T) {
		s := newTestStore()
		_, err := s.SettleWithdrawal("W0000", types.WithdrawalCompleted)
		assert.ErrorIs(t, err, ErrWithdrawalNotFound)
	})

	t.Run("pending is not a settle status", func(t *testing.T) {
		s := newTestStore()
		record, err := s.RequestWithdrawal(decimal.NewFromInt(50), "bkash", "017XXXXXXXX")
		require.NoError(t, err)
		_, err = s.SettleWithdrawal(record.ID, types.WithdrawalPending)
		assert.ErrorIs(t, err, ErrInvalidSettleStatus)
	})
}

func TestAddReferral(t *testing.T) {
	s := newTestStore()
	before := s.Snapshot()

	balance, err := s.AddReferral(decimal.NewFromInt(10))
	require.NoError(t, err)

	after := s.Snapshot()
	assert.True(t, balance.Equal(before.Balance.Add(decimal.NewFromInt(10))))
	assert.Equal(t, before.ReferralCount+1, after.ReferralCount)
	assert.Equal(t, before.CompletedTasks, after.CompletedTasks, "a referral reward is not a task completion")
}

func TestReset(t *testing.T) {
	s := newTestStore()
	_, err := s.Reward(decimal.NewFromInt(100), "task1")
	require.NoError(t, err)
	_, err = s.RequestWithdrawal(decimal.NewFromInt(30), "bkash", "017XXXXXXXX")
	require.NoError(t, err)

	s.Reset("EBD-TEST00001", "Earner")

	after := s.Snapshot()
	assert.True(t, after.Balance.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, 5, after.CompletedTasks)
	assert.Empty(t, after.CompletedTaskIDs)
	assert.Empty(t, after.WithdrawalHistory)
	assert.Nil(t, after.PendingWithdrawal)
	assert.Equal(t, 1, after.Streak)
	assert.Regexp(t, `^REF-\d{4}$`, after.ReferralCode)
}

// The full wallet round trip: seed balance 150, one task reward, one
// withdrawal, clear the pending banner.
func TestEndToEndScenario(t *testing.T) {
	s := newTestStore()
	require.True(t, s.Snapshot().Balance.Equal(decimal.NewFromInt(150)))
	require.Equal(t, 5, s.Snapshot().CompletedTasks)

	balance, err := s.Reward(decimal.NewFromInt(5), "task1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(155)))
	assert.Equal(t, []string{"task1"}, s.Snapshot().CompletedTaskIDs)
	assert.Equal(t, 6, s.Snapshot().CompletedTasks)

	record, err := s.RequestWithdrawal(decimal.NewFromInt(50), "bkash", "01712345678")
	require.NoError(t, err)
	assert.True(t, s.Snapshot().Balance.Equal(decimal.NewFromInt(105)))
	require.Len(t, s.Snapshot().WithdrawalHistory, 1)
	assert.Equal(t, types.WithdrawalPending, record.Status)
	require.NotNil(t, s.Snapshot().PendingWithdrawal)

	s.ClearPendingWithdrawal()
	assert.Nil(t, s.Snapshot().PendingWithdrawal)
	assert.Len(t, s.Snapshot().WithdrawalHistory, 1)
}
