package profile

import (
	"fmt"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/earningbd/rewardhub/internal/rewardhub/types"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrInvalidRewardAmount     = errors.New("reward amount must be positive")
	ErrTaskAlreadyCompleted    = errors.New("task already completed")
	ErrInvalidWithdrawalAmount = errors.New("invalid withdrawal amount")
	ErrInsufficientFunds       = errors.New("insufficient funds for withdrawal")
	ErrWithdrawalPending       = errors.New("another withdrawal is pending")
	ErrWithdrawalNotFound      = errors.New("withdrawal not found")
	ErrWithdrawalSettled       = errors.New("withdrawal already settled")
	ErrInvalidSettleStatus     = errors.New("settle status must be completed or failed")
)

// Seed values for a fresh profile.
var (
	seedBalance        = decimal.NewFromInt(150)
	seedCompletedTasks = 5
	seedStreak         = 1
)

const recordDateFormat = "02/01/2006"

// Store owns the one UserProfile of the running session. Every economic
// mutation goes through it and is validated before any state changes.
type Store struct {
	mu     sync.RWMutex
	user   types.UserProfile
	logger *zap.Logger
}

func NewStore(id, username string, logger *zap.Logger) *Store {
	s := &Store{logger: logger}
	s.user = seedProfile(id, username)
	return s
}

func seedProfile(id, username string) types.UserProfile {
	return types.UserProfile{
		ID:                id,
		Username:          username,
		Balance:           seedBalance,
		CompletedTasks:    seedCompletedTasks,
		CompletedTaskIDs:  []string{},
		Streak:            seedStreak,
		ReferralCode:      fmt.Sprintf("REF-%d", 1000+rand.Intn(9000)),
		ReferralCount:     0,
		WithdrawalHistory: []types.WithdrawalRecord{},
		Role:              types.RoleUser,
	}
}

// Reset discards all session-scoped earning state and reseeds the profile.
func (s *Store) Reset(id, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = seedProfile(id, username)
	s.logger.Info("profile reset", zap.String("user_id", id))
}

// Snapshot returns a deep copy safe to hand to read-only observers.
func (s *Store) Snapshot() types.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user := s.user
	user.CompletedTaskIDs = slices.Clone(s.user.CompletedTaskIDs)
	user.WithdrawalHistory = slices.Clone(s.user.WithdrawalHistory)
	if s.user.PendingWithdrawal != nil {
		pending := *s.user.PendingWithdrawal
		user.PendingWithdrawal = &pending
	}
	return user
}

// HasCompleted reports whether taskID has already been rewarded.
func (s *Store) HasCompleted(taskID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.user.CompletedTaskIDs, taskID)
}

// Reward credits amount to the balance. With a non-empty taskID the task is
// marked completed exactly once; a repeat is rejected without touching state.
// Returns the new balance.
func (s *Store) Reward(amount decimal.Decimal, taskID string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidRewardAmount
	}
	if taskID != "" && slices.Contains(s.user.CompletedTaskIDs, taskID) {
		return decimal.Zero, ErrTaskAlreadyCompleted
	}

	s.user.Balance = s.user.Balance.Add(amount)
	if taskID != "" {
		s.user.CompletedTaskIDs = append(s.user.CompletedTaskIDs, taskID)
		s.user.CompletedTasks++
	}
	s.logger.Info("reward applied",
		zap.String("task_id", taskID),
		zap.String("amount", amount.String()),
		zap.String("balance", s.user.Balance.String()))
	return s.user.Balance, nil
}

// AddReferral credits the referral reward and bumps the referral counter.
func (s *Store) AddReferral(reward decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if reward.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidRewardAmount
	}
	s.user.Balance = s.user.Balance.Add(reward)
	s.user.ReferralCount++
	s.logger.Info("referral added", zap.Int("referral_count", s.user.ReferralCount))
	return s.user.Balance, nil
}

// RequestWithdrawal validates the request, deducts the amount and records a
// pending withdrawal. At most one withdrawal may be pending at a time.
func (s *Store) RequestWithdrawal(amount decimal.Decimal, method, account string) (*types.WithdrawalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidWithdrawalAmount
	}
	if s.user.Balance.LessThan(amount) {
		return nil, ErrInsufficientFunds
	}
	if s.user.PendingWithdrawal != nil {
		return nil, ErrWithdrawalPending
	}

	record := types.WithdrawalRecord{
		ID:      fmt.Sprintf("W%d", 1000+rand.Intn(9000)),
		Amount:  amount,
		Method:  method,
		Account: account,
		Date:    time.Now().Format(recordDateFormat),
		Status:  types.WithdrawalPending,
	}
	s.user.Balance = s.user.Balance.Sub(amount)
	s.user.WithdrawalHistory = append([]types.WithdrawalRecord{record}, s.user.WithdrawalHistory...)
	s.user.PendingWithdrawal = &types.PendingWithdrawal{
		Amount: amount,
		Method: method,
		Date:   record.Date,
	}
	s.logger.Info("withdrawal requested",
		zap.String("withdrawal_id", record.ID),
		zap.String("amount", amount.String()),
		zap.String("method", method))
	return &record, nil
}

// ClearPendingWithdrawal drops the pending summary. History is untouched.
func (s *Store) ClearPendingWithdrawal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user.PendingWithdrawal = nil
}

// SettleWithdrawal moves a pending record to completed or failed. A failed
// settlement refunds the optimistic deduction. Settling is one-shot.
func (s *Store) SettleWithdrawal(id string, status types.WithdrawalStatus) (*types.WithdrawalRecord, error) {
	if status != types.WithdrawalCompleted && status != types.WithdrawalFailed {
		return nil, ErrInvalidSettleStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.user.WithdrawalHistory, func(w types.WithdrawalRecord) bool {
		return w.ID == id
	})
	if idx < 0 {
		return nil, ErrWithdrawalNotFound
	}
	record := &s.user.WithdrawalHistory[idx]
	if record.Status != types.WithdrawalPending {
		return nil, ErrWithdrawalSettled
	}

	record.Status = status
	if status == types.WithdrawalFailed {
		s.user.Balance = s.user.Balance.Add(record.Amount)
	}
	if s.user.PendingWithdrawal != nil && s.user.PendingWithdrawal.Date == record.Date &&
		s.user.PendingWithdrawal.Amount.Equal(record.Amount) {
		s.user.PendingWithdrawal = nil
	}
	s.logger.Info("withdrawal settled",
		zap.String("withdrawal_id", record.ID),
		zap.String("status", string(status)))
	settled := *record
	return &settled, nil
}
