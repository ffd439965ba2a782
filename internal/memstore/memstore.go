// Package memstore is an in-memory ledger store. It backs runs without a
// database DSN and the engine unit tests; it offers no durability, matching
// the transient deployment the bot originally shipped with.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/theheadmen/goTaskBot/internal/dbconnector"
	bterrors "github.com/theheadmen/goTaskBot/internal/errors"
)

type MemStore struct {
	mu          sync.Mutex
	users       map[int64]*dbconnector.User
	withdrawals map[uint]*dbconnector.Withdrawal
	tasks       map[uint]*dbconnector.Task
	settings    map[string]string
	nextWID     uint
	nextTID     uint
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:       make(map[int64]*dbconnector.User),
		withdrawals: make(map[uint]*dbconnector.Withdrawal),
		tasks:       make(map[uint]*dbconnector.Task),
		settings:    map[string]string{dbconnector.TaskPriceKey: dbconnector.DefaultTaskPrice},
		nextWID:     1,
		nextTID:     1,
	}
}

// ensureUser returns the row for userID, creating it when absent.
// Caller must hold mu.
func (ms *MemStore) ensureUser(userID int64) *dbconnector.User {
	user, ok := ms.users[userID]
	if !ok {
		user = &dbconnector.User{UserID: userID}
		ms.users[userID] = user
	}
	return user
}

func (ms *MemStore) EnsureUser(_ context.Context, userID int64) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.ensureUser(userID)
	return nil
}

func (ms *MemStore) GetUserByUserID(_ context.Context, userID int64, user *dbconnector.User) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	stored, ok := ms.users[userID]
	if !ok {
		return bterrors.ErrUserNotFound
	}
	*user = *stored
	return nil
}

func (ms *MemStore) UpdateUser(_ context.Context, updUser *dbconnector.User) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	stored := ms.ensureUser(updUser.UserID)
	*stored = *updUser
	return nil
}

func (ms *MemStore) AttachReferralTransaction(_ context.Context, userID, referrerID int64) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	user := ms.ensureUser(userID)
	referrer := ms.ensureUser(referrerID)
	if user.ReferBy != nil {
		return false, nil
	}
	ref := referrerID
	user.ReferBy = &ref
	referrer.RefCount++
	referrer.RefEarn++
	referrer.Balance++
	return true, nil
}

func (ms *MemStore) IncreaseBalanceTransaction(_ context.Context, userID, delta, bonus int64) (int64, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	user := ms.ensureUser(userID)
	user.Balance += delta
	return ms.payBonus(user, bonus), nil
}

func (ms *MemStore) SetBalanceTransaction(_ context.Context, userID, newValue, bonus int64) (int64, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	user := ms.ensureUser(userID)
	user.Balance = newValue
	return ms.payBonus(user, bonus), nil
}

// payBonus mirrors the second row of the connector's balance transaction.
// Caller must hold mu.
func (ms *MemStore) payBonus(user *dbconnector.User, bonus int64) int64 {
	if user.ReferBy == nil || bonus <= 0 {
		return 0
	}
	referrer, ok := ms.users[*user.ReferBy]
	if !ok {
		return 0
	}
	referrer.Balance += bonus
	referrer.RefEarn += bonus
	return referrer.UserID
}

func (ms *MemStore) ReduceBalanceTransaction(_ context.Context, userID, amount int64) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.ensureUser(userID).Balance -= amount
	return nil
}

func (ms *MemStore) WithdrawHoldTransaction(_ context.Context, withdrawal *dbconnector.Withdrawal) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	user := ms.ensureUser(withdrawal.UserID)
	if user.Balance < withdrawal.Amount {
		return bterrors.ErrInsufficientFunds
	}
	withdrawal.ID = ms.nextWID
	ms.nextWID++
	stored := *withdrawal
	ms.withdrawals[withdrawal.ID] = &stored
	user.Balance -= withdrawal.Amount
	return nil
}

func (ms *MemStore) ResolveWithdrawalTransaction(_ context.Context, requestID uint, newStatus string, refund bool, withdrawal *dbconnector.Withdrawal) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	stored, ok := ms.withdrawals[requestID]
	if !ok {
		return bterrors.ErrRequestNotFound
	}
	if stored.Status != "Pending" {
		return bterrors.ErrAlreadyProcessed
	}
	stored.Status = newStatus
	if refund {
		ms.ensureUser(stored.UserID).Balance += stored.Amount
	}
	*withdrawal = *stored
	return nil
}

func (ms *MemStore) AddTask(_ context.Context, newTask *dbconnector.Task) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	newTask.ID = ms.nextTID
	ms.nextTID++
	stored := *newTask
	ms.tasks[newTask.ID] = &stored
	return nil
}

func (ms *MemStore) GetTaskByID(_ context.Context, taskID uint, task *dbconnector.Task) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	stored, ok := ms.tasks[taskID]
	if !ok {
		return bterrors.ErrRequestNotFound
	}
	*task = *stored
	return nil
}

func (ms *MemStore) ResolveTaskTransaction(_ context.Context, taskID uint, newStatus string, task *dbconnector.Task) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	stored, ok := ms.tasks[taskID]
	if !ok {
		return bterrors.ErrRequestNotFound
	}
	if stored.Status != "Pending" {
		return bterrors.ErrAlreadyProcessed
	}
	stored.Status = newStatus
	*task = *stored
	return nil
}

func (ms *MemStore) GetRecentWithdrawals(_ context.Context, limit int, withdrawals *[]dbconnector.Withdrawal) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	*withdrawals = (*withdrawals)[:0]
	for id := ms.nextWID; id > 0 && len(*withdrawals) < limit; id-- {
		if stored, ok := ms.withdrawals[id]; ok {
			*withdrawals = append(*withdrawals, *stored)
		}
	}
	return nil
}

func (ms *MemStore) GetPendingTasks(_ context.Context, limit int, tasks *[]dbconnector.Task) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	*tasks = (*tasks)[:0]
	for id := ms.nextTID; id > 0 && len(*tasks) < limit; id-- {
		if stored, ok := ms.tasks[id]; ok && stored.Status == "Pending" {
			*tasks = append(*tasks, *stored)
		}
	}
	return nil
}

func (ms *MemStore) CountUsers(_ context.Context) (int64, int64, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	var sum int64
	for _, user := range ms.users {
		sum += user.Balance
	}
	return int64(len(ms.users)), sum, nil
}

func (ms *MemStore) GetRecentUsers(_ context.Context, limit int, users *[]dbconnector.User) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ids := make([]int64, 0, len(ms.users))
	for id := range ms.users {
		ids = append(ids, id)
	}
	// newest external ids first, as the admin listing expects
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	*users = (*users)[:0]
	for _, id := range ids {
		if len(*users) >= limit {
			break
		}
		*users = append(*users, *ms.users[id])
	}
	return nil
}

func (ms *MemStore) GetSetting(_ context.Context, key string) (string, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.settings[key], nil
}

func (ms *MemStore) SetSetting(_ context.Context, key, value string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.settings[key] = value
	return nil
}
