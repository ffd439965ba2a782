package service

import (
	"context"

	"github.com/theheadmen/goTaskBot/internal/dbconnector"
)

// Storage is everything the engine needs from the ledger store. The gorm
// connector is the production implementation; memstore backs DSN-less runs
// and unit tests.
type Storage interface {
	EnsureUser(ctx context.Context, userID int64) error
	GetUserByUserID(ctx context.Context, userID int64, user *dbconnector.User) error
	UpdateUser(ctx context.Context, updUser *dbconnector.User) error
	AttachReferralTransaction(ctx context.Context, userID, referrerID int64) (bool, error)
	IncreaseBalanceTransaction(ctx context.Context, userID, delta, bonus int64) (int64, error)
	SetBalanceTransaction(ctx context.Context, userID, newValue, bonus int64) (int64, error)
	ReduceBalanceTransaction(ctx context.Context, userID, amount int64) error
	WithdrawHoldTransaction(ctx context.Context, withdrawal *dbconnector.Withdrawal) error
	ResolveWithdrawalTransaction(ctx context.Context, requestID uint, newStatus string, refund bool, withdrawal *dbconnector.Withdrawal) error
	AddTask(ctx context.Context, newTask *dbconnector.Task) error
	GetTaskByID(ctx context.Context, taskID uint, task *dbconnector.Task) error
	ResolveTaskTransaction(ctx context.Context, taskID uint, newStatus string, task *dbconnector.Task) error
	GetRecentWithdrawals(ctx context.Context, limit int, withdrawals *[]dbconnector.Withdrawal) error
	GetPendingTasks(ctx context.Context, limit int, tasks *[]dbconnector.Task) error
	CountUsers(ctx context.Context) (int64, int64, error)
	GetRecentUsers(ctx context.Context, limit int, users *[]dbconnector.User) error
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}
