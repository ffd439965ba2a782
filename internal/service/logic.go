package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theheadmen/goTaskBot/internal/dbconnector"
	bterrors "github.com/theheadmen/goTaskBot/internal/errors"
	"github.com/theheadmen/goTaskBot/internal/models"
)

const (
	// MinWithdrawAmount is the smallest payout a user may request.
	MinWithdrawAmount = 50

	// referral cascade rate: 3% of any balance increase, truncated.
	refBonusNumerator   = 3
	refBonusDenominator = 100

	xlsxMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ReferralBonus is the single cascade rule shared by every balance-increasing
// entry point except the flat join bonus.
func ReferralBonus(delta int64) int64 {
	if delta <= 0 {
		return 0
	}
	return delta * refBonusNumerator / refBonusDenominator
}

// CreditResult reports where a cascade bonus went, so the caller can notify
// the referrer. ReferrerID is 0 when no bonus was paid.
type CreditResult struct {
	ReferrerID int64
	Bonus      int64
}

func CreditLogic(ctx context.Context, storage Storage, userID, amount int64) (CreditResult, error) {
	if amount <= 0 {
		return CreditResult{}, bterrors.ErrInvalidAmount
	}
	bonus := ReferralBonus(amount)
	referrerID, err := storage.IncreaseBalanceTransaction(ctx, userID, amount, bonus)
	if err != nil || referrerID == 0 {
		return CreditResult{}, err
	}
	return CreditResult{ReferrerID: referrerID, Bonus: bonus}, nil
}

// SetBalanceLogic overwrites the balance. The cascade delta is measured
// against oldValue, the balance captured when the admin entered the target
// id, matching the wizard's observable behavior.
func SetBalanceLogic(ctx context.Context, storage Storage, userID, newValue, oldValue int64) (CreditResult, error) {
	bonus := ReferralBonus(newValue - oldValue)
	referrerID, err := storage.SetBalanceTransaction(ctx, userID, newValue, bonus)
	if err != nil || referrerID == 0 {
		return CreditResult{}, err
	}
	return CreditResult{ReferrerID: referrerID, Bonus: bonus}, nil
}

// ReduceLogic debits without a cascade; a decrease never pays anyone.
func ReduceLogic(ctx context.Context, storage Storage, userID, amount int64) error {
	return storage.ReduceBalanceTransaction(ctx, userID, amount)
}

// AttachReferralLogic is one-shot per user and rejects self-referrals.
// Returns true when the link was created and the referrer got the flat bonus.
func AttachReferralLogic(ctx context.Context, storage Storage, userID, referrerID int64) (bool, error) {
	if referrerID == userID {
		return false, nil
	}
	return storage.AttachReferralTransaction(ctx, userID, referrerID)
}

// WithdrawLogic validates and creates a held withdrawal request: the amount
// leaves the balance at creation time, in the same transaction as the insert.
func WithdrawLogic(ctx context.Context, storage Storage, userID int64, method models.Method, number string, amount int64) (*dbconnector.Withdrawal, error) {
	if amount < MinWithdrawAmount {
		return nil, bterrors.ErrBelowMinimum
	}
	withdrawal := dbconnector.Withdrawal{
		UserID: userID,
		Method: string(method),
		Number: number,
		Amount: amount,
		Status: string(models.StatusPending),
	}
	if err := storage.WithdrawHoldTransaction(ctx, &withdrawal); err != nil {
		return nil, err
	}
	return &withdrawal, nil
}

// ResolveWithdrawalLogic closes a pending request exactly once. Rejection
// refunds the held amount; approval keeps the debit (the payout happened
// outside the system).
func ResolveWithdrawalLogic(ctx context.Context, storage Storage, requestID uint, approve bool) (*dbconnector.Withdrawal, error) {
	newStatus := models.StatusRejected
	if approve {
		newStatus = models.StatusApproved
	}
	var withdrawal dbconnector.Withdrawal
	err := storage.ResolveWithdrawalTransaction(ctx, requestID, string(newStatus), !approve, &withdrawal)
	if err != nil {
		return nil, err
	}
	return &withdrawal, nil
}

// IsSpreadsheet gates task intake on the single accepted upload format.
func IsSpreadsheet(fileName, mimeType string) bool {
	if strings.HasSuffix(strings.ToLower(fileName), ".xlsx") {
		return true
	}
	return mimeType == xlsxMimeType
}

func SubmitTaskLogic(ctx context.Context, storage Storage, userID int64, username, fileName, mimeType, fileID string) (*dbconnector.Task, error) {
	if !IsSpreadsheet(fileName, mimeType) {
		return nil, bterrors.ErrNotSpreadsheet
	}
	task := dbconnector.Task{
		UserID:   userID,
		Username: username,
		FileID:   fileID,
		Status:   string(models.StatusPending),
	}
	if err := storage.AddTask(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func ResolveTaskLogic(ctx context.Context, storage Storage, taskID uint, approve bool) (*dbconnector.Task, error) {
	newStatus := models.StatusRejected
	if approve {
		newStatus = models.StatusApproved
	}
	var task dbconnector.Task
	if err := storage.ResolveTaskTransaction(ctx, taskID, string(newStatus), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// TaskFileLogic fetches the stored artifact reference without touching the
// task status, so the admin can reopen the file any number of times.
func TaskFileLogic(ctx context.Context, storage Storage, taskID uint) (string, error) {
	var task dbconnector.Task
	if err := storage.GetTaskByID(ctx, taskID, &task); err != nil {
		return "", err
	}
	return task.FileID, nil
}

func TaskPriceLogic(ctx context.Context, storage Storage) (string, error) {
	value, err := storage.GetSetting(ctx, dbconnector.TaskPriceKey)
	if err != nil {
		return "", err
	}
	if value == "" {
		value = dbconnector.DefaultTaskPrice
	}
	return value, nil
}

// SetTaskPriceLogic accepts any non-negative decimal and stores it as text,
// leaving the setting unchanged on bad input.
func SetTaskPriceLogic(ctx context.Context, storage Storage, raw string) (string, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return "", bterrors.ErrInvalidAmount
	}
	if price.IsNegative() {
		return "", bterrors.ErrNegativePrice
	}
	value := price.String()
	if err := storage.SetSetting(ctx, dbconnector.TaskPriceKey, value); err != nil {
		return "", err
	}
	return value, nil
}

// RecentWithdrawalsLogic backs the admin request listing (newest first).
func RecentWithdrawalsLogic(ctx context.Context, storage Storage) ([]models.WithdrawalView, error) {
	var withdrawals []dbconnector.Withdrawal
	if err := storage.GetRecentWithdrawals(ctx, 10, &withdrawals); err != nil {
		return nil, err
	}
	views := make([]models.WithdrawalView, len(withdrawals))
	for i, withdrawal := range withdrawals {
		views[i] = models.WithdrawalView{
			ID:     withdrawal.ID,
			UserID: withdrawal.UserID,
			Method: models.Method(withdrawal.Method),
			Number: withdrawal.Number,
			Amount: withdrawal.Amount,
			Status: models.Status(withdrawal.Status),
		}
	}
	return views, nil
}

// PendingTasksLogic backs the admin task queue, annotated with each
// submitter's current balance.
func PendingTasksLogic(ctx context.Context, storage Storage) ([]models.TaskView, error) {
	var tasks []dbconnector.Task
	if err := storage.GetPendingTasks(ctx, 15, &tasks); err != nil {
		return nil, err
	}
	views := make([]models.TaskView, len(tasks))
	for i, task := range tasks {
		views[i] = models.TaskView{
			ID:       task.ID,
			UserID:   task.UserID,
			Username: task.Username,
		}
		var user dbconnector.User
		err := storage.GetUserByUserID(ctx, task.UserID, &user)
		if err == nil {
			views[i].Balance = user.Balance
		} else if err != bterrors.ErrUserNotFound {
			return nil, err
		}
	}
	return views, nil
}

func UserListLogic(ctx context.Context, storage Storage) (*models.UserListView, error) {
	total, totalBalance, err := storage.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	var users []dbconnector.User
	if err := storage.GetRecentUsers(ctx, 20, &users); err != nil {
		return nil, err
	}
	view := models.UserListView{
		TotalUsers:   total,
		TotalBalance: totalBalance,
		Recent:       make([]models.UserView, len(users)),
	}
	for i, user := range users {
		view.Recent[i] = models.UserView{UserID: user.UserID, Balance: user.Balance}
	}
	return &view, nil
}

// ReferralStatsLogic backs the user-facing referral screen.
func ReferralStatsLogic(ctx context.Context, storage Storage, userID int64) (*models.ReferralView, error) {
	var user dbconnector.User
	err := storage.GetUserByUserID(ctx, userID, &user)
	if err == bterrors.ErrUserNotFound {
		return &models.ReferralView{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &models.ReferralView{RefCount: user.RefCount, RefEarn: user.RefEarn}, nil
}

// BalanceLogic reads a user's balance, treating an unknown user as zero.
func BalanceLogic(ctx context.Context, storage Storage, userID int64) (int64, error) {
	var user dbconnector.User
	err := storage.GetUserByUserID(ctx, userID, &user)
	if err == bterrors.ErrUserNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return user.Balance, nil
}
