package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theheadmen/goTaskBot/internal/dbconnector"
	bterrors "github.com/theheadmen/goTaskBot/internal/errors"
	"github.com/theheadmen/goTaskBot/internal/memstore"
	"github.com/theheadmen/goTaskBot/internal/models"
	"github.com/theheadmen/goTaskBot/internal/service"
)

func TestReferralBonus(t *testing.T) {
	testCases := []struct {
		name  string
		delta int64
		want  int64
	}{
		{"hundred pays three", 100, 3},
		{"truncates down", 133, 3},
		{"too small for a bonus", 33, 0},
		{"single unit", 1, 0},
		{"zero", 0, 0},
		{"decrease pays nothing", -500, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, service.ReferralBonus(tc.delta))
		})
	}
}

func TestIsSpreadsheet(t *testing.T) {
	assert.True(t, service.IsSpreadsheet("report.xlsx", ""))
	assert.True(t, service.IsSpreadsheet("REPORT.XLSX", ""))
	assert.True(t, service.IsSpreadsheet("noext", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"))
	assert.False(t, service.IsSpreadsheet("report.csv", "text/csv"))
	assert.False(t, service.IsSpreadsheet("report.xls", "application/vnd.ms-excel"))
	assert.False(t, service.IsSpreadsheet("", ""))
}

func TestAttachReferralIsOneShot(t *testing.T) {
	ctx := context.Background()
	storage := memstore.NewMemStore()

	attached, err := service.AttachReferralLogic(ctx, storage, 1, 2)
	require.NoError(t, err)
	assert.True(t, attached)

	// a second referrer is ignored
	attached, err = service.AttachReferralLogic(ctx, storage, 1, 3)
	require.NoError(t, err)
	assert.False(t, attached)

	var user dbconnector.User
	require.NoError(t, storage.GetUserByUserID(ctx, 1, &user))
	require.NotNil(t, user.ReferBy)
	assert.Equal(t, int64(2), *user.ReferBy)

	var referrer dbconnector.User
	require.NoError(t, storage.GetUserByUserID(ctx, 2, &referrer))
	assert.Equal(t, int64(1), referrer.RefCount)
	assert.Equal(t, int64(1), referrer.RefEarn)
	assert.Equal(t, int64(1), referrer.Balance)
}

func TestAttachReferralRejectsSelf(t *testing.T) {
	ctx := context.Background()
	storage := memstore.NewMemStore()

	attached, err := service.AttachReferralLogic(ctx, storage, 7, 7)
	require.NoError(t, err)
	assert.False(t, attached)
}

func TestCreditCascades(t *testing.T) {
	ctx := context.Background()
	storage := memstore.NewMemStore()
	_, err := service.AttachReferralLogic(ctx, storage, 1, 2)
	require.NoError(t, err)

	result, err := service.CreditLogic(ctx, storage, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.ReferrerID)
	assert.Equal(t, int64(3), result.Bonus)

	balance, err := service.BalanceLogic(ctx, storage, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance, "bonus is additive, not subtracted from the user")

	var referrer dbconnector.User
	require.NoError(t, storage.GetUserByUserID(ctx, 2, &referrer))
	assert.Equal(t, int64(1+3), referrer.Balance, "flat join bonus and cascade stack")
	assert.Equal(t, int64(1+3), referrer.RefEarn)
}

func TestCreditWithoutReferrer(t *testing.T) {
	ctx := context.Background()
	storage := memstore.NewMemStore()

	result, err := service.CreditLogic(ctx, storage, 1, 100)
	require.NoError(t, err)
	assert.Zero(t, result.ReferrerID)
}

func TestCreditRejectsNonPositive(t *testing.T) {
	ctx := context.Background()
	storage := memstore.NewMemStore()

	_, err := service.CreditLogic(ctx, storage, 1, 0)
	assert.ErrorIs(t, err, bterrors.ErrInvalidAmount)
	_, err = service.CreditLogic(ctx, storage, 1, -5)
	assert.ErrorIs(t, err, bterrors.ErrInvalidAmount)
}

func TestSetBalanceCascadesOnIncreaseOnly(t *testing.T) {
	ctx := context.Background()
	storage := memstore.NewMemStore()
	_, err := service.AttachReferralLogic(ctx, storage, 1, 2)
	require.NoError(t, err)

	result, err := service.SetBalanceLogic(ctx, storage, 1, 200, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(6), result.Bonus)

	// lowering the balance pays nothing
	result, err = service.SetBalanceLogic(ctx, storage, 1, 50, 200)
	require.NoError(t, err)
	assert.Zero(t, result.ReferrerID)

	balance, err := service.BalanceLogic(ctx, storage, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance)
}

func TestReduceNeverTouchesOtherUsers(t *testing.T) {
	ctx := context.Background()
	storage := memstore.NewMemStore()
	_, err := service.AttachReferralLogic(ctx, storage, 1, 2)
	require.NoError(t, err)
	_, err = service.CreditLogic(ctx, storage, 1, 100)
	require.NoError(t, err)

	var before dbconnector.User
	require.NoError(t, storage.GetUserByUserID(ctx, 2, &before))

	require.NoError(t, service.ReduceLogic(ctx, storage, 1, 60))

	balance, err := service.BalanceLogic(ctx, storage, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(40), balance)

	var after dbconnector.User
	require.NoError(t, storage.GetUserByUserID(ctx, 2, &after))
	assert.Equal(t, before.Balance, after.Balance)
	assert.Equal(t, before.RefEarn, after.RefEarn)
}

func TestWithdrawValidation(t *testing.T) {
	ctx := context.Background()
	storage := memstore.NewMemStore()
	_, err := service.CreditLogic(ctx, storage, 1, 100)
	require.NoError(t, err)

	_, err = service.WithdrawLogic(ctx, storage, 1, models.MethodBkash, "01700000000", 49)
	assert.ErrorIs(t, err, bterrors.ErrBelowMinimum)

	_, err = service.WithdrawLogic(ctx, storage, 1, models.MethodBkash, "01700000000", 101)
	assert.ErrorIs(t, err, bterrors.ErrInsufficientFunds)

	withdrawal, err := service.WithdrawLogic(ctx, storage, 1, models.MethodBkash, "01700000000", 50)
	require.NoError(t, err)
	assert.Equal(t, string(models.StatusPending), withdrawal.Status)

	balance, err := service.BalanceLogic(ctx, storage, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance, "amount is held at request time")
}

func TestResolveWithdrawalExactlyOnce(t *testing.T) {
	ctx := context.Background()
	storage := memstore.NewMemStore()
	_, err := service.CreditLogic(ctx, storage, 1, 100)
	require.NoError(t, err)
	withdrawal, err := service.WithdrawLogic(ctx, storage, 1, models.MethodNagad, "01800000000", 60)
	require.NoError(t, err)

	resolved, err := service.ResolveWithdrawalLogic(ctx, storage, withdrawal.ID, false)
	require.NoError(t, err)
	assert.Equal(t, string(models.StatusRejected), resolved.Status)

	balance, err := service.BalanceLogic(ctx, storage, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance, "rejection refunds the exact held amount")

	// duplicate decision delivery
	_, err = service.ResolveWithdrawalLogic(ctx, storage, withdrawal.ID, true)
	assert.ErrorIs(t, err, bterrors.ErrAlreadyProcessed)
	balance, err = service.BalanceLogic(ctx, storage, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance, "no double refund, no re-debit")

	_, err = service.ResolveWithdrawalLogic(ctx, storage, 9999, true)
	assert.ErrorIs(t, err, bterrors.ErrRequestNotFound)
}

func TestSubmitAndResolveTask(t *testing.T) {
	ctx := context.Background()
	storage := memstore.NewMemStore()

	_, err := service.SubmitTaskLogic(ctx, storage, 1, "alice", "data.csv", "text/csv", "file-1")
	assert.ErrorIs(t, err, bterrors.ErrNotSpreadsheet)

	task, err := service.SubmitTaskLogic(ctx, storage, 1, "alice", "data.xlsx", "", "file-1")
	require.NoError(t, err)
	assert.Equal(t, string(models.StatusPending), task.Status)

	views, err := service.PendingTasksLogic(ctx, storage)
	require.NoError(t, err)
	require.Len(t, views, 1)

	resolved, err := service.ResolveTaskLogic(ctx, storage, task.ID, true)
	require.NoError(t, err)
	assert.Equal(t, string(models.StatusApproved), resolved.Status)

	_, err = service.ResolveTaskLogic(ctx, storage, task.ID, false)
	assert.ErrorIs(t, err, bterrors.ErrAlreadyProcessed)

	// opening the file works regardless of terminal status
	fileID, err := service.TaskFileLogic(ctx, storage, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "file-1", fileID)
}

func TestTaskPriceSetting(t *testing.T) {
	ctx := context.Background()
	storage := memstore.NewMemStore()

	price, err := service.TaskPriceLogic(ctx, storage)
	require.NoError(t, err)
	assert.Equal(t, "7", price)

	_, err = service.SetTaskPriceLogic(ctx, storage, "abc")
	assert.ErrorIs(t, err, bterrors.ErrInvalidAmount)
	_, err = service.SetTaskPriceLogic(ctx, storage, "-3")
	assert.ErrorIs(t, err, bterrors.ErrNegativePrice)

	price, err = service.TaskPriceLogic(ctx, storage)
	require.NoError(t, err)
	assert.Equal(t, "7", price, "bad input leaves the setting unchanged")

	updated, err := service.SetTaskPriceLogic(ctx, storage, "8.5")
	require.NoError(t, err)
	assert.Equal(t, "8.5", updated)

	price, err = service.TaskPriceLogic(ctx, storage)
	require.NoError(t, err)
	assert.Equal(t, "8.5", price)
}

func TestUserListLogic(t *testing.T) {
	ctx := context.Background()
	storage := memstore.NewMemStore()
	_, err := service.CreditLogic(ctx, storage, 1, 10)
	require.NoError(t, err)
	_, err = service.CreditLogic(ctx, storage, 2, 20)
	require.NoError(t, err)

	view, err := service.UserListLogic(ctx, storage)
	require.NoError(t, err)
	assert.Equal(t, int64(2), view.TotalUsers)
	assert.Equal(t, int64(30), view.TotalBalance)
	require.Len(t, view.Recent, 2)
	assert.Equal(t, int64(2), view.Recent[0].UserID, "newest ids first")
}
