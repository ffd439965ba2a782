package dbconnector

import (
	"context"
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bterrors "github.com/theheadmen/goTaskBot/internal/errors"
)

const (
	TaskPriceKey     = "task_price"
	DefaultTaskPrice = "7"
)

type DBConnector struct {
	DB *gorm.DB
}

func OpenDBConnect(dsn string) (*DBConnector, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	return &DBConnector{DB: db}, err
}

// DBInitialize migrates the schema and seeds the default task price if the
// settings table doesn't carry one yet.
func (dbConnector *DBConnector) DBInitialize() error {
	err := dbConnector.DB.AutoMigrate(&User{}, &Withdrawal{}, &Task{}, &Setting{})
	if err != nil {
		return err
	}
	result := dbConnector.DB.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&Setting{Key: TaskPriceKey, Value: DefaultTaskPrice})
	return result.Error
}

func (dbConnector *DBConnector) EnsureUser(ctx context.Context, userID int64) error {
	var user User
	result := dbConnector.DB.WithContext(ctx).Where(User{UserID: userID}).FirstOrCreate(&user)
	return result.Error
}

func (dbConnector *DBConnector) GetUserByUserID(ctx context.Context, userID int64, user *User) error {
	result := dbConnector.DB.WithContext(ctx).First(user, "user_id = ?", userID)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return bterrors.ErrUserNotFound
	}
	return result.Error
}

func (dbConnector *DBConnector) UpdateUser(ctx context.Context, updUser *User) error {
	result := dbConnector.DB.WithContext(ctx).Save(updUser)
	return result.Error
}

// AttachReferralTransaction links userID to referrerID once. Both rows are
// upserted first so a referral link can arrive before the referrer ever
// talked to the bot. Returns false without touching anything when the user
// already has a referrer. The flat 1-unit join bonus deliberately bypasses
// the percentage cascade.
func (dbConnector *DBConnector) AttachReferralTransaction(ctx context.Context, userID, referrerID int64) (bool, error) {
	tx := dbConnector.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return false, tx.Error
	}

	var user User
	if result := tx.Where(User{UserID: userID}).FirstOrCreate(&user); result.Error != nil {
		tx.Rollback()
		return false, result.Error
	}
	var referrer User
	if result := tx.Where(User{UserID: referrerID}).FirstOrCreate(&referrer); result.Error != nil {
		tx.Rollback()
		return false, result.Error
	}

	if user.ReferBy != nil {
		tx.Rollback()
		return false, nil
	}

	user.ReferBy = &referrerID
	if result := tx.Save(&user); result.Error != nil {
		tx.Rollback()
		return false, result.Error
	}

	referrer.RefCount++
	referrer.RefEarn++
	referrer.Balance++
	if result := tx.Save(&referrer); result.Error != nil {
		tx.Rollback()
		return false, result.Error
	}

	return true, tx.Commit().Error
}

// IncreaseBalanceTransaction credits delta to the user and, when the user has
// a referrer and bonus > 0, credits the referrer's balance and ref_earn in the
// same transaction. Returns the referrer id when the bonus was paid, 0 otherwise.
func (dbConnector *DBConnector) IncreaseBalanceTransaction(ctx context.Context, userID, delta, bonus int64) (int64, error) {
	return dbConnector.balanceTransaction(ctx, userID, bonus, func(user *User) {
		user.Balance += delta
	})
}

// SetBalanceTransaction overwrites the user's balance. The bonus is computed
// by the caller from the balance captured when the wizard started, not from
// the row read here.
func (dbConnector *DBConnector) SetBalanceTransaction(ctx context.Context, userID, newValue, bonus int64) (int64, error) {
	return dbConnector.balanceTransaction(ctx, userID, bonus, func(user *User) {
		user.Balance = newValue
	})
}

func (dbConnector *DBConnector) balanceTransaction(ctx context.Context, userID, bonus int64, mutate func(*User)) (int64, error) {
	tx := dbConnector.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return 0, tx.Error
	}

	var user User
	if result := tx.Where(User{UserID: userID}).FirstOrCreate(&user); result.Error != nil {
		tx.Rollback()
		return 0, result.Error
	}

	mutate(&user)
	if result := tx.Save(&user); result.Error != nil {
		tx.Rollback()
		return 0, result.Error
	}

	var paidTo int64
	if user.ReferBy != nil && bonus > 0 {
		var referrer User
		result := tx.First(&referrer, "user_id = ?", *user.ReferBy)
		if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			tx.Rollback()
			return 0, result.Error
		}
		if result.Error == nil {
			referrer.Balance += bonus
			referrer.RefEarn += bonus
			if result := tx.Save(&referrer); result.Error != nil {
				tx.Rollback()
				return 0, result.Error
			}
			paidTo = referrer.UserID
		}
	}

	return paidTo, tx.Commit().Error
}

// ReduceBalanceTransaction debits the user without any referral effect.
func (dbConnector *DBConnector) ReduceBalanceTransaction(ctx context.Context, userID, amount int64) error {
	result := dbConnector.DB.WithContext(ctx).Model(&User{}).
		Where("user_id = ?", userID).
		Update("balance", gorm.Expr("balance - ?", amount))
	return result.Error
}

// WithdrawHoldTransaction creates the pending request and debits the amount
// in one transaction, so the balance reflects the liability immediately.
func (dbConnector *DBConnector) WithdrawHoldTransaction(ctx context.Context, withdrawal *Withdrawal) error {
	tx := dbConnector.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var user User
	if result := tx.Where(User{UserID: withdrawal.UserID}).FirstOrCreate(&user); result.Error != nil {
		tx.Rollback()
		return result.Error
	}
	if user.Balance < withdrawal.Amount {
		tx.Rollback()
		return bterrors.ErrInsufficientFunds
	}

	if result := tx.Create(withdrawal); result.Error != nil {
		tx.Rollback()
		return result.Error
	}

	user.Balance -= withdrawal.Amount
	if result := tx.Save(&user); result.Error != nil {
		tx.Rollback()
		return result.Error
	}

	return tx.Commit().Error
}

// ResolveWithdrawalTransaction moves a pending request to a terminal status.
// Rejection refunds the held amount in the same transaction. A request that
// already left Pending reports ErrAlreadyProcessed and stays untouched.
func (dbConnector *DBConnector) ResolveWithdrawalTransaction(ctx context.Context, requestID uint, newStatus string, refund bool, withdrawal *Withdrawal) error {
	tx := dbConnector.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	result := tx.First(withdrawal, requestID)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		tx.Rollback()
		return bterrors.ErrRequestNotFound
	}
	if result.Error != nil {
		tx.Rollback()
		return result.Error
	}
	if withdrawal.Status != "Pending" {
		tx.Rollback()
		return bterrors.ErrAlreadyProcessed
	}

	withdrawal.Status = newStatus
	if result := tx.Save(withdrawal); result.Error != nil {
		tx.Rollback()
		return result.Error
	}

	if refund {
		result := tx.Model(&User{}).
			Where("user_id = ?", withdrawal.UserID).
			Update("balance", gorm.Expr("balance + ?", withdrawal.Amount))
		if result.Error != nil {
			tx.Rollback()
			return result.Error
		}
	}

	return tx.Commit().Error
}

func (dbConnector *DBConnector) AddTask(ctx context.Context, newTask *Task) error {
	result := dbConnector.DB.WithContext(ctx).Create(newTask)
	return result.Error
}

func (dbConnector *DBConnector) GetTaskByID(ctx context.Context, taskID uint, task *Task) error {
	result := dbConnector.DB.WithContext(ctx).First(task, taskID)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return bterrors.ErrRequestNotFound
	}
	return result.Error
}

// ResolveTaskTransaction is the withdrawal decision's one-shot shape without
// the refund leg: tasks never mutate balances.
func (dbConnector *DBConnector) ResolveTaskTransaction(ctx context.Context, taskID uint, newStatus string, task *Task) error {
	tx := dbConnector.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	result := tx.First(task, taskID)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		tx.Rollback()
		return bterrors.ErrRequestNotFound
	}
	if result.Error != nil {
		tx.Rollback()
		return result.Error
	}
	if task.Status != "Pending" {
		tx.Rollback()
		return bterrors.ErrAlreadyProcessed
	}

	task.Status = newStatus
	if result := tx.Save(task); result.Error != nil {
		tx.Rollback()
		return result.Error
	}

	return tx.Commit().Error
}

func (dbConnector *DBConnector) GetRecentWithdrawals(ctx context.Context, limit int, withdrawals *[]Withdrawal) error {
	result := dbConnector.DB.WithContext(ctx).Order("id desc").Limit(limit).Find(withdrawals)
	return result.Error
}

func (dbConnector *DBConnector) GetPendingTasks(ctx context.Context, limit int, tasks *[]Task) error {
	result := dbConnector.DB.WithContext(ctx).
		Where("status = ?", "Pending").
		Order("id desc").Limit(limit).Find(tasks)
	return result.Error
}

func (dbConnector *DBConnector) CountUsers(ctx context.Context) (int64, int64, error) {
	var total int64
	result := dbConnector.DB.WithContext(ctx).Model(&User{}).Count(&total)
	if result.Error != nil {
		return 0, 0, result.Error
	}
	var sum int64
	result = dbConnector.DB.WithContext(ctx).Model(&User{}).
		Select("COALESCE(SUM(balance), 0)").Scan(&sum)
	return total, sum, result.Error
}

func (dbConnector *DBConnector) GetRecentUsers(ctx context.Context, limit int, users *[]User) error {
	result := dbConnector.DB.WithContext(ctx).Order("user_id desc").Limit(limit).Find(users)
	return result.Error
}

func (dbConnector *DBConnector) GetSetting(ctx context.Context, key string) (string, error) {
	var setting Setting
	result := dbConnector.DB.WithContext(ctx).First(&setting, "key = ?", key)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if result.Error != nil {
		return "", result.Error
	}
	return setting.Value, nil
}

func (dbConnector *DBConnector) SetSetting(ctx context.Context, key, value string) error {
	result := dbConnector.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&Setting{Key: key, Value: value})
	return result.Error
}
