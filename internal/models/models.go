package models

// Status of a withdrawal request or a task submission. Pending is the only
// state a decision can move out of.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// Method is a payout channel for withdrawals.
type Method string

const (
	MethodBkash Method = "Bkash"
	MethodNagad Method = "Nagad"
)

// Intent is a typed chat command, resolved from menu labels once at the
// transport boundary. The engine never matches raw label text.
type Intent string

const (
	IntentNone       Intent = ""
	IntentBalance    Intent = "balance"
	IntentRefer      Intent = "refer"
	IntentWithdraw   Intent = "withdraw"
	IntentCreateTask Intent = "create_task"
	IntentSupport    Intent = "support"
	IntentBack       Intent = "back"
	IntentAdminPanel Intent = "admin_panel"
	IntentAddBalance Intent = "add_balance"
	IntentSetBalance Intent = "set_balance"
	IntentReduce     Intent = "reduce_balance"
	IntentRequests   Intent = "all_requests"
	IntentUserList   Intent = "user_list"
	IntentTaskQueue  Intent = "task_requests"
	IntentSetPrice   Intent = "set_task_price"
	IntentPickBkash  Intent = "pick_bkash"
	IntentPickNagad  Intent = "pick_nagad"
)

// WithdrawalView is a row of the admin request listing.
type WithdrawalView struct {
	ID     uint
	UserID int64
	Method Method
	Number string
	Amount int64
	Status Status
}

// TaskView is a row of the admin pending-task listing, carrying the
// submitter's current balance for context.
type TaskView struct {
	ID       uint
	UserID   int64
	Username string
	Balance  int64
}

// UserListView summarizes the user table for the admin panel.
type UserListView struct {
	TotalUsers   int64
	TotalBalance int64
	Recent       []UserView
}

type UserView struct {
	UserID  int64
	Balance int64
}

// ReferralView backs the referral screen of a single user.
type ReferralView struct {
	RefCount int64
	RefEarn  int64
}
