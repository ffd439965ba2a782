// Package session holds the transient per-user wizard state. A user has at
// most one active session across both wizard kinds; nothing here survives a
// restart.
package session

import "sync"

type WithdrawStep string

const (
	StepMethod WithdrawStep = "method"
	StepNumber WithdrawStep = "number"
	StepAmount WithdrawStep = "amount"
)

type AdminAction string

const (
	ActionAdd      AdminAction = "add"
	ActionSet      AdminAction = "set"
	ActionReduce   AdminAction = "reduce"
	ActionSetPrice AdminAction = "set_task_price"
)

type AdminStep string

const (
	StepUserID      AdminStep = "userid"
	StepAdminAmount AdminStep = "amount"
)

// WithdrawState accumulates the wizard's answers step by step.
type WithdrawState struct {
	Step   WithdrawStep
	Method string
	Number string
}

// AdminState drives the four admin wizards sharing the userid → amount shape.
// OldBalance is only meaningful for ActionSet, captured when the target id
// was entered.
type AdminState struct {
	Action     AdminAction
	Step       AdminStep
	TargetID   int64
	OldBalance int64
}

// Session is a tagged variant: exactly one of Withdraw or Admin is non-nil.
type Session struct {
	Withdraw *WithdrawState
	Admin    *AdminState
}

// Store keeps sessions keyed by user identity. Events for different users
// never contend on the same entry, but the map itself is shared.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[int64]*Session)}
}

// Get returns the active session for userID, or nil.
func (store *Store) Get(userID int64) *Session {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.sessions[userID]
}

// StartWithdraw replaces any active session with a fresh withdraw wizard.
func (store *Store) StartWithdraw(userID int64) *Session {
	store.mu.Lock()
	defer store.mu.Unlock()
	session := &Session{Withdraw: &WithdrawState{Step: StepMethod}}
	store.sessions[userID] = session
	return session
}

// StartAdmin replaces any active session with a fresh admin wizard.
func (store *Store) StartAdmin(userID int64, action AdminAction, step AdminStep) *Session {
	store.mu.Lock()
	defer store.mu.Unlock()
	session := &Session{Admin: &AdminState{Action: action, Step: step}}
	store.sessions[userID] = session
	return session
}

// Clear drops the active session, if any. Cancelling a wizard never needs
// ledger compensation: no mutation happens before a wizard's final step.
func (store *Store) Clear(userID int64) {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.sessions, userID)
}
