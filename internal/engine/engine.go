// Package engine advances the per-user conversation workflows and applies
// their ledger effects. It consumes typed events from the transport adapter
// and emits best-effort notifications; it never touches raw chat text or the
// wire protocol.
package engine

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/theheadmen/goTaskBot/internal/models"
	"github.com/theheadmen/goTaskBot/internal/service"
	"github.com/theheadmen/goTaskBot/internal/session"
)

const (
	supportGroupURL = "https://t.me/+f9tOe5fPe0Q0NGZl"
	taskGuideURL    = "https://t.me/taskincometoday/16"
)

// StartEvent is the first contact of an identity, optionally carrying a
// referrer identity token from a deep link.
type StartEvent struct {
	UserID   int64
	RefToken string
}

// TextEvent is a plain message. Intent is resolved at the transport boundary;
// IntentNone means free-form text for the active session.
type TextEvent struct {
	UserID int64
	Intent models.Intent
	Text   string
}

// DocumentEvent is an uploaded file artifact.
type DocumentEvent struct {
	UserID   int64
	Username string
	FileName string
	MimeType string
	FileID   string
}

// CallbackEvent is a structured decision token of the shape <verb>_<id>.
type CallbackEvent struct {
	UserID     int64
	ChatID     int64
	MessageID  int
	CallbackID string
	Data       string
}

// InlineButton is one decision control attached to a message.
type InlineButton struct {
	Label string
	Data  string
}

// Notifier is the outbound side of the transport. Every call is best-effort:
// the engine logs failures and moves on, a committed ledger mutation is never
// rolled back because a message didn't arrive.
type Notifier interface {
	SendText(userID int64, text string) error
	SendMenu(userID int64, text string, rows [][]string) error
	SendInline(userID int64, text string, buttons []InlineButton) error
	EditText(chatID int64, messageID int, text string) error
	SendDocument(userID int64, fileID, caption string) error
	AnswerCallback(callbackID, text string) error
}

type Engine struct {
	Storage  service.Storage
	Sessions *session.Store
	Notifier Notifier
	AdminID  int64
	BotName  string
}

func NewEngine(storage service.Storage, sessions *session.Store, notifier Notifier, adminID int64, botName string) *Engine {
	return &Engine{
		Storage:  storage,
		Sessions: sessions,
		Notifier: notifier,
		AdminID:  adminID,
		BotName:  botName,
	}
}

// notify logs and counts a delivery failure. Deliveries are fire-and-forget.
func (engine *Engine) notify(err error) {
	if err != nil {
		notifyFailuresTotal.Inc()
		log.Printf("notification delivery failed: %v\n", err)
	}
}

func (engine *Engine) isAdmin(userID int64) bool {
	return userID == engine.AdminID
}

// HandleStart upserts the user, attaches the referral when the token names
// another user, and shows the main menu.
func (engine *Engine) HandleStart(ctx context.Context, event StartEvent) error {
	eventsTotal.WithLabelValues("start").Inc()

	if err := engine.Storage.EnsureUser(ctx, event.UserID); err != nil {
		return err
	}

	if referrerID, err := strconv.ParseInt(event.RefToken, 10, 64); err == nil {
		attached, err := service.AttachReferralLogic(ctx, engine.Storage, event.UserID, referrerID)
		if err != nil {
			return err
		}
		if attached {
			engine.notify(engine.Notifier.SendText(referrerID,
				"🎉 Someone new joined via your referral!\nYou received a 1৳ bonus."))
		}
	}

	engine.sendMainMenu(event.UserID)
	return nil
}

// HandleText dispatches a text event: menu intents first, then the active
// session, so a stray menu press never corrupts wizard state.
func (engine *Engine) HandleText(ctx context.Context, event TextEvent) error {
	eventsTotal.WithLabelValues("text").Inc()

	switch event.Intent {
	case models.IntentBack:
		engine.Sessions.Clear(event.UserID)
		if engine.isAdmin(event.UserID) {
			engine.sendAdminMenu(event.UserID)
		} else {
			engine.sendMainMenu(event.UserID)
		}
		return nil
	case models.IntentBalance:
		return engine.showBalance(ctx, event.UserID)
	case models.IntentRefer:
		return engine.showReferral(ctx, event.UserID)
	case models.IntentWithdraw:
		engine.startWithdraw(event.UserID)
		return nil
	case models.IntentCreateTask:
		return engine.showTaskPrompt(ctx, event.UserID)
	case models.IntentSupport:
		engine.notify(engine.Notifier.SendText(event.UserID,
			"ℹ️ If you run into any problem, ask in the support group:\n👉 "+supportGroupURL))
		return nil
	case models.IntentAdminPanel:
		if !engine.isAdmin(event.UserID) {
			engine.notify(engine.Notifier.SendText(event.UserID, "❌ You are not an admin."))
			return nil
		}
		engine.sendAdminMenu(event.UserID)
		return nil
	}

	// The admin listings only react for the admin; for everyone else the
	// label is ordinary text and falls through to the active session.
	if engine.isAdmin(event.UserID) {
		switch event.Intent {
		case models.IntentRequests:
			return engine.listWithdrawals(ctx)
		case models.IntentUserList:
			return engine.listUsers(ctx)
		case models.IntentTaskQueue:
			return engine.listPendingTasks(ctx)
		}
	}

	if active := engine.Sessions.Get(event.UserID); active != nil && active.Withdraw != nil {
		return engine.advanceWithdraw(ctx, event, active.Withdraw)
	}

	if engine.isAdmin(event.UserID) {
		return engine.handleAdminText(ctx, event)
	}

	// Free text with no session and no intent: nothing to advance.
	return nil
}

func (engine *Engine) sendMainMenu(userID int64) {
	rows := [][]string{
		{models.LabelBalance, models.LabelRefer},
		{models.LabelWithdraw},
		{models.LabelCreateTask, models.LabelSupport},
	}
	engine.notify(engine.Notifier.SendMenu(userID, "👋 Pick an option from the menu:", rows))
}

func (engine *Engine) sendAdminMenu(userID int64) {
	rows := [][]string{
		{models.LabelAddBalance, models.LabelSetBalance},
		{models.LabelReduce, models.LabelRequests},
		{models.LabelUserList, models.LabelTaskQueue},
		{models.LabelSetPrice},
		{models.LabelBack},
	}
	engine.notify(engine.Notifier.SendMenu(userID, "🔐 Admin Panel:", rows))
}

func (engine *Engine) showBalance(ctx context.Context, userID int64) error {
	balance, err := service.BalanceLogic(ctx, engine.Storage, userID)
	if err != nil {
		return err
	}
	engine.notify(engine.Notifier.SendText(userID, fmt.Sprintf("💳 Your balance: %d৳", balance)))
	return nil
}

func (engine *Engine) showReferral(ctx context.Context, userID int64) error {
	stats, err := service.ReferralStatsLogic(ctx, engine.Storage, userID)
	if err != nil {
		return err
	}
	link := fmt.Sprintf("https://t.me/%s?start=%d", engine.BotName, userID)
	text := fmt.Sprintf(
		"🔗 Your referral link:\n%s\n\n"+
			"👥 Total referred: %d\n"+
			"💰 Earned from referrals: %d৳\n\n"+
			"✅ Rule: whenever a referred user's balance grows,\n"+
			"you get 3%% of the increase.\n\n"+
			"🔔 You also get 1৳ directly for every referral.",
		link, stats.RefCount, stats.RefEarn)
	engine.notify(engine.Notifier.SendText(userID, text))
	return nil
}

func (engine *Engine) showTaskPrompt(ctx context.Context, userID int64) error {
	price, err := service.TaskPriceLogic(ctx, engine.Storage)
	if err != nil {
		return err
	}
	engine.notify(engine.Notifier.SendText(userID, fmt.Sprintf(
		"💰 You earn %s৳ per Gmail 🎁\n📍 How to work: %s", price, taskGuideURL)))
	engine.notify(engine.Notifier.SendText(userID, "📂 Now upload your .xlsx file."))
	return nil
}
