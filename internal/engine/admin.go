package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	bterrors "github.com/theheadmen/goTaskBot/internal/errors"
	"github.com/theheadmen/goTaskBot/internal/models"
	"github.com/theheadmen/goTaskBot/internal/service"
	"github.com/theheadmen/goTaskBot/internal/session"
)

// handleAdminText starts an admin wizard on a menu intent, otherwise feeds
// the text into the wizard already in progress.
func (engine *Engine) handleAdminText(ctx context.Context, event TextEvent) error {
	adminID := event.UserID

	switch event.Intent {
	case models.IntentAddBalance:
		engine.Sessions.StartAdmin(adminID, session.ActionAdd, session.StepUserID)
		engine.notify(engine.Notifier.SendText(adminID, "🎯 Enter the user's ID:"))
		return nil
	case models.IntentSetBalance:
		engine.Sessions.StartAdmin(adminID, session.ActionSet, session.StepUserID)
		engine.notify(engine.Notifier.SendText(adminID, "🎯 Enter the user's ID:"))
		return nil
	case models.IntentReduce:
		engine.Sessions.StartAdmin(adminID, session.ActionReduce, session.StepUserID)
		engine.notify(engine.Notifier.SendText(adminID, "🎯 Enter the user's ID:"))
		return nil
	case models.IntentSetPrice:
		engine.Sessions.StartAdmin(adminID, session.ActionSetPrice, session.StepAdminAmount)
		price, err := service.TaskPriceLogic(ctx, engine.Storage)
		if err != nil {
			return err
		}
		engine.notify(engine.Notifier.SendText(adminID,
			fmt.Sprintf("🛠️ Current task price is %s৳\nEnter the new price:", price)))
		return nil
	}

	if active := engine.Sessions.Get(adminID); active != nil && active.Admin != nil {
		return engine.advanceAdmin(ctx, event, active.Admin)
	}
	return nil
}

// advanceAdmin drives the four admin wizards. Malformed input at the userid
// step re-prompts; malformed input at the final step ends the wizard without
// a retry — the admin has to restart it deliberately.
func (engine *Engine) advanceAdmin(ctx context.Context, event TextEvent, state *session.AdminState) error {
	adminID := event.UserID
	text := strings.TrimSpace(event.Text)

	if state.Action == session.ActionSetPrice {
		defer engine.Sessions.Clear(adminID)
		price, err := service.SetTaskPriceLogic(ctx, engine.Storage, text)
		if err == bterrors.ErrInvalidAmount || err == bterrors.ErrNegativePrice {
			engine.notify(engine.Notifier.SendText(adminID, "❌ Enter a valid number. (example: 7)"))
			return nil
		}
		if err != nil {
			return err
		}
		engine.notify(engine.Notifier.SendText(adminID,
			fmt.Sprintf("✅ Task price is now %s৳.", price)))
		return nil
	}

	switch state.Step {
	case session.StepUserID:
		target, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			engine.notify(engine.Notifier.SendText(adminID, "❌ Enter a valid user ID."))
			return nil
		}
		state.TargetID = target
		state.Step = session.StepAdminAmount
		switch state.Action {
		case session.ActionAdd:
			engine.notify(engine.Notifier.SendText(adminID, "💵 How much to add?"))
		case session.ActionSet:
			balance, err := service.BalanceLogic(ctx, engine.Storage, target)
			if err != nil {
				return err
			}
			state.OldBalance = balance
			engine.notify(engine.Notifier.SendText(adminID,
				fmt.Sprintf("💵 What should the new balance be? (current %d৳)", balance)))
		case session.ActionReduce:
			engine.notify(engine.Notifier.SendText(adminID, "💵 How much to reduce?"))
		}
		return nil

	case session.StepAdminAmount:
		// terminal step: the session ends whether or not the input parses
		defer engine.Sessions.Clear(adminID)

		amount, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			engine.notify(engine.Notifier.SendText(adminID, "❌ Enter a valid number."))
			return nil
		}
		return engine.applyAdminAmount(ctx, adminID, state, amount)
	}

	return nil
}

func (engine *Engine) applyAdminAmount(ctx context.Context, adminID int64, state *session.AdminState, amount int64) error {
	target := state.TargetID

	switch state.Action {
	case session.ActionAdd:
		result, err := service.CreditLogic(ctx, engine.Storage, target, amount)
		if err == bterrors.ErrInvalidAmount {
			engine.notify(engine.Notifier.SendText(adminID, "❌ Enter a valid number."))
			return nil
		}
		if err != nil {
			return err
		}
		engine.notify(engine.Notifier.SendText(adminID,
			fmt.Sprintf("✅ Added %d৳ to %d's balance.", amount, target)))
		engine.notify(engine.Notifier.SendText(target,
			fmt.Sprintf("🎉 %d৳ was added to your balance.", amount)))
		engine.notifyReferralBonus(target, result)

	case session.ActionSet:
		result, err := service.SetBalanceLogic(ctx, engine.Storage, target, amount, state.OldBalance)
		if err != nil {
			return err
		}
		engine.notify(engine.Notifier.SendText(adminID,
			fmt.Sprintf("✅ %d's balance was set to %d৳.", target, amount)))
		engine.notify(engine.Notifier.SendText(target,
			fmt.Sprintf("⚠️ The admin set your balance to: %d৳", amount)))
		engine.notifyReferralBonus(target, result)

	case session.ActionReduce:
		if err := service.ReduceLogic(ctx, engine.Storage, target, amount); err != nil {
			return err
		}
		engine.notify(engine.Notifier.SendText(adminID,
			fmt.Sprintf("✅ Deducted %d৳ from %d's balance.", amount, target)))
		engine.notify(engine.Notifier.SendText(target,
			fmt.Sprintf("⚠️ %d৳ was deducted from your balance.", amount)))
	}
	return nil
}

// notifyReferralBonus tells a referrer about a cascade payout, when one
// happened.
func (engine *Engine) notifyReferralBonus(target int64, result service.CreditResult) {
	if result.ReferrerID == 0 {
		return
	}
	engine.notify(engine.Notifier.SendText(result.ReferrerID, fmt.Sprintf(
		"🎉 Your referral %d's balance increased. You received %d৳ (3%%)",
		target, result.Bonus)))
}

func (engine *Engine) listUsers(ctx context.Context) error {
	view, err := service.UserListLogic(ctx, engine.Storage)
	if err != nil {
		return err
	}

	text := fmt.Sprintf("👥 Total users: %d\n💰 Total balance: %d৳\n\n",
		view.TotalUsers, view.TotalBalance)
	if len(view.Recent) == 0 {
		text += "📭 No users yet."
	} else {
		text += "📌 Last 20 users:\n"
		for _, user := range view.Recent {
			text += fmt.Sprintf("🆔 %d | 💰 Balance: %d৳\n", user.UserID, user.Balance)
		}
	}
	engine.notify(engine.Notifier.SendText(engine.AdminID, text))
	return nil
}
