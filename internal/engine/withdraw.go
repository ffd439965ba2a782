package engine

import (
	"context"
	"fmt"
	"strconv"

	bterrors "github.com/theheadmen/goTaskBot/internal/errors"
	"github.com/theheadmen/goTaskBot/internal/models"
	"github.com/theheadmen/goTaskBot/internal/service"
	"github.com/theheadmen/goTaskBot/internal/session"
)

func (engine *Engine) startWithdraw(userID int64) {
	engine.Sessions.StartWithdraw(userID)
	rows := [][]string{
		{models.LabelBkash, models.LabelNagad},
		{models.LabelBack},
	}
	engine.notify(engine.Notifier.SendMenu(userID, "💵 Which payment method do you want?", rows))
}

// advanceWithdraw feeds one event into the method → number → amount wizard.
// Invalid input re-prompts and leaves the session on the same step; only a
// successful amount entry ends the session, creating the held request.
func (engine *Engine) advanceWithdraw(ctx context.Context, event TextEvent, state *session.WithdrawState) error {
	userID := event.UserID

	switch state.Step {
	case session.StepMethod:
		switch event.Intent {
		case models.IntentPickBkash:
			state.Method = string(models.MethodBkash)
		case models.IntentPickNagad:
			state.Method = string(models.MethodNagad)
		default:
			engine.notify(engine.Notifier.SendText(userID, "❌ Pick Bkash/Nagad or press ⬅️ Back."))
			return nil
		}
		state.Step = session.StepNumber
		engine.notify(engine.Notifier.SendText(userID,
			fmt.Sprintf("📱 Enter your %s number:", state.Method)))
		return nil

	case session.StepNumber:
		// any non-empty text is accepted verbatim as the payout identifier
		state.Number = event.Text
		state.Step = session.StepAmount
		engine.notify(engine.Notifier.SendText(userID,
			fmt.Sprintf("💵 How much do you want to withdraw? (minimum %d৳)", service.MinWithdrawAmount)))
		return nil

	case session.StepAmount:
		amount, err := strconv.ParseInt(event.Text, 10, 64)
		if err != nil {
			engine.notify(engine.Notifier.SendText(userID, "❌ Enter the amount as a number."))
			return nil
		}

		withdrawal, err := service.WithdrawLogic(ctx, engine.Storage, userID,
			models.Method(state.Method), state.Number, amount)
		switch err {
		case nil:
		case bterrors.ErrBelowMinimum:
			engine.notify(engine.Notifier.SendText(userID,
				fmt.Sprintf("⚠️ Minimum withdraw is %d৳", service.MinWithdrawAmount)))
			return nil
		case bterrors.ErrInsufficientFunds:
			balance, balErr := service.BalanceLogic(ctx, engine.Storage, userID)
			if balErr != nil {
				return balErr
			}
			engine.notify(engine.Notifier.SendText(userID,
				fmt.Sprintf("❌ You don't have enough balance (current: %d৳)", balance)))
			return nil
		default:
			return err
		}

		engine.Sessions.Clear(userID)
		withdrawRequestsTotal.Inc()

		engine.notify(engine.Notifier.SendText(userID, fmt.Sprintf(
			"✅ Withdraw request submitted!\n💳 %s\n☎️ %s\n💵 %d৳",
			withdrawal.Method, withdrawal.Number, withdrawal.Amount)))
		engine.notify(engine.Notifier.SendText(engine.AdminID, fmt.Sprintf(
			"🔔 New withdraw request:\n👤 %d\n💳 %s (%s)\n💵 %d৳",
			userID, withdrawal.Method, withdrawal.Number, withdrawal.Amount)))
		return nil
	}

	return nil
}

// decideWithdrawal applies an admin approve/reject callback. Duplicate
// deliveries are answered with "already processed" and change nothing.
func (engine *Engine) decideWithdrawal(ctx context.Context, event CallbackEvent, requestID uint, approve bool) error {
	withdrawal, err := service.ResolveWithdrawalLogic(ctx, engine.Storage, requestID, approve)
	switch err {
	case nil:
	case bterrors.ErrRequestNotFound:
		engine.notify(engine.Notifier.AnswerCallback(event.CallbackID, "Request not found"))
		return nil
	case bterrors.ErrAlreadyProcessed:
		engine.notify(engine.Notifier.AnswerCallback(event.CallbackID, "Already processed"))
		return nil
	default:
		return err
	}

	withdrawResolvedTotal.WithLabelValues(withdrawal.Status).Inc()

	if approve {
		engine.notify(engine.Notifier.SendText(withdrawal.UserID,
			fmt.Sprintf("✅ Your withdraw request for %d৳ was approved!", withdrawal.Amount)))
		engine.notify(engine.Notifier.EditText(event.ChatID, event.MessageID,
			fmt.Sprintf("🆔 %d Withdraw Approved ✅", requestID)))
		engine.notify(engine.Notifier.AnswerCallback(event.CallbackID, "Approved ✅"))
	} else {
		engine.notify(engine.Notifier.SendText(withdrawal.UserID,
			fmt.Sprintf("❌ Your withdraw request for %d৳ was rejected. The amount was refunded.", withdrawal.Amount)))
		engine.notify(engine.Notifier.EditText(event.ChatID, event.MessageID,
			fmt.Sprintf("🆔 %d Withdraw Rejected ❌", requestID)))
		engine.notify(engine.Notifier.AnswerCallback(event.CallbackID, "Rejected ❌"))
	}
	return nil
}

// listWithdrawals sends the last requests to the admin, pending ones with
// inline decision controls.
func (engine *Engine) listWithdrawals(ctx context.Context) error {
	views, err := service.RecentWithdrawalsLogic(ctx, engine.Storage)
	if err != nil {
		return err
	}
	if len(views) == 0 {
		engine.notify(engine.Notifier.SendText(engine.AdminID, "📭 No requests found."))
		return nil
	}
	for _, view := range views {
		text := fmt.Sprintf("🆔 %d | 👤 %d\n💳 %s (%s)\n💵 %d৳ | 📌 %s",
			view.ID, view.UserID, view.Method, view.Number, view.Amount, view.Status)
		if view.Status == models.StatusPending {
			buttons := []InlineButton{
				{Label: "✅ Approve", Data: fmt.Sprintf("approve_%d", view.ID)},
				{Label: "❌ Reject", Data: fmt.Sprintf("reject_%d", view.ID)},
			}
			engine.notify(engine.Notifier.SendInline(engine.AdminID, text, buttons))
		} else {
			engine.notify(engine.Notifier.SendText(engine.AdminID, text))
		}
	}
	return nil
}
