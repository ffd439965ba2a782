package engine

import (
	"context"
	"fmt"

	bterrors "github.com/theheadmen/goTaskBot/internal/errors"
	"github.com/theheadmen/goTaskBot/internal/service"
)

// HandleDocument validates an uploaded artifact and files it as a pending
// task. Non-spreadsheet uploads are explained away without creating a record.
func (engine *Engine) HandleDocument(ctx context.Context, event DocumentEvent) error {
	eventsTotal.WithLabelValues("document").Inc()

	_, err := service.SubmitTaskLogic(ctx, engine.Storage,
		event.UserID, event.Username, event.FileName, event.MimeType, event.FileID)
	if err == bterrors.ErrNotSpreadsheet {
		engine.notify(engine.Notifier.SendText(event.UserID, "❌ Please upload only an .xlsx file."))
		return nil
	}
	if err != nil {
		return err
	}

	tasksSubmittedTotal.Inc()

	engine.notify(engine.Notifier.SendText(event.UserID,
		"✅ Your file was submitted, we are reviewing it."))
	engine.notify(engine.Notifier.SendText(engine.AdminID, fmt.Sprintf(
		"🆕 New task submission\n👤 User: %d (@%s)\n📄 File: %s",
		event.UserID, event.Username, event.FileName)))
	return nil
}

// decideTask mirrors the withdrawal decision's one-shot shape, minus any
// balance effect: accounting for approved tasks happens outside the engine.
func (engine *Engine) decideTask(ctx context.Context, event CallbackEvent, taskID uint, approve bool) error {
	task, err := service.ResolveTaskLogic(ctx, engine.Storage, taskID, approve)
	switch err {
	case nil:
	case bterrors.ErrRequestNotFound:
		engine.notify(engine.Notifier.AnswerCallback(event.CallbackID, "Task not found"))
		return nil
	case bterrors.ErrAlreadyProcessed:
		engine.notify(engine.Notifier.AnswerCallback(event.CallbackID, "Already processed"))
		return nil
	default:
		return err
	}

	tasksResolvedTotal.WithLabelValues(task.Status).Inc()

	if approve {
		engine.notify(engine.Notifier.SendText(task.UserID,
			"✅ Your Gmail was approved. Your report will be counted and your balance credited. Thank you!"))
	} else {
		engine.notify(engine.Notifier.SendText(task.UserID,
			"❌ Sorry, your Gmail was rejected."))
	}
	engine.notify(engine.Notifier.EditText(event.ChatID, event.MessageID,
		fmt.Sprintf("🗂️ Task #%d → %s", taskID, task.Status)))
	engine.notify(engine.Notifier.AnswerCallback(event.CallbackID, task.Status))
	return nil
}

// openTask forwards the stored artifact to the admin. It never touches the
// task status and may be repeated, before or after the decision.
func (engine *Engine) openTask(ctx context.Context, event CallbackEvent, taskID uint) error {
	fileID, err := service.TaskFileLogic(ctx, engine.Storage, taskID)
	if err == bterrors.ErrRequestNotFound {
		engine.notify(engine.Notifier.AnswerCallback(event.CallbackID, "File not found"))
		return nil
	}
	if err != nil {
		return err
	}
	engine.notify(engine.Notifier.SendDocument(engine.AdminID, fileID,
		fmt.Sprintf("🗂️ Task #%d file", taskID)))
	engine.notify(engine.Notifier.AnswerCallback(event.CallbackID, "File sent"))
	return nil
}

func (engine *Engine) listPendingTasks(ctx context.Context) error {
	views, err := service.PendingTasksLogic(ctx, engine.Storage)
	if err != nil {
		return err
	}
	if len(views) == 0 {
		engine.notify(engine.Notifier.SendText(engine.AdminID, "📭 No pending tasks."))
		return nil
	}
	for _, view := range views {
		username := view.Username
		if username == "" {
			username = "—"
		}
		text := fmt.Sprintf("🗂️ Task #%d\n👤 User: %d @%s\n💰 Balance: %d৳",
			view.ID, view.UserID, username, view.Balance)
		buttons := []InlineButton{
			{Label: "📥 Open File", Data: fmt.Sprintf("topen_%d", view.ID)},
			{Label: "✅ Approve", Data: fmt.Sprintf("tapprove_%d", view.ID)},
			{Label: "❌ Reject", Data: fmt.Sprintf("treject_%d", view.ID)},
		}
		engine.notify(engine.Notifier.SendInline(engine.AdminID, text, buttons))
	}
	return nil
}
