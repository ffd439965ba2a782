package engine

import (
	"context"
	"strconv"
	"strings"
)

// HandleCallback routes a decision token of the shape <verb>_<id>. Only the
// administrator may decide; everyone else gets a short refusal and no state
// changes.
func (engine *Engine) HandleCallback(ctx context.Context, event CallbackEvent) error {
	eventsTotal.WithLabelValues("callback").Inc()

	if !engine.isAdmin(event.UserID) {
		engine.notify(engine.Notifier.AnswerCallback(event.CallbackID, "Not allowed"))
		return nil
	}

	verb, idPart, found := strings.Cut(event.Data, "_")
	if !found {
		engine.notify(engine.Notifier.AnswerCallback(event.CallbackID, "Bad request"))
		return nil
	}
	id, err := strconv.ParseUint(idPart, 10, 32)
	if err != nil {
		engine.notify(engine.Notifier.AnswerCallback(event.CallbackID, "Bad id"))
		return nil
	}

	switch verb {
	case "approve":
		return engine.decideWithdrawal(ctx, event, uint(id), true)
	case "reject":
		return engine.decideWithdrawal(ctx, event, uint(id), false)
	case "tapprove":
		return engine.decideTask(ctx, event, uint(id), true)
	case "treject":
		return engine.decideTask(ctx, event, uint(id), false)
	case "topen":
		return engine.openTask(ctx, event, uint(id))
	}

	engine.notify(engine.Notifier.AnswerCallback(event.CallbackID, "Bad request"))
	return nil
}
