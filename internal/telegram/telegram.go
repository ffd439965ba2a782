// Package telegram adapts the chat transport to the engine: inbound updates
// become typed events, and the engine's Notifier calls become bot API sends.
package telegram

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/theheadmen/goTaskBot/internal/engine"
	"github.com/theheadmen/goTaskBot/internal/models"
)

type Transport struct {
	Bot *tgbotapi.BotAPI
}

func NewTransport(token string) (*Transport, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Transport{Bot: bot}, nil
}

func (transport *Transport) BotName() string {
	return transport.Bot.Self.UserName
}

// Run long-polls updates and feeds them to the engine one at a time, the
// single logical worker the session store is designed around.
func (transport *Transport) Run(ctx context.Context, eng *engine.Engine) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := transport.Bot.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			transport.Bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := transport.dispatch(ctx, eng, update); err != nil {
				log.Printf("event handling failed: %v\n", err)
			}
		}
	}
}

func (transport *Transport) dispatch(ctx context.Context, eng *engine.Engine, update tgbotapi.Update) error {
	if update.CallbackQuery != nil {
		callback := update.CallbackQuery
		event := engine.CallbackEvent{
			UserID:     callback.From.ID,
			CallbackID: callback.ID,
			Data:       callback.Data,
		}
		if callback.Message != nil {
			event.ChatID = callback.Message.Chat.ID
			event.MessageID = callback.Message.MessageID
		}
		return eng.HandleCallback(ctx, event)
	}

	message := update.Message
	if message == nil {
		return nil
	}
	userID := message.Chat.ID

	if message.Document != nil {
		username := ""
		if message.From != nil {
			username = message.From.UserName
		}
		return eng.HandleDocument(ctx, engine.DocumentEvent{
			UserID:   userID,
			Username: username,
			FileName: message.Document.FileName,
			MimeType: message.Document.MimeType,
			FileID:   message.Document.FileID,
		})
	}

	switch message.Command() {
	case "start":
		return eng.HandleStart(ctx, engine.StartEvent{
			UserID:   userID,
			RefToken: message.CommandArguments(),
		})
	case "admin":
		return eng.HandleText(ctx, engine.TextEvent{
			UserID: userID,
			Intent: models.IntentAdminPanel,
		})
	}

	return eng.HandleText(ctx, engine.TextEvent{
		UserID: userID,
		Intent: models.IntentForLabel(message.Text),
		Text:   message.Text,
	})
}

// SendText implements engine.Notifier.
func (transport *Transport) SendText(userID int64, text string) error {
	_, err := transport.Bot.Send(tgbotapi.NewMessage(userID, text))
	return err
}

func (transport *Transport) SendMenu(userID int64, text string, rows [][]string) error {
	keyboardRows := make([][]tgbotapi.KeyboardButton, len(rows))
	for i, row := range rows {
		buttons := make([]tgbotapi.KeyboardButton, len(row))
		for j, label := range row {
			buttons[j] = tgbotapi.NewKeyboardButton(label)
		}
		keyboardRows[i] = buttons
	}
	keyboard := tgbotapi.NewReplyKeyboard(keyboardRows...)
	keyboard.ResizeKeyboard = true

	message := tgbotapi.NewMessage(userID, text)
	message.ReplyMarkup = keyboard
	_, err := transport.Bot.Send(message)
	return err
}

func (transport *Transport) SendInline(userID int64, text string, buttons []engine.InlineButton) error {
	row := make([]tgbotapi.InlineKeyboardButton, len(buttons))
	for i, button := range buttons {
		row[i] = tgbotapi.NewInlineKeyboardButtonData(button.Label, button.Data)
	}
	message := tgbotapi.NewMessage(userID, text)
	message.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(row)
	_, err := transport.Bot.Send(message)
	return err
}

func (transport *Transport) EditText(chatID int64, messageID int, text string) error {
	_, err := transport.Bot.Send(tgbotapi.NewEditMessageText(chatID, messageID, text))
	return err
}

func (transport *Transport) SendDocument(userID int64, fileID, caption string) error {
	document := tgbotapi.NewDocument(userID, tgbotapi.FileID(fileID))
	document.Caption = caption
	_, err := transport.Bot.Send(document)
	return err
}

func (transport *Transport) AnswerCallback(callbackID, text string) error {
	_, err := transport.Bot.Request(tgbotapi.NewCallback(callbackID, text))
	return err
}
