package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/acaibowlz/routine-bot/internal/chat"
)

// renderReply turns an engine reply into a Telegram message. Prompt options
// become one-time reply keyboards; date and time pickers become inline
// keyboards whose callbacks the router decodes back into structured input.
func renderReply(chatID int64, r chat.Reply) tgbotapi.MessageConfig {
	switch r.Kind {
	case chat.ReplyPrompt:
		msg := tgbotapi.NewMessage(chatID, r.Text)
		msg.ReplyMarkup = optionsKeyboard(r.Options)
		return msg
	case chat.ReplyDatePicker:
		msg := tgbotapi.NewMessage(chatID, r.Text)
		msg.ReplyMarkup = dateKeyboard()
		return msg
	case chat.ReplyTimePicker:
		msg := tgbotapi.NewMessage(chatID, r.Text)
		msg.ReplyMarkup = slotKeyboard()
		return msg
	case chat.ReplyCard:
		return tgbotapi.NewMessage(chatID, renderCard(r))
	}
	return tgbotapi.NewMessage(chatID, r.Text)
}

func renderCard(r chat.Reply) string {
	if len(r.Lines) == 0 {
		return r.Title
	}
	return r.Title + "\n" + strings.Join(r.Lines, "\n")
}

func optionsKeyboard(options []string) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(options))
	for _, opt := range options {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(opt)))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.OneTimeKeyboard = true
	kb.ResizeKeyboard = true
	return kb
}

// dateKeyboard offers quick relative picks; the router resolves the offsets
// against the bot timezone. Any other date is typed as YYYY-MM-DD.
func dateKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Today", "date:0"),
			tgbotapi.NewInlineKeyboardButtonData("Yesterday", "date:-1"),
			tgbotapi.NewInlineKeyboardButtonData("2 days ago", "date:-2"),
		),
	)
}

// slotKeyboard lists all 24 on-the-hour slots, six per row.
func slotKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, 4)
	for h := 0; h < 24; h += 6 {
		row := make([]tgbotapi.InlineKeyboardButton, 0, 6)
		for i := h; i < h+6; i++ {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%02d:00", i), fmt.Sprintf("slot:%d", i)))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
