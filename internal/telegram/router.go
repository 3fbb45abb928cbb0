package telegram

import (
	"context"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/acaibowlz/routine-bot/internal/chat"
	"github.com/acaibowlz/routine-bot/internal/domain"
)

// Conversations is what the router needs from the chat engine.
type Conversations interface {
	HandleMessage(ctx context.Context, userID string, in chat.Input) (chat.Reply, error)
	HandleBlocked(ctx context.Context, userID string) error
}

const dateLayout = "2006-01-02"

// Router decodes Telegram updates into engine input and renders replies
// back. It holds no conversation state; sessions live in storage.
type Router struct {
	client *Client
	engine Conversations
	log    *zap.Logger
	loc    *time.Location
}

func NewRouter(client *Client, engine Conversations, log *zap.Logger, loc *time.Location) *Router {
	client.OnBlocked(engine.HandleBlocked)
	return &Router{client: client, engine: engine, log: log, loc: loc}
}

// HandleUpdate routes a single update. Group chats and non-text payloads
// are ignored; the bot is one-on-one only.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	switch {
	case upd.Message != nil && upd.Message.Chat.IsPrivate():
		msg := upd.Message
		userID := strconv.FormatInt(msg.Chat.ID, 10)
		r.dispatch(ctx, userID, r.decodeText(msg.Text))

	case upd.CallbackQuery != nil && upd.CallbackQuery.Message != nil:
		cb := upd.CallbackQuery
		// Answer first so the client stops its spinner even if handling fails.
		if _, err := r.client.bot.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			r.log.Warn("callback ack failed", zap.Error(err))
		}
		userID := strconv.FormatInt(cb.Message.Chat.ID, 10)
		r.dispatch(ctx, userID, r.decodeCallback(cb.Data))
	}
}

func (r *Router) dispatch(ctx context.Context, userID string, in chat.Input) {
	reply, err := r.engine.HandleMessage(ctx, userID, in)
	if err != nil {
		r.log.Error("message handling failed",
			zap.String("user_id", userID), zap.Error(err))
		reply = chat.Reply{Kind: chat.ReplyText, Text: "😵 Something went wrong on my side. Please try again."}
	}
	if err := r.client.Send(ctx, userID, reply); err != nil && !isBlockedErr(err) {
		r.log.Error("reply send failed",
			zap.String("user_id", userID), zap.Error(err))
	}
}

// decodeText turns a typed message into structured input where possible:
// a YYYY-MM-DD date or an HH:MM time slot. Everything else passes through
// as plain text for the engine to interpret.
func (r *Router) decodeText(text string) chat.Input {
	text = strings.TrimSpace(text)
	in := chat.Input{Text: text}

	if d, err := time.ParseInLocation(dateLayout, text, r.loc); err == nil {
		in.Date = &d
		return in
	}
	if t, err := time.Parse("15:04", text); err == nil {
		in.Slot = &chat.TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
		return in
	}
	return in
}

// decodeCallback resolves inline keyboard data: relative date offsets
// ("date:0", "date:-1") and hour slots ("slot:9"). Button presses from
// reply keyboards arrive as regular text and never reach here.
func (r *Router) decodeCallback(data string) chat.Input {
	in := chat.Input{Text: data}
	if off, ok := strings.CutPrefix(data, "date:"); ok {
		days, err := strconv.Atoi(off)
		if err != nil {
			return in
		}
		d := domain.Midnight(time.Now().In(r.loc), r.loc).AddDate(0, 0, days)
		in.Date = &d
		return in
	}
	if s, ok := strings.CutPrefix(data, "slot:"); ok {
		hour, err := strconv.Atoi(s)
		if err != nil || hour < 0 || hour > 23 {
			return in
		}
		in.Slot = &chat.TimeOfDay{Hour: hour}
		return in
	}
	return in
}
