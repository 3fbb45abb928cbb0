package telegram

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/acaibowlz/routine-bot/internal/chat"
)

// BlockedFunc is called when the platform reports the bot was blocked by a
// user. The engine deactivates the user in response.
type BlockedFunc func(ctx context.Context, userID string) error

// Client sends chat replies through the Telegram Bot API. It implements
// scheduler.Sender.
type Client struct {
	bot     *tgbotapi.BotAPI
	log     *zap.Logger
	blocked BlockedFunc
}

func NewClient(bot *tgbotapi.BotAPI, log *zap.Logger) *Client {
	return &Client{bot: bot, log: log}
}

// OnBlocked registers the callback invoked when a push hits a blocked user.
func (c *Client) OnBlocked(fn BlockedFunc) { c.blocked = fn }

func chatIDFrom(userID string) (int64, error) {
	return strconv.ParseInt(userID, 10, 64)
}

func isBlockedErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "bot was blocked by the user")
}

// Send renders a chat reply and delivers it to the user.
func (c *Client) Send(ctx context.Context, userID string, r chat.Reply) error {
	chatID, err := chatIDFrom(userID)
	if err != nil {
		return err
	}
	msg := renderReply(chatID, r)
	if _, err := c.bot.Send(msg); err != nil {
		return c.checkBlocked(ctx, userID, err)
	}
	return nil
}

// PushCard sends an unprompted card.
func (c *Client) PushCard(userID, title string, lines []string) error {
	return c.Send(context.Background(), userID, chat.Reply{Kind: chat.ReplyCard, Title: title, Lines: lines})
}

func (c *Client) checkBlocked(ctx context.Context, userID string, err error) error {
	if !isBlockedErr(err) {
		return err
	}
	if c.blocked != nil {
		if herr := c.blocked(ctx, userID); herr != nil {
			c.log.Error("blocked handler failed",
				zap.String("user_id", userID), zap.Error(herr))
		}
	}
	return err
}

// FetchDisplayName looks up a user's visible name via the Bot API. Wrapped
// by profile.Cache so repeated renders don't hit the API.
func (c *Client) FetchDisplayName(ctx context.Context, userID string) (string, error) {
	chatID, err := chatIDFrom(userID)
	if err != nil {
		return "", err
	}
	info, err := c.bot.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(info.FirstName + " " + info.LastName)
	if name == "" {
		name = info.UserName
	}
	if name == "" {
		name = userID
	}
	return name, nil
}
