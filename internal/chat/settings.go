package chat

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/acaibowlz/routine-bot/internal/domain"
)

func (e *Engine) handleUserSettings(ctx context.Context, sess *domain.Session, in Input) (Reply, error) {
	switch *sess.Step {
	case domain.StepSelectOption:
		if in.Text != OptReminderTime {
			return promptSettingsOption(), nil
		}
		u, err := e.repo.GetUser(ctx, sess.UserID)
		if err != nil {
			return Reply{}, fmt.Errorf("%w: user %s missing mid-chat: %v", ErrInvariant, sess.UserID, err)
		}
		err = e.advance(ctx, sess, domain.StepSelectNewSlot, func(p *domain.Payload) {
			p.CurrentSlot = u.NotificationHour
		})
		if err != nil {
			return Reply{}, err
		}
		return promptNewSlot(u.NotificationHour), nil

	case domain.StepSelectNewSlot:
		if in.Slot == nil {
			return promptNewSlot(sess.Payload.CurrentSlot), nil
		}
		// Reminders fire once per hour slot; anything off the hour cannot
		// be delivered.
		if in.Slot.Minute != 0 {
			return Reply{
				Kind: ReplyTimePicker,
				Text: "⏰ I only ring on the hour. Pick a time like 09:00.",
			}, nil
		}
		hour := in.Slot.Hour
		if err := e.repo.SetUserSlot(ctx, sess.UserID, hour); err != nil {
			return Reply{}, err
		}
		if err := e.finishSession(ctx, sess, domain.StatusCompleted); err != nil {
			return Reply{}, err
		}
		e.log.Info("reminder slot changed",
			zap.String("user_id", shortID(sess.UserID)),
			zap.Int("from", sess.Payload.CurrentSlot), zap.Int("to", hour))
		return textReply(fmt.Sprintf("⏰ Got it, I'll ring you at %02d:00 from now on.", hour)), nil
	}
	return e.invalidStep(sess)
}

func promptNewSlot(current int) Reply {
	return Reply{
		Kind: ReplyTimePicker,
		Text: fmt.Sprintf("⏰ You currently get reminders at %02d:00. When should I ring instead?", current),
	}
}
