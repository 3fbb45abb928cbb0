package chat

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/acaibowlz/routine-bot/internal/domain"
)

func (e *Engine) handleShareEvent(ctx context.Context, sess *domain.Session, in Input) (Reply, error) {
	if *sess.Step != domain.StepEnterName {
		return e.invalidStep(sess)
	}
	ev, found, err := e.lookupEventByName(ctx, sess.UserID, in.Text)
	if err != nil {
		return Reply{}, err
	}
	if !found {
		return eventNotFoundReply(in.Text), nil
	}
	if !ev.ReminderEnabled || ev.Cycle == nil {
		if err := e.finishSession(ctx, sess, domain.StatusCompleted); err != nil {
			return Reply{}, err
		}
		return textReply(fmt.Sprintf(
			"🔕 [%s] has no reminder, so there's nothing to share. Give it a cycle first with %s.",
			ev.Name, CmdEdit)), nil
	}
	if ev.ShareCount >= domain.MaxShares {
		if err := e.finishSession(ctx, sess, domain.StatusCompleted); err != nil {
			return Reply{}, err
		}
		return textReply(fmt.Sprintf(
			"👥 [%s] is already shared with %d people, which is the most I allow.",
			ev.Name, domain.MaxShares)), nil
	}

	code := domain.EncodeShareCode(ev.ID)
	if err := e.patchPayload(ctx, sess, func(p *domain.Payload) {
		p.EventID = ev.ID
		p.ShareCode = code
	}); err != nil {
		return Reply{}, err
	}
	if err := e.finishSession(ctx, sess, domain.StatusCompleted); err != nil {
		return Reply{}, err
	}

	e.log.Info("share code issued",
		zap.String("chat_id", sess.ID), zap.String("event_id", ev.ID))

	return cardReply("👥 Share ["+ev.Name+"]",
		"Forward this code to the other person.",
		"They paste it after typing "+CmdReceive+":",
		code), nil
}
