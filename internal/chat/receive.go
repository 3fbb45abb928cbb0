package chat

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/acaibowlz/routine-bot/internal/domain"
	"github.com/acaibowlz/routine-bot/internal/store"
)

func invalidShareCodeReply() Reply {
	return textReply("🔑 That code doesn't match any shared event. Check it and try again, or /abort.")
}

// handleReceiveEvent redeems a share code. The code comes from user input,
// so every failure path here re-prompts instead of failing the request.
func (e *Engine) handleReceiveEvent(ctx context.Context, sess *domain.Session, in Input) (Reply, error) {
	if *sess.Step != domain.StepEnterCode {
		return e.invalidStep(sess)
	}

	code := strings.TrimSpace(in.Text)
	eventID, err := domain.DecodeShareCode(code)
	if err != nil {
		return invalidShareCodeReply(), nil
	}
	ev, err := e.repo.GetEvent(ctx, eventID)
	if errors.Is(err, store.ErrNotFound) {
		return invalidShareCodeReply(), nil
	}
	if err != nil {
		return Reply{}, err
	}
	if ev.UserID == sess.UserID {
		return textReply("🙃 That's your own event. Share codes are for other people."), nil
	}
	if !ev.ReminderEnabled || ev.Cycle == nil || ev.NextDueAt == nil {
		return invalidShareCodeReply(), nil
	}

	exists, err := e.repo.ShareExists(ctx, ev.ID, sess.UserID)
	if err != nil {
		return Reply{}, err
	}
	if exists {
		if err := e.finishSession(ctx, sess, domain.StatusCompleted); err != nil {
			return Reply{}, err
		}
		return textReply("👥 You're already receiving reminders for [" + ev.Name + "]."), nil
	}
	if ev.ShareCount >= domain.MaxShares {
		if err := e.finishSession(ctx, sess, domain.StatusCompleted); err != nil {
			return Reply{}, err
		}
		return textReply("👥 [" + ev.Name + "] has already been shared with as many people as I allow."), nil
	}

	if err := e.repo.AcceptShare(ctx, &domain.Share{
		ID:          newID(),
		EventID:     ev.ID,
		OwnerID:     ev.UserID,
		RecipientID: sess.UserID,
	}); err != nil {
		return Reply{}, err
	}
	if err := e.patchPayload(ctx, sess, func(p *domain.Payload) {
		p.EventID = ev.ID
		p.ShareCode = code
	}); err != nil {
		return Reply{}, err
	}
	if err := e.finishSession(ctx, sess, domain.StatusCompleted); err != nil {
		return Reply{}, err
	}

	owner, err := e.profiles.DisplayName(ctx, ev.UserID)
	if err != nil {
		e.log.Warn("owner display name unavailable",
			zap.String("user_id", ev.UserID), zap.Error(err))
		owner = "the owner"
	}

	e.log.Info("share accepted",
		zap.String("chat_id", sess.ID),
		zap.String("event_id", ev.ID),
		zap.String("recipient_id", shortID(sess.UserID)))

	return cardReply("👥 You're in on ["+ev.Name+"]!",
		"Shared by "+owner+".",
		"🔁 Cycle: "+ev.Cycle.String(),
		"🔔 Next reminder: "+formatDate(*ev.NextDueAt)), nil
}
