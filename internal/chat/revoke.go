package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/acaibowlz/routine-bot/internal/domain"
	"github.com/acaibowlz/routine-bot/internal/store"
)

func (e *Engine) handleRevokeEvent(ctx context.Context, sess *domain.Session, in Input) (Reply, error) {
	switch *sess.Step {
	case domain.StepEnterName:
		return e.revokePickEvent(ctx, sess, in.Text)
	case domain.StepSelectRecipient:
		return e.revokeRecipient(ctx, sess, in.Text)
	}
	return e.invalidStep(sess)
}

func (e *Engine) revokePickEvent(ctx context.Context, sess *domain.Session, name string) (Reply, error) {
	ev, found, err := e.lookupEventByName(ctx, sess.UserID, name)
	if err != nil {
		return Reply{}, err
	}
	if !found {
		return eventNotFoundReply(name), nil
	}

	recipientIDs, err := e.repo.ListRecipientsByEvent(ctx, ev.ID)
	if err != nil {
		return Reply{}, err
	}
	if len(recipientIDs) == 0 {
		if err := e.finishSession(ctx, sess, domain.StatusCompleted); err != nil {
			return Reply{}, err
		}
		return textReply(fmt.Sprintf("👥 [%s] isn't shared with anyone.", ev.Name)), nil
	}

	// Display names are buttons, so collisions must stay distinguishable.
	recipients := make(map[string]string, len(recipientIDs))
	for _, id := range recipientIDs {
		dn, err := e.profiles.DisplayName(ctx, id)
		if err != nil {
			e.log.Warn("recipient display name unavailable",
				zap.String("user_id", id), zap.Error(err))
			dn = "user " + shortID(id)
		}
		if _, dup := recipients[dn]; dup {
			dn = dn + " (" + shortID(id) + ")"
		}
		recipients[dn] = id
	}
	names := make([]string, 0, len(recipients))
	for dn := range recipients {
		names = append(names, dn)
	}
	sort.Strings(names)

	err = e.advance(ctx, sess, domain.StepSelectRecipient, func(p *domain.Payload) {
		p.EventID = ev.ID
		p.EventName = ev.Name
		p.Recipients = recipients
	})
	if err != nil {
		return Reply{}, err
	}
	return promptReply(
		fmt.Sprintf("🚫 Who should stop receiving [%s]?", ev.Name),
		names...,
	), nil
}

func (e *Engine) revokeRecipient(ctx context.Context, sess *domain.Session, displayName string) (Reply, error) {
	recipientID, ok := sess.Payload.Recipients[displayName]
	if !ok {
		names := make([]string, 0, len(sess.Payload.Recipients))
		for dn := range sess.Payload.Recipients {
			names = append(names, dn)
		}
		sort.Strings(names)
		return promptReply(
			fmt.Sprintf("🚫 Pick one of the people [%s] is shared with.", sess.Payload.EventName),
			names...,
		), nil
	}

	err := e.repo.RevokeShare(ctx, sess.Payload.EventID, recipientID)
	if errors.Is(err, store.ErrNotFound) {
		return Reply{}, fmt.Errorf("%w: share %s/%s vanished mid-chat",
			ErrInvariant, sess.Payload.EventID, recipientID)
	}
	if err != nil {
		return Reply{}, err
	}
	if err := e.finishSession(ctx, sess, domain.StatusCompleted); err != nil {
		return Reply{}, err
	}

	e.log.Info("share revoked",
		zap.String("chat_id", sess.ID),
		zap.String("event_id", sess.Payload.EventID),
		zap.String("recipient_id", shortID(recipientID)))

	return textReply(fmt.Sprintf("🚫 %s no longer gets reminders for [%s].",
		displayName, sess.Payload.EventName)), nil
}
