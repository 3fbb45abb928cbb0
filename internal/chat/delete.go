package chat

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/acaibowlz/routine-bot/internal/domain"
	"github.com/acaibowlz/routine-bot/internal/store"
)

func (e *Engine) handleDeleteEvent(ctx context.Context, sess *domain.Session, in Input) (Reply, error) {
	switch *sess.Step {
	case domain.StepEnterName:
		ev, found, err := e.lookupEventByName(ctx, sess.UserID, in.Text)
		if err != nil {
			return Reply{}, err
		}
		if !found {
			return eventNotFoundReply(in.Text), nil
		}
		err = e.advance(ctx, sess, domain.StepConfirmDeletion, func(p *domain.Payload) {
			p.EventID = ev.ID
			p.EventName = ev.Name
		})
		if err != nil {
			return Reply{}, err
		}
		return promptConfirmDeletion(ev.Name), nil

	case domain.StepConfirmDeletion:
		switch in.Text {
		case OptConfirmDelete:
			return e.deleteEvent(ctx, sess)
		case OptCancelDelete:
			if err := e.finishSession(ctx, sess, domain.StatusCompleted); err != nil {
				return Reply{}, err
			}
			return textReply(fmt.Sprintf("👌 [%s] stays right where it is.", sess.Payload.EventName)), nil
		}
		return promptConfirmDeletion(sess.Payload.EventName), nil
	}
	return e.invalidStep(sess)
}

// deleteEvent cascades: completion history and shares go with the event, and
// the owner's event count is decremented.
func (e *Engine) deleteEvent(ctx context.Context, sess *domain.Session) (Reply, error) {
	if sess.Payload.EventID == "" {
		return Reply{}, fmt.Errorf("%w: delete payload missing event id", ErrInvariant)
	}
	ev, err := e.mustEvent(ctx, sess.Payload.EventID)
	if err != nil {
		return Reply{}, err
	}

	records, shares, err := e.repo.DeleteEventCascade(ctx, ev.ID, sess.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Reply{}, fmt.Errorf("%w: %v", ErrInvariant, err)
		}
		return Reply{}, err
	}
	if err := e.finishSession(ctx, sess, domain.StatusCompleted); err != nil {
		return Reply{}, err
	}

	e.log.Info("event deleted",
		zap.String("chat_id", sess.ID),
		zap.String("event_id", ev.ID),
		zap.Int64("records_removed", records),
		zap.Int64("shares_removed", shares))

	return textReply(fmt.Sprintf("🗑 [%s] is gone, along with its history.", ev.Name)), nil
}

func promptConfirmDeletion(name string) Reply {
	return promptReply(
		fmt.Sprintf("⚠️ Delete [%s]? Its history and shares go with it. This cannot be undone.", name),
		OptConfirmDelete, OptCancelDelete,
	)
}
