package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/acaibowlz/routine-bot/internal/domain"
	"github.com/acaibowlz/routine-bot/internal/store"
)

// lookupEventByName resolves a user-typed name. A miss is a user error, not
// a failure: found=false lets the caller re-prompt.
func (e *Engine) lookupEventByName(ctx context.Context, userID, name string) (*domain.Event, bool, error) {
	ev, err := e.repo.GetEventByName(ctx, userID, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return ev, true, nil
}

// mustEvent resolves an event id taken from session payload. Here a miss is
// an invariant violation: the id was written by an earlier step.
func (e *Engine) mustEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ev, err := e.repo.GetEvent(ctx, eventID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: event %s vanished mid-chat", ErrInvariant, eventID)
	}
	if err != nil {
		return nil, err
	}
	return ev, nil
}

func (e *Engine) handleFindEvent(ctx context.Context, sess *domain.Session, in Input) (Reply, error) {
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
	if err := e.finishSession(ctx, sess, domain.StatusCompleted); err != nil {
		return Reply{}, err
	}
	return e.eventCard(ctx, ev)
}

// eventCard renders the detail view shared by /find and flow summaries.
func (e *Engine) eventCard(ctx context.Context, ev *domain.Event) (Reply, error) {
	lines := []string{
		"🕰 Last done: " + formatDate(ev.LastDoneAt) + " (" + e.gapText(ev.LastDoneAt) + ")",
	}
	if ev.ReminderEnabled && ev.Cycle != nil && ev.NextDueAt != nil {
		lines = append(lines,
			"🔁 Cycle: "+ev.Cycle.String(),
			"🔔 Next reminder: "+formatDate(*ev.NextDueAt))
		if domain.IsOverdue(e.now(), *ev.NextDueAt) {
			lines = append(lines, "⏰ Overdue!")
		}
	} else {
		lines = append(lines, "🔕 Reminders: off")
	}
	if ev.ShareCount > 0 {
		lines = append(lines, fmt.Sprintf("👥 Shared with %d", ev.ShareCount))
	}
	recs, err := e.repo.ListRecentRecords(ctx, ev.ID, 3)
	if err != nil {
		return Reply{}, err
	}
	if len(recs) > 0 {
		lines = append(lines, "📜 Recent:")
		for _, r := range recs {
			lines = append(lines, "  • "+formatDate(r.DoneAt))
		}
	}
	return cardReply("🔍 ["+ev.Name+"]", lines...), nil
}

func (e *Engine) handleViewAll(ctx context.Context, userID string) (Reply, error) {
	events, err := e.repo.ListEventsByUser(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	if len(events) == 0 {
		return textReply("🪹 Nothing here yet. Type /new to track your first event."), nil
	}
	lines := make([]string, 0, len(events))
	for _, ev := range events {
		line := "• [" + ev.Name + "] done " + e.gapText(ev.LastDoneAt)
		if ev.ReminderEnabled && ev.NextDueAt != nil && domain.IsOverdue(e.now(), *ev.NextDueAt) {
			line += " ⏰"
		}
		lines = append(lines, line)
	}
	return cardReply(fmt.Sprintf("📋 Your events (%d)", len(events)), lines...), nil
}
