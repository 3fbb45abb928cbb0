package chat

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/acaibowlz/routine-bot/internal/domain"
)

func (e *Engine) handleDoneEvent(ctx context.Context, sess *domain.Session, in Input) (Reply, error) {
	switch *sess.Step {
	case domain.StepEnterName:
		ev, found, err := e.lookupEventByName(ctx, sess.UserID, in.Text)
		if err != nil {
			return Reply{}, err
		}
		if !found {
			return eventNotFoundReply(in.Text), nil
		}
		err = e.advance(ctx, sess, domain.StepSelectDoneDate, func(p *domain.Payload) {
			p.EventID = ev.ID
			p.EventName = ev.Name
		})
		if err != nil {
			return Reply{}, err
		}
		return promptDoneDate(ev.Name), nil

	case domain.StepSelectDoneDate:
		if in.Date == nil {
			return promptDoneDate(sess.Payload.EventName), nil
		}
		return e.markDone(ctx, sess, *in.Date)
	}
	return e.invalidStep(sess)
}

// markDone logs a completion. A completion later than the event's last one
// advances last_done_at and re-anchors the next due date one cycle after it;
// a back-dated completion only adds to the history and leaves the schedule
// alone.
func (e *Engine) markDone(ctx context.Context, sess *domain.Session, date time.Time) (Reply, error) {
	if sess.Payload.EventID == "" {
		return Reply{}, fmt.Errorf("%w: done payload missing event id", ErrInvariant)
	}
	ev, err := e.mustEvent(ctx, sess.Payload.EventID)
	if err != nil {
		return Reply{}, err
	}

	done := domain.Midnight(date, e.loc)
	if done.After(e.today()) {
		return invalidFutureDateReply(ev.Name, "completion"), nil
	}

	var nextDue *time.Time
	advances := done.After(ev.LastDoneAt)
	if advances {
		if ev.ReminderEnabled && ev.Cycle != nil {
			next := ev.Cycle.NextDue(done)
			nextDue = &next
		}
		if err := e.repo.SetEventLastDone(ctx, ev.ID, done, nextDue); err != nil {
			return Reply{}, err
		}
	}
	if err := e.repo.AddRecord(ctx, &domain.Record{
		ID:      newID(),
		EventID: ev.ID,
		UserID:  sess.UserID,
		DoneAt:  done,
	}); err != nil {
		return Reply{}, err
	}
	if err := e.finishSession(ctx, sess, domain.StatusCompleted); err != nil {
		return Reply{}, err
	}

	e.log.Info("event marked done",
		zap.String("chat_id", sess.ID),
		zap.String("event_id", ev.ID),
		zap.String("done_at", formatDate(done)),
		zap.Bool("advanced", advances))

	lines := []string{"🗓 Done on: " + formatDate(done)}
	if !advances {
		lines = append(lines, "📜 Logged as an earlier completion; the schedule is unchanged.")
	} else if nextDue != nil {
		lines = append(lines, "🔔 Next reminder: "+formatDate(*nextDue))
	}
	return cardReply("✅ ["+ev.Name+"] marked done!", lines...), nil
}

func promptDoneDate(name string) Reply {
	return Reply{
		Kind: ReplyDatePicker,
		Text: fmt.Sprintf("🗓 When did you do [%s]? Pick or type a date (YYYY-MM-DD).", name),
	}
}
