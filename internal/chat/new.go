package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/acaibowlz/routine-bot/internal/domain"
	"github.com/acaibowlz/routine-bot/internal/store"
)

// startNewEvent refuses to open the flow for limited users; nothing is
// persisted in that case.
func (e *Engine) startNewEvent(ctx context.Context, userID string) (Reply, error) {
	u, err := e.repo.GetUser(ctx, userID)
	if err != nil {
		return Reply{}, fmt.Errorf("%w: user %s missing at command time: %v", ErrInvariant, userID, err)
	}
	if u.IsLimited(e.now()) {
		e.log.Info("new event refused: user limited", zap.String("user_id", userID))
		return textReply(msgLimitReached), nil
	}
	return e.startFlow(ctx, userID, domain.ChatNewEvent, domain.StepEnterName, promptNewName())
}

func (e *Engine) handleNewEvent(ctx context.Context, sess *domain.Session, in Input) (Reply, error) {
	switch *sess.Step {
	case domain.StepEnterName:
		return e.newEventName(ctx, sess, in.Text)
	case domain.StepSelectStartDate:
		if in.Date == nil {
			return promptStartDate(sess.Payload.EventName), nil
		}
		return e.newEventStartDate(ctx, sess, *in.Date)
	case domain.StepEnterReminderOption:
		return e.newEventReminderOption(ctx, sess, in.Text)
	case domain.StepEnterCycle:
		return e.newEventCycle(ctx, sess, in.Text)
	}
	return e.invalidStep(sess)
}

func (e *Engine) newEventName(ctx context.Context, sess *domain.Session, name string) (Reply, error) {
	if msg := domain.ValidateEventName(name); msg != "" {
		return invalidNameReply(msg), nil
	}
	taken, err := e.repo.EventNameTaken(ctx, sess.UserID, name)
	if err != nil {
		return Reply{}, err
	}
	if taken {
		return nameTakenReply(name), nil
	}
	err = e.advance(ctx, sess, domain.StepSelectStartDate, func(p *domain.Payload) {
		p.EventName = name
	})
	if err != nil {
		return Reply{}, err
	}
	return promptStartDate(name), nil
}

func (e *Engine) newEventStartDate(ctx context.Context, sess *domain.Session, date time.Time) (Reply, error) {
	if sess.Payload.EventName == "" {
		return Reply{}, fmt.Errorf("%w: new event payload missing name", ErrInvariant)
	}
	start := domain.Midnight(date, e.loc)
	if start.After(e.today()) {
		return invalidFutureDateReply(sess.Payload.EventName, "start"), nil
	}
	err := e.advance(ctx, sess, domain.StepEnterReminderOption, func(p *domain.Payload) {
		p.StartDate = start.Format(dateLayout)
	})
	if err != nil {
		return Reply{}, err
	}
	return promptReminderOption(sess.Payload.EventName), nil
}

func (e *Engine) newEventReminderOption(ctx context.Context, sess *domain.Session, text string) (Reply, error) {
	switch text {
	case OptEnableReminder:
		if err := e.advance(ctx, sess, domain.StepEnterCycle, nil); err != nil {
			return Reply{}, err
		}
		return promptCycle(sess.Payload.EventName), nil
	case OptNoReminder:
		return e.createEvent(ctx, sess, nil)
	}
	return promptReminderOption(sess.Payload.EventName), nil
}

func (e *Engine) newEventCycle(ctx context.Context, sess *domain.Session, text string) (Reply, error) {
	if text == "example" {
		return cycleExampleReply(), nil
	}
	cycle, ok := domain.ParseCycle(text)
	if !ok {
		return invalidCycleReply(), nil
	}
	return e.createEvent(ctx, sess, &cycle)
}

// createEvent is the terminal step of the flow: persist the event, seed its
// first completion record, and bump the owner's event count.
func (e *Engine) createEvent(ctx context.Context, sess *domain.Session, cycle *domain.Cycle) (Reply, error) {
	p := sess.Payload
	if p.EventName == "" || p.StartDate == "" {
		return Reply{}, fmt.Errorf("%w: new event payload incomplete: %+v", ErrInvariant, p)
	}
	start, err := time.ParseInLocation(dateLayout, p.StartDate, e.loc)
	if err != nil {
		return Reply{}, fmt.Errorf("%w: bad start date %q: %v", ErrInvariant, p.StartDate, err)
	}

	event := &domain.Event{
		ID:         newID(),
		UserID:     sess.UserID,
		Name:       p.EventName,
		LastDoneAt: start,
		IsActive:   true,
	}
	if cycle != nil {
		next := cycle.NextDue(start)
		event.ReminderEnabled = true
		event.Cycle = cycle
		event.NextDueAt = &next
	}
	seed := &domain.Record{
		ID:      newID(),
		EventID: event.ID,
		UserID:  sess.UserID,
		DoneAt:  start,
	}
	if err := e.repo.CreateEventWithSeed(ctx, event, seed); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Reply{}, fmt.Errorf("%w: %v", ErrInvariant, err)
		}
		return Reply{}, err
	}

	err = e.patchPayload(ctx, sess, func(p *domain.Payload) {
		p.EventID = event.ID
		if cycle != nil {
			p.Cycle = cycle.String()
		}
	})
	if err != nil {
		return Reply{}, err
	}
	if err := e.finishSession(ctx, sess, domain.StatusCompleted); err != nil {
		return Reply{}, err
	}

	e.log.Info("event created",
		zap.String("chat_id", sess.ID),
		zap.String("event_id", event.ID),
		zap.String("user_id", shortID(sess.UserID)),
		zap.String("name", event.Name),
		zap.Bool("reminder", event.ReminderEnabled))

	if event.NextDueAt != nil {
		return cardReply("🍞 ["+event.Name+"] is on the list!",
			"🗓 Started: "+p.StartDate,
			"🔁 Cycle: "+event.Cycle.String(),
			"🔔 Next reminder: "+formatDate(*event.NextDueAt)), nil
	}
	return cardReply("🍞 ["+event.Name+"] is on the list!",
		"🗓 Started: "+p.StartDate,
		"🔕 Reminders: off"), nil
}

func promptStartDate(name string) Reply {
	return Reply{
		Kind: ReplyDatePicker,
		Text: fmt.Sprintf("🗓 When did you last do [%s]? Pick or type a date (YYYY-MM-DD).", name),
	}
}

func promptReminderOption(name string) Reply {
	return promptReply(
		fmt.Sprintf("🔔 Should I remind you about [%s]?", name),
		OptEnableReminder, OptNoReminder,
	)
}

func promptCycle(name string) Reply {
	return textReply(fmt.Sprintf("🔁 How often does [%s] repeat? e.g. \"2 weeks\" (or type \"example\")", name))
}

func invalidFutureDateReply(name, what string) Reply {
	return Reply{
		Kind: ReplyDatePicker,
		Text: fmt.Sprintf("⚠️ The %s date for [%s] can't be in the future. Pick another one.", what, name),
	}
}
