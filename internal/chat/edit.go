package chat

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/acaibowlz/routine-bot/internal/domain"
)

func (e *Engine) handleEditEvent(ctx context.Context, sess *domain.Session, in Input) (Reply, error) {
	switch *sess.Step {
	case domain.StepEnterName:
		ev, found, err := e.lookupEventByName(ctx, sess.UserID, in.Text)
		if err != nil {
			return Reply{}, err
		}
		if !found {
			return eventNotFoundReply(in.Text), nil
		}
		err = e.advance(ctx, sess, domain.StepSelectOption, func(p *domain.Payload) {
			p.EventID = ev.ID
			p.EventName = ev.Name
			p.ReminderEnabled = ev.ReminderEnabled
			p.HasCycle = ev.Cycle != nil
		})
		if err != nil {
			return Reply{}, err
		}
		return promptEditOption(ev.Name), nil

	case domain.StepSelectOption:
		return e.editSelectOption(ctx, sess, in.Text)
	case domain.StepEnterNewName:
		return e.editNewName(ctx, sess, in.Text)
	case domain.StepToggleReminder:
		return e.editToggleReminder(ctx, sess, in.Text)
	case domain.StepEnterNewCycle:
		return e.editNewCycle(ctx, sess, in.Text)
	}
	return e.invalidStep(sess)
}

func (e *Engine) editSelectOption(ctx context.Context, sess *domain.Session, text string) (Reply, error) {
	name := sess.Payload.EventName
	switch text {
	case OptEditName:
		if err := e.advance(ctx, sess, domain.StepEnterNewName, nil); err != nil {
			return Reply{}, err
		}
		return textReply(fmt.Sprintf("✏️ What should [%s] be called instead? (2–20 characters)", name)), nil

	case OptEditReminder:
		if err := e.advance(ctx, sess, domain.StepToggleReminder, nil); err != nil {
			return Reply{}, err
		}
		return promptToggleReminder(name, sess.Payload.ReminderEnabled), nil

	case OptEditCycle:
		// Changing the cycle of a silent event would do nothing visible.
		// Keep the user on this step and explain.
		if !sess.Payload.ReminderEnabled {
			return promptReply(
				fmt.Sprintf("🔕 [%s] has reminders off, so there's no cycle to change. Turn the reminder on first.", name),
				OptEditName, OptEditReminder, OptEditCycle,
			), nil
		}
		if err := e.advance(ctx, sess, domain.StepEnterNewCycle, nil); err != nil {
			return Reply{}, err
		}
		return promptCycle(name), nil
	}
	return promptEditOption(name), nil
}

func (e *Engine) editNewName(ctx context.Context, sess *domain.Session, name string) (Reply, error) {
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
	ev, err := e.mustEvent(ctx, sess.Payload.EventID)
	if err != nil {
		return Reply{}, err
	}
	if err := e.repo.SetEventName(ctx, ev.ID, name); err != nil {
		return Reply{}, err
	}
	if err := e.patchPayload(ctx, sess, func(p *domain.Payload) { p.NewName = name }); err != nil {
		return Reply{}, err
	}
	if err := e.finishSession(ctx, sess, domain.StatusCompleted); err != nil {
		return Reply{}, err
	}
	e.log.Info("event renamed",
		zap.String("event_id", ev.ID),
		zap.String("from", ev.Name), zap.String("to", name))
	return textReply(fmt.Sprintf("✏️ [%s] is now called [%s].", ev.Name, name)), nil
}

func (e *Engine) editToggleReminder(ctx context.Context, sess *domain.Session, text string) (Reply, error) {
	switch text {
	case OptCancelToggle:
		if err := e.finishSession(ctx, sess, domain.StatusCompleted); err != nil {
			return Reply{}, err
		}
		return textReply(fmt.Sprintf("👌 [%s] stays as it is.", sess.Payload.EventName)), nil
	case OptConfirmToggle:
	default:
		return promptToggleReminder(sess.Payload.EventName, sess.Payload.ReminderEnabled), nil
	}

	ev, err := e.mustEvent(ctx, sess.Payload.EventID)
	if err != nil {
		return Reply{}, err
	}

	if ev.ReminderEnabled {
		if err := e.repo.SetEventReminder(ctx, ev.ID, false, nil); err != nil {
			return Reply{}, err
		}
		if err := e.finishSession(ctx, sess, domain.StatusCompleted); err != nil {
			return Reply{}, err
		}
		e.log.Info("reminder disabled", zap.String("event_id", ev.ID))
		return textReply(fmt.Sprintf("🔕 Reminders for [%s] are off. The cycle is kept for later.", ev.Name)), nil
	}

	if ev.Cycle == nil {
		// No cycle to resume with. Jump into the cycle sub-flow and remember
		// where we came from so the final step also flips the reminder on.
		err := e.advance(ctx, sess, domain.StepEnterNewCycle, func(p *domain.Payload) {
			p.FromToggle = true
		})
		if err != nil {
			return Reply{}, err
		}
		return promptCycle(ev.Name), nil
	}

	next := ev.Cycle.NextDue(ev.LastDoneAt)
	if err := e.repo.SetEventReminder(ctx, ev.ID, true, &next); err != nil {
		return Reply{}, err
	}
	if err := e.finishSession(ctx, sess, domain.StatusCompleted); err != nil {
		return Reply{}, err
	}
	e.log.Info("reminder enabled", zap.String("event_id", ev.ID))
	return cardReply("🔔 Reminders for ["+ev.Name+"] are back on!",
		"🔁 Cycle: "+ev.Cycle.String(),
		"🔔 Next reminder: "+formatDate(next)), nil
}

func (e *Engine) editNewCycle(ctx context.Context, sess *domain.Session, text string) (Reply, error) {
	if text == "example" {
		return cycleExampleReply(), nil
	}
	cycle, ok := domain.ParseCycle(text)
	if !ok {
		return invalidCycleReply(), nil
	}
	ev, err := e.mustEvent(ctx, sess.Payload.EventID)
	if err != nil {
		return Reply{}, err
	}

	next := cycle.NextDue(ev.LastDoneAt)
	if err := e.repo.SetEventCycle(ctx, ev.ID, cycle, next); err != nil {
		return Reply{}, err
	}
	if sess.Payload.FromToggle {
		if err := e.repo.SetEventReminder(ctx, ev.ID, true, &next); err != nil {
			return Reply{}, err
		}
	}
	if err := e.patchPayload(ctx, sess, func(p *domain.Payload) { p.Cycle = cycle.String() }); err != nil {
		return Reply{}, err
	}
	if err := e.finishSession(ctx, sess, domain.StatusCompleted); err != nil {
		return Reply{}, err
	}

	e.log.Info("cycle changed",
		zap.String("event_id", ev.ID),
		zap.String("cycle", cycle.String()),
		zap.Bool("via_toggle", sess.Payload.FromToggle))

	title := "🔁 [" + ev.Name + "] now repeats every " + cycleNoun(cycle) + "."
	if sess.Payload.FromToggle {
		title = "🔔 Reminders for [" + ev.Name + "] are on!"
	}
	return cardReply(title,
		"🔁 Cycle: "+cycle.String(),
		"🔔 Next reminder: "+formatDate(next)), nil
}

func cycleNoun(c domain.Cycle) string {
	if c.Count == 1 {
		return string(c.Unit)
	}
	return c.String()
}

func promptEditOption(name string) Reply {
	return promptReply(
		fmt.Sprintf("✏️ What do you want to change about [%s]?", name),
		OptEditName, OptEditReminder, OptEditCycle,
	)
}

func promptToggleReminder(name string, enabled bool) Reply {
	state := "off"
	if enabled {
		state = "on"
	}
	return promptReply(
		fmt.Sprintf("🔔 Reminders for [%s] are currently %s. Flip it?", name, state),
		OptConfirmToggle, OptCancelToggle,
	)
}
