package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/acaibowlz/routine-bot/internal/domain"
	"github.com/acaibowlz/routine-bot/internal/store"
)

// ErrInvariant marks conversation state that should be impossible: an
// unknown step for a known chat type, a payload missing a field an earlier
// step must have written, or an id-held row that no longer exists. These are
// programming errors, not user errors; callers log them and fail the request.
var ErrInvariant = errors.New("conversation invariant violated")

const dateLayout = "2006-01-02"

// ProfileResolver resolves a user id to a display name. Not authoritative
// for business logic; used only for share/revoke flows and reminder text.
type ProfileResolver interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

// Engine is the conversation state machine. Each inbound message reads the
// user's single ongoing session, dispatches to the step handler for the
// session's chat type, and writes the session back. The one-ongoing-session
// invariant itself is enforced by the storage layer.
type Engine struct {
	repo     store.Repo
	log      *zap.Logger
	loc      *time.Location
	profiles ProfileResolver
	now      func() time.Time
}

// New creates a conversation engine. loc is the bot's fixed timezone; all
// day-granularity arithmetic happens in it.
func New(repo store.Repo, log *zap.Logger, loc *time.Location, profiles ProfileResolver) *Engine {
	return &Engine{
		repo:     repo,
		log:      log,
		loc:      loc,
		profiles: profiles,
		now:      time.Now,
	}
}

func (e *Engine) today() time.Time {
	return domain.Midnight(e.now(), e.loc)
}

// gapText renders "3 weeks ago" style phrasing for a past date.
func (e *Engine) gapText(then time.Time) string {
	return domain.FormatGap(domain.VerbalGap(e.now(), then, e.loc))
}

// HandleMessage routes one inbound interaction: either a continuation of the
// user's ongoing session, or a command starting a new one.
func (e *Engine) HandleMessage(ctx context.Context, userID string, in Input) (Reply, error) {
	if err := e.ensureUser(ctx, userID); err != nil {
		return Reply{}, fmt.Errorf("ensure user: %w", err)
	}

	sess, err := e.repo.GetOngoingSession(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return e.handleCommand(ctx, userID, in.Text)
	}
	if err != nil {
		return Reply{}, err
	}

	if in.Text == CmdAbort {
		if err := e.finishSession(ctx, sess, domain.StatusAborted); err != nil {
			return Reply{}, err
		}
		e.log.Info("chat aborted",
			zap.String("chat_id", sess.ID), zap.String("chat_type", string(sess.Type)))
		return textReply(msgAborted), nil
	}

	return e.handleOngoing(ctx, sess, in)
}

func (e *Engine) handleCommand(ctx context.Context, userID, text string) (Reply, error) {
	switch text {
	case CmdAbort:
		return textReply(msgNothingToAbort), nil
	case CmdStart:
		return e.handleStart(ctx, userID)
	case CmdMenu:
		return menuReply(), nil
	case CmdHelp:
		return helpReply(), nil
	case CmdViewAll:
		return e.handleViewAll(ctx, userID)
	case CmdNew:
		return e.startNewEvent(ctx, userID)
	case CmdFind:
		return e.startFlow(ctx, userID, domain.ChatFindEvent, domain.StepEnterName, promptFindName())
	case CmdDone:
		return e.startFlow(ctx, userID, domain.ChatDoneEvent, domain.StepEnterName, promptDoneName())
	case CmdEdit:
		return e.startFlow(ctx, userID, domain.ChatEditEvent, domain.StepEnterName, promptEditName())
	case CmdDelete:
		return e.startFlow(ctx, userID, domain.ChatDeleteEvent, domain.StepEnterName, promptDeleteName())
	case CmdShare:
		return e.startFlow(ctx, userID, domain.ChatShareEvent, domain.StepEnterName, promptShareName())
	case CmdReceive:
		return e.startFlow(ctx, userID, domain.ChatReceiveEvent, domain.StepEnterCode, promptShareCode())
	case CmdRevoke:
		return e.startFlow(ctx, userID, domain.ChatRevokeEvent, domain.StepEnterName, promptRevokeName())
	case CmdSettings:
		return e.startFlow(ctx, userID, domain.ChatUserSettings, domain.StepSelectOption, promptSettingsOption())
	}
	if strings.HasPrefix(text, "/") {
		return textReply(msgUnknownCommand), nil
	}
	return textReply(msgGreeting), nil
}

func (e *Engine) handleOngoing(ctx context.Context, sess *domain.Session, in Input) (Reply, error) {
	if sess.Step == nil {
		return Reply{}, fmt.Errorf("%w: ongoing session %s has no step", ErrInvariant, sess.ID)
	}
	switch sess.Type {
	case domain.ChatNewEvent:
		return e.handleNewEvent(ctx, sess, in)
	case domain.ChatFindEvent:
		return e.handleFindEvent(ctx, sess, in)
	case domain.ChatDeleteEvent:
		return e.handleDeleteEvent(ctx, sess, in)
	case domain.ChatDoneEvent:
		return e.handleDoneEvent(ctx, sess, in)
	case domain.ChatEditEvent:
		return e.handleEditEvent(ctx, sess, in)
	case domain.ChatShareEvent:
		return e.handleShareEvent(ctx, sess, in)
	case domain.ChatReceiveEvent:
		return e.handleReceiveEvent(ctx, sess, in)
	case domain.ChatRevokeEvent:
		return e.handleRevokeEvent(ctx, sess, in)
	case domain.ChatUserSettings:
		return e.handleUserSettings(ctx, sess, in)
	}
	return Reply{}, fmt.Errorf("%w: unknown chat type %q", ErrInvariant, sess.Type)
}

// ensureUser creates the user row on first contact, or reactivates a user
// who had blocked the bot.
func (e *Engine) ensureUser(ctx context.Context, userID string) error {
	u, err := e.repo.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		e.log.Info("new user", zap.String("user_id", userID))
		return e.repo.AddUser(ctx, &domain.User{
			ID:               userID,
			NotificationHour: 9,
			IsActive:         true,
			CreatedAt:        e.now(),
		})
	}
	if err != nil {
		return err
	}
	if !u.IsActive {
		e.log.Info("user unblocked the bot", zap.String("user_id", userID))
		if err := e.repo.SetUserActive(ctx, userID, true); err != nil {
			return err
		}
		return e.repo.SetEventsActiveByUser(ctx, userID, true)
	}
	return nil
}

// HandleBlocked deactivates a user and their events once the messaging
// platform reports the bot was blocked.
func (e *Engine) HandleBlocked(ctx context.Context, userID string) error {
	e.log.Info("user blocked the bot", zap.String("user_id", userID))
	if err := e.repo.SetUserActive(ctx, userID, false); err != nil {
		return err
	}
	return e.repo.SetEventsActiveByUser(ctx, userID, false)
}

func (e *Engine) handleStart(ctx context.Context, userID string) (Reply, error) {
	// ensureUser already registered or reactivated the user.
	return welcomeReply(), nil
}

// startFlow creates a fresh ongoing session at the given first step. A
// concurrent session creation loses against the storage uniqueness
// constraint and gets the "ongoing chat" reply instead.
func (e *Engine) startFlow(ctx context.Context, userID string, chatType domain.ChatType, first domain.Step, prompt Reply) (Reply, error) {
	sess := &domain.Session{
		ID:     newID(),
		UserID: userID,
		Type:   chatType,
		Step:   &first,
		Status: domain.StatusOngoing,
	}
	err := e.repo.CreateSession(ctx, sess)
	if errors.Is(err, store.ErrSessionExists) {
		return textReply(msgOngoingChat), nil
	}
	if err != nil {
		return Reply{}, err
	}
	e.log.Info("chat started",
		zap.String("chat_id", sess.ID),
		zap.String("user_id", userID),
		zap.String("chat_type", string(chatType)))
	return prompt, nil
}

// advance moves the session to the next step, applying patch to the payload
// first. Both writes are persisted before the prompt for the next step is
// returned.
func (e *Engine) advance(ctx context.Context, sess *domain.Session, next domain.Step, patch func(*domain.Payload)) error {
	if patch != nil {
		patch(&sess.Payload)
		if err := e.repo.SetSessionPayload(ctx, sess.ID, sess.Payload); err != nil {
			return err
		}
	}
	sess.Step = &next
	return e.repo.SetSessionStep(ctx, sess.ID, &next)
}

// patchPayload persists payload changes without advancing the step.
func (e *Engine) patchPayload(ctx context.Context, sess *domain.Session, patch func(*domain.Payload)) error {
	patch(&sess.Payload)
	return e.repo.SetSessionPayload(ctx, sess.ID, sess.Payload)
}

// finishSession terminates a session: step null, status completed or aborted.
func (e *Engine) finishSession(ctx context.Context, sess *domain.Session, status domain.ChatStatus) error {
	if err := e.repo.SetSessionStep(ctx, sess.ID, nil); err != nil {
		return err
	}
	sess.Step = nil
	sess.Status = status
	return e.repo.SetSessionStatus(ctx, sess.ID, status)
}

func (e *Engine) invalidStep(sess *domain.Session) (Reply, error) {
	return Reply{}, fmt.Errorf("%w: step %q in %s chat %s",
		ErrInvariant, *sess.Step, sess.Type, sess.ID)
}
