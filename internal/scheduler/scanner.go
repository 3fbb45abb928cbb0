package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/acaibowlz/routine-bot/internal/domain"
	"github.com/acaibowlz/routine-bot/internal/store"
)

// Sender is the minimal interface the scanner needs to push messages.
// telegram.Client implements it.
type Sender interface {
	PushCard(userID, title string, lines []string) error
}

// ProfileResolver resolves a user id to a display name for shared-event
// reminders.
type ProfileResolver interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

// Summary is the result of one slot scan, returned to the HTTP trigger and
// logged after every run.
type Summary struct {
	Slot     int           `json:"slot"`
	Users    int           `json:"users"`
	Notified int           `json:"notified"`
	Limited  int           `json:"limited"`
	Events   int           `json:"events"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration_ms"`
}

// Scanner walks all active users in an hour slot and pushes one reminder
// card per overdue event, owned and shared alike.
type Scanner struct {
	repo     store.Repo
	log      *zap.Logger
	sender   Sender
	profiles ProfileResolver
	loc      *time.Location
	now      func() time.Time
}

func New(repo store.Repo, log *zap.Logger, sender Sender, profiles ProfileResolver, loc *time.Location) *Scanner {
	return &Scanner{
		repo:     repo,
		log:      log,
		sender:   sender,
		profiles: profiles,
		loc:      loc,
		now:      time.Now,
	}
}

// ScanNow scans the slot matching the current hour in the bot timezone.
func (s *Scanner) ScanNow(ctx context.Context) (Summary, error) {
	return s.ScanSlot(ctx, s.now().In(s.loc).Hour())
}

// ScanSlot runs one reminder pass for every active user whose notification
// hour equals slot. Per-push failures are counted, not fatal: one blocked or
// unreachable user must not starve the rest of the slot. Due dates are never
// mutated here; an event stays due until it is marked done.
func (s *Scanner) ScanSlot(ctx context.Context, slot int) (Summary, error) {
	if slot < 0 || slot > 23 {
		return Summary{}, fmt.Errorf("slot out of range: %d", slot)
	}
	start := s.now()
	sum := Summary{Slot: slot}

	users, err := s.repo.ListActiveUsersBySlot(ctx, slot)
	if err != nil {
		return sum, fmt.Errorf("list users for slot %d: %w", slot, err)
	}
	sum.Users = len(users)

	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if u.IsLimited(start) {
			if err := s.sender.PushCard(u.ID, titleSuspended, linesSuspended); err != nil {
				s.log.Warn("suspension notice failed",
					zap.String("user_id", u.ID), zap.Error(err))
				sum.Failed++
				continue
			}
			sum.Limited++
			continue
		}
		s.remindUser(ctx, u.ID, &sum)
	}

	sum.Duration = s.now().Sub(start)
	s.log.Info("slot scan finished",
		zap.Int("slot", sum.Slot),
		zap.Int("users", sum.Users),
		zap.Int("notified", sum.Notified),
		zap.Int("limited", sum.Limited),
		zap.Int("events", sum.Events),
		zap.Int("failed", sum.Failed),
		zap.Duration("duration", sum.Duration))
	return sum, nil
}

func (s *Scanner) remindUser(ctx context.Context, userID string, sum *Summary) {
	now := s.now()

	owned, err := s.repo.ListOverdueEventsByUser(ctx, userID, now)
	if err != nil {
		s.log.Error("list overdue events failed",
			zap.String("user_id", userID), zap.Error(err))
		sum.Failed++
		return
	}
	shared, err := s.repo.ListOverdueSharedEventsByUser(ctx, userID, now)
	if err != nil {
		s.log.Error("list overdue shared events failed",
			zap.String("user_id", userID), zap.Error(err))
		sum.Failed++
		return
	}

	sent := 0
	for _, ev := range owned {
		if s.pushEventCard(userID, ev, "") {
			sent++
		} else {
			sum.Failed++
		}
	}
	for _, ev := range shared {
		owner, err := s.profiles.DisplayName(ctx, ev.UserID)
		if err != nil {
			s.log.Warn("owner display name unavailable",
				zap.String("user_id", ev.UserID), zap.Error(err))
			owner = "a friend"
		}
		if s.pushEventCard(userID, ev, owner) {
			sent++
		} else {
			sum.Failed++
		}
	}
	if sent > 0 {
		sum.Notified++
		sum.Events += sent
	}
}

func (s *Scanner) pushEventCard(userID string, ev domain.Event, sharedBy string) bool {
	now := s.now()
	lines := []string{
		"🕰 Last done: " + ev.LastDoneAt.Format("2006-01-02") +
			" (" + domain.FormatGap(domain.VerbalGap(now, ev.LastDoneAt, s.loc)) + ")",
	}
	if ev.Cycle != nil {
		lines = append(lines, "🔁 Cycle: "+ev.Cycle.String())
	}
	if ev.NextDueAt != nil {
		if gap := domain.FormatGap(domain.VerbalGap(now, *ev.NextDueAt, s.loc)); gap == "today" {
			lines = append(lines, "⏰ Due today")
		} else {
			lines = append(lines, "⏰ Due "+gap)
		}
	}
	if sharedBy != "" {
		lines = append(lines, "👥 Shared by "+sharedBy)
	}
	if err := s.sender.PushCard(userID, "⏰ ["+ev.Name+"] is due!", lines); err != nil {
		s.log.Warn("reminder push failed",
			zap.String("user_id", userID),
			zap.String("event_id", ev.ID),
			zap.Error(err))
		return false
	}
	return true
}

const titleSuspended = "🔒 Reminders paused"

var linesSuspended = []string{
	"You're over the free plan limit of 5 events, so reminders are paused.",
	"Delete some events or go premium to turn them back on.",
}
