package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/acaibowlz/routine-bot/internal/domain"
)

func openTestRepo(t *testing.T) *SQLiteRepo {
	t.Helper()
	repo, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func addTestUser(t *testing.T, repo *SQLiteRepo, id string) {
	t.Helper()
	err := repo.AddUser(context.Background(), &domain.User{
		ID:               id,
		NotificationHour: 9,
		IsActive:         true,
		CreatedAt:        time.Now(),
	})
	if err != nil {
		t.Fatalf("AddUser(%s): %v", id, err)
	}
}

func TestOneOngoingSessionPerUser(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	addTestUser(t, repo, "u1")

	step := domain.StepEnterName
	first := &domain.Session{
		ID: "c1", UserID: "u1", Type: domain.ChatNewEvent,
		Step: &step, Status: domain.StatusOngoing,
	}
	if err := repo.CreateSession(ctx, first); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	second := &domain.Session{
		ID: "c2", UserID: "u1", Type: domain.ChatFindEvent,
		Step: &step, Status: domain.StatusOngoing,
	}
	if err := repo.CreateSession(ctx, second); !errors.Is(err, ErrSessionExists) {
		t.Fatalf("second ongoing session: got %v, want ErrSessionExists", err)
	}

	// A different user is unaffected.
	addTestUser(t, repo, "u2")
	other := &domain.Session{
		ID: "c3", UserID: "u2", Type: domain.ChatNewEvent,
		Step: &step, Status: domain.StatusOngoing,
	}
	if err := repo.CreateSession(ctx, other); err != nil {
		t.Fatalf("other user's session: %v", err)
	}

	// Finishing the first session frees the slot.
	if err := repo.SetSessionStep(ctx, "c1", nil); err != nil {
		t.Fatalf("SetSessionStep: %v", err)
	}
	if err := repo.SetSessionStatus(ctx, "c1", domain.StatusCompleted); err != nil {
		t.Fatalf("SetSessionStatus: %v", err)
	}
	if err := repo.CreateSession(ctx, &domain.Session{
		ID: "c4", UserID: "u1", Type: domain.ChatDoneEvent,
		Step: &step, Status: domain.StatusOngoing,
	}); err != nil {
		t.Fatalf("session after completion: %v", err)
	}
}

func TestGetOngoingSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	addTestUser(t, repo, "u1")

	if _, err := repo.GetOngoingSession(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("no session: got %v, want ErrNotFound", err)
	}

	step := domain.StepSelectStartDate
	sess := &domain.Session{
		ID: "c1", UserID: "u1", Type: domain.ChatNewEvent,
		Step:    &step,
		Payload: domain.Payload{EventName: "水槽清潔", FromToggle: true},
		Status:  domain.StatusOngoing,
	}
	if err := repo.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := repo.GetOngoingSession(ctx, "u1")
	if err != nil {
		t.Fatalf("GetOngoingSession: %v", err)
	}
	if got.Type != domain.ChatNewEvent || got.Step == nil || *got.Step != step {
		t.Errorf("got type=%q step=%v", got.Type, got.Step)
	}
	if got.Payload.EventName != "水槽清潔" || !got.Payload.FromToggle {
		t.Errorf("payload round trip: %+v", got.Payload)
	}
}

func TestEventLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	addTestUser(t, repo, "u1")

	cycle := &domain.Cycle{Count: 2, Unit: domain.UnitWeek}
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	next := cycle.NextDue(start)
	ev := &domain.Event{
		ID: "e1", UserID: "u1", Name: "拖地",
		ReminderEnabled: true, Cycle: cycle,
		LastDoneAt: start, NextDueAt: &next, IsActive: true,
	}
	if err := repo.AddEvent(ctx, ev); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}

	got, err := repo.GetEventByName(ctx, "u1", "拖地")
	if err != nil {
		t.Fatalf("GetEventByName: %v", err)
	}
	if got.ID != "e1" || got.Cycle == nil || got.Cycle.Count != 2 || got.Cycle.Unit != domain.UnitWeek {
		t.Errorf("round trip: %+v cycle=%+v", got, got.Cycle)
	}
	if got.NextDueAt == nil || !got.NextDueAt.Equal(next) {
		t.Errorf("next due: got %v, want %v", got.NextDueAt, next)
	}

	taken, err := repo.EventNameTaken(ctx, "u1", "拖地")
	if err != nil || !taken {
		t.Errorf("EventNameTaken: %v %v", taken, err)
	}

	if _, err := repo.GetEventByName(ctx, "u1", "澆花"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing event: got %v, want ErrNotFound", err)
	}

	// Disabling a reminder clears the due date.
	if err := repo.SetEventReminder(ctx, "e1", false, nil); err != nil {
		t.Fatalf("SetEventReminder: %v", err)
	}
	got, _ = repo.GetEvent(ctx, "e1")
	if got.ReminderEnabled || got.NextDueAt != nil {
		t.Errorf("after disable: enabled=%v next=%v", got.ReminderEnabled, got.NextDueAt)
	}
	// The cycle is kept for when the reminder comes back.
	if got.Cycle == nil {
		t.Error("cycle should survive a reminder toggle")
	}
}

func TestCreateEventWithSeed(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	addTestUser(t, repo, "u1")

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	err := repo.CreateEventWithSeed(ctx,
		&domain.Event{ID: "e1", UserID: "u1", Name: "倒垃圾", LastDoneAt: start, IsActive: true},
		&domain.Record{ID: "r1", EventID: "e1", UserID: "u1", DoneAt: start},
	)
	if err != nil {
		t.Fatalf("CreateEventWithSeed: %v", err)
	}

	u, err := repo.GetUser(ctx, "u1")
	if err != nil || u.EventCount != 1 {
		t.Errorf("event count: got %d, %v, want 1", u.EventCount, err)
	}
	recs, err := repo.ListRecentRecords(ctx, "e1", 10)
	if err != nil || len(recs) != 1 {
		t.Errorf("seed record: got %d, %v, want 1", len(recs), err)
	}
}

func TestCreateEventWithSeedMissingUser(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	err := repo.CreateEventWithSeed(ctx,
		&domain.Event{ID: "e1", UserID: "ghost", Name: "倒垃圾", LastDoneAt: start, IsActive: true},
		&domain.Record{ID: "r1", EventID: "e1", UserID: "ghost", DoneAt: start},
	)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if _, err := repo.GetEvent(ctx, "e1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("event after failed create: got %v, want ErrNotFound", err)
	}
}

func TestCreateEventWithSeedRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	addTestUser(t, repo, "u1")

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	err := repo.CreateEventWithSeed(ctx,
		&domain.Event{ID: "e1", UserID: "u1", Name: "倒垃圾", LastDoneAt: start, IsActive: true},
		&domain.Record{ID: "r1", EventID: "e1", UserID: "u1", DoneAt: start},
	)
	if err != nil {
		t.Fatalf("CreateEventWithSeed: %v", err)
	}

	// A colliding record id fails the last statement of the sequence; the
	// count bump and event insert before it must not survive.
	err = repo.CreateEventWithSeed(ctx,
		&domain.Event{ID: "e2", UserID: "u1", Name: "拖地", LastDoneAt: start, IsActive: true},
		&domain.Record{ID: "r1", EventID: "e2", UserID: "u1", DoneAt: start},
	)
	if err == nil {
		t.Fatal("duplicate record id accepted")
	}
	if _, err := repo.GetEvent(ctx, "e2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("event after rollback: got %v, want ErrNotFound", err)
	}
	u, err := repo.GetUser(ctx, "u1")
	if err != nil || u.EventCount != 1 {
		t.Errorf("event count after rollback: got %d, %v, want 1", u.EventCount, err)
	}
}

func TestDeleteEventCascade(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	addTestUser(t, repo, "owner")
	addTestUser(t, repo, "friend")

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	err := repo.CreateEventWithSeed(ctx,
		&domain.Event{ID: "e1", UserID: "owner", Name: "倒垃圾", LastDoneAt: start, IsActive: true},
		&domain.Record{ID: "r0", EventID: "e1", UserID: "owner", DoneAt: start},
	)
	if err != nil {
		t.Fatalf("CreateEventWithSeed: %v", err)
	}
	for i, day := range []int{1, 3} {
		err := repo.AddRecord(ctx, &domain.Record{
			ID: fmt.Sprintf("r%d", i+1), EventID: "e1", UserID: "owner",
			DoneAt: start.AddDate(0, 0, day),
		})
		if err != nil {
			t.Fatalf("AddRecord: %v", err)
		}
	}
	if err := repo.AcceptShare(ctx, &domain.Share{
		ID: "s1", EventID: "e1", OwnerID: "owner", RecipientID: "friend",
	}); err != nil {
		t.Fatalf("AcceptShare: %v", err)
	}

	records, shares, err := repo.DeleteEventCascade(ctx, "e1", "owner")
	if err != nil {
		t.Fatalf("DeleteEventCascade: %v", err)
	}
	if records != 3 || shares != 1 {
		t.Errorf("cascade counts: got records=%d shares=%d, want 3/1", records, shares)
	}
	if _, err := repo.GetEvent(ctx, "e1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted event lookup: got %v, want ErrNotFound", err)
	}
	u, err := repo.GetUser(ctx, "owner")
	if err != nil || u.EventCount != 0 {
		t.Errorf("event count after delete: got %d, %v, want 0", u.EventCount, err)
	}
}

func TestDeleteEventCascadeRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	addTestUser(t, repo, "owner")

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	err := repo.CreateEventWithSeed(ctx,
		&domain.Event{ID: "e1", UserID: "owner", Name: "倒垃圾", LastDoneAt: start, IsActive: true},
		&domain.Record{ID: "r1", EventID: "e1", UserID: "owner", DoneAt: start},
	)
	if err != nil {
		t.Fatalf("CreateEventWithSeed: %v", err)
	}

	// A wrong owner fails the count decrement after the deletes already ran;
	// the event and its history must be restored so the delete can be retried.
	_, _, err = repo.DeleteEventCascade(ctx, "e1", "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if _, err := repo.GetEvent(ctx, "e1"); err != nil {
		t.Errorf("event after rollback: %v", err)
	}
	recs, err := repo.ListRecentRecords(ctx, "e1", 10)
	if err != nil || len(recs) != 1 {
		t.Errorf("records after rollback: got %d, %v, want 1", len(recs), err)
	}
}

func TestShareCountFollowsAcceptAndRevoke(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	addTestUser(t, repo, "owner")
	addTestUser(t, repo, "friend")

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	err := repo.CreateEventWithSeed(ctx,
		&domain.Event{ID: "e1", UserID: "owner", Name: "拖地", LastDoneAt: start, IsActive: true},
		&domain.Record{ID: "r1", EventID: "e1", UserID: "owner", DoneAt: start},
	)
	if err != nil {
		t.Fatalf("CreateEventWithSeed: %v", err)
	}

	if err := repo.AcceptShare(ctx, &domain.Share{
		ID: "s1", EventID: "e1", OwnerID: "owner", RecipientID: "friend",
	}); err != nil {
		t.Fatalf("AcceptShare: %v", err)
	}
	ev, _ := repo.GetEvent(ctx, "e1")
	if ev.ShareCount != 1 {
		t.Errorf("share count after accept: got %d, want 1", ev.ShareCount)
	}

	// The UNIQUE(event_id, recipient_id) constraint aborts the whole
	// transaction, so a duplicate accept must not bump the counter.
	err = repo.AcceptShare(ctx, &domain.Share{
		ID: "s2", EventID: "e1", OwnerID: "owner", RecipientID: "friend",
	})
	if err == nil {
		t.Fatal("duplicate share accepted")
	}
	ev, _ = repo.GetEvent(ctx, "e1")
	if ev.ShareCount != 1 {
		t.Errorf("share count after duplicate: got %d, want 1", ev.ShareCount)
	}

	if err := repo.RevokeShare(ctx, "e1", "friend"); err != nil {
		t.Fatalf("RevokeShare: %v", err)
	}
	ev, _ = repo.GetEvent(ctx, "e1")
	if ev.ShareCount != 0 {
		t.Errorf("share count after revoke: got %d, want 0", ev.ShareCount)
	}
	if err := repo.RevokeShare(ctx, "e1", "friend"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("revoke missing share: got %v, want ErrNotFound", err)
	}
}

func TestListActiveUsersBySlot(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	for _, u := range []struct {
		id     string
		hour   int
		active bool
	}{
		{"u9a", 9, true},
		{"u9b", 9, true},
		{"u9off", 9, false},
		{"u21", 21, true},
	} {
		err := repo.AddUser(ctx, &domain.User{
			ID: u.id, NotificationHour: u.hour, IsActive: u.active, CreatedAt: time.Now(),
		})
		if err != nil {
			t.Fatalf("AddUser(%s): %v", u.id, err)
		}
	}

	users, err := repo.ListActiveUsersBySlot(ctx, 9)
	if err != nil {
		t.Fatalf("ListActiveUsersBySlot: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("slot 9: got %d users, want 2", len(users))
	}
	for _, u := range users {
		if u.NotificationHour != 9 || !u.IsActive {
			t.Errorf("unexpected user in slot: %+v", u)
		}
	}
}
