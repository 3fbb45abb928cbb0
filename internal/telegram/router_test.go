package telegram

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/acaibowlz/routine-bot/internal/chat"
)

func testRouter() *Router {
	return &Router{log: zap.NewNop(), loc: time.UTC}
}

func TestDecodeTextDate(t *testing.T) {
	r := testRouter()

	in := r.decodeText(" 2026-08-23 ")
	if in.Date == nil {
		t.Fatal("date not decoded")
	}
	want := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)
	if !in.Date.Equal(want) {
		t.Errorf("date: got %v, want %v", in.Date, want)
	}

	for _, s := range []string{"2026-13-01", "23-08-2026", "tomorrow"} {
		if in := r.decodeText(s); in.Date != nil {
			t.Errorf("%q decoded as date %v", s, in.Date)
		}
	}
}

func TestDecodeTextSlot(t *testing.T) {
	r := testRouter()

	in := r.decodeText("09:30")
	if in.Slot == nil || in.Slot.Hour != 9 || in.Slot.Minute != 30 {
		t.Errorf("slot: %+v", in.Slot)
	}
	if in := r.decodeText("25:00"); in.Slot != nil {
		t.Errorf("25:00 decoded as %+v", in.Slot)
	}
	// Plain text passes through untouched.
	in = r.decodeText("喝水")
	if in.Text != "喝水" || in.Date != nil || in.Slot != nil {
		t.Errorf("plain text: %+v", in)
	}
}

func TestDecodeCallback(t *testing.T) {
	r := testRouter()

	in := r.decodeCallback("date:-1")
	if in.Date == nil {
		t.Fatal("date offset not decoded")
	}
	if in.Date.Hour() != 0 || in.Date.Minute() != 0 {
		t.Errorf("offset date not midnight: %v", in.Date)
	}

	in = r.decodeCallback("slot:21")
	if in.Slot == nil || in.Slot.Hour != 21 || in.Slot.Minute != 0 {
		t.Errorf("slot: %+v", in.Slot)
	}
	for _, s := range []string{"slot:24", "slot:-1", "slot:x", "date:x", "garbage"} {
		if in := r.decodeCallback(s); in.Date != nil || in.Slot != nil {
			t.Errorf("%q decoded: %+v", s, in)
		}
	}
}

func TestRenderCard(t *testing.T) {
	got := renderCard(chat.Reply{
		Kind:  chat.ReplyCard,
		Title: "🔍 [喝水]",
		Lines: []string{"🔁 Cycle: 1 week", "🔔 Next reminder: 2026-08-30"},
	})
	want := "🔍 [喝水]\n🔁 Cycle: 1 week\n🔔 Next reminder: 2026-08-30"
	if got != want {
		t.Errorf("card: %q", got)
	}
}

func TestRenderReplyKeyboards(t *testing.T) {
	msg := renderReply(1, chat.Reply{
		Kind: chat.ReplyPrompt, Text: "pick", Options: []string{"a", "b"},
	})
	if msg.ReplyMarkup == nil {
		t.Error("prompt without keyboard")
	}

	msg = renderReply(1, chat.Reply{Kind: chat.ReplyTimePicker, Text: "when"})
	if msg.ReplyMarkup == nil {
		t.Error("time picker without keyboard")
	}
}
