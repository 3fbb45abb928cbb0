package domain

import "time"

// ChatType names one kind of multi-step conversation.
type ChatType string

const (
	ChatNewEvent     ChatType = "new_event"
	ChatFindEvent    ChatType = "find_event"
	ChatDeleteEvent  ChatType = "delete_event"
	ChatDoneEvent    ChatType = "done_event"
	ChatEditEvent    ChatType = "edit_event"
	ChatShareEvent   ChatType = "share_event"
	ChatReceiveEvent ChatType = "receive_event"
	ChatRevokeEvent  ChatType = "revoke_event"
	ChatUserSettings ChatType = "user_settings"
)

// Step identifies the current position inside a conversation. The set of
// valid steps depends on the chat type; each flow handler switches
// exhaustively over its own steps.
type Step string

const (
	StepEnterName           Step = "enter_name"
	StepSelectStartDate     Step = "select_start_date"
	StepEnterReminderOption Step = "enter_reminder_option"
	StepEnterCycle          Step = "enter_cycle"
	StepConfirmDeletion     Step = "confirm_deletion"
	StepSelectDoneDate      Step = "select_done_date"
	StepSelectOption        Step = "select_option"
	StepEnterNewName        Step = "enter_new_name"
	StepToggleReminder      Step = "toggle_reminder"
	StepEnterNewCycle       Step = "enter_new_cycle"
	StepEnterCode           Step = "enter_code"
	StepSelectRecipient     Step = "select_recipient"
	StepSelectNewSlot       Step = "select_new_slot"
)

// ChatStatus is the lifecycle state of a session.
type ChatStatus string

const (
	StatusOngoing   ChatStatus = "ongoing"
	StatusCompleted ChatStatus = "completed"
	StatusAborted   ChatStatus = "aborted"
)

// Payload accumulates inputs across the steps of one conversation. Fields are
// progressively populated; each step validates the fields it needs before
// reading them.
type Payload struct {
	EventID         string            `json:"event_id,omitempty"`
	EventName       string            `json:"event_name,omitempty"`
	StartDate       string            `json:"start_date,omitempty"` // 2006-01-02
	Cycle           string            `json:"cycle,omitempty"`
	ReminderEnabled bool              `json:"reminder_enabled,omitempty"`
	HasCycle        bool              `json:"has_cycle,omitempty"`
	FromToggle      bool              `json:"from_toggle,omitempty"` // continuation: toggle-reminder jumped into the cycle sub-flow
	NewName         string            `json:"new_name,omitempty"`
	ShareCode       string            `json:"share_code,omitempty"`
	Recipients      map[string]string `json:"recipients,omitempty"` // display name -> user id
	CurrentSlot     int               `json:"current_slot,omitempty"`
}

// Session is the persisted state of one in-progress conversation.
// A nil Step means the session is terminal.
type Session struct {
	ID        string
	UserID    string
	Type      ChatType
	Step      *Step
	Payload   Payload
	Status    ChatStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
