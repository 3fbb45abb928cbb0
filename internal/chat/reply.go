package chat

import "time"

// Input is one inbound user interaction, already sanitized and decoded by
// the transport. Free text always fills Text; structured picker selections
// additionally fill Date or Slot.
type Input struct {
	Text string
	Date *time.Time // date selection, midnight in the bot timezone
	Slot *TimeOfDay // time-of-day selection
}

// TimeOfDay is a picked wall-clock time.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ReplyKind tells the transport how to render a reply.
type ReplyKind int

const (
	ReplyText       ReplyKind = iota // plain text
	ReplyPrompt                      // question with answer buttons
	ReplyDatePicker                  // question expecting a date selection
	ReplyTimePicker                  // question expecting a time-slot selection
	ReplyCard                        // rich card with a title and body lines
)

// Reply is the message-kind result every handler returns.
type Reply struct {
	Kind    ReplyKind
	Text    string
	Options []string // button labels for ReplyPrompt
	Title   string   // card title
	Lines   []string // card body
}

func textReply(text string) Reply {
	return Reply{Kind: ReplyText, Text: text}
}

func promptReply(text string, options ...string) Reply {
	return Reply{Kind: ReplyPrompt, Text: text, Options: options}
}

func cardReply(title string, lines ...string) Reply {
	return Reply{Kind: ReplyCard, Title: title, Lines: lines}
}

// Slash commands understood by the router.
const (
	CmdStart    = "/start"
	CmdNew      = "/new"
	CmdFind     = "/find"
	CmdDone     = "/done"
	CmdEdit     = "/edit"
	CmdDelete   = "/delete"
	CmdViewAll  = "/viewall"
	CmdShare    = "/share"
	CmdReceive  = "/receive"
	CmdRevoke   = "/revoke"
	CmdSettings = "/settings"
	CmdAbort    = "/abort"
	CmdMenu     = "/menu"
	CmdHelp     = "/help"
)

// Button labels used across flows. Button taps come back as plain text, so
// handlers match on these exact strings.
const (
	OptEnableReminder = "Enable reminder"
	OptNoReminder     = "No reminder"
	OptConfirmDelete  = "Delete it"
	OptCancelDelete   = "Keep it"
	OptConfirmToggle  = "Yes, change it"
	OptCancelToggle   = "No, keep it as is"
	OptEditName       = "Name"
	OptEditReminder   = "Reminder"
	OptEditCycle      = "Cycle"
	OptReminderTime   = "Reminder time"
)
