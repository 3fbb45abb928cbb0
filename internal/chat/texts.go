package chat

import (
	"fmt"
	"time"
)

// Static replies.
const (
	msgGreeting = "👋 Hey! Type /menu to see what I can do, or /new to start tracking something."

	msgUnknownCommand = "🤔 I don't know that command. Type /menu to see the full list."

	msgAborted        = "🧹 Okay, I dropped that conversation. Start a new one whenever you like."
	msgNothingToAbort = "There is nothing to abort right now."
	msgOngoingChat    = "⚠️ We're in the middle of something. Finish it first, or type /abort to drop it."

	msgLimitReached = "🔒 You've reached the free plan limit of 5 events.\n" +
		"Delete an event you no longer need, or upgrade to premium to add more."
)

func welcomeReply() Reply {
	return cardReply("🍞 Welcome to routine bot!",
		"I help you keep up with recurring chores and habits.",
		"Type /new to track your first event.",
		"Type /menu anytime to see all commands.")
}

func menuReply() Reply {
	return cardReply("📋 Commands",
		CmdNew+" — track a new event",
		CmdDone+" — mark an event done",
		CmdFind+" — look up one event",
		CmdViewAll+" — list everything",
		CmdEdit+" — rename, toggle reminder, change cycle",
		CmdDelete+" — delete an event",
		CmdShare+" — share an event with someone",
		CmdReceive+" — receive a shared event",
		CmdRevoke+" — stop sharing with someone",
		CmdSettings+" — change your reminder time",
		CmdAbort+" — drop the current conversation")
}

func helpReply() Reply {
	return cardReply("💡 How it works",
		"Create an event with /new, give it a cycle like \"2 weeks\",",
		"and I'll remind you once it's due again.",
		"Mark it with /done each time, and I'll keep the history.",
		"Stuck mid-conversation? /abort gets you out.")
}

// Prompts for the first step of each flow.

func promptNewName() Reply {
	return textReply("🎯 What should the new event be called? (2–20 characters)")
}

func promptFindName() Reply {
	return textReply("🔍 Which event do you want to look up?")
}

func promptDoneName() Reply {
	return textReply("✅ Which event did you do?")
}

func promptEditName() Reply {
	return textReply("✏️ Which event do you want to edit?")
}

func promptDeleteName() Reply {
	return textReply("🗑 Which event do you want to delete?")
}

func promptShareName() Reply {
	return textReply("👥 Which event do you want to share?")
}

func promptShareCode() Reply {
	return textReply("🔑 Paste the share code you received.")
}

func promptRevokeName() Reply {
	return textReply("🚫 Which event do you want to stop sharing?")
}

func promptSettingsOption() Reply {
	return promptReply("⚙️ What do you want to change?", OptReminderTime)
}

// Shared validation replies.

func invalidNameReply(errMsg string) Reply {
	return textReply("⚠️ " + errMsg + "\nTry another name!")
}

func nameTakenReply(name string) Reply {
	return textReply(fmt.Sprintf("⚠️ You already have an event called [%s]. Pick another name.", name))
}

func eventNotFoundReply(name string) Reply {
	return textReply(fmt.Sprintf("🔍 I couldn't find an event called [%s]. Check the name and try again, or /abort.", name))
}

func cycleExampleReply() Reply {
	return cardReply("🔁 Cycle examples",
		"\"1 day\" — every day",
		"\"2 weeks\" — every two weeks",
		"\"3 months\" — every three months",
		"Count first, then day/week/month.")
}

func invalidCycleReply() Reply {
	return textReply("⚠️ I couldn't read that cycle. Try something like \"2 weeks\", or type \"example\".")
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

