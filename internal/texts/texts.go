// Package texts holds every user-facing message the bot sends.
package texts

import (
	"fmt"
	"strings"
)

const (
	Start           = "👋 Hi! This bot builds a \"How well do your friends know you?\" test."
	CreateButton    = "🎮 Create a test about me"
	CreateStart     = "Great! I'll ask you a few questions about yourself. Pick the answers that are true for you."
	ShareButton     = "📲 Share the test"
	NotFound        = "Test not found. The link may be wrong or the test no longer exists."
	Error           = "Something went wrong. Please try again or contact the administrator."
	AnswerError     = "Something went wrong while processing your answer. Please start the test again."
	UseButtons      = "Please use the buttons to answer the test questions."
	Cancelled       = "Cancelled. Nothing was saved."
	NothingToCancel = "Nothing to cancel."
	NoTests         = "You haven't created any tests yet. Send /create to make one."
	NoResults       = "Nobody has taken a test yet."
	NoActiveFlow    = "There is no question waiting for an answer. Send /create to make a test."
	UnknownIdentity = "Usage: /as <id> <name>"
	Help            = `Commands:
/create - create a test about yourself
/mytests - list your tests and their links
/stats - statistics for your tests
/top - leaderboard of all takers
/cancel - abandon the current test
/help - this message`
	CreatorUnanswered = "- The creator did not answer this question"
)

// Question renders the prompt of question current (1-based) out of total.
func Question(current, total int, text string) string {
	return fmt.Sprintf("Question %d/%d:\n\n%s", current, total, text)
}

// TestCreated announces a finished test and its link.
func TestCreated(link string) string {
	return fmt.Sprintf("🎉 Congratulations! Your test is ready.\nYour link: %s", link)
}

// TakingStart introduces the creator whose test is being taken.
func TakingStart(creatorName string) string {
	if creatorName == "" {
		creatorName = "this user"
	}
	return fmt.Sprintf("You are taking %s's test. Answer the questions and find out how well you know them!", creatorName)
}

// TestCompleted reports the taker's result.
func TestCompleted(creatorName string, percentage int, status string) string {
	if creatorName == "" {
		creatorName = "this user"
	}
	return fmt.Sprintf("Test finished!\n\nYou know %s %d%%\n%s", creatorName, percentage, status)
}

// Handle renders a taker name as a mention, adding @ unless present.
func Handle(name string) string {
	if strings.Contains(name, "@") {
		return name
	}
	return "@" + name
}

// NewResult notifies a creator about a finished attempt.
func NewResult(takerName string, percentage int, status, details string) string {
	return fmt.Sprintf("%s took your test and scored %d%% (%s)\n\nQuestions and answers:\n%s",
		Handle(takerName), percentage, status, details)
}

// Detail is one line item of a result notification.
type Detail struct {
	Symbol        string
	Question      string
	Selected      string
	Correct       string
	ShowCorrect   bool
	CreatorMissed bool
}

// Details renders the per-question breakdown for NewResult.
func Details(items []Detail) string {
	var b strings.Builder
	for _, d := range items {
		fmt.Fprintf(&b, "%s %s\n", d.Symbol, d.Question)
		fmt.Fprintf(&b, "- Selected: %s\n", d.Selected)
		switch {
		case d.CreatorMissed:
			b.WriteString(CreatorUnanswered + "\n")
		case d.ShowCorrect:
			fmt.Fprintf(&b, "- Correct answer: %s\n", d.Correct)
		}
		b.WriteString("\n")
	}
	return b.String()
}
