package domain

import "fmt"

// CSS hooks shared by the fragment markup and the surfaces rendering it.
const (
	ClassWindow  = "pws-cb-win"
	ClassShow    = "pws-cb-show"
	ClassHandle  = "pws-cb-handle"
	ClassTitle   = "pws-cb-title"
	ClassChat    = "pws-cb-chat"
	ClassFooter  = "pws-cb-footer"
	ClassMessage = "pws-cb-message"
	ClassUser    = "pws-cb-user"
	ClassBot     = "pws-cb-bot"
	ClassPending = "pws-cb-bot-pending"

	WindowID = "pws-cb-win"
	StyleID  = "pws-cb-style"
)

// PendingFragment is the placeholder shown while a bot reply is outstanding.
const PendingFragment = `<div class="pws-cb-message pws-cb-bot pws-cb-bot-pending"></div>`

// UserFragment wraps already escaped text in a user bubble.
func UserFragment(escaped string) string {
	return fmt.Sprintf(`<div class="%s %s"><span>%s</span></div>`, ClassMessage, ClassUser, escaped)
}

// BotFragment wraps already escaped text in a bot bubble.
func BotFragment(escaped string) string {
	return fmt.Sprintf(`<div class="%s %s"><span>%s</span></div>`, ClassMessage, ClassBot, escaped)
}
