// Package text renders every bot reply. It is pure formatting: no store,
// no network, and inputs are trusted structurally by the callers.
package text

import (
	"fmt"
	"strings"
	"time"

	"github.com/aswnn/i11bot/ledger"
)

// NoDonuts is the reply whenever the donut rotation is empty.
const NoDonuts = "Hooray!  No one owes any donuts currently!  Keep up the good work"

// TryAgain is the generic reply for command failures.
const TryAgain = "Error during command, please try again"

// All dates render in US Central, the team's home timezone.
var central = mustLocation("America/Chicago")

// localeLayout mirrors an en-US locale date string.
const localeLayout = "1/2/2006, 3:04:05 PM"

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func formatDate(t time.Time) string {
	return t.In(central).Format(localeLayout)
}

// MyScore renders a user's own score. A zero balance is indistinguishable
// from no balance at all, so both render the no-activity line.
func MyScore(userID string, score int) string {
	if score == 0 {
		return "No point activity yet"
	}

	return fmt.Sprintf("<@%s> is at %d points", userID, score)
}

// PointChange renders the reply for a single applied delta.
func PointChange(userID string, points, score int) string {
	switch {
	case points > 1:
		return fmt.Sprintf("Great work, <@%s>, %d times! Current score: %d", userID, points, score)
	case points == 1:
		return fmt.Sprintf("Good work, <@%s>! Current score: %d", userID, score)
	case points == -1:
		return fmt.Sprintf("Bad form, <@%s>! Current score: %d", userID, score)
	case points < -1:
		return fmt.Sprintf("Ugh, <@%s> is the worst times %d! Current score: %d", userID, points, score)
	}

	return fmt.Sprintf("Invalid points passed (%d), please try again", points)
}

// SelfAward is the warning for users trying to change their own score.
func SelfAward(userID string) string {
	return fmt.Sprintf("Hey, what are you trying to pull, <@%s>?!", userID)
}

// TopUsers renders the leaderboard.
func TopUsers(users []ledger.Balance) string {
	if len(users) == 0 {
		return "No point activity yet"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Current Top %d Leaderboard:", len(users))
	for _, user := range users {
		fmt.Fprintf(&b, "\n<@%s>: %d points", user.UserID, user.Score)
	}

	return b.String()
}

// InvalidNumber is the reply for a leaderboard request below one.
func InvalidNumber(n int) string {
	return fmt.Sprintf("Invalid number passed (%d), please try again", n)
}

// DonutList renders the full rotation as of now.
func DonutList(rotation []ledger.DonutUser, now time.Time) string {
	if len(rotation) == 0 {
		return NoDonuts
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*Donut List as of %s*", formatDate(now))
	for i, user := range rotation {
		fmt.Fprintf(&b, "\n%d. <@%s> - added %s", i+1, user.UserID, formatDate(user.Earliest))
	}
	b.WriteString("\n" + strings.Repeat(":donutbounce:", len(rotation)))

	return b.String()
}

// NextForDonuts renders the reminder for the next user due.
func NextForDonuts(user *ledger.NextDonutUser) string {
	if user == nil {
		return NoDonuts
	}

	return fmt.Sprintf(`Heads up, <@%s>, you are the next to owe donuts.

This is from %s.  You currently owe %d / %d donut days total.`,
		user.UserID, formatDate(user.Earliest), user.Counts.Outstanding, user.Counts.Total)
}

// DonutAdded renders the notice after a poll lands someone on the list.
func DonutAdded(userID string, counts ledger.Counts) string {
	verb := fmt.Sprintf("You now owe %d donut days out of %d total infractions in the",
		counts.Outstanding, counts.Total)
	if counts.Total == 1 {
		verb = "You were added to the"
	}

	return fmt.Sprintf("Tough break, <@%s>. %s donut history", userID, verb)
}

// BroughtDonuts confirms a repayment.
func BroughtDonuts(userID string, counts ledger.Counts) string {
	status := fmt.Sprintf("You still owe %d / %d donut days", counts.Outstanding, counts.Total)
	if counts.Outstanding == 0 {
		status = "You are all caught up...\n\nfor now"
	}

	return fmt.Sprintf("Thanks for bringing donuts in, <@%s>!  %s", userID, status)
}

// SelfBrought deflects users confirming their own donut delivery.
func SelfBrought(userID string) string {
	return fmt.Sprintf("Great work, <@%s>!  Please have someone else confirm and run this command to lower your donut listing", userID)
}

// ChannelJoin greets a user joining a channel.
func ChannelJoin(userID, channelID string) string {
	return fmt.Sprintf("Hello <@%s>, welcome to <#%s>! :relaxed:", userID, channelID)
}

// Help renders the command reference. maxLeaders is the default leaderboard
// size for a bare "top".
func Help(maxLeaders int) string {
	return fmt.Sprintf(`
The official ASWNN Bot

Invite the bot to specific channels with `+"`/invite @i11_bot`"+`

*Commands*
`+"`/i11bot me`"+` - See your points
`+"`/i11bot top`"+` - See top %d points
`+"`/i11bot top N`"+` - See top N points
`+"`/i11bot list donuts`"+` - See all of donut list
`+"`/i11bot next for donuts`"+` - Notify the next on the list to bring donuts
`+"`/i11bot @username brought donuts`"+` - Remove earliest infraction from `+"`@username`"+`
`+"`/i11bot help`"+` - See this help screen

*Assigning Points*
`+"`@username ++`"+` - Award 1 point to `+"`@username`"+`
`+"`@username --`"+` - Take away 1 point from `+"`@username`"+`
`+"`@username N+`"+` - Award N points to `+"`@username`"+`
`+"`@username N-`"+` - Take away N points from `+"`@username`"+`

*Adding to Donut List*
Send out a poll using the word "donut", such as:
`+"`/poll \"Should I bring donuts?\" \"Yes\" \"Heck yes\"`"+`
`, maxLeaders)
}

// InvalidCommand is the fallback for unrecognized command text.
func InvalidCommand(command string, maxLeaders int) string {
	return fmt.Sprintf("\nInvalid command: %s\n%s\n", command, Help(maxLeaders))
}
