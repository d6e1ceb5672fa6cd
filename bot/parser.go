package bot

import (
	"regexp"
	"strconv"
)

// ActionKind tags the point adjustment a message asks for.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionMultiPlus
	ActionMultiMinus
	ActionSinglePlus
	ActionSingleMinus
)

// Action is the parsed outcome of one channel message. Users holds every
// mention in the message, in order of appearance; Delta is the signed
// point change to apply to each of them.
type Action struct {
	Kind  ActionKind
	Users []string
	Delta int
}

var (
	allUsersRE = regexp.MustCompile(`(?i)<@([^<@>|]+)[^>]*?>`)

	multiPlusRE   = regexp.MustCompile(`(?i)<@([^<@>|]+)[^>]*>\s*(\d+)\+`)
	multiMinusRE  = regexp.MustCompile(`(?i)<@([^<@>|]+)[^>]*>\s*(\d+)-`)
	singlePlusRE  = regexp.MustCompile(`(?i)<@([^<@>|]+)[^>]*>\s*\+{2}`)
	singleMinusRE = regexp.MustCompile(`(?i)<@([^<@>|]+)[^>]*>\s*-{2}`)
)

// pointRules is evaluated top to bottom; the first matching rule wins and
// only one action ever fires per message.
var pointRules = []struct {
	kind  ActionKind
	re    *regexp.Regexp
	delta func(match []string) int
}{
	{ActionMultiPlus, multiPlusRE, func(m []string) int { n, _ := strconv.Atoi(m[2]); return n }},
	{ActionMultiMinus, multiMinusRE, func(m []string) int { n, _ := strconv.Atoi(m[2]); return -n }},
	{ActionSinglePlus, singlePlusRE, func([]string) int { return 1 }},
	{ActionSingleMinus, singleMinusRE, func([]string) int { return -1 }},
}

// ParseMessage scans free text for a point-change suffix. Text matching no
// rule returns an ActionNone and is ignored by callers.
func ParseMessage(text string) Action {
	for _, rule := range pointRules {
		match := rule.re.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		return Action{
			Kind:  rule.kind,
			Users: Mentions(text),
			Delta: rule.delta(match),
		}
	}

	return Action{Kind: ActionNone}
}

// Mentions extracts every user ID embedded in the text as <@USERID> or
// <@USERID|label> markup.
func Mentions(text string) []string {
	var users []string
	for _, match := range allUsersRE.FindAllStringSubmatch(text, -1) {
		users = append(users, match[1])
	}
	return users
}
