package bot

import (
	"reflect"
	"testing"
)

func TestParseMessage(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		expected Action
	}{
		{
			"multi plus awards N to every mention",
			"<@U1> <@U2> 3+",
			Action{Kind: ActionMultiPlus, Users: []string{"U1", "U2"}, Delta: 3},
		},
		{
			"multi minus deducts N from every mention",
			"<@U1> <@U2> 3-",
			Action{Kind: ActionMultiMinus, Users: []string{"U1", "U2"}, Delta: -3},
		},
		{
			"single plus awards one",
			"<@U1> ++",
			Action{Kind: ActionSinglePlus, Users: []string{"U1"}, Delta: 1},
		},
		{
			"single minus deducts one",
			"<@U1>--",
			Action{Kind: ActionSingleMinus, Users: []string{"U1"}, Delta: -1},
		},
		{
			"mention labels are stripped",
			"great job <@U1|bob> 2+",
			Action{Kind: ActionMultiPlus, Users: []string{"U1"}, Delta: 2},
		},
		{
			"multi plus outranks single minus",
			"<@U1> 2+ and <@U2> --",
			Action{Kind: ActionMultiPlus, Users: []string{"U1", "U2"}, Delta: 2},
		},
		{
			"no suffix means no action",
			"hello <@U1>, how are you?",
			Action{Kind: ActionNone},
		},
		{
			"plain text is ignored",
			"donuts tomorrow?",
			Action{Kind: ActionNone},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			action := ParseMessage(tc.text)
			if !reflect.DeepEqual(action, tc.expected) {
				t.Errorf("expected: %#v\nactual:%#v", tc.expected, action)
			}
		})
	}
}

func TestMentions(t *testing.T) {
	users := Mentions("<@U1> then <@U2|display> and no more")
	expected := []string{"U1", "U2"}
	if !reflect.DeepEqual(users, expected) {
		t.Errorf("expected: %v\nactual:%v", expected, users)
	}

	if got := Mentions("nothing here"); got != nil {
		t.Errorf("expected no mentions, got %v", got)
	}
}
