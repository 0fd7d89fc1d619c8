package item

import (
	"regexp"
	"strings"
)

// timePattern matches clock-like fragments such as "3pm", "10am", or "9:".
var timePattern = regexp.MustCompile(`\d{1,2}(am|pm|:)`)

// guessRule pairs a content predicate with the category it implies.
type guessRule struct {
	match    func(content string) bool
	category Category
}

// guessRules is evaluated top-down; the first match wins. Order matters:
// contact cues outrank bill cues outrank event cues outrank thought cues.
var guessRules = []guessRule{
	{containsAny("@", "email", "call", "contact"), CategoryContact},
	{containsAny("pay", "bill", "$"), CategoryBill},
	{func(c string) bool {
		return strings.Contains(c, "meeting") || strings.Contains(c, "event") || timePattern.MatchString(c)
	}, CategoryEvent},
	{containsAny("?", "idea", "think"), CategoryThought},
}

func containsAny(subs ...string) func(string) bool {
	return func(content string) bool {
		for _, s := range subs {
			if strings.Contains(content, s) {
				return true
			}
		}
		return false
	}
}

// GuessCategory scans lower-cased content against the ordered rule list
// and returns the first matching category, falling back to todo.
func GuessCategory(content string) Category {
	c := strings.ToLower(content)
	for _, rule := range guessRules {
		if rule.match(c) {
			return rule.category
		}
	}
	return CategoryTodo
}
