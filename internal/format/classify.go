package format

import "strings"

// Category is the cosmetic class of a link. It only selects colours and icons.
type Category string

const (
	CategoryMaps     Category = "maps"
	CategoryTickets  Category = "tickets"
	CategoryLocation Category = "location"
	CategoryGeneric  Category = "generic"
)

// Rule maps a set of URL substrings to a category.
type Rule struct {
	Category Category
	Keywords []string
}

// Classifier picks a link category by case-sensitive substring matching.
// Rules are checked in order and the first rule with a matching keyword wins.
type Classifier struct {
	rules []Rule
}

var defaultRules = []Rule{
	{Category: CategoryMaps, Keywords: []string{"maps", "location"}},
	{Category: CategoryTickets, Keywords: []string{"ticket", "book"}},
	{Category: CategoryLocation, Keywords: []string{"location", "reykjavik", "hella"}},
}

// NewClassifier copies the rules so later changes by the caller do not leak in.
func NewClassifier(rules ...Rule) Classifier {
	copied := make([]Rule, 0, len(rules))
	for _, r := range rules {
		copied = append(copied, Rule{
			Category: r.Category,
			Keywords: append([]string(nil), r.Keywords...),
		})
	}
	return Classifier{rules: copied}
}

// DefaultClassifier returns the keyword sets used by the Lava Show widget.
func DefaultClassifier() Classifier {
	return NewClassifier(defaultRules...)
}

// Rules returns a copy of the configured rules.
func (c Classifier) Rules() []Rule {
	return NewClassifier(c.rules...).rules
}

// Classify returns the category of url, or CategoryGeneric when no rule matches.
func (c Classifier) Classify(url string) Category {
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if kw != "" && strings.Contains(url, kw) {
				return r.Category
			}
		}
	}
	return CategoryGeneric
}

// Classify uses the default keyword sets.
func Classify(url string) Category {
	return DefaultClassifier().Classify(url)
}
