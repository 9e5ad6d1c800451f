package filter

import (
	"fmt"
	"strings"
)

// MaxConditionsPerGroup is the maximum number of conditions per filter group.
const MaxConditionsPerGroup = 8

// Expression is an exact-match pre-filter with must/should boolean semantics.
// Every must condition has to hold, and at least one should condition when any are present.
type Expression struct {
	must   []Condition
	should []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must, should []Condition) (Expression, error) {
	if len(must) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(should) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many should conditions (max %d)", MaxConditionsPerGroup)
	}
	return Expression{must: must, should: should}, nil
}

// Must returns the must conditions.
func (e Expression) Must() []Condition { return e.must }

// Should returns the should conditions.
func (e Expression) Should() []Condition { return e.should }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.should) == 0
}

// String renders the expression for logs, e.g. "part_select_number=PS1 OR manufacturer_part_number=W1".
func (e Expression) String() string {
	if e.IsEmpty() {
		return "none"
	}
	parts := make([]string, 0, len(e.must)+1)
	for _, c := range e.must {
		parts = append(parts, c.String())
	}
	if len(e.should) > 0 {
		alts := make([]string, len(e.should))
		for i, c := range e.should {
			alts[i] = c.String()
		}
		parts = append(parts, strings.Join(alts, " OR "))
	}
	return strings.Join(parts, " AND ")
}

// Condition is an exact tag equality on one field.
type Condition struct {
	key   string
	value string
}

// NewMatch creates an exact tag match condition.
func NewMatch(key, value string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if value == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, value: value}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Value returns the literal the field must equal.
func (c Condition) Value() string { return c.value }

func (c Condition) String() string { return c.key + "=" + c.value }
