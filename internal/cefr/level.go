// Package cefr models the Common European Framework of Reference proficiency scale.
package cefr

import (
	"fmt"
	"strings"
)

// Level is a CEFR proficiency level. The underlying value is its ordinal.
type Level int

const (
	// Unknown marks a word absent from the vocabulary. It is only ever flagged
	// under the "flag" unknown-word policy and never used as a threshold.
	Unknown Level = 0
	A1      Level = 1
	A2      Level = 2
	B1      Level = 3
	B2      Level = 4
	C1      Level = 5
	C2      Level = 6
)

var names = map[Level]string{
	A1: "A1",
	A2: "A2",
	B1: "B1",
	B2: "B2",
	C1: "C1",
	C2: "C2",
}

// All returns the scale in ascending order.
func All() []Level {
	return []Level{A1, A2, B1, B2, C1, C2}
}

// Ordinal returns the fixed position of the level on the scale.
func (l Level) Ordinal() int {
	return int(l)
}

// Valid reports whether l is one of A1..C2.
func (l Level) Valid() bool {
	return l >= A1 && l <= C2
}

// Above reports whether l is strictly harder than threshold.
func (l Level) Above(threshold Level) bool {
	return l.Ordinal() > threshold.Ordinal()
}

func (l Level) String() string {
	if name, ok := names[l]; ok {
		return name
	}
	if l == Unknown {
		return "unknown"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Parse accepts "A1".."C2" in any case.
func Parse(s string) (Level, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	for lvl, name := range names {
		if name == key {
			return lvl, nil
		}
	}
	return Unknown, fmt.Errorf("invalid CEFR level %q (must be one of A1, A2, B1, B2, C1, C2)", s)
}

// MustParse is Parse for constants; it panics on invalid input.
func MustParse(s string) Level {
	lvl, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return lvl
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(b []byte) error {
	lvl, err := Parse(string(b))
	if err != nil {
		return err
	}
	*l = lvl
	return nil
}

// Description returns a short learner-facing label for the level.
func (l Level) Description() string {
	switch l {
	case A1:
		return "Beginner"
	case A2:
		return "Elementary"
	case B1:
		return "Intermediate"
	case B2:
		return "Upper intermediate"
	case C1:
		return "Advanced"
	case C2:
		return "Proficient"
	default:
		return ""
	}
}
