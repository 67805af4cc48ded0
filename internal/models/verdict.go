package models

import (
	"fmt"
)

// Verdict is the reviewer's judgment of one label
type Verdict int

const (
	Perfect          Verdict = 1
	NeedsImprovement Verdict = 2
	Wrong            Verdict = 3
)

// Verdicts lists every valid verdict in key order
var Verdicts = []Verdict{Perfect, NeedsImprovement, Wrong}

// Valid reports whether v is one of the three verdict codes
func (v Verdict) Valid() bool {
	return v >= Perfect && v <= Wrong
}

func (v Verdict) String() string {
	switch v {
	case Perfect:
		return "Perfect!"
	case NeedsImprovement:
		return "Needs improvement"
	case Wrong:
		return "Wrong!"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

// Key returns the keyboard rune bound to the verdict
func (v Verdict) Key() rune {
	return rune('0' + int(v))
}

// VerdictForKey maps a typed rune back to a verdict
func VerdictForKey(r rune) (Verdict, bool) {
	v := Verdict(r - '0')
	return v, v.Valid()
}
