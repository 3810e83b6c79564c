package signalgrid

import "fmt"

// Quantity selects which significance of a Result drives a contour.
type Quantity int

const (
	Observed Quantity = iota
	ObservedUp
	ObservedDown
	Expected
	ExpectedUp
	ExpectedDown
)

// Quantities lists every contour quantity in drawing order.
var Quantities = []Quantity{Observed, ObservedUp, ObservedDown, Expected, ExpectedUp, ExpectedDown}

var quantityNames = [...]string{"obs", "obsUp", "obsDn", "exp", "expUp", "expDn"}

func (q Quantity) String() string {
	if q < 0 || int(q) >= len(quantityNames) {
		return fmt.Sprintf("Quantity(%d)", int(q))
	}
	return quantityNames[q]
}

// Display selects the per-point number printed on a limit plot.
type Display int

const (
	DisplayNone Display = iota
	DisplayExpectedCLs
	DisplayObservedCLs
	DisplayExpectedSig
	DisplayObservedSig
)

var displayNames = [...]string{"", "expCLs", "obsCLs", "expSig", "obsSig"}

func (d Display) String() string {
	if d < 0 || int(d) >= len(displayNames) {
		return fmt.Sprintf("Display(%d)", int(d))
	}
	return displayNames[d]
}

// Title is the axis caption describing the printed numbers.
func (d Display) Title() string {
	switch d {
	case DisplayExpectedCLs:
		return "Numbers give the expected CLs values"
	case DisplayObservedCLs:
		return "Numbers give the observed CLs values"
	case DisplayExpectedSig:
		return "Numbers give the expected Significance"
	case DisplayObservedSig:
		return "Numbers give the observed Significance"
	}
	return ""
}

// ParseDisplay accepts "", "none" or one of expCLs, obsCLs, expSig, obsSig.
func ParseDisplay(s string) (Display, error) {
	if s == "none" {
		return DisplayNone, nil
	}
	for i, name := range displayNames {
		if s == name {
			return Display(i), nil
		}
	}
	return DisplayNone, fmt.Errorf("unknown value display %q (want none, expCLs, obsCLs, expSig or obsSig)", s)
}
