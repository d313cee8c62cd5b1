// Package grade maps a tokens-per-line ratio to a letter grade.
package grade

// Letters, best first.
const (
	APlus = "A+"
	A     = "A"
	B     = "B"
	C     = "C"
	D     = "D"
)

// Grade is the presentation of a T/L ratio.
type Grade struct {
	Letter    string `json:"letter"`
	Color     string `json:"color"`
	URLLetter string `json:"url_letter"`
}

// String returns the letter.
func (g Grade) String() string {
	return g.Letter
}

type band struct {
	max   float64
	grade Grade
}

// bands use inclusive upper bounds.
var bands = []band{
	{5.0, Grade{APlus, "brightgreen", "A%2B"}},
	{7.0, Grade{A, "green", "A"}},
	{9.0, Grade{B, "blue", "B"}},
	{12.0, Grade{C, "orange", "C"}},
}

var lowest = Grade{D, "red", "D"}

// Of grades a tokens-per-line ratio.
func Of(ratio float64) Grade {
	for _, b := range bands {
		if ratio <= b.max {
			return b.grade
		}
	}
	return lowest
}

// Rank orders letters for threshold comparisons: A+ is 5, D is 1 and
// anything else is 0.
func Rank(letter string) int {
	switch letter {
	case APlus:
		return 5
	case A:
		return 4
	case B:
		return 3
	case C:
		return 2
	case D:
		return 1
	default:
		return 0
	}
}

// Valid reports whether letter is a known grade.
func Valid(letter string) bool {
	return Rank(letter) > 0
}

// Describe returns the one-line verdict shown under an audit.
func Describe(letter string) string {
	switch letter {
	case APlus:
		return "Excellent - extremely token-efficient"
	case A:
		return "Great - lean and concise code"
	case B:
		return "Good - some room for improvement"
	case C:
		return "Fair - consider running `cargo syntax fix`"
	default:
		return "Verbose - run `cargo syntax fix` to reduce tokens"
	}
}
