package gemini

import "strings"

// engagementWords are surface features that correlate with click-through
// in the title heuristics this service scores against.
var engagementWords = []string{
	"secret", "mistake", "truth", "hack", "power", "insane", "crazy",
}

// ViralScore rates a title in [50,100] from surface features: a digit,
// a punchy length, emotional punctuation, and high-engagement keywords
// each add 10 points on a base of 50.
func ViralScore(title string) int {
	score := 50

	if strings.ContainsAny(title, "0123456789") {
		score += 10
	}
	if n := len(title); n > 0 && n < 60 {
		score += 10
	}
	if strings.ContainsAny(title, "!?") {
		score += 10
	}
	lower := strings.ToLower(title)
	for _, w := range engagementWords {
		if strings.Contains(lower, w) {
			score += 10
			break
		}
	}

	if score > 100 {
		score = 100
	}
	return score
}
