package scoring

import (
	"fmt"
	"strings"

	"MacroTilt/internal/domain/models"
)

var gdpDeclineWords = []string{
	"contraction", "contracting", "recession", "decline", "declining", "decrease",
	"falling", "negative", "shrinking", "slowing", "slowdown",
}

var gdpGrowthWords = []string{
	"growth", "growing", "expansion", "expanding", "increase", "rising",
	"accelerating", "strong", "positive", "recovery",
}

// ScoreGDP maps a textual GDP direction to +1, -1 or 0. Decline words are checked first so
// that phrases like "negative growth" read as a decline. There is no trend adjustment.
func ScoreGDP(r models.Reading) models.Score {
	if !r.OK {
		return models.NoDataScore()
	}
	text := strings.ToLower(strings.TrimSpace(r.Text))
	switch {
	case text == "":
		return models.Score{Value: 0, Description: "GDP direction unknown (Neutral)"}
	case containsAny(text, gdpDeclineWords):
		return models.Score{Value: -1, Description: fmt.Sprintf("GDP %q (Decline)", r.Text)}
	case containsAny(text, gdpGrowthWords):
		return models.Score{Value: 1, Description: fmt.Sprintf("GDP %q (Growth)", r.Text)}
	default:
		return models.Score{Value: 0, Description: fmt.Sprintf("GDP %q (Neutral)", r.Text)}
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
