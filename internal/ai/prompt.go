package ai

import (
	"fmt"
	"strings"

	"github.com/shinyyama/trace-green-backend/internal/footprint"
)

const tipPrompt = `You are a coach helping a person lower their personal carbon footprint.
Given their logged emissions by category, reply with exactly one practical tip.

Rules:
* One sentence, at most 200 characters.
* Focus on the category with the largest share.
* No greetings, no lists, no markdown, no numbers you were not given.`

func buildTipPrompt(s footprint.Summary) string {
	var b strings.Builder
	b.WriteString(tipPrompt)
	fmt.Fprintf(&b, "\n\nWindow: last %d day(s). Total: %.2f kg CO2e. Daily average: %.2f kg CO2e.\n",
		s.Days, s.TotalKg, s.DailyAverageKg)
	for _, sh := range s.Shares {
		fmt.Fprintf(&b, "- %s: %.2f kg (%.1f%%)\n", sh.Category, sh.TotalKg, sh.Percent)
	}
	return b.String()
}
