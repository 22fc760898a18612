package ai

import (
	"context"

	"github.com/shinyyama/trace-green-backend/internal/emission"
	"github.com/shinyyama/trace-green-backend/internal/footprint"
)

var staticTips = map[emission.Category]string{
	emission.CategoryTransportation: "Replace one short car trip this week with walking, cycling or the bus.",
	emission.CategoryEnergy:         "Lower the thermostat by one degree and switch off standby devices at night.",
	emission.CategoryFood:           "Try a plant-based lunch on two days this week; beef has the largest footprint per kilogram.",
	emission.CategoryWaste:          "Separate recyclables and compost food scraps instead of sending them to landfill.",
}

const genericTip = "Log a few activities to get a tip tailored to your footprint."

// StaticTipClient suggests a fixed tip for the largest category.
type StaticTipClient struct{}

func (StaticTipClient) Suggest(_ context.Context, s footprint.Summary) Tip {
	cat, ok := s.TopCategory()
	if !ok {
		return Tip{Text: genericTip, Source: "static"}
	}
	return Tip{Text: staticTips[cat], Category: cat, Source: "static"}
}
