package main

import (
	"time"

	"github.com/shinyyama/trace-green-backend/internal/emission"
	"github.com/shinyyama/trace-green-backend/internal/model"
)

type catalog struct {
	badges     []model.Badge
	challenges []model.Challenge
	rewards    []model.Reward
	articles   []model.Article
}

func strPtr(s string) *string { return &s }

func intPtr(v int) *int { return &v }

func defaultCatalog() catalog {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	published := now

	badge := func(name, desc string, kind model.CriteriaKind, threshold float64, category *string) model.Badge {
		return model.Badge{
			Name:        name,
			Description: desc,
			Criteria:    model.BadgeCriteria{Kind: kind, Threshold: threshold, Category: category},
			Active:      true,
		}
	}

	return catalog{
		badges: []model.Badge{
			badge("First Step", "Log your first activity.", model.CriteriaActivityCount, 1, nil),
			badge("Habit Builder", "Log 50 activities.", model.CriteriaActivityCount, 50, nil),
			badge("Week Warrior", "Keep a 7 day logging streak.", model.CriteriaStreakDays, 7, nil),
			badge("Month Master", "Keep a 30 day logging streak.", model.CriteriaStreakDays, 30, nil),
			badge("Point Collector", "Earn 500 points.", model.CriteriaTotalPoints, 500, nil),
			badge("Carbon Aware", "Track 100 kg of CO2e.", model.CriteriaCarbonLoggedKg, 100, nil),
			badge("Commuter", "Log 20 transportation activities.", model.CriteriaCategoryCount, 20, strPtr(string(emission.CategoryTransportation))),
			badge("Mindful Eater", "Log 20 food activities.", model.CriteriaCategoryCount, 20, strPtr(string(emission.CategoryFood))),
		},
		challenges: []model.Challenge{
			{
				Title:        "Log every day this month",
				Description:  "Build a 14 day logging streak before the month ends.",
				Rule:         model.ChallengeRule{Kind: model.RuleStreakDays, Target: 14},
				RewardPoints: 150,
				StartsAt:     start,
				EndsAt:       end,
				Active:       true,
			},
			{
				Title:        "Track your commute",
				Description:  "Log 10 transportation activities this month.",
				Rule:         model.ChallengeRule{Kind: model.RuleActivityCount, Category: strPtr(string(emission.CategoryTransportation)), Target: 10},
				RewardPoints: 100,
				StartsAt:     start,
				EndsAt:       end,
				Active:       true,
			},
		},
		rewards: []model.Reward{
			{Name: "Tree planting donation", Description: "We plant one tree on your behalf.", CostPoints: 200, Active: true},
			{Name: "Reusable tote bag", Description: "Organic cotton tote bag.", CostPoints: 300, Stock: intPtr(100), Active: true},
			{Name: "Stainless steel bottle", Description: "Insulated 500 ml bottle.", CostPoints: 600, Stock: intPtr(50), Active: true},
		},
		articles: []model.Article{
			{
				Title:       "Five easy ways to cut commute emissions",
				Summary:     "Small changes to how you travel add up quickly.",
				Body:        "Combine errands into one trip, try cycling for short distances, use public transport on busy days, car-pool with colleagues, and keep your tyres properly inflated.",
				Category:    strPtr(string(emission.CategoryTransportation)),
				Published:   true,
				PublishedAt: &published,
			},
			{
				Title:       "What your plate is worth in CO2",
				Summary:     "Red meat dominates most food footprints.",
				Body:        "Beef and lamb carry several times the footprint of poultry, and plant proteins sit far below both. Swapping two red meat meals a week is one of the largest single cuts most people can make.",
				Category:    strPtr(string(emission.CategoryFood)),
				Published:   true,
				PublishedAt: &published,
			},
			{
				Title:       "Standby power and the home energy bill",
				Summary:     "Devices left on standby draw power around the clock.",
				Body:        "Use switchable power strips for entertainment and office equipment, lower the thermostat by one degree, and wash laundry at 30 degrees.",
				Category:    strPtr(string(emission.CategoryEnergy)),
				Published:   true,
				PublishedAt: &published,
			},
		},
	}
}
