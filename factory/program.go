/*
Package factory provides JSON to rewards-program conversion.

PURPOSE:
  Converts JSON program definitions into rewards.Rules and catalog
  entries. This enables program configuration without code changes -
  museum staff can tune thresholds and the reward catalog in JSON, and
  the factory builds validated engine rules from it.

WHY JSON?
  - Non-developers can adjust award tables
  - Easy integration with an admin UI
  - Version control for program definitions
  - Database storage of program configs

JSON SCHEMA:
  {
    "name": "MuseMap Rewards",
    "score_awards":     [{"min_score": 90, "points": 100}, ...],
    "visit_awards":     [{"min_visits": 20, "points": 200}, ...],
    "badge_thresholds": [{"min_score": 90, "level": "gold"}, ...],
    "tier_thresholds":  [{"min_points": 1000, "tier": "gold"}, ...],
    "catalog":          [{"id": "poster", "name": "...", "point_cost": 150}]
  }

VALIDATION:
  - every threshold column strictly decreasing top-down (highest first)
  - all awards and costs non-negative
  - score thresholds within [0, 100]
  - tier table must bottom out at 0 points

USAGE:
  f := factory.NewProgramFactory()
  program, err := f.ParseProgram(jsonString)
  rules := program.Rules

SEE ALSO:
  - rewards/rules.go: the Rules type this factory builds
  - api/handlers.go: loads the program at startup
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/RajaShylesh112/musemap-sub000/rewards"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ProgramJSON is the JSON representation of a rewards program.
type ProgramJSON struct {
	Name            string               `json:"name"`
	ScoreAwards     []ScoreAwardJSON     `json:"score_awards"`
	VisitAwards     []VisitAwardJSON     `json:"visit_awards"`
	BadgeThresholds []BadgeThresholdJSON `json:"badge_thresholds"`
	TierThresholds  []TierThresholdJSON  `json:"tier_thresholds"`
	Catalog         []RewardJSON         `json:"catalog,omitempty"`
}

type ScoreAwardJSON struct {
	MinScore float64 `json:"min_score"`
	Points   int64   `json:"points"`
}

type VisitAwardJSON struct {
	MinVisits int   `json:"min_visits"`
	Points    int64 `json:"points"`
}

type BadgeThresholdJSON struct {
	MinScore float64 `json:"min_score"`
	Level    string  `json:"level"`
}

type TierThresholdJSON struct {
	MinPoints int64  `json:"min_points"`
	Tier      string `json:"tier"`
}

type RewardJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PointCost   int64  `json:"point_cost"`
}

// Program is a parsed, validated rewards program.
type Program struct {
	Name    string
	Rules   rewards.Rules
	Catalog []rewards.Reward
}

// =============================================================================
// PROGRAM FACTORY
// =============================================================================

type ProgramFactory struct{}

func NewProgramFactory() *ProgramFactory {
	return &ProgramFactory{}
}

// ParseProgram converts a JSON program definition into validated rules
// and catalog entries.
func (f *ProgramFactory) ParseProgram(jsonStr string) (*Program, error) {
	var pj ProgramJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return nil, fmt.Errorf("invalid program JSON: %w", err)
	}
	return f.buildProgram(pj)
}

func (f *ProgramFactory) buildProgram(pj ProgramJSON) (*Program, error) {
	rules := rewards.Rules{}

	prevScore := 101.0
	for i, row := range pj.ScoreAwards {
		if row.MinScore < 0 || row.MinScore > 100 {
			return nil, fmt.Errorf("score_awards[%d]: min_score %v outside [0, 100]", i, row.MinScore)
		}
		if row.MinScore >= prevScore {
			return nil, fmt.Errorf("score_awards[%d]: thresholds must be strictly decreasing", i)
		}
		if row.Points < 0 {
			return nil, fmt.Errorf("score_awards[%d]: negative award", i)
		}
		prevScore = row.MinScore
		rules.ScoreAwards = append(rules.ScoreAwards, rewards.ScoreAward{
			MinScore: decimal.NewFromFloat(row.MinScore),
			Points:   rewards.Points(row.Points),
		})
	}

	prevVisits := 1 << 30
	for i, row := range pj.VisitAwards {
		if row.MinVisits <= 0 {
			return nil, fmt.Errorf("visit_awards[%d]: min_visits must be positive", i)
		}
		if row.MinVisits >= prevVisits {
			return nil, fmt.Errorf("visit_awards[%d]: thresholds must be strictly decreasing", i)
		}
		if row.Points < 0 {
			return nil, fmt.Errorf("visit_awards[%d]: negative award", i)
		}
		prevVisits = row.MinVisits
		rules.VisitAwards = append(rules.VisitAwards, rewards.VisitAward{
			MinVisits: row.MinVisits,
			Points:    rewards.Points(row.Points),
		})
	}

	prevBadge := 101.0
	for i, row := range pj.BadgeThresholds {
		level, err := parseBadgeLevel(row.Level)
		if err != nil {
			return nil, fmt.Errorf("badge_thresholds[%d]: %w", i, err)
		}
		if row.MinScore < 0 || row.MinScore > 100 {
			return nil, fmt.Errorf("badge_thresholds[%d]: min_score %v outside [0, 100]", i, row.MinScore)
		}
		if row.MinScore >= prevBadge {
			return nil, fmt.Errorf("badge_thresholds[%d]: thresholds must be strictly decreasing", i)
		}
		prevBadge = row.MinScore
		rules.BadgeThresholds = append(rules.BadgeThresholds, rewards.BadgeThreshold{
			MinScore: decimal.NewFromFloat(row.MinScore),
			Level:    level,
		})
	}

	if len(pj.TierThresholds) == 0 {
		return nil, fmt.Errorf("tier_thresholds: at least one tier required")
	}
	prevTier := int64(1) << 60
	for i, row := range pj.TierThresholds {
		tier, err := parseTier(row.Tier)
		if err != nil {
			return nil, fmt.Errorf("tier_thresholds[%d]: %w", i, err)
		}
		if row.MinPoints < 0 {
			return nil, fmt.Errorf("tier_thresholds[%d]: negative threshold", i)
		}
		if row.MinPoints >= prevTier {
			return nil, fmt.Errorf("tier_thresholds[%d]: thresholds must be strictly decreasing", i)
		}
		prevTier = row.MinPoints
		rules.TierThresholds = append(rules.TierThresholds, rewards.TierThreshold{
			MinPoints: rewards.Points(row.MinPoints),
			Tier:      tier,
		})
	}
	if rules.TierThresholds[len(rules.TierThresholds)-1].MinPoints != 0 {
		return nil, fmt.Errorf("tier_thresholds: lowest tier must start at 0 points")
	}

	var catalog []rewards.Reward
	seen := map[string]bool{}
	for i, row := range pj.Catalog {
		if row.ID == "" {
			return nil, fmt.Errorf("catalog[%d]: missing id", i)
		}
		if seen[row.ID] {
			return nil, fmt.Errorf("catalog[%d]: duplicate id %q", i, row.ID)
		}
		if row.PointCost < 0 {
			return nil, fmt.Errorf("catalog[%d]: negative point_cost", i)
		}
		seen[row.ID] = true
		catalog = append(catalog, rewards.Reward{
			ID:          row.ID,
			Name:        row.Name,
			Description: row.Description,
			PointCost:   rewards.Points(row.PointCost),
		})
	}

	return &Program{Name: pj.Name, Rules: rules, Catalog: catalog}, nil
}

func parseBadgeLevel(s string) (rewards.BadgeLevel, error) {
	switch s {
	case "bronze":
		return rewards.BadgeBronze, nil
	case "silver":
		return rewards.BadgeSilver, nil
	case "gold":
		return rewards.BadgeGold, nil
	default:
		return rewards.BadgeNone, fmt.Errorf("unknown badge level %q", s)
	}
}

func parseTier(s string) (rewards.Tier, error) {
	switch s {
	case "none":
		return rewards.TierNone, nil
	case "bronze":
		return rewards.TierBronze, nil
	case "silver":
		return rewards.TierSilver, nil
	case "gold":
		return rewards.TierGold, nil
	default:
		return rewards.TierNone, fmt.Errorf("unknown tier %q", s)
	}
}

// =============================================================================
// DEFAULT PROGRAM
// =============================================================================

// DefaultProgramJSON returns the production MuseMap program definition.
func DefaultProgramJSON() string {
	return `{
		"name": "MuseMap Rewards",
		"score_awards": [
			{"min_score": 90, "points": 100},
			{"min_score": 80, "points": 60},
			{"min_score": 60, "points": 30}
		],
		"visit_awards": [
			{"min_visits": 20, "points": 200},
			{"min_visits": 10, "points": 100},
			{"min_visits": 5, "points": 50}
		],
		"badge_thresholds": [
			{"min_score": 90, "level": "gold"},
			{"min_score": 80, "level": "silver"},
			{"min_score": 60, "level": "bronze"}
		],
		"tier_thresholds": [
			{"min_points": 1000, "tier": "gold"},
			{"min_points": 500, "tier": "silver"},
			{"min_points": 250, "tier": "bronze"},
			{"min_points": 0, "tier": "none"}
		],
		"catalog": [
			{"id": "guided-tour", "name": "Private Guided Tour", "description": "One-hour guided tour for two", "point_cost": 400},
			{"id": "gift-poster", "name": "Exhibition Poster", "description": "Limited print from the current exhibition", "point_cost": 150},
			{"id": "cafe-voucher", "name": "Museum Cafe Voucher", "description": "Coffee and cake for one visit", "point_cost": 50},
			{"id": "annual-pass", "name": "Annual Pass", "description": "Twelve months of unlimited visits", "point_cost": 1000}
		]
	}`
}
