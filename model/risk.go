package model

import (
	"fmt"
	"strings"
)

// RiskLevel is the qualitative risk assessment of an analyzed document
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// MinRiskScore and MaxRiskScore bound every stored risk score.
const (
	MinRiskScore = 0
	MaxRiskScore = 100
)

// RiskBand describes the score range a level represents on screen
type RiskBand struct {
	Level          RiskLevel `json:"level"`
	Min            int       `json:"min"`
	Max            int       `json:"max"`
	Representative int       `json:"score"`
}

var riskBands = []RiskBand{
	{Level: RiskLow, Min: 0, Max: 49},
	{Level: RiskMedium, Min: 50, Max: 79},
	{Level: RiskHigh, Min: 80, Max: 100},
}

var representativeScores = map[RiskLevel]int{
	RiskLow:    30,
	RiskMedium: 65,
	RiskHigh:   90,
}

// RiskBands returns the banding table, lowest band first
func RiskBands() []RiskBand {
	out := make([]RiskBand, len(riskBands))
	copy(out, riskBands)
	for i := range out {
		out[i].Representative = RepresentativeScore(out[i].Level)
	}
	return out
}

// ParseRiskLevel accepts a level in any letter case
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch RiskLevel(strings.ToLower(strings.TrimSpace(s))) {
	case RiskLow:
		return RiskLow, nil
	case RiskMedium:
		return RiskMedium, nil
	case RiskHigh:
		return RiskHigh, nil
	}
	return "", fmt.Errorf("unknown risk level %q", s)
}

// Valid reports whether l is one of the three known levels
func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// RepresentativeScore is the score shown for a level when no numeric score
// is known. Unknown levels score 0.
func RepresentativeScore(level RiskLevel) int {
	return representativeScores[level]
}

// LevelForScore maps a score onto its display band. Scores below the range
// are low and scores above it are high.
//
// Analysis results are never rewritten through here: the level the AI
// returns is stored as-is even when it disagrees with the score.
func LevelForScore(score int) RiskLevel {
	for _, b := range riskBands {
		if score <= b.Max {
			return b.Level
		}
	}
	return RiskHigh
}

// ValidScore reports whether score lies within [0,100]
func ValidScore(score int) bool {
	return score >= MinRiskScore && score <= MaxRiskScore
}
