// Package api contains the HTTP contract of the distress scoring service.
// Version v1 represents the current stable API version.
package api

import (
	"distresscli/pkg/contracts"
	"distresscli/pkg/contracts/domain"
)

// BatchScoreRequest scores several entities in one call
type BatchScoreRequest struct {
	Sets []domain.StatementSet `json:"sets"`
}

// BatchScoreResponse holds one report per requested set, in request order
type BatchScoreResponse struct {
	Reports []domain.DistressReport `json:"reports"`
	Summary BatchSummary            `json:"summary"`
}

// BatchSummary aggregates a batch response
type BatchSummary struct {
	Total        int     `json:"total"`
	Scored       int     `json:"scored"`
	Insufficient int     `json:"insufficient"`
	MeanScore    float64 `json:"mean_score"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status         string                `json:"status"`
	Version        contracts.VersionInfo `json:"version"`
	AssessmentDate string                `json:"assessment_date"`
	Quarters       []string              `json:"quarters"`
}

// Summarize builds the batch summary of reports
func Summarize(reports []domain.DistressReport) BatchSummary {
	s := BatchSummary{Total: len(reports)}
	var sum float64
	for _, r := range reports {
		sum += r.DistressScore
		if r.Status == domain.ScoreStatusScored {
			s.Scored++
		} else {
			s.Insufficient++
		}
	}
	if len(reports) > 0 {
		s.MeanScore = sum / float64(len(reports))
	}
	return s
}
