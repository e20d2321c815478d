package service

import (
	"time"

	"readily-backend/models"
)

// AssembleReport aggregates per-question results into a report. Pure
// aggregation: an empty input produces an empty report, not an error.
func AssembleReport(results []models.ComplianceResult) *models.Report {
	if results == nil {
		results = []models.ComplianceResult{}
	}
	return &models.Report{
		Results:   results,
		CreatedAt: time.Now().UTC(),
	}
}
