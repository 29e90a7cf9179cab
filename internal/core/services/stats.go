package services

import "github.com/publicintelligence/datahub/internal/core/domain"

// ComputeStats counts the records, and splits them into featured and external.
func ComputeStats(records []domain.Dataset) domain.Stats {
	stats := domain.Stats{Total: len(records)}
	for i := range records {
		if records[i].IsFeatured() {
			stats.Featured++
		}
	}
	stats.External = stats.Total - stats.Featured
	return stats
}
