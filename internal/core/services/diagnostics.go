package services

import (
	"context"
	"fmt"

	"github.com/publicintelligence/datahub/internal/core/domain"
	"github.com/publicintelligence/datahub/internal/core/ports/driven"
	"github.com/publicintelligence/datahub/internal/core/ports/driving"
	"github.com/publicintelligence/datahub/internal/logger"
)

// Ensure DiagnosticsService implements the interface.
var _ driving.DiagnosticsService = (*DiagnosticsService)(nil)

// DiagnosticsService probes the configured source.
type DiagnosticsService struct {
	checker driven.ConnectionChecker
}

// NewDiagnosticsService creates a diagnostics service. checker may be nil
// for sources that cannot be probed.
func NewDiagnosticsService(checker driven.ConnectionChecker) *DiagnosticsService {
	return &DiagnosticsService{checker: checker}
}

// CheckSource runs the source's connection check.
func (s *DiagnosticsService) CheckSource(ctx context.Context) (*domain.ConnectionReport, error) {
	logger.Section("Connection Check")
	if s.checker == nil {
		return nil, fmt.Errorf("source cannot be checked: %w", domain.ErrNotConfigured)
	}
	report, err := s.checker.Check(ctx)
	if err != nil {
		return nil, fmt.Errorf("check source: %w", err)
	}
	logger.Debug("%s reachable, %d records", report.Target, report.Records)
	return report, nil
}
