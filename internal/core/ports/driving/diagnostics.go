package driving

import (
	"context"

	"github.com/publicintelligence/datahub/internal/core/domain"
)

// DiagnosticsService checks connectivity to the configured source.
type DiagnosticsService interface {
	CheckSource(ctx context.Context) (*domain.ConnectionReport, error)
}
