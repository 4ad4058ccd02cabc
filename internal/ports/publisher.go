package ports

import (
	"context"

	"github.com/alexisbeaulieu97/snippetrunner/internal/domain/execution"
)

// VerdictPublisher ships test reports to an external system once a verdict is
// produced. Failures are reported to the caller but never change the verdict.
type VerdictPublisher interface {
	PublishReport(ctx context.Context, report execution.TestReport) error
	Close() error
}
