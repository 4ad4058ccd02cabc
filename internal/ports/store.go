package ports

import (
	"context"

	"github.com/alexisbeaulieu97/snippetrunner/internal/domain/execution"
)

// ProgramStore fetches stored programs and test fixtures on behalf of a caller.
// The credential is passed through untouched. Error mapping expectations:
//   - the store refusing the credential → execution.ErrCodeUnauthorized
//   - any other failure (missing id, transport, decoding) → execution.ErrCodeNotFound
//
// Fetches are never retried.
type ProgramStore interface {
	FetchProgram(ctx context.Context, programID, credential string) (execution.Program, error)
	FetchTestCase(ctx context.Context, testID, credential string) (execution.TestCase, error)
}
