package assessments

import (
	"context"

	"github.com/google/uuid"

	"github.com/hollomancer/sbir-cet-classifier-sub001/pkg/pagination"
)

// System defines the public contract for assessment operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Assessment], error)

	Find(ctx context.Context, id uuid.UUID) (*Assessment, error)

	// History returns every stored assessment for the award, newest
	// catalog version first.
	History(ctx context.Context, awardID uuid.UUID) ([]Assessment, error)

	// Assess classifies one award and persists the result. Re-assessing
	// the same (award, catalog version) pair refreshes the existing row;
	// a different catalog version appends a new one.
	Assess(ctx context.Context, cmd AssessCommand) (*Assessment, error)

	// AssessBatch classifies many awards under one catalog version.
	// Individual failures are reported in the result, never aborting the
	// rest of the batch.
	AssessBatch(ctx context.Context, cmd BatchCommand) (*BatchResult, error)
}
