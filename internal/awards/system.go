package awards

import (
	"context"

	"github.com/google/uuid"

	"github.com/hollomancer/sbir-cet-classifier-sub001/pkg/pagination"
)

// System defines the public contract for award domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Award], error)

	Find(ctx context.Context, id uuid.UUID) (*Award, error)
	FindMany(ctx context.Context, ids []uuid.UUID) ([]Award, error)
	Create(ctx context.Context, cmd CreateCommand) (*Award, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
