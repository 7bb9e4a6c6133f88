package repository

import (
	"context"

	"opentrainer/plan-service/internal/domain"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("plan record not found")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// PlanRepository defines the interface for interacting with plan records,
// keyed by (userId, planId).
type PlanRepository interface {
	// Put upserts the record, stamping UpdatedAt (and CreatedAt when absent).
	Put(ctx context.Context, record *domain.PlanRecord) error
	GetByKey(ctx context.Context, userID, planID string) (*domain.PlanRecord, error)
	// QueryByUserID returns all records in the user's partition, newest first.
	QueryByUserID(ctx context.Context, userID string) ([]domain.PlanRecord, error)
	DeleteByKey(ctx context.Context, userID, planID string) error
}
