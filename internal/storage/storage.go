package storage

import (
	"context"
	"time"

	"opentrainer/plan-service/internal/domain"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// PlanArchive defines the interface for archiving full generated-plan
// documents in object storage. The metadata store only keeps summary fields;
// the complete weekly schedule lives here.
type PlanArchive interface {
	// Store writes the full plan document and returns its object key.
	Store(ctx context.Context, plan *domain.GeneratedPlan) (string, error)

	// PresignedScheduleURL creates a temporary URL that allows GET requests
	// for reading an archived plan document directly from the storage provider.
	PresignedScheduleURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an archived plan document.
	DeleteObject(ctx context.Context, objectKey string) error
}
