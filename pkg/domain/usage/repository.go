package usage

import (
	"context"
	"time"
)

//go:generate mockery --name=Repository --dir=. --output=./mocks --filename=usage_repository_mock.go --case=underscore --with-expecter
type Repository interface {
	UpsertTotal(ctx context.Context, total *UsageTotal) error
	UpsertArchive(ctx context.Context, record *ArchivedUsageRecord) error
	ListArchiveRange(ctx context.Context, domain, identity, fromDate, toDate string) ([]ArchivedUsageRecord, error)
	DeleteArchivesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
