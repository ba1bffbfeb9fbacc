package domain

import (
	"errors"
	"fmt"

	"github.com/solport/devportal/pkg/domain/usage"
)

var (
	ErrInvalidAPIKey   = errors.New("invalid api key")
	ErrRevokedAPIKey   = errors.New("api key is revoked")
	ErrInvalidWallet   = errors.New("invalid wallet address")
	ErrJobAlreadyRuns  = errors.New("job is already running")
	ErrUnknownJobName  = errors.New("unknown job name")
	ErrProgramExists   = errors.New("program with this address already exists")
	ErrProjectExists   = errors.New("project with this name already exists")
	ErrInvalidDateSpan = errors.New("invalid date range, 'from' must not be after 'to'")
)

type notFoundError struct {
	EntityType string
	ID         string
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.EntityType, e.ID)
}

func NewNotFoundError(entityType string, id string) error {
	return &notFoundError{
		EntityType: entityType,
		ID:         id,
	}
}

func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var notFoundError *notFoundError
	return errors.As(err, &notFoundError)
}

// AdmissionDeniedError is returned when a request falls outside the
// configured rate-limit policy. It carries the full decision so the
// transport layer can tell the caller exactly which ceiling was hit.
type AdmissionDeniedError struct {
	Decision usage.Decision
}

func (e *AdmissionDeniedError) Error() string {
	switch e.Decision.Reason {
	case usage.DenialPerRequest:
		return fmt.Sprintf("requested %s SOL exceeds the %s SOL per-request limit",
			usage.LamportsToSol(e.Decision.RequestedLamports),
			usage.LamportsToSol(e.Decision.MaxLamportsPerRequest))
	case usage.DenialDailyRequests:
		return fmt.Sprintf("daily request limit reached (%d of %d used)",
			e.Decision.DailyRequestsUsed, e.Decision.DailyRequestLimit)
	case usage.DenialDailyVolume:
		return fmt.Sprintf("daily volume limit reached (%s of %s SOL used)",
			usage.LamportsToSol(e.Decision.DailyLamportsUsed),
			usage.LamportsToSol(e.Decision.DailyLamportsLimit))
	default:
		return "request denied by rate limit policy"
	}
}

func IsAdmissionDenied(err error) (*AdmissionDeniedError, bool) {
	var denied *AdmissionDeniedError
	if errors.As(err, &denied) {
		return denied, true
	}
	return nil, false
}
