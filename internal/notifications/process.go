package notifications

import (
	"context"
	"errors"

	"reportnotifier/internal/types"
)

// ProcessGetter abstracts the process repository lookup.
type ProcessGetter interface {
	GetByName(ctx context.Context, name string) (*types.Process, error)
}

// ProcessService resolves a human-readable process name to its definition
// record. Lookups never fail upward: absence and store failures are logged
// and degrade to nil, leaving the caller to treat the message as terminal.
type ProcessService struct {
	repo   ProcessGetter
	logger types.Logger
}

// NewProcessService creates a ProcessService over the given repository.
func NewProcessService(repo ProcessGetter, logger types.Logger) *ProcessService {
	return &ProcessService{repo: repo, logger: logger}
}

// GetByName returns the process definition for the given name, or nil when
// no process matches or the store read fails.
func (s *ProcessService) GetByName(ctx context.Context, name string) *types.Process {
	process, err := s.repo.GetByName(ctx, name)
	if err != nil {
		var appErr *types.AppError
		if errors.As(err, &appErr) && appErr.Code == types.ErrCodeNotFoundProcess {
			s.logger.Error("process not found", "process_type", name)
		} else {
			s.logger.Error("process lookup failed",
				"process_type", name,
				"error", err.Error(),
			)
		}
		return nil
	}
	return process
}
