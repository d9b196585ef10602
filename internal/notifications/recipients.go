package notifications

import (
	"context"
	"errors"

	"reportnotifier/internal/types"
)

// MembershipLister abstracts the user_process repository.
type MembershipLister interface {
	GetUserIDsForProcess(ctx context.Context, processID int) ([]int, error)
}

// EmailGetter abstracts the user repository email lookup. A nil
// institutionID matches by user id alone.
type EmailGetter interface {
	GetEmail(ctx context.Context, userID int, institutionID *int) (string, error)
}

// RecipientResolver resolves the deduplicated list of recipient addresses
// entitled to a process's notifications for one institution.
//
// Resolution is two-hop: membership rows first, then a per-user email fetch
// with the institution filter applied independently. The split is less
// efficient than a single join but isolates failure per recipient: one bad
// row skips that recipient instead of emptying the whole batch.
type RecipientResolver struct {
	memberships MembershipLister
	users       EmailGetter
	logger      types.Logger
}

// NewRecipientResolver creates a RecipientResolver over the given
// repositories.
func NewRecipientResolver(memberships MembershipLister, users EmailGetter, logger types.Logger) *RecipientResolver {
	return &RecipientResolver{
		memberships: memberships,
		users:       users,
		logger:      logger,
	}
}

// EmailsForProcess returns the emails of every membership whose user row
// also matches the institution filter, preserving membership order.
//
// It never fails upward: the result is an empty non-nil slice when the
// process has no memberships, the membership read fails, or every per-user
// lookup misses. An email can legitimately be missing when the membership
// points at a user under a different institution, or at a user row that no
// longer exists.
func (r *RecipientResolver) EmailsForProcess(ctx context.Context, processID int, institutionID int) []string {
	userIDs, err := r.memberships.GetUserIDsForProcess(ctx, processID)
	if err != nil {
		r.logger.Error("failed to load process memberships",
			"process_id", processID,
			"error", err.Error(),
		)
		return []string{}
	}

	emails := []string{}
	for _, userID := range userIDs {
		email, err := r.users.GetEmail(ctx, userID, &institutionID)
		if err != nil {
			var appErr *types.AppError
			if errors.As(err, &appErr) && appErr.Code == types.ErrCodeNotFoundUser {
				r.logger.Warn("membership user not found for institution",
					"user_id", userID,
					"institution_id", institutionID,
				)
			} else {
				r.logger.Error("user email lookup failed",
					"user_id", userID,
					"error", err.Error(),
				)
			}
			continue
		}
		if email != "" {
			emails = append(emails, email)
		}
	}

	return emails
}
