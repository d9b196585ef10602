package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportnotifier/internal/types"
)

// mockMembershipLister implements MembershipLister for testing.
type mockMembershipLister struct {
	userIDs []int
	err     error
}

func (m *mockMembershipLister) GetUserIDsForProcess(_ context.Context, _ int) ([]int, error) {
	return m.userIDs, m.err
}

// mockEmailGetter implements EmailGetter with a per-user result table. It
// records the institution filter passed to each call.
type mockEmailGetter struct {
	emails       map[int]string
	errs         map[int]error
	institutions []int
}

func (m *mockEmailGetter) GetEmail(_ context.Context, userID int, institutionID *int) (string, error) {
	if institutionID != nil {
		m.institutions = append(m.institutions, *institutionID)
	}
	if err, ok := m.errs[userID]; ok {
		return "", err
	}
	if email, ok := m.emails[userID]; ok {
		return email, nil
	}
	return "", types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil)
}

func TestRecipientResolver_PreservesMembershipOrder(t *testing.T) {
	resolver := NewRecipientResolver(
		&mockMembershipLister{userIDs: []int{3, 1, 2}},
		&mockEmailGetter{emails: map[int]string{
			1: "one@x.com",
			2: "two@x.com",
			3: "three@x.com",
		}},
		newTestLogger(),
	)

	emails := resolver.EmailsForProcess(context.Background(), 7, 5)
	assert.Equal(t, []string{"three@x.com", "one@x.com", "two@x.com"}, emails)
}

func TestRecipientResolver_AppliesInstitutionFilter(t *testing.T) {
	users := &mockEmailGetter{emails: map[int]string{1: "one@x.com"}}
	resolver := NewRecipientResolver(
		&mockMembershipLister{userIDs: []int{1}},
		users,
		newTestLogger(),
	)

	resolver.EmailsForProcess(context.Background(), 7, 5)
	assert.Equal(t, []int{5}, users.institutions)
}

func TestRecipientResolver_SkipsMissingUsers(t *testing.T) {
	logger := newTestLogger()
	resolver := NewRecipientResolver(
		&mockMembershipLister{userIDs: []int{1, 2, 3}},
		&mockEmailGetter{emails: map[int]string{
			1: "one@x.com",
			3: "three@x.com",
		}},
		logger,
	)

	emails := resolver.EmailsForProcess(context.Background(), 7, 5)
	assert.Equal(t, []string{"one@x.com", "three@x.com"}, emails)
	assert.Len(t, logger.warns, 1)
}

func TestRecipientResolver_PerUserStoreErrorSkips(t *testing.T) {
	logger := newTestLogger()
	resolver := NewRecipientResolver(
		&mockMembershipLister{userIDs: []int{1, 2}},
		&mockEmailGetter{
			emails: map[int]string{2: "two@x.com"},
			errs: map[int]error{
				1: types.NewAppError(types.ErrCodeInternalDB, "failed", errors.New("boom")),
			},
		},
		logger,
	)

	emails := resolver.EmailsForProcess(context.Background(), 7, 5)
	assert.Equal(t, []string{"two@x.com"}, emails)
	assert.Len(t, logger.errors, 1)
}

func TestRecipientResolver_EmptyOnMembershipError(t *testing.T) {
	resolver := NewRecipientResolver(
		&mockMembershipLister{err: types.NewAppError(types.ErrCodeInternalDB, "failed", nil)},
		&mockEmailGetter{},
		newTestLogger(),
	)

	emails := resolver.EmailsForProcess(context.Background(), 7, 5)
	require.NotNil(t, emails)
	assert.Empty(t, emails)
}

func TestRecipientResolver_EmptyOnNoMemberships(t *testing.T) {
	resolver := NewRecipientResolver(
		&mockMembershipLister{userIDs: []int{}},
		&mockEmailGetter{},
		newTestLogger(),
	)

	emails := resolver.EmailsForProcess(context.Background(), 7, 5)
	require.NotNil(t, emails)
	assert.Empty(t, emails)
}

func TestRecipientResolver_EmptyWhenEveryLookupMisses(t *testing.T) {
	resolver := NewRecipientResolver(
		&mockMembershipLister{userIDs: []int{1, 2}},
		&mockEmailGetter{},
		newTestLogger(),
	)

	emails := resolver.EmailsForProcess(context.Background(), 7, 5)
	require.NotNil(t, emails)
	assert.Empty(t, emails)
}
