package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-api/internal/domain"
	util "github.com/spec-kit/support-api/pkg/util"
)

func TestCatalogResolveDefaults(t *testing.T) {
	tests := []struct {
		name    string
		catalog Catalog
		role    domain.Role
		want    Mode
	}{
		{"users list user default", UsersListCatalog, domain.RoleUser, ModeBasic},
		{"users list staff default", UsersListCatalog, domain.RoleStaff, ModeBasic},
		{"user detail user default", UserDetailCatalog, domain.RoleUser, ModeDefault},
		{"user detail support default widens", UserDetailCatalog, domain.RoleSupport, ModeExpanded},
		{"ticket detail superuser default widens", TicketDetailCatalog, domain.RoleSuperuser, ModeExpanded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, err := tt.catalog.Resolve(tt.role, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, mode)
		})
	}
}

func TestCatalogResolveExplicit(t *testing.T) {
	mode, err := UsersListCatalog.Resolve(domain.RoleStaff, "full")
	require.NoError(t, err)
	assert.Equal(t, ModeFull, mode)

	// an out-of-reach mode fails loudly instead of silently narrowing
	_, err = UsersListCatalog.Resolve(domain.RoleUser, "full")
	require.Error(t, err)
	domainErr := util.ToDomainError(err)
	assert.Equal(t, "INVALID_ARGUMENT", domainErr.Code)
	assert.ElementsMatch(t, []string{"basic", "default"}, domainErr.Details["choices"])

	_, err = TicketsListCatalog.Resolve(domain.RoleSupport, "bogus")
	require.Error(t, err)
}

func TestCatalogPermittedOrder(t *testing.T) {
	assert.Equal(t, []Mode{ModeBasic, ModeDefault}, UsersListCatalog.Permitted(domain.RoleUser))
	assert.Equal(t, []Mode{ModeBasic, ModeDefault, ModeExpanded}, UsersListCatalog.Permitted(domain.RoleSupport))
	assert.Equal(t, []Mode{ModeBasic, ModeDefault, ModeExpanded, ModeFull}, UsersListCatalog.Permitted(domain.RoleSuperuser))
}

func fieldSet(projection map[string]any) map[string]struct{} {
	fields := make(map[string]struct{}, len(projection))
	for key := range projection {
		fields[key] = struct{}{}
	}
	return fields
}

func assertStrictSuperset(t *testing.T, wider, narrower map[string]any) {
	t.Helper()
	narrowFields := fieldSet(narrower)
	wideFields := fieldSet(wider)
	require.Greater(t, len(wideFields), len(narrowFields))
	for field := range narrowFields {
		assert.Contains(t, wideFields, field)
	}
}

func TestUserProjectionMonotonicity(t *testing.T) {
	since := time.Now().Add(-time.Hour)
	user := &domain.User{
		ID:              42,
		Email:           "a@example.com",
		Username:        "alice",
		UnansweredSince: &since,
	}
	ctx := UserContext{User: user, Now: time.Now()}

	basic := ProjectUser(ctx, ModeBasic)
	def := ProjectUser(ctx, ModeDefault)
	expanded := ProjectUser(ctx, ModeExpanded)
	full := ProjectUser(ctx, ModeFull)

	assertStrictSuperset(t, def, basic)
	assertStrictSuperset(t, expanded, def)
	assertStrictSuperset(t, full, expanded)

	assert.Equal(t, user.ID, basic["id"])
	assert.NotContains(t, expanded, "is_superuser")
	assert.Contains(t, full, "is_superuser")
}

func TestTicketProjectionMonotonicity(t *testing.T) {
	questionDate := time.Now().Add(-30 * time.Minute)
	ticket := &domain.Ticket{
		ID:               9,
		Theme:            domain.ThemeSecurity,
		OpenedByID:       42,
		UserQuestionDate: &questionDate,
	}
	ctx := TicketContext{
		Ticket: ticket,
		Owner:  &domain.User{ID: 42, Username: "alice"},
		Now:    time.Now(),
	}

	basic := ProjectTicket(ctx, ModeBasic)
	def := ProjectTicket(ctx, ModeDefault)
	expanded := ProjectTicket(ctx, ModeExpanded)
	full := ProjectTicket(ctx, ModeFull)

	assertStrictSuperset(t, def, basic)
	assertStrictSuperset(t, expanded, def)
	assertStrictSuperset(t, full, expanded)

	assert.NotContains(t, expanded, "closed_by_id")
	assert.Contains(t, full, "closed_by_id")
	assert.NotContains(t, expanded, "staff_note")
	assert.Contains(t, full, "staff_note")
}

func TestTicketNoResponseTime(t *testing.T) {
	now := time.Now()
	question := now.Add(-2 * time.Minute)

	pending := &domain.Ticket{UserQuestionDate: &question}
	projected := ProjectTicket(TicketContext{Ticket: pending, Now: now}, ModeBasic)
	assert.NotEmpty(t, projected["no_response_time"])

	answered := &domain.Ticket{IsAnswered: true, UserQuestionDate: &question}
	projected = ProjectTicket(TicketContext{Ticket: answered, Now: now}, ModeBasic)
	assert.Equal(t, "", projected["no_response_time"])
}
