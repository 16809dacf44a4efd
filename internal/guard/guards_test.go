package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-api/internal/domain"
	util "github.com/spec-kit/support-api/pkg/util"
)

func TestSelfOrElevated(t *testing.T) {
	g := SelfOrElevated{}
	caller := &domain.User{ID: 7}
	other := int64(8)
	self := int64(7)

	assert.NoError(t, g.Check(caller, domain.RoleSupport, nil))
	assert.NoError(t, g.Check(caller, domain.RoleStaff, &other))
	assert.NoError(t, g.Check(caller, domain.RoleUser, &self))

	err := g.Check(caller, domain.RoleUser, nil)
	require.Error(t, err)
	domainErr := util.ToDomainError(err)
	assert.Equal(t, "PERMISSION_DENIED", domainErr.Code)
	// remediation names the query value that would succeed
	assert.Contains(t, domainErr.Message, `?user_id=7`)

	err = g.Check(caller, domain.RoleUser, &other)
	require.Error(t, err)
	assert.Equal(t, "PERMISSION_DENIED", util.ToDomainError(err).Code)

	err = g.Check(nil, domain.RoleAnonymous, nil)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", util.ToDomainError(err).Code)
}

func TestTicketOwnership(t *testing.T) {
	g := TicketOwnership{}
	owner := &domain.User{ID: 1}
	stranger := &domain.User{ID: 2}
	ticket := &domain.Ticket{ID: 10, OpenedByID: 1}

	assert.NoError(t, g.Check(owner, domain.RoleUser, ticket))
	assert.NoError(t, g.Check(stranger, domain.RoleSupport, ticket))

	err := g.Check(stranger, domain.RoleUser, ticket)
	require.Error(t, err)
	assert.Equal(t, "PERMISSION_DENIED", util.ToDomainError(err).Code)

	err = g.Check(nil, domain.RoleAnonymous, ticket)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", util.ToDomainError(err).Code)
}

func TestMethodByRole(t *testing.T) {
	g := MethodByRole{}

	tests := []struct {
		role     domain.Role
		method   string
		wantCode string
	}{
		{domain.RoleStaff, "DELETE", ""},
		{domain.RoleStaff, "POST", ""},
		{domain.RoleSuperuser, "PUT", ""},
		{domain.RoleSupport, "GET", ""},
		{domain.RoleSupport, "PATCH", ""},
		{domain.RoleSupport, "DELETE", "PERMISSION_DENIED"},
		{domain.RoleUser, "GET", ""},
		{domain.RoleUser, "PATCH", "PERMISSION_DENIED"},
		{domain.RoleUser, "DELETE", "PERMISSION_DENIED"},
		{domain.RoleUser, "BREW", "METHOD_NOT_RECOGNIZED"},
		{domain.RoleStaff, "BREW", "METHOD_NOT_RECOGNIZED"},
	}
	for _, tt := range tests {
		err := g.Check(tt.role, tt.method)
		if tt.wantCode == "" {
			assert.NoError(t, err, "%s %s", tt.role, tt.method)
			continue
		}
		require.Error(t, err, "%s %s", tt.role, tt.method)
		assert.Equal(t, tt.wantCode, util.ToDomainError(err).Code, "%s %s", tt.role, tt.method)
	}
}
