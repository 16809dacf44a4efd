package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		user *User
		want Role
	}{
		{"nil user is anonymous", nil, RoleAnonymous},
		{"no flags", &User{}, RoleUser},
		{"support flag", &User{IsSupport: true}, RoleSupport},
		{"staff flag", &User{IsStaff: true}, RoleStaff},
		{"superuser flag", &User{IsSuperuser: true}, RoleSuperuser},
		{"staff beats support", &User{IsStaff: true, IsSupport: true}, RoleStaff},
		{"superuser beats everything", &User{IsSuperuser: true, IsStaff: true, IsSupport: true}, RoleSuperuser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.user))
			// deterministic
			assert.Equal(t, Classify(tt.user), Classify(tt.user))
		})
	}
}

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, RoleSuperuser.AtLeast(RoleStaff))
	assert.True(t, RoleStaff.AtLeast(RoleStaff))
	assert.True(t, RoleSupport.AtLeast(RoleUser))
	assert.False(t, RoleUser.AtLeast(RoleSupport))
	assert.False(t, RoleAnonymous.AtLeast(RoleUser))
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{"screen name wins", User{ScreenName: "neo", Username: "anderson"}, "neo"},
		{"falls back to username", User{Username: "anderson"}, "anderson"},
		{"hidden without screen name", User{ID: 7, Username: "anderson", HidePrivateInfo: true}, "user#7"},
		{"staff suffix", User{Username: "smith", IsStaff: true}, "smith (admin)"},
		{"support suffix", User{Username: "oracle", IsSupport: true}, "oracle (support)"},
		{"staff suffix beats support", User{Username: "dual", IsStaff: true, IsSupport: true}, "dual (admin)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.DisplayName())
		})
	}
}
