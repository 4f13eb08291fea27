package permissions_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appointer/permissions"
	"appointer/shared/constant"
)

func TestGet(t *testing.T) {
	perms := permissions.Get()
	require.NotNil(t, perms)
	require.NotEmpty(t, perms.Endpoints)

	seen := map[string]bool{}

	for _, p := range perms.Endpoints {
		key := p.Method + " " + p.Path
		assert.False(t, seen[key], "duplicate entry %s", key)
		seen[key] = true

		assert.True(t, strings.HasPrefix(p.Path, "/"), key)

		if !p.Skip {
			assert.Contains(t, p.Permissions, constant.RoleAdmin, "%s locks out administrators", key)
		}
	}
}

func TestFindPermissions(t *testing.T) {
	perms := permissions.Get()
	require.NotNil(t, perms)

	t.Run("public", func(t *testing.T) {
		assert.True(t, perms.FindPermissions("/v1/bookings/slots", http.MethodGet).Skip)
		assert.True(t, perms.FindPermissions("/health", http.MethodGet).Skip)
	})

	t.Run("trailing slash", func(t *testing.T) {
		p := perms.FindPermissions("/v1/bookings/", http.MethodGet)
		assert.Equal(t, []string{constant.RoleAdmin}, p.Permissions)
	})

	t.Run("method matters", func(t *testing.T) {
		assert.True(t, perms.FindPermissions("/v1/specialists", http.MethodGet).Skip)
		assert.False(t, perms.FindPermissions("/v1/specialists", http.MethodPost).Skip)
	})

	t.Run("unknown route", func(t *testing.T) {
		assert.Equal(t, permissions.Permission{}, perms.FindPermissions("/v1/nowhere", http.MethodGet))
	})
}
