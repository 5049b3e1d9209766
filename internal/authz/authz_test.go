package authz_test

import (
	"testing"

	"cardapio/internal/authz"
	"cardapio/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnforcer_DefaultRules(t *testing.T) {
	e, err := authz.New(authz.DefaultRules("/api/v1"))
	require.NoError(t, err)

	cases := []struct {
		role   models.Role
		method string
		path   string
		want   bool
	}{
		{models.RoleClient, "GET", "/api/v1/orders", true},
		{models.RoleClient, "POST", "/api/v1/orders/", true},
		{models.RoleClient, "POST", "/api/v1/orders/quote", true},
		{models.RoleClient, "PATCH", "/api/v1/orders/status/abc", true},
		{models.RoleClient, "DELETE", "/api/v1/orders/abc", false},
		{models.RoleClient, "PUT", "/api/v1/address/u1/a1", true},
		{models.RoleClient, "POST", "/api/v1/items", false},
		{models.RoleClient, "DELETE", "/api/v1/categories/c1", false},
		{models.RoleClient, "GET", "/api/v1/users", false},
		{models.RoleClient, "GET", "/api/v1/dashboard/stats", false},
		{models.RoleClient, "GET", "/api/v1/ws/orders", false},

		{models.RoleAdmin, "POST", "/api/v1/items", true},
		{models.RoleAdmin, "PUT", "/api/v1/items/i1", true},
		{models.RoleAdmin, "GET", "/api/v1/users", true},
		{models.RoleAdmin, "GET", "/api/v1/dashboard/stats", true},
		{models.RoleAdmin, "PATCH", "/api/v1/orders/status/abc", true}, // inherited from CLIENT
		{models.RoleAdmin, "GET", "/api/v1/address/u1", true},
		{models.RoleAdmin, "PATCH", "/api/v1/items/i1", false},

		{"", "GET", "/api/v1/orders", false},
	}
	for _, tc := range cases {
		got, err := e.Allowed(tc.role, tc.path, tc.method)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s %s %s", tc.role, tc.method, tc.path)
	}
}

func TestEnforcer_CustomRules(t *testing.T) {
	e, err := authz.New([]authz.Rule{{Role: models.RoleClient, Path: "/reports/:id", Methods: "^GET$"}})
	require.NoError(t, err)

	ok, err := e.Allowed(models.RoleAdmin, "/reports/7", "get")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.Allowed(models.RoleClient, "/reports/7/raw", "GET")
	require.NoError(t, err)
	assert.False(t, ok)
}
