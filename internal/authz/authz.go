// Package authz decides which role may call which route.
package authz

import (
	"fmt"
	"strings"

	"cardapio/internal/models"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// rbacModel grants a role a path pattern (keyMatch2) and a method regex.
// Roles inherit through g.
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && regexMatch(r.act, p.act)
`

// Rule is a single allow policy.
type Rule struct {
	Role    models.Role
	Path    string
	Methods string // regular expression over the HTTP method
}

// DefaultRules covers every authenticated route under prefix.
func DefaultRules(prefix string) []Rule {
	client, admin := models.RoleClient, models.RoleAdmin
	return []Rule{
		{client, prefix + "/orders", "^(GET|POST)$"},
		{client, prefix + "/orders/quote", "^POST$"},
		{client, prefix + "/orders/:id", "^GET$"},
		{client, prefix + "/orders/status/:id", "^PATCH$"},
		{client, prefix + "/address/:userId", "^(GET|POST)$"},
		{client, prefix + "/address/:userId/:id", "^(GET|PUT|DELETE)$"},
		{client, prefix + "/users/:id", "^(GET|PUT|DELETE)$"},

		{admin, prefix + "/items", "^POST$"},
		{admin, prefix + "/items/:id", "^(PUT|DELETE)$"},
		{admin, prefix + "/categories", "^POST$"},
		{admin, prefix + "/categories/:id", "^(PUT|DELETE)$"},
		{admin, prefix + "/users", "^GET$"},
		{admin, prefix + "/dashboard/stats", "^GET$"},
		{admin, prefix + "/ws/orders", "^GET$"},
	}
}

// Enforcer wraps a casbin enforcer loaded with the role policy.
type Enforcer struct {
	enforcer *casbin.Enforcer
}

// New builds an enforcer from rules. ADMIN inherits every CLIENT grant.
func New(rules []Rule) (*Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse casbin model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize casbin enforcer: %w", err)
	}

	for _, r := range rules {
		if _, err := enforcer.AddPolicy(string(r.Role), r.Path, r.Methods); err != nil {
			return nil, fmt.Errorf("failed to add policy %s %s: %w", r.Role, r.Path, err)
		}
	}
	if _, err := enforcer.AddGroupingPolicy(string(models.RoleAdmin), string(models.RoleClient)); err != nil {
		return nil, fmt.Errorf("failed to add role inheritance: %w", err)
	}

	return &Enforcer{enforcer: enforcer}, nil
}

// Allowed reports whether role may call method on path.
func (e *Enforcer) Allowed(role models.Role, path, method string) (bool, error) {
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	ok, err := e.enforcer.Enforce(string(role), path, strings.ToUpper(method))
	if err != nil {
		return false, fmt.Errorf("casbin permission check failed: %w", err)
	}
	return ok, nil
}
