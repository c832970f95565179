// Package access decides whether a session may reach a protected resource.
//
// A session resolves from Loading to either Authenticated (with a role) or
// Anonymous. No decision is made while Loading.
package access

import (
	"slices"

	"github.com/TristanBrian/MamaCare/internal/models"
)

type State int

const (
	StateLoading State = iota
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	}
	return "unknown"
}

// Requirement describes a protected resource. An empty Roles list admits
// every authenticated role.
type Requirement struct {
	Roles          []models.UserRole `json:"requiredRoles"`
	SuperAdminOnly bool              `json:"superAdminOnly"`
}

type Outcome string

const (
	OutcomePending     Outcome = "pending"
	OutcomeAllow       Outcome = "allow"
	OutcomeDenyLogin   Outcome = "deny_login"
	OutcomeDenyDefault Outcome = "deny_default"
)

const (
	RouteLogin     = "/login"
	RouteDashboard = "/dashboard"
	RouteHome      = "/"
)

type Decision struct {
	Outcome  Outcome `json:"outcome"`
	Redirect string  `json:"redirect,omitempty"`
}

func (d Decision) Allowed() bool { return d.Outcome == OutcomeAllow }

// Decide applies the rules in order: pending while loading, login for
// anonymous sessions, admin check for super-admin resources, role
// membership, then allow.
func Decide(state State, role models.UserRole, req Requirement) Decision {
	switch state {
	case StateLoading:
		return Decision{Outcome: OutcomePending}
	case StateAuthenticated:
	default:
		return Decision{Outcome: OutcomeDenyLogin, Redirect: RouteLogin}
	}

	if req.SuperAdminOnly && role != models.UserRoleAdmin {
		return Decision{Outcome: OutcomeDenyDefault, Redirect: RouteDashboard}
	}
	if len(req.Roles) > 0 && !slices.Contains(req.Roles, role) {
		return Decision{Outcome: OutcomeDenyDefault, Redirect: RouteHome}
	}
	return Decision{Outcome: OutcomeAllow}
}

// Roles is shorthand for a Requirement listing roles.
func Roles(roles ...models.UserRole) Requirement {
	return Requirement{Roles: roles}
}

func SuperAdmin() Requirement {
	return Requirement{SuperAdminOnly: true}
}
