package access

import (
	"slices"
	"testing"

	"github.com/TristanBrian/MamaCare/internal/models"
)

func TestDecideStates(t *testing.T) {
	tests := []struct {
		name  string
		state State
		role  models.UserRole
		req   Requirement
		want  Decision
	}{
		{"loading", StateLoading, "", Roles(models.UserRoleDoctor), Decision{Outcome: OutcomePending}},
		{"loading public", StateLoading, "", Requirement{}, Decision{Outcome: OutcomePending}},
		{"anonymous", StateAnonymous, "", Requirement{}, Decision{OutcomeDenyLogin, RouteLogin}},
		{"super admin as doctor", StateAuthenticated, models.UserRoleDoctor, SuperAdmin(), Decision{OutcomeDenyDefault, RouteDashboard}},
		{"super admin as admin", StateAuthenticated, models.UserRoleAdmin, SuperAdmin(), Decision{Outcome: OutcomeAllow}},
		{"role mismatch", StateAuthenticated, models.UserRolePatient, Roles(models.UserRoleDoctor, models.UserRoleHospital), Decision{OutcomeDenyDefault, RouteHome}},
		{"role match", StateAuthenticated, models.UserRoleHospital, Roles(models.UserRoleDoctor, models.UserRoleHospital), Decision{Outcome: OutcomeAllow}},
		{"super admin checked before roles", StateAuthenticated, models.UserRoleDoctor, Requirement{Roles: []models.UserRole{models.UserRoleDoctor}, SuperAdminOnly: true}, Decision{OutcomeDenyDefault, RouteDashboard}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.state, tt.role, tt.req); got != tt.want {
				t.Fatalf("Decide = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// Every subset of roles against every role: granted iff the role is a
// member or the set is empty.
func TestRoleGateProperty(t *testing.T) {
	all := models.UserRoles
	for mask := 0; mask < 1<<len(all); mask++ {
		var set []models.UserRole
		for i, r := range all {
			if mask&(1<<i) != 0 {
				set = append(set, r)
			}
		}
		for _, role := range all {
			got := Decide(StateAuthenticated, role, Roles(set...)).Allowed()
			want := len(set) == 0 || slices.Contains(set, role)
			if got != want {
				t.Errorf("role %s, set %v: allowed=%v want %v", role, set, got, want)
			}
		}
	}
}
