// Package enum holds the string vocabularies shared by handlers, middleware
// and tooling that do not depend on the database models.
package enum

// Staff roles (CHECK constrained in DB).
const (
	RoleBarista = "BARISTA"
	RoleCashier = "CASHIER"
	RoleManager = "MANAGER"
)

// Roles lists every staff role.
var Roles = []string{RoleBarista, RoleCashier, RoleManager}

// IsRole reports whether s is a known staff role.
func IsRole(s string) bool {
	for _, r := range Roles {
		if r == s {
			return true
		}
	}
	return false
}
