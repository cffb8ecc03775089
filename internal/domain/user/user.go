package user

const (
	RoleSupervisor = "supervisor"
	RoleGerente    = "gerente"
	RoleRRHH       = "rrhh"
	RoleDirector   = "director"
)

// User is an evaluator or approver identity. Username is the unique key
// across the local and cloud copies of the collection. An empty Password
// means the account has never logged in; the first login sets it.
type User struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Password string `json:"password,omitempty"`
}

func ValidRole(role string) bool {
	switch role {
	case RoleSupervisor, RoleGerente, RoleRRHH, RoleDirector:
		return true
	}
	return false
}

// CanApproveBonus reports whether the role is allowed to resolve a
// pending bonus authorization. Only the gerente role holds that authority.
func CanApproveBonus(role string) bool {
	return role == RoleGerente
}

// SeesAllEmployees reports whether the role bypasses the manager-name
// visibility filter.
func SeesAllEmployees(role string) bool {
	switch role {
	case RoleGerente, RoleRRHH, RoleDirector:
		return true
	}
	return false
}
