package employee

import "vulcanhr/internal/domain/user"

// Visible filters the employee collection down to what the viewer may see.
// Supervisors see only employees whose managerName matches their own
// username; roles with global visibility see everything.
func Visible(all []Employee, viewer user.User) []Employee {
	if user.SeesAllEmployees(viewer.Role) {
		return all
	}
	out := make([]Employee, 0, len(all))
	for _, e := range all {
		if e.ManagerName == viewer.Username {
			out = append(out, e)
		}
	}
	return out
}
