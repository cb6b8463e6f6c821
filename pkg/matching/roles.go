package matching

import "github.com/Ramsey-B/clover/pkg/models"

// Compatible reports whether two roles may be matched at all. The check runs
// before scoring; incompatible pairs short-circuit to exclusion.
//
// Rules:
//   - capital raisers are compatible with every role
//   - fund of funds is compatible only with fund managers and capital raisers
//   - fund managers and limited partners are mutually compatible
//   - everything else is incompatible
func Compatible(a, b models.Role) bool {
	if a == models.RoleCapitalRaiser || b == models.RoleCapitalRaiser {
		return true
	}

	if a == models.RoleFundOfFunds {
		return b == models.RoleFundManager
	}
	if b == models.RoleFundOfFunds {
		return a == models.RoleFundManager
	}

	if a == models.RoleFundManager && b == models.RoleLimitedPartner {
		return true
	}
	if a == models.RoleLimitedPartner && b == models.RoleFundManager {
		return true
	}

	return false
}

// CompatibleRoles returns every role that may match the given role, useful
// for narrowing a candidate pool query.
func CompatibleRoles(role models.Role) []models.Role {
	all := []models.Role{
		models.RoleFundManager,
		models.RoleLimitedPartner,
		models.RoleCapitalRaiser,
		models.RoleFundOfFunds,
	}

	var compatible []models.Role
	for _, other := range all {
		if Compatible(role, other) {
			compatible = append(compatible, other)
		}
	}
	return compatible
}
