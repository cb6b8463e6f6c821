package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/clover/pkg/models"
)

func TestCompatible(t *testing.T) {
	cases := []struct {
		name string
		a    models.Role
		b    models.Role
		want bool
	}{
		{"capital raiser with fund manager", models.RoleCapitalRaiser, models.RoleFundManager, true},
		{"capital raiser with limited partner", models.RoleCapitalRaiser, models.RoleLimitedPartner, true},
		{"capital raiser with fund of funds", models.RoleCapitalRaiser, models.RoleFundOfFunds, true},
		{"capital raiser with capital raiser", models.RoleCapitalRaiser, models.RoleCapitalRaiser, true},
		{"fund manager with limited partner", models.RoleFundManager, models.RoleLimitedPartner, true},
		{"limited partner with fund manager", models.RoleLimitedPartner, models.RoleFundManager, true},
		{"fund of funds with fund manager", models.RoleFundOfFunds, models.RoleFundManager, true},
		{"fund manager with fund of funds", models.RoleFundManager, models.RoleFundOfFunds, true},
		{"fund of funds with limited partner", models.RoleFundOfFunds, models.RoleLimitedPartner, false},
		{"limited partner with fund of funds", models.RoleLimitedPartner, models.RoleFundOfFunds, false},
		{"fund of funds with fund of funds", models.RoleFundOfFunds, models.RoleFundOfFunds, false},
		{"limited partner with limited partner", models.RoleLimitedPartner, models.RoleLimitedPartner, false},
		{"fund manager with fund manager", models.RoleFundManager, models.RoleFundManager, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Compatible(tc.a, tc.b))
		})
	}
}

func TestCompatibleIsSymmetric(t *testing.T) {
	roles := []models.Role{
		models.RoleFundManager,
		models.RoleLimitedPartner,
		models.RoleCapitalRaiser,
		models.RoleFundOfFunds,
	}

	for _, a := range roles {
		for _, b := range roles {
			assert.Equal(t, Compatible(a, b), Compatible(b, a), "pair %s/%s", a, b)
		}
	}
}

func TestCompatibleRoles(t *testing.T) {
	t.Run("fund of funds", func(t *testing.T) {
		roles := CompatibleRoles(models.RoleFundOfFunds)
		assert.ElementsMatch(t, []models.Role{models.RoleFundManager, models.RoleCapitalRaiser}, roles)
	})

	t.Run("capital raiser matches everyone", func(t *testing.T) {
		roles := CompatibleRoles(models.RoleCapitalRaiser)
		assert.Len(t, roles, 4)
	})

	t.Run("limited partner", func(t *testing.T) {
		roles := CompatibleRoles(models.RoleLimitedPartner)
		assert.ElementsMatch(t, []models.Role{models.RoleFundManager, models.RoleCapitalRaiser}, roles)
	})
}
