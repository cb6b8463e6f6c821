package preference

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Ramsey-B/clover/pkg/context"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/internal/repositories/preference"
	"github.com/Ramsey-B/clover/internal/repositories/profile"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/utils"
)

// Register registers preference routes on the profile group
func Register(g *echo.Group) {
	g.GET("/:id/preferences", GetPreferences)
	g.PUT("/:id/preferences", PutPreferences)
}

// GetPreferences returns the stored preferences for a profile, falling back
// to the defaults when nothing is stored.
func GetPreferences(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant id is required")
	}

	ctx, profiles, err := ectoinject.GetContext[profile.ProfileRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	profileID := c.Param("id")
	if _, err := profiles.Get(ctx, tenantID, profileID); err != nil {
		return err
	}

	ctx, prefs, err := ectoinject.GetContext[preference.PreferenceRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	stored, err := prefs.Get(ctx, tenantID, profileID)
	if err != nil {
		return err
	}
	if stored == nil {
		defaults := models.DefaultMatchPreferences()
		stored = &defaults
	}

	return c.JSON(http.StatusOK, stored)
}

// PutPreferences stores the preferences for a profile
func PutPreferences(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant id is required")
	}

	ctx, profiles, err := ectoinject.GetContext[profile.ProfileRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	profileID := c.Param("id")
	if _, err := profiles.Get(ctx, tenantID, profileID); err != nil {
		return err
	}

	prefs, err := utils.BindRequest[models.MatchPreferences](c)
	if err != nil {
		return err
	}
	if err := matching.ValidatePreferences(prefs); err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[preference.PreferenceRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	if err := repo.Upsert(ctx, tenantID, profileID, prefs); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, prefs)
}
