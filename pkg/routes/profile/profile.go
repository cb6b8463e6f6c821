package profile

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/clover/pkg/context"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/internal/repositories/profile"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/graph"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/utils"
)

// Register registers profile routes
func Register(g *echo.Group) {
	g.POST("", CreateProfile)
	g.GET("/:id", GetProfile)
	g.PUT("/:id", UpdateProfile)
	g.DELETE("/:id", DeleteProfile)
}

// CreateProfile creates a new profile
func CreateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant id is required")
	}

	req, err := utils.BindRequest[models.CreateProfileRequest](c)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[profile.ProfileRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	created, err := repo.Create(ctx, tenantID, req)
	if err != nil {
		return err
	}

	ctx, logger, _ := ectoinject.GetContext[ectologger.Logger](ctx)

	ctx, network, _ := ectoinject.GetContext[graph.Network](ctx)
	if network != nil {
		if err := network.SetProfile(ctx, tenantID, created.ID, string(created.Role), created.Name); err != nil && logger != nil {
			logger.WithContext(ctx).WithError(err).Warn("Failed to set profile node in match network")
		}
	}

	ctx, emitter, _ := ectoinject.GetContext[*events.Emitter](ctx)
	if emitter != nil {
		if err := emitter.EmitProfileCreated(ctx, created); err != nil && logger != nil {
			logger.WithContext(ctx).WithError(err).Warn("Failed to emit profile.created event")
		}
	}

	return c.JSON(http.StatusCreated, created)
}

// GetProfile gets a profile by ID
func GetProfile(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant id is required")
	}

	ctx, repo, err := ectoinject.GetContext[profile.ProfileRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	found, err := repo.Get(ctx, tenantID, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, found)
}

// UpdateProfile updates a profile
func UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant id is required")
	}

	req, err := utils.BindRequest[models.UpdateProfileRequest](c)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[profile.ProfileRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	updated, err := repo.Update(ctx, tenantID, c.Param("id"), req)
	if err != nil {
		return err
	}

	ctx, logger, _ := ectoinject.GetContext[ectologger.Logger](ctx)

	ctx, network, _ := ectoinject.GetContext[graph.Network](ctx)
	if network != nil {
		if err := network.SetProfile(ctx, tenantID, updated.ID, string(updated.Role), updated.Name); err != nil && logger != nil {
			logger.WithContext(ctx).WithError(err).Warn("Failed to set profile node in match network")
		}
	}

	ctx, emitter, _ := ectoinject.GetContext[*events.Emitter](ctx)
	if emitter != nil {
		if err := emitter.EmitProfileUpdated(ctx, updated); err != nil && logger != nil {
			logger.WithContext(ctx).WithError(err).Warn("Failed to emit profile.updated event")
		}
	}

	return c.JSON(http.StatusOK, updated)
}

// DeleteProfile soft deletes a profile
func DeleteProfile(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant id is required")
	}

	ctx, repo, err := ectoinject.GetContext[profile.ProfileRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	id := c.Param("id")
	if err := repo.Delete(ctx, tenantID, id); err != nil {
		return err
	}

	ctx, emitter, _ := ectoinject.GetContext[*events.Emitter](ctx)
	if emitter != nil {
		if err := emitter.EmitProfileDeleted(ctx, tenantID, id); err != nil {
			ctx, logger, _ := ectoinject.GetContext[ectologger.Logger](ctx)
			if logger != nil {
				logger.WithContext(ctx).WithError(err).Warn("Failed to emit profile.deleted event")
			}
		}
	}

	return c.NoContent(http.StatusNoContent)
}
