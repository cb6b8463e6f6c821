package match

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Ramsey-B/clover/pkg/context"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/graph"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/utils"
)

// Register registers match routes on the profile and match groups
func Register(profiles, matches *echo.Group) {
	profiles.GET("/:id/matches", FindMatches)
	profiles.GET("/:id/matches/network", MatchNetwork)
	matches.POST("/search", SearchMatches)
	matches.POST("/record", RecordMatch)
}

// FindMatches ranks the candidate pool against a subject profile. Query
// parameters override the subject's stored preferences for this request.
func FindMatches(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant id is required")
	}

	overrides, err := preferencesFromQuery(c)
	if err != nil {
		return err
	}

	ctx, svc, err := ectoinject.GetContext[*matching.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	results, err := svc.FindMatches(ctx, tenantID, c.Param("id"), overrides)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, results)
}

// SearchMatches ranks the pool against an explicit criteria object
func SearchMatches(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant id is required")
	}

	req, err := utils.BindRequest[models.SearchMatchesRequest](c)
	if err != nil {
		return err
	}

	prefs := models.DefaultMatchPreferences()
	if req.Preferences != nil {
		prefs = *req.Preferences
	}

	ctx, svc, err := ectoinject.GetContext[*matching.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	results, err := svc.SearchByCriteria(ctx, tenantID, req.Criteria, prefs)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, results)
}

// RecordMatch appends a pair to the match history ledger
func RecordMatch(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant id is required")
	}

	req, err := utils.BindRequest[models.RecordMatchRequest](c)
	if err != nil {
		return err
	}

	ctx, svc, err := ectoinject.GetContext[*matching.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	if err := svc.RecordMatch(ctx, tenantID, req.ProfileAID, req.ProfileBID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// MatchNetwork returns the profiles matched with the given one from the graph
func MatchNetwork(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant id is required")
	}

	ctx, network, err := ectoinject.GetContext[graph.Network](ctx)
	if err != nil || network == nil {
		return httperror.NewHTTPError(http.StatusServiceUnavailable, "match network is not configured")
	}

	partners, err := network.MatchedPartners(ctx, tenantID, c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to query match network")
	}
	if partners == nil {
		partners = []graph.MatchedPartner{}
	}

	return c.JSON(http.StatusOK, partners)
}

// preferencesFromQuery builds override preferences from query parameters.
// Returns nil when no override parameter is present.
func preferencesFromQuery(c echo.Context) (*models.MatchPreferences, error) {
	prefs := models.DefaultMatchPreferences()
	overridden := false

	if raw := c.QueryParam("min_match_percentage"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, httperror.NewHTTPError(http.StatusBadRequest, "min_match_percentage must be a number")
		}
		prefs.MinMatchPercentage = value
		overridden = true
	}

	if raw := c.QueryParam("max_results"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return nil, httperror.NewHTTPError(http.StatusBadRequest, "max_results must be an integer")
		}
		prefs.MaxResults = value
		overridden = true
	}

	if raw := c.QueryParam("include_roles"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			role := models.Role(strings.TrimSpace(part))
			if role == "" {
				continue
			}
			prefs.IncludeRoles = append(prefs.IncludeRoles, role)
		}
		overridden = true
	}

	if raw := c.QueryParam("exclude_previously_matched"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, httperror.NewHTTPError(http.StatusBadRequest, "exclude_previously_matched must be a boolean")
		}
		prefs.ExcludePreviouslyMatched = value
		overridden = true
	}

	if !overridden {
		return nil, nil
	}
	return &prefs, nil
}
