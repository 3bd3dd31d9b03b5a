package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/api/middleware"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/services"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/utils/logger"
)

// SalesHandler exposes the sales hierarchy: team membership with the
// one-active-membership rule, and per-workshop access for salespersons.
type SalesHandler struct {
	teams *services.SalesTeamService
	log   *logger.Logger
}

func NewSalesHandler(teams *services.SalesTeamService) *SalesHandler {
	return &SalesHandler{teams: teams, log: logger.New("sales_handler")}
}

type MemberRequest struct {
	SalesPersonID string `json:"salesPersonId" validate:"required,uuid"`
}

type WorkshopAccessRequest struct {
	SalesPersonID string `json:"salesPersonId" validate:"required,uuid"`
}

// AssignMember puts a salesperson on a team. A salesperson can hold at most
// one active membership across all teams; a second assignment conflicts.
// @Summary Assign a salesperson to a team
// @Tags sales
// @Accept json
// @Produce json
// @Param id path string true "Team ID"
// @Param request body MemberRequest true "Salesperson"
// @Success 201 {object} models.SalesTeamMember
// @Failure 400 {object} map[string]string "Invalid role or inactive account"
// @Failure 409 {object} map[string]string "Already on a team"
// @Router /sales-teams/{id}/members [post]
func (h *SalesHandler) AssignMember(c echo.Context) error {
	var req MemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	member, err := h.teams.AssignMember(c.Request().Context(), c.Param("id"), req.SalesPersonID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, member)
}

// UnassignMember revokes an active membership. The row survives with a
// REVOKED state for auditability.
func (h *SalesHandler) UnassignMember(c echo.Context) error {
	member, err := h.teams.UnassignMember(c.Request().Context(), c.Param("id"), c.Param("salesPersonId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, member)
}

// ListAvailableSalesPersons lists active salespersons with no active team
// membership.
func (h *SalesHandler) ListAvailableSalesPersons(c echo.Context) error {
	users, err := h.teams.AvailableSalesPersons(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":  users,
		"total": len(users),
	})
}

// GrantWorkshopAccess grants a salesperson access to sell a workshop.
// Re-granting after a revocation reuses the original row.
func (h *SalesHandler) GrantWorkshopAccess(c echo.Context) error {
	var req WorkshopAccessRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	actorID := middleware.GetUserID(c)
	access, err := h.teams.GrantWorkshopAccess(c.Request().Context(), actorID, c.Param("id"), req.SalesPersonID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, access)
}

func (h *SalesHandler) RevokeWorkshopAccess(c echo.Context) error {
	access, err := h.teams.RevokeWorkshopAccess(c.Request().Context(), c.Param("id"), c.Param("salesPersonId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, access)
}

// ListMyWorkshops returns the active workshops the calling salesperson may
// sell.
func (h *SalesHandler) ListMyWorkshops(c echo.Context) error {
	salesPersonID := middleware.GetUserID(c)
	workshops, err := h.teams.AccessibleWorkshops(c.Request().Context(), salesPersonID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":  workshops,
		"total": len(workshops),
	})
}
