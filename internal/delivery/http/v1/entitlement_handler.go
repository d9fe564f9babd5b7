package v1

import (
	"jetsuite-backend/internal/delivery/http/response"
	"jetsuite-backend/internal/domain"
	"net/http"

	"github.com/gin-gonic/gin"
)

type EntitlementHandler struct {
	entitlements domain.EntitlementService
	profileUC    domain.ProfileUsecase
}

func NewEntitlementHandler(r *gin.RouterGroup, entitlements domain.EntitlementService, profileUC domain.ProfileUsecase) {
	handler := &EntitlementHandler{entitlements: entitlements, profileUC: profileUC}

	r.GET("/entitlement", handler.GetEntitlement)
	r.GET("/profiles", handler.ListProfiles)
	r.GET("/profiles/status", handler.GetProfileStatus)
}

// GetEntitlement godoc
// @Summary      Get subscription entitlement
// @Description  Check whether the current user has paid access and where to send them if not
// @Tags         entitlement
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.AccessResult}
// @Failure      401  {object}  response.Response
// @Router       /entitlement [get]
// @Security     BearerAuth
func (h *EntitlementHandler) GetEntitlement(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	result, err := h.entitlements.CheckAccess(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Entitlement retrieved", result)
}

// GetProfileStatus godoc
// @Summary      Get business profile status
// @Description  Count the current user's completed business profiles
// @Tags         onboarding
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.ProfileStatus}
// @Failure      401  {object}  response.Response
// @Router       /profiles/status [get]
// @Security     BearerAuth
func (h *EntitlementHandler) GetProfileStatus(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	status, err := h.profileUC.GetProfileStatus(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile status retrieved", status)
}

// ListProfiles godoc
// @Summary      List business profiles
// @Description  List every business profile the current user owns, newest first
// @Tags         onboarding
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.BusinessProfile}
// @Failure      401  {object}  response.Response
// @Router       /profiles [get]
// @Security     BearerAuth
func (h *EntitlementHandler) ListProfiles(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	profiles, err := h.profileUC.ListProfiles(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profiles retrieved", profiles)
}
