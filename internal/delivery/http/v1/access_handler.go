package v1

import (
	"jetsuite-backend/internal/delivery/http/middleware"
	"jetsuite-backend/internal/delivery/http/response"
	"jetsuite-backend/internal/domain"
	"jetsuite-backend/pkg/apperror"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AccessHandler struct {
	accessUC domain.AccessUsecase
}

func NewAccessHandler(r *gin.RouterGroup, accessUC domain.AccessUsecase, limiter gin.HandlerFunc) {
	handler := &AccessHandler{accessUC: accessUC}

	access := r.Group("/access")
	if limiter != nil {
		access.Use(limiter)
	}
	{
		access.POST("/resolve", handler.Resolve)
	}
}

// Resolve godoc
// @Summary      Resolve the view for a location
// @Description  Runs the access guard for the caller's session (optional) and the given path until every fact is resolved, returning the view to render and any redirects the guard issued
// @Tags         access
// @Accept       json
// @Produce      json
// @Param        request  body      domain.AccessResolveRequest  true  "Location to resolve"
// @Success      200      {object}  response.Response{data=domain.AccessResolution}
// @Failure      400      {object}  response.Response
// @Failure      504      {object}  response.Response
// @Router       /access/resolve [post]
func (h *AccessHandler) Resolve(c *gin.Context) {
	var req domain.AccessResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	// Anonymous callers are fine: a missing token resolves as logged out
	result, err := h.accessUC.Resolve(c.Request.Context(), middleware.BearerToken(c), &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Access resolved", result)
}
