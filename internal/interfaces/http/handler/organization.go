package handler

import (
	"github.com/gin-gonic/gin"

	identityapp "github.com/resto/backend/internal/application/identity"
)

// OrganizationHandler handles tenant registration and settings endpoints.
// Registration is unauthenticated; the settings endpoints operate on the
// caller's own organization resolved from the request context.
type OrganizationHandler struct {
	BaseHandler
	orgService *identityapp.OrganizationService
}

// NewOrganizationHandler creates an OrganizationHandler
func NewOrganizationHandler(orgService *identityapp.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{orgService: orgService}
}

// Create registers a new organization
func (h *OrganizationHandler) Create(c *gin.Context) {
	var req identityapp.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	org, err := h.orgService.CreateOrganization(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, org)
}

// Get returns the caller's organization
func (h *OrganizationHandler) Get(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	org, err := h.orgService.GetOrganization(c.Request.Context(), organizationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, org)
}

// UpdateSettings updates the caller's organization settings
func (h *OrganizationHandler) UpdateSettings(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var req identityapp.UpdateOrganizationSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	org, err := h.orgService.UpdateSettings(c.Request.Context(), organizationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, org)
}
