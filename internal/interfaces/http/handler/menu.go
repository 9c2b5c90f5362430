package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	menuapp "github.com/resto/backend/internal/application/menu"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/resto/backend/internal/interfaces/http/dto"
)

// MenuHandler handles recipe and menu item endpoints
type MenuHandler struct {
	BaseHandler
	menuService *menuapp.MenuService
}

// NewMenuHandler creates a MenuHandler
func NewMenuHandler(menuService *menuapp.MenuService) *MenuHandler {
	return &MenuHandler{menuService: menuService}
}

// listFilter converts bound list parameters into a domain filter
func listFilter(req dto.ListRequest) shared.Filter {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	filter.Search = req.Search
	return filter
}

// CreateRecipe creates a recipe with its lines priced at current ingredient costs
func (h *MenuHandler) CreateRecipe(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var req menuapp.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	recipe, err := h.menuService.CreateRecipe(c.Request.Context(), organizationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, recipe)
}

// GetRecipe returns a recipe with its priced lines
func (h *MenuHandler) GetRecipe(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid recipe ID format")
		return
	}

	recipe, err := h.menuService.GetRecipe(c.Request.Context(), organizationID, recipeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, recipe)
}

// ListRecipes returns recipes with pagination
func (h *MenuHandler) ListRecipes(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filter := listFilter(listReq)

	recipes, total, err := h.menuService.ListRecipes(c.Request.Context(), organizationID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, recipes, total, filter.Page, filter.PageSize)
}

// RecalculateRecipeCost re-prices a recipe at current ingredient costs and
// cascades into linked menu items
func (h *MenuHandler) RecalculateRecipeCost(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid recipe ID format")
		return
	}

	recipe, err := h.menuService.RecalculateRecipeCost(c.Request.Context(), organizationID, recipeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, recipe)
}

// CreateMenuItem creates a menu item, optionally linked to a recipe
func (h *MenuHandler) CreateMenuItem(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var req menuapp.CreateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.menuService.CreateMenuItem(c.Request.Context(), organizationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, item)
}

// UpdateMenuItem applies partial updates; recipe or price changes refresh the
// derived cost and margin
func (h *MenuHandler) UpdateMenuItem(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid menu item ID format")
		return
	}

	var req menuapp.UpdateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.menuService.UpdateMenuItem(c.Request.Context(), organizationID, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// GetMenuItem returns a menu item with its derived cost fields
func (h *MenuHandler) GetMenuItem(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid menu item ID format")
		return
	}

	item, err := h.menuService.GetMenuItem(c.Request.Context(), organizationID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// ListMenuItems returns menu items with pagination
func (h *MenuHandler) ListMenuItems(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filter := listFilter(listReq)
	if category := c.Query("category"); category != "" {
		filter.Filters["category"] = category
	}

	items, total, err := h.menuService.ListMenuItems(c.Request.Context(), organizationID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// RecalculateMenuItemCost refreshes one item's cost and margin from its recipe
func (h *MenuHandler) RecalculateMenuItemCost(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid menu item ID format")
		return
	}

	item, err := h.menuService.RecalculateMenuItemCost(c.Request.Context(), organizationID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}
