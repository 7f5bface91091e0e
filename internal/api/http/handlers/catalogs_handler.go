package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campus360/incident-service/internal/api/dto"
	"github.com/campus360/incident-service/internal/domain"
	"github.com/campus360/incident-service/internal/service"
	apperrors "github.com/campus360/incident-service/pkg/util"
)

// CatalogsHandler serves catalog listings and administrative edits.
type CatalogsHandler struct {
	service *service.CatalogService
}

// NewCatalogsHandler constructs handler.
func NewCatalogsHandler(catalogService *service.CatalogService) *CatalogsHandler {
	return &CatalogsHandler{service: catalogService}
}

// List GET /catalogs/:kind.
func (h *CatalogsHandler) List(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	entries, err := h.service.List(c.UserContext(), principal, domain.CatalogKind(c.Params("kind")), c.QueryBool("include_inactive", false))
	if err != nil {
		return err
	}
	resp := make([]dto.CatalogEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, catalogEntryResponse(entry))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Create POST /catalogs/:kind.
func (h *CatalogsHandler) Create(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateCatalogEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	entry, err := h.service.CreateEntry(c.UserContext(), principal, domain.CatalogKind(c.Params("kind")), service.CatalogEntryInput{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Building:    req.Building,
		Floor:       req.Floor,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": catalogEntryResponse(*entry)})
}

// SetActive PATCH /catalogs/:kind/:code.
func (h *CatalogsHandler) SetActive(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.SetCatalogActiveRequest
	if err := c.BodyParser(&req); err != nil || req.Active == nil {
		return apperrors.NewValidationError("active flag required", nil)
	}
	entry, err := h.service.SetActive(c.UserContext(), principal, domain.CatalogKind(c.Params("kind")), c.Params("code"), *req.Active)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": catalogEntryResponse(*entry)})
}
