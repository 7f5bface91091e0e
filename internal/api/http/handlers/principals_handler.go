package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campus360/incident-service/internal/api/dto"
	"github.com/campus360/incident-service/internal/service"
)

// PrincipalsHandler lists principals known to the service.
type PrincipalsHandler struct {
	service *service.PrincipalService
}

// NewPrincipalsHandler constructs handler.
func NewPrincipalsHandler(principalService *service.PrincipalService) *PrincipalsHandler {
	return &PrincipalsHandler{service: principalService}
}

// Technicians GET /principals/technicians.
func (h *PrincipalsHandler) Technicians(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	known, err := h.service.ListTechnicians(c.UserContext(), principal)
	if err != nil {
		return err
	}
	resp := make([]dto.PrincipalResponse, 0, len(known))
	for _, p := range known {
		resp = append(resp, dto.PrincipalResponse{
			SubjectID:   p.SubjectID,
			Email:       p.Email,
			DisplayName: p.DisplayName,
			Role:        string(p.Role),
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}
