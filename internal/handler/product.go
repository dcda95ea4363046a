package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rts-transit/rapidride/internal/repository"
)

// ProductHandler serves the fare catalog. Products map fare classes to
// prices and an external checkout link; riders complete payment outside
// this service and come back to issue the ticket.
type ProductHandler struct {
	Products *repository.ProductRepo
}

func NewProductHandler(p *repository.ProductRepo) *ProductHandler {
	return &ProductHandler{Products: p}
}

type productResp struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  uint32 `json:"price_cents"`
	PaymentLink string `json:"payment_link"`
}

// List returns all active catalog entries, cheapest first.
func (h *ProductHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	products, err := h.Products.ListActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]productResp, 0, len(products))
	for _, p := range products {
		out = append(out, productResp{
			Name:        p.Name,
			Description: p.Description,
			PriceCents:  p.PriceCents,
			PaymentLink: p.PaymentLink,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns a single catalog entry by fare class name.
func (h *ProductHandler) Get(c echo.Context) error {
	name := c.Param("name")
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Products.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !p.Active {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not offered"})
	}
	return c.JSON(http.StatusOK, productResp{
		Name:        p.Name,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		PaymentLink: p.PaymentLink,
	})
}
