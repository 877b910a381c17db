package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type PlanDTO struct {
	PriceID    string  `json:"price_id"`
	ProductID  string  `json:"product_id"`
	Name       string  `json:"name"`
	Currency   string  `json:"currency"`
	UnitAmount float64 `json:"unit_amount"` // major units
	Interval   string  `json:"interval"`    // month/year
}

// ListPlans is GET /plans: the active recurring prices straight from Stripe.
func (h *Handler) ListPlans(c *gin.Context) {
	prices, err := h.provider.ListPrices()
	if err != nil {
		h.log.Errorw("failed to list prices", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch plans"})
		return
	}

	plans := []PlanDTO{}
	for _, p := range prices {
		if !p.Active || p.Recurring == nil {
			continue
		}
		if p.Product == nil || !p.Product.Active {
			continue
		}
		if p.Metadata["visible"] == "false" {
			continue
		}

		plans = append(plans, PlanDTO{
			PriceID:    p.ID,
			ProductID:  p.Product.ID,
			Name:       p.Product.Name,
			Currency:   string(p.Currency),
			UnitAmount: float64(p.UnitAmount) / 100.0,
			Interval:   string(p.Recurring.Interval),
		})
	}

	c.JSON(http.StatusOK, plans)
}
