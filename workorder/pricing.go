// Package workorder holds the work-order engine: pricing, status derivation,
// draft reconciliation and the lifecycle controller that drives them.
package workorder

import (
	"math"

	"autoservice-backend/models"
	"autoservice-backend/utils"
)

// Totals is the priced view of an order.
type Totals struct {
	ServicesTotal float64 `json:"servicesTotal"`
	PartsTotal    float64 `json:"partsTotal"`
	DiscountValue float64 `json:"discountValue"`
	Total         float64 `json:"total"`
}

// ComputeTotals prices line items and applies the services-only discount.
// A positive amount wins over a positive percent; the two never add up.
func ComputeTotals(services, parts []models.LineItem, discountPercent, discountAmount string) Totals {
	t := Totals{
		ServicesTotal: sumLines(services),
		PartsTotal:    sumLines(parts),
	}

	base := t.ServicesTotal
	var discount float64
	if amount, ok := utils.ParseDecimal(discountAmount); ok && amount > 0 {
		discount = amount
	} else if percent, ok := utils.ParseDecimal(discountPercent); ok && percent > 0 {
		discount = base * percent / 100
	}
	t.DiscountValue = clamp(discount, 0, base)
	t.Total = math.Max(t.ServicesTotal-t.DiscountValue, 0) + t.PartsTotal
	return t
}

// OrderTotals prices an order using its stored discount fields.
func OrderTotals(o models.Order) Totals {
	return ComputeTotals(o.Services, o.Parts, utils.FormatDecimal(o.DiscountPercent), utils.FormatDecimal(o.DiscountAmount))
}

// Paid sums recorded payments; deferred ("later") entries are excluded.
func Paid(payments []models.Payment) float64 {
	var paid float64
	for _, p := range payments {
		if p.Method == models.MethodLater {
			continue
		}
		paid += p.Amount
	}
	return paid
}

// Due is the outstanding balance, never negative.
func Due(o models.Order) float64 {
	return utils.Round2(math.Max(OrderTotals(o).Total-Paid(o.Payments), 0))
}

func sumLines(items []models.LineItem) float64 {
	var s float64
	for _, it := range items {
		s += it.Sum()
	}
	return s
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
