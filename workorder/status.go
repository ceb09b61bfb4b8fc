package workorder

import (
	"strings"

	"autoservice-backend/models"
)

// NormalizeStatus maps stored status spellings onto the canonical set.
// Unknown values become NEW.
func NormalizeStatus(raw models.WorkStatus) models.WorkStatus {
	s := strings.ToUpper(strings.TrimSpace(string(raw)))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	switch s {
	case "PAYED", "PAID":
		return models.StatusPayed
	case "PENDING_PAYMENT", "PENDING":
		return models.StatusPendingPayment
	case "IN_PROGRESS", "INPROGRESS", "ISSUED":
		return models.StatusInProgress
	}
	return models.StatusNew
}

// DeriveStatus resolves the work status of o.
//
// PAYED and PENDING_PAYMENT already on the order are kept. When
// hasExplicitStatus is set, any other non-NEW status on the order is kept as
// well; this is how an operator's PAYED -> IN_PROGRESS correction survives.
// Otherwise payments imply PAYED, content implies IN_PROGRESS, and the rest is NEW.
func DeriveStatus(o models.Order, hasExplicitStatus bool) models.WorkStatus {
	current := NormalizeStatus(o.Status)
	switch {
	case current == models.StatusPayed || current == models.StatusPendingPayment:
		return current
	case hasExplicitStatus && current != models.StatusNew:
		return current
	case len(o.Payments) > 0:
		return models.StatusPayed
	case o.HasContent():
		return models.StatusInProgress
	}
	return models.StatusNew
}
