package service

import "github.com/tillboard/ordersync/internal/core/domain"

// OrdersEqual reports whether two orders are materially the same: the
// reduced item projection (id, name, unit price, quantity) plus the scalar
// fields. Revision stamps live outside Order and never enter the comparison,
// so the echo of a client's own write compares equal to its local model.
func OrdersEqual(a, b domain.Order) bool {
	if len(a.Items) != len(b.Items) {
		return false
	}
	for i := range a.Items {
		x, y := a.Items[i], b.Items[i]
		if x.ItemID != y.ItemID || x.Name != y.Name ||
			x.UnitPrice != y.UnitPrice || x.Quantity != y.Quantity {
			return false
		}
	}
	return a.ServiceCharge == b.ServiceCharge &&
		a.CustomerName == b.CustomerName &&
		a.CustomerPhoneNumber == b.CustomerPhoneNumber &&
		a.TableNumber == b.TableNumber &&
		a.Notes == b.Notes
}
