package domain

import "time"

// FinalizedOrder is the archival record written when an order is closed out.
// Totals are computed once at finalization; Revision records which shared
// snapshot the record was built from.
type FinalizedOrder struct {
	OrderID             string
	Revision            int64
	Items               []OrderItem
	Subtotal            float64
	ServiceCharge       float64
	Total               float64
	CustomerName        string
	CustomerPhoneNumber string
	TableNumber         string
	Notes               string
	FinalizedAt         time.Time
}
