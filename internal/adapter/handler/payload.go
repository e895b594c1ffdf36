package handler

import "github.com/tillboard/ordersync/internal/core/domain"

type orderPayload struct {
	OrderID             string        `json:"order_id"`
	Items               []itemPayload `json:"items"`
	ServiceCharge       float64       `json:"service_charge"`
	CustomerName        string        `json:"customer_name"`
	CustomerPhoneNumber string        `json:"customer_phone_number"`
	TableNumber         string        `json:"table_number"`
	Notes               string        `json:"notes"`
	Subtotal            float64       `json:"subtotal"`
	Total               float64       `json:"total"`
}

type itemPayload struct {
	ItemID    string  `json:"item_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	ItemCode  string  `json:"item_code,omitempty"`
}

func orderToPayload(o domain.Order) orderPayload {
	p := orderPayload{
		OrderID:             o.ID,
		Items:               make([]itemPayload, 0, len(o.Items)),
		ServiceCharge:       o.ServiceCharge,
		CustomerName:        o.CustomerName,
		CustomerPhoneNumber: o.CustomerPhoneNumber,
		TableNumber:         o.TableNumber,
		Notes:               o.Notes,
		Subtotal:            o.Subtotal(),
		Total:               o.Total(),
	}
	for _, it := range o.Items {
		p.Items = append(p.Items, itemPayload(it))
	}
	return p
}
