package domain

import (
	"encoding/json"
	"fmt"
)

// Wire format of an order document. Two browser surfaces write these
// concurrently, so decoding tolerates partially-written values: numerics
// that are missing or non-numeric coerce to 0, text fields to "", and
// malformed item entries are skipped. Only a document that is not JSON at
// all is an error.

type orderDoc struct {
	Rev                 int64     `json:"rev"`
	Items               []itemDoc `json:"items"`
	ServiceCharge       float64   `json:"serviceCharge"`
	CustomerName        string    `json:"customerName"`
	CustomerPhoneNumber string    `json:"customerPhoneNumber"`
	TableNumber         string    `json:"tableNumber"`
	Notes               string    `json:"notes"`
}

type itemDoc struct {
	ItemID    string  `json:"itemId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
	ItemCode  string  `json:"itemCode,omitempty"`
}

// MarshalOrder encodes an order document with the given revision embedded.
// The order's ID is not part of the document; it lives in the storage key.
func MarshalOrder(o Order, rev int64) ([]byte, error) {
	doc := orderDoc{
		Rev:                 rev,
		Items:               make([]itemDoc, 0, len(o.Items)),
		ServiceCharge:       o.ServiceCharge,
		CustomerName:        o.CustomerName,
		CustomerPhoneNumber: o.CustomerPhoneNumber,
		TableNumber:         o.TableNumber,
		Notes:               o.Notes,
	}
	for _, it := range o.Items {
		doc.Items = append(doc.Items, itemDoc(it))
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}
	return b, nil
}

// UnmarshalOrder decodes an order document, coercing malformed fields to
// safe defaults, and returns the order together with its revision.
func UnmarshalOrder(data []byte) (Order, int64, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Order{}, 0, fmt.Errorf("unmarshal order: %w", err)
	}

	o := Order{
		ServiceCharge:       asNumber(raw["serviceCharge"]),
		CustomerName:        asString(raw["customerName"]),
		CustomerPhoneNumber: asString(raw["customerPhoneNumber"]),
		TableNumber:         asString(raw["tableNumber"]),
		Notes:               asString(raw["notes"]),
	}
	if o.ServiceCharge < 0 {
		o.ServiceCharge = 0
	}

	if items, ok := raw["items"].([]any); ok {
		for _, entry := range items {
			fields, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			it := OrderItem{
				ItemID:    asString(fields["itemId"]),
				Name:      asString(fields["name"]),
				UnitPrice: asNumber(fields["unitPrice"]),
				Quantity:  int(asNumber(fields["quantity"])),
				ItemCode:  asString(fields["itemCode"]),
			}
			if it.ItemID == "" {
				continue
			}
			if it.UnitPrice < 0 {
				it.UnitPrice = 0
			}
			if it.Quantity < 0 {
				it.Quantity = 0
			}
			o.Items = append(o.Items, it)
		}
	}

	return o, int64(asNumber(raw["rev"])), nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asNumber(v any) float64 {
	f, _ := v.(float64)
	return f
}
