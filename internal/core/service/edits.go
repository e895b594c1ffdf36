package service

import "github.com/tillboard/ordersync/internal/core/domain"

// Edit is one sanctioned mutation of the local order model. All edits flow
// through Engine.ApplyEdit; mutating the model any other way breaks the
// dirty-tracking contract. apply reports whether anything actually changed —
// an edit that leaves the model as-is does not dirty the engine.
type Edit interface {
	apply(o *domain.Order) bool
}

// AddItem appends the item, or bumps the quantity when an item with the same
// ID is already on the order. A non-positive quantity is treated as 1.
type AddItem struct {
	Item domain.OrderItem
}

func (e AddItem) apply(o *domain.Order) bool {
	if e.Item.ItemID == "" {
		return false
	}
	qty := e.Item.Quantity
	if qty <= 0 {
		qty = 1
	}
	if i, ok := o.FindItem(e.Item.ItemID); ok {
		o.Items[i].Quantity += qty
		return true
	}
	it := e.Item
	it.Quantity = qty
	if it.UnitPrice < 0 {
		it.UnitPrice = 0
	}
	o.Items = append(o.Items, it)
	return true
}

type RemoveItem struct {
	ItemID string
}

func (e RemoveItem) apply(o *domain.Order) bool {
	i, ok := o.FindItem(e.ItemID)
	if !ok {
		return false
	}
	o.Items = append(o.Items[:i], o.Items[i+1:]...)
	return true
}

// SetItemQuantity sets an item's quantity; zero or below removes the item
// outright, it is never retained at quantity 0.
type SetItemQuantity struct {
	ItemID   string
	Quantity int
}

func (e SetItemQuantity) apply(o *domain.Order) bool {
	i, ok := o.FindItem(e.ItemID)
	if !ok {
		return false
	}
	if e.Quantity <= 0 {
		o.Items = append(o.Items[:i], o.Items[i+1:]...)
		return true
	}
	if o.Items[i].Quantity == e.Quantity {
		return false
	}
	o.Items[i].Quantity = e.Quantity
	return true
}

// SetUnitPrice overrides an item's unit price. Negative prices clamp to 0.
type SetUnitPrice struct {
	ItemID    string
	UnitPrice float64
}

func (e SetUnitPrice) apply(o *domain.Order) bool {
	i, ok := o.FindItem(e.ItemID)
	if !ok {
		return false
	}
	price := e.UnitPrice
	if price < 0 {
		price = 0
	}
	if o.Items[i].UnitPrice == price {
		return false
	}
	o.Items[i].UnitPrice = price
	return true
}

type SetServiceCharge struct {
	Amount float64
}

func (e SetServiceCharge) apply(o *domain.Order) bool {
	amount := e.Amount
	if amount < 0 {
		amount = 0
	}
	if o.ServiceCharge == amount {
		return false
	}
	o.ServiceCharge = amount
	return true
}

type SetCustomerName struct{ Value string }

func (e SetCustomerName) apply(o *domain.Order) bool {
	if o.CustomerName == e.Value {
		return false
	}
	o.CustomerName = e.Value
	return true
}

type SetCustomerPhone struct{ Value string }

func (e SetCustomerPhone) apply(o *domain.Order) bool {
	if o.CustomerPhoneNumber == e.Value {
		return false
	}
	o.CustomerPhoneNumber = e.Value
	return true
}

type SetTableNumber struct{ Value string }

func (e SetTableNumber) apply(o *domain.Order) bool {
	if o.TableNumber == e.Value {
		return false
	}
	o.TableNumber = e.Value
	return true
}

type SetNotes struct{ Value string }

func (e SetNotes) apply(o *domain.Order) bool {
	if o.Notes == e.Value {
		return false
	}
	o.Notes = e.Value
	return true
}
