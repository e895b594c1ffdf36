package domain

// Order is the shared unit of synchronization: one editable order, stored
// whole under its ID and replaced whole on every write.
type Order struct {
	ID                  string
	Items               []OrderItem
	ServiceCharge       float64
	CustomerName        string
	CustomerPhoneNumber string
	TableNumber         string
	Notes               string
}

type OrderItem struct {
	ItemID    string
	Name      string
	UnitPrice float64
	Quantity  int
	ItemCode  string
}

// Snapshot is the complete current value of an order as delivered by the
// store. A nil Order means the key is absent ("order not found"), which is
// distinct from an order with zero items. Revision is assigned by the store
// on every write and is never part of content comparisons.
type Snapshot struct {
	Order    *Order
	Revision int64
}

// Clone returns a deep copy; Items never alias the receiver's slice.
func (o Order) Clone() Order {
	c := o
	if o.Items != nil {
		c.Items = make([]OrderItem, len(o.Items))
		copy(c.Items, o.Items)
	}
	return c
}

func (o Order) Subtotal() float64 {
	var sum float64
	for _, it := range o.Items {
		sum += it.UnitPrice * float64(it.Quantity)
	}
	return sum
}

func (o Order) Total() float64 {
	return o.Subtotal() + o.ServiceCharge
}

// FindItem returns the index of the item with the given ID.
func (o Order) FindItem(itemID string) (int, bool) {
	for i, it := range o.Items {
		if it.ItemID == itemID {
			return i, true
		}
	}
	return -1, false
}
