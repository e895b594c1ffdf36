package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tillboard/ordersync/internal/core/domain"
)

func sampleOrder() domain.Order {
	return domain.Order{
		ID: "o1",
		Items: []domain.OrderItem{
			{ItemID: "a", Name: "Latte", UnitPrice: 4.5, Quantity: 2},
			{ItemID: "b", Name: "Croissant", UnitPrice: 3, Quantity: 1},
		},
		ServiceCharge: 1.5,
		CustomerName:  "Ana",
		Notes:         "no sugar",
	}
}

func TestOrdersEqual_Identical(t *testing.T) {
	assert.True(t, OrdersEqual(sampleOrder(), sampleOrder()))
}

func TestOrdersEqual_IgnoresItemCodeAndID(t *testing.T) {
	// only the reduced projection counts: a differing item code or order ID
	// is not a material change
	a := sampleOrder()
	b := sampleOrder()
	b.ID = "other"
	b.Items[0].ItemCode = "L-1"
	assert.True(t, OrdersEqual(a, b))
}

func TestOrdersEqual_DetectsItemChanges(t *testing.T) {
	cases := map[string]func(*domain.Order){
		"quantity":   func(o *domain.Order) { o.Items[0].Quantity = 3 },
		"unit price": func(o *domain.Order) { o.Items[0].UnitPrice = 5 },
		"name":       func(o *domain.Order) { o.Items[0].Name = "Mocha" },
		"item id":    func(o *domain.Order) { o.Items[0].ItemID = "z" },
		"removed":    func(o *domain.Order) { o.Items = o.Items[:1] },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			b := sampleOrder()
			mutate(&b)
			assert.False(t, OrdersEqual(sampleOrder(), b))
		})
	}
}

func TestOrdersEqual_DetectsScalarChanges(t *testing.T) {
	cases := map[string]func(*domain.Order){
		"service charge": func(o *domain.Order) { o.ServiceCharge = 2 },
		"customer name":  func(o *domain.Order) { o.CustomerName = "Bo" },
		"phone":          func(o *domain.Order) { o.CustomerPhoneNumber = "1" },
		"table":          func(o *domain.Order) { o.TableNumber = "9" },
		"notes":          func(o *domain.Order) { o.Notes = "extra shot" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			b := sampleOrder()
			mutate(&b)
			assert.False(t, OrdersEqual(sampleOrder(), b))
		})
	}
}

func TestOrdersEqual_ItemOrderMatters(t *testing.T) {
	a := sampleOrder()
	b := sampleOrder()
	b.Items[0], b.Items[1] = b.Items[1], b.Items[0]
	assert.False(t, OrdersEqual(a, b))
}

func TestOrdersEqual_EmptyVsNilItems(t *testing.T) {
	a := domain.Order{Items: nil}
	b := domain.Order{Items: []domain.OrderItem{}}
	assert.True(t, OrdersEqual(a, b))
}
