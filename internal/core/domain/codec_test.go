package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshal_RoundTrip(t *testing.T) {
	o := Order{
		Items: []OrderItem{
			{ItemID: "a", Name: "Latte", UnitPrice: 4.5, Quantity: 2, ItemCode: "L-1"},
			{ItemID: "b", Name: "Croissant", UnitPrice: 3, Quantity: 1},
		},
		ServiceCharge:       1.5,
		CustomerName:        "Ana",
		CustomerPhoneNumber: "555-0101",
		TableNumber:         "7",
		Notes:               "no sugar",
	}

	data, err := MarshalOrder(o, 42)
	require.NoError(t, err)

	got, rev, err := UnmarshalOrder(data)
	require.NoError(t, err)
	assert.Equal(t, int64(42), rev)
	assert.Equal(t, o.Items, got.Items)
	assert.Equal(t, o.ServiceCharge, got.ServiceCharge)
	assert.Equal(t, o.CustomerName, got.CustomerName)
	assert.Equal(t, o.Notes, got.Notes)
}

func TestUnmarshal_CoercesMalformedNumerics(t *testing.T) {
	data := []byte(`{
		"rev": "not-a-number",
		"serviceCharge": "abc",
		"items": [
			{"itemId": "a", "name": "Latte", "unitPrice": "oops", "quantity": null}
		]
	}`)

	o, rev, err := UnmarshalOrder(data)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rev)
	assert.Equal(t, 0.0, o.ServiceCharge)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 0.0, o.Items[0].UnitPrice)
	assert.Equal(t, 0, o.Items[0].Quantity)
}

func TestUnmarshal_MissingTextFieldsDefaultToEmpty(t *testing.T) {
	o, _, err := UnmarshalOrder([]byte(`{"rev": 1}`))
	require.NoError(t, err)
	assert.Equal(t, "", o.CustomerName)
	assert.Equal(t, "", o.CustomerPhoneNumber)
	assert.Equal(t, "", o.TableNumber)
	assert.Equal(t, "", o.Notes)
	assert.Empty(t, o.Items)
}

func TestUnmarshal_SkipsItemsWithoutID(t *testing.T) {
	data := []byte(`{"items": [
		{"name": "ghost", "quantity": 1},
		"garbage",
		{"itemId": "real", "name": "Latte", "unitPrice": 4, "quantity": 1}
	]}`)

	o, _, err := UnmarshalOrder(data)
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "real", o.Items[0].ItemID)
}

func TestUnmarshal_ClampsNegatives(t *testing.T) {
	data := []byte(`{
		"serviceCharge": -4,
		"items": [{"itemId": "a", "unitPrice": -1, "quantity": -2}]
	}`)

	o, _, err := UnmarshalOrder(data)
	require.NoError(t, err)
	assert.Equal(t, 0.0, o.ServiceCharge)
	assert.Equal(t, 0.0, o.Items[0].UnitPrice)
	assert.Equal(t, 0, o.Items[0].Quantity)
}

func TestUnmarshal_NotJSONIsAnError(t *testing.T) {
	_, _, err := UnmarshalOrder([]byte(`{{{`))
	assert.Error(t, err)
}

func TestUnmarshal_EmptyItemsObjectFromRedisCJSON(t *testing.T) {
	// redis cjson encodes an empty array as {}; treat it as no items
	o, rev, err := UnmarshalOrder([]byte(`{"rev": 3, "items": {}}`))
	require.NoError(t, err)
	assert.Equal(t, int64(3), rev)
	assert.Empty(t, o.Items)
}
