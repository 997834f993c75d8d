package cart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCart() []Line {
	return []Line{
		{ItemID: "b1", Title: "Dế Mèn Phiêu Lưu Ký", Image: "demen.jpg", Price: 100, Quantity: 2},
		{ItemID: "b2", Title: "Số Đỏ", Image: "sodo.jpg", Price: 50, Quantity: 1},
	}
}

func TestAddOrIncrement_NewItem(t *testing.T) {
	c := sampleCart()
	item := Line{ItemID: "b3", Title: "Tắt Đèn", Image: "tatden.jpg", Price: 75, Quantity: 99}

	got := AddOrIncrement(c, item)

	require.Len(t, got, 3)
	assert.Equal(t, "b3", got[2].ItemID)
	assert.Equal(t, 1, got[2].Quantity, "new lines always start at quantity 1")
	assert.Equal(t, 75.0, got[2].Price)
	assert.Equal(t, sampleCart(), c, "input must not be mutated")
}

func TestAddOrIncrement_ExistingItem(t *testing.T) {
	c := sampleCart()

	got := AddOrIncrement(c, Line{ItemID: "b1", Title: "different title", Price: 999})

	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].Quantity)
	assert.Equal(t, "Dế Mèn Phiêu Lưu Ký", got[0].Title, "existing line fields are kept")
	assert.Equal(t, 100.0, got[0].Price)
	assert.Equal(t, c[1], got[1], "other lines unchanged")
	assert.Equal(t, sampleCart(), c)
}

func TestAddOrIncrement_EmptyCart(t *testing.T) {
	got := AddOrIncrement(nil, Line{ItemID: "b1", Price: 10})
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Quantity)
}

func TestSetQuantity_ClampsToOne(t *testing.T) {
	for _, q := range []int{0, -5} {
		got := SetQuantity(sampleCart(), "b1", q)
		assert.Equal(t, 1, got[0].Quantity, "quantity %d must clamp to 1", q)
		assert.Len(t, got, 2, "clamping must never remove the line")
	}
}

func TestSetQuantity_Normal(t *testing.T) {
	got := SetQuantity(sampleCart(), "b2", 7)
	assert.Equal(t, 7, got[1].Quantity)
}

func TestSetQuantity_AbsentID(t *testing.T) {
	c := sampleCart()
	assert.Equal(t, c, SetQuantity(c, "missing", 5))
}

func TestIncrement(t *testing.T) {
	got := Increment(sampleCart(), "b2")
	assert.Equal(t, 2, got[1].Quantity)
}

func TestDecrement_NoOpAtOne(t *testing.T) {
	c := sampleCart()
	got := Decrement(c, "b2")
	assert.Equal(t, c, got, "decrement at quantity 1 must return an unchanged cart")
}

func TestDecrement_AboveOne(t *testing.T) {
	got := Decrement(sampleCart(), "b1")
	assert.Equal(t, 1, got[0].Quantity)
}

func TestRemove(t *testing.T) {
	got := Remove(sampleCart(), "b1")
	require.Len(t, got, 1)
	assert.Equal(t, "b2", got[0].ItemID)
}

func TestRemove_AbsentID(t *testing.T) {
	c := sampleCart()
	assert.Equal(t, c, Remove(c, "missing"))
}

func TestTotal(t *testing.T) {
	c := []Line{
		{ItemID: "a", Price: 100, Quantity: 2},
		{ItemID: "b", Price: 50, Quantity: 1},
	}
	assert.Equal(t, 250.0, Total(c))
}

func TestTotal_CorruptLineContributesZero(t *testing.T) {
	c := []Line{
		{ItemID: "a", Price: 100, Quantity: 2},
		{ItemID: "b", Price: 50, Quantity: 1},
		{ItemID: "c", Price: 0, Quantity: 3}, // price failed to decode
	}
	assert.Equal(t, 250.0, Total(c))
}

func TestCount(t *testing.T) {
	assert.Equal(t, 3, Count(sampleCart()))
	assert.Equal(t, 0, Count(nil))
}

func TestLine_LenientDecoding(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		price    float64
		quantity int
	}{
		{"plain numbers", `{"itemId":"b1","price":120.5,"quantity":2}`, 120.5, 2},
		{"string-encoded numbers", `{"itemId":"b1","price":"120000","quantity":"3"}`, 120000, 3},
		{"null price", `{"itemId":"b1","price":null,"quantity":3}`, 0, 3},
		{"missing fields", `{"itemId":"b1"}`, 0, 0},
		{"garbage values", `{"itemId":"b1","price":"abc","quantity":{}}`, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l Line
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &l))
			assert.Equal(t, tt.price, l.Price)
			assert.Equal(t, tt.quantity, l.Quantity)
		})
	}
}

func TestEndToEnd_DoubleAddSingleLine(t *testing.T) {
	item := Line{ItemID: "b9", Title: "Nhà Giả Kim", Price: 80}

	c := AddOrIncrement(nil, item)
	c = AddOrIncrement(c, item)

	require.Len(t, c, 1)
	assert.Equal(t, 2, c[0].Quantity)
	assert.Equal(t, 160.0, Total(c))
}
