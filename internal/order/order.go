package order

import (
	"encoding/json"
	"strings"
	"time"
)

// Item is one ordered line. Same shape as a cart line: title, image, and
// price are frozen at order time.
type Item struct {
	ItemID   string  `json:"itemId"`
	Title    string  `json:"title"`
	Image    string  `json:"image"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Order is an order as the backend returns it. Immutable once created except
// for OrderStatus, which changes only through explicit status updates.
type Order struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Items           []Item    `json:"orderItems"`
	ShippingAddress string    `json:"shippingAddress"`
	TotalPrice      float64   `json:"totalPrice"`
	OrderStatus     string    `json:"orderStatus"`
	OrderAt         time.Time `json:"orderAt"`
}

// Status returns the cleaned status of the order.
func (o *Order) Status() Status {
	return Clean(o.OrderStatus)
}

// FormatShippingAddress normalizes an address for display. Legacy rows store
// the address as a JSON blob with a nested shippingAddress or address field;
// one unwrap layer is applied. Unparseable blobs and plain strings pass
// through unchanged.
func FormatShippingAddress(address string) string {
	if address == "" {
		return ""
	}

	if !strings.HasPrefix(address, "{") || !strings.HasSuffix(address, "}") {
		return address
	}

	var blob struct {
		ShippingAddress string `json:"shippingAddress"`
		Address         string `json:"address"`
	}
	if err := json.Unmarshal([]byte(address), &blob); err != nil {
		return address
	}
	if blob.ShippingAddress != "" {
		return blob.ShippingAddress
	}
	if blob.Address != "" {
		return blob.Address
	}
	return address
}
