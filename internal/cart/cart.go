package cart

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Line is one cart line item. Title, image, and price are denormalized copies
// captured when the item was added and are not re-synced with the catalog.
type Line struct {
	ItemID   string  `json:"itemId"`
	Title    string  `json:"title"`
	Image    string  `json:"image"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// UnmarshalJSON decodes a line leniently. Legacy carts contain price and
// quantity as JSON strings, nulls, or garbage; anything non-numeric decodes
// to 0 rather than failing the whole cart.
func (l *Line) UnmarshalJSON(data []byte) error {
	var raw struct {
		ItemID   string          `json:"itemId"`
		Title    string          `json:"title"`
		Image    string          `json:"image"`
		Price    json.RawMessage `json:"price"`
		Quantity json.RawMessage `json:"quantity"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	l.ItemID = raw.ItemID
	l.Title = raw.Title
	l.Image = raw.Image
	l.Price = lenientFloat(raw.Price)
	l.Quantity = int(lenientFloat(raw.Quantity))
	return nil
}

// LenientQuantity parses a raw JSON value as a quantity under the same rules
// lines use: string-encoded numbers parse, anything else is 0.
func LenientQuantity(raw json.RawMessage) int {
	return int(lenientFloat(raw))
}

// lenientFloat parses a raw JSON value as a number, accepting string-encoded
// numbers and returning 0 for null, missing, or non-numeric values.
func lenientFloat(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}

	return 0
}

// find returns the index of the line with the given item id, or -1.
func find(lines []Line, itemID string) int {
	for i := range lines {
		if lines[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

// clone returns a copy of the line slice. All mutation ops work on copies so
// callers can compare staged state against the previous committed state.
func clone(lines []Line) []Line {
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}

// AddOrIncrement returns a new list with the item added at quantity 1, or its
// existing line's quantity increased by 1 if the item id is already present.
// The existing line's price, title, and image are kept; item is only consulted
// for the match.
func AddOrIncrement(lines []Line, item Line) []Line {
	out := clone(lines)
	if i := find(out, item.ItemID); i >= 0 {
		out[i].Quantity++
		return out
	}
	item.Quantity = 1
	return append(out, item)
}

// SetQuantity returns a new list with the line's quantity set. Values below 1
// clamp to 1; setting a quantity never removes a line, removal is always the
// explicit Remove operation. Absent item id is a no-op.
func SetQuantity(lines []Line, itemID string, quantity int) []Line {
	out := clone(lines)
	if i := find(out, itemID); i >= 0 {
		if quantity < 1 {
			quantity = 1
		}
		out[i].Quantity = quantity
	}
	return out
}

// Increment returns a new list with the line's quantity increased by 1.
func Increment(lines []Line, itemID string) []Line {
	out := clone(lines)
	if i := find(out, itemID); i >= 0 {
		out[i].Quantity++
	}
	return out
}

// Decrement returns a new list with the line's quantity decreased by 1.
// A line at quantity 1 is left unchanged; decrementing never removes.
func Decrement(lines []Line, itemID string) []Line {
	out := clone(lines)
	if i := find(out, itemID); i >= 0 && out[i].Quantity > 1 {
		out[i].Quantity--
	}
	return out
}

// Remove returns a new list without the matching line. Absent id is a no-op.
func Remove(lines []Line, itemID string) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.ItemID != itemID {
			out = append(out, l)
		}
	}
	return out
}

// Total sums price*quantity across lines. Corrupt lines (zero or negative
// price or quantity from lenient decoding) contribute 0.
func Total(lines []Line) float64 {
	var total float64
	for _, l := range lines {
		if l.Price <= 0 || l.Quantity <= 0 {
			continue
		}
		total += l.Price * float64(l.Quantity)
	}
	return total
}

// Count sums quantities across lines, ignoring corrupt lines.
func Count(lines []Line) int {
	var count int
	for _, l := range lines {
		if l.Quantity > 0 {
			count += l.Quantity
		}
	}
	return count
}
