package order

import "strings"

// Status is an order lifecycle state. The canonical values are the Vietnamese
// labels used both as the stored value and the default display text, matching
// the backend's data.
type Status string

const (
	StatusUnset      Status = "Chưa cập nhật"
	StatusProcessing Status = "Đang xử lý"
	StatusShipping   Status = "Đang giao"
	StatusDelivered  Status = "Đã giao"
	StatusCancelled  Status = "Đã hủy"
	StatusPaid       Status = "Đã thanh toán"
)

// AllStatuses lists every status an admin may set, in display order.
func AllStatuses() []Status {
	return []Status{
		StatusUnset,
		StatusProcessing,
		StatusShipping,
		StatusDelivered,
		StatusCancelled,
		StatusPaid,
	}
}

// legacyStatuses maps English status codes found in older order rows to their
// canonical Vietnamese labels.
var legacyStatuses = map[string]Status{
	"PENDING":   StatusProcessing,
	"SHIPPING":  StatusShipping,
	"COMPLETED": StatusDelivered,
	"CANCELLED": StatusCancelled,
}

// Clean normalizes a raw status value. Legacy rows store the status as a
// serialized string-of-a-string, so exactly one surrounding double-quote pair
// is stripped. Empty input maps to StatusUnset. Legacy English codes map to
// their Vietnamese labels.
func Clean(raw string) Status {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		raw = raw[1 : len(raw)-1]
	}
	if raw == "" {
		return StatusUnset
	}
	if mapped, ok := legacyStatuses[strings.ToUpper(raw)]; ok {
		return mapped
	}
	return Status(raw)
}

// IsValid reports whether the status is one of the closed set after cleaning.
func IsValid(s Status) bool {
	for _, known := range AllStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// Color is the severity bucket a status renders with.
type Color string

const (
	ColorError   Color = "error"
	ColorSuccess Color = "success"
	ColorInfo    Color = "info"
	ColorWarning Color = "warning"
	ColorDefault Color = "default"
)

// StatusColor maps a status to its display color by case-insensitive
// substring match on the cleaned value. Substring matching is intentional:
// rows in the wild carry extra detail appended to the status text.
func StatusColor(s Status) Color {
	v := strings.ToLower(string(s))

	switch {
	case strings.Contains(v, "đã hủy"):
		return ColorError
	case strings.Contains(v, "đã giao"), strings.Contains(v, "thanh toán"):
		return ColorSuccess
	case strings.Contains(v, "đang giao"):
		return ColorInfo
	case strings.Contains(v, "đang xử lý"):
		return ColorWarning
	default:
		return ColorDefault
	}
}
