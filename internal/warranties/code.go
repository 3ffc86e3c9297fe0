package warranties

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	codePrefix    = "WR"
	maxCodeLength = 96
)

// codePattern matches WR-<ORDER_NUMBER>-<LINE_INDEX>-<EPOCH_MS>. Order
// numbers may themselves contain hyphens.
var codePattern = regexp.MustCompile(`^WR-([A-Za-z0-9][A-Za-z0-9-]*)-([1-9][0-9]{0,3})-([0-9]{10,16})$`)

var orderNumberUnsafe = regexp.MustCompile(`[^A-Za-z0-9-]+`)

// FormatCode builds the public warranty code for a line of an order.
// Characters outside [A-Za-z0-9-] in the order number become hyphens.
func FormatCode(orderNumber string, lineIndex int, at time.Time) string {
	safe := orderNumberUnsafe.ReplaceAllString(strings.TrimSpace(orderNumber), "-")
	safe = strings.Trim(safe, "-")
	return fmt.Sprintf("%s-%s-%d-%d", codePrefix, safe, lineIndex, at.UnixMilli())
}

// ValidCodeFormat reports whether code could have been produced by FormatCode.
func ValidCodeFormat(code string) bool {
	if code == "" || len(code) > maxCodeLength {
		return false
	}
	return codePattern.MatchString(code)
}
