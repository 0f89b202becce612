package finance

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatINR renders an amount with the Indian digit grouping (last three
// digits, then groups of two) and a rupee prefix, e.g. ₹12,34,567.
func FormatINR(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	whole := strconv.FormatFloat(amount, 'f', 0, 64)
	if len(whole) > 3 {
		head := whole[:len(whole)-3]
		tail := whole[len(whole)-3:]

		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		if head != "" {
			groups = append([]string{head}, groups...)
		}
		whole = strings.Join(groups, ",") + "," + tail
	}

	if neg {
		return fmt.Sprintf("-₹%s", whole)
	}
	return fmt.Sprintf("₹%s", whole)
}
