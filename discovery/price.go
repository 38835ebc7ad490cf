package discovery

import (
	"EstateHub/utils"
	"fmt"
)

const (
	lakh  = 1_00_000
	crore = 1_00_00_000
)

// PriceInWords renders a rupee amount the way it is read out: crores with
// two decimals, lakhs, or the grouped rupee figure below a lakh.
func PriceInWords(n int64) string {
	switch {
	case n >= crore:
		return fmt.Sprintf("%.2f crores", float64(n)/crore)
	case n >= lakh:
		if n%lakh == 0 {
			if n == lakh {
				return "1 lakh"
			}
			return fmt.Sprintf("%d lakhs", n/lakh)
		}
		return fmt.Sprintf("%.2f lakhs", float64(n)/lakh)
	default:
		return utils.FormatRupees(n)
	}
}
