package utils

import (
	"strconv"
	"strings"
)

// ExtractPrice keeps only the digits of a formatted price such as
// "₹ 1,20,000/month". Strings without digits yield 0.
func ExtractPrice(s string) int64 {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// GroupIndian formats n with Indian digit grouping: 1,20,00,000.
func GroupIndian(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	if len(s) > 3 {
		head, tail := s[:len(s)-3], s[len(s)-3:]
		var parts []string
		for len(head) > 2 {
			parts = append([]string{head[len(head)-2:]}, parts...)
			head = head[:len(head)-2]
		}
		if head != "" {
			parts = append([]string{head}, parts...)
		}
		s = strings.Join(parts, ",") + "," + tail
	}
	if neg {
		return "-" + s
	}
	return s
}

// FormatRupees renders n as "₹ 50,000".
func FormatRupees(n int64) string {
	return "₹ " + GroupIndian(n)
}
