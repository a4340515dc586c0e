package currency

import (
	"strconv"
	"strings"
)

// Format renders an amount as a display string with two decimal places
// and comma thousands separators. With showSymbol the registered symbol
// is used; unknown currencies fall back to an ISO code prefix.
func Format(amount float64, code string, showSymbol bool) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	body := groupThousands(amount)

	if !showSymbol {
		return body
	}
	if sym, ok := symbols[code]; ok {
		return sym + body
	}
	if code == "" {
		return body
	}
	return code + " " + body
}

func groupThousands(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	// Fixed 2dp string, then group the integer part.
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteString(fracPart)
	return b.String()
}
