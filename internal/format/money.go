package format

import (
	"fmt"
	"strconv"
	"strings"

	"fracc/internal/core"
)

// Pesos formats centavos as "$1,234.56".
func Pesos(m core.Money) string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := groupThousands(strconv.FormatInt(cents/100, 10)) + "." + fmt.Sprintf("%02d", cents%100)
	if neg {
		return "-$" + s
	}
	return "$" + s
}

// Amount formats a decimal-string amount; unreadable input renders as "$<raw> MXN".
func Amount(raw string) string {
	cents, err := core.ParseDecimalToCents(raw)
	if err != nil {
		return "$" + raw + " MXN"
	}
	return Pesos(core.Money{Cents: cents})
}

// SignedPercent renders a ratio with one decimal and an explicit sign: "+25.0%".
func SignedPercent(v float64) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	if s == "-0.0" {
		s = "0.0"
	}
	if !strings.HasPrefix(s, "-") {
		s = "+" + s
	}
	return s + "%"
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
