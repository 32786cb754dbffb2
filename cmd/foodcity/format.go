package main

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// rupiah renders whole rupiah with thousands separators.
func rupiah(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + "Rp " + humanize.Commaf(math.Round(v))
}

func kg(v float64) string {
	return humanize.FormatFloat("#,###.#", v) + " kg"
}

func percent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}
