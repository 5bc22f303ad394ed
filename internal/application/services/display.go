package services

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// FormatPrice renders a rupee amount in the compact K / L / Cr notation shown on listing cards.
func FormatPrice(price float64) string {
	switch {
	case price <= 0:
		return "0"
	case price < 1_000:
		return strconv.FormatFloat(price, 'f', -1, 64)
	case price < 1_000_000:
		return compact(price/1_000, "K")
	case price < 100_000_000:
		return compact(price/100_000, "L")
	default:
		return compact(price/10_000_000, "Cr")
	}
}

func compact(v float64, unit string) string {
	if v == math.Floor(v) {
		return strconv.FormatFloat(v, 'f', -1, 64) + unit
	}
	return strconv.FormatFloat(v, 'f', 1, 64) + unit
}

// RelativeAge describes how long ago t was, relative to now.
func RelativeAge(t, now time.Time) string {
	secs := int64(now.Sub(t) / time.Second)

	switch {
	case secs < 30:
		return "just now"
	case secs < 60:
		return fmt.Sprintf("%dsec ago", secs)
	case secs < 3600:
		return fmt.Sprintf("%dmin ago", secs/60)
	case secs < 86400:
		return plural(secs/3600, " hour")
	case secs < 2592000:
		return plural(secs/86400, "day")
	case secs < 31536000:
		return plural(secs/2592000, " month")
	default:
		return plural(secs/31536000, " year")
	}
}

func plural(n int64, unit string) string {
	if n > 1 {
		return fmt.Sprintf("%d%ss ago", n, unit)
	}
	return fmt.Sprintf("%d%s ago", n, unit)
}

// InventoryValue sums raw prices and renders them without exponent notation.
func InventoryValue(prices []float64) string {
	var total float64
	for _, p := range prices {
		total += p
	}
	return strconv.FormatFloat(total, 'f', -1, 64)
}
