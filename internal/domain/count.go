package domain

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var countPattern = regexp.MustCompile(`([0-9][0-9.,\s\x{00a0}\x{202f}]*)\s*(?:(k|m|b|тыс|млн|млрд)\.?(?:[^\p{L}]|$))?`)

var countMultipliers = map[string]float64{
	"k":    1e3,
	"тыс":  1e3,
	"m":    1e6,
	"млн":  1e6,
	"b":    1e9,
	"млрд": 1e9,
}

// ParseCount reads a displayed member count such as "1,234", "12.5K" or "3,4 тыс.".
// Without a magnitude suffix every separator is a thousands separator; with one,
// a single comma or dot is the decimal mark.
func ParseCount(text string) (int, bool) {
	match := countPattern.FindStringSubmatch(strings.ToLower(text))
	if match == nil {
		return 0, false
	}

	digits := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\u202f' {
			return -1
		}
		return r
	}, match[1])
	digits = strings.TrimRight(digits, ".,")

	suffix := match[2]
	if suffix == "" {
		plain := strings.NewReplacer(",", "", ".", "").Replace(digits)
		value, err := strconv.Atoi(plain)
		if err != nil {
			return 0, false
		}
		return value, true
	}

	decimal := digits
	if strings.Count(decimal, ",")+strings.Count(decimal, ".") > 1 {
		decimal = strings.NewReplacer(",", "", ".", "").Replace(decimal)
	} else {
		decimal = strings.ReplaceAll(decimal, ",", ".")
	}

	value, err := strconv.ParseFloat(decimal, 64)
	if err != nil {
		return 0, false
	}

	return int(math.Round(value * countMultipliers[suffix])), true
}

func FormatCount(v int) string {
	if v < 1_000 {
		return fmt.Sprintf("%d", v)
	}

	if v < 1_000_000 {
		return fmt.Sprintf("%.1fk", float64(v)/1_000)
	}

	return fmt.Sprintf("%.1fM", float64(v)/1_000_000)
}
