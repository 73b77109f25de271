package chunker

import (
	"regexp"
	"strconv"
	"strings"
)

// Vehicle manufacturers recognized as record anchors. Multi-word and
// hyphenated names must precede their prefixes (Mercedes-Benz before
// Mercedes) so the alternation prefers the longer match.
var brands = []string{
	"Mercedes-Benz", "Mercedes", "Land Rover", "Alfa Romeo",
	"Toyota", "Honda", "Ford", "Chevrolet", "BMW", "Audi", "Volkswagen",
	"Nissan", "Hyundai", "Kia", "Mazda", "Subaru", "Lexus", "Tesla",
	"Volvo", "Jeep", "Dodge", "Ram", "GMC", "Porsche", "Jaguar",
	"Mitsubishi", "Suzuki", "Peugeot", "Renault", "Fiat", "Skoda",
	"Acura", "Infiniti", "Cadillac", "Buick", "Chrysler", "Lincoln",
}

var (
	brandStartRe    *regexp.Regexp
	brandAnywhereRe *regexp.Regexp

	// standalone 4-digit tokens; the numeric range check narrows to [2000, 2025]
	yearRe = regexp.MustCompile(`\b(20[0-9]{2})\b`)

	sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]`)
)

func init() {
	quoted := make([]string, len(brands))
	for i, b := range brands {
		quoted[i] = regexp.QuoteMeta(b)
	}
	alternation := strings.Join(quoted, "|")
	brandStartRe = regexp.MustCompile(`(?i)^(` + alternation + `)\b`)
	brandAnywhereRe = regexp.MustCompile(`(?i)\b(` + alternation + `)\b`)
}

func lineStartsWithBrand(line string) bool {
	return brandStartRe.MatchString(line)
}

func lineContainsBrand(line string) bool {
	return brandAnywhereRe.MatchString(line)
}

func lineHasModelYear(line string) bool {
	for _, m := range yearRe.FindAllString(line, -1) {
		year, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		if year >= 2000 && year <= 2025 {
			return true
		}
	}
	return false
}
