package orders

import (
	"fmt"
	"math/rand"
	"regexp"
	"time"
)

// Order code format: <PREFIX>-<YEAR>-<4-digit>, prefix by service category.
var codePattern = regexp.MustCompile(`^[A-Z]{2,3}-\d{4}-\d{4}$`)

const codeFallbackPrefix = "OD"

var codePrefixes = map[ServiceCategory]string{
	CategoryDispatch:    "DP",
	CategoryParkNGo:     "PNG",
	CategoryWastePickup: "WP",
	CategoryRideBooking: "RD",
}

// codePrefix returns the category's code prefix, falling back to OD for
// unknown categories.
func codePrefix(category ServiceCategory) string {
	if p, ok := codePrefixes[category]; ok {
		return p
	}
	return codeFallbackPrefix
}

// generateCode produces a human-readable order code. Uniqueness is enforced
// by the database; callers retry on collision.
func generateCode(category ServiceCategory, now time.Time) string {
	return fmt.Sprintf("%s-%d-%04d", codePrefix(category), now.Year(), rand.Intn(10000))
}

// validCode reports whether a string matches the order code format
func validCode(code string) bool {
	return codePattern.MatchString(code)
}
