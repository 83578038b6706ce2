package textutil

import (
	"fmt"
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// collapses runs of whitespace into single spaces and trims the ends,
// so text pulled out of html layouts compares predictably.
func CollapseSpace(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

var unsafeFilenameChars = regexp.MustCompile(`[^\w\-]+`)

// reduces an arbitrary label to something safe to use as a filename.
// the result is never empty and never longer than 80 characters.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unnamed"
	}
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	if len(name) > 80 {
		name = name[:80]
	}
	return name
}

var yearRegex = regexp.MustCompile(`(\d{4})`)

// pulls the first 4-digit year out of a date string, "" when absent.
func ExtractYear(s string) string {
	return yearRegex.FindString(s)
}

// builds a label spanning two years, e.g. "2019-2023", collapsing
// equal years into one and tolerating either side missing.
func YearRange(first string, last string) string {
	y1 := ExtractYear(first)
	y2 := ExtractYear(last)
	switch {
	case y1 != "" && y2 != "" && y1 == y2:
		return y1
	case y1 != "" && y2 != "":
		return fmt.Sprintf("%s-%s", y1, y2)
	case y1 != "":
		return y1
	case y2 != "":
		return y2
	}
	return "unknown-years"
}
