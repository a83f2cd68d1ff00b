package normalizer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/project-tktt/warn-crawler/internal/domain"
)

var (
	// MM/DD/YYYY or M/D/YY
	mdyPattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{2}|\d{4})\b`)
	// YYYY-MM-DD
	isoPattern = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	// March 4, 2025 / Mar. 4 2025 / Sept 4th, 2025
	monthNamePattern = regexp.MustCompile(`(?i)\b(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
)

var monthByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

// ParseDate reads the first recognizable calendar date in s.
// Patterns are tried in order MM/DD/YYYY, YYYY-MM-DD, "Month DD, YYYY";
// the first pattern that matches wins. Returns nil when nothing parses.
func ParseDate(s string) *domain.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if m := mdyPattern.FindStringSubmatch(s); m != nil {
		return buildDate(expandYear(m[3]), atoi(m[1]), atoi(m[2]))
	}
	if m := isoPattern.FindStringSubmatch(s); m != nil {
		return buildDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := monthNamePattern.FindStringSubmatch(s); m != nil {
		month := monthByPrefix[strings.ToLower(m[1])[:3]]
		return buildDate(atoi(m[3]), int(month), atoi(m[2]))
	}
	return nil
}

// expandYear maps two-digit years: 00-69 -> 2000s, 70-99 -> 1900s
func expandYear(y string) int {
	n := atoi(y)
	if len(y) == 2 {
		if n < 70 {
			return 2000 + n
		}
		return 1900 + n
	}
	return n
}

// buildDate rejects impossible calendar days such as 02/30
func buildDate(year, month, day int) *domain.Date {
	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1900 {
		return nil
	}
	d := domain.NewDate(year, time.Month(month), day)
	if d.Day() != day || int(d.Month()) != month {
		return nil
	}
	return &d
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
