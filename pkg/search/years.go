package search

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	yearRangeRe = regexp.MustCompile(`\b((?:19|20)\d{2})\s*(?:-|–|to)\s*((?:19|20)\d{2})\b`)
	yearRe      = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	lastNRe     = regexp.MustCompile(`(?:last|past)\s+(\d+)\s+year`)
)

// YearWindow is an inclusive year range extracted from query phrasing.
type YearWindow struct {
	From int
	To   int
}

// Contains reports whether the year falls inside the window.
func (w YearWindow) Contains(year int) bool {
	return year >= w.From && year <= w.To
}

// ParseYearWindow extracts an inclusive year window from a query. It handles
// explicit ranges ("2010-2015", "2010 to 2015"), bare years (the latest one
// wins), "last/past N years", "this year", "last year", and "recent"
// (the current year and the two before it). Returns ok=false when the query
// carries no year signal.
func ParseYearWindow(query string, now time.Time) (YearWindow, bool) {
	q := strings.ToLower(query)
	this := now.Year()

	if m := yearRangeRe.FindStringSubmatch(q); m != nil {
		y1, _ := strconv.Atoi(m[1])
		y2, _ := strconv.Atoi(m[2])
		if y1 > y2 {
			y1, y2 = y2, y1
		}
		return YearWindow{From: y1, To: y2}, true
	}

	if years := yearRe.FindAllString(q, -1); len(years) > 0 {
		max := 0
		for _, s := range years {
			y, _ := strconv.Atoi(s)
			if y > max {
				max = y
			}
		}
		return YearWindow{From: max, To: max}, true
	}

	if m := lastNRe.FindStringSubmatch(q); m != nil {
		n, _ := strconv.Atoi(m[1])
		return YearWindow{From: this - n + 1, To: this}, true
	}

	switch {
	case strings.Contains(q, "this year"):
		return YearWindow{From: this, To: this}, true
	case strings.Contains(q, "last year"):
		return YearWindow{From: this - 1, To: this - 1}, true
	case strings.Contains(q, "recent"):
		return YearWindow{From: this - 2, To: this}, true
	}

	return YearWindow{}, false
}
