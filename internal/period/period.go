// Package period resolves, orders and extrapolates the period labels of a time series.
package period

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ReferenceYear is used for quarter labels that carry no year.
const ReferenceYear = 2000

var (
	quarterPattern  = regexp.MustCompile(`(?i)(?:^|[^a-z])(q)([1-4])(?:$|[^0-9])`)
	yearPattern     = regexp.MustCompile(`(?:^|\D)(\d{4})(?:$|\D)`)
	fiscalPattern   = regexp.MustCompile(`(?i)fy\s?(\d{2})(?:$|\D)`)
	numericPattern  = regexp.MustCompile(`^\d+$`)
	monthPattern    = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
	trailingPattern = regexp.MustCompile(`^(.*?)(\d+)$`)
)

// quarterMonths maps a quarter to its representative (first) month
var quarterMonths = map[int]time.Month{
	1: time.January,
	2: time.April,
	3: time.July,
	4: time.October,
}

// monthLayouts name a whole month; labels in these layouts step by calendar month
var monthLayouts = map[string]bool{
	"2006-01":      true,
	"Jan 2006":     true,
	"January 2006": true,
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"2006-01",
	"Jan 2006",
	"January 2006",
	"Jan 2, 2006",
	"2006",
}

// Resolve maps a period label to a calendar date. Quarter tokens take precedence over
// generic date layouts.
func Resolve(label string) (time.Time, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return time.Time{}, false
	}

	if quarter, ok := quarterOf(label); ok {
		year := ReferenceYear
		if y, ok := yearOf(label); ok {
			year = y
		}
		return QuarterStart(year, quarter), true
	}

	if t, _, ok := parseLayout(label); ok {
		return t, true
	}
	return time.Time{}, false
}

// YearlessQuarter reports the quarter of a label such as "Q3" that carries no year
func YearlessQuarter(label string) (int, bool) {
	label = strings.TrimSpace(label)
	quarter, ok := quarterOf(label)
	if !ok {
		return 0, false
	}
	if _, hasYear := yearOf(label); hasYear {
		return 0, false
	}
	return quarter, true
}

// QuarterStart returns the first day of the quarter, UTC
func QuarterStart(year, quarter int) time.Time {
	return time.Date(year, quarterMonths[quarter], 1, 0, 0, 0, 0, time.UTC)
}

// parseLayout resolves label with the first matching generic layout
func parseLayout(label string) (time.Time, string, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, label); err == nil {
			return t.UTC(), layout, true
		}
	}
	return time.Time{}, "", false
}

// Less orders two labels when dates are unavailable: purely numeric labels compare
// numerically and sort before anything else, all other labels compare lexicographically.
func Less(a, b string) bool {
	na, aNumeric := numericValue(a)
	nb, bNumeric := numericValue(b)
	switch {
	case aNumeric && bNumeric:
		if na != nb {
			return na < nb
		}
		return a < b
	case aNumeric:
		return true
	case bNumeric:
		return false
	default:
		return a < b
	}
}

// Next returns the label of the k-th period after last (k >= 1)
func Next(last string, k int) string {
	trimmed := strings.TrimSpace(last)

	if label, ok := nextQuarter(trimmed, k); ok {
		return label
	}

	if numericPattern.MatchString(trimmed) {
		return incrementDigits(trimmed, k)
	}

	if m := monthPattern.FindStringSubmatch(trimmed); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month >= 1 && month <= 12 {
			t := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, k, 0)
			return t.Format("2006-01")
		}
	}

	if t, layout, ok := parseLayout(trimmed); ok {
		if monthLayouts[layout] {
			return addMonths(t, k, false).Format(layout)
		}
		return t.AddDate(0, 0, k).Format(layout)
	}

	if m := trailingPattern.FindStringSubmatch(trimmed); m != nil && m[1] != "" {
		return m[1] + incrementDigits(m[2], k)
	}

	return fmt.Sprintf("%s +%d", trimmed, k)
}

// Sequence returns the labels of the h periods following last
func Sequence(last string, h int) []string {
	labels := make([]string, h)
	for i := range labels {
		labels[i] = Next(last, i+1)
	}
	return labels
}

// Extrapolate returns the labels of the h periods following the last of labels.
// When the last two labels are dates in the same layout, their spacing sets the step:
// whole months when they share a day of month or both fall on a month end, days otherwise.
// Anything else steps one period at a time as Next does.
func Extrapolate(labels []string, h int) []string {
	if len(labels) == 0 {
		return make([]string, h)
	}
	last := strings.TrimSpace(labels[len(labels)-1])
	if len(labels) < 2 || quarterPattern.MatchString(last) {
		return Sequence(last, h)
	}

	prevTime, prevLayout, okPrev := parseLayout(strings.TrimSpace(labels[len(labels)-2]))
	lastTime, layout, okLast := parseLayout(last)
	if !okPrev || !okLast || prevLayout != layout || layout == "2006" || !lastTime.After(prevTime) {
		return Sequence(last, h)
	}

	out := make([]string, h)
	months := monthsBetween(prevTime, lastTime)
	monthEnd := isMonthEnd(prevTime) && isMonthEnd(lastTime)
	if months > 0 && (monthLayouts[layout] || monthEnd || prevTime.Day() == lastTime.Day()) {
		for i := range out {
			out[i] = addMonths(lastTime, months*(i+1), monthEnd).Format(layout)
		}
		return out
	}

	days := int(lastTime.Sub(prevTime).Hours() / 24)
	if days < 1 {
		return Sequence(last, h)
	}
	for i := range out {
		out[i] = lastTime.AddDate(0, 0, days*(i+1)).Format(layout)
	}
	return out
}

// addMonths moves t by n calendar months, clamping the day to the target month's length.
// With monthEnd set the result is always the target month's last day.
func addMonths(t time.Time, n int, monthEnd bool) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location()).AddDate(0, n, 0)
	lastDay := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if monthEnd || day > lastDay {
		day = lastDay
	}
	return first.AddDate(0, 0, day-1)
}

func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

func isMonthEnd(t time.Time) bool {
	return t.AddDate(0, 0, 1).Day() == 1
}

func nextQuarter(label string, k int) (string, bool) {
	loc := quarterPattern.FindStringSubmatchIndex(label)
	if loc == nil {
		return "", false
	}
	quarter, _ := strconv.Atoi(label[loc[4]:loc[5]])
	total := quarter - 1 + k
	newQuarter := total%4 + 1
	yearsAhead := total / 4

	type span struct {
		start, end int
		text       string
	}
	spans := []span{{loc[4], loc[5], strconv.Itoa(newQuarter)}}

	if yl := yearPattern.FindStringSubmatchIndex(label); yl != nil {
		year, _ := strconv.Atoi(label[yl[2]:yl[3]])
		spans = append(spans, span{yl[2], yl[3], strconv.Itoa(year + yearsAhead)})
	} else if fl := fiscalPattern.FindStringSubmatchIndex(label); fl != nil {
		year, _ := strconv.Atoi(label[fl[2]:fl[3]])
		spans = append(spans, span{fl[2], fl[3], fmt.Sprintf("%02d", (year+yearsAhead)%100)})
	}

	// apply replacements right to left so earlier offsets stay valid
	if len(spans) == 2 && spans[1].start < spans[0].start {
		spans[0], spans[1] = spans[1], spans[0]
	}
	out := label
	for i := len(spans) - 1; i >= 0; i-- {
		s := spans[i]
		out = out[:s.start] + s.text + out[s.end:]
	}
	return out, true
}

func quarterOf(label string) (int, bool) {
	m := quarterPattern.FindStringSubmatch(label)
	if m == nil {
		return 0, false
	}
	q, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	return q, true
}

func yearOf(label string) (int, bool) {
	if m := yearPattern.FindStringSubmatch(label); m != nil {
		y, err := strconv.Atoi(m[1])
		return y, err == nil
	}
	if m := fiscalPattern.FindStringSubmatch(label); m != nil {
		y, err := strconv.Atoi(m[1])
		return 2000 + y, err == nil
	}
	return 0, false
}

func numericValue(label string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(label), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// incrementDigits adds k to a digit string, keeping any zero padding
func incrementDigits(digits string, k int) string {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return fmt.Sprintf("%s +%d", digits, k)
	}
	return fmt.Sprintf("%0*d", len(digits), n+k)
}
