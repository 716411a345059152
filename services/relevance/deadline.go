package relevance

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const monthNames = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`

var deadlineRegex = regexp.MustCompile(`(?i)\b(?:deadline|due|by|before)\b[\s:,-]*(?:(?:on|is|date)\s+)?(?:` +
	`(?P<iso>\d{4}-\d{2}-\d{2})` +
	`|(?P<dmy>\d{1,2}/\d{1,2}/\d{4})` +
	`|(?P<mdy>` + monthNames + `\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4})` +
	`|(?P<dmony>\d{1,2}(?:st|nd|rd|th)?\s+` + monthNames + `\.?,?\s+\d{4})` +
	`)`)

var (
	datePartsRegex = regexp.MustCompile(`(?i)(\d{1,2})(?:st|nd|rd|th)?`)
	yearRegex      = regexp.MustCompile(`\d{4}`)
	monthRegex     = regexp.MustCompile(`(?i)` + monthNames)
)

// ExtractDeadline finds the earliest date introduced by deadline, due, by or
// before. Returns nil when nothing matches.
func ExtractDeadline(content string) *time.Time {
	var earliest *time.Time
	for _, match := range deadlineRegex.FindAllStringSubmatch(content, -1) {
		date, ok := parseMatch(match)
		if !ok {
			continue
		}
		if earliest == nil || date.Before(*earliest) {
			d := date
			earliest = &d
		}
	}
	return earliest
}

// EarliestDeadline applies ExtractDeadline to every text and keeps the earliest hit.
func EarliestDeadline(texts ...string) *time.Time {
	var earliest *time.Time
	for _, text := range texts {
		if d := ExtractDeadline(text); d != nil && (earliest == nil || d.Before(*earliest)) {
			earliest = d
		}
	}
	return earliest
}

func parseMatch(match []string) (time.Time, bool) {
	for i, name := range deadlineRegex.SubexpNames() {
		if name == "" || match[i] == "" {
			continue
		}
		value := match[i]
		switch name {
		case "iso":
			t, err := time.Parse("2006-01-02", value)
			return t, err == nil
		case "dmy":
			parts := strings.Split(value, "/")
			day, _ := strconv.Atoi(parts[0])
			month, _ := strconv.Atoi(parts[1])
			year, _ := strconv.Atoi(parts[2])
			return buildDate(year, month, day)
		case "mdy", "dmony":
			month := parseMonth(monthRegex.FindString(value))
			year, _ := strconv.Atoi(yearRegex.FindString(value))
			dayText := datePartsRegex.FindStringSubmatch(strings.Replace(value, yearRegex.FindString(value), "", 1))
			if len(dayText) < 2 {
				return time.Time{}, false
			}
			day, _ := strconv.Atoi(dayText[1])
			return buildDate(year, month, day)
		}
	}
	return time.Time{}, false
}

func buildDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// reject overflowed dates such as 31/02
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

func parseMonth(name string) int {
	if len(name) < 3 {
		return 0
	}
	switch strings.ToLower(name[:3]) {
	case "jan":
		return 1
	case "feb":
		return 2
	case "mar":
		return 3
	case "apr":
		return 4
	case "may":
		return 5
	case "jun":
		return 6
	case "jul":
		return 7
	case "aug":
		return 8
	case "sep":
		return 9
	case "oct":
		return 10
	case "nov":
		return 11
	case "dec":
		return 12
	}
	return 0
}
