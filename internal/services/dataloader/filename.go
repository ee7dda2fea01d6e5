package dataloader

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"crowdlog/internal/models"
)

// timestampPatterns are tried in order; the first valid match wins
var timestampPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?P<year>\d{4})(?P<month>\d{2})(?P<day>\d{2})[_-]?(?P<hour>\d{2})(?P<minute>\d{2})(?P<second>\d{2})?`),
	regexp.MustCompile(`(?P<year>\d{4})[-_.](?P<month>\d{2})[-_.](?P<day>\d{2})[ T](?P<hour>\d{2})[:.](?P<minute>\d{2})[:.](?P<second>\d{2})`),
	regexp.MustCompile(`(?P<year>\d{4})[-_.](?P<month>\d{2})[-_.](?P<day>\d{2})`),
	regexp.MustCompile(`(?P<year>\d{4})(?P<month>\d{2})(?P<day>\d{2})`),
}

// ExtractTimestamp recovers the export date embedded in a file name such as
// "crowdlog_20240401_093000.csv". It returns nil when no pattern yields a
// valid date.
func ExtractTimestamp(filename string) *models.FileTimestamp {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	for _, re := range timestampPatterns {
		m := re.FindStringSubmatch(base)
		if m == nil {
			continue
		}
		ts := models.FileTimestamp{
			Year:   group(re, m, "year"),
			Month:  group(re, m, "month"),
			Day:    group(re, m, "day"),
			Hour:   group(re, m, "hour"),
			Minute: group(re, m, "minute"),
			Second: group(re, m, "second"),
		}
		if validTimestamp(ts) {
			return &ts
		}
	}
	return nil
}

// group returns a named capture as an int, 0 when absent
func group(re *regexp.Regexp, match []string, name string) int {
	idx := re.SubexpIndex(name)
	if idx < 0 || match[idx] == "" {
		return 0
	}
	n, _ := strconv.Atoi(match[idx])
	return n
}

func validTimestamp(ts models.FileTimestamp) bool {
	if ts.Hour > 23 || ts.Minute > 59 || ts.Second > 59 {
		return false
	}
	t := time.Date(ts.Year, time.Month(ts.Month), ts.Day, 0, 0, 0, 0, time.UTC)
	return t.Year() == ts.Year && int(t.Month()) == ts.Month && t.Day() == ts.Day
}
