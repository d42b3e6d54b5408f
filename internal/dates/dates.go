// Package dates splits the free-text header of a chronicle report into a
// calendar date and a title.
//
// Headers are typed by hand and follow the shape "<date> – <title>", but
// years of editing by different people left a trail of inconsistent
// conventions: missing colons after the date, corrected dates appended with
// a slash, titles that themselves contain the delimiter, and legacy pages
// with no delimiter at all. Split encodes these known patterns as an ordered
// list of strategies, from well-formed to pathological. A header no strategy
// recognizes yields one of two typed errors so the caller can apply the
// documented tier policy: ErrUnrecognized (skip the report) when the date
// fragment carries no slash, ErrUnparseable (stop the run) when it does,
// since the latter signals a novel format that needs a code change.
package dates

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Delimiter separates the date fragment from the title in modern headers.
const Delimiter = " – "

var (
	// ErrUnrecognized marks a header in a format the chain does not know and
	// whose date fragment carries no slash. Callers skip the report.
	ErrUnrecognized = errors.New("unrecognized header format")

	// ErrUnparseable marks a header whose date fragment carries a slash but
	// still defeats every strategy. Callers must abort the run.
	ErrUnparseable = errors.New("unparseable date, manual fix required")
)

// Result is a successfully split header.
type Result struct {
	Date  time.Time
	Title string
}

type strategy struct {
	name  string
	apply func(segs []string) (Result, bool)
}

// Strategies are tried in order; the first success wins. "after slash" runs
// before "before slash" so that a correction appended after a slash
// ("12.3.18 / 15.3.18: ...") supersedes the original date.
var strategies = []strategy{
	{"full fragment", splitFullFragment},
	{"first segment", splitFirstSegment},
	{"after slash", splitAfterSlash},
	{"before slash", splitBeforeSlash},
}

// Split resolves a raw report header into date and title.
func Split(header string) (Result, error) {
	header = strings.TrimSpace(header)
	if !strings.Contains(header, Delimiter) {
		return splitLegacy(header)
	}

	segs := strings.Split(header, Delimiter)
	for _, s := range strategies {
		if res, ok := s.apply(segs); ok {
			res.Title = strings.TrimSpace(res.Title)
			return res, nil
		}
	}

	if !strings.Contains(segs[0], "/") {
		return Result{}, fmt.Errorf("%w: %q", ErrUnrecognized, header)
	}
	return Result{}, fmt.Errorf("%w: %q", ErrUnparseable, header)
}

// splitFullFragment treats everything before the last delimiter as the date
// fragment and the last segment as the title.
func splitFullFragment(segs []string) (Result, bool) {
	fragment := strings.Join(segs[:len(segs)-1], " ")
	d, ok := parseStrict(fragment)
	if !ok {
		return Result{}, false
	}
	return Result{Date: d, Title: segs[len(segs)-1]}, true
}

// splitFirstSegment parses only the first segment and rejoins the rest as the
// title, recovering titles that legitimately contain the delimiter.
func splitFirstSegment(segs []string) (Result, bool) {
	d, ok := parseStrict(segs[0])
	if !ok {
		return Result{}, false
	}
	return Result{Date: d, Title: strings.Join(segs[1:], Delimiter)}, true
}

// splitAfterSlash parses the text between the first and second slash of the
// first segment. Editors append corrected dates after a slash, so the
// corrected date wins over the original.
func splitAfterSlash(segs []string) (Result, bool) {
	parts := strings.Split(segs[0], "/")
	if len(parts) < 2 {
		return Result{}, false
	}
	d, ok := parseStrict(parts[1])
	if !ok {
		return Result{}, false
	}
	return Result{Date: d, Title: segs[len(segs)-1]}, true
}

// splitBeforeSlash parses the text before the first slash of the first
// segment, for fragments where the slash introduces a remark rather than a
// second date.
func splitBeforeSlash(segs []string) (Result, bool) {
	head, _, found := strings.Cut(segs[0], "/")
	if !found {
		return Result{}, false
	}
	d, ok := parseStrict(head)
	if !ok {
		return Result{}, false
	}
	return Result{Date: d, Title: segs[len(segs)-1]}, true
}

// splitLegacy handles pages from the first chronicle year, which embed the
// literal year in an undelimited header. The year is split off, re-appended
// to the date fragment, and parsed leniently (a bare year is enough).
func splitLegacy(header string) (Result, error) {
	const legacyYear = "2017"
	idx := strings.Index(header, legacyYear)
	if idx < 0 {
		return Result{}, fmt.Errorf("%w: %q", ErrUnrecognized, header)
	}
	fragment := header[:idx] + legacyYear
	title := strings.TrimSpace(header[idx+len(legacyYear):])
	d, ok := parseLenient(fragment)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnparseable, header)
	}
	return Result{Date: d, Title: title}, nil
}

var (
	// missingColon repairs the frequent typo of a date fragment that lost its
	// trailing colon ("12.3.18 Überfall" -> "12.3.18: Überfall").
	missingColon = regexp.MustCompile(`^(\d{1,2}\.\d{1,2}\.\d\d)\s`)

	// fullDate accepts exactly one day.month.year shape and nothing else.
	fullDate = regexp.MustCompile(`^(\d{1,2})\.\s?(\d{1,2})\.\s?(\d{2,4})\.?$`)

	monthYear = regexp.MustCompile(`(\d{1,2})\.\s?((?:19|20)\d\d)`)
	bareYear  = regexp.MustCompile(`\b((?:19|20)\d\d)\b`)
)

var germanMonths = []struct {
	name  string
	month int
}{
	{"januar", 1}, {"februar", 2}, {"märz", 3}, {"april", 4},
	{"mai", 5}, {"juni", 6}, {"juli", 7}, {"august", 8},
	{"september", 9}, {"oktober", 10}, {"november", 11}, {"dezember", 12},
}

// normalizeMonths rewrites a German month name into its numeric form so the
// date library can handle it ("12. März 2018" -> "12. 3. 2018").
func normalizeMonths(s string) string {
	lower := strings.ToLower(s)
	for _, m := range germanMonths {
		i := strings.Index(lower, m.name)
		if i < 0 {
			continue
		}
		return s[:i] + strconv.Itoa(m.month) + "." + s[i+len(m.name):]
	}
	return s
}

// parseStrict parses a date fragment, requiring day, month and year to all
// be present. The fragment is repaired (missing colon), cut at the colon,
// normalized (German month names) and gated on a full date shape before the
// date library sees it, so trailing prose never leaks into the parse and a
// fragment holding two dates is rejected rather than half-parsed.
func parseStrict(text string) (time.Time, bool) {
	s := strings.TrimSpace(text)
	if !strings.Contains(s, ":") {
		s = missingColon.ReplaceAllString(s, "$1: ")
	}
	if before, _, found := strings.Cut(s, ":"); found {
		s = before
	}
	s = strings.TrimSpace(normalizeMonths(s))

	m := fullDate.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	year := m[3]
	if len(year) == 2 {
		// the chronicle starts in 2017, so two-digit years are always 20xx
		year = "20" + year
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	// dateparse reads dotted d.m.y as month-first, so hand it the unambiguous
	// ISO form instead; impossible dates like 31.2. fail the parse
	canonical := fmt.Sprintf("%s-%02d-%02d", year, month, day)
	d, err := dateparse.ParseIn(canonical, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// parseLenient allows incomplete dates: a full date if present, otherwise
// month+year, otherwise a bare year resolved to January 1st.
func parseLenient(text string) (time.Time, bool) {
	if d, ok := parseStrict(text); ok {
		return d, true
	}
	s := normalizeMonths(strings.TrimSpace(text))
	if m := monthYear.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		if month >= 1 && month <= 12 {
			return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), true
		}
	}
	if m := bareYear.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}
