package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/starford/dagaz/internal/models"
)

// dateLayout is the only accepted calendar date format.
const dateLayout = "2006-01-02"

// Meta is the typed view of a document's frontmatter. Every field carries
// its own present/absent/invalid state; unknown keys are ignored entirely.
type Meta struct {
	Title    Field[string]
	Tags     Field[[]string]
	Category Field[string]
	Status   Field[models.Status]
	Created  Field[time.Time]
	Updated  Field[time.Time]
	Cadence  Field[time.Duration]
	Related  Field[[]string]
}

// buildMeta interprets the raw YAML mapping field by field.
func buildMeta(raw map[string]any) Meta {
	return Meta{
		Title:    stringField(raw, "title"),
		Tags:     stringListField(raw, "tags"),
		Category: stringField(raw, "category"),
		Status:   statusField(raw, "status"),
		Created:  dateField(raw, "created"),
		Updated:  dateField(raw, "updated"),
		Cadence:  cadenceField(raw, "cadence"),
		Related:  stringListField(raw, "related"),
	}
}

// Validate enforces the frontmatter contract: title is required and
// non-empty, and any field that was present but uninterpretable is an
// error. Absent optional fields are fine.
func (m Meta) Validate() *Error {
	switch m.Title.State {
	case FieldAbsent:
		return errMissingField("title")
	case FieldInvalid:
		return errInvalidField("title", m.Title.Reason)
	}
	if strings.TrimSpace(m.Title.Value) == "" {
		return errInvalidField("title", "must not be empty")
	}

	for _, f := range []struct {
		name   string
		state  FieldState
		reason string
	}{
		{"tags", m.Tags.State, m.Tags.Reason},
		{"category", m.Category.State, m.Category.Reason},
		{"status", m.Status.State, m.Status.Reason},
		{"created", m.Created.State, m.Created.Reason},
		{"updated", m.Updated.State, m.Updated.Reason},
		{"cadence", m.Cadence.State, m.Cadence.Reason},
		{"related", m.Related.State, m.Related.Reason},
	} {
		if f.state == FieldInvalid {
			return errInvalidField(f.name, f.reason)
		}
	}
	return nil
}

func stringField(raw map[string]any, key string) Field[string] {
	v, ok := raw[key]
	if !ok || v == nil {
		return absent[string]()
	}
	s, ok := v.(string)
	if !ok {
		return invalid[string](fmt.Sprintf("expected a string, got %T", v))
	}
	return present(s)
}

// stringListField accepts a YAML sequence of strings, or a single scalar
// string as a one-element list (frontmatter in the wild uses both).
func stringListField(raw map[string]any, key string) Field[[]string] {
	v, ok := raw[key]
	if !ok || v == nil {
		return absent[[]string]()
	}
	switch val := v.(type) {
	case string:
		if strings.TrimSpace(val) == "" {
			return present([]string{})
		}
		return present([]string{val})
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return invalid[[]string](fmt.Sprintf("list item %v is not a string", item))
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return present(out)
	default:
		return invalid[[]string](fmt.Sprintf("expected a list of strings, got %T", v))
	}
}

func statusField(raw map[string]any, key string) Field[models.Status] {
	v, ok := raw[key]
	if !ok || v == nil {
		return absent[models.Status]()
	}
	s, ok := v.(string)
	if !ok {
		return invalid[models.Status](fmt.Sprintf("expected a string, got %T", v))
	}
	st, ok := models.ParseStatus(strings.ToLower(strings.TrimSpace(s)))
	if !ok {
		return invalid[models.Status](fmt.Sprintf("%q is not one of draft|active|stale|archived", s))
	}
	return present(st)
}

// dateField accepts YYYY-MM-DD. yaml.v3 may hand us a ready time.Time for
// unquoted dates, so both representations are handled.
func dateField(raw map[string]any, key string) Field[time.Time] {
	v, ok := raw[key]
	if !ok || v == nil {
		return absent[time.Time]()
	}
	switch val := v.(type) {
	case time.Time:
		return present(val.UTC().Truncate(24 * time.Hour))
	case string:
		t, err := time.Parse(dateLayout, strings.TrimSpace(val))
		if err != nil {
			return invalid[time.Time](fmt.Sprintf("%q is not a %s date", val, dateLayout))
		}
		return present(t)
	default:
		return invalid[time.Time](fmt.Sprintf("expected a %s date, got %T", dateLayout, v))
	}
}

func cadenceField(raw map[string]any, key string) Field[time.Duration] {
	v, ok := raw[key]
	if !ok || v == nil {
		return absent[time.Duration]()
	}
	s, ok := v.(string)
	if !ok {
		return invalid[time.Duration](fmt.Sprintf("expected a duration string, got %T", v))
	}
	d, err := ParseCadence(s)
	if err != nil {
		return invalid[time.Duration](err.Error())
	}
	return present(d)
}

var dayWeekRe = regexp.MustCompile(`^(\d+)([dw])$`)

// ParseCadence parses a review cadence: Go duration syntax plus "Nd" (days)
// and "Nw" (weeks), since documentation cadences are naturally expressed in
// days rather than hours.
func ParseCadence(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if m := dayWeekRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, fmt.Errorf("parser: cadence %q: %w", s, err)
		}
		unit := 24 * time.Hour
		if m[2] == "w" {
			unit = 7 * 24 * time.Hour
		}
		return time.Duration(n) * unit, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parser: invalid cadence %q (want e.g. 90d, 2w, or 720h)", s)
	}
	return d, nil
}
