package view

import (
	"strconv"
	"strings"
	"time"
)

// MonthYear renders t as "Jan 2024".
func MonthYear(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2006")
}

// DateInput renders t for an <input type="date">.
func DateInput(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// Period renders a start/end pair; an open end reads "Present".
func Period(start time.Time, end *time.Time) string {
	if end == nil {
		return MonthYear(start) + " - Present"
	}
	return MonthYear(start) + " - " + MonthYear(*end)
}

// JoinList renders list items back into their comma form.
func JoinList(items []string) string {
	return strings.Join(items, ", ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// itemPath builds /{resource}/{action}/{id}.
func itemPath(resource, action string, id int64) string {
	return "/" + resource + "/" + action + "/" + strconv.FormatInt(id, 10)
}

// formAction is the create route for a new record and the edit route otherwise.
func formAction(resource string, id int64) string {
	if id == 0 {
		return "/" + resource + "/create"
	}
	return itemPath(resource, "edit", id)
}

func formTitle(noun string, id int64) string {
	if id == 0 {
		return "New " + noun
	}
	return "Edit " + noun
}
