// Package export contains pure generators that serialize items into
// external formats. Every generator validates the item's category (and the
// payload fields it needs) and returns an empty string on mismatch rather
// than an error; stale payload fields from earlier categorizations are
// ignored unless the current category matches.
package export

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/JesseBremer/flow-lyfe/internal/item"
)

// UIDDomain suffixes iCalendar UIDs so they are globally unique.
const UIDDomain = "flow-lyfe.app"

// calendarBase is the web calendar quick-add endpoint.
const calendarBase = "https://calendar.google.com/calendar/render"

// VCard serializes a contact item as a vCard 3.0 text block.
// Returns "" unless the item's category is contact.
func VCard(it *item.Item) string {
	if it.Category != item.CategoryContact {
		return ""
	}

	name := "Unknown"
	if it.ContactName != nil && *it.ContactName != "" {
		name = *it.ContactName
	}

	return strings.Join([]string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		"FN:" + name,
		"TEL:" + deref(it.ContactPhone),
		"EMAIL:" + deref(it.ContactEmail),
		"NOTE:" + it.Content,
		"END:VCARD",
	}, "\n")
}

// ICalendar serializes an event item as a VCALENDAR/VEVENT block.
// Returns "" unless the item's category is event and an event date is set.
// The end time defaults to start + 1 hour when absent.
func ICalendar(it *item.Item) string {
	if it.Category != item.CategoryEvent || it.EventDate == nil {
		return ""
	}

	start := *it.EventDate
	end := eventEnd(it)

	return strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Flow-Lyfe//Event//EN",
		"BEGIN:VEVENT",
		fmt.Sprintf("UID:%s@%s", it.ID, UIDDomain),
		"DTSTAMP:" + icalTime(time.Now().Unix()),
		"DTSTART:" + icalTime(start),
		"DTEND:" + icalTime(end),
		"SUMMARY:" + it.Content,
		"DESCRIPTION:" + it.Content,
		"LOCATION:" + deref(it.EventLocation),
		"END:VEVENT",
		"END:VCALENDAR",
	}, "\n")
}

// CalendarURL builds a web calendar "quick add" URL for an event item.
// Returns "" unless the item's category is event and an event date is set.
func CalendarURL(it *item.Item) string {
	if it.Category != item.CategoryEvent || it.EventDate == nil {
		return ""
	}

	start := *it.EventDate
	end := eventEnd(it)

	// Parameters in fixed order: action, text, dates, details, location.
	params := []struct{ key, value string }{
		{"action", "TEMPLATE"},
		{"text", it.Content},
		{"dates", icalTime(start) + "/" + icalTime(end)},
		{"details", it.Content},
		{"location", deref(it.EventLocation)},
	}

	var sb strings.Builder
	sb.WriteString(calendarBase)
	sb.WriteByte('?')
	for i, p := range params {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(p.key)
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.value))
	}
	return sb.String()
}

// TelLink builds a tel: URI for a contact item with a phone number.
func TelLink(it *item.Item) string {
	if it.Category != item.CategoryContact || it.ContactPhone == nil || *it.ContactPhone == "" {
		return ""
	}
	return "tel:" + *it.ContactPhone
}

// SMSLink builds an sms: URI for a contact item with a phone number.
func SMSLink(it *item.Item) string {
	if it.Category != item.CategoryContact || it.ContactPhone == nil || *it.ContactPhone == "" {
		return ""
	}
	return "sms:" + *it.ContactPhone
}

// MailLink builds a mailto: URI for a contact item with an email address.
func MailLink(it *item.Item) string {
	if it.Category != item.CategoryContact || it.ContactEmail == nil || *it.ContactEmail == "" {
		return ""
	}
	return "mailto:" + *it.ContactEmail
}

// eventEnd returns the event's end time, defaulting to start + 1 hour.
func eventEnd(it *item.Item) int64 {
	if it.EventEndDate != nil {
		return *it.EventEndDate
	}
	return *it.EventDate + 3600
}

// icalTime formats a Unix timestamp as UTC "YYYYMMDDTHHMMSSZ".
func icalTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("20060102T150405Z")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
