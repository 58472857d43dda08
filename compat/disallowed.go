package compat

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-logr/logr"
)

// KnownFields are the form fields whose values are disallowed inside a password.
var KnownFields = []string{
	"user_login",
	"first_name",
	"last_name",
	"nickname",
	"display_name",
	"email",
	"url",
	"description",
	"weblog_title",
	"admin_email",
}

const minDisallowedLength = 4

var nonWord = regexp.MustCompile(`\W`)

// Field is a form field as seen by the disallowed list.
type Field struct {
	DefaultValue string
	Value        string
}

// FieldSource describes the page the password is entered on.
type FieldSource interface {
	Title() string
	URL() string
	Field(id string) (Field, bool)
}

// MapFields is an in-memory FieldSource.
type MapFields struct {
	PageTitle string
	PageURL   string
	Fields    map[string]Field
}

func (m MapFields) Title() string { return m.PageTitle }
func (m MapFields) URL() string   { return m.PageURL }

func (m MapFields) Field(id string) (Field, bool) {
	f, ok := m.Fields[id]
	return f, ok
}

// UserInputDisallowedList collects the title, URL, and known field values of src and
// normalizes them into a list of words.
func UserInputDisallowedList(src FieldSource) []string {
	if src == nil {
		return []string{}
	}

	raw := []string{src.Title(), src.URL()}
	for _, id := range KnownFields {
		f, ok := src.Field(id)
		if !ok {
			continue
		}
		if f.DefaultValue != "" {
			raw = append(raw, f.DefaultValue)
		}
		raw = append(raw, f.Value)
	}
	return NormalizeDisallowed(raw)
}

// NormalizeDisallowed replaces non-word characters with spaces, splits on spaces, drops
// words shorter than four characters, and removes duplicates keeping the first.
func NormalizeDisallowed(raw []string) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, value := range raw {
		if value == "" {
			continue
		}
		for _, word := range strings.Split(nonWord.ReplaceAllString(value, " "), " ") {
			if utf8.RuneCountInString(word) < minDisallowedLength {
				continue
			}
			if _, dup := seen[word]; dup {
				continue
			}
			seen[word] = struct{}{}
			out = append(out, word)
		}
	}
	return out
}

// UserInputBlacklist is the old name of UserInputDisallowedList.
//
// Deprecated: use UserInputDisallowedList.
func UserInputBlacklist(logger logr.Logger, src FieldSource) []string {
	logger.Info("UserInputBlacklist is deprecated since version 5.5.0, use UserInputDisallowedList instead")
	return UserInputDisallowedList(src)
}
