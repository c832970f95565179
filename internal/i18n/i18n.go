// Package i18n matches request languages against the supported locales and
// formats user-facing messages.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var (
	English = language.English
	Swahili = language.Swahili
)

var supported = []language.Tag{English, Swahili}

var matcher = language.NewMatcher(supported)

var messages = buildCatalog()

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(English))
	for key, texts := range catalogEntries {
		if texts.en != "" {
			_ = b.SetString(English, key, texts.en)
		}
		if texts.sw != "" {
			_ = b.SetString(Swahili, key, texts.sw)
		}
	}
	return b
}

// Parse resolves a single language code (e.g. from ?lang=) to a supported
// tag. ok is false when the code is empty or unsupported.
func Parse(code string) (language.Tag, bool) {
	if code == "" {
		return language.Und, false
	}
	tag, err := language.Parse(code)
	if err != nil {
		return language.Und, false
	}
	_, idx, conf := matcher.Match(tag)
	if conf < language.High {
		return language.Und, false
	}
	return supported[idx], true
}

// Match picks a supported tag from an Accept-Language header, or fallback.
func Match(acceptLanguage string, fallback language.Tag) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	return supported[idx]
}

// Printer formats catalog keys in tag's language.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(messages))
}

// T translates key in tag's language.
func T(tag language.Tag, key string, args ...any) string {
	return Printer(tag).Sprintf(key, args...)
}
