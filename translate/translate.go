// Package translate localizes the messages emitted by the chip8 packages.
//
// Message formats are written in en-US and rendered for the host locale, or
// for the language chosen with Use.
package translate

import (
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FALLBACK_LOCALE is used when the host reports no locale.
const FALLBACK_LOCALE = "en-US"

var (
	printer *message.Printer
	current language.Tag
)

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("chip8: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{FALLBACK_LOCALE}
	}

	current = message.MatchLanguage(locales...)
	printer = message.NewPrinter(current)
}

// Use selects the language for all later messages. Call it before any
// concurrent use of From.
func Use(name string) (err error) {
	tag, err := language.Parse(name)
	if err != nil {
		return
	}

	current = tag
	printer = message.NewPrinter(tag)

	return
}

// Language returns the language messages are rendered for.
func Language() language.Tag {
	return current
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
