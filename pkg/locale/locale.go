// Package locale holds the user-visible strings of the chat widget.
package locale

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys
const (
	Thinking          = "chat.thinking"
	ChatFailed        = "chat.failed"
	NetworkError      = "chat.network_error"
	ConfirmClear      = "clear.confirm"
	Clearing          = "clear.working"
	Cleared           = "clear.done"
	RestartNotice     = "clear.restart"
	ClearFailed       = "clear.failed"
	UnknownError      = "clear.unknown_error"
	ClearNetworkError = "clear.network_error"
	Busy              = "ui.busy"
	InputPlaceholder  = "ui.placeholder"
	Title             = "ui.title"
	Help              = "ui.help"
	ConfirmHint       = "ui.confirm_hint"
	NoticeHint        = "ui.notice_hint"
	You               = "ui.you"
	Bot               = "ui.bot"
)

// Supported lists the languages with a full catalog. The first is the default.
var Supported = []language.Tag{language.Amharic, language.English}

var entries = map[language.Tag]map[string]string{
	language.Amharic: {
		Thinking:          "ቦት እያሰበ ነው... እባክዎ ይጠብቁ...",
		ChatFailed:        "ችግር ተፈጥሯል።",
		NetworkError:      "የአውታረ መረብ ስህተት ተከስቷል። እባክዎ እንደገና ይሞክሩ።",
		ConfirmClear:      "መረጃ ቋቱን ሙሉ በሙሉ ማጽዳት ይፈልጋሉ? ይህ ሁሉንም የተከማቸ መረጃ ይሰርዛል።",
		Clearing:          "መረጃ ቋት እየጸዳ ነው። እባክዎ ይጠብቁ...",
		Cleared:           "መረጃ ቋት ጸድቷል: %s",
		RestartNotice:     "መረጃ ቋት በተሳካ ሁኔታ ጸድቷል። እባክዎ ለውጦቹን ለማንቃት አፕሊኬሽኑን እንደገና ያስጀምሩ።",
		ClearFailed:       "መረጃ ቋት ማጽዳት አልተሳካም: %s",
		UnknownError:      "ያልታወቀ ስህተት",
		ClearNetworkError: "መረጃ ቋት ለማጽዳት የአውታረ መረብ ስህተት ተከስቷል።",
		Busy:              "እባክዎ የቀደመው ጥያቄ እስኪጠናቀቅ ይጠብቁ።",
		InputPlaceholder:  "መልእክትዎን እዚህ ይጻፉ...",
		Title:             "የሰነድ ረዳት",
		Help:              "Enter: ላክ • Ctrl+D: መረጃ ቋት አጽዳ • Esc: ውጣ",
		ConfirmHint:       "[y] አዎ • [n] አይ",
		NoticeHint:        "ለመቀጠል ማንኛውንም ቁልፍ ይጫኑ",
		You:               "እርስዎ",
		Bot:               "ቦት",
	},
	language.English: {
		Thinking:          "The bot is thinking... please wait...",
		ChatFailed:        "Something went wrong.",
		NetworkError:      "A network error occurred. Please try again.",
		ConfirmClear:      "Do you want to clear the database completely? This deletes all stored data.",
		Clearing:          "Clearing the database. Please wait...",
		Cleared:           "Database cleared: %s",
		RestartNotice:     "The database was cleared successfully. Please restart the application to apply the changes.",
		ClearFailed:       "Clearing the database failed: %s",
		UnknownError:      "unknown error",
		ClearNetworkError: "A network error occurred while clearing the database.",
		Busy:              "Please wait for the previous request to finish.",
		InputPlaceholder:  "Type your message here...",
		Title:             "Document Assistant",
		Help:              "Enter: send • Ctrl+D: clear database • Esc: quit",
		ConfirmHint:       "[y] yes • [n] no",
		NoticeHint:        "press any key to continue",
		You:               "You",
		Bot:               "Bot",
	},
}

// Catalog resolves message keys for one language
type Catalog struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns the catalog that best matches the requested language, e.g.
// "am", "en-US" or "en_GB.UTF-8". Unknown languages fall back to Amharic.
func New(lang string) (*Catalog, error) {
	builder := catalog.NewBuilder(catalog.Fallback(Supported[0]))
	for tag, msgs := range entries {
		for key, msg := range msgs {
			if err := builder.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("failed to register %s for %s: %w", key, tag, err)
			}
		}
	}

	tag := Match(lang)
	return &Catalog{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(builder)),
	}, nil
}

// Match picks the supported language closest to lang
func Match(lang string) language.Tag {
	matcher := language.NewMatcher(Supported)
	_, idx := language.MatchStrings(matcher, normalize(lang))
	return Supported[idx]
}

// Language returns the language the catalog renders
func (c *Catalog) Language() language.Tag {
	return c.tag
}

// Text renders the message for key, formatting args into it
func (c *Catalog) Text(key string, args ...interface{}) string {
	return c.printer.Sprintf(key, args...)
}

// normalize strips POSIX locale decorations such as "en_US.UTF-8"
func normalize(lang string) string {
	out := make([]rune, 0, len(lang))
	for _, r := range lang {
		switch r {
		case '.', '@':
			return string(out)
		case '_':
			out = append(out, '-')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
