// Package languages maps language codes found in post metadata to display names.
package languages

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const Undetermined = "Undetermined"

// twitterCodes holds the codes the platform emits, including its legacy and
// pseudo-language codes that a BCP 47 parser would reject or misname.
var twitterCodes = map[string]string{
	"am": "Amharic", "ar": "Arabic", "bg": "Bulgarian", "bn": "Bengali",
	"bo": "Tibetan", "ca": "Catalan", "ckb": "Sorani Kurdish", "cs": "Czech",
	"cy": "Welsh", "da": "Danish", "de": "German", "dv": "Maldivian",
	"el": "Greek", "en": "English", "en-gb": "English UK", "es": "Spanish",
	"et": "Estonian", "eu": "Basque", "fa": "Persian", "fi": "Finnish",
	"fil": "Filipino", "fr": "French", "ga": "Irish", "gl": "Galician",
	"gu": "Gujarati", "he": "Hebrew", "hi": "Hindi", "hr": "Croatian",
	"ht": "Haitian Creole", "hu": "Hungarian", "hy": "Armenian", "id": "Indonesian",
	"in": "Indonesian", "is": "Icelandic", "it": "Italian", "iw": "Hebrew",
	"ja": "Japanese", "ka": "Georgian", "km": "Khmer", "kn": "Kannada",
	"ko": "Korean", "lo": "Lao", "lt": "Lithuanian", "lv": "Latvian",
	"ml": "Malayalam", "mr": "Marathi", "ms": "Malay", "msa": "Malay",
	"my": "Burmese", "ne": "Nepali", "nl": "Dutch", "no": "Norwegian",
	"or": "Oriya", "pa": "Panjabi", "pl": "Polish", "ps": "Pashto",
	"pt": "Portuguese", "ro": "Romanian", "ru": "Russian", "sd": "Sindhi",
	"si": "Sinhala", "sk": "Slovak", "sl": "Slovenian", "sr": "Serbian",
	"sv": "Swedish", "ta": "Tamil", "te": "Telugu", "th": "Thai",
	"tl": "Tagalog", "tr": "Turkish", "ug": "Uyghur", "uk": "Ukrainian",
	"ur": "Urdu", "vi": "Vietnamese", "zh": "Chinese",
	"zh-cn": "Chinese (Simplified)", "zh-tw": "Chinese (Traditional)",
	"und": Undetermined,
	"art": "Emoji only", "qam": "Mentions only", "qct": "Cashtags only",
	"qht": "Hashtags only", "qme": "Media links only", "qst": "Very short text",
	"zxx": "No linguistic content",
}

var namer = display.English.Languages()

// Name returns a human-readable name for code, or Undetermined when the code is unknown.
func Name(code string) string {
	key := strings.ToLower(strings.TrimSpace(code))
	if key == "" {
		return Undetermined
	}
	if name, ok := twitterCodes[key]; ok {
		return name
	}

	tag, err := language.Parse(key)
	if err != nil {
		return Undetermined
	}
	if name := namer.Name(tag); name != "" {
		return name
	}
	return Undetermined
}
