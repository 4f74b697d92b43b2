package model

// SupportedLanguages maps target-language codes to display names, matching
// what /langs shows to users.
var SupportedLanguages = map[string]string{
	"en": "Английский",
	"ru": "Русский",
	"es": "Испанский",
	"fr": "Французский",
	"de": "Немецкий",
	"it": "Итальянский",
	"ja": "Японский",
	"zh": "Китайский",
}

// LanguageName returns the display name for a code, or the code itself when
// unknown.
func LanguageName(code string) string {
	if name, ok := SupportedLanguages[code]; ok {
		return name
	}
	return code
}

// IsSupportedLanguage reports whether code can be used as a translation target.
func IsSupportedLanguage(code string) bool {
	_, ok := SupportedLanguages[code]
	return ok
}
