// Package locale holds language metadata used when merging translations
// back into documents and when prompting translation providers.
package locale

import (
	"path/filepath"
	"strings"
)

// names maps locale codes to the names used in provider prompts.
var names = map[string]string{
	"ar_SA": "Arabic (Saudi Arabia)",
	"bg_BG": "Bulgarian (Bulgaria)",
	"bn_BD": "Bengali (Bangladesh)",
	"ca_ES": "Catalan (Spain)",
	"cs_CZ": "Czech (Czech Republic)",
	"da_DK": "Danish (Denmark)",
	"de_DE": "German (Germany)",
	"el_GR": "Greek (Greece)",
	"en_GB": "English (United Kingdom)",
	"en_US": "English (United States)",
	"es_ES": "Spanish (Spain)",
	"es_MX": "Spanish (Mexico)",
	"eu_ES": "Basque (Spain)",
	"fa_IR": "Persian (Iran)",
	"fi_FI": "Finnish (Finland)",
	"fr_FR": "French (France)",
	"gl_ES": "Galician (Spain)",
	"he_IL": "Hebrew (Israel)",
	"hi_IN": "Hindi (India)",
	"hr_HR": "Croatian (Croatia)",
	"hu_HU": "Hungarian (Hungary)",
	"id_ID": "Indonesian (Indonesia)",
	"it_IT": "Italian (Italy)",
	"ja_JP": "Japanese (Japan)",
	"ko_KR": "Korean (South Korea)",
	"lt_LT": "Lithuanian (Lithuania)",
	"nb_NO": "Norwegian Bokmål (Norway)",
	"nl_NL": "Dutch (Netherlands)",
	"pl_PL": "Polish (Poland)",
	"pt_BR": "Portuguese (Brazil)",
	"pt_PT": "Portuguese (Portugal)",
	"ro_RO": "Romanian (Romania)",
	"ru_RU": "Russian (Russia)",
	"sk_SK": "Slovak (Slovakia)",
	"sl_SI": "Slovenian (Slovenia)",
	"sr_RS": "Serbian (Serbia)",
	"sv_SE": "Swedish (Sweden)",
	"th_TH": "Thai (Thailand)",
	"tr_TR": "Turkish (Turkey)",
	"uk_UA": "Ukrainian (Ukraine)",
	"ur_PK": "Urdu (Pakistan)",
	"vi_VN": "Vietnamese (Vietnam)",
	"zh_CN": "Chinese (Simplified)",
	"zh_TW": "Chinese (Traditional)",
}

// defaults expands bare language codes to their most common locale.
var defaults = map[string]string{
	"ar": "ar_SA",
	"de": "de_DE",
	"en": "en_US",
	"es": "es_ES",
	"fr": "fr_FR",
	"he": "he_IL",
	"hi": "hi_IN",
	"it": "it_IT",
	"ja": "ja_JP",
	"ko": "ko_KR",
	"nl": "nl_NL",
	"pl": "pl_PL",
	"pt": "pt_BR",
	"ru": "ru_RU",
	"tr": "tr_TR",
	"vi": "vi_VN",
	"zh": "zh_CN",
}

// clarifications disambiguate locales that share a base language.
var clarifications = map[string]string{
	"en_GB": "Use British spelling and vocabulary.",
	"es_MX": "Use Mexican Spanish vocabulary, not Castilian.",
	"pt_BR": "Use Brazilian Portuguese, not European Portuguese.",
	"pt_PT": "Use European Portuguese, not Brazilian Portuguese.",
	"zh_CN": "Use Simplified Chinese characters.",
	"zh_TW": "Use Traditional Chinese characters.",
}

// rtl holds base language codes written right to left.
var rtl = map[string]bool{
	"ar": true,
	"dv": true,
	"fa": true,
	"he": true,
	"ps": true,
	"sd": true,
	"ug": true,
	"ur": true,
	"yi": true,
}

// Normalize converts "es-ES" style codes to "es_ES".
func Normalize(code string) string {
	return strings.ReplaceAll(code, "-", "_")
}

// Base returns the lowercased language part of a locale ("pt" for "pt_BR").
func Base(code string) string {
	code = Normalize(code)
	if i := strings.IndexAny(code, "_@."); i >= 0 {
		code = code[:i]
	}
	return strings.ToLower(code)
}

// Same reports whether two codes name the same base language.
func Same(a, b string) bool {
	return Base(a) == Base(b)
}

// Name returns a human-readable name for code, or code itself.
func Name(code string) string {
	code = Normalize(code)
	if name, ok := names[code]; ok {
		return name
	}
	if full, ok := defaults[code]; ok {
		return names[full]
	}
	return code
}

// Clarification returns a locale hint for prompts, or "".
func Clarification(code string) string {
	return clarifications[Normalize(code)]
}

// Direction returns "rtl" for right-to-left languages and "ltr" otherwise.
func Direction(code string) string {
	if rtl[Base(code)] {
		return "rtl"
	}
	return "ltr"
}

// IsRTL reports whether code is written right to left.
func IsRTL(code string) bool {
	return Direction(code) == "rtl"
}

// HTMLLang converts a locale code to the form used in lang attributes
// ("es_ES" becomes "es-ES").
func HTMLLang(code string) string {
	return strings.ReplaceAll(code, "_", "-")
}

// FromCatalogPath derives the language from a catalog file name the way
// gettext projects name them: "po/de.po" gives "de".
func FromCatalogPath(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return base
}
