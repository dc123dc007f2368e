package xlate

import "strings"

// LanguageNames maps locale codes to human-readable names for provider prompts.
var LanguageNames = map[string]string{
	"en_US": "English (United States)",
	"en_GB": "English (United Kingdom)",
	"de_DE": "German (Germany)",
	"es_ES": "Spanish (Spain)",
	"es_MX": "Spanish (Mexico)",
	"fr_FR": "French (France)",
	"it_IT": "Italian (Italy)",
	"ja_JP": "Japanese (Japan)",
	"pt_BR": "Portuguese (Brazil)",
	"pt_PT": "Portuguese (Portugal)",
	"zh_CN": "Chinese (Simplified)",
	"zh_TW": "Chinese (Traditional)",
	"ar_SA": "Arabic (Saudi Arabia)",
	"cs_CZ": "Czech (Czech Republic)",
	"da_DK": "Danish (Denmark)",
	"el_GR": "Greek (Greece)",
	"fi_FI": "Finnish (Finland)",
	"he_IL": "Hebrew (Israel)",
	"hi_IN": "Hindi (India)",
	"hu_HU": "Hungarian (Hungary)",
	"id_ID": "Indonesian (Indonesia)",
	"ko_KR": "Korean (South Korea)",
	"nl_NL": "Dutch (Netherlands)",
	"nb_NO": "Norwegian Bokmål (Norway)",
	"pl_PL": "Polish (Poland)",
	"ro_RO": "Romanian (Romania)",
	"ru_RU": "Russian (Russia)",
	"sv_SE": "Swedish (Sweden)",
	"th_TH": "Thai (Thailand)",
	"tr_TR": "Turkish (Turkey)",
	"uk_UA": "Ukrainian (Ukraine)",
	"vi_VN": "Vietnamese (Vietnam)",
}

// ShortCodeToLocale maps short language codes to full locale codes.
var ShortCodeToLocale = map[string]string{
	"en": "en_US",
	"de": "de_DE",
	"es": "es_ES",
	"fr": "fr_FR",
	"it": "it_IT",
	"ja": "ja_JP",
	"pt": "pt_BR",
	"zh": "zh_CN",
	"ko": "ko_KR",
	"ru": "ru_RU",
	"ar": "ar_SA",
	"he": "he_IL",
	"hi": "hi_IN",
	"nl": "nl_NL",
	"pl": "pl_PL",
	"tr": "tr_TR",
	"vi": "vi_VN",
	"uk": "uk_UA",
}

// GetLanguageName returns the human-readable name for a language code.
// Falls back to the code itself if not found.
func GetLanguageName(langCode string) string {
	if name, ok := LanguageNames[langCode]; ok {
		return name
	}
	if locale, ok := ShortCodeToLocale[langCode]; ok {
		if name, ok := LanguageNames[locale]; ok {
			return name
		}
	}
	return langCode
}

// NormalizeLocale converts a language code to the standard format (e.g., "es-ES" → "es_ES").
func NormalizeLocale(langCode string) string {
	return strings.ReplaceAll(langCode, "-", "_")
}

// BaseLang extracts the base language code (e.g., "en" from "en_US").
func BaseLang(langCode string) string {
	parts := strings.SplitN(NormalizeLocale(langCode), "_", 2)
	return strings.ToLower(parts[0])
}

// SameLanguage reports whether two codes share a base language, in which case
// translation can be bypassed.
func SameLanguage(a, b string) bool {
	return BaseLang(a) == BaseLang(b)
}

// styleDescriptions maps each style to the register instruction given to providers.
var styleDescriptions = map[TranslationStyle]string{
	StyleFormal:    "Use formal, professional language. Prefer the polite address form where the target language distinguishes one.",
	StyleNeutral:   "Use a neutral, professional tone suitable for general content.",
	StyleCasual:    "Use casual, conversational language as found in blogs and social media.",
	StyleMarketing: "Use persuasive, engaging language. Keep it punchy and idiomatic.",
	StyleTechnical: "Use precise, technical language. Keep terminology consistent and literal where accuracy matters.",
}

// GetStyleDescription returns the register instruction for a style.
func GetStyleDescription(style TranslationStyle) string {
	if desc, ok := styleDescriptions[style]; ok {
		return desc
	}
	return styleDescriptions[StyleNeutral]
}

// roleDirectives maps each content role to its translation instruction.
var roleDirectives = map[ContentRole]string{
	RoleTitle:     "This is a headline. Keep it short and compelling; do not append terminal punctuation that the source lacks.",
	RoleBody:      "This is body copy. Translate sentence by sentence, preserving paragraph breaks and inline markup positions.",
	RoleShortForm: "This is a short label or excerpt. Translate tersely; do not expand it into a full sentence.",
	RoleMetadata:  "This is a platform metadata field (SEO title or description). Keep it concise and keyword-faithful.",
}

// DirectiveFor returns the role-specific style directive passed to providers.
func DirectiveFor(role ContentRole) string {
	if d, ok := roleDirectives[role]; ok {
		return d
	}
	return roleDirectives[RoleBody]
}
