package whisper

import (
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// AutoDetect is the language code that lets the engine detect the language.
const AutoDetect = "auto"

type Language struct {
	Name string
	Code string
}

var languages = [...]Language{
	{Name: "Auto-detect", Code: AutoDetect},
	{Name: "Afrikaans", Code: "af"},
	{Name: "Albanian", Code: "sq"},
	{Name: "Amharic", Code: "am"},
	{Name: "Arabic", Code: "ar"},
	{Name: "Armenian", Code: "hy"},
	{Name: "Assamese", Code: "as"},
	{Name: "Azerbaijani", Code: "az"},
	{Name: "Bashkir", Code: "ba"},
	{Name: "Basque", Code: "eu"},
	{Name: "Belarusian", Code: "be"},
	{Name: "Bengali", Code: "bn"},
	{Name: "Bosnian", Code: "bs"},
	{Name: "Breton", Code: "br"},
	{Name: "Bulgarian", Code: "bg"},
	{Name: "Burmese", Code: "my"},
	{Name: "Cantonese", Code: "yue"},
	{Name: "Catalan", Code: "ca"},
	{Name: "Chinese", Code: "zh"},
	{Name: "Croatian", Code: "hr"},
	{Name: "Czech", Code: "cs"},
	{Name: "Danish", Code: "da"},
	{Name: "Dutch", Code: "nl"},
	{Name: "English", Code: "en"},
	{Name: "Estonian", Code: "et"},
	{Name: "Faroese", Code: "fo"},
	{Name: "Finnish", Code: "fi"},
	{Name: "French", Code: "fr"},
	{Name: "Galician", Code: "gl"},
	{Name: "Georgian", Code: "ka"},
	{Name: "German", Code: "de"},
	{Name: "Greek", Code: "el"},
	{Name: "Gujarati", Code: "gu"},
	{Name: "Haitian", Code: "ht"},
	{Name: "Hausa", Code: "ha"},
	{Name: "Hawaiian", Code: "haw"},
	{Name: "Hebrew", Code: "he"},
	{Name: "Hindi", Code: "hi"},
	{Name: "Hungarian", Code: "hu"},
	{Name: "Icelandic", Code: "is"},
	{Name: "Indonesian", Code: "id"},
	{Name: "Italian", Code: "it"},
	{Name: "Japanese", Code: "ja"},
	{Name: "Javanese", Code: "jw"},
	{Name: "Kannada", Code: "kn"},
	{Name: "Kazakh", Code: "kk"},
	{Name: "Central Khmer", Code: "km"},
	{Name: "Korean", Code: "ko"},
	{Name: "Latin", Code: "la"},
	{Name: "Latvian", Code: "lv"},
	{Name: "Lao", Code: "lo"},
	{Name: "Lingala", Code: "ln"},
	{Name: "Lithuanian", Code: "lt"},
	{Name: "Luxembourgish", Code: "lb"},
	{Name: "Macedonian", Code: "mk"},
	{Name: "Malagasy", Code: "mg"},
	{Name: "Malay", Code: "ms"},
	{Name: "Malayalam", Code: "ml"},
	{Name: "Maltese", Code: "mt"},
	{Name: "Maori", Code: "mi"},
	{Name: "Marathi", Code: "mr"},
	{Name: "Mongolian", Code: "mn"},
	{Name: "Nepali", Code: "ne"},
	{Name: "Norwegian Bokmal", Code: "no"},
	{Name: "Norwegian Nynorsk", Code: "nn"},
	{Name: "Occitan", Code: "oc"},
	{Name: "Pashto", Code: "ps"},
	{Name: "Persian", Code: "fa"},
	{Name: "Polish", Code: "pl"},
	{Name: "Portuguese", Code: "pt"},
	{Name: "Punjabi", Code: "pa"},
	{Name: "Romanian", Code: "ro"},
	{Name: "Russian", Code: "ru"},
	{Name: "Sanskrit", Code: "sa"},
	{Name: "Serbian", Code: "sr"},
	{Name: "Shona", Code: "sn"},
	{Name: "Sindhi", Code: "sd"},
	{Name: "Sinhala", Code: "si"},
	{Name: "Slovak", Code: "sk"},
	{Name: "Slovenian", Code: "sl"},
	{Name: "Somali", Code: "so"},
	{Name: "Spanish", Code: "es"},
	{Name: "Sundanese", Code: "su"},
	{Name: "Swahili", Code: "sw"},
	{Name: "Swedish", Code: "sv"},
	{Name: "Tagalog", Code: "tl"},
	{Name: "Tajik", Code: "tg"},
	{Name: "Tamil", Code: "ta"},
	{Name: "Tatar", Code: "tt"},
	{Name: "Telugu", Code: "te"},
	{Name: "Thai", Code: "th"},
	{Name: "Tibetan", Code: "bo"},
	{Name: "Turkish", Code: "tr"},
	{Name: "Turkmen", Code: "tk"},
	{Name: "Ukrainian", Code: "uk"},
	{Name: "Urdu", Code: "ur"},
	{Name: "Uzbek", Code: "uz"},
	{Name: "Vietnamese", Code: "vi"},
	{Name: "Welsh", Code: "cy"},
	{Name: "Yiddish", Code: "yi"},
	{Name: "Yoruba", Code: "yo"},
}

// Languages returns a copy of the language table in display order.
func Languages() []Language {
	return slices.Clone(languages[:])
}

// LookupLanguage accepts a language name or code, ignoring case, and
// returns the matching table entry.
func LookupLanguage(value string) (Language, bool) {
	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(value))
	if want == "" {
		return languages[0], true
	}
	for _, lang := range languages {
		if fold.String(lang.Code) == want || fold.String(lang.Name) == want {
			return lang, true
		}
	}
	// Regional tags such as "pt-BR" fall back to their base language.
	if tag, err := language.Parse(want); err == nil {
		base, _ := tag.Base()
		for _, lang := range languages {
			if lang.Code == base.String() {
				return lang, true
			}
		}
	}
	return Language{}, false
}

// SupportsLanguage reports whether model can transcribe language. English-only
// models (".en" variants) accept English and auto-detection only.
func SupportsLanguage(model ResolvedModel, language string) bool {
	lang, ok := LookupLanguage(language)
	if !ok {
		return false
	}
	if lang.Code == AutoDetect {
		return true
	}
	if isEnglishOnly(model) {
		return lang.Code == "en"
	}
	return true
}

func isEnglishOnly(model ResolvedModel) bool {
	if strings.HasSuffix(model.Name, ".en") {
		return true
	}
	return strings.Contains(strings.ToLower(filepath.Base(model.Path)), ".en.")
}
