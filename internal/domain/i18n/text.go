// Package i18n holds the English/Telugu string pair used by every canned
// prompt, fallback and warning in the service.
package i18n

// Text is one user-facing string in both supported languages.
type Text struct {
	English string `yaml:"en" json:"en"`
	Telugu  string `yaml:"te" json:"te"`
}

// Pick returns the Telugu variant when telugu is set and present.
func (t Text) Pick(telugu bool) string {
	if telugu && t.Telugu != "" {
		return t.Telugu
	}
	return t.English
}

// Languages of the two variants, as BCP-47 tags.
const (
	TagEnglish = "en"
	TagTelugu  = "te"
)

// Tag returns the language tag for the flag.
func Tag(telugu bool) string {
	if telugu {
		return TagTelugu
	}
	return TagEnglish
}
