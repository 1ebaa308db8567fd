package speech

import (
	"regexp"
	"strings"
)

var cleaners = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`[⚠🚨🔊🎯✅📦🧠🔧🖥💬🔒📜🌐🎤🎵🔍🆘📄🤝🔄💡🌾📚☀⛅🌧⛈💨\x{FE0F}]`), ""},
	{regexp.MustCompile(`\*\*(.*?)\*\*`), "$1"},
	{regexp.MustCompile(`\*(.*?)\*`), "$1"},
	{regexp.MustCompile("`(.*?)`"), "$1"},
	{regexp.MustCompile(`#{1,6}\s`), ""},
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`), "$1"},
	{regexp.MustCompile(`\n{2,}`), ". "},
	{regexp.MustCompile(`\n`), " "},
	{regexp.MustCompile(`\s{2,}`), " "},
}

// CleanForSpeech strips emoji and markdown so the voice reads only prose.
func CleanForSpeech(text string) string {
	for _, c := range cleaners {
		text = c.re.ReplaceAllString(text, c.repl)
	}
	return strings.TrimSpace(text)
}

// CacheKey identifies a clip by language and the first 100 characters of
// cleaned text.
func CacheKey(languageCode, cleaned string) string {
	r := []rune(cleaned)
	if len(r) > 100 {
		r = r[:100]
	}
	return languageCode + ":" + string(r)
}
