package chat

import (
	"bytes"
	_ "embed"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yanqian/jeevamithra/internal/domain/i18n"
	"github.com/yanqian/jeevamithra/internal/domain/prompt"
)

//go:embed messages.yaml
var rawMessages []byte

type messageTable struct {
	Welcome          map[prompt.Mode]i18n.Text `yaml:"welcome"`
	Cleared          i18n.Text                 `yaml:"cleared"`
	ImagePlaceholder i18n.Text                 `yaml:"imagePlaceholder"`
	EmptyMessage     i18n.Text                 `yaml:"emptyMessage"`
	InvalidImage     i18n.Text                 `yaml:"invalidImage"`
	GenerationFailed i18n.Text                 `yaml:"generationFailed"`
}

var messages = mustLoadMessages()

func mustLoadMessages() messageTable {
	var t messageTable
	dec := yaml.NewDecoder(bytes.NewReader(rawMessages))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		panic("chat: decode messages.yaml: " + err.Error())
	}
	return t
}

// Welcome is the greeting shown when a session in mode starts.
func Welcome(mode prompt.Mode, telugu bool) string {
	if t, ok := messages.Welcome[mode]; ok {
		return t.Pick(telugu)
	}
	return messages.Welcome[prompt.ModeGeneral].Pick(telugu)
}

var scriptRe = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)

// Sanitize removes script blocks from user text.
func Sanitize(text string) string {
	return scriptRe.ReplaceAllString(text, "")
}

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
}

func imageExtension(mimeType string) (string, bool) {
	ext, ok := allowedImageTypes[strings.ToLower(strings.TrimSpace(mimeType))]
	return ext, ok
}
