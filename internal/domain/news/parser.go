package news

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/yanqian/jeevamithra/internal/domain/i18n"
)

//go:embed labels.yaml
var defaultLabels []byte

// Labels configures how a free-text news answer is read.
type Labels struct {
	Headline         []string `yaml:"headline"`
	Content          []string `yaml:"content"`
	Source           []string `yaml:"source"`
	MinHeadlineRunes int      `yaml:"minHeadlineRunes"`
	MinContentRunes  int      `yaml:"minContentRunes"`
	MaxExcerptRunes  int      `yaml:"maxExcerptRunes"`
	Untitled         string   `yaml:"untitled"`
	DefaultHeadline  string   `yaml:"defaultHeadline"`
	Failure          struct {
		Headline i18n.Text `yaml:"headline"`
		Content  i18n.Text `yaml:"content"`
	} `yaml:"failure"`
}

// LoadLabels decodes a labels document.
func LoadLabels(r io.Reader) (Labels, error) {
	var l Labels
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&l); err != nil {
		return Labels{}, fmt.Errorf("decode news labels: %w", err)
	}
	if len(l.Headline) == 0 || l.DefaultHeadline == "" {
		return Labels{}, fmt.Errorf("decode news labels: headline labels and default headline are required")
	}
	return l, nil
}

// Parser reads Item values out of model answers.
type Parser struct {
	labels Labels
}

// NewParser builds a parser over labels.
func NewParser(labels Labels) *Parser {
	return &Parser{labels: labels}
}

var (
	defaultOnce   sync.Once
	defaultParser *Parser
)

// DefaultParser uses the embedded labels.
func DefaultParser() *Parser {
	defaultOnce.Do(func() {
		labels, err := LoadLabels(bytes.NewReader(defaultLabels))
		if err != nil {
			panic(err)
		}
		defaultParser = NewParser(labels)
	})
	return defaultParser
}

// Parse runs the default parser.
func Parse(raw string, now time.Time) Item {
	return DefaultParser().Parse(raw, now)
}

// Fallback returns the default failure item.
func Fallback(telugu bool, now time.Time) Item {
	return DefaultParser().Fallback(telugu, now)
}

// Parse extracts headline, content and source. Labeled lines win; without
// them the first substantial line becomes the headline and the next longer
// one the content. Text with no usable lines is split into sentences.
func (p *Parser) Parse(raw string, now time.Time) Item {
	var headline, content, source string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if v, ok := cutLabel(line, p.labels.Headline); ok {
			headline = stripBold(v)
			continue
		}
		if v, ok := cutLabel(line, p.labels.Content); ok {
			content = v
			continue
		}
		if v, ok := cutLabel(line, p.labels.Source); ok {
			source = v
			continue
		}
		n := utf8.RuneCountInString(line)
		switch {
		case headline == "" && n >= p.labels.MinHeadlineRunes:
			headline = stripBold(line)
		case headline != "" && content == "" && n >= p.labels.MinContentRunes:
			content = line
		}
	}

	if headline == "" {
		sentences := p.sentences(raw)
		if len(sentences) > 0 {
			headline = sentences[0]
			if len(sentences) > 1 {
				content = strings.Join(sentences[1:min(3, len(sentences))], ". ")
			}
		} else {
			headline = p.labels.Untitled
		}
		if content == "" {
			content = excerpt(strings.TrimSpace(raw), p.labels.MaxExcerptRunes)
		}
	}
	if headline == "" {
		headline = p.labels.DefaultHeadline
	}
	if content == "" {
		content = excerpt(strings.TrimSpace(raw), p.labels.MaxExcerptRunes)
	}
	if content == "" {
		content = headline
	}
	return Item{
		Headline:  headline,
		Content:   content,
		Source:    source,
		Timestamp: now.UTC(),
	}
}

// Fallback is the item served when news could not be fetched.
func (p *Parser) Fallback(telugu bool, now time.Time) Item {
	return Item{
		Headline:  p.labels.Failure.Headline.Pick(telugu),
		Content:   p.labels.Failure.Content.Pick(telugu),
		Timestamp: now.UTC(),
		Telugu:    telugu,
		Fallback:  true,
	}
}

func (p *Parser) sentences(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ".") {
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) >= p.labels.MinHeadlineRunes {
			out = append(out, s)
		}
	}
	return out
}

// cutLabel matches a label at the start of line, ignoring case and any
// leading bold markers, and returns the remainder.
func cutLabel(line string, labels []string) (string, bool) {
	candidate := strings.TrimLeft(line, "*")
	for _, label := range labels {
		if len(candidate) < len(label) || !strings.EqualFold(candidate[:len(label)], label) {
			continue
		}
		rest := strings.TrimLeft(candidate[len(label):], "* \t")
		return strings.TrimSpace(rest), true
	}
	return "", false
}

func stripBold(s string) string {
	s = strings.TrimPrefix(s, "**")
	s = strings.TrimSuffix(s, "**")
	return strings.TrimSpace(s)
}

func excerpt(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
