package healthtopic

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yanqian/jeevamithra/internal/domain/i18n"
)

//go:embed firstaid.yaml
var defaultFirstAid []byte

// FirstAid is the first-aid center: step-by-step guides for common
// emergencies and a rotating set of daily health tips.
type FirstAid struct {
	Heading i18n.Text `yaml:"heading"`
	Guides  []Guide   `yaml:"guides"`
	Tips    []Tip     `yaml:"tips"`
}

// Guide is one first-aid procedure.
type Guide struct {
	Key      string         `yaml:"key"`
	Emoji    string         `yaml:"emoji"`
	Title    i18n.Text      `yaml:"title"`
	Steps    []i18n.Text    `yaml:"steps"`
	Triggers EmergencyTerms `yaml:"triggers"`
}

// Tip is a short daily health tip.
type Tip struct {
	Emoji       string    `yaml:"emoji"`
	Category    string    `yaml:"category"`
	Title       i18n.Text `yaml:"title"`
	Description i18n.Text `yaml:"description"`
}

// GuideView is a guide rendered in one language.
type GuideView struct {
	Key   string   `json:"key"`
	Emoji string   `json:"emoji"`
	Title string   `json:"title"`
	Steps []string `json:"steps"`
}

// TipView is a tip rendered in one language.
type TipView struct {
	Emoji       string `json:"emoji"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// DefaultFirstAid decodes the embedded first-aid tables.
func DefaultFirstAid() (FirstAid, error) {
	return LoadFirstAid(bytes.NewReader(defaultFirstAid))
}

// LoadFirstAid decodes first-aid tables from YAML.
func LoadFirstAid(r io.Reader) (FirstAid, error) {
	var fa FirstAid
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fa); err != nil {
		return FirstAid{}, fmt.Errorf("decode first aid: %w", err)
	}
	seen := make(map[string]struct{}, len(fa.Guides))
	for _, g := range fa.Guides {
		if g.Key == "" || len(g.Steps) == 0 {
			return FirstAid{}, fmt.Errorf("decode first aid: guide %q needs a key and steps", g.Key)
		}
		if _, dup := seen[g.Key]; dup {
			return FirstAid{}, fmt.Errorf("decode first aid: duplicate guide %q", g.Key)
		}
		seen[g.Key] = struct{}{}
	}
	return fa, nil
}

func (g Guide) view(telugu bool) GuideView {
	steps := make([]string, len(g.Steps))
	for i, s := range g.Steps {
		steps[i] = s.Pick(telugu)
	}
	return GuideView{Key: g.Key, Emoji: g.Emoji, Title: g.Title.Pick(telugu), Steps: steps}
}

func (t Tip) view(telugu bool) TipView {
	return TipView{Emoji: t.Emoji, Category: t.Category, Title: t.Title.Pick(telugu), Description: t.Description.Pick(telugu)}
}

// FirstAidGuides lists every guide in table order.
func (c *Classifier) FirstAidGuides(telugu bool) []GuideView {
	out := make([]GuideView, 0, len(c.tables.FirstAid.Guides))
	for _, g := range c.tables.FirstAid.Guides {
		out = append(out, g.view(telugu))
	}
	return out
}

// FirstAidGuide looks a guide up by key.
func (c *Classifier) FirstAidGuide(key string, telugu bool) (GuideView, bool) {
	for _, g := range c.tables.FirstAid.Guides {
		if g.Key == key {
			return g.view(telugu), true
		}
	}
	return GuideView{}, false
}

// MatchFirstAid returns the key of the guide whose trigger matches text.
// The longest matching trigger wins so "heat stroke" is not read as "stroke".
func (c *Classifier) MatchFirstAid(text string) (string, bool) {
	return c.matchFirstAid(text, strings.ToLower(text))
}

func (c *Classifier) matchFirstAid(raw, lower string) (string, bool) {
	best, bestLen := "", 0
	for _, g := range c.tables.FirstAid.Guides {
		for _, term := range g.Triggers.English {
			term = strings.ToLower(term)
			if len(term) > bestLen && strings.Contains(lower, term) {
				best, bestLen = g.Key, len(term)
			}
		}
		for _, term := range g.Triggers.Telugu {
			if len(term) > bestLen && strings.Contains(raw, term) {
				best, bestLen = g.Key, len(term)
			}
		}
	}
	return best, bestLen > 0
}

// FirstAidSummary renders a guide as a heading line followed by numbered steps.
func (c *Classifier) FirstAidSummary(key string, telugu bool) (string, bool) {
	g, ok := c.FirstAidGuide(key, telugu)
	if !ok {
		return "", false
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s %s", c.tables.FirstAid.Heading.Pick(telugu), g.Emoji, g.Title)
	for i, step := range g.Steps {
		fmt.Fprintf(&b, "\n%d. %s", i+1, step)
	}
	return b.String(), true
}

// DailyTips lists every tip in table order.
func (c *Classifier) DailyTips(telugu bool) []TipView {
	out := make([]TipView, 0, len(c.tables.FirstAid.Tips))
	for _, t := range c.tables.FirstAid.Tips {
		out = append(out, t.view(telugu))
	}
	return out
}

// TipOfTheDay picks one tip per calendar day, cycling through the table.
func (c *Classifier) TipOfTheDay(day time.Time, telugu bool) (TipView, bool) {
	tips := c.tables.FirstAid.Tips
	if len(tips) == 0 {
		return TipView{}, false
	}
	return tips[(day.YearDay()-1)%len(tips)].view(telugu), true
}
