// Package healthtopic decides whether an utterance is about health, how
// strongly, whether it sounds like an emergency, and which canned condition
// advice applies. All checks are substring scans over static tables.
package healthtopic

import (
	"math"
	"sort"
	"strings"
)

// Result is the classification of a single utterance.
type Result struct {
	IsHealthRelated           bool    `json:"isHealthRelated"`
	IsEmergency               bool    `json:"isEmergency"`
	Confidence                float64 `json:"confidence"`
	RequiresSpecializedPrompt bool    `json:"requiresSpecializedPrompt"`
	Condition                 string  `json:"condition,omitempty"`
	ConditionAdvice           string  `json:"conditionAdvice,omitempty"`
	FirstAidKey               string  `json:"firstAidKey,omitempty"`
}

// Outcome is a coarse label for metrics and logs.
func (r Result) Outcome() string {
	switch {
	case r.IsEmergency:
		return "emergency"
	case r.RequiresSpecializedPrompt:
		return "specialized"
	case r.IsHealthRelated:
		return "health"
	default:
		return "general"
	}
}

// Classifier is immutable after construction and safe for concurrent use.
type Classifier struct {
	tables    Tables
	english   []string
	telugu    []string
	phrases   []string
	tiers     []Tier
	emergency []string
	emergTE   []string
	threshold float64
}

// NewClassifier lower-cases the English tables once so lookups only fold the input.
func NewClassifier(t Tables) *Classifier {
	c := &Classifier{
		tables:    t,
		telugu:    t.Telugu,
		phrases:   lowerAll(t.Phrases),
		emergency: lowerAll(t.Emergency.English),
		emergTE:   t.Emergency.Telugu,
		threshold: t.SpecializedThreshold,
	}
	categories := make([]string, 0, len(t.Categories))
	for name := range t.Categories {
		categories = append(categories, name)
	}
	sort.Strings(categories)
	for _, name := range categories {
		c.english = append(c.english, lowerAll(t.Categories[name])...)
	}
	for _, tier := range t.Tiers {
		c.tiers = append(c.tiers, Tier{Name: tier.Name, Weight: tier.Weight, Terms: lowerAll(tier.Terms)})
	}
	return c
}

// Default builds a classifier over the embedded tables.
func Default() *Classifier {
	t, err := DefaultTables()
	if err != nil {
		panic(err)
	}
	return NewClassifier(t)
}

// Tables returns the tables the classifier was built from.
func (c *Classifier) Tables() Tables {
	return c.tables
}

// Classify scores text and attaches English condition advice.
func (c *Classifier) Classify(text string) Result {
	return c.ClassifyFor(text, false)
}

// ClassifyFor scores text and attaches condition advice in the requested language.
func (c *Classifier) ClassifyFor(text string, telugu bool) Result {
	lower := strings.ToLower(text)
	res := Result{
		IsHealthRelated: c.isHealthRelated(text, lower),
		IsEmergency:     c.isEmergency(text, lower),
		Confidence:      c.confidence(lower),
	}
	res.RequiresSpecializedPrompt = res.IsHealthRelated && res.Confidence > c.threshold
	if cond, ok := c.matchCondition(text, lower); ok {
		res.Condition = cond.Key
		res.ConditionAdvice = cond.Advice.Pick(telugu)
	}
	if key, ok := c.matchFirstAid(text, lower); ok {
		res.FirstAidKey = key
	}
	return res
}

// IsHealthRelated reports a keyword, Telugu keyword or health-phrase hit.
func (c *Classifier) IsHealthRelated(text string) bool {
	return c.isHealthRelated(text, strings.ToLower(text))
}

// Confidence returns the additive tier score capped at 1.
func (c *Classifier) Confidence(text string) float64 {
	return c.confidence(strings.ToLower(text))
}

// IsEmergency reports whether any emergency phrase occurs in text.
func (c *Classifier) IsEmergency(text string) bool {
	return c.isEmergency(text, strings.ToLower(text))
}

// DetectCondition returns the advice of the first matching condition.
func (c *Classifier) DetectCondition(text string, telugu bool) (string, bool) {
	cond, ok := c.matchCondition(text, strings.ToLower(text))
	if !ok {
		return "", false
	}
	return cond.Advice.Pick(telugu), true
}

// EmergencyWarning is shown ahead of any reply to an emergency utterance.
func (c *Classifier) EmergencyWarning(telugu bool) string {
	return c.tables.EmergencyWarning.Pick(telugu)
}

// Disclaimer is appended to health replies.
func (c *Classifier) Disclaimer(telugu bool) string {
	return c.tables.Disclaimer.Pick(telugu)
}

// MedicalPrompt wraps text in the doctor-persona instructions.
func (c *Classifier) MedicalPrompt(text string, telugu bool) string {
	return c.tables.MedicalPrompt.Pick(telugu) + " " + text
}

func (c *Classifier) isHealthRelated(raw, lower string) bool {
	return containsAny(lower, c.english) || containsAny(raw, c.telugu) || containsAny(lower, c.phrases)
}

func (c *Classifier) isEmergency(raw, lower string) bool {
	return containsAny(lower, c.emergency) || containsAny(raw, c.emergTE)
}

func (c *Classifier) confidence(lower string) float64 {
	score := 0.0
	for _, tier := range c.tiers {
		if containsAny(lower, tier.Terms) {
			score += tier.Weight
		}
	}
	// round away float noise from summing decimal weights
	score = math.Round(score*100) / 100
	return math.Min(score, 1)
}

func (c *Classifier) matchCondition(raw, lower string) (Condition, bool) {
	for _, cond := range c.tables.Conditions {
		if containsAnyFold(lower, cond.English) || containsAny(raw, cond.Telugu) {
			return cond, true
		}
	}
	return Condition{}, false
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if term != "" && strings.Contains(s, term) {
			return true
		}
	}
	return false
}

func containsAnyFold(lower string, terms []string) bool {
	for _, term := range terms {
		if term != "" && strings.Contains(lower, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
