package healthtopic

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/yanqian/jeevamithra/internal/domain/i18n"
)

//go:embed keywords.yaml
var defaultTables []byte

// Tables is the data the classifier runs on. The embedded keywords.yaml is
// the default; LoadTables accepts a replacement with the same shape.
type Tables struct {
	Categories           map[string][]string `yaml:"categories"`
	Telugu               []string            `yaml:"telugu"`
	Phrases              []string            `yaml:"phrases"`
	Tiers                []Tier              `yaml:"tiers"`
	SpecializedThreshold float64             `yaml:"specializedThreshold"`
	Conditions           []Condition         `yaml:"conditions"`
	Emergency            EmergencyTerms      `yaml:"emergency"`
	EmergencyWarning     i18n.Text           `yaml:"emergencyWarning"`
	Disclaimer           i18n.Text           `yaml:"disclaimer"`
	MedicalPrompt        i18n.Text           `yaml:"medicalPrompt"`
	FirstAid             FirstAid            `yaml:"firstAid"`
}

// Tier adds Weight to the confidence score when any of its terms is present.
type Tier struct {
	Name   string   `yaml:"name"`
	Weight float64  `yaml:"weight"`
	Terms  []string `yaml:"terms"`
}

// Condition maps trigger terms to canned advice. Declaration order decides
// which condition wins when several match.
type Condition struct {
	Key     string    `yaml:"key"`
	English []string  `yaml:"english"`
	Telugu  []string  `yaml:"telugu"`
	Advice  i18n.Text `yaml:"advice"`
}

// EmergencyTerms lists urgent-care phrases per language.
type EmergencyTerms struct {
	English []string `yaml:"english"`
	Telugu  []string `yaml:"telugu"`
}

// DefaultTables decodes the embedded tables, first-aid center included.
func DefaultTables() (Tables, error) {
	t, err := LoadTables(bytes.NewReader(defaultTables))
	if err != nil {
		return Tables{}, err
	}
	if t.FirstAid, err = DefaultFirstAid(); err != nil {
		return Tables{}, err
	}
	return t, nil
}

// LoadTables decodes tables from YAML.
func LoadTables(r io.Reader) (Tables, error) {
	var t Tables
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return Tables{}, fmt.Errorf("decode health tables: %w", err)
	}
	if len(t.Categories) == 0 {
		return Tables{}, fmt.Errorf("decode health tables: no keyword categories")
	}
	return t, nil
}
