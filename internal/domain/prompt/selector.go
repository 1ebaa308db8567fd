// Package prompt turns an assistant mode plus the user's text into the
// instruction string sent to the text generator. Templates live in the
// embedded templates.yaml.
package prompt

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/yanqian/jeevamithra/internal/domain/i18n"
)

//go:embed templates.yaml
var defaultTemplates []byte

// Mode selects the conversation domain.
type Mode string

const (
	ModeGeneral   Mode = "general"
	ModeFarming   Mode = "farming"
	ModeHealth    Mode = "health"
	ModeEducation Mode = "education"
	ModeNews      Mode = "news"
	ModeSchemes   Mode = "schemes"
)

// Modes lists every supported mode.
var Modes = []Mode{ModeGeneral, ModeFarming, ModeHealth, ModeEducation, ModeNews, ModeSchemes}

// ParseMode maps a raw value to a Mode. Unknown values map to ModeGeneral
// and report false.
func ParseMode(raw string) (Mode, bool) {
	m := Mode(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Modes {
		if m == known {
			return m, true
		}
	}
	return ModeGeneral, false
}

// Task names a structured request template.
type Task string

const (
	TaskWeather      Task = "weather"
	TaskNews         Task = "news"
	TaskQuiz         Task = "quiz"
	TaskWorkout      Task = "workout"
	TaskNutrition    Task = "nutrition"
	TaskScholarships Task = "scholarships"
	TaskCareer       Task = "career"
	TaskProductivity Task = "productivity"
)

// Tasks lists the built-in task templates every library must define.
var Tasks = []Task{TaskWeather, TaskNews, TaskQuiz, TaskWorkout, TaskNutrition, TaskScholarships, TaskCareer, TaskProductivity}

type document struct {
	Modes     map[Mode]i18n.Text `yaml:"modes"`
	ImageOnly i18n.Text          `yaml:"imageOnly"`
	Tasks     map[Task]i18n.Text `yaml:"tasks"`
}

type localized struct {
	en *template.Template
	te *template.Template
}

func (l localized) pick(telugu bool) *template.Template {
	if telugu && l.te != nil {
		return l.te
	}
	return l.en
}

// Library holds parsed templates. It is read-only after Load.
type Library struct {
	modes     map[Mode]i18n.Text
	imageOnly i18n.Text
	tasks     map[Task]localized
}

// Load parses a templates document.
func Load(r io.Reader) (*Library, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode prompt templates: %w", err)
	}
	if _, ok := doc.Modes[ModeGeneral]; !ok {
		return nil, fmt.Errorf("decode prompt templates: missing %q mode", ModeGeneral)
	}
	lib := &Library{
		modes:     doc.Modes,
		imageOnly: doc.ImageOnly,
		tasks:     make(map[Task]localized, len(doc.Tasks)),
	}
	for task, text := range doc.Tasks {
		var loc localized
		var err error
		if loc.en, err = template.New(string(task) + ".en").Option("missingkey=zero").Parse(text.English); err != nil {
			return nil, fmt.Errorf("parse %s template: %w", task, err)
		}
		if text.Telugu != "" {
			if loc.te, err = template.New(string(task) + ".te").Option("missingkey=zero").Parse(text.Telugu); err != nil {
				return nil, fmt.Errorf("parse %s telugu template: %w", task, err)
			}
		}
		lib.tasks[task] = loc
	}
	for _, task := range Tasks {
		if _, ok := lib.tasks[task]; !ok {
			return nil, fmt.Errorf("decode prompt templates: missing %q task", task)
		}
	}
	return lib, nil
}

var (
	defaultOnce sync.Once
	defaultLib  *Library
)

// Default returns the library built from the embedded templates.
func Default() *Library {
	defaultOnce.Do(func() {
		lib, err := Load(bytes.NewReader(defaultTemplates))
		if err != nil {
			panic(err)
		}
		defaultLib = lib
	})
	return defaultLib
}

// Build returns the mode preamble followed by the user's text.
func (l *Library) Build(mode Mode, text string, telugu bool) string {
	return l.Preamble(mode, telugu) + " " + text
}

// Preamble returns the instruction block for mode, general when unknown.
func (l *Library) Preamble(mode Mode, telugu bool) string {
	t, ok := l.modes[mode]
	if !ok {
		t = l.modes[ModeGeneral]
	}
	return t.Pick(telugu)
}

// ImageOnly is the prompt sent with an image that has no accompanying text.
func (l *Library) ImageOnly(telugu bool) string {
	return l.imageOnly.Pick(telugu)
}

// Render executes a task template with data.
func (l *Library) Render(task Task, telugu bool, data any) (string, error) {
	loc, ok := l.tasks[task]
	if !ok {
		return "", fmt.Errorf("unknown prompt task %q", task)
	}
	var buf strings.Builder
	if err := loc.pick(telugu).Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", task, err)
	}
	return buf.String(), nil
}

// QuizInput parameterises the quiz prompt.
type QuizInput struct {
	Grade      string
	ExamType   string
	Difficulty string
	Count      int
}

// ScholarshipInput parameterises the scholarship prompt.
type ScholarshipInput struct {
	Grade     string
	Community string
	Income    string
	State     string
}

// Weather asks for a labeled report plus a Monday to Friday forecast.
func (l *Library) Weather(location string, telugu bool) string {
	return l.mustRender(TaskWeather, telugu, struct{ Location string }{location})
}

// News asks for one agriculture headline with content and source.
func (l *Library) News(telugu bool) string {
	return l.mustRender(TaskNews, telugu, nil)
}

// Quiz asks for multiple-choice questions with a marked answer line.
func (l *Library) Quiz(in QuizInput, telugu bool) string {
	if in.Count <= 0 {
		in.Count = 5
	}
	return l.mustRender(TaskQuiz, telugu, in)
}

// Workout embeds the user's fitness data as key: value pairs.
func (l *Library) Workout(data map[string]string, telugu bool) string {
	return l.mustRender(TaskWorkout, telugu, struct{ Data string }{formatPairs(data)})
}

// Nutrition asks for a nutrient breakdown of one food item.
func (l *Library) Nutrition(food, quantity string, telugu bool) string {
	return l.mustRender(TaskNutrition, telugu, struct{ FoodItem, Quantity string }{food, quantity})
}

// Scholarships asks for schemes matching the student's profile.
func (l *Library) Scholarships(in ScholarshipInput, telugu bool) string {
	return l.mustRender(TaskScholarships, telugu, in)
}

// Career asks for post-10th career paths.
func (l *Library) Career(telugu bool) string {
	return l.mustRender(TaskCareer, telugu, nil)
}

// Productivity asks for study productivity tips.
func (l *Library) Productivity(telugu bool) string {
	return l.mustRender(TaskProductivity, telugu, nil)
}

// mustRender is only used for built-in tasks, which Load guarantees exist.
func (l *Library) mustRender(task Task, telugu bool, data any) string {
	out, err := l.Render(task, telugu, data)
	if err != nil {
		panic(err)
	}
	return out
}

func formatPairs(data map[string]string) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+data[k])
	}
	return strings.Join(parts, ", ")
}
