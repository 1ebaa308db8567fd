package weather

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yanqian/jeevamithra/internal/domain/i18n"
)

//go:embed labels.yaml
var defaultLayout []byte

// Field names understood in the layout file.
const (
	FieldTemperature     = "temperature"
	FieldRainProbability = "rainProbability"
	FieldHumidity        = "humidity"
	FieldWindSpeed       = "windSpeed"
	FieldTimeOfDay       = "timeOfDay"
	FieldWeatherEmoji    = "weatherEmoji"
	FieldFarmingAdvice   = "farmingAdvice"
)

// Layout describes the labeled report format and the canned values used
// for anything missing.
type Layout struct {
	Fields          []FieldLabels `yaml:"fields"`
	Weekdays        []string      `yaml:"weekdays"`
	MinForecastDays int           `yaml:"minForecastDays"`
	Defaults        Defaults      `yaml:"defaults"`
	FailureAdvice   i18n.Text     `yaml:"failureAdvice"`
	Forecast        []CannedDay   `yaml:"forecast"`
}

// FieldLabels lists the line labels, in any language, for one field.
type FieldLabels struct {
	Field  string   `yaml:"field"`
	Labels []string `yaml:"labels"`
}

// Defaults fill fields the report did not mention.
type Defaults struct {
	Temperature     int       `yaml:"temperature"`
	RainProbability int       `yaml:"rainProbability"`
	Humidity        int       `yaml:"humidity"`
	WindSpeed       int       `yaml:"windSpeed"`
	TimeOfDay       string    `yaml:"timeOfDay"`
	WeatherEmoji    string    `yaml:"weatherEmoji"`
	FarmingAdvice   i18n.Text `yaml:"farmingAdvice"`
}

// CannedDay is one row of the built-in forecast.
type CannedDay struct {
	Day         i18n.Text `yaml:"day"`
	Emoji       string    `yaml:"emoji"`
	Temperature int       `yaml:"temperature"`
	Advice      i18n.Text `yaml:"advice"`
}

// LoadLayout decodes a layout document.
func LoadLayout(r io.Reader) (Layout, error) {
	var l Layout
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&l); err != nil {
		return Layout{}, fmt.Errorf("decode weather layout: %w", err)
	}
	if len(l.Weekdays) == 0 || len(l.Forecast) == 0 {
		return Layout{}, fmt.Errorf("decode weather layout: weekdays and forecast are required")
	}
	return l, nil
}

const emojiPattern = `☀\x{FE0F}?|⛅\x{FE0F}?|🌧\x{FE0F}?|⛈\x{FE0F}?|💨`

var (
	tempRe    = regexp.MustCompile(`(\d+)\s*°C`)
	percentRe = regexp.MustCompile(`(\d+)\s*%`)
	numberRe  = regexp.MustCompile(`(\d+)`)
	emojiRe   = regexp.MustCompile(emojiPattern)
)

// Parser extracts snapshots from free-text reports. It is immutable and safe
// for concurrent use.
type Parser struct {
	layout Layout
	dayRe  *regexp.Regexp
}

// NewParser compiles the weekday pattern for layout.
func NewParser(layout Layout) *Parser {
	days := make([]string, 0, len(layout.Weekdays))
	for _, d := range layout.Weekdays {
		days = append(days, regexp.QuoteMeta(d))
	}
	dayRe := regexp.MustCompile(`(` + strings.Join(days, "|") + `):\s*(` + emojiPattern + `)\s*(\d+)\s*°C\s*-\s*(.+)`)
	return &Parser{layout: layout, dayRe: dayRe}
}

var (
	defaultOnce   sync.Once
	defaultParser *Parser
)

// DefaultParser uses the embedded layout.
func DefaultParser() *Parser {
	defaultOnce.Do(func() {
		layout, err := LoadLayout(bytes.NewReader(defaultLayout))
		if err != nil {
			panic(err)
		}
		defaultParser = NewParser(layout)
	})
	return defaultParser
}

// Parse runs the default parser.
func Parse(raw, location string, telugu bool) Snapshot {
	return DefaultParser().Parse(raw, location, telugu)
}

// Fallback returns the default failure snapshot.
func Fallback(location string, telugu bool) Snapshot {
	return DefaultParser().Fallback(location, telugu)
}

// Parse reads labeled fields and weekday rows from raw. Missing fields take
// their defaults. A forecast with fewer than the minimum number of rows is
// dropped in favour of the canned one.
func (p *Parser) Parse(raw, location string, telugu bool) Snapshot {
	d := p.layout.Defaults
	snap := Snapshot{
		Location:        location,
		Temperature:     d.Temperature,
		RainProbability: d.RainProbability,
		Humidity:        d.Humidity,
		WindSpeed:       d.WindSpeed,
		TimeOfDay:       d.TimeOfDay,
		WeatherEmoji:    d.WeatherEmoji,
		FarmingAdvice:   d.FarmingAdvice.Pick(telugu),
	}
	var forecast []DayForecast

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if field, rest, ok := p.matchField(line); ok {
			p.apply(&snap, field, rest)
			continue
		}
		if m := p.dayRe.FindStringSubmatch(line); m != nil {
			temp, err := strconv.Atoi(m[3])
			if err != nil {
				continue
			}
			forecast = append(forecast, DayForecast{
				Day:         m[1],
				Emoji:       normalizeEmoji(m[2]),
				Temperature: temp,
				Advice:      strings.TrimSpace(m[4]),
			})
		}
	}

	if len(forecast) < p.minDays() {
		snap.FiveDayForecast = p.cannedForecast(telugu)
		snap.CannedForecast = true
	} else {
		if n := len(p.layout.Forecast); len(forecast) > n {
			forecast = forecast[:n]
		}
		snap.FiveDayForecast = forecast
	}
	return snap
}

// Fallback is the snapshot served when the report could not be fetched.
func (p *Parser) Fallback(location string, telugu bool) Snapshot {
	snap := p.Parse("", location, telugu)
	snap.FarmingAdvice = p.layout.FailureAdvice.Pick(telugu)
	snap.Fallback = true
	return snap
}

func (p *Parser) matchField(line string) (string, string, bool) {
	for _, f := range p.layout.Fields {
		for _, label := range f.Labels {
			if idx := strings.Index(line, label); idx >= 0 {
				rest := strings.Trim(line[idx+len(label):], " *\t")
				return f.Field, rest, true
			}
		}
	}
	return "", "", false
}

func (p *Parser) apply(snap *Snapshot, field, rest string) {
	switch field {
	case FieldTemperature:
		if v, ok := firstInt(tempRe, rest); ok {
			snap.Temperature = v
		}
	case FieldRainProbability:
		if v, ok := percent(rest); ok {
			snap.RainProbability = v
		}
	case FieldHumidity:
		if v, ok := percent(rest); ok {
			snap.Humidity = v
		}
	case FieldWindSpeed:
		if v, ok := firstInt(numberRe, rest); ok {
			snap.WindSpeed = v
		}
	case FieldTimeOfDay:
		if rest != "" {
			snap.TimeOfDay = rest
		}
	case FieldWeatherEmoji:
		if e := emojiRe.FindString(rest); e != "" {
			snap.WeatherEmoji = normalizeEmoji(e)
		}
	case FieldFarmingAdvice:
		if rest != "" {
			snap.FarmingAdvice = rest
		}
	}
}

func (p *Parser) minDays() int {
	if p.layout.MinForecastDays > 0 {
		return p.layout.MinForecastDays
	}
	return len(p.layout.Forecast)
}

func (p *Parser) cannedForecast(telugu bool) []DayForecast {
	out := make([]DayForecast, 0, len(p.layout.Forecast))
	for _, c := range p.layout.Forecast {
		out = append(out, DayForecast{
			Day:         c.Day.Pick(telugu),
			Emoji:       c.Emoji,
			Temperature: c.Temperature,
			Advice:      c.Advice.Pick(telugu),
		})
	}
	return out
}

// percent reads a percentage; values outside 0..100 count as missing.
func percent(s string) (int, bool) {
	v, ok := firstInt(percentRe, s)
	if !ok || v > 100 {
		return 0, false
	}
	return v, true
}

func firstInt(re *regexp.Regexp, s string) (int, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return v, true
}

// normalizeEmoji drops variation selectors except on the sun, which the
// canned values always carry in its emoji presentation.
func normalizeEmoji(e string) string {
	base := strings.TrimSuffix(e, "\uFE0F")
	if base == "☀" {
		return "☀️"
	}
	return base
}
