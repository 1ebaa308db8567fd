package weather

// Snapshot is one complete weather report. Every field is populated even
// when the model output was unusable.
type Snapshot struct {
	Location        string        `json:"location"`
	Temperature     int           `json:"temperature"`
	RainProbability int           `json:"rainProbability"`
	Humidity        int           `json:"humidity"`
	WindSpeed       int           `json:"windSpeed"`
	TimeOfDay       string        `json:"timeOfDay"`
	WeatherEmoji    string        `json:"weatherEmoji"`
	FarmingAdvice   string        `json:"farmingAdvice"`
	FiveDayForecast []DayForecast `json:"fiveDayForecast"`
	// CannedForecast is set when FiveDayForecast is the built-in one.
	CannedForecast bool `json:"cannedForecast"`
	// Fallback is set when the whole snapshot is the failure default.
	Fallback bool `json:"fallback"`
}

// DayForecast is one weekday row.
type DayForecast struct {
	Day         string `json:"day"`
	Emoji       string `json:"emoji"`
	Temperature int    `json:"temperature"`
	Advice      string `json:"advice"`
}

// Request asks for a forecast. An empty Location uses the configured default.
type Request struct {
	Location string `json:"location"`
	Telugu   bool   `json:"telugu"`
}

// Config controls the weather service.
type Config struct {
	DefaultLocation string
	Temperature     float32
}
