package advisor

import "github.com/yanqian/jeevamithra/internal/domain/i18n"

// Advice is a free-text answer from one of the advisor forms.
type Advice struct {
	Topic    string `json:"topic"`
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
	Telugu   bool   `json:"telugu"`
}

// WorkoutRequest carries the fitness form as key/value pairs (age, sex,
// weight, goal and so on).
type WorkoutRequest struct {
	Data   map[string]string `json:"data" validate:"required,min=1,dive,keys,required,max=40,endkeys,max=200"`
	Telugu bool              `json:"telugu"`
}

// NutritionRequest names one food item and its quantity.
type NutritionRequest struct {
	FoodItem string `json:"foodItem" validate:"required,max=120"`
	Quantity string `json:"quantity" validate:"required,max=60"`
	Telugu   bool   `json:"telugu"`
}

// ScholarshipRequest describes the student. Community is optional.
type ScholarshipRequest struct {
	Grade     string `json:"grade" validate:"required,max=40"`
	Community string `json:"community" validate:"max=60"`
	Income    string `json:"income" validate:"required,max=60"`
	State     string `json:"state" validate:"required,max=60"`
	Telugu    bool   `json:"telugu"`
}

// Config controls generation.
type Config struct {
	Temperature float32
}

// Topics.
const (
	TopicWorkout      = "workout"
	TopicNutrition    = "nutrition"
	TopicScholarships = "scholarships"
	TopicCareer       = "career"
	TopicProductivity = "productivity"
)

var failures = map[string]i18n.Text{
	TopicWorkout:      {English: "Failed to generate workout plan", Telugu: "వర్కౌట్ ప్లాన్ రూపొందించడంలో విఫలమైంది"},
	TopicNutrition:    {English: "Failed to analyze nutrition", Telugu: "పోషకాహార విశ్లేషణ విఫలమైంది"},
	TopicScholarships: {English: "Failed to find scholarships", Telugu: "స్కాలర్‌షిప్‌లు కనుగొనడంలో విఫలమైంది"},
	TopicCareer:       {English: "Failed to get career guidance", Telugu: "కెరీర్ మార్గదర్శకత్వం పొందడంలో విఫలమైంది"},
	TopicProductivity: {English: "Failed to get productivity tips", Telugu: "ఉత్పాదకత చిట్కాలు పొందడంలో విఫలమైంది"},
}

// FailureMessage is the canned text served when a topic's generation fails.
func FailureMessage(topic string, telugu bool) string {
	return failures[topic].Pick(telugu)
}
