package quiz

// Question is one multiple-choice question. AnswerMarked reports whether
// CorrectOptionIndex came from the model's answer line; unmarked questions
// keep index 0 and should not be scored as authoritative.
type Question struct {
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correctOptionIndex"`
	AnswerMarked       bool     `json:"answerMarked"`
	UserAnswer         *int     `json:"userAnswer,omitempty"`
}

// Quiz sources.
const (
	SourceModel  = "model"
	SourceSample = "sample"
)

// Quiz is a generated question set.
type Quiz struct {
	Questions []Question `json:"questions"`
	Source    string     `json:"source"`
	Telugu    bool       `json:"telugu"`
}

// Request parameterises generation.
type Request struct {
	Grade      string `json:"grade" validate:"max=40"`
	ExamType   string `json:"examType" validate:"max=80"`
	Difficulty string `json:"difficulty" validate:"max=40"`
	Count      int    `json:"count" validate:"gte=0,lte=20"`
	Telugu     bool   `json:"telugu"`
}

// Result is a scored attempt.
type Result struct {
	Score    int  `json:"score"`
	Total    int  `json:"total"`
	PassMark int  `json:"passMark"`
	Passed   bool `json:"passed"`
	Unscored int  `json:"unscored"`
}

// Config controls generation.
type Config struct {
	Temperature float32
}
