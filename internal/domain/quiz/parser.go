package quiz

import (
	"regexp"
	"strings"
)

const optionsPerQuestion = 4

var (
	questionRe = regexp.MustCompile(`^Q\d*\.?\s*`)
	optionRe   = regexp.MustCompile(`^\([A-D]\)`)
	markerRe   = regexp.MustCompile(`\([A-D]\)\s*`)
	answerRe   = regexp.MustCompile(`(?i)^(?:correct\s+)?answer\s*[:\-]\s*\(?([A-D])\b`)
	answerTeRe = regexp.MustCompile(`^(?:సరైన\s+)?సమాధానం\s*[:\-]\s*\(?([A-Da-d])\b`)
)

// Parse reads questions written as "Q1. text" followed by "(A) option" lines
// and an optional "Answer: B" line. A question is kept only once it has at
// least four options; extra options are dropped.
func Parse(raw string) []Question {
	var (
		out     []Question
		current string
		options []string
		answer  = -1
	)
	commit := func() {
		if current == "" || len(options) < optionsPerQuestion {
			return
		}
		q := Question{Question: current, Options: append([]string(nil), options[:optionsPerQuestion]...)}
		if answer >= 0 && answer < optionsPerQuestion {
			q.CorrectOptionIndex = answer
			q.AnswerMarked = true
		}
		out = append(out, q)
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch {
		case questionRe.MatchString(line):
			commit()
			current = strings.TrimSpace(questionRe.ReplaceAllString(line, ""))
			options = options[:0]
			answer = -1
		case optionRe.MatchString(line):
			options = append(options, splitOptions(line)...)
		default:
			if idx, ok := answerIndex(line); ok {
				answer = idx
			}
		}
	}
	commit()
	return out
}

// splitOptions handles "(A) 3 (B) 4" as well as one option per line. Only
// markers in ascending letter order split, so "(C) Both (A) and (B)" stays
// one option.
func splitOptions(line string) []string {
	var cuts [][]int
	var last byte
	for _, loc := range markerRe.FindAllStringIndex(line, -1) {
		if letter := line[loc[0]+1]; letter > last {
			cuts = append(cuts, loc)
			last = letter
		}
	}
	out := make([]string, 0, len(cuts))
	for i, loc := range cuts {
		end := len(line)
		if i+1 < len(cuts) {
			end = cuts[i+1][0]
		}
		out = append(out, strings.TrimSpace(line[loc[1]:end]))
	}
	return out
}

func answerIndex(line string) (int, bool) {
	line = strings.TrimLeft(line, "*")
	line = strings.ReplaceAll(line, "*", "")
	for _, re := range []*regexp.Regexp{answerRe, answerTeRe} {
		if m := re.FindStringSubmatch(line); m != nil {
			return int(strings.ToUpper(m[1])[0] - 'A'), true
		}
	}
	return 0, false
}

// SampleQuiz is served when generation fails.
func SampleQuiz(telugu bool) []Question {
	if telugu {
		return []Question{
			{Question: "భారతదేశ రాజధాని ఏది?", Options: []string{"ముంబై", "న్యూఢిల్లీ", "కోల్‌కతా", "చెన్నై"}, CorrectOptionIndex: 1, AnswerMarked: true},
			{Question: "H2O అంటే ఏమిటి?", Options: []string{"హైడ్రోజన్", "ఆక్సిజన్", "నీరు", "కార్బన్"}, CorrectOptionIndex: 2, AnswerMarked: true},
		}
	}
	return []Question{
		{Question: "What is the capital of India?", Options: []string{"Mumbai", "New Delhi", "Kolkata", "Chennai"}, CorrectOptionIndex: 1, AnswerMarked: true},
		{Question: "What does H2O represent?", Options: []string{"Hydrogen", "Oxygen", "Water", "Carbon"}, CorrectOptionIndex: 2, AnswerMarked: true},
	}
}

// Score counts answered questions whose UserAnswer matches. Questions without
// a marked answer are left out of Total and reported as Unscored. The pass
// mark is 60% of Total, rounded up.
func Score(questions []Question) Result {
	var res Result
	for _, q := range questions {
		if !q.AnswerMarked {
			res.Unscored++
			continue
		}
		res.Total++
		if q.UserAnswer != nil && *q.UserAnswer == q.CorrectOptionIndex {
			res.Score++
		}
	}
	res.PassMark = (res.Total*6 + 9) / 10
	res.Passed = res.Total > 0 && res.Score >= res.PassMark
	return res
}
