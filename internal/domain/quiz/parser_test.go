package quiz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSingleQuestion(t *testing.T) {
	qs := Parse("Q1. What is 2+2?\n(A) 3\n(B) 4\n(C) 5\n(D) 6")
	require.Len(t, qs, 1)
	require.Equal(t, "What is 2+2?", qs[0].Question)
	require.Equal(t, []string{"3", "4", "5", "6"}, qs[0].Options)
}

// Without an answer line the index stays 0 and is flagged as unmarked; it
// says nothing about which option is right.
func TestParseUnmarkedAnswerIsNotAuthoritative(t *testing.T) {
	qs := Parse("Q1. What is 2+2?\n(A) 3\n(B) 4\n(C) 5\n(D) 6")
	require.Equal(t, 0, qs[0].CorrectOptionIndex)
	require.False(t, qs[0].AnswerMarked)
}

func TestParseAnswerLines(t *testing.T) {
	raw := `Q1. Which crop is a kharif crop?
(A) Wheat
(B) Rice
(C) Mustard
(D) Barley
Answer: B

Q2. Which gas do plants absorb?
(A) Oxygen
(B) Nitrogen
(C) Carbon dioxide
(D) Helium
**Correct Answer:** (C)

Q3. 5 x 6 = ?
(A) 11
(B) 30
(C) 56
(D) 1
సమాధానం: D

Q4. Largest planet?
(A) Mars
(B) Earth
(C) Jupiter
(D) Venus
Answer: Because it is big`

	qs := Parse(raw)
	require.Len(t, qs, 4)

	require.Equal(t, 1, qs[0].CorrectOptionIndex)
	require.True(t, qs[0].AnswerMarked)
	require.Equal(t, 2, qs[1].CorrectOptionIndex)
	require.True(t, qs[1].AnswerMarked)
	require.Equal(t, 3, qs[2].CorrectOptionIndex)
	require.True(t, qs[2].AnswerMarked)
	require.False(t, qs[3].AnswerMarked)
	require.Equal(t, 0, qs[3].CorrectOptionIndex)
}

func TestParseIncompleteQuestionsDropped(t *testing.T) {
	raw := "Q1. Too few options\n(A) one\n(B) two\nQ2. Complete one\n(A) a\n(B) b\n(C) c\n(D) d\nQ3. Trailing\n(A) x"
	qs := Parse(raw)
	require.Len(t, qs, 1)
	require.Equal(t, "Complete one", qs[0].Question)
}

func TestParseCapsOptionsAtFour(t *testing.T) {
	qs := Parse("Q. Pick one\n(A) a\n(B) b\n(C) c\n(D) d\n(A) e")
	require.Len(t, qs, 1)
	require.Equal(t, "Pick one", qs[0].Question)
	require.Equal(t, []string{"a", "b", "c", "d"}, qs[0].Options)
}

func TestParseInlineOptions(t *testing.T) {
	qs := Parse("Q1 Which is a legume?\n(A) Gram (B) Maize (C) Jowar (D) Bajra\nAnswer: (A)")
	require.Len(t, qs, 1)
	require.Equal(t, "Which is a legume?", qs[0].Question)
	require.Equal(t, []string{"Gram", "Maize", "Jowar", "Bajra"}, qs[0].Options)
	require.True(t, qs[0].AnswerMarked)
	require.Equal(t, 0, qs[0].CorrectOptionIndex)
}

func TestParseKeepsNestedMarkersInOption(t *testing.T) {
	qs := Parse("Q1. Which are fertilisers?\n(A) Urea\n(B) DAP\n(C) Both (A) and (B)\n(D) Neither")
	require.Len(t, qs, 1)
	require.Equal(t, "Both (A) and (B)", qs[0].Options[2])
}

func TestParseMalformed(t *testing.T) {
	for _, raw := range []string{"", "I cannot create a quiz right now.", "(A) orphan\n(B) options"} {
		require.Empty(t, Parse(raw), raw)
	}
}

func TestParseIsRepeatable(t *testing.T) {
	raw := "Q1. What is 2+2?\n(A) 3\n(B) 4\n(C) 5\n(D) 6\nAnswer: B"
	require.Equal(t, Parse(raw), Parse(raw))
}

func TestSampleQuiz(t *testing.T) {
	en := SampleQuiz(false)
	require.Len(t, en, 2)
	require.Equal(t, "New Delhi", en[0].Options[en[0].CorrectOptionIndex])
	require.Equal(t, "Water", en[1].Options[en[1].CorrectOptionIndex])

	te := SampleQuiz(true)
	require.Equal(t, "న్యూఢిల్లీ", te[0].Options[te[0].CorrectOptionIndex])
	require.Equal(t, "నీరు", te[1].Options[te[1].CorrectOptionIndex])
}

func TestScore(t *testing.T) {
	answer := func(i int) *int { return &i }
	qs := SampleQuiz(false)

	none := Score(qs)
	require.Equal(t, Result{Score: 0, Total: 2, PassMark: 2, Passed: false}, none)

	qs[0].UserAnswer = answer(1)
	qs[1].UserAnswer = answer(0)
	require.Equal(t, Result{Score: 1, Total: 2, PassMark: 2, Passed: false}, Score(qs))

	qs[1].UserAnswer = answer(2)
	require.Equal(t, Result{Score: 2, Total: 2, PassMark: 2, Passed: true}, Score(qs))

	require.False(t, Score(nil).Passed)
}

// Index 0 on an unmarked question is not an answer key, so a user who picks
// option A there earns nothing.
func TestScoreSkipsUnmarkedQuestions(t *testing.T) {
	answer := func(i int) *int { return &i }

	unmarked := make([]Question, 5)
	for i := range unmarked {
		unmarked[i].UserAnswer = answer(0)
	}
	require.Equal(t, Result{Unscored: 5}, Score(unmarked))
	require.False(t, Score(unmarked).Passed)

	mixed := append(SampleQuiz(false), unmarked[:3]...)
	mixed[0].UserAnswer = answer(1)
	mixed[1].UserAnswer = answer(2)
	require.Equal(t, Result{Score: 2, Total: 2, PassMark: 2, Passed: true, Unscored: 3}, Score(mixed))
}
