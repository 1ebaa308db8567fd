package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	cases := []struct {
		raw   string
		want  Mode
		known bool
	}{
		{"health", ModeHealth, true},
		{" Farming ", ModeFarming, true},
		{"schemes", ModeSchemes, true},
		{"", ModeGeneral, false},
		{"astrology", ModeGeneral, false},
	}
	for _, tc := range cases {
		got, ok := ParseMode(tc.raw)
		require.Equal(t, tc.want, got, tc.raw)
		require.Equal(t, tc.known, ok, tc.raw)
	}
}

func TestBuildAppendsUserText(t *testing.T) {
	lib := Default()
	for _, mode := range Modes {
		for _, telugu := range []bool{false, true} {
			out := lib.Build(mode, "how do I grow paddy?", telugu)
			require.True(t, strings.HasSuffix(out, " how do I grow paddy?"), "%s/%v", mode, telugu)
			require.True(t, strings.HasPrefix(out, lib.Preamble(mode, telugu)))
		}
	}
}

func TestBuildGeneralTemplates(t *testing.T) {
	lib := Default()
	require.Equal(t, "Please respond in English. User message: hi", lib.Build(ModeGeneral, "hi", false))
	require.Equal(t, "దయచేసి తెలుగు భాషలో సమాధానం ఇవ్వండి. వినియోగదారు సందేశం: hi", lib.Build(ModeGeneral, "hi", true))
}

func TestBuildModesDiffer(t *testing.T) {
	lib := Default()
	seen := map[string]Mode{}
	for _, mode := range Modes {
		p := lib.Preamble(mode, false)
		prev, dup := seen[p]
		require.False(t, dup, "%s shares a preamble with %s", mode, prev)
		seen[p] = mode
	}
	require.Contains(t, lib.Preamble(ModeHealth, false), "health care assistant")
	require.Contains(t, lib.Preamble(ModeFarming, true), "రైతుల")
}

func TestUnknownModeFallsBackToGeneral(t *testing.T) {
	lib := Default()
	require.Equal(t, lib.Build(ModeGeneral, "x", true), lib.Build(Mode("tarot"), "x", true))
}

func TestImageOnly(t *testing.T) {
	lib := Default()
	require.Equal(t, "Please analyze this image in detail and describe what you see.", lib.ImageOnly(false))
	require.Contains(t, lib.ImageOnly(true), "చిత్రాన్ని")
}

func TestTaskPrompts(t *testing.T) {
	lib := Default()

	weather := lib.Weather("Warangal, India", false)
	require.Contains(t, weather, "Location: Warangal, India")
	require.Contains(t, weather, "Farming Advice:")
	require.Contains(t, lib.Weather("Warangal", true), "స్థానం: Warangal")

	require.Contains(t, lib.News(false), "Headline:")
	require.Contains(t, lib.News(true), "హెడ్‌లైన్:")

	quiz := lib.Quiz(QuizInput{Grade: "8", ExamType: "SSC", Difficulty: "easy"}, false)
	require.Contains(t, quiz, "Grade/Class: 8")
	require.Contains(t, quiz, "Create 5 MCQs")
	require.Contains(t, quiz, "Answer: <letter>")

	workout := lib.Workout(map[string]string{"weight": "70kg", "age": "30"}, false)
	require.Contains(t, workout, "User data: age: 30, weight: 70kg")

	nutrition := lib.Nutrition("Rice", "1 cup", true)
	require.Contains(t, nutrition, "ఆహార పదార్థం: Rice")
	require.Contains(t, nutrition, "పరిమాణం: 1 cup")

	require.Contains(t, lib.Scholarships(ScholarshipInput{Grade: "10"}, false), "Caste/Community: Not specified")
	require.Contains(t, lib.Scholarships(ScholarshipInput{Community: "BC"}, true), "కుల/కమ్యూనిటీ: BC")

	require.Contains(t, lib.Career(false), "after 10th class")
	require.Contains(t, lib.Productivity(false), "Pomodoro")
}

func TestRenderUnknownTask(t *testing.T) {
	_, err := Default().Render(Task("horoscope"), false, nil)
	require.Error(t, err)
}

func TestLoadRejectsIncompleteDocuments(t *testing.T) {
	_, err := Load(strings.NewReader("modes:\n  farming: {en: x}\n"))
	require.ErrorContains(t, err, "general")

	_, err = Load(strings.NewReader("modes:\n  general: {en: x}\ntasks:\n  weather: {en: y}\n"))
	require.ErrorContains(t, err, "missing")

	_, err = Load(strings.NewReader("modes: {general: {en: x}}\nextra: 1\n"))
	require.Error(t, err)
}
