package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yanqian/jeevamithra/internal/domain/healthtopic"
	"github.com/yanqian/jeevamithra/internal/domain/news"
	"github.com/yanqian/jeevamithra/internal/domain/prompt"
	"github.com/yanqian/jeevamithra/internal/domain/quiz"
	"github.com/yanqian/jeevamithra/internal/domain/weather"
	"github.com/yanqian/jeevamithra/pkg/logger"
)

type cli struct {
	in     io.Reader
	out    io.Writer
	logger *slog.Logger
	now    func() time.Time

	logLevel string
	telugu   bool
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	c := &cli{in: in, out: out, now: time.Now}
	root := &cobra.Command{
		Use:           "jeevactl",
		Short:         "Classify, build prompts and parse model replies offline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			c.logger = logger.NewWithWriter(errOut, c.logLevel).With("component", "jeevactl")
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "minimum log level written to stderr")
	root.PersistentFlags().BoolVar(&c.telugu, "telugu", false, "use the Telugu variants")

	root.AddCommand(c.classifyCmd(), c.promptCmd(), c.parseCmd())
	return root
}

func (c *cli) classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <text>",
		Short: "Report whether text is a health question and how urgent it is",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			classifier := healthtopic.Default()
			result := classifier.ClassifyFor(text, c.telugu)
			c.logger.Debug("classified", "outcome", result.Outcome())
			out := struct {
				healthtopic.Result
				EmergencyWarning string                 `json:"emergencyWarning,omitempty"`
				FirstAid         *healthtopic.GuideView `json:"firstAid,omitempty"`
			}{Result: result}
			if result.IsEmergency {
				out.EmergencyWarning = classifier.EmergencyWarning(c.telugu)
			}
			if guide, ok := classifier.FirstAidGuide(result.FirstAidKey, c.telugu); ok {
				out.FirstAid = &guide
			}
			return c.writeJSON(out)
		},
	}
}

func (c *cli) promptCmd() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "prompt <text>",
		Short: "Print the instruction sent to the model for a chat mode",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			m, known := prompt.ParseMode(mode)
			if !known {
				c.logger.Warn("unknown mode, using general", "mode", mode)
			}
			_, err := fmt.Fprintln(c.out, prompt.Default().Build(m, strings.Join(args, " "), c.telugu))
			return err
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(prompt.ModeGeneral), "chat mode: general, farming, health, education, news or schemes")
	return cmd
}

func (c *cli) parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse a saved model reply read from stdin",
	}

	var location string
	weatherCmd := &cobra.Command{
		Use:   "weather",
		Short: "Parse a weather reply into a snapshot",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			raw, err := c.readInput()
			if err != nil {
				return err
			}
			return c.writeJSON(weather.Parse(raw, location, c.telugu))
		},
	}
	weatherCmd.Flags().StringVar(&location, "location", "Hyderabad, India", "location reported in the snapshot")

	newsCmd := &cobra.Command{
		Use:   "news",
		Short: "Parse a news reply into a headline item",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			raw, err := c.readInput()
			if err != nil {
				return err
			}
			return c.writeJSON(news.Parse(raw, c.now()))
		},
	}

	quizCmd := &cobra.Command{
		Use:   "quiz",
		Short: "Parse a quiz reply into questions",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			raw, err := c.readInput()
			if err != nil {
				return err
			}
			questions := quiz.Parse(raw)
			if len(questions) == 0 {
				return errors.New("no questions found in input")
			}
			return c.writeJSON(questions)
		},
	}

	cmd.AddCommand(weatherCmd, newsCmd, quizCmd)
	return cmd
}

func (c *cli) readInput() (string, error) {
	data, err := io.ReadAll(c.in)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", errors.New("input is empty")
	}
	c.logger.Debug("read input", "bytes", len(data))
	return string(data), nil
}

func (c *cli) writeJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
