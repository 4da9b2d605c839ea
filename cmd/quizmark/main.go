package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/quizmark/internal/compiler"
	appI18n "github.com/pavelanni/quizmark/internal/i18n"
	"github.com/pavelanni/quizmark/internal/model"
	"github.com/pavelanni/quizmark/internal/review"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "quizmark",
		Short:        "Compile quiz markup into HTML forms and grade submissions",
		SilenceUsage: true,
	}
	root.AddCommand(compileCmd(), gradeCmd(), renderCmd())
	return root
}

func compileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile FILE",
		Short: "Compile a quiz markup file into a form",
		Args:  cobra.ExactArgs(1),
		RunE:  runCompile,
	}
	f := cmd.Flags()
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("variant", "json", "What to write (json, template, prompt, solution)")
	f.Uint64("seed", 0, "Seed for the prompt shuffle (0 = random)")
	f.StringP("lang", "l", "en", "Message language (en, ru)")
	addLogFlags(cmd)
	return cmd
}

func gradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Grade a submission against a compiled form",
		Args:  cobra.NoArgs,
		RunE:  runGrade,
	}
	f := cmd.Flags()
	f.String("form", "", "Compiled form JSON file (required)")
	f.String("answers", "", "Submission file: a JSON object or a URL-encoded form body (required)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("variant", "json", "What to write (json, filled, review)")
	f.Bool("match-case", false, "Compare text answers case-sensitively")
	f.Bool("latinize", false, "Ignore diacritics when comparing text answers")
	f.StringP("lang", "l", "en", "Message language (en, ru)")
	addLogFlags(cmd)

	_ = cmd.MarkFlagRequired("form")
	_ = cmd.MarkFlagRequired("answers")

	return cmd
}

func renderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render FORM",
		Short: "Print one HTML variant of a compiled form",
		Args:  cobra.ExactArgs(1),
		RunE:  runRender,
	}
	f := cmd.Flags()
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("variant", "prompt", "Variant to print (template, prompt, solution)")
	addLogFlags(cmd)
	return cmd
}

func addLogFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func setupLogging(cmd *cobra.Command, v *viper.Viper) {
	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(cmd.ErrOrStderr(), handlerOpts)
	default:
		logHandler = slog.NewTextHandler(cmd.ErrOrStderr(), handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("QUIZMARK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("quizmark")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/quizmark")
	v.AddConfigPath("/etc/quizmark")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runCompile(cmd *cobra.Command, args []string) error {
	v := viperForCmd(cmd)
	setupLogging(cmd, v)

	src, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	var opts []compiler.Option
	if seed := v.GetUint64("seed"); seed != 0 {
		opts = append(opts, compiler.WithRand(rand.New(rand.NewPCG(seed, seed))))
	}
	form, err := compiler.New(opts...).Compile(string(src))
	if err != nil {
		return fmt.Errorf("compile %s: %w", args[0], err)
	}

	var data []byte
	switch variant := strings.ToLower(v.GetString("variant")); variant {
	case "json":
		data, err = marshalJSON(form)
		if err != nil {
			return err
		}
	case "template", "prompt", "solution":
		data = []byte(formVariant(form, variant))
	default:
		return fmt.Errorf("unknown variant %q", variant)
	}
	if err := writeOutput(cmd, v.GetString("output"), data); err != nil {
		return err
	}

	ctx, err := localized(cmd, v.GetString("lang"))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), appI18n.CompileSummary(ctx, form.Signature, len(form.Controls)))
	return nil
}

func runGrade(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(cmd, v)

	form, err := loadForm(v.GetString("form"))
	if err != nil {
		return err
	}
	values, err := loadAnswers(v.GetString("answers"))
	if err != nil {
		return err
	}

	engine := review.New(review.Options{
		MatchCase: v.GetBool("match-case"),
		Latinize:  v.GetBool("latinize"),
	})
	result, err := engine.Grade(form, values)
	if err != nil {
		return fmt.Errorf("grade: %w", err)
	}

	var data []byte
	switch variant := strings.ToLower(v.GetString("variant")); variant {
	case "json":
		data, err = marshalJSON(result)
		if err != nil {
			return err
		}
	case "filled":
		data = []byte(result.HTML.Filled)
	case "review":
		data = []byte(result.HTML.Review)
	default:
		return fmt.Errorf("unknown variant %q", variant)
	}
	if err := writeOutput(cmd, v.GetString("output"), data); err != nil {
		return err
	}

	ctx, err := localized(cmd, v.GetString("lang"))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), appI18n.GradeSummary(ctx, len(form.Controls), len(result.ErrorIDs)))
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	v := viperForCmd(cmd)
	setupLogging(cmd, v)

	form, err := loadForm(args[0])
	if err != nil {
		return err
	}
	variant := strings.ToLower(v.GetString("variant"))
	switch variant {
	case "template", "prompt", "solution":
	default:
		return fmt.Errorf("unknown variant %q", variant)
	}
	return writeOutput(cmd, v.GetString("output"), []byte(formVariant(form, variant)))
}

func formVariant(form *model.Form, variant string) string {
	switch variant {
	case "template":
		return form.HTML.Template
	case "solution":
		return form.HTML.Solution
	}
	return form.HTML.Prompt
}

func loadForm(path string) (*model.Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form: %w", err)
	}
	var form model.Form
	if err := json.Unmarshal(data, &form); err != nil {
		return nil, fmt.Errorf("parse form %s: %w", path, err)
	}
	return &form, nil
}

// loadAnswers reads a submission given either as a JSON object or as a
// URL-encoded form body.
func loadAnswers(path string) (model.Values, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var values model.Values
		if err := json.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("parse answers %s: %w", path, err)
		}
		return values, nil
	}
	form, err := url.ParseQuery(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse answers %s: %w", path, err)
	}
	return model.ValuesFromForm(form), nil
}

func marshalJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}
	return data, nil
}

func writeOutput(cmd *cobra.Command, outPath string, data []byte) error {
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = cmd.OutOrStdout()
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if !bytes.HasSuffix(data, []byte("\n")) {
		_, _ = fmt.Fprintln(w)
	}
	return nil
}

func localized(cmd *cobra.Command, lang string) (context.Context, error) {
	if err := appI18n.Init(lang); err != nil {
		return nil, fmt.Errorf("init i18n: %w", err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return appI18n.WithLocalizer(ctx, appI18n.NewLocalizer(lang)), nil
}
