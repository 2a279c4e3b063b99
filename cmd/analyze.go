package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spigell/resume-scorer/internal/analysis"
	"github.com/spigell/resume-scorer/internal/extract"
	"github.com/spigell/resume-scorer/internal/knowledge"
	"github.com/spigell/resume-scorer/internal/logger"
	"github.com/spigell/resume-scorer/internal/tracing"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptNoRole = "No specific role"
	stdinName    = "-"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a resume file and print the report as JSON",
	Run: func(cmd *cobra.Command, _ []string) {
		analyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("resume", "r", "", "resume file (.txt, .pdf, .docx) or - for stdin")
	analyzeCmd.Flags().String("role", "", "target job role, e.g. \"software engineer\"")
	analyzeCmd.Flags().String("description", "", "job description text")
	analyzeCmd.Flags().String("description-file", "", "file with the job description")
	analyzeCmd.Flags().Bool("pick-role", false, "choose the job role interactively")
	analyzeCmd.Flags().Bool("pretty", false, "indent the JSON report")

	analyzeCmd.MarkFlagRequired("resume")
}

func analyze(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	shutdown, err := tracing.Setup(ctx, config.Tracing, logger)
	if err != nil {
		logger.Fatal("setting up tracing", zap.Error(err))
	}
	defer shutdown(context.Background())

	kb, err := knowledge.Load()
	if err != nil {
		logger.Fatal("loading keyword knowledgebase", zap.Error(err))
	}

	flags := cmd.Flags()
	resumePath, _ := flags.GetString("resume")

	text, err := readResume(resumePath, cmd.InOrStdin())
	if err != nil {
		logger.Fatal("reading resume", zap.String("resume", resumePath), zap.Error(err))
	}

	role, _ := flags.GetString("role")
	if pick, _ := flags.GetBool("pick-role"); pick {
		role, err = pickRole(kb.Roles())
		if err != nil {
			logger.Fatal("choosing a role", zap.Error(err))
		}
	}

	description, _ := flags.GetString("description")
	if file, _ := flags.GetString("description-file"); file != "" {
		description, err = readText(file)
		if err != nil {
			logger.Fatal("reading job description", zap.String("file", file), zap.Error(err))
		}
	}

	p, err := newPipeline(ctx, config, kb, nil, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}

	report, err := p.Run(ctx, analysis.Request{
		ResumeText:     text,
		JobRole:        role,
		JobDescription: description,
	})
	if err != nil {
		logger.Fatal("analyzing resume", zap.Error(err))
	}

	pretty, _ := flags.GetBool("pretty")
	if err := printReport(cmd.OutOrStdout(), report, pretty); err != nil {
		logger.Fatal("printing report", zap.Error(err))
	}
}

// readResume extracts the resume text from path, or from stdin when path is "-".
func readResume(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		name = path
		err  error
	)

	if path == stdinName {
		name = "stdin.txt"
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}

	text, err := extract.Text(data, filepath.Base(name))
	if errors.Is(err, extract.ErrNoText) {
		// An empty resume is scored by the pipeline, which reports it.
		return "", nil
	}
	return text, err
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func pickRole(roles []string) (string, error) {
	items := append([]string{PromptNoRole}, roles...)

	prompt := promptui.Select{
		Label: "Choose a job role",
		Items: items,
		Size:  10,
		Searcher: func(input string, index int) bool {
			return strings.Contains(items[index], strings.ToLower(strings.TrimSpace(input)))
		},
	}

	_, role, err := prompt.Run()
	if err != nil {
		return "", err
	}
	if role == PromptNoRole {
		return "", nil
	}
	return role, nil
}

func printReport(w io.Writer, report *analysis.Report, pretty bool) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(report, "", "  ")
	} else {
		data, err = json.Marshal(report)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
