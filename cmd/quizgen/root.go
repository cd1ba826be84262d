package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"tubequiz/internal/app"
	"tubequiz/internal/config"
	"tubequiz/internal/domain"
	"tubequiz/internal/logger"
)

type runOptions struct {
	whisperModel string
	llmModel     string
	workdir      string
	compact      bool
}

func newRootCommand() *cobra.Command {
	var opts runOptions

	rootCmd := &cobra.Command{
		Use:           "quizgen <youtube-url>",
		Short:         "Generate a 10-question quiz from a YouTube video",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			opts.apply(cfg)

			if err := logger.Initialize(cfg.Logger); err != nil {
				return err
			}
			defer logger.Sync()
			log := logger.Get()
			if cfg.ConfigFile != "" {
				log.Debug("Using config file", zap.String("path", cfg.ConfigFile))
			}

			pipeline, err := app.NewPipeline(cfg, log, nil)
			if err != nil {
				return err
			}

			var payload *domain.QuizPayload
			if opts.workdir != "" {
				if err := os.MkdirAll(opts.workdir, 0o755); err != nil {
					return fmt.Errorf("create workdir: %w", err)
				}
				payload, err = pipeline.RunInDir(cmd.Context(), args[0], opts.workdir)
			} else {
				payload, err = pipeline.Run(cmd.Context(), args[0])
			}
			if err != nil {
				log.Debug("Quiz generation failed", zap.Error(err))
				return err
			}
			return writePayload(cmd, payload, opts.compact)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&opts.whisperModel, "whisper-model", "", "Whisper model name (overrides whisper.model)")
	flags.StringVar(&opts.llmModel, "model", "", "Generative model name (overrides llm.model)")
	flags.StringVar(&opts.workdir, "workdir", "", "Keep intermediate audio files in this directory")
	flags.BoolVar(&opts.compact, "compact", false, "Print JSON on a single line")

	return rootCmd
}

func (o runOptions) apply(cfg *config.Config) {
	if o.whisperModel != "" {
		cfg.Whisper.Model = o.whisperModel
	}
	if o.llmModel != "" {
		cfg.LLM.Model = o.llmModel
	}
}

func writePayload(cmd *cobra.Command, payload *domain.QuizPayload, compact bool) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(payload)
}
