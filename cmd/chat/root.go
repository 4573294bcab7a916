package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/candidate-assistant/internal/config"
	"alfredoptarigan/candidate-assistant/internal/logger"
	"alfredoptarigan/candidate-assistant/internal/models"
	"alfredoptarigan/candidate-assistant/internal/repositories"
	"alfredoptarigan/candidate-assistant/internal/services"
)

const app = "candidate-chat"

var (
	documentPaths = make(map[models.DocumentKind]*string)

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "Chat with an assistant about a candidate's CV and supporting documents",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd)
		},
	}
)

func init() {
	for _, kind := range models.DocumentKinds {
		flag := strings.ReplaceAll(string(kind), "_", "-")
		documentPaths[kind] = rootCmd.Flags().String(flag, "", fmt.Sprintf("path to the %s (pdf, docx or txt)", kind.Label()))
	}
	_ = rootCmd.MarkFlagRequired("cv")

	rootCmd.Flags().BoolP("debug", "d", false, "verbose/debug output")
}

func run(cmd *cobra.Command) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	debug, _ := cmd.Flags().GetBool("debug")
	zl, err := logger.New(false, debug || cfg.Log.Debug)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer zl.Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	gateway, err := services.NewCompletionGateway(ctx, cfg, zl)
	if err != nil {
		return err
	}

	index, err := services.NewPassageIndex(ctx, cfg, zl)
	if err != nil {
		return err
	}

	id := uuid.New()
	session := services.NewSession(id, repositories.NewMemoryConversationStore(id), services.SessionDeps{
		Extractor: services.NewDocumentExtractor(),
		Prompts:   services.NewPromptBuilder(),
		Gateway:   gateway,
		Index:     index,
		Logger:    zl,
	})
	defer func() {
		if err := session.End(context.Background()); err != nil {
			zl.Warn("⚠️ Failed to clean up session", zap.Error(err))
		}
	}()

	if err := loadDocuments(ctx, session, cmd.ErrOrStderr()); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	prompt := promptui.Prompt{Label: "Ask about the candidate"}

	for {
		input, err := prompt.Run()
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return nil
		}
		if err != nil {
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == "exit" {
			return nil
		}

		_, err = session.Ask(ctx, input, func(chunk string) {
			fmt.Fprint(out, chunk)
		})
		fmt.Fprintln(out)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "❌ %v\n", err)
		}
	}
}

func loadDocuments(ctx context.Context, session *services.Session, errOut io.Writer) error {
	for _, kind := range models.DocumentKinds {
		path := *documentPaths[kind]
		if path == "" {
			continue
		}

		if err := loadDocument(ctx, session, kind, path); err != nil {
			// The CV is mandatory; other documents fall back to the placeholder.
			if kind == models.KindCV {
				return err
			}
			fmt.Fprintf(errOut, "⚠️  %v\n", err)
		}
	}

	if session.State() == models.StateAwaitingCV {
		return services.ErrCVRequired
	}

	return nil
}

func loadDocument(ctx context.Context, session *services.Session, kind models.DocumentKind, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", kind.Label(), err)
	}

	_, err = session.Upload(ctx, kind, filepath.Base(path), data)
	return err
}
