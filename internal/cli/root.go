package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/spf13/cobra"

	"github.com/shouni/gemini-photo-reasoning/internal/config"
	"github.com/shouni/gemini-photo-reasoning/internal/logging"
	"github.com/shouni/gemini-photo-reasoning/pkg/domain"
	"github.com/shouni/gemini-photo-reasoning/pkg/generator"
	"github.com/shouni/gemini-photo-reasoning/pkg/imgutil"
	"github.com/shouni/gemini-photo-reasoning/pkg/loader"
)

// ErrNoImages は指定されたソースから画像を1枚も読み込めなかった場合のエラーです。
var ErrNoImages = errors.New("no image could be loaded")

// ModelClientFactory は設定から ModelClient を作成する関数です。
type ModelClientFactory func(ctx context.Context, cfg *config.Config) (generator.ModelClient, error)

// Options は CLI の依存関係です。nil のフィールドは既定の実装が使われます。
type Options struct {
	Out            io.Writer
	ErrOut         io.Writer
	NewModelClient ModelClientFactory
	NewLoader      func(cfg *config.Config) *loader.Loader
}

// DefaultModelClient は genai のストリーミングクライアントを作成します。
func DefaultModelClient(ctx context.Context, cfg *config.Config) (generator.ModelClient, error) {
	return generator.NewGeminiClient(ctx, generator.GeminiConfig{
		APIKey: cfg.APIKey,
		Model:  cfg.Model,
	})
}

// DefaultLoader は http(s) の取得に go-http-kit を使う Loader を作成します。
func DefaultLoader(cfg *config.Config) *loader.Loader {
	return loader.New(loader.WithHTTPClient(httpkit.New(cfg.HTTPTimeout)))
}

// flagKeys は CLI フラグ名と設定キーの対応なのだ。
var flagKeys = map[string]string{
	"model":         "model",
	"max-dimension": "max_dimension",
	"concurrency":   "concurrency",
	"log-level":     "log_level",
	"log-file":      "log_file",
}

// NewRootCommand は photo-reasoning のルートコマンドを組み立てます。
func NewRootCommand(opts Options) *cobra.Command {
	if opts.NewModelClient == nil {
		opts.NewModelClient = DefaultModelClient
	}
	if opts.NewLoader == nil {
		opts.NewLoader = DefaultLoader
	}

	v := config.NewViper()
	var configFile string

	root := &cobra.Command{
		Use:           "photo-reasoning",
		Short:         "Stream a playful Gemini reading of your photos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	if opts.Out != nil {
		root.SetOut(opts.Out)
	}
	if opts.ErrOut != nil {
		root.SetErr(opts.ErrOut)
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	flags.String("model", "", "Gemini model name")
	flags.Int("max-dimension", 0, "maximum pixel size of the longer image side")
	flags.Int("concurrency", 0, "number of images prepared in parallel")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "additional JSON log file")
	for name, key := range flagKeys {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}

	kindCommands := []struct {
		use   string
		kind  domain.PromptKind
		short string
	}{
		{"reason", domain.PromptReason, "Write a fictional personality reading"},
		{"name", domain.PromptName, "Invent a humorous nickname"},
		{"past-life", domain.PromptPastLife, "Invent an exaggerated past-life story"},
	}
	for _, kc := range kindCommands {
		kind := kc.kind
		root.AddCommand(&cobra.Command{
			Use:   kc.use + " <image>...",
			Short: kc.short,
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load(v, configFile)
				if err != nil {
					return err
				}
				return run(cmd, opts, cfg, kind, args)
			},
		})
	}

	root.AddCommand(&cobra.Command{
		Use:   "prompt-kinds",
		Short: "List the available prompt kinds",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, kind := range domain.PromptKinds() {
				fmt.Fprintln(cmd.OutOrStdout(), kind)
			}
		},
	})

	return root
}

func run(cmd *cobra.Command, opts Options, cfg *config.Config, kind domain.PromptKind, sources []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	_, cleanup, err := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("ロガーの初期化に失敗しました: %w", err)
	}
	defer cleanup()

	client, err := opts.NewModelClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("モデルクライアントの作成に失敗しました: %w", err)
	}

	images := opts.NewLoader(cfg).LoadAll(ctx, sources)
	if len(images) == 0 {
		return ErrNoImages
	}

	coordinator := generator.NewCoordinator(client,
		generator.WithPreparer(imgutil.NewPreparator(cfg.MaxDimension, cfg.JPEGQuality)),
		generator.WithPrepareConcurrency(cfg.Concurrency),
	)

	session := generator.NewSession()
	printer := newStreamPrinter(cmd.OutOrStdout())
	unsubscribe := session.Subscribe(printer.OnChange)
	defer unsubscribe()

	slog.InfoContext(ctx, "写真の解釈を開始します", "kind", kind, "images", len(images), "model", cfg.Model)
	if err := coordinator.GenerateKind(ctx, session, kind, images); err != nil {
		return err
	}
	printer.Finish()

	if msg := session.Snapshot().ErrorMessage; msg != nil {
		return fmt.Errorf("生成に失敗しました: %s", *msg)
	}
	return nil
}
