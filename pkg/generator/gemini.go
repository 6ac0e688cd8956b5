package generator

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"google.golang.org/genai"

	"github.com/shouni/gemini-photo-reasoning/pkg/domain"
)

// DefaultModel は写真の解釈に使う既定のモデル名です。
const DefaultModel = "gemini-2.5-flash"

// ContentStreamer は genai のストリーミング生成 API を抽象化するインターフェースです。
// *genai.Models が実装しています。
type ContentStreamer interface {
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

// GeminiConfig は GeminiClient の構築に必要な設定です。
type GeminiConfig struct {
	APIKey       string
	Model        string
	SystemPrompt string
	Temperature  *float32
}

// GeminiClient は genai のストリーミング API を使って ModelClient を実装します。
type GeminiClient struct {
	streamer ContentStreamer
	model    string
	config   *genai.GenerateContentConfig
}

// NewGeminiClient は API キーを使って Gemini API 向けの GeminiClient を作成します。
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("APIKey is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genaiクライアントの作成に失敗しました: %w", err)
	}
	return NewGeminiClientWithStreamer(client.Models, cfg)
}

// NewGeminiClientWithStreamer は既存の ContentStreamer を使って GeminiClient を作成します。
func NewGeminiClientWithStreamer(streamer ContentStreamer, cfg GeminiConfig) (*GeminiClient, error) {
	if streamer == nil {
		return nil, errors.New("streamer (ContentStreamer) is required")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	var genCfg *genai.GenerateContentConfig
	if cfg.SystemPrompt != "" || cfg.Temperature != nil {
		genCfg = &genai.GenerateContentConfig{Temperature: cfg.Temperature}
		if cfg.SystemPrompt != "" {
			genCfg.SystemInstruction = genai.NewContentFromText(cfg.SystemPrompt, genai.RoleUser)
		}
	}

	return &GeminiClient{
		streamer: streamer,
		model:    model,
		config:   genCfg,
	}, nil
}

// Model は使用するモデル名を返します。
func (g *GeminiClient) Model() string {
	return g.model
}

// GenerateStream はプロンプトと画像を1つのユーザー Content として送信し、
// チャンクごとに Fragment を返します。
func (g *GeminiClient) GenerateStream(ctx context.Context, prompt string, images []domain.PreparedImage) iter.Seq2[domain.Fragment, error] {
	return func(yield func(domain.Fragment, error) bool) {
		contents := []*genai.Content{
			genai.NewContentFromParts(buildParts(prompt, images), genai.RoleUser),
		}
		slog.DebugContext(ctx, "Geminiにストリーミング生成をリクエストします", "model", g.model, "images", len(images))

		for resp, err := range g.streamer.GenerateContentStream(ctx, g.model, contents, g.config) {
			if err != nil {
				yield(domain.Fragment{}, fmt.Errorf("Geminiストリーミング生成エラー: %w", err))
				return
			}
			fragment, err := fragmentFromResponse(resp)
			if err != nil {
				yield(domain.Fragment{}, err)
				return
			}
			if !yield(fragment, nil) {
				return
			}
		}
	}
}
