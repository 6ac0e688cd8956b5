package generator

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/shouni/go-gemini-client/pkg/gemini"

	"github.com/shouni/gemini-photo-reasoning/pkg/domain"
)

// UnaryClient は非ストリーミングの gemini.GenerativeModel を ModelClient として扱うアダプターです。
// 応答全体を1つの Fragment として返します。
// サーバーストリーミングに対応していないプロキシ経由で使う場合向けなのだ。
type UnaryClient struct {
	aiClient     gemini.GenerativeModel
	model        string
	systemPrompt string
}

// NewUnaryClient は依存関係を注入して UnaryClient を作成します。
func NewUnaryClient(aiClient gemini.GenerativeModel, model, systemPrompt string) (*UnaryClient, error) {
	if aiClient == nil {
		return nil, errors.New("aiClient (gemini.GenerativeModel) is required")
	}
	if model == "" {
		model = DefaultModel
	}
	return &UnaryClient{
		aiClient:     aiClient,
		model:        model,
		systemPrompt: systemPrompt,
	}, nil
}

// GenerateStream は GenerateWithParts を1回呼び出し、結果を1要素のシーケンスとして返します。
func (u *UnaryClient) GenerateStream(ctx context.Context, prompt string, images []domain.PreparedImage) iter.Seq2[domain.Fragment, error] {
	return func(yield func(domain.Fragment, error) bool) {
		opts := gemini.GenerateOptions{SystemPrompt: u.systemPrompt}

		resp, err := u.aiClient.GenerateWithParts(ctx, u.model, buildParts(prompt, images), opts)
		if err != nil {
			yield(domain.Fragment{}, fmt.Errorf("Gemini生成エラー: %w", err))
			return
		}
		if resp == nil || resp.RawResponse == nil {
			yield(domain.Fragment{}, errors.New("Geminiからの有効な応答がありませんでした"))
			return
		}

		fragment, err := fragmentFromResponse(resp.RawResponse)
		yield(fragment, err)
	}
}
