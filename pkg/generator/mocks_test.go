package generator

import (
	"context"
	"iter"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/gemini-photo-reasoning/pkg/domain"
)

// --- Mocks ---

// step はモックストリームの1要素です。
type step struct {
	fragment domain.Fragment
	err      error
}

func textStep(s string) step { return step{fragment: domain.TextFragment(s)} }
func emptyStep() step { return step{fragment: domain.EmptyFragment()} }
func errStep(err error) step { return step{err: err} }

func textSteps(ss ...string) []step {
	steps := make([]step, 0, len(ss))
	for _, s := range ss {
		steps = append(steps, textStep(s))
	}
	return steps
}

// mockModelClient は ModelClient のテスト用モックなのだ。
type mockModelClient struct {
	steps []step
	// beforeStep は各要素を返す直前に呼ばれる（実行中の状態確認用）
	beforeStep func(i int)
	panicMsg   string

	calls     int
	gotPrompt string
	gotImages []domain.PreparedImage
	consumed  int
}

func (m *mockModelClient) GenerateStream(ctx context.Context, prompt string, images []domain.PreparedImage) iter.Seq2[domain.Fragment, error] {
	m.calls++
	m.gotPrompt = prompt
	m.gotImages = images
	return func(yield func(domain.Fragment, error) bool) {
		if m.panicMsg != "" {
			panic(m.panicMsg)
		}
		for i, s := range m.steps {
			if m.beforeStep != nil {
				m.beforeStep(i)
			}
			m.consumed++
			if !yield(s.fragment, s.err) {
				return
			}
			if s.err != nil {
				return
			}
		}
	}
}

// mockStreamer は ContentStreamer のテスト用モックなのだ。
type mockStreamer struct {
	responses []*genai.GenerateContentResponse
	err       error
	errAfter  int

	gotModel    string
	gotContents []*genai.Content
	gotConfig   *genai.GenerateContentConfig
}

func (m *mockStreamer) GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	m.gotModel = model
	m.gotContents = contents
	m.gotConfig = config
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for i, resp := range m.responses {
			if m.err != nil && i == m.errAfter {
				yield(nil, m.err)
				return
			}
			if !yield(resp, nil) {
				return
			}
		}
		if m.err != nil && m.errAfter >= len(m.responses) {
			yield(nil, m.err)
		}
	}
}

// mockAIClient は gemini.GenerativeModel のテスト用モックなのだ。
// 使わないメソッドは埋め込みのインターフェースで解決するのだ。
type mockAIClient struct {
	gemini.GenerativeModel
	generateFunc func(model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error)
}

func (m *mockAIClient) GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	if m.generateFunc != nil {
		return m.generateFunc(model, parts, opts)
	}
	return nil, nil
}

// textResponse は指定テキストを1パーツとして持つレスポンスを作るヘルパーなのだ。
func textResponse(texts ...string) *genai.GenerateContentResponse {
	parts := make([]*genai.Part, 0, len(texts))
	for _, t := range texts {
		parts = append(parts, &genai.Part{Text: t})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: parts},
		}},
	}
}
