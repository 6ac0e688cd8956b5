package generator

import (
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/shouni/gemini-photo-reasoning/pkg/domain"
)

// buildParts はプロンプトのテキストパーツの後に、画像を入力順に InlineData として並べます。
func buildParts(prompt string, images []domain.PreparedImage) []*genai.Part {
	parts := make([]*genai.Part, 0, len(images)+1)
	parts = append(parts, &genai.Part{Text: prompt})
	for _, img := range images {
		parts = append(parts, toPart(img))
	}
	return parts
}

// toPart は正規化済みの画像を genai.Part (InlineData) に変換します。
func toPart(img domain.PreparedImage) *genai.Part {
	mimeType := img.MimeType
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/jpeg"
	}
	return &genai.Part{
		InlineData: &genai.Blob{
			MIMEType: mimeType,
			Data:     img.Data,
		},
	}
}

// fragmentFromResponse は1チャンク分のレスポンスから Fragment を取り出します。
// 最初の候補 (Candidate) のうち、思考パーツ以外のテキストを連結します。
// テキストがない場合は EmptyFragment を返し、安全フィルター等によるブロックはエラーにします。
func fragmentFromResponse(resp *genai.GenerateContentResponse) (domain.Fragment, error) {
	if resp == nil {
		return domain.EmptyFragment(), nil
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		return domain.Fragment{}, fmt.Errorf("プロンプトがブロックされました (BlockReason: %s)", fb.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return domain.EmptyFragment(), nil
	}

	// Geminiからの最初の候補のみを利用する。
	candidate := resp.Candidates[0]

	var sb strings.Builder
	found := false
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought || part.Text == "" {
				continue
			}
			sb.WriteString(part.Text)
			found = true
		}
	}
	if found {
		return domain.TextFragment(sb.String()), nil
	}

	switch candidate.FinishReason {
	case "", genai.FinishReasonUnspecified, genai.FinishReasonStop, genai.FinishReasonMaxTokens:
		return domain.EmptyFragment(), nil
	}
	return domain.Fragment{}, fmt.Errorf("生成が異常終了しました (FinishReason: %s)", candidate.FinishReason)
}
