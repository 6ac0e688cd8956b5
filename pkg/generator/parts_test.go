package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/shouni/gemini-photo-reasoning/pkg/domain"
)

func TestBuildParts(t *testing.T) {
	parts := buildParts("prompt", []domain.PreparedImage{
		{MimeType: "image/webp", Data: []byte("1")},
		{MimeType: "", Data: []byte("2")},
	})

	require.Len(t, parts, 3)
	assert.Equal(t, "prompt", parts[0].Text)
	assert.Equal(t, "image/webp", parts[1].InlineData.MIMEType)
	assert.Equal(t, "image/jpeg", parts[2].InlineData.MIMEType, "不明なMIMEはJPEG扱いなのだ")
	assert.Equal(t, []byte("2"), parts[2].InlineData.Data)
}

func TestFragmentFromResponse(t *testing.T) {
	t.Run("複数のテキストパーツを連結すること", func(t *testing.T) {
		f, err := fragmentFromResponse(textResponse("foo", "bar"))
		require.NoError(t, err)
		require.True(t, f.HasText())
		assert.Equal(t, "foobar", *f.Text)
	})

	t.Run("思考パーツは無視すること", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: "answer"},
			}},
		}}}
		f, err := fragmentFromResponse(resp)
		require.NoError(t, err)
		assert.Equal(t, "answer", *f.Text)
	})

	t.Run("nilや候補なしはテキストなし", func(t *testing.T) {
		f, err := fragmentFromResponse(nil)
		require.NoError(t, err)
		assert.False(t, f.HasText())

		f, err = fragmentFromResponse(&genai.GenerateContentResponse{})
		require.NoError(t, err)
		assert.False(t, f.HasText())
	})

	t.Run("安全フィルターによる終了はエラー", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}}}
		_, err := fragmentFromResponse(resp)
		require.Error(t, err)
		assert.Contains(t, err.Error(), string(genai.FinishReasonSafety))
	})

	t.Run("プロンプトのブロックはエラー", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
		}
		_, err := fragmentFromResponse(resp)
		assert.Error(t, err)
	})

	t.Run("MaxTokensでの終了はテキストなしとして扱う", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonMaxTokens}}}
		f, err := fragmentFromResponse(resp)
		require.NoError(t, err)
		assert.False(t, f.HasText())
	})
}
