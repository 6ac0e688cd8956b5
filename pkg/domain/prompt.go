package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPromptKind は未定義のプロンプト種別が指定された場合のエラーです。
var ErrUnknownPromptKind = errors.New("unknown prompt kind")

// PromptKind は呼び出し側の意図に応じて選ばれる固定プロンプトの種別です。
type PromptKind string

const (
	PromptReason   PromptKind = "reason"
	PromptName     PromptKind = "name"
	PromptPastLife PromptKind = "pastLife"
)

// PromptKinds は定義済みの種別を表示順に返すのだ。
func PromptKinds() []PromptKind {
	return []PromptKind{PromptReason, PromptName, PromptPastLife}
}

var promptTemplates = map[PromptKind]string{
	PromptReason: `Based on the photo, write a light-hearted, clearly fictional personality reading.
1. State that the content is made up and for entertainment only.
2. Exaggerate playfully but stay plausible; avoid wording that suggests real analysis.
3. Present the result as a fun AI simulation, not as a prediction of fate.`,
	PromptName: `Based on the people in the photo, invent a humorous and creative nickname.
1. Keep it friendly and entertaining; never offensive.
2. Make clear that the nickname is a playful AI simulation for entertainment only.`,
	PromptPastLife: `Based on the people in the photo, invent an exaggerated, humorous past-life identity and story.
1. The story must be entirely fictional and marked as entertainment only.
2. Keep it light and creative; avoid religious or superstitious themes.
3. Avoid any phrasing that implies the story is true.`,
}

// PromptTemplate は種別に対応する固定テンプレートを返します。
func PromptTemplate(kind PromptKind) (string, error) {
	tmpl, ok := promptTemplates[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPromptKind, kind)
	}
	return tmpl, nil
}

// ParsePromptKind は CLI などから渡された文字列を PromptKind に変換します。
// 大文字小文字は区別せず、past-life / past_life も pastLife として扱います。
func ParsePromptKind(s string) (PromptKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reason":
		return PromptReason, nil
	case "name":
		return PromptName, nil
	case "pastlife", "past-life", "past_life":
		return PromptPastLife, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPromptKind, s)
}

// GenerationRequest はユーザー操作ごとに組み立てられる生成要求です。永続化はしません。
type GenerationRequest struct {
	Kind   PromptKind
	Prompt string
	Images []RawImage
}

// NewGenerationRequest は種別からテンプレートを解決して GenerationRequest を作成します。
func NewGenerationRequest(kind PromptKind, images []RawImage) (GenerationRequest, error) {
	prompt, err := PromptTemplate(kind)
	if err != nil {
		return GenerationRequest{}, err
	}
	return GenerationRequest{Kind: kind, Prompt: prompt, Images: images}, nil
}
