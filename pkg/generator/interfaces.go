package generator

import (
	"context"
	"iter"

	"github.com/shouni/gemini-photo-reasoning/pkg/domain"
)

// ModelClient はリモートの生成モデルとの通信を抽象化するインターフェースです。
type ModelClient interface {
	// GenerateStream はプロンプトと画像を1リクエストとして送信し、応答フラグメントを受信順に返します。
	// いずれかのステップでエラーが返された場合、それが最後の要素になります。
	// 最初の要素でのエラーは送信失敗を表します。
	GenerateStream(ctx context.Context, prompt string, images []domain.PreparedImage) iter.Seq2[domain.Fragment, error]
}

// ImagePreparer は未デコードの画像を送信用に正規化するインターフェースです。
// *imgutil.Preparator が実装しています。
type ImagePreparer interface {
	PrepareRaw(raw domain.RawImage) (*domain.PreparedImage, error)
}
