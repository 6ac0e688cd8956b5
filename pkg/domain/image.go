package domain

import "image"

// RawImage はピッカーやローダーから受け取った、未デコードの写真データです。
type RawImage struct {
	Source string // ログ表示用のラベル（パスやURL）
	Data   []byte
}

// PreparedImage は送信可能な最大辺に収まるよう正規化された画像です。
// 生成後は変更しないこと。
type PreparedImage struct {
	Image    image.Image
	Width    int
	Height   int
	MimeType string
	Data     []byte // 実際に送信されるエンコード済みデータ
}

// MaxSide は長辺のピクセル数を返します。
func (p PreparedImage) MaxSide() int {
	if p.Width > p.Height {
		return p.Width
	}
	return p.Height
}
