package imgutil

import (
	"errors"
	"fmt"
	"image"

	"github.com/shouni/gemini-photo-reasoning/pkg/domain"
)

// ErrInvalidImage は画像としてデコードできない、またはサイズが 0 のデータに対するエラーです。
var ErrInvalidImage = errors.New("invalid image")

// passThroughFormats は縮小不要なら元のバイト列をそのまま送信できるフォーマットです。
var passThroughFormats = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
}

// Preparator は画像を送信可能なサイズへ正規化します。
// 入力サイズと設定値のみに依存する純粋な処理です。
type Preparator struct {
	MaxDimension int
	Quality      int
}

// NewPreparator は maxDimension と JPEG 品質を指定して Preparator を作成します。
// 0 以下の値は既定値に置き換えます。
func NewPreparator(maxDimension, quality int) *Preparator {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &Preparator{MaxDimension: maxDimension, Quality: quality}
}

// Prepare はデコード済みの画像を正規化します。
// 収まる場合は同じビットマップをそのまま包み、収まらない場合のみ縮小します。
func (p *Preparator) Prepare(img image.Image) (*domain.PreparedImage, error) {
	bitmap, err := p.fit(img)
	if err != nil {
		return nil, err
	}
	data, err := EncodeJPEG(bitmap, p.Quality)
	if err != nil {
		return nil, fmt.Errorf("JPEGエンコード失敗: %w", err)
	}
	return newPrepared(bitmap, "image/jpeg", data), nil
}

// PrepareRaw は未デコードのデータをデコードしてから正規化します。
// 縮小不要かつ送信可能なフォーマットであれば、元のバイト列を再エンコードせずに使います。
func (p *Preparator) PrepareRaw(raw domain.RawImage) (*domain.PreparedImage, error) {
	img, format, err := Decode(raw.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidImage, raw.Source, err)
	}

	b := img.Bounds()
	if mimeType, ok := passThroughFormats[format]; ok && b.Dx() > 0 && b.Dy() > 0 && Fits(b.Dx(), b.Dy(), p.MaxDimension) {
		return newPrepared(img, mimeType, raw.Data), nil
	}

	prepared, err := p.Prepare(img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", raw.Source, err)
	}
	return prepared, nil
}

func (p *Preparator) fit(img image.Image) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty bounds %v", ErrInvalidImage, b)
	}
	if Fits(b.Dx(), b.Dy(), p.MaxDimension) {
		return img, nil
	}
	w, h := AspectFit(b.Dx(), b.Dy(), p.MaxDimension)
	return Resize(img, w, h), nil
}

func newPrepared(img image.Image, mimeType string, data []byte) *domain.PreparedImage {
	b := img.Bounds()
	return &domain.PreparedImage{
		Image:    img,
		Width:    b.Dx(),
		Height:   b.Dy(),
		MimeType: mimeType,
		Data:     data,
	}
}
