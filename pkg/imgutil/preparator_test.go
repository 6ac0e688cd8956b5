package imgutil

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"testing"

	"github.com/shouni/gemini-photo-reasoning/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSolidImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{0, 128, 255, 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestNewPreparator_Defaults(t *testing.T) {
	p := NewPreparator(0, 0)
	assert.Equal(t, DefaultMaxDimension, p.MaxDimension)
	assert.Equal(t, DefaultJPEGQuality, p.Quality)

	p = NewPreparator(512, 150)
	assert.Equal(t, 512, p.MaxDimension)
	assert.Equal(t, DefaultJPEGQuality, p.Quality)
}

func TestPreparator_Prepare(t *testing.T) {
	p := NewPreparator(768, 75)

	t.Run("収まる画像はそのまま返すこと", func(t *testing.T) {
		src := newSolidImage(768, 400)

		got, err := p.Prepare(src)
		require.NoError(t, err)

		assert.True(t, got.Image == image.Image(src), "同じビットマップを返すべきなのだ")
		assert.Equal(t, 768, got.Width)
		assert.Equal(t, 400, got.Height)
		assert.Equal(t, "image/jpeg", got.MimeType)
		assert.NotEmpty(t, got.Data)
	})

	t.Run("横長画像は幅を最大辺に合わせること", func(t *testing.T) {
		got, err := p.Prepare(newSolidImage(1600, 900))
		require.NoError(t, err)
		assert.Equal(t, 768, got.Width)
		assert.Equal(t, 432, got.Height)
		assert.Equal(t, image.Rect(0, 0, 768, 432), got.Image.Bounds())
	})

	t.Run("縦長画像は高さを最大辺に合わせること", func(t *testing.T) {
		got, err := p.Prepare(newSolidImage(900, 1600))
		require.NoError(t, err)
		assert.Equal(t, 432, got.Width)
		assert.Equal(t, 768, got.Height)
	})

	t.Run("冪等であること", func(t *testing.T) {
		first, err := p.Prepare(newSolidImage(2000, 1000))
		require.NoError(t, err)

		second, err := p.Prepare(first.Image)
		require.NoError(t, err)

		assert.True(t, first.Image == second.Image)
		assert.Equal(t, first.Width, second.Width)
		assert.Equal(t, first.Height, second.Height)
	})

	t.Run("サイズ0の画像はエラー", func(t *testing.T) {
		_, err := p.Prepare(image.NewRGBA(image.Rect(0, 0, 0, 10)))
		assert.ErrorIs(t, err, ErrInvalidImage)
	})

	t.Run("nilはエラー", func(t *testing.T) {
		_, err := p.Prepare(nil)
		assert.ErrorIs(t, err, ErrInvalidImage)
	})
}

func TestPreparator_PrepareRaw(t *testing.T) {
	p := NewPreparator(64, 75)

	t.Run("縮小不要なPNGは元のバイト列を使うこと", func(t *testing.T) {
		data := encodePNG(t, newSolidImage(32, 16))

		got, err := p.PrepareRaw(domain.RawImage{Source: "small.png", Data: data})
		require.NoError(t, err)
		assert.Equal(t, data, got.Data)
		assert.Equal(t, "image/png", got.MimeType)
		assert.Equal(t, 32, got.Width)
		assert.Equal(t, 16, got.Height)
	})

	t.Run("大きなPNGは縮小してJPEGにすること", func(t *testing.T) {
		data := encodePNG(t, newSolidImage(256, 128))

		got, err := p.PrepareRaw(domain.RawImage{Source: "large.png", Data: data})
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", got.MimeType)
		assert.Equal(t, 64, got.Width)
		assert.Equal(t, 32, got.Height)

		_, format, err := Decode(got.Data)
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
	})

	t.Run("GIFは収まっていてもJPEGに変換すること", func(t *testing.T) {
		buf := new(bytes.Buffer)
		require.NoError(t, gif.Encode(buf, newSolidImage(8, 8), nil))

		got, err := p.PrepareRaw(domain.RawImage{Source: "anim.gif", Data: buf.Bytes()})
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", got.MimeType)
	})

	t.Run("デコードできないデータはErrInvalidImage", func(t *testing.T) {
		_, err := p.PrepareRaw(domain.RawImage{Source: "broken.png", Data: []byte("not an image")})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidImage)
		assert.Contains(t, err.Error(), "broken.png")
	})
}
