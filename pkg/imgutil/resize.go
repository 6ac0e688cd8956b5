package imgutil

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// DefaultMaxDimension は送信前に許容する長辺の最大ピクセル数です。
// バイトサイズを抑えるために使われます。
const DefaultMaxDimension = 768

// Fits は幅・高さの両方が max 以下かどうかを返します。
func Fits(width, height, max int) bool {
	return width <= max && height <= max
}

// AspectFit はアスペクト比を保ったまま長辺が max になるサイズを計算します。
// 横長・正方形は幅を、縦長は高さを max に合わせます。
// 丸めで 0 になる辺は 1 に切り上げるのだ。
func AspectFit(width, height, max int) (int, int) {
	aspectRatio := float64(width) / float64(height)
	if width >= height {
		return max, atLeastOne(math.Round(float64(max) / aspectRatio))
	}
	return atLeastOne(math.Round(float64(max) * aspectRatio)), max
}

func atLeastOne(v float64) int {
	if v < 1 {
		return 1
	}
	return int(v)
}

// Resize は Catmull-Rom 補間で img を width x height に縮小した新しい画像を返します。
func Resize(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
