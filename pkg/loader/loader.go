package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/gemini-photo-reasoning/pkg/domain"
)

var (
	// ErrNotImage は読み込んだデータが画像ではなかった場合のエラーです。
	ErrNotImage = errors.New("source is not an image")
	// ErrUnsupportedSource は対応するリーダーが設定されていないソースに対するエラーです。
	ErrUnsupportedSource = errors.New("unsupported image source")
)

// Loader はローカルファイル、http(s) URL、gs:// URI から画像データを読み込みます。
type Loader struct {
	httpClient httpkit.ClientInterface
	reader     remoteio.InputReader
	urlCheck   func(rawURL string) (bool, error)
}

// Option は Loader の設定を変更します。
type Option func(*Loader)

// WithHTTPClient は http(s) の取得に使うクライアントを設定します。
func WithHTTPClient(c httpkit.ClientInterface) Option {
	return func(l *Loader) { l.httpClient = c }
}

// WithRemoteReader は gs:// の読み込みに使うリーダーを設定します。
func WithRemoteReader(r remoteio.InputReader) Option {
	return func(l *Loader) { l.reader = r }
}

// WithURLValidator は SSRF 対策の URL 検証を差し替えます。テスト用です。
func WithURLValidator(fn func(rawURL string) (bool, error)) Option {
	return func(l *Loader) {
		if fn != nil {
			l.urlCheck = fn
		}
	}
}

// New は Loader を作成します。http クライアントとリーダーは nil を許容し、
// その場合は該当するソースの読み込みがエラーになります。
func New(opts ...Option) *Loader {
	l := &Loader{urlCheck: IsSafeURL}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load は source から画像を読み込み、画像であることを確認して返します。
func (l *Loader) Load(ctx context.Context, source string) (domain.RawImage, error) {
	data, err := l.fetch(ctx, source)
	if err != nil {
		return domain.RawImage{}, err
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return domain.RawImage{}, fmt.Errorf("%w: %s (%s)", ErrNotImage, source, mtype.String())
	}
	return domain.RawImage{Source: source, Data: data}, nil
}

// LoadAll は sources を順に読み込み、成功したものだけを入力順で返します。
// 失敗したソースはログに残してスキップします。
func (l *Loader) LoadAll(ctx context.Context, sources []string) []domain.RawImage {
	images := make([]domain.RawImage, 0, len(sources))
	for i, source := range sources {
		if source == "" {
			continue
		}
		img, err := l.Load(ctx, source)
		if err != nil {
			slog.WarnContext(ctx, "画像の読み込みに失敗しました", "index", i, "source", source, "error", err)
			continue
		}
		images = append(images, img)
	}
	return images
}

func (l *Loader) fetch(ctx context.Context, source string) ([]byte, error) {
	switch {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		if l.httpClient == nil {
			return nil, fmt.Errorf("%w: HTTPクライアントが設定されていません: %s", ErrUnsupportedSource, source)
		}
		if safe, err := l.urlCheck(source); err != nil || !safe {
			if err == nil {
				err = fmt.Errorf("拒否されました: %s", source)
			}
			return nil, fmt.Errorf("%w: %v", ErrUnsafeURL, err)
		}
		return l.httpClient.FetchBytes(ctx, source)

	case strings.HasPrefix(source, "gs://"):
		if l.reader == nil {
			return nil, fmt.Errorf("%w: リーダーが設定されていません: %s", ErrUnsupportedSource, source)
		}
		rc, err := l.reader.Open(ctx, source)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("ファイルの読み込みに失敗しました: %w", err)
	}
	return data, nil
}
