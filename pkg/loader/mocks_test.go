package loader

import (
	"context"
	"io"
	"strings"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// mockHTTPClient は httpkit.ClientInterface を実装します。
// FetchBytes 以外は埋め込みのインターフェースで解決するのだ。
type mockHTTPClient struct {
	httpkit.ClientInterface
	data    map[string][]byte
	err     error
	fetched []string
}

func (m *mockHTTPClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	m.fetched = append(m.fetched, url)
	if m.err != nil {
		return nil, m.err
	}
	return m.data[url], nil
}

// mockReader は remoteio.InputReader を実装します。
type mockReader struct {
	remoteio.InputReader
	data   map[string][]byte
	err    error
	closed int
}

type trackingReadCloser struct {
	io.Reader
	onClose func()
}

func (t *trackingReadCloser) Close() error {
	t.onClose()
	return nil
}

func (m *mockReader) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &trackingReadCloser{
		Reader:  strings.NewReader(string(m.data[uri])),
		onClose: func() { m.closed++ },
	}, nil
}
