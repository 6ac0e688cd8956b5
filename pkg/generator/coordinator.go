package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/shouni/gemini-photo-reasoning/pkg/domain"
	"github.com/shouni/gemini-photo-reasoning/pkg/imgutil"
)

var (
	// ErrNoModelClient はモデルクライアントが未設定のまま Generate が呼ばれた場合のエラーです。
	ErrNoModelClient = errors.New("model client is not configured")
	// ErrSessionBusy は実行中のセッションに対して Generate が呼ばれた場合のエラーです。
	ErrSessionBusy = errors.New("session already has a request in progress")
	// ErrNilSession は Session が nil の場合のエラーです。
	ErrNilSession = errors.New("session is required")
)

// Coordinator は画像の正規化、モデルへの送信、ストリーム応答の Session への反映を担います。
type Coordinator struct {
	client      ModelClient
	preparer    ImagePreparer
	concurrency int
}

// Option は Coordinator の設定を変更します。
type Option func(*Coordinator)

// WithMaxDimension は既定の Preparator の最大辺を変更します。
// WithPreparer と併用した場合は後に指定した方が有効です。
func WithMaxDimension(max int) Option {
	return func(c *Coordinator) {
		c.preparer = imgutil.NewPreparator(max, imgutil.DefaultJPEGQuality)
	}
}

// WithPreparer は画像の正規化処理を差し替えます。
func WithPreparer(p ImagePreparer) Option {
	return func(c *Coordinator) {
		if p != nil {
			c.preparer = p
		}
	}
}

// WithPrepareConcurrency は画像の正規化を並列に行う数を指定します。既定は 1（逐次）です。
func WithPrepareConcurrency(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// NewCoordinator は Coordinator を初期化します。
// client は nil を許容し、その場合 Generate は何もしません。
func NewCoordinator(client ModelClient, opts ...Option) *Coordinator {
	c := &Coordinator{
		client:      client,
		preparer:    imgutil.NewPreparator(imgutil.DefaultMaxDimension, imgutil.DefaultJPEGQuality),
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate は prompt と images を1リクエストとして送信し、応答を session.OutputText に追記していきます。
//
// 開始前に拒否した場合（クライアント未設定、セッション実行中）のみエラーを返し、
// そのとき session は一切変更されません。開始後の失敗はすべて session.ErrorMessage に記録され、
// InProgress はどの経路でも最後に false になります。
func (c *Coordinator) Generate(ctx context.Context, session *Session, prompt string, images []domain.RawImage) error {
	return c.run(ctx, session, func() (string, error) { return prompt, nil }, images)
}

// GenerateKind は種別に対応する固定テンプレートで Generate を行います。
// 未知の種別は開始後の失敗として session に記録されます。
func (c *Coordinator) GenerateKind(ctx context.Context, session *Session, kind domain.PromptKind, images []domain.RawImage) error {
	return c.run(ctx, session, func() (string, error) { return domain.PromptTemplate(kind) }, images)
}

// GenerateRequest は組み立て済みの GenerationRequest を送信します。
func (c *Coordinator) GenerateRequest(ctx context.Context, session *Session, req domain.GenerationRequest) error {
	return c.Generate(ctx, session, req.Prompt, req.Images)
}

func (c *Coordinator) run(ctx context.Context, session *Session, resolvePrompt func() (string, error), images []domain.RawImage) error {
	if c == nil || c.client == nil {
		return ErrNoModelClient
	}
	if session == nil {
		return ErrNilSession
	}
	if !session.begin() {
		slog.WarnContext(ctx, "実行中のリクエストがあるため新しい生成要求を拒否しました")
		return ErrSessionBusy
	}
	defer session.finish()
	defer func() {
		if r := recover(); r != nil {
			c.recordFailure(ctx, session, fmt.Errorf("生成処理中にパニックが発生しました: %v", r))
		}
	}()

	prompt, err := resolvePrompt()
	if err != nil {
		c.recordFailure(ctx, session, err)
		return nil
	}

	prepared := c.prepareAll(ctx, images)
	if err := ctx.Err(); err != nil {
		c.recordFailure(ctx, session, err)
		return nil
	}

	slog.InfoContext(ctx, "生成リクエストを送信します", "images", len(prepared), "dropped", len(images)-len(prepared))

	fragments := 0
	for fragment, err := range c.client.GenerateStream(ctx, prompt, prepared) {
		if err != nil {
			c.recordFailure(ctx, session, err)
			return nil
		}
		if !fragment.HasText() {
			slog.DebugContext(ctx, "テキストのないフラグメントを受信したためストリームを終了します", "fragments", fragments)
			return nil
		}
		session.appendText(*fragment.Text)
		fragments++
	}

	slog.InfoContext(ctx, "ストリームが完了しました", "fragments", fragments)
	return nil
}

// prepareAll は各画像を正規化し、失敗したものを除いて入力順のまま返します。
func (c *Coordinator) prepareAll(ctx context.Context, images []domain.RawImage) []domain.PreparedImage {
	results := make([]*domain.PreparedImage, len(images))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, raw := range images {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			prepared, err := c.preparer.PrepareRaw(raw)
			if err != nil {
				// 失敗しても生成自体は続行し、警告ログを残すのだ。
				slog.WarnContext(ctx, "画像の正規化に失敗したためスキップします", "index", i, "source", raw.Source, "error", err)
				return nil
			}
			results[i] = prepared
			return nil
		})
	}
	_ = g.Wait()

	out := make([]domain.PreparedImage, 0, len(images))
	for _, p := range results {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}

func (c *Coordinator) recordFailure(ctx context.Context, session *Session, err error) {
	slog.ErrorContext(ctx, "生成に失敗しました", "error", err)
	session.fail(err.Error())
}
