package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/shouni/gemini-photo-reasoning/pkg/generator"
)

// streamPrinter は Session の変更通知を受けて、新たに追記された部分だけを書き出します。
type streamPrinter struct {
	w       io.Writer
	printed int
	endsLF  bool
	wrote   bool
}

func newStreamPrinter(w io.Writer) *streamPrinter {
	return &streamPrinter{w: w}
}

func (p *streamPrinter) OnChange(s generator.Snapshot) {
	text := s.Text()
	if len(text) < p.printed {
		// 新しいリクエストで出力がリセットされた
		p.printed = 0
	}
	if len(text) == p.printed {
		return
	}
	delta := text[p.printed:]
	fmt.Fprint(p.w, delta)
	p.printed = len(text)
	p.wrote = true
	p.endsLF = strings.HasSuffix(delta, "\n")
}

// Finish は出力が改行で終わっていなければ改行を追加します。
func (p *streamPrinter) Finish() {
	if p.wrote && !p.endsLF {
		fmt.Fprintln(p.w)
	}
}
