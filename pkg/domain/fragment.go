package domain

// Fragment はストリーミング応答の1チャンクです。
// Text が nil の場合は「テキストなし」を表し、ストリームの終端として扱われます。
type Fragment struct {
	Text *string
}

// TextFragment はテキストを持つ Fragment を作成します。
func TextFragment(s string) Fragment {
	return Fragment{Text: &s}
}

// EmptyFragment はテキストを持たない Fragment を返します。
func EmptyFragment() Fragment {
	return Fragment{}
}

func (f Fragment) HasText() bool {
	return f.Text != nil
}
