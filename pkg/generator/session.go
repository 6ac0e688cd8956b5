package generator

import "sync"

// Snapshot は Session のある時点での状態のコピーです。
type Snapshot struct {
	OutputText   *string
	InProgress   bool
	ErrorMessage *string
}

// Text は OutputText を文字列として返します。未設定なら空文字です。
func (s Snapshot) Text() string {
	if s.OutputText == nil {
		return ""
	}
	return *s.OutputText
}

// Err は ErrorMessage を返します。未設定なら空文字です。
func (s Snapshot) Err() string {
	if s.ErrorMessage == nil {
		return ""
	}
	return *s.ErrorMessage
}

// Session は1画面分の生成状態を保持します。
// 書き換えは Coordinator からのみ行われ、変更のたびに購読者へ同期的に通知されます。
type Session struct {
	mu           sync.Mutex
	outputText   *string
	inProgress   bool
	errorMessage *string

	nextID    int
	observers map[int]func(Snapshot)
}

// NewSession は空の Session を作成します。
func NewSession() *Session {
	return &Session{observers: make(map[int]func(Snapshot))}
}

// Snapshot は現在の状態のコピーを返します。
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe は状態変更の通知先を登録し、登録解除用の関数を返します。
// 通知は変更順に、変更を行ったゴルーチン上で呼ばれます。
func (s *Session) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.observers == nil {
		s.observers = make(map[int]func(Snapshot))
	}
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// begin は実行中でなければ状態を初期化して true を返します。
// 実行中の場合は何も変更せず false を返すのだ。
func (s *Session) begin() bool {
	return s.mutate(func() bool {
		if s.inProgress {
			return false
		}
		empty := ""
		s.inProgress = true
		s.errorMessage = nil
		s.outputText = &empty
		return true
	})
}

func (s *Session) appendText(text string) {
	s.mutate(func() bool {
		var next string
		if s.outputText != nil {
			next = *s.outputText
		}
		next += text
		s.outputText = &next
		return true
	})
}

func (s *Session) fail(message string) {
	s.mutate(func() bool {
		s.errorMessage = &message
		return true
	})
}

func (s *Session) finish() {
	s.mutate(func() bool {
		s.inProgress = false
		return true
	})
}

// mutate は fn をロック下で実行し、変更があれば通知します。
// 通知はロック解放後に行うため、購読者が Snapshot を呼んでもデッドロックしません。
func (s *Session) mutate(fn func() bool) bool {
	s.mu.Lock()
	changed := fn()
	if !changed {
		s.mu.Unlock()
		return false
	}
	snap := s.snapshotLocked()
	observers := make([]func(Snapshot), 0, len(s.observers))
	for id := 0; id < s.nextID; id++ {
		if obs, ok := s.observers[id]; ok {
			observers = append(observers, obs)
		}
	}
	s.mu.Unlock()

	for _, notify := range observers {
		notify(snap)
	}
	return true
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{InProgress: s.inProgress}
	if s.outputText != nil {
		text := *s.outputText
		snap.OutputText = &text
	}
	if s.errorMessage != nil {
		msg := *s.errorMessage
		snap.ErrorMessage = &msg
	}
	return snap
}
