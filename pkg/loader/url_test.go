package loader

import "testing"

func TestIsSafeURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"公開IPは許可", "https://8.8.8.8/photo.png", true},
		{"ループバックは拒否", "http://127.0.0.1/photo.png", false},
		{"プライベートIPは拒否", "http://192.168.1.10/photo.png", false},
		{"リンクローカルは拒否", "http://169.254.169.254/latest/meta-data", false},
		{"IPv6ループバックは拒否", "http://[::1]/photo.png", false},
		{"不許可スキームは拒否", "ftp://8.8.8.8/photo.png", false},
		{"不正なURLは拒否", "not a url", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsSafeURL(tt.url)
			if got != tt.want {
				t.Errorf("IsSafeURL(%q) = %v, want %v (err: %v)", tt.url, got, tt.want, err)
			}
			if !tt.want && err == nil {
				t.Errorf("拒否した場合はエラーを返すべきなのだ: %q", tt.url)
			}
		})
	}
}
