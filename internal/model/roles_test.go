package model

import "testing"

func TestShortClass(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"android.widget.Button", "btn"},
		{"android.widget.ImageButton", "btn"},
		{"android.widget.TextView", "txt"},
		{"android.widget.ImageView", "img"},
		{"android.widget.FrameLayout", "frame"},
		{"android.view.ViewGroup", "group"},
		{"android.webkit.WebView", "web"},
		{"androidx.recyclerview.widget.RecyclerView", "RecyclerView"},
		{"com.bytedance.sdk.SplashView", "SplashView"},
		{"Custom", "Custom"},
		{"", "other"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ShortClass(tt.input)
			if got != tt.want {
				t.Errorf("ShortClass(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
