package adb

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mj1618/skipad/internal/gesture"
	"github.com/mj1618/skipad/internal/model"
	"github.com/mj1618/skipad/internal/tree"
)

const sampleDump = `UI hierchary dumped to: /dev/tty
<?xml version='1.0' encoding='UTF-8' standalone='yes' ?>
<hierarchy rotation="0">
  <node index="0" text="" resource-id="" class="android.widget.FrameLayout" package="com.example.news" content-desc="" clickable="false" bounds="[0,0][1080,1920]">
    <node index="0" text="Tom & Jerry" resource-id="com.example.news:id/title" class="android.widget.TextView" package="com.example.news" content-desc="" clickable="false" bounds="[0,200][1080,300]" />
    <node index="1" text="5s" resource-id="com.example.news:id/skip" class="android.widget.TextView" package="com.example.news" content-desc="skip ad" clickable="true" bounds="[900,80][1040,160]" />
  </node>
</hierarchy>`

type fakeRunner struct {
	mu      sync.Mutex
	calls   []string
	respond func(cmd string) (string, error)
}

func (f *fakeRunner) Run(_ context.Context, args ...string) (string, error) {
	cmd := strings.Join(args, " ")
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	f.mu.Unlock()
	return f.respond(cmd)
}

func (f *fakeRunner) count(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func deviceRunner(app, dump string) *fakeRunner {
	return &fakeRunner{respond: func(cmd string) (string, error) {
		switch {
		case strings.Contains(cmd, "uiautomator dump"):
			return dump, nil
		case strings.Contains(cmd, "dumpsys window"):
			return "  mCurrentFocus=Window{a1b2c3 u0 " + app + "/" + app + ".MainActivity}", nil
		default:
			return "", nil
		}
	}}
}

func TestParseBounds(t *testing.T) {
	tests := []struct {
		input   string
		want    model.Rect
		wantErr bool
	}{
		{"[900,80][1040,160]", model.Rect{Left: 900, Top: 80, Right: 1040, Bottom: 160}, false},
		{" [0,0][1080,1920] ", model.Rect{Right: 1080, Bottom: 1920}, false},
		{"[0,0][10]", model.Rect{}, true},
		{"", model.Rect{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseBounds(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseBounds(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseBounds(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseHierarchy(t *testing.T) {
	root, err := ParseHierarchy(sampleDump)
	if err != nil {
		t.Fatalf("ParseHierarchy: %v", err)
	}
	if root.ID != 1 || root.App != "com.example.news" || len(root.Children) != 2 {
		t.Fatalf("unexpected root: %+v", root)
	}
	if root.Text != nil || root.Description != nil {
		t.Error("empty text and content-desc should be absent")
	}
	title := root.Children[0]
	if model.Deref(title.Text) != "Tom & Jerry" || title.ID != 2 {
		t.Errorf("unexpected title node: %+v", title)
	}
	skip := root.Children[1]
	if model.Deref(skip.Text) != "5s" || model.Deref(skip.Description) != "skip ad" || !skip.Clickable {
		t.Errorf("unexpected skip node: %+v", skip)
	}
	if skip.Bounds != (model.Rect{Left: 900, Top: 80, Right: 1040, Bottom: 160}) {
		t.Errorf("unexpected bounds: %v", skip.Bounds)
	}
}

func TestParseHierarchy_MultipleRoots(t *testing.T) {
	dump := `<?xml version='1.0' ?><hierarchy>
<node class="a" package="com.x" bounds="[0,0][1,1]" />
<node class="b" package="com.x" bounds="[0,0][1,1]" />
</hierarchy>`
	root, err := ParseHierarchy(dump)
	if err != nil {
		t.Fatalf("ParseHierarchy: %v", err)
	}
	if root.Class != "android.view.View" || len(root.Children) != 2 || root.App != "com.x" {
		t.Errorf("expected synthetic root, got %+v", root)
	}
	if root.Children[1].ID != 3 {
		t.Errorf("second child ID = %d, want 3", root.Children[1].ID)
	}
}

func TestParseHierarchy_Invalid(t *testing.T) {
	for _, dump := range []string{"", "<hierarchy></hierarchy>", `<hierarchy><node bounds="bad"/></hierarchy>`} {
		if _, err := ParseHierarchy(dump); err == nil {
			t.Errorf("ParseHierarchy(%q) should fail", dump)
		}
	}
}

func TestParseForegroundPackage(t *testing.T) {
	tests := []struct {
		output string
		want   string
	}{
		{"  mCurrentFocus=Window{e5f4 u0 com.example.news/com.example.news.SplashActivity}", "com.example.news"},
		{"  mCurrentFocus=Window{e5f4 u0 com.android.systemui}", "com.android.systemui"},
		{"  mCurrentFocus=Window{e5f4 u0 StatusBar}", ""},
		{"  mCurrentFocus=null", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := parseForegroundPackage(tt.output); got != tt.want {
			t.Errorf("parseForegroundPackage(%q) = %q, want %q", tt.output, got, tt.want)
		}
	}
}

func TestScreen_RootCachesDump(t *testing.T) {
	r := deviceRunner("com.example.news", sampleDump)
	s := NewScreen(r, time.Minute, zerolog.Nop())

	for i := 0; i < 3; i++ {
		root, err := s.Root(context.Background())
		if err != nil {
			t.Fatalf("Root: %v", err)
		}
		if root.AppID() != "com.example.news" || root.ChildCount() != 2 {
			t.Fatalf("unexpected root node")
		}
	}
	if n := r.count("shell uiautomator"); n != 1 {
		t.Errorf("dumps = %d, want 1 with caching", n)
	}
	s.Invalidate()
	if _, err := s.Root(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := r.count("shell uiautomator"); n != 2 {
		t.Errorf("dumps = %d, want 2 after invalidate", n)
	}
}

func TestScreen_DumpRetriesThenFails(t *testing.T) {
	r := &fakeRunner{respond: func(cmd string) (string, error) {
		if strings.Contains(cmd, "uiautomator dump") {
			return "ERROR: could not get idle state.", errors.New("exit status 1")
		}
		return "", nil
	}}
	s := NewScreen(r, 0, zerolog.Nop())
	if _, err := s.Root(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if n := r.count("shell uiautomator dump"); n != 3 {
		t.Errorf("dump attempts = %d, want 3", n)
	}
	if n := r.count("shell pkill"); n != 2 {
		t.Errorf("pkill calls = %d, want 2", n)
	}
}

func TestScreen_Foreground(t *testing.T) {
	s := NewScreen(deviceRunner("com.example.news", sampleDump), 0, zerolog.Nop())
	app, err := s.Foreground(context.Background())
	if err != nil || app != "com.example.news" {
		t.Errorf("Foreground() = %q, %v", app, err)
	}

	none := &fakeRunner{respond: func(string) (string, error) { return "", errors.New("exit status 1") }}
	app, err = NewScreen(none, 0, zerolog.Nop()).Foreground(context.Background())
	if err != nil || app != "" {
		t.Errorf("Foreground() with no match = %q, %v; want empty, nil", app, err)
	}
}

func TestInjector_Tap(t *testing.T) {
	r := deviceRunner("com.x", sampleDump)
	invalidated := false
	inj := NewInjector(r, zerolog.Nop(), func() { invalidated = true })

	done := make(chan bool, 1)
	g := gesture.Gesture{Start: model.Point{X: 970, Y: 120}, Duration: 100 * time.Millisecond}
	if !inj.Inject(context.Background(), g, func(_ gesture.Gesture, completed bool) { done <- completed }) {
		t.Fatal("expected acceptance")
	}
	if r.calls[0] != "shell input swipe 970 120 970 120 100" {
		t.Errorf("command = %q", r.calls[0])
	}
	if !invalidated {
		t.Error("cache not invalidated after gesture")
	}
	select {
	case completed := <-done:
		if !completed {
			t.Error("expected completed callback")
		}
	case <-time.After(time.Second):
		t.Fatal("callback not called")
	}
}

func TestInjector_Failure(t *testing.T) {
	r := &fakeRunner{respond: func(string) (string, error) { return "", errors.New("device offline") }}
	inj := NewInjector(r, zerolog.Nop(), nil)
	if inj.Inject(context.Background(), gesture.Gesture{}, nil) {
		t.Error("failed command must not be accepted")
	}
}

func TestPoller_Events(t *testing.T) {
	r := deviceRunner("com.example.news", sampleDump)
	s := NewScreen(r, 0, zerolog.Nop())
	p := NewPoller(s, time.Millisecond, tree.Options{}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := p.Events(ctx)

	want := []model.Event{
		{Kind: model.EventForegroundChanged, App: "com.example.news"},
		{Kind: model.EventContentChanged, App: "com.example.news"},
	}
	for i, w := range want {
		select {
		case ev := <-events:
			if ev.Kind != w.Kind || ev.App != w.App {
				t.Errorf("event %d = %+v, want %s/%s", i, ev, w.Kind, w.App)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}

	// An unchanged tree produces no further events.
	select {
	case ev := <-events:
		t.Errorf("unexpected event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	for range events {
	}
}
