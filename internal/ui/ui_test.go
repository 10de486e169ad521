package ui

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"redditdl/internal/imgur"
	"redditdl/internal/media"
)

func TestProgressPlain(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, "extracting", 3)
	p.Update(1, 3)
	p.Update(3, 3)
	p.Stop()

	want := "extracting 1/3\nextracting 3/3\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestProgressModel(t *testing.T) {
	m := newProgressModel("extracting", 4)

	next, _ := m.Update(countMsg{done: 2, total: 4})
	m = next.(progressModel)
	if m.percent() != 0.5 {
		t.Errorf("percent() = %v, want 0.5", m.percent())
	}
	if view := m.View(); !strings.Contains(view, "extracting") || !strings.Contains(view, "2/4") {
		t.Errorf("View() = %q, want label and count", view)
	}

	next, cmd := m.Update(finishMsg{})
	m = next.(progressModel)
	if m.View() != "" {
		t.Errorf("View() after finish = %q, want empty", m.View())
	}
	if cmd == nil {
		t.Fatal("finish should return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("finish command should quit")
	}
}

func TestProgressModelZeroTotal(t *testing.T) {
	if p := newProgressModel("x", 0).percent(); p != 0 {
		t.Errorf("percent() with no items = %v, want 0", p)
	}
}

func TestRenderContent(t *testing.T) {
	var buf bytes.Buffer
	RenderContent(&buf, []media.Content{
		{URL: "https://i.redd.it/a.png", Name: "a", Extension: ".png", User: "u", Subreddit: "pics", PostTitle: "T"},
		{URL: "https://i.redd.it/b.gif", Name: "b", Extension: ".gif", DisplayOnly: true},
	})

	out := buf.String()
	for _, want := range []string{"a.png", "https://i.redd.it/a.png", "u/u", "r/pics", "b.gif"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderFailures(t *testing.T) {
	var buf bytes.Buffer
	RenderFailures(&buf, []string{"Failed: Imgur rate limit exceeded."})
	if !strings.Contains(buf.String(), "rate limit exceeded") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestRenderSummary(t *testing.T) {
	tests := []struct {
		name    string
		s       Summary
		want    []string
		notWant []string
	}{
		{"content only", Summary{Content: 3}, []string{"3 extracted"}, []string{"failed", "saved"}},
		{"everything", Summary{Content: 1, Saved: 1, Skipped: 2, Failures: 4, Retry: 1, Unsupported: 5},
			[]string{"1 saved", "2 skipped", "4 failed", "1 saved for retry", "5 unsupported"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			RenderSummary(&buf, tt.s)
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output %q missing %q", buf.String(), w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(buf.String(), w) {
					t.Errorf("output %q should not contain %q", buf.String(), w)
				}
			}
		})
	}
}

func TestRenderCredits(t *testing.T) {
	var buf bytes.Buffer
	RenderCredits(&buf, &imgur.Credits{ClientLimit: 12500, ClientRemaining: 12000, UserLimit: 500, UserRemaining: 42})
	out := buf.String()
	if !strings.Contains(out, "12000 / 12500") || !strings.Contains(out, "42 / 500") {
		t.Errorf("output = %q", out)
	}
}
