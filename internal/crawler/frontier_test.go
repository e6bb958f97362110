package crawler

import (
	"testing"
)

func TestNormalizePageURL(t *testing.T) {
	tests := []struct {
		name   string
		rawURL string
		want   string
	}{
		{
			name:   "fragment stripped",
			rawURL: "https://example.test/app/page#section",
			want:   "https://example.test/app/page/",
		},
		{
			name:   "extensionless path gains trailing slash",
			rawURL: "https://example.test/app/about",
			want:   "https://example.test/app/about/",
		},
		{
			name:   "file path kept slashless",
			rawURL: "https://example.test/app/page.html",
			want:   "https://example.test/app/page.html",
		},
		{
			name:   "empty path becomes root",
			rawURL: "https://example.test",
			want:   "https://example.test/",
		},
		{
			name:   "double trailing slash collapsed",
			rawURL: "https://example.test/app//",
			want:   "https://example.test/app/",
		},
		{
			name:   "root kept as single slash",
			rawURL: "https://example.test///",
			want:   "https://example.test/",
		},
		{
			name:   "already normalized",
			rawURL: "https://example.test/app/page2/",
			want:   "https://example.test/app/page2/",
		},
		{
			name:   "query preserved",
			rawURL: "https://example.test/app/page?x=1#frag",
			want:   "https://example.test/app/page/?x=1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePageURL(tt.rawURL)
			if err != nil {
				t.Fatalf("NormalizePageURL(%q) error: %v", tt.rawURL, err)
			}
			if got != tt.want {
				t.Errorf("NormalizePageURL(%q) = %q, want %q", tt.rawURL, got, tt.want)
			}
		})
	}
}

func TestFrontierAdmission(t *testing.T) {
	f := NewFrontier("example.test", "/app/")

	if !f.Admit("https://example.test/app/") {
		t.Fatal("Start URL rejected")
	}

	tests := []struct {
		name   string
		rawURL string
		want   bool
	}{
		{"cross-host URL", "https://other.test/app/page", false},
		{"same host outside prefix", "https://example.test/blog/post", false},
		{"already pending", "https://example.test/app/", false},
		{"pending via fragment variant", "https://example.test/app/#top", false},
		{"in-prefix new page", "https://example.test/app/page2/", true},
		{"unparseable URL", "https://example.test/app/\x00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Admit(tt.rawURL); got != tt.want {
				t.Errorf("Admit(%q) = %v, want %v", tt.rawURL, got, tt.want)
			}
		})
	}
}

func TestFrontierSlashVariantsAreOnePage(t *testing.T) {
	// Both spellings save to the same file, so they must count as one page
	f := NewFrontier("example.test", "/app/")

	if !f.Admit("https://example.test/app/page2") {
		t.Fatal("Slashless form rejected")
	}
	if f.Admit("https://example.test/app/page2/") {
		t.Error("Trailing-slash variant admitted as a second page")
	}

	u, ok := f.Pop()
	if !ok || u != "https://example.test/app/page2/" {
		t.Errorf("Pop() = %q, want canonical trailing-slash form", u)
	}
	if f.Admit("https://example.test/app/page2") {
		t.Error("Slashless variant re-admitted after visit")
	}
}

func TestFrontierVisitedIsTerminal(t *testing.T) {
	f := NewFrontier("example.test", "/")

	if !f.Admit("https://example.test/a/") {
		t.Fatal("Admit failed")
	}
	u, ok := f.Pop()
	if !ok || u != "https://example.test/a/" {
		t.Fatalf("Pop() = %q, %v", u, ok)
	}

	// Popped URLs are visited regardless of visit outcome and cannot re-enter
	if f.Admit("https://example.test/a/") {
		t.Error("Visited URL re-admitted")
	}
	if f.VisitedCount() != 1 {
		t.Errorf("VisitedCount() = %d, want 1", f.VisitedCount())
	}
}

func TestFrontierFIFOOrder(t *testing.T) {
	f := NewFrontier("example.test", "/")

	urls := []string{
		"https://example.test/1/",
		"https://example.test/2/",
		"https://example.test/3/",
	}
	for _, u := range urls {
		if !f.Admit(u) {
			t.Fatalf("Admit(%q) failed", u)
		}
	}

	for _, want := range urls {
		got, ok := f.Pop()
		if !ok {
			t.Fatal("Pop() returned empty early")
		}
		if got != want {
			t.Errorf("Pop() = %q, want %q (FIFO order)", got, want)
		}
	}

	if _, ok := f.Pop(); ok {
		t.Error("Pop() on empty frontier reported an item")
	}
}
