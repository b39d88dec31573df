package content

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestEstimateReadTime_LatinWords(t *testing.T) {
	body := strings.Repeat("word ", 450)

	if got := EstimateReadTime(body); got != 2 {
		t.Errorf("Expected 2 minutes for 450 words, got %d", got)
	}
}

func TestEstimateReadTime_CJKCharacters(t *testing.T) {
	body := strings.Repeat("日本語のテキスト", 100) // 800 characters

	if got := EstimateReadTime(body); got != 2 {
		t.Errorf("Expected 2 minutes for 800 CJK characters, got %d", got)
	}
}

func TestEstimateReadTime_MixedContent(t *testing.T) {
	// 450 CJK characters count as one minute, 225 words as another.
	body := strings.Repeat("あ", 450) + " " + strings.Repeat("go ", 225)

	if got := EstimateReadTime(body); got != 2 {
		t.Errorf("Expected 2 minutes for mixed body, got %d", got)
	}
}

func TestEstimateReadTime_MinimumOneMinute(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"single word", "hello"},
		{"single kanji", "漢"},
		{"only markup", "<p><br/></p>"},
		{"punctuation", "!!! ???"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateReadTime(tt.body); got < 1 {
				t.Errorf("Expected at least 1 minute, got %d", got)
			}
		})
	}
}

func TestEstimateReadTime_IgnoresMarkup(t *testing.T) {
	plain := strings.Repeat("alpha ", 300)
	marked := "<div class=\"very-long-class-name another-class\">" + strings.Repeat("<span>alpha</span> ", 300) + "</div>"

	if EstimateReadTime(plain) != EstimateReadTime(marked) {
		t.Errorf("Expected markup not to affect read time: plain=%d marked=%d", EstimateReadTime(plain), EstimateReadTime(marked))
	}
}

func TestBuildExcerpt_ShortTextUnchanged(t *testing.T) {
	text := "A short summary."

	if got := BuildExcerpt(text, 160); got != text {
		t.Errorf("Expected %q, got %q", text, got)
	}
}

func TestBuildExcerpt_ExactLengthUnchanged(t *testing.T) {
	text := strings.Repeat("a", 160)

	if got := BuildExcerpt(text, 160); got != text {
		t.Errorf("Expected text of exactly max length to be returned unchanged")
	}
}

func TestBuildExcerpt_CutsAtWordBoundary(t *testing.T) {
	body := strings.Repeat("word ", 50)

	got := BuildExcerpt(body, 160)

	if !strings.HasSuffix(got, ExcerptEllipsis) {
		t.Fatalf("Expected ellipsis suffix, got %q", got)
	}

	trimmed := strings.TrimSuffix(got, ExcerptEllipsis)
	if utf8.RuneCountInString(trimmed) > 160 {
		t.Errorf("Expected at most 160 characters before ellipsis, got %d", utf8.RuneCountInString(trimmed))
	}
	if strings.HasSuffix(trimmed, " ") {
		t.Errorf("Expected trailing space to be cut, got %q", trimmed)
	}
	for _, w := range strings.Split(trimmed, " ") {
		if w != "word" {
			t.Fatalf("Expected only whole words, found %q", w)
		}
	}
	if want := strings.TrimSpace(strings.Repeat("word ", 32)); trimmed != want {
		t.Errorf("Expected 32 whole words, got %q", trimmed)
	}
}

func TestBuildExcerpt_HardCutWhenNoLateSpace(t *testing.T) {
	// The only space sits well before the 80% mark, so the cut is not moved back.
	body := "ab " + strings.Repeat("x", 200)

	got := BuildExcerpt(body, 100)

	trimmed := strings.TrimSuffix(got, ExcerptEllipsis)
	if utf8.RuneCountInString(trimmed) != 100 {
		t.Errorf("Expected hard cut at 100 characters, got %d", utf8.RuneCountInString(trimmed))
	}
}

func TestBuildExcerpt_StripsMarkupAndCollapsesWhitespace(t *testing.T) {
	body := "<h1>Title</h1>\n\n<p>First   paragraph &amp; more</p>"

	got := BuildExcerpt(body, 160)

	if got != "Title First paragraph & more" {
		t.Errorf("Expected flattened text, got %q", got)
	}
}

func TestBuildExcerpt_CountsRunes(t *testing.T) {
	body := strings.Repeat("日本語", 100)

	got := BuildExcerpt(body, 50)

	trimmed := strings.TrimSuffix(got, ExcerptEllipsis)
	if utf8.RuneCountInString(trimmed) != 50 {
		t.Errorf("Expected 50 characters, got %d", utf8.RuneCountInString(trimmed))
	}
	if !utf8.ValidString(got) {
		t.Errorf("Expected valid UTF-8 excerpt")
	}
}

func TestBuildExcerpt_NeverExceedsMax(t *testing.T) {
	bodies := []string{
		strings.Repeat("lorem ipsum dolor ", 40),
		strings.Repeat("x", 500),
		strings.Repeat("テスト ", 80),
	}

	for _, body := range bodies {
		for _, n := range []int{1, 10, 80, 160} {
			trimmed := strings.TrimSuffix(BuildExcerpt(body, n), ExcerptEllipsis)
			if utf8.RuneCountInString(trimmed) > n {
				t.Errorf("Expected at most %d characters, got %d", n, utf8.RuneCountInString(trimmed))
			}
		}
	}
}

func TestCountCharacters(t *testing.T) {
	if got := CountCharacters("<p>日本語 abc</p>"); got != 7 {
		t.Errorf("Expected 7 characters, got %d", got)
	}
}
