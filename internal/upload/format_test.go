package upload_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flemzord/tgupload/internal/upload"
)

func TestSanitize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, want string
	}{
		{"plain.txt", "plain.txt"},
		{"a<b>.txt", "a&lt;b&gt;.txt"},
		{"Tom & Jerry", "Tom &amp; Jerry"},
		{"&lt;", "&amp;lt;"},
		{"", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, upload.Sanitize(tc.in), "Sanitize(%q)", tc.in)
	}
}

func TestSanitize_NoRawMarkup(t *testing.T) {
	t.Parallel()
	inputs := []string{"<script>", "a&b<c>d", "<<>>&&", "/home/user/<weird> & name", "&amp;"}
	for _, in := range inputs {
		out := upload.Sanitize(in)
		assert.NotContains(t, out, "<")
		assert.NotContains(t, out, ">")
		// Every ampersand starts an entity.
		for i := range len(out) {
			if out[i] != '&' {
				continue
			}
			rest := out[i:]
			assert.True(t,
				strings.HasPrefix(rest, "&amp;") || strings.HasPrefix(rest, "&lt;") || strings.HasPrefix(rest, "&gt;"),
				"unescaped ampersand in %q", out)
		}
	}
	assert.Equal(t, "&amp;amp;", upload.Sanitize(upload.Sanitize("&")))
}

func TestDeepLink(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "https://t.me/c/1234567890/42", upload.DeepLink("t.me", -1001234567890, 42))
	assert.Equal(t, "https://t.me/c/123456789/7", upload.DeepLink("t.me", 123456789, 7))
	assert.Equal(t, "https://t.me/c/-4567/3", upload.DeepLink("t.me", -4567, 3))
}

func TestCaption(t *testing.T) {
	t.Parallel()
	created := time.Date(2022, 2, 14, 9, 30, 0, 0, time.UTC)
	got := upload.Caption("a<b>.jpg", "/tmp/a<b>.jpg", 2048, created)
	assert.Equal(t,
		"Filename: <code>a&lt;b&gt;.jpg</code>\n"+
			"Path: <code>/tmp/a&lt;b&gt;.jpg</code>\n"+
			"Size: 2.0 kB\n"+
			"Created at: <code>Mon, 14 Feb 2022 09:30:00 GMT</code>",
		got)

	assert.Contains(t, upload.Caption("x", "/x", 1, time.Time{}), "Created at: <code>unknown</code>")
}

func TestSizeLimit(t *testing.T) {
	t.Parallel()
	tests := []struct {
		root     string
		override uint64
		want     uint64
	}{
		{"https://api.telegram.org", 0, 52428800},
		{"https://api.telegram.org/", 0, 52428800},
		{"", 0, 52428800},
		{"http://localhost:8081", 0, 2147483648},
		{"http://localhost:8081", 1000, 1000},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, upload.SizeLimit(tc.root, tc.override), "SizeLimit(%q, %d)", tc.root, tc.override)
	}
}

func TestPacer(t *testing.T) {
	t.Parallel()
	p := &upload.Pacer{PrivateDelay: 25 * time.Millisecond, GroupDelay: 3 * time.Second}
	assert.Equal(t, 25*time.Millisecond, p.Delay(upload.KindPrivate))
	assert.Equal(t, 3*time.Second, p.Delay(upload.KindGroup))

	start := time.Now()
	require.NoError(t, p.Pause(context.Background(), upload.KindPrivate))
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Pause(ctx, upload.KindGroup), context.Canceled)

	zero := &upload.Pacer{}
	assert.NoError(t, zero.Pause(context.Background(), upload.KindGroup))
}

func TestBuildIndex_OrderAndBound(t *testing.T) {
	t.Parallel()
	var files []upload.UploadedFile
	for i := range 300 {
		files = append(files, upload.UploadedFile{
			Name: fmt.Sprintf("holiday-photo-%04d-with-a-long-name.jpg", i),
			Link: upload.DeepLink("t.me", -1001234567890, 1000+i),
		})
	}

	pages := upload.BuildIndex(files, 4096)
	require.Greater(t, len(pages), 1)

	var lines []string
	for _, page := range pages {
		assert.LessOrEqual(t, len(utf16.Encode([]rune(page))), 4096)
		lines = append(lines, strings.Split(page, "\n")...)
	}
	require.Len(t, lines, len(files))
	for i, line := range lines {
		want := fmt.Sprintf("%d. <a href=\"%s\">%s</a>", i+1, files[i].Link, files[i].Name)
		assert.Equal(t, want, line)
	}
}

func TestBuildIndex_ExactFit(t *testing.T) {
	t.Parallel()
	files := []upload.UploadedFile{
		{Name: "a", Link: "L"},
		{Name: "b", Link: "L"},
	}
	// Each entry is `1. <a href="L">a</a>` (20 runes).
	entry := utf8.RuneCountInString(`1. <a href="L">a</a>`)

	assert.Len(t, upload.BuildIndex(files, 2*entry+1), 1)
	assert.Len(t, upload.BuildIndex(files, 2*entry), 2)
}

func TestBuildIndex_CountsUTF16Units(t *testing.T) {
	t.Parallel()
	files := []upload.UploadedFile{
		{Name: "😀😀😀😀", Link: "L"},
		{Name: "😀😀😀😀", Link: "L"},
	}
	entry := `1. <a href="L">😀😀😀😀</a>`
	runes := utf8.RuneCountInString(entry)
	units := len(utf16.Encode([]rune(entry)))
	require.Equal(t, runes+4, units)

	// Fits by rune count, overflows by UTF-16 count.
	assert.Len(t, upload.BuildIndex(files, 2*runes+1), 2)
	assert.Len(t, upload.BuildIndex(files, 2*units+1), 1)
}

func TestBuildIndex_Empty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, upload.BuildIndex(nil, 4096))
}

func TestBuildIndex_OversizedEntry(t *testing.T) {
	t.Parallel()
	files := []upload.UploadedFile{
		{Name: "small", Link: "L"},
		{Name: strings.Repeat("x", 100), Link: "L"},
		{Name: "tail", Link: "L"},
	}
	pages := upload.BuildIndex(files, 50)
	require.Len(t, pages, 3)
	assert.Contains(t, pages[1], strings.Repeat("x", 100))
}
