package fields

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Image Compressor", "image-compressor"},
		{"  JSON -- Formatter  ", "json-formatter"},
		{"C++ Beautifier!", "c-beautifier"},
		{"PDF 2 Word", "pdf-2-word"},
		{"--already-a-slug--", "already-a-slug"},
		{"多语言 Tool", "tool"},
		{"tab\tand\nnewline", "tab-and-newline"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Slugify(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, ValidSlug(got))

			again, err := Slugify(got)
			require.NoError(t, err)
			assert.Equal(t, got, again, "slugify must be idempotent")
		})
	}
}

func TestSlugifyEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "!!!", "工具", "---"} {
		_, err := Slugify(in)
		require.ErrorIs(t, err, ErrEmptySlug, in)
	}
}

func TestValidSlug(t *testing.T) {
	assert.True(t, ValidSlug("abc-123"))
	assert.False(t, ValidSlug("Abc"))
	assert.False(t, ValidSlug("a b"))
	assert.False(t, ValidSlug(""))
}

func TestValidDockerImage(t *testing.T) {
	valid := []string{
		"nginx",
		"nginx:alpine",
		"library/nginx:1.25.3",
		"ghcr.io/headless-tools/image-compressor:v2",
		"localhost:5000/tool_name",
		"registry.example.com/team/app@sha256:" + strings.Repeat("a", 64),
		"my-app:latest",
	}
	for _, ref := range valid {
		assert.True(t, ValidDockerImage(ref), ref)
	}

	invalid := []string{
		"",
		"NGINX:Alpine!",
		"nginx:",
		"Nginx",
		"nginx:" + strings.Repeat("a", 129),
		"app@sha256:short",
		"-app",
	}
	for _, ref := range invalid {
		assert.False(t, ValidDockerImage(ref), ref)
	}
}

func TestValidURL(t *testing.T) {
	assert.True(t, ValidURL("https://example.com"))
	assert.True(t, ValidURL("http://x"))
	assert.False(t, ValidURL("ftp://example.com"))
	assert.False(t, ValidURL("https://"))
	assert.False(t, ValidURL("example.com"))
}

func TestValidate(t *testing.T) {
	type payload struct {
		Slug  string `validate:"omitempty,slug"`
		Image string `validate:"required,dockerimage"`
		Site  string `validate:"omitempty,httpurl"`
	}

	assert.Nil(t, Validate(payload{Slug: "ok", Image: "nginx:alpine", Site: "https://x.io"}))

	errs := Validate(payload{Slug: "Not OK", Image: "NGINX:Alpine!", Site: "x.io"})
	require.Len(t, errs, 3)

	tags := []string{errs[0].Tag, errs[1].Tag, errs[2].Tag}
	assert.ElementsMatch(t, []string{TagSlug, TagDockerImage, TagHTTPURL}, tags)
}
