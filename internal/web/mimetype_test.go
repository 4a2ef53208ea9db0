package web_test

import (
	"testing"

	"github.com/konstantinfoerster/anki-importer-go/internal/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMimeTypeRaw(t *testing.T) {
	cases := []struct {
		name        string
		contentType string
		want        string
	}{
		{
			name:        "from content-type",
			contentType: "text/csv",
			want:        "text/csv",
		},
		{
			name:        "from upper case content-type with charset",
			contentType: "Text/CSV; charset=utf-8",
			want:        "text/csv",
		},
		{
			name:        "from content-type with charset and boundary",
			contentType: "application/json; charset=utf-8; boundary=A",
			want:        "application/json",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := web.NewMimeType(tc.contentType).Raw()

			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBuildFilename(t *testing.T) {
	cases := []struct {
		name        string
		contentType string
		want        string
		wantZip     bool
	}{
		{name: "csv", contentType: "text/csv", want: "export.csv"},
		{name: "plain text as csv", contentType: "text/plain; charset=utf-8", want: "export.csv"},
		{name: "json", contentType: "application/json", want: "export.json"},
		{name: "zip", contentType: "application/zip", want: "export.zip", wantZip: true},
		{name: "legacy zip", contentType: "application/x-zip-compressed", want: "export.zip", wantZip: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := web.NewMimeType(tc.contentType)

			got, err := m.BuildFilename("export")

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantZip, m.IsZip())
		})
	}
}

func TestBuildFilenameFails(t *testing.T) {
	cases := []struct {
		name        string
		contentType string
		prefix      string
		wantContain string
	}{
		{name: "unknown mime type", contentType: "image/png", prefix: "a", wantContain: "unsupported mime type"},
		{name: "empty prefix", contentType: "text/csv", prefix: " ", wantContain: "without prefix"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := web.NewMimeType(tc.contentType).BuildFilename(tc.prefix)

			assert.ErrorContains(t, err, tc.wantContain)
		})
	}
}
