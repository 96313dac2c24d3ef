package httpserver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/domain"
)

type stubExtractor struct {
	text string
	err  error
}

func (s stubExtractor) Extract(_ domain.Context, _ string, _ []byte) (string, error) {
	return s.text, s.err
}

func Test_allowedExt(t *testing.T) {
	for name, want := range map[string]bool{
		"cv.pdf":  true,
		"CV.PDF":  true,
		"cv.docx": true,
		"cv.txt":  true,
		"cv.rtf":  true,
		"cv.doc":  false,
		"cv.png":  false,
		"cv":      false,
	} {
		assert.Equal(t, want, allowedExt(name), name)
	}
}

func Test_checkUpload(t *testing.T) {
	pdf := []byte("%PDF-1.7\n%%EOF\n")
	rtf := []byte(`{\rtf1\ansi Hello}`)
	tests := []struct {
		name    string
		file    string
		data    []byte
		wantErr bool
	}{
		{name: "pdf", file: "cv.pdf", data: pdf},
		{name: "txt", file: "cv.txt", data: []byte("plain resume text")},
		{name: "rtf", file: "cv.rtf", data: rtf},
		{name: "empty file skips sniffing", file: "cv.pdf", data: nil},
		{name: "pdf disguised as txt", file: "cv.txt", data: pdf, wantErr: true},
		{name: "text disguised as pdf", file: "cv.pdf", data: []byte("hello"), wantErr: true},
		{name: "bad extension", file: "cv.exe", data: []byte("hello"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkUpload(tt.file, tt.data)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnsupportedMedia)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func Test_extractText(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "hello world", extractText(ctx, nil, "cv.txt", []byte("\xef\xbb\xbfhello world")))
	assert.Equal(t, "from tika", extractText(ctx, stubExtractor{text: "from tika"}, "cv.pdf", []byte("%PDF")))
	assert.Empty(t, extractText(ctx, stubExtractor{err: errors.New("down")}, "cv.pdf", []byte("%PDF")))
	assert.Empty(t, extractText(ctx, nil, "cv.docx", []byte("PK")))
	assert.Empty(t, extractText(ctx, stubExtractor{text: "unused"}, "cv.pdf", nil))
}
