package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/domain"
	obsctx "github.com/fairyhunter13/ats-resume-analyzer/internal/observability"
	"github.com/fairyhunter13/ats-resume-analyzer/pkg/textx"
)

const (
	extPDF  = ".pdf"
	extDOCX = ".docx"
	extTXT  = ".txt"
	extRTF  = ".rtf"
)

// allowedExt enforces an allowlist for uploads: .pdf, .docx, .txt, .rtf
func allowedExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case extPDF, extDOCX, extTXT, extRTF:
		return true
	}
	return false
}

// allowedMIMEFor reports whether sniffed content is plausible for the file
// extension. DOCX files are zip containers and may sniff as plain zip.
func allowedMIMEFor(mt *mimetype.MIME, name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case extPDF:
		return mt.Is("application/pdf")
	case extDOCX:
		return mt.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document") || mt.Is("application/zip")
	case extRTF:
		return mt.Is("text/rtf") || mt.Is("application/rtf")
	case extTXT:
		return strings.HasPrefix(mt.String(), "text/")
	}
	return false
}

// checkUpload validates the name and sniffed content of an upload.
func checkUpload(name string, data []byte) error {
	if !allowedExt(name) {
		return fmt.Errorf("%w: extension %q", domain.ErrUnsupportedMedia, filepath.Ext(name))
	}
	if len(data) == 0 {
		return nil
	}
	if mt := mimetype.Detect(data); !allowedMIMEFor(mt, name) {
		return fmt.Errorf("%w: content %s does not match %s", domain.ErrUnsupportedMedia, mt.String(), filepath.Ext(name))
	}
	return nil
}

// extractText returns the plain text of an upload. Plain text files are
// decoded in-process; other formats go through the extractor. Extraction
// failures are logged and yield empty text, which scores as a degraded
// report.
func extractText(ctx context.Context, extractor domain.TextExtractor, name string, data []byte) string {
	lg := obsctx.LoggerFromContext(ctx)
	if strings.EqualFold(filepath.Ext(name), extTXT) {
		return textx.DecodePlain(data)
	}
	if len(data) == 0 {
		return ""
	}
	if extractor == nil {
		lg.Warn("no text extractor configured", slog.String("file", name))
		return ""
	}
	text, err := extractor.Extract(ctx, name, data)
	if err != nil {
		lg.Warn("text extraction failed, analyzing as empty", slog.String("file", name), slog.Any("error", err))
		return ""
	}
	return text
}
