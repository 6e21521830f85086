package extract

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"
	"github.com/ledongthuc/pdf"
)

// localDocumentURL anchors relative links inside uploaded HTML; the content
// never comes from the network.
var localDocumentURL = &url.URL{Scheme: "https", Host: "localhost"}

// ErrUnsupportedType marks a document type the pipeline cannot extract.
var ErrUnsupportedType = errors.New("unsupported document type")

// ErrCorruptDocument marks a document whose bytes could not be decoded.
var ErrCorruptDocument = errors.New("corrupt document")

// Supported file type tags.
const (
	TypeText     = "txt"
	TypeMarkdown = "md"
	TypePDF      = "pdf"
	TypeHTML     = "html"
)

// Extractor turns raw document bytes into plain text by declared file type.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract decodes data according to fileType. Unknown types fail with
// ErrUnsupportedType; undecodable content fails with ErrCorruptDocument.
func (e *Extractor) Extract(data []byte, fileType string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(fileType)) {
	case TypeText, "text", TypeMarkdown, "markdown":
		return extractPlain(data)
	case TypePDF:
		return extractPDF(data)
	case TypeHTML, "htm":
		return extractHTML(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, fileType)
	}
}

func extractPlain(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: invalid utf-8 text", ErrCorruptDocument)
	}
	return strings.TrimSpace(string(data)), nil
}

func extractPDF(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty pdf", ErrCorruptDocument)
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", ErrCorruptDocument, err)
	}

	var text strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page does not corrupt the document.
			continue
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		text.WriteString(pageText)
	}
	return strings.TrimSpace(text.String()), nil
}

func extractHTML(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: invalid utf-8 html", ErrCorruptDocument)
	}
	article, err := readability.FromReader(bytes.NewReader(data), localDocumentURL)
	if err != nil {
		return "", fmt.Errorf("%w: parse html: %v", ErrCorruptDocument, err)
	}
	return strings.TrimSpace(article.TextContent), nil
}
