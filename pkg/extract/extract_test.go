package extract

import (
	"errors"
	"strings"
	"testing"
)

func TestExtractPlainText(t *testing.T) {
	e := New()

	tests := []struct {
		name     string
		fileType string
		data     string
		want     string
	}{
		{name: "txt", fileType: "txt", data: "  Hello world. \n", want: "Hello world."},
		{name: "text alias", fileType: "text", data: "plain", want: "plain"},
		{name: "markdown", fileType: "md", data: "# Title\n\nBody text.", want: "# Title\n\nBody text."},
		{name: "type tag case insensitive", fileType: " TXT ", data: "x", want: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Extract([]byte(tt.data), tt.fileType)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Extract = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractUnsupportedType(t *testing.T) {
	e := New()
	_, err := e.Extract([]byte("data"), "docx")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("err = %v, want ErrUnsupportedType", err)
	}
}

func TestExtractCorruptText(t *testing.T) {
	e := New()
	_, err := e.Extract([]byte{0xff, 0xfe, 0xfd}, "txt")
	if !errors.Is(err, ErrCorruptDocument) {
		t.Errorf("err = %v, want ErrCorruptDocument", err)
	}
}

func TestExtractCorruptPDF(t *testing.T) {
	e := New()
	_, err := e.Extract([]byte("definitely not a pdf"), "pdf")
	if !errors.Is(err, ErrCorruptDocument) {
		t.Errorf("err = %v, want ErrCorruptDocument", err)
	}
}

func TestExtractHTML(t *testing.T) {
	e := New()
	html := `<html><head><title>Doc</title></head><body>
		<article><p>The refund policy allows returns within thirty days of purchase.</p>
		<p>Contact support with the order number to start a return.</p></article>
		</body></html>`

	got, err := e.Extract([]byte(html), "html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "refund policy") {
		t.Errorf("extracted text %q misses the article body", got)
	}
	if strings.Contains(got, "<p>") {
		t.Errorf("extracted text still contains markup: %q", got)
	}
}
