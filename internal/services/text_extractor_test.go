package services

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"
)

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

const docxBody = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Paid-Up Capital: </w:t></w:r><w:r><w:t>QAR 8,000,000</w:t></w:r></w:p>
    <w:p><w:r><w:t>Hosted in Qatar.</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestTextExtractor_Extract(t *testing.T) {
	ex := NewTextExtractor(2)

	tests := []struct {
		name string
		file string
		data []byte
		want string
	}{
		{"plain text", "notes.txt", []byte("We retain records for 10 years."), "We retain records for 10 years."},
		{"unknown extension treated as text", "notes.md", []byte("AML policy"), "AML policy"},
		{"invalid utf8 dropped", "notes.txt", []byte("Qatar\xff"), "Qatar"},
		{"docx paragraphs", "aoa.DOCX", buildDOCX(t, docxBody), "Paid-Up Capital: QAR 8,000,000\nHosted in Qatar."},
		{"docx without document part", "broken.docx", buildDOCX(t, "")[:10], ""},
		{"corrupt pdf", "scan.pdf", []byte("%PDF-1.4 not really"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ex.Extract(tt.file, tt.data); got != tt.want {
				t.Errorf("Extract(%q) = %q, want %q", tt.file, got, tt.want)
			}
		})
	}
}

func TestExtractDOCX_MissingDocumentPart(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if _, err := zw.Create("word/styles.xml"); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := extractDOCX(buf.Bytes()); err == nil {
		t.Error("expected error when word/document.xml is absent")
	}
}

func TestTextExtractor_ExtractAll(t *testing.T) {
	ex := NewTextExtractor(3)
	files := []SourceFile{
		{Name: "a.txt", Data: []byte("first")},
		{Name: "b.pdf", Data: []byte("garbage")},
		{Name: "c.txt", Data: []byte("  \n ")},
		{Name: "d.docx", Data: buildDOCX(t, docxBody)},
		{Name: "e.txt", Data: []byte("last")},
	}

	got, err := ex.ExtractAll(context.Background(), files)
	if err != nil {
		t.Fatalf("ExtractAll() error = %v", err)
	}
	want := "first\n\nPaid-Up Capital: QAR 8,000,000\nHosted in Qatar.\n\nlast"
	if got != want {
		t.Errorf("ExtractAll() = %q, want %q", got, want)
	}
}

func TestTextExtractor_ExtractAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTextExtractor(1).ExtractAll(ctx, []SourceFile{{Name: "a.txt", Data: []byte("x")}})
	if err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestTextExtractor_ExtractAllEmpty(t *testing.T) {
	got, err := NewTextExtractor(0).ExtractAll(context.Background(), nil)
	if err != nil || got != "" {
		t.Errorf("ExtractAll(nil) = (%q, %v), want empty", got, err)
	}
}
