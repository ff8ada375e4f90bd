package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"
)

// SourceFile is one applicant document awaiting text extraction.
type SourceFile struct {
	Name string
	Data []byte
}

type TextExtractor interface {
	// Extract returns the plain text of a single document. Decoding failures
	// yield an empty string, never an error.
	Extract(name string, data []byte) string
	// ExtractAll decodes every file concurrently and joins the non-empty
	// texts with a blank line, in input order.
	ExtractAll(ctx context.Context, files []SourceFile) (string, error)
}

type textExtractor struct {
	concurrency int
}

func NewTextExtractor(concurrency int) TextExtractor {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &textExtractor{concurrency: concurrency}
}

func (t *textExtractor) Extract(name string, data []byte) string {
	var (
		text string
		err  error
	)

	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx":
		text, err = extractDOCX(data)
	default:
		text = strings.ToValidUTF8(string(data), "")
	}

	if err != nil {
		log.Printf("⚠️  Could not read %s: %v\n", name, err)
		return ""
	}
	return text
}

func (t *textExtractor) ExtractAll(ctx context.Context, files []SourceFile) (string, error) {
	texts := make([]string, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.concurrency)

	for i := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			texts[i] = strings.TrimSpace(t.Extract(files[i].Name, files[i].Data))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("failed to extract document text: %w", err)
	}

	parts := texts[:0]
	for _, text := range texts {
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

func extractPDF(data []byte) (text string, err error) {
	// The PDF reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}

// extractDOCX reads word/document.xml from the OOXML package and returns
// the text of its paragraphs, one per line.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX: %w", err)
	}

	var body io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			body, err = f.Open()
			if err != nil {
				return "", fmt.Errorf("failed to open document part: %w", err)
			}
			break
		}
	}
	if body == nil {
		return "", fmt.Errorf("word/document.xml not found")
	}
	defer body.Close()

	const wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

	var (
		paragraphs []string
		current    strings.Builder
		inText     bool
	)

	dec := xml.NewDecoder(body)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document part: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Space != wordNS {
				continue
			}
			switch el.Name.Local {
			case "t":
				inText = true
			case "tab":
				current.WriteString("\t")
			case "br", "cr":
				current.WriteString("\n")
			}
		case xml.EndElement:
			if el.Name.Space != wordNS {
				continue
			}
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(el)
			}
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	return strings.Join(paragraphs, "\n"), nil
}
