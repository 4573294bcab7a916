package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const (
	TypePDF  = "pdf"
	TypeDOCX = "docx"
	TypeTXT  = "txt"
)

var (
	ErrDecode          = errors.New("document is not valid UTF-8 text")
	ErrUnsupportedType = errors.New("unsupported document type, expected pdf, docx or txt")
)

// DocumentExtractor turns uploaded bytes into plain text.
type DocumentExtractor interface {
	Extract(data []byte, declaredType string) (string, error)
}

type documentExtractor struct{}

func NewDocumentExtractor() DocumentExtractor {
	return &documentExtractor{}
}

// DeclaredType classifies a filename by its lowercased extension.
func DeclaredType(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

// SupportedType reports whether declaredType is one Extract can read.
func SupportedType(declaredType string) bool {
	switch strings.ToLower(declaredType) {
	case TypePDF, TypeDOCX, TypeTXT:
		return true
	}
	return false
}

// Extract implements DocumentExtractor. Unknown types yield an empty string.
func (e *documentExtractor) Extract(data []byte, declaredType string) (string, error) {
	switch strings.ToLower(declaredType) {
	case TypePDF:
		return extractPDF(data)
	case TypeDOCX:
		return extractDOCX(data)
	case TypeTXT:
		if !utf8.Valid(data) {
			return "", ErrDecode
		}
		return string(data), nil
	default:
		return "", nil
	}
}

func extractPDF(data []byte) (text string, err error) {
	// ledongthuc/pdf panics on some malformed inputs instead of returning an error.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("failed to read PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		// A page without a text layer counts as empty.
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		textBuilder.WriteString(pageText)
	}

	return textBuilder.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open DOCX body: %w", err)
		}
		defer rc.Close()

		return wordprocessingText(rc)
	}

	return "", fmt.Errorf("failed to open DOCX: word/document.xml not found")
}

// wordprocessingText walks a WordprocessingML body and keeps visible run text.
func wordprocessingText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		textBuilder strings.Builder
		inText      bool
		runDepth    int
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse DOCX body: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "r":
				runDepth++
			case "t":
				inText = runDepth > 0
			case "tab":
				// Tab stops in paragraph properties share the element name.
				if runDepth > 0 {
					textBuilder.WriteString("\t")
				}
			case "br", "cr":
				if runDepth > 0 {
					textBuilder.WriteString("\n")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "r":
				runDepth--
			case "t":
				inText = false
			case "p":
				textBuilder.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				textBuilder.Write(t)
			}
		}
	}

	return textBuilder.String(), nil
}
