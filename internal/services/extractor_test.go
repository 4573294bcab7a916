package services

import (
	"archive/zip"
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

// buildPDF writes a minimal PDF with one page per content stream.
func buildPDF(t *testing.T, contents ...string) []byte {
	t.Helper()

	var objects []string
	kids := ""
	for i := range contents {
		kids += fmt.Sprintf("%d 0 R ", 3+2*i)
	}
	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, len(contents)),
	)
	for i, content := range contents {
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents %d 0 R >>", 4+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, offset := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offset)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

func TestDeclaredType(t *testing.T) {
	tests := map[string]string{
		"cv.pdf":          "pdf",
		"Letter.DOCX":     "docx",
		"notes.final.txt": "txt",
		"README":          "",
		"photo.png":       "png",
	}

	for filename, expect := range tests {
		assert.Equal(t, expect, DeclaredType(filename), filename)
	}
}

func TestExtractTXT(t *testing.T) {
	extractor := NewDocumentExtractor()

	text, err := extractor.Extract([]byte("Experienced backend engineer."), TypeTXT)
	require.NoError(t, err)
	assert.Equal(t, "Experienced backend engineer.", text)

	text, err = extractor.Extract([]byte{}, TypeTXT)
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestExtractTXTRejectsInvalidUTF8(t *testing.T) {
	extractor := NewDocumentExtractor()

	_, err := extractor.Extract([]byte{0xff, 0xfe, 0xfd}, TypeTXT)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestExtractUnknownTypeIsEmpty(t *testing.T) {
	extractor := NewDocumentExtractor()

	for _, declared := range []string{"", "png", "odt"} {
		text, err := extractor.Extract([]byte{0xff, 0x00}, declared)
		require.NoError(t, err)
		assert.Equal(t, "", text)
	}
}

func TestExtractDOCX(t *testing.T) {
	extractor := NewDocumentExtractor()
	body := `<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr>` +
		`<w:r><w:t>Jane</w:t></w:r><w:r><w:t xml:space="preserve"> Doe</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Go</w:t><w:tab/><w:t>Postgres</w:t><w:br/><w:t>Kafka</w:t></w:r></w:p>`

	text, err := extractor.Extract(buildDOCX(t, body), TypeDOCX)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nGo\tPostgres\nKafka\n", text)
}

func TestExtractDOCXEmptyBody(t *testing.T) {
	extractor := NewDocumentExtractor()

	text, err := extractor.Extract(buildDOCX(t, ""), TypeDOCX)
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestExtractPDFConcatenatesPages(t *testing.T) {
	extractor := NewDocumentExtractor()
	data := buildPDF(t, "BT (Hello) Tj ET", "", "BT (World) Tj ET")

	text, err := extractor.Extract(data, TypePDF)
	require.NoError(t, err)
	assert.Equal(t, "\nHello\nWorld", text)
}

func TestExtractBlankPDFIsEmpty(t *testing.T) {
	extractor := NewDocumentExtractor()

	text, err := extractor.Extract(buildPDF(t, ""), TypePDF)
	require.NoError(t, err)
	assert.Equal(t, "", text)

	text, err = extractor.Extract(buildPDF(t, "", ""), TypePDF)
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestSupportedType(t *testing.T) {
	for _, declared := range []string{"pdf", "DOCX", "txt"} {
		assert.True(t, SupportedType(declared), declared)
	}
	for _, declared := range []string{"", "png", "odt", "doc"} {
		assert.False(t, SupportedType(declared), declared)
	}
}

func TestExtractCorruptDocuments(t *testing.T) {
	extractor := NewDocumentExtractor()

	_, err := extractor.Extract([]byte("definitely not a zip"), TypeDOCX)
	assert.Error(t, err)

	_, err = extractor.Extract([]byte("definitely not a pdf"), TypePDF)
	assert.Error(t, err)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err = zw.Create("word/other.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = extractor.Extract(buf.Bytes(), TypeDOCX)
	assert.Error(t, err)
}
