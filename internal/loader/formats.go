package loader

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"inventory-rag/internal/models"
)

func extractDOCX(path string) ([]models.Page, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}
	defer r.Close()

	content := r.Editable().GetContent()
	var lines []string
	for _, p := range strings.Split(content, "\n") {
		if strings.TrimSpace(p) == "" {
			continue
		}
		lines = append(lines, p)
	}
	if len(lines) == 0 {
		return nil, nil
	}
	// DOCX has no page boundaries, treat the whole document as one page
	return []models.Page{{Text: strings.Join(lines, "\n"), Number: 1}}, nil
}

// extractPPTX reads slide XML straight from the pptx archive, one Page per
// slide. Text runs live in <a:t> elements; each run becomes one line so slide
// bullets keep their line structure.
func extractPPTX(path string) ([]models.Page, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}
	defer r.Close()

	var pages []models.Page
	slide := 0
	for _, file := range r.File {
		if !strings.HasPrefix(file.Name, "ppt/slides/slide") || !strings.HasSuffix(file.Name, ".xml") {
			continue
		}
		slide++
		rc, err := file.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		text := extractSlideText(string(data))
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, models.Page{Text: text, Number: slide})
	}
	return pages, nil
}

func extractSlideText(xmlContent string) string {
	var lines []string
	for _, part := range strings.Split(xmlContent, "<a:t>")[1:] {
		run := part
		if end := strings.Index(part, "</a:t>"); end >= 0 {
			run = part[:end]
		}
		if strings.TrimSpace(run) == "" {
			continue
		}
		lines = append(lines, run)
	}
	return strings.Join(lines, "\n")
}

func extractXLSX(path string) ([]models.Page, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	var pages []models.Page
	for sheetNum, sheet := range f.Sheets {
		var text strings.Builder
		for _, row := range sheet.Rows {
			var cells []string
			for _, cell := range row.Cells {
				cells = append(cells, cell.String())
			}
			line := strings.TrimSpace(strings.Join(cells, " "))
			if line == "" {
				continue
			}
			text.WriteString(line)
			text.WriteString("\n")
		}
		if strings.TrimSpace(text.String()) == "" {
			continue
		}
		pages = append(pages, models.Page{Text: text.String(), Number: sheetNum + 1})
	}
	return pages, nil
}

func extractODS(path string) ([]models.Page, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}
	defer f.Close()

	var pages []models.Page
	for sheetNum, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		var text strings.Builder
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, " "))
			if line == "" {
				continue
			}
			text.WriteString(line)
			text.WriteString("\n")
		}
		if strings.TrimSpace(text.String()) == "" {
			continue
		}
		pages = append(pages, models.Page{Text: text.String(), Number: sheetNum + 1})
	}
	return pages, nil
}

// extractMarkdown walks the goldmark AST and collects the plain text of each
// block, one line per block, so the chunker sees the same line structure as
// with other formats.
func extractMarkdown(path string) ([]models.Page, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(src))

	var buf strings.Builder
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				buf.Write(t.Segment.Value(src))
				if t.SoftLineBreak() || t.HardLineBreak() {
					buf.WriteString("\n")
				}
			}
			return ast.WalkContinue, nil
		}
		if n.Type() == ast.TypeBlock && buf.Len() > 0 && !strings.HasSuffix(buf.String(), "\n") {
			buf.WriteString("\n")
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	if strings.TrimSpace(buf.String()) == "" {
		return nil, nil
	}
	return []models.Page{{Text: buf.String(), Number: 1}}, nil
}
