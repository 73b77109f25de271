package loader

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMissingFile(t *testing.T) {
	_, err := Extract(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestExtractUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.png")
	require.NoError(t, os.WriteFile(path, []byte("binary"), 0o644))

	_, err := Extract(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtractText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.txt")
	content := "Toyota Corolla 2020\nHonda Civic 2019"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	pages, err := Extract(path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, content, pages[0].Text)
}

func TestExtractEmptyText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("   \n\t"), 0o644))

	pages, err := Extract(path)
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestExtractMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.md")
	content := "# Stock Report\n\nToyota Corolla 2020\n\n- Honda Civic 2019\n- Ford Focus 2021\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	pages, err := Extract(path)
	require.NoError(t, err)
	require.Len(t, pages, 1)

	assert.Contains(t, pages[0].Text, "Stock Report")
	assert.Contains(t, pages[0].Text, "Toyota Corolla 2020")
	assert.Contains(t, pages[0].Text, "Ford Focus 2021")
	assert.NotContains(t, pages[0].Text, "#")
	assert.NotContains(t, pages[0].Text, "- ")
}

func writePPTX(t *testing.T, slides ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inventory.pptx")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for i, slide := range slides {
		sw, err := w.Create(fmt.Sprintf("ppt/slides/slide%d.xml", i+1))
		require.NoError(t, err)
		_, err = sw.Write([]byte(slide))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

func TestExtractPPTX(t *testing.T) {
	path := writePPTX(t,
		`<p:sld><p:txBody><a:p><a:r><a:t>Toyota Corolla 2020</a:t></a:r><a:r><a:t>Price: $18,500</a:t></a:r></a:p></p:txBody></p:sld>`,
		`<p:sld><p:txBody><a:p><a:r><a:t>Honda Civic 2019</a:t></a:r></a:p></p:txBody></p:sld>`,
	)

	pages, err := Extract(path)
	require.NoError(t, err)
	require.Len(t, pages, 2)

	assert.Equal(t, 1, pages[0].Number)
	assert.Contains(t, pages[0].Text, "Toyota Corolla 2020")
	assert.Contains(t, pages[0].Text, "Price: $18,500")
	assert.Equal(t, 2, pages[1].Number)
	assert.Contains(t, pages[1].Text, "Honda Civic 2019")
	assert.NotContains(t, pages[0].Text, "<a:t>")
}

func TestExtractCorruptPPTX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pptx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

	_, err := Extract(path)
	assert.ErrorIs(t, err, ErrUnreadableDocument)
}

func TestExtractCorruptPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0o644))

	_, err := Extract(path)
	assert.ErrorIs(t, err, ErrUnreadableDocument)
}
