package raster

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageFromName(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		want        int
		expectError bool
	}{
		{name: "valid page file", filename: "page_1_image_1.png", want: 1},
		{name: "valid page file with jpg", filename: "page_10_image_2.jpg", want: 10},
		{name: "not a page file", filename: "image_1.png", expectError: true},
		{name: "invalid format", filename: "page_", expectError: true},
		{name: "invalid page number", filename: "page_abc_image_1.png", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePageFromName(tt.filename)
			if tt.expectError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCollectPageImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"page_2_image_1.png",
		"page_1_image_1.png",
		"page_1_image_2.png",
		"unrelated.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}

	pages, err := collectPageImages(dir)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].Page)
	assert.Equal(t, 2, pages[1].Page)
}

func TestCollectOrderedImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"page-03.png", "page-01.png", "page-02.png", "cover.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}

	pages, err := collectOrderedImages(dir, "page-*.png")
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{pages[0].Page, pages[1].Page, pages[2].Page})
}

func TestConvertFailures(t *testing.T) {
	c := NewConverter(DefaultConfig(), nil)

	t.Run("rejects non-positive page count", func(t *testing.T) {
		_, err := c.Convert(context.Background(), "whatever.pdf", 0)
		assert.Error(t, err)
	})

	t.Run("all strategies fail on garbage input", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "junk.pdf")
		require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o600))
		_, err := c.Convert(context.Background(), path, 1)
		require.Error(t, err)
	})

	t.Run("cancelled context stops the cascade", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.Convert(ctx, "whatever.pdf", 1)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestPrepareForOCR(t *testing.T) {
	dir := t.TempDir()

	writeImage := func(name string, width, height int) string {
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				img.Set(x, y, color.RGBA{200, 100, 50, 255})
			}
		}
		path := filepath.Join(dir, name)
		require.NoError(t, imaging.Save(img, path))
		return path
	}

	t.Run("small render is upscaled", func(t *testing.T) {
		path := writeImage("small.png", 200, 100)
		out, err := PrepareForOCR(path)
		require.NoError(t, err)
		processed, err := imaging.Open(out)
		require.NoError(t, err)
		assert.Equal(t, 400, processed.Bounds().Dx())
	})

	t.Run("large render keeps its size", func(t *testing.T) {
		path := writeImage("large.png", 1200, 100)
		out, err := PrepareForOCR(path)
		require.NoError(t, err)
		processed, err := imaging.Open(out)
		require.NoError(t, err)
		assert.Equal(t, 1200, processed.Bounds().Dx())
	})

	t.Run("missing input errors", func(t *testing.T) {
		_, err := PrepareForOCR(filepath.Join(dir, "missing.png"))
		assert.Error(t, err)
	})
}
