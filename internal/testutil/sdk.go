package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"snpeprep/internal/domain"
)

// SDKTree describes what NewSDKTree should lay down.
type SDKTree struct {
	Images     []string
	SkipModel  bool
	SkipLabels bool
	WithData   bool
}

// DefaultSDKTree is a complete tree with two sample images.
func DefaultSDKTree() SDKTree {
	return SDKTree{Images: []string{"chairs.jpg", "plastic_cup.jpg"}}
}

// NewSDKTree builds a fake SDK root under t.TempDir and returns its layout.
func NewSDKTree(t *testing.T, tree SDKTree) domain.Layout {
	t.Helper()

	layout := domain.NewLayout(t.TempDir())

	imageDir := filepath.Dir(layout.SampleImagesGlob())
	mustMkdir(t, imageDir)
	for _, name := range tree.Images {
		mustWrite(t, filepath.Join(imageDir, name), "jpeg:"+name)
	}
	// A non-jpg sibling must never be copied.
	mustWrite(t, filepath.Join(imageDir, "notes.txt"), "ignore me")

	if tree.SkipModel {
		return layout
	}

	mustMkdir(t, layout.ScriptsDir())
	mustMkdir(t, layout.TFLiteDir())
	if !tree.SkipLabels {
		mustWrite(t, layout.LabelsSource(), "tench\ngoldfish\n")
	}
	if tree.WithData {
		mustMkdir(t, layout.CroppedDir())
	}

	return layout
}

func mustMkdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", dir, err)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
