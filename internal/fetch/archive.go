package fetch

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"golang.org/x/exp/slices"
)

// SceneExtensions are the file extensions of renderable scene files.
var SceneExtensions = []string{".blend"}

var (
	ErrNoSceneFile = errors.New("archive contains no scene file")
	ErrUnsafePath  = errors.New("path escapes destination")
)

func IsSceneFile(name string) bool {
	return slices.Contains(SceneExtensions, strings.ToLower(path.Ext(name)))
}

// IsArchive reports whether the file at name is a zip archive.
func IsArchive(name string) (bool, error) {
	zr, err := zip.OpenReader(name)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return false, nil
		}
		return false, err
	}
	zr.Close()
	return true, nil
}

// Extract expands the zip archive into dir and returns the slash separated
// names of the extracted files in archive order.
func Extract(archive, dir string) ([]string, error) {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", archive, err)
	}
	defer zr.Close()

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		target, err := Resolve(dir, f.Name)
		if err != nil {
			return nil, err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return nil, err
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return nil, fmt.Errorf("extract %s: %w", f.Name, err)
		}
		names = append(names, f.Name)
	}
	return names, nil
}

// FirstScene returns the first name with a scene file extension.
func FirstScene(names []string) (string, bool) {
	i := slices.IndexFunc(names, IsSceneFile)
	if i < 0 {
		return "", false
	}
	return names[i], true
}

// Resolve joins a slash separated relative name to root and rejects names leaving root.
func Resolve(root, name string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	return target, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
