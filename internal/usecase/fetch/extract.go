package fetch

import (
	"archive/zip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ILYXAAA/SecretsScanner-service/internal/entity"
	"github.com/ILYXAAA/SecretsScanner-service/internal/usecase/catalog"
)

const maxPathLength = 250
const truncatedBasenameLength = 100

func readAll(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// extractZipStream buffers the response body to a temp file (archive/zip
// needs ReaderAt) and extracts it under the same safety rules as
// extractZipFile.
func extractZipStream(body io.Reader, destDir string, cat *catalog.Catalog) (string, error) {
	tmp, err := os.CreateTemp("", "scan-archive-*.zip")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, body); err != nil {
		return "", fmt.Errorf("%w: %v", entity.ErrFetch, err)
	}

	return extractZipFile(tmp.Name(), destDir, cat)
}

// extractZipFile implements original_source's safe_extract: entries with
// absolute paths or ".." are rejected, excluded basenames/extensions are
// skipped, and overlong paths have their basename truncated to 100 chars.
func extractZipFile(zipPath, destDir string, cat *catalog.Catalog) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", entity.ErrFetch, err)
	}
	defer r.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}

	for _, f := range r.File {
		if err := extractEntry(f, destDir, cat); err != nil {
			return "", fmt.Errorf("%w: %v", entity.ErrFetch, err)
		}
	}

	return destDir, nil
}

func extractEntry(f *zip.File, destDir string, cat *catalog.Catalog) error {
	name := f.Name
	if filepath.IsAbs(name) || strings.Contains(name, "..") {
		return nil
	}

	basename := filepath.Base(name)
	if cat.IsExcluded(basename) {
		return nil
	}

	fullPath := filepath.Join(destDir, name)
	if len(fullPath) > maxPathLength {
		dir := filepath.Dir(fullPath)
		truncated := basename
		if len(truncated) > truncatedBasenameLength {
			truncated = truncated[:truncatedBasenameLength]
		}
		fullPath = filepath.Join(dir, truncated)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(fullPath, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(fullPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
