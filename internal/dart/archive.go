package dart

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// maxExtractBytes caps the total uncompressed size of one filing archive.
var maxExtractBytes int64 = 1 << 30

// ExtractReportFile unpacks a filing archive under destBase and picks the
// report document: an XML file at the archive root, else an HTML file at the
// root, else the largest XML/HTML file anywhere. It returns the chosen file
// and its lower-cased extension.
func ExtractReportFile(zipPath, destBase string) (string, string, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrBadArchive, err)
	}
	defer zr.Close()

	name := strings.TrimSuffix(filepath.Base(zipPath), filepath.Ext(zipPath))
	extractDir := filepath.Join(destBase, name+"_extracted")
	if err := os.RemoveAll(extractDir); err != nil {
		return "", "", fmt.Errorf("clear extract dir: %w", err)
	}
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create extract dir: %w", err)
	}

	type entry struct {
		rel  string
		path string
		size uint64
	}
	var entries []entry
	budget := maxExtractBytes
	for _, f := range zr.File {
		rel := path.Clean(strings.ReplaceAll(f.Name, "\\", "/"))
		if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") || path.IsAbs(rel) {
			return "", "", fmt.Errorf("%w: unsafe entry %q", ErrBadArchive, f.Name)
		}
		dest := filepath.Join(extractDir, filepath.FromSlash(rel))
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return "", "", fmt.Errorf("create dir: %w", err)
			}
			continue
		}
		n, err := extractEntry(f, dest, budget)
		if err != nil {
			return "", "", err
		}
		budget -= n
		entries = append(entries, entry{rel: rel, path: dest, size: f.UncompressedSize64})
	}

	atRoot := func(e entry) bool { return !strings.Contains(e.rel, "/") }
	for _, e := range entries {
		if atRoot(e) && reportExt(e.rel) == ".xml" {
			return e.path, ".xml", nil
		}
	}
	for _, e := range entries {
		if ext := reportExt(e.rel); atRoot(e) && (ext == ".html" || ext == ".htm") {
			return e.path, ext, nil
		}
	}
	var best *entry
	for i, e := range entries {
		if reportExt(e.rel) == "" {
			continue
		}
		if best == nil || e.size > best.size {
			best = &entries[i]
		}
	}
	if best != nil {
		return best.path, reportExt(best.rel), nil
	}
	return "", "", fmt.Errorf("%w: no xml or html document in %s", ErrBadArchive, zipPath)
}

func reportExt(name string) string {
	switch ext := strings.ToLower(path.Ext(name)); ext {
	case ".xml", ".html", ".htm":
		return ext
	}
	return ""
}

// extractEntry writes f to dest, reading at most budget bytes, and returns
// the number of bytes written.
func extractEntry(f *zip.File, dest string, budget int64) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, fmt.Errorf("create dir: %w", err)
	}
	rc, err := f.Open()
	if err != nil {
		return 0, fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", dest, err)
	}
	n, err := io.Copy(out, io.LimitReader(rc, budget+1))
	if err != nil {
		out.Close()
		return n, fmt.Errorf("extract %s: %w", f.Name, err)
	}
	if n > budget {
		out.Close()
		return n, fmt.Errorf("%w: archive expands past %d bytes", ErrBadArchive, maxExtractBytes)
	}
	return n, out.Close()
}
