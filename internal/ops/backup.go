package ops

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Manifest summarizes one archive.
type Manifest struct {
	Archive string `json:"archive"`
	Files   int    `json:"files"`
	Bytes   int64  `json:"bytes"`
	Digest  string `json:"digest"`
}

// skipped reports files that are never archived: in-flight temp files of the
// prefs file store and sqlite sidecars that are rebuilt on open.
func skipped(name string) bool {
	base := filepath.Base(name)
	return strings.HasPrefix(base, ".prefs-") ||
		strings.HasSuffix(base, ".tmp") ||
		strings.HasSuffix(base, "-shm")
}

// ArchiveName is the default archive path under dir for time t.
func ArchiveName(dir string, t time.Time) string {
	return filepath.Join(dir, "mindhop-"+t.UTC().Format("20060102T150405Z")+".tar.gz")
}

// BackupDataDir writes srcDir as a gzipped tarball to archivePath.
func BackupDataDir(srcDir, archivePath string) (Manifest, error) {
	if strings.TrimSpace(srcDir) == "" || strings.TrimSpace(archivePath) == "" {
		return Manifest{}, errors.New("srcDir and archivePath are required")
	}
	srcDir = filepath.Clean(strings.TrimSpace(srcDir))
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	info, err := os.Stat(srcDir)
	if err != nil {
		return Manifest{}, err
	}
	if !info.IsDir() {
		return Manifest{}, fmt.Errorf("source is not a directory: %s", srcDir)
	}
	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return Manifest{}, err
	}

	f, err := os.Create(archivePath)
	if err != nil {
		return Manifest{}, err
	}
	m := Manifest{Archive: archivePath}
	if err := writeArchive(f, srcDir, &m); err != nil {
		_ = f.Close()
		_ = os.Remove(archivePath)
		return Manifest{}, err
	}
	if err := f.Close(); err != nil {
		return Manifest{}, err
	}

	m.Digest, err = DirDigest(srcDir)
	if err != nil {
		return Manifest{}, err
	}
	return m, nil
}

func writeArchive(w io.Writer, srcDir string, m *Manifest) error {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == srcDir || d.Type()&os.ModeSymlink != 0 || skipped(path) {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if info.IsDir() {
			hdr.Name += "/"
			return tw.WriteHeader(hdr)
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		n, err := copyFile(tw, path)
		if err != nil {
			return fmt.Errorf("archive %s: %w", hdr.Name, err)
		}
		m.Files++
		m.Bytes += n
		return nil
	})
	if err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return gz.Close()
}

func copyFile(w io.Writer, path string) (int64, error) {
	src, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer src.Close()
	return io.Copy(w, src)
}

// RestoreDataDir unpacks archivePath into targetDir. Entries that would land
// outside targetDir are rejected.
func RestoreDataDir(archivePath, targetDir string) error {
	if strings.TrimSpace(archivePath) == "" || strings.TrimSpace(targetDir) == "" {
		return errors.New("archivePath and targetDir are required")
	}
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	targetDir = filepath.Clean(strings.TrimSpace(targetDir))
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return err
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("open %s: %w", archivePath, err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		rel, err := safeRelPath(hdr.Name)
		if err != nil {
			return err
		}
		out := filepath.Join(targetDir, rel)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(out, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeEntry(out, tr, os.FileMode(hdr.Mode).Perm()); err != nil {
				return err
			}
		}
	}
}

func writeEntry(path string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, r); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}

func safeRelPath(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimSpace(name)))
	switch {
	case clean == "." || clean == "":
		return "", errors.New("invalid archive entry path")
	case filepath.IsAbs(clean):
		return "", fmt.Errorf("absolute archive entry path: %s", name)
	case clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)):
		return "", fmt.Errorf("archive entry escapes target: %s", name)
	}
	return clean, nil
}

// DirDigest hashes the relative paths and contents of every archived file
// under root in lexical order.
func DirDigest(root string) (string, error) {
	root = filepath.Clean(root)
	var entries []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Type()&os.ModeSymlink != 0 || skipped(path) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		entries = append(entries, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Strings(entries)

	h := sha256.New()
	for _, rel := range entries {
		_, _ = io.WriteString(h, rel+"\n")
		if _, err := copyFile(h, filepath.Join(root, filepath.FromSlash(rel))); err != nil {
			return "", err
		}
		_, _ = io.WriteString(h, "\n")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Drill backs dataDir up into workDir, restores it next to the archive and
// checks the digests match.
func Drill(dataDir, workDir string, now time.Time) (Manifest, string, error) {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return Manifest{}, "", err
	}
	m, err := BackupDataDir(dataDir, ArchiveName(workDir, now))
	if err != nil {
		return Manifest{}, "", err
	}
	restoreDir := strings.TrimSuffix(m.Archive, ".tar.gz") + "-restore"
	if err := RestoreDataDir(m.Archive, restoreDir); err != nil {
		return m, "", err
	}
	got, err := DirDigest(restoreDir)
	if err != nil {
		return m, restoreDir, err
	}
	if got != m.Digest {
		return m, restoreDir, fmt.Errorf("digest mismatch after restore: src=%s restored=%s", m.Digest, got)
	}
	return m, restoreDir, nil
}
