package internal

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mholt/archives"
	"go.uber.org/zap"
)

// Staging is the per-run temporary workspace. Archive entries are
// materialized under Root/input (after the path-containment check), the
// metadata writer mutates them there, and the output plan is packed from
// the same copies. Close removes everything.
type Staging struct {
	Root     string
	InputDir string

	log   *zap.Logger
	media []MediaFile
	// all staged non-directory entries, keyed by archive-relative path,
	// used for sidecar pairing
	staged map[string]string
	// staged .json entries in archive order, for export-type detection
	jsonFiles []string
}

func NewStaging(logger *zap.Logger) (*Staging, error) {
	root := filepath.Join(os.TempDir(), "photofix-"+uuid.NewString())
	inputDir := filepath.Join(root, "input")
	if err := os.MkdirAll(inputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	return &Staging{
		Root:     root,
		InputDir: inputDir,
		log:      logger,
		staged:   make(map[string]string),
	}, nil
}

func (s *Staging) Close() {
	if err := os.RemoveAll(s.Root); err != nil {
		s.log.Warn("failed to remove staging directory",
			zap.String("root", s.Root),
			zap.Error(err))
	}
}

// MediaFiles returns the staged media entries in original archive order,
// each paired with its sidecar when one was found.
func (s *Staging) MediaFiles() []MediaFile {
	return s.media
}

// UnpackArchive extracts the archive into the staging workspace. Any entry
// whose resolved path would escape the extraction root is dropped before it
// reaches the resolution engine. Failure to identify or walk the archive is
// the one batch-fatal condition.
func (s *Staging) UnpackArchive(ctx context.Context, archivePath string, cfg *Config) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrArchiveStructure, err)
	}
	defer f.Close()

	format, input, err := archives.Identify(ctx, archivePath, f)
	if err != nil {
		return fmt.Errorf("%w: unrecognized archive format: %v", ErrArchiveStructure, err)
	}
	extractor, ok := format.(archives.Extractor)
	if !ok {
		return fmt.Errorf("%w: %s is not an extractable archive", ErrArchiveStructure, archivePath)
	}

	err = extractor.Extract(ctx, input, func(ctx context.Context, info archives.FileInfo) error {
		if info.IsDir() {
			return nil
		}
		rel, ok := s.containedPath(info.NameInArchive)
		if !ok {
			s.log.Warn("dropping archive entry with unsafe path",
				zap.String("entry", info.NameInArchive))
			return nil
		}

		dest := filepath.Join(s.InputDir, filepath.FromSlash(rel))
		if err := copyEntry(info, dest); err != nil {
			s.log.Warn("failed to extract archive entry",
				zap.String("entry", rel),
				zap.Error(err))
			return nil
		}
		if !info.ModTime().IsZero() {
			// Preserve the entry's own time for the mtime fallback tier.
			if err := os.Chtimes(dest, info.ModTime(), info.ModTime()); err != nil {
				s.log.Debug("failed to preserve entry mtime", zap.String("entry", rel), zap.Error(err))
			}
		}
		s.record(rel, dest, cfg)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrArchiveStructure, err)
	}

	s.pairSidecars()
	return nil
}

// StageDirectory copies an already-unpacked directory tree into the
// workspace so that metadata writes never touch the caller's originals.
func (s *Staging) StageDirectory(dir string, cfg *Config) error {
	err := filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		dest := filepath.Join(s.InputDir, filepath.FromSlash(rel))
		if err := copyPath(p, dest); err != nil {
			return err
		}
		if err := os.Chtimes(dest, info.ModTime(), info.ModTime()); err != nil {
			s.log.Debug("failed to preserve file mtime", zap.String("file", rel), zap.Error(err))
		}
		s.record(rel, dest, cfg)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrArchiveStructure, err)
	}

	s.pairSidecars()
	return nil
}

// containedPath normalizes an archive entry name and reports whether it
// stays inside the extraction root. Absolute paths and traversal via ".."
// are rejected.
func (s *Staging) containedPath(name string) (string, bool) {
	rel := path.Clean(strings.ReplaceAll(name, `\`, "/"))
	if rel == "." || rel == "" {
		return "", false
	}
	if path.IsAbs(rel) || strings.HasPrefix(rel, "../") || rel == ".." {
		return "", false
	}
	// Belt and suspenders: verify the joined path is a descendant of the root.
	dest := filepath.Join(s.InputDir, filepath.FromSlash(rel))
	if dest != s.InputDir && !strings.HasPrefix(dest, s.InputDir+string(os.PathSeparator)) {
		return "", false
	}
	return rel, true
}

func (s *Staging) record(rel, dest string, cfg *Config) {
	s.staged[rel] = dest
	switch {
	case cfg.IsImage(rel):
		var modTime time.Time
		if st, err := os.Stat(dest); err == nil {
			modTime = st.ModTime()
		}
		s.media = append(s.media, MediaFile{
			RelPath: rel,
			Path:    dest,
			Index:   len(s.media),
			ModTime: modTime,
		})
	case strings.HasSuffix(strings.ToLower(rel), ".json"):
		s.jsonFiles = append(s.jsonFiles, dest)
	}
}

func (s *Staging) pairSidecars() {
	for i := range s.media {
		for _, candidate := range sidecarCandidates(s.media[i].RelPath) {
			if abs, ok := s.staged[candidate]; ok {
				s.media[i].SidecarPath = abs
				break
			}
		}
	}
}

// PackOutput writes the plan into a zip at outPath. The archive is
// assembled under a temporary name and renamed into place only on success,
// so a cancelled or failed batch leaves no partial output visible.
func PackOutput(ctx context.Context, plan []PlanEntry, outPath string) error {
	files := make([]archives.FileInfo, 0, len(plan))
	for _, entry := range plan {
		st, err := os.Stat(entry.Source.Path)
		if err != nil {
			return fmt.Errorf("failed to stat staged file %s: %w", entry.Source.Path, err)
		}
		src := entry.Source.Path
		files = append(files, archives.FileInfo{
			FileInfo:      st,
			NameInArchive: entry.OutputPath,
			Open: func() (fs.File, error) {
				return os.Open(src)
			},
		})
	}

	tmp := outPath + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create output archive: %w", err)
	}

	if err := (archives.Zip{}).Archive(ctx, out, files); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write output archive: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, outPath)
}

func copyEntry(info archives.FileInfo, dest string) error {
	r, err := info.Open()
	if err != nil {
		return err
	}
	defer r.Close()
	return writeFileFrom(r, dest)
}

func copyPath(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	return writeFileFrom(in, dest)
}

func writeFileFrom(r io.Reader, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	return out.Close()
}
