package archive

import (
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/ksmm-dev/ksmm/pkg/errors"
	"github.com/ksmm-dev/ksmm/pkg/logging"
	"github.com/ksmm-dev/ksmm/pkg/types"
	"github.com/rs/zerolog"
)

// EntryMode is the permission every archive entry carries
const EntryMode fs.FileMode = 0755

const partialSuffix = ".partial"

// Entry describes one member of a written archive
type Entry struct {
	Name  string // slash-separated, directories end with "/"
	IsDir bool
	Size  int64
}

// Archive is the result of a successful Package call
type Archive struct {
	Path    string
	Entries []Entry
}

// Names returns the entry names in archive order
func (a *Archive) Names() []string {
	names := make([]string, len(a.Entries))
	for i, e := range a.Entries {
		names[i] = e.Name
	}
	return names
}

// Writer packages directory trees
type Writer struct {
	fs     types.FS
	level  int
	logger zerolog.Logger
}

// NewWriter creates a writer using the best deflate level
func NewWriter(fsys types.FS) *Writer {
	return &Writer{
		fs:     fsys,
		level:  flate.BestCompression,
		logger: logging.GetLogger("archive"),
	}
}

// Package writes every entry under root into a zip at dest. On failure
// no file is left at dest or at its partial path.
func (w *Writer) Package(root, dest string) (*Archive, error) {
	done := logging.LogOperationStart(w.logger, "package")
	defer done()

	if err := w.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "failed to create release directory for %s", dest)
	}

	partial := dest + partialSuffix
	entries, err := w.writePartial(root, partial)
	if err != nil {
		if rmErr := w.fs.Remove(partial); rmErr != nil {
			w.logger.Debug().Err(rmErr).Str("path", partial).Msg("Could not remove partial archive")
		}
		return nil, err
	}

	if err := w.fs.Rename(partial, dest); err != nil {
		_ = w.fs.Remove(partial)
		return nil, errors.Wrapf(err, errors.ErrArchiveWrite, "failed to move archive into place at %s", dest)
	}

	w.logger.Info().
		Str("archive", dest).
		Int("entries", len(entries)).
		Msg("Archive written")

	return &Archive{Path: dest, Entries: entries}, nil
}

func (w *Writer) writePartial(root, partial string) (entries []Entry, err error) {
	out, err := w.fs.Create(partial)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrArchiveWrite, "failed to create %s", partial)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, errors.ErrArchiveWrite, "failed to close %s", partial)
		}
	}()

	zw := zip.NewWriter(out)
	level := w.level
	zw.RegisterCompressor(zip.Deflate, func(dst io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(dst, level)
	})

	entries, err = w.addDir(zw, root, "", nil)
	if err != nil {
		_ = zw.Close()
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrArchiveWrite, "failed to finalize %s", partial)
	}
	return entries, nil
}

// addDir writes the entries under dir. parents holds the directories
// being walked so a symlink pointing back up the tree is not followed.
func (w *Writer) addDir(zw *zip.Writer, dir, relDir string, parents []fs.FileInfo) ([]Entry, error) {
	dirInfo, err := w.fs.Stat(dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrArchiveWrite, "failed to stat %s", dir)
	}
	parents = append(parents, dirInfo)

	children, err := w.fs.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrArchiveWrite, "failed to read %s", dir)
	}

	var entries []Entry
	for _, child := range children {
		rel := path.Join(relDir, child.Name())
		full := filepath.Join(dir, child.Name())

		info, err := child.Info()
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrArchiveWrite, "failed to stat %s", full)
		}

		// Symlinks are stored as the file or directory they point to
		if child.Type()&fs.ModeSymlink != 0 {
			info, err = w.fs.Stat(full)
			if err != nil {
				w.logger.Warn().Err(err).Str("entry", rel).Msg("Skipping dangling symlink")
				continue
			}
			if info.IsDir() && isParent(parents, info) {
				w.logger.Warn().Str("entry", rel).Msg("Skipping symlink that loops back to a parent directory")
				continue
			}
		}

		if info.IsDir() {
			header := &zip.FileHeader{
				Name:     rel + "/",
				Method:   zip.Store,
				Modified: info.ModTime(),
			}
			header.SetMode(fs.ModeDir | EntryMode)
			if _, err := zw.CreateHeader(header); err != nil {
				return nil, errors.Wrapf(err, errors.ErrArchiveWrite, "failed to add directory %s", rel)
			}
			w.logger.Trace().Str("entry", header.Name).Msg("Added directory")
			entries = append(entries, Entry{Name: header.Name, IsDir: true})

			sub, err := w.addDir(zw, full, rel, parents)
			if err != nil {
				return nil, err
			}
			entries = append(entries, sub...)
			continue
		}

		size, err := w.addFile(zw, full, rel, info)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: rel, Size: size})
	}
	return entries, nil
}

func isParent(parents []fs.FileInfo, info fs.FileInfo) bool {
	for _, p := range parents {
		if os.SameFile(p, info) {
			return true
		}
	}
	return false
}

func (w *Writer) addFile(zw *zip.Writer, full, rel string, info fs.FileInfo) (int64, error) {
	header := &zip.FileHeader{
		Name:     rel,
		Method:   zip.Deflate,
		Modified: info.ModTime(),
	}
	header.SetMode(EntryMode)

	dst, err := zw.CreateHeader(header)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrArchiveWrite, "failed to add %s", rel)
	}

	src, err := w.fs.Open(full)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrArchiveWrite, "failed to open %s", full)
	}
	defer src.Close()

	n, err := io.Copy(dst, src)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrArchiveWrite, "failed to compress %s", full)
	}

	w.logger.Trace().Str("entry", rel).Int64("bytes", n).Msg("Added file")
	return n, nil
}
