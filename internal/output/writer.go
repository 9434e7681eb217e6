package output

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
)

// WriteError reports a failure to produce one artifact file.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Stat describes a file written by a FileWriter.
type Stat struct {
	Path   string
	Size   int64
	Digest string
}

// FileWriter writes one artifact. Content goes to a temporary file in the
// destination directory which is renamed into place only after everything
// was written and closed, so a failed write never leaves a partial artifact.
type FileWriter struct {
	path   string
	perm   os.FileMode
	logger *slog.Logger
}

// FileWriterOption configures a FileWriter.
type FileWriterOption func(*FileWriter)

// WithPermissions overrides the default file permissions (0644).
func WithPermissions(perm os.FileMode) FileWriterOption {
	return func(fw *FileWriter) {
		fw.perm = perm
	}
}

// WithLogger sets a logger for the FileWriter.
func WithLogger(logger *slog.Logger) FileWriterOption {
	return func(fw *FileWriter) {
		fw.logger = logger
	}
}

// NewFileWriter creates a writer that writes to the specified file path.
func NewFileWriter(path string, opts ...FileWriterOption) *FileWriter {
	fw := &FileWriter{
		path:   path,
		perm:   0o644,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(fw)
	}

	return fw
}

// Path returns the output file path.
func (fw *FileWriter) Path() string {
	return fw.path
}

// Write writes data to the file.
func (fw *FileWriter) Write(data []byte) (Stat, error) {
	return fw.WriteWith(func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// WriteWith streams the output of fn into the file. If fn or any file
// operation fails, the temporary file is removed together with any
// previous artifact at the destination, and a *WriteError is returned.
func (fw *FileWriter) WriteWith(fn func(io.Writer) error) (stat Stat, err error) {
	dir := filepath.Dir(fw.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return Stat{}, &WriteError{Path: fw.path, Err: fmt.Errorf("creating directory %s: %w", dir, err)}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fw.path)+".tmp-*")
	if err != nil {
		return Stat{}, &WriteError{Path: fw.path, Err: err}
	}

	closed := false

	defer func() {
		if !closed {
			_ = tmp.Close()
		}

		if err != nil {
			_ = os.Remove(tmp.Name())
			fw.discardStale()
		}
	}()

	hasher := blake3.New()
	counter := &countingWriter{}

	if err = fn(io.MultiWriter(tmp, hasher, counter)); err != nil {
		return Stat{}, &WriteError{Path: fw.path, Err: err}
	}

	if err = tmp.Chmod(fw.perm); err != nil {
		return Stat{}, &WriteError{Path: fw.path, Err: err}
	}

	closed = true
	if err = tmp.Close(); err != nil {
		return Stat{}, &WriteError{Path: fw.path, Err: err}
	}

	if _, statErr := os.Stat(fw.path); statErr == nil {
		fw.logger.Debug("overwriting existing file", slog.String("path", fw.path))
	}

	if err = os.Rename(tmp.Name(), fw.path); err != nil {
		return Stat{}, &WriteError{Path: fw.path, Err: err}
	}

	return Stat{
		Path:   fw.path,
		Size:   counter.n,
		Digest: formatDigest(hasher.Sum(nil)),
	}, nil
}

// discardStale removes an artifact left from a previous run so that a failed
// write never leaves outdated output behind.
func (fw *FileWriter) discardStale() {
	err := os.Remove(fw.path)
	if err == nil {
		fw.logger.Warn("removed stale artifact after failed write", slog.String("path", fw.path))
		return
	}

	if !errors.Is(err, os.ErrNotExist) {
		fw.logger.Error("removing stale artifact", slog.String("path", fw.path), slog.Any("error", err))
	}
}

type countingWriter struct {
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}

// Digest returns the BLAKE3 digest of data in the form used by reports.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return formatDigest(sum[:])
}

func formatDigest(sum []byte) string {
	return "blake3:" + hex.EncodeToString(sum)
}
