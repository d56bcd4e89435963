package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmptyFilename = errors.New("blobstore: empty filename")
	ErrForeignRef    = errors.New("blobstore: ref not owned by this store")
)

// Store keeps opaque blobs (receipts) and hands back a reference that is
// stored next to the request.
type Store interface {
	Put(ctx context.Context, filename string, r io.Reader) (string, error)
	// Delete removes a blob by the ref Put returned. Unknown refs are a no-op.
	Delete(ctx context.Context, ref string) error
}

// LocalStore writes blobs into a directory and returns refs of the form
// <prefix>/<name>.
type LocalStore struct {
	dir    string
	prefix string
	logger *zap.Logger
}

func NewLocalStore(dir, prefix string, logger ...*zap.Logger) (*LocalStore, error) {
	l := zap.L().Named("blobstore.local")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("blobstore.local")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if prefix == "" {
		prefix = "/uploads"
	}
	return &LocalStore{dir: dir, prefix: strings.TrimRight(prefix, "/"), logger: l}, nil
}

func (s *LocalStore) Put(ctx context.Context, filename string, r io.Reader) (string, error) {
	base := sanitize(filename)
	if base == "" {
		return "", ErrEmptyFilename
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.NewString() + "-" + base
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		return "", err
	}

	s.logger.Debug("blob stored", zap.String("name", name), zap.Int64("bytes", n))
	return path.Join(s.prefix, name), nil
}

func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, ok := strings.CutPrefix(ref, s.prefix+"/")
	if !ok || name == "" || sanitize(name) != name {
		return ErrForeignRef
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	s.logger.Debug("blob deleted", zap.String("name", name))
	return nil
}

// sanitize keeps only the base name of a client supplied filename.
func sanitize(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.TrimSpace(base)
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return strings.ReplaceAll(base, " ", "_")
}
