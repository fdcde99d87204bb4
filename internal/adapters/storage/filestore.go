// Package storage implements a bucket-scoped blob store on the local
// filesystem. Buckets are directories under a root; object paths are relative
// paths inside a bucket. There is no link between blob operations and
// database rows; callers sequence and clean up themselves.
package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/workdeckhq/workdeck/internal/domain"
)

type FileStore struct {
	root      string
	baseURL   string
	signKey   []byte
	publicSet map[string]bool
}

// NewFileStore creates a store rooted at dir. baseURL is the externally
// visible prefix public URLs are built from (e.g. http://localhost:8080).
// signKey signs time-limited URLs for private buckets.
func NewFileStore(dir, baseURL string, signKey []byte) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("storage dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{
		root:      dir,
		baseURL:   strings.TrimRight(baseURL, "/"),
		signKey:   signKey,
		publicSet: make(map[string]bool),
	}, nil
}

// EnsureBucket is idempotent: creating an existing bucket only refreshes its
// visibility flag.
func (s *FileStore) EnsureBucket(bucket string, public bool) error {
	if err := validBucket(bucket); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(s.root, bucket), 0o755); err != nil {
		return err
	}
	s.publicSet[bucket] = public
	return nil
}

func (s *FileStore) IsPublic(bucket string) bool {
	return s.publicSet[bucket]
}

// Upload writes the reader's contents under the given path, or, when path is
// empty, under a generated collision-resistant one: a random prefix plus the
// sanitized original filename.
func (s *FileStore) Upload(bucket, objectPath, filename string, r io.Reader) (string, error) {
	if err := validBucket(bucket); err != nil {
		return "", err
	}
	if strings.TrimSpace(objectPath) == "" {
		objectPath = GeneratePath(filename)
	}
	cleaned, err := s.resolve(bucket, objectPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(cleaned), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(cleaned)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(cleaned)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return objectPath, nil
}

// GeneratePath builds a unique object path for an uploaded file: random
// prefix, then the original filename with whitespace collapsed to "_".
func GeneratePath(filename string) string {
	name := strings.TrimSpace(filename)
	if name == "" {
		name = "file"
	}
	name = strings.Join(strings.Fields(name), "_")
	return uuid.NewString() + "/" + name
}

func (s *FileStore) PublicURL(bucket, objectPath string) string {
	return s.baseURL + "/storage/" + bucket + "/" + strings.TrimLeft(objectPath, "/")
}

// SignedURL returns a public URL carrying an expiry and an HMAC token over
// bucket, path and expiry.
func (s *FileStore) SignedURL(bucket, objectPath string, expiresIn time.Duration) (string, error) {
	if err := validBucket(bucket); err != nil {
		return "", err
	}
	expires := time.Now().UTC().Add(expiresIn).Unix()
	token := s.sign(bucket, strings.TrimLeft(objectPath, "/"), expires)
	return fmt.Sprintf("%s?expires=%d&token=%s", s.PublicURL(bucket, objectPath), expires, token), nil
}

func (s *FileStore) VerifySignature(bucket, objectPath, token string, expires int64) bool {
	if time.Now().UTC().Unix() > expires {
		return false
	}
	expected := s.sign(bucket, strings.TrimLeft(objectPath, "/"), expires)
	return hmac.Equal([]byte(expected), []byte(token))
}

func (s *FileStore) sign(bucket, objectPath string, expires int64) string {
	mac := hmac.New(sha256.New, s.signKey)
	fmt.Fprintf(mac, "%s/%s:%d", bucket, objectPath, expires)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *FileStore) Open(bucket, objectPath string) (io.ReadCloser, error) {
	cleaned, err := s.resolve(bucket, objectPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(cleaned)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *FileStore) Delete(bucket, objectPath string) error {
	cleaned, err := s.resolve(bucket, objectPath)
	if err != nil {
		return err
	}
	if err := os.Remove(cleaned); err != nil {
		if os.IsNotExist(err) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *FileStore) List(bucket, prefix string) ([]domain.BlobEntry, error) {
	if err := validBucket(bucket); err != nil {
		return nil, err
	}
	base := filepath.Join(s.root, bucket)
	entries := make([]domain.BlobEntry, 0)
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(base, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if prefix != "" && !strings.HasPrefix(rel, strings.TrimLeft(prefix, "/")) {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return infoErr
		}
		entries = append(entries, domain.BlobEntry{Path: rel, Size: info.Size(), UpdatedAt: info.ModTime()})
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return entries, nil
}

func (s *FileStore) resolve(bucket, objectPath string) (string, error) {
	if err := validBucket(bucket); err != nil {
		return "", err
	}
	cleaned := path.Clean("/" + objectPath)
	if cleaned == "/" {
		return "", fmt.Errorf("object path is required")
	}
	return filepath.Join(s.root, bucket, filepath.FromSlash(cleaned)), nil
}

func validBucket(bucket string) error {
	if bucket == "" || strings.ContainsAny(bucket, "/\\.") {
		return fmt.Errorf("invalid bucket name %q", bucket)
	}
	return nil
}
