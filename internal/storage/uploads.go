// Package storage implements the upload target store for the invoice import
// pipeline: a write-once object store addressed by transaction id, fronted by
// signed, time-limited upload URLs (the presigned-URL analogue) and emitting
// an arrival notification per successful write.
//
// The store is backed by an afero filesystem so production uses the OS
// filesystem while tests run against an in-memory one with identical
// semantics.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/afero"
)

// writeOnceFlags create the object exclusively so two racing writers for the
// same key cannot both succeed.
const writeOnceFlags = os.O_WRONLY | os.O_CREATE | os.O_EXCL

// Storage errors.
var (
	// ErrSlotUsed is returned when a second object is written for the same
	// key: upload slots are write-once.
	ErrSlotUsed = errors.New("upload slot already used")

	// ErrInvalidToken is returned for upload tokens that are malformed,
	// tampered with, or expired.
	ErrInvalidToken = errors.New("invalid upload token")

	// ErrObjectNotFound is returned when the requested object is absent.
	ErrObjectNotFound = errors.New("object not found")
)

// Arrival is the notification emitted once per successfully stored object.
// Consumers must tolerate at-least-once delivery.
type Arrival struct {
	// Key is the object key, which equals the ledger transaction id.
	Key string
}

// uploadClaims binds a signed upload token to one object key.
type uploadClaims struct {
	jwt.RegisteredClaims
}

// UploadStore is a write-once object store with signed upload slots.
// It is safe for concurrent use.
type UploadStore struct {
	fs         afero.Fs
	dir        string
	signingKey []byte
	baseURL    string
	arrivals   chan Arrival
}

// NewUploadStore creates the backing directory if needed and returns a store
// whose signed URLs are rooted at baseURL (e.g. "http://host:8080/api/v1").
func NewUploadStore(fs afero.Fs, dir string, signingKey []byte, baseURL string) (*UploadStore, error) {
	if len(signingKey) == 0 {
		return nil, errors.New("storage: signing key must not be empty")
	}
	if err := fs.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("storage: create upload dir: %w", err)
	}
	return &UploadStore{
		fs:         fs,
		dir:        dir,
		signingKey: signingKey,
		baseURL:    baseURL,
		arrivals:   make(chan Arrival, 256),
	}, nil
}

// SignPutURL mints a write-once upload URL for key, valid for ttl. The
// returned expiresIn is the validity in whole seconds, as communicated to the
// client alongside the URL.
func (s *UploadStore) SignPutURL(key string, ttl time.Duration) (url string, expiresIn int64, err error) {
	now := time.Now()
	claims := uploadClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   key,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", 0, err
	}
	return s.baseURL + "/upload/" + token, int64(ttl.Seconds()), nil
}

// VerifyUploadToken validates a token from an upload URL and returns the
// object key it was minted for. Expired or tampered tokens yield
// ErrInvalidToken; the caller does not learn which.
func (s *UploadStore) VerifyUploadToken(token string) (key string, err error) {
	var claims uploadClaims
	_, err = jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// Put stores the object for key and emits an arrival notification. Each key
// accepts exactly one write; subsequent writes fail with ErrSlotUsed without
// touching the stored object.
func (s *UploadStore) Put(key string, r io.Reader) error {
	p := s.objectPath(key)
	if ok, err := afero.Exists(s.fs, p); err != nil {
		return err
	} else if ok {
		return ErrSlotUsed
	}

	f, err := s.fs.OpenFile(p, writeOnceFlags, 0o640)
	if err != nil {
		// A concurrent writer can win the race between the existence check
		// and the exclusive create; report that as a used slot too.
		return ErrSlotUsed
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(p)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	s.arrivals <- Arrival{Key: key}
	return nil
}

// Get returns the stored object bytes for key, or ErrObjectNotFound.
func (s *UploadStore) Get(key string) ([]byte, error) {
	b, err := afero.ReadFile(s.fs, s.objectPath(key))
	if err != nil {
		return nil, ErrObjectNotFound
	}
	return b, nil
}

// Exists reports whether an object is stored under key.
func (s *UploadStore) Exists(key string) bool {
	ok, _ := afero.Exists(s.fs, s.objectPath(key))
	return ok
}

// Delete removes the object for key. Deleting an absent object is a no-op,
// so repeated cleanup under at-least-once trigger delivery is safe.
func (s *UploadStore) Delete(key string) error {
	err := s.fs.Remove(s.objectPath(key))
	if err == nil || errors.Is(err, afero.ErrFileNotFound) {
		return nil
	}
	// afero wraps OS errors differently per backend; treat "not exist" as done.
	if ok, _ := afero.Exists(s.fs, s.objectPath(key)); !ok {
		return nil
	}
	return err
}

// Arrivals exposes the arrival notification channel consumed by the
// ingestion worker.
func (s *UploadStore) Arrivals() <-chan Arrival {
	return s.arrivals
}

// Close shuts the arrival channel down; call only after all writers stopped.
func (s *UploadStore) Close() {
	close(s.arrivals)
}

func (s *UploadStore) objectPath(key string) string {
	// Object keys are UUIDs minted by the slot issuer; path.Base guards the
	// join against traversal if a caller ever passes through client input.
	return path.Join(s.dir, path.Base(key))
}
