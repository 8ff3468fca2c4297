package services

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-ecommerce-backend/internal/domain"
	"github.com/tbourn/go-ecommerce-backend/internal/events"
	"github.com/tbourn/go-ecommerce-backend/internal/repo"
)

// newServiceDB opens a throwaway SQLite database with the full schema.
func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "svc.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type statusPush struct {
	transactionID string
	connectionID  string
	status        domain.TransactionStatus
}

// fakeNotifier records pushes and teardowns; reachable controls the reported
// delivery outcome.
type fakeNotifier struct {
	mu         sync.Mutex
	reachable  bool
	raw        map[string][][]byte
	statuses   []statusPush
	terminated []string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{reachable: true, raw: map[string][][]byte{}}
}

func (f *fakeNotifier) Push(connectionID string, payload []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.reachable {
		return false
	}
	f.raw[connectionID] = append(f.raw[connectionID], payload)
	return true
}

func (f *fakeNotifier) NotifyStatus(transactionID, connectionID string, status domain.TransactionStatus) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, statusPush{transactionID, connectionID, status})
	return f.reachable
}

func (f *fakeNotifier) Terminate(connectionID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terminated = append(f.terminated, connectionID)
	return true
}

func (f *fakeNotifier) statusSequence() []domain.TransactionStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.TransactionStatus, 0, len(f.statuses))
	for _, s := range f.statuses {
		out = append(out, s.status)
	}
	return out
}

func (f *fakeNotifier) terminatedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.terminated)
}

// fakeObjectStore is an in-memory ObjectStore recording deletions.
type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}}
}

func (f *fakeObjectStore) put(key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
}

func (f *fakeObjectStore) Get(key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return data, nil
}

func (f *fakeObjectStore) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeObjectStore) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

// fakeSigner mints deterministic URLs.
type fakeSigner struct {
	err error
}

func (f fakeSigner) SignPutURL(key string, ttl time.Duration) (string, int64, error) {
	if f.err != nil {
		return "", 0, f.err
	}
	return "https://uploads.test/upload/" + key, int64(ttl / time.Second), nil
}

// capturingBus records published entries.
type capturingBus struct {
	mu      sync.Mutex
	entries []events.Entry
}

func (b *capturingBus) Publish(e events.Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, e)
}

func (b *capturingBus) byType(detailType string) []events.Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []events.Entry
	for _, e := range b.entries {
		if e.DetailType == detailType {
			out = append(out, e)
		}
	}
	return out
}
