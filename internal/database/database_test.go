package database

import (
	"fmt"
	"sync"
	"testing"
)

// Concurrent writers must all land in the same in-memory database. Without
// the single-connection cap, a second pooled connection opens a fresh empty
// :memory: database and inserts fail with "no such table".
func TestInMemoryDBSharedAcrossGoroutines(t *testing.T) {
	db := setupTestDB(t)
	store := NewUserStore(db)

	const writers = 10
	errs := make(chan error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Create(fmt.Sprintf("writer%d@example.com", i), "Writer", "pass")
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("concurrent Create() error = %v", err)
		}
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(1) FROM users").Scan(&count); err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != writers {
		t.Errorf("users = %d, want %d", count, writers)
	}
}
