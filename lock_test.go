package quire

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func openTestRoot(t *testing.T) (*os.Root, string) {
	t.Helper()
	dir := t.TempDir()
	root, err := os.OpenRoot(dir)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { root.Close() })
	return root, dir
}

func TestLocking(t *testing.T) {
	root, _ := openTestRoot(t)

	l1, err := lockFile(root, "doc.quire")
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}

	// flock is per open file description, so a second lockFile in the same
	// process must block.
	done := make(chan error)
	go func() {
		l2, err := lockFile(root, "doc.quire")
		if err == nil {
			err = l2.release()
		}
		done <- err
	}()

	select {
	case <-done:
		t.Fatal("second writer acquired the lock while the first held it")
	case <-time.After(100 * time.Millisecond):
	}

	if err := l1.release(); err != nil {
		t.Fatalf("release: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("second lock: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("second writer still blocked after release")
	}
}

func TestLockIndependentNames(t *testing.T) {
	root, _ := openTestRoot(t)

	a, err := lockFile(root, "a.quire")
	if err != nil {
		t.Fatal(err)
	}
	defer a.release()

	done := make(chan error)
	go func() {
		b, err := lockFile(root, "b.quire")
		if err == nil {
			err = b.release()
		}
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("lock b: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("lock on b.quire blocked behind a.quire")
	}
}

func TestLockReleaseTwice(t *testing.T) {
	root, dir := openTestRoot(t)
	l, err := lockFile(root, "doc.quire")
	if err != nil {
		t.Fatal(err)
	}
	if err := l.release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := l.release(); err != nil {
		t.Errorf("second release: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "doc.quire.lock")); err != nil {
		t.Errorf("sidecar missing after release: %v", err)
	}
}

// TestConcurrentWriteFile races writers on one destination. Every write
// must succeed, the result must be exactly one writer's content, and no
// temp files may survive.
func TestConcurrentWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.quire")

	const writers = 8
	contents := make([][]byte, writers)
	for i := range contents {
		contents[i] = bytes.Repeat([]byte(fmt.Sprintf("writer %d;", i)), 4096)
	}

	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 5 {
				if err := WriteFile(path, contents[i], 0644); err != nil {
					t.Errorf("writer %d: %v", i, err)
					return
				}
			}
		}()
	}
	wg.Wait()

	got := []byte(readFile(t, path))
	found := false
	for _, c := range contents {
		if bytes.Equal(got, c) {
			found = true
		}
	}
	if !found {
		t.Errorf("destination holds mixed or partial content (%d bytes)", len(got))
	}
	if tmp := tempFiles(t, dir); len(tmp) != 0 {
		t.Errorf("temp files left behind: %v", tmp)
	}
}
