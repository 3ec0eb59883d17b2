// Destination locks for WriteFile.
//
// Before sweeping stale temp files and renaming its own over a document,
// WriteFile takes an exclusive lock on <name>.lock beside it. Two saves
// of the same document, from two processes or two goroutines, therefore
// run one after the other and the later one's content is what remains.
// Saves of different documents in the same directory do not contend.
//
// The lock file outlives the save. Removing it would let a queued writer
// hold a lock on a file the next writer can no longer open.
package quire

import (
	"fmt"
	"os"
	"sync"
)

// fileLock is a held destination lock. release may be called more than
// once; mu keeps a second call from using the closed handle.
type fileLock struct {
	mu sync.Mutex
	f  *os.File
}

// lockFile blocks until the caller is the only writer of name in root.
func lockFile(root *os.Root, name string) (*fileLock, error) {
	f, err := root.OpenFile(name+".lock", os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	l := &fileLock{f: f}
	if err := l.lock(); err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return l, nil
}

// release unlocks and closes the lock file.
func (l *fileLock) release() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.unlock()
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	l.f = nil
	return err
}
