package quire

import (
	"fmt"
	"sync"
	"testing"
)

func TestConcurrentReads(t *testing.T) {
	d := New(testConfig(t))
	d.Put(Root, "doc", "content")

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				if got := d.Snapshot()["doc"]; got != "content" {
					t.Errorf("Snapshot[doc] = %v, want content", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestConcurrentWrites(t *testing.T) {
	d := New(testConfig(t))

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 10 {
				if err := d.Put(Root, fmt.Sprintf("k%d", i), float64(j)); err != nil {
					t.Errorf("Put: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if d.Len() != 100 {
		t.Errorf("Len = %d, want 100", d.Len())
	}
	// Every op got a distinct counter.
	seen := make(map[uint64]bool)
	for _, op := range d.Ops() {
		if seen[op.ID.Counter] {
			t.Fatalf("counter %d issued twice", op.ID.Counter)
		}
		seen[op.ID.Counter] = true
	}
	for i := range 10 {
		if got := d.Snapshot()[fmt.Sprintf("k%d", i)]; got != 9.0 {
			t.Errorf("k%d = %v, want 9", i, got)
		}
	}
}

// TestConcurrentSaveWrite saves while other goroutines mutate. Each saved
// image must load cleanly under Verify.
func TestConcurrentSaveWrite(t *testing.T) {
	d := New(testConfig(t))
	obj, _ := d.PutObject(Root, "birds")

	var wg sync.WaitGroup
	for i := range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 20 {
				d.Put(obj, fmt.Sprintf("bird%d", i), float64(j))
			}
		}()
	}

	images := make(chan []byte, 20)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 20 {
			data, err := d.Save()
			if err != nil {
				t.Errorf("Save: %v", err)
				return
			}
			images <- data
		}
	}()
	wg.Wait()
	close(images)

	for data := range images {
		if _, err := Load(data, Verify, testConfig(t)); err != nil {
			t.Errorf("Load of concurrent save: %v", err)
		}
	}
}
