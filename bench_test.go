package quire

import (
	"bytes"
	"io"
	"log/slog"
	"strconv"
	"testing"
)

// benchDoc builds a document with n keys spread over a few nested objects
// and several actors, roughly the shape of a long-lived replicated doc.
func benchDoc(b *testing.B, n int) *Document {
	b.Helper()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	d := New(Config{Actor: "0a0b0c0d", Logger: quiet})
	objs := []ObjID{Root}
	for i := range 4 {
		obj, err := d.PutObject(Root, "section"+strconv.Itoa(i))
		if err != nil {
			b.Fatal(err)
		}
		objs = append(objs, obj)
	}
	for i := range n {
		d.Put(objs[i%len(objs)], "key"+strconv.Itoa(i%200), float64(i))
	}
	return d
}

func BenchmarkIntern(b *testing.B) {
	c := NewCache[string]()
	keys := make([]string, 1000)
	for i := range keys {
		keys[i] = "key" + strconv.Itoa(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Intern(keys[i%len(keys)])
	}
}

func BenchmarkSafeGet(b *testing.B) {
	c := NewCache[string]()
	for i := range 1000 {
		c.Intern("key" + strconv.Itoa(i))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.SafeGet(i % 2000)
	}
}

func BenchmarkCanonical(b *testing.B) {
	c := NewCache[string]()
	for i := range 1000 {
		c.Intern("key" + strconv.Itoa(999-i))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Canonical()
	}
}

func BenchmarkSum(b *testing.B) {
	data := bytes.Repeat([]byte("x"), 64*1024)
	for _, a := range algorithms {
		b.Run(a.name, func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			for i := 0; i < b.N; i++ {
				sum(data, a.alg)
			}
		})
	}
}

func BenchmarkSave(b *testing.B) {
	d := benchDoc(b, 10000)
	for _, m := range compressions {
		b.Run(m.name, func(b *testing.B) {
			d.cfg.Compression = m.mode
			for i := 0; i < b.N; i++ {
				if _, err := d.Save(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkLoad(b *testing.B) {
	data, err := benchDoc(b, 10000).Save()
	if err != nil {
		b.Fatal(err)
	}
	cfg := Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	for _, p := range []Policy{Verify, Skip} {
		b.Run(p.String(), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			for i := 0; i < b.N; i++ {
				if _, err := Load(data, p, cfg); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSnapshot(b *testing.B) {
	d := benchDoc(b, 10000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Snapshot()
	}
}

func BenchmarkExportJSON(b *testing.B) {
	data, _ := benchDoc(b, 10000).Save()
	opts := ExportOptions{Config: Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}}

	for _, c := range []struct {
		name  string
		color ColorMode
	}{{"plain", ColorNever}, {"color", ColorAlways}} {
		b.Run(c.name, func(b *testing.B) {
			opts.Color = c.color
			for i := 0; i < b.N; i++ {
				if err := ExportJSON(bytes.NewReader(data), io.Discard, opts); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
