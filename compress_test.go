package quire

import (
	"bytes"
	"errors"
	"testing"
)

var compressions = []struct {
	name string
	mode int
}{
	{"zstd", CompressZstd},
	{"none", CompressNone},
	{"xz", CompressXZ},
}

func TestCompressRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"simple text", []byte("hello world")},
		{"empty", []byte{}},
		{"single byte", []byte{0x42}},
		{"binary data", []byte{0x00, 0x01, 0xff, 0xfe, 0x80, 0x7f}},
		{"unicode", []byte("日本語テキスト")},
		{"json", []byte(`{"_a":["aa"],"_k":["sparrows"],"_o":[{"a":0,"c":1}]}`)},
	}

	for _, m := range compressions {
		for _, tt := range tests {
			t.Run(m.name+"/"+tt.name, func(t *testing.T) {
				stored, err := compress(tt.data, m.mode)
				if err != nil {
					t.Fatalf("compress: %v", err)
				}
				out, err := decompress(stored, m.mode, DefaultMaxDocumentSize)
				if err != nil {
					t.Fatalf("decompress: %v", err)
				}
				if !bytes.Equal(out, tt.data) {
					t.Errorf("round trip failed: got %v, want %v", out, tt.data)
				}
			})
		}
	}
}

func TestCompressReducesSize(t *testing.T) {
	data := bytes.Repeat([]byte(`{"a":0,"c":1,"oa":0,"oc":0,"k":0,"x":1}`), 1000)
	for _, m := range []int{CompressZstd, CompressXZ} {
		stored, err := compress(data, m)
		if err != nil {
			t.Fatalf("compress(%d): %v", m, err)
		}
		if len(stored) >= len(data) {
			t.Errorf("mode %d did not reduce size: %d >= %d", m, len(stored), len(data))
		}
	}
}

func TestDecompressGarbage(t *testing.T) {
	for _, m := range []int{CompressZstd, CompressXZ} {
		_, err := decompress([]byte("definitely not compressed"), m, DefaultMaxDocumentSize)
		if !errors.Is(err, ErrDecompress) {
			t.Errorf("mode %d: error = %v, want ErrDecompress", m, err)
		}
	}
}

func TestDecompressLimit(t *testing.T) {
	data := bytes.Repeat([]byte("a"), 4096)
	for _, m := range compressions {
		stored, _ := compress(data, m.mode)
		_, err := decompress(stored, m.mode, 1024)
		if !errors.Is(err, ErrTooLarge) {
			t.Errorf("%s: error = %v, want ErrTooLarge", m.name, err)
		}
	}
}

func TestCompressUnknownMode(t *testing.T) {
	if _, err := compress([]byte("x"), 42); !errors.Is(err, ErrUnsupported) {
		t.Errorf("compress error = %v, want ErrUnsupported", err)
	}
	if _, err := decompress([]byte("x"), 42, 10); !errors.Is(err, ErrUnsupported) {
		t.Errorf("decompress error = %v, want ErrUnsupported", err)
	}
}
