// File header.
//
// The header is exactly HeaderSize bytes: the Magic prefix, a JSON object,
// space padding and a trailing newline. It records how the body that
// follows was written and a checksum over it.
package quire

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// HeaderSize is the fixed size of the header in bytes.
const HeaderSize = 128

// Magic opens every quire document.
const Magic = "QUIRE"

// FormatVersion is the format version written by Save.
const FormatVersion = 1

// Header describes the body of a document file.
type Header struct {
	Version     int    `json:"_v"`   // Format version
	Algorithm   int    `json:"_alg"` // Checksum algorithm
	Compression int    `json:"_z"`   // Body compression
	Length      int64  `json:"_n"`   // Stored body length in bytes
	Sum         string `json:"_sum"` // Checksum of the stored body
}

// encode serialises the header to exactly HeaderSize bytes with padding.
func (h *Header) encode() ([]byte, error) {
	data, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}

	if len(Magic)+len(data) > HeaderSize-1 {
		return nil, ErrCorruptHeader // header too large
	}

	buf := make([]byte, HeaderSize)
	n := copy(buf, Magic)
	n += copy(buf[n:], data)
	for i := n; i < HeaderSize-1; i++ {
		buf[i] = ' '
	}
	buf[HeaderSize-1] = '\n'

	return buf, nil
}

// parseHeader validates the header at the start of data. It never looks
// past HeaderSize.
func parseHeader(data []byte) (*Header, error) {
	if len(data) < len(Magic) {
		if bytes.HasPrefix([]byte(Magic), data) {
			return nil, ErrTruncated
		}
		return nil, ErrBadMagic
	}
	if !bytes.HasPrefix(data, []byte(Magic)) {
		return nil, ErrBadMagic
	}
	if len(data) < HeaderSize {
		return nil, ErrTruncated
	}
	if data[HeaderSize-1] != '\n' {
		return nil, ErrCorruptHeader
	}

	var hdr Header
	raw := bytes.TrimSpace(data[len(Magic) : HeaderSize-1])
	if err := json.Unmarshal(raw, &hdr); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptHeader, err)
	}
	if hdr.Length < 0 {
		return nil, fmt.Errorf("%w: negative length", ErrCorruptHeader)
	}
	if hdr.Version != FormatVersion {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupported, hdr.Version)
	}
	if !knownAlgorithm(hdr.Algorithm) {
		return nil, fmt.Errorf("%w: checksum algorithm %d", ErrUnsupported, hdr.Algorithm)
	}
	if !knownCompression(hdr.Compression) {
		return nil, fmt.Errorf("%w: compression %d", ErrUnsupported, hdr.Compression)
	}
	return &hdr, nil
}
