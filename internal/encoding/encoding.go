// Package encoding lists the transfer encodings the service understands and
// wraps readers and writers for each of them.
package encoding

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

const (
	Identity = "identity"
	Gzip     = "gzip"
	Deflate  = "deflate"
	Brotli   = "br"
	Zstd     = "zstd"
)

var (
	ErrUnsupported   = errors.New("unsupported content encoding")
	ErrLimitExceeded = errors.New("decoded content exceeds limit")
)

// supported is the advertised list. Negotiation prefers earlier compressed
// entries when the client weighs them equally.
var supported = []string{Identity, Gzip, Deflate, Brotli, Zstd}

var preference = []string{Zstd, Brotli, Gzip, Deflate, Identity}

// SupportedEncodings returns the encodings the service accepts and serves.
func SupportedEncodings() []string {
	return append([]string(nil), supported...)
}

// AcceptEncoding is the value advertised in the Accept-Encoding header.
func AcceptEncoding() string {
	return strings.Join(supported, ", ")
}

// IsSupported reports whether enc (case-insensitive) is a known encoding.
// The empty string counts as identity.
func IsSupported(enc string) bool {
	enc = normalize(enc)
	for _, s := range supported {
		if s == enc {
			return true
		}
	}
	return false
}

func normalize(enc string) string {
	enc = strings.ToLower(strings.TrimSpace(enc))
	switch enc {
	case "", "none":
		return Identity
	case "x-gzip":
		return Gzip
	}
	return enc
}

// NewReader decodes r according to enc.
func NewReader(enc string, r io.Reader) (io.ReadCloser, error) {
	switch normalize(enc) {
	case Identity:
		return io.NopCloser(r), nil
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr, nil
	case Deflate:
		return zlib.NewReader(r)
	case Brotli:
		return io.NopCloser(brotli.NewReader(r)), nil
	case Zstd:
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return d.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, enc)
	}
}

// NewWriter encodes into w according to enc. Close flushes the encoder but
// not w.
func NewWriter(enc string, w io.Writer) (io.WriteCloser, error) {
	switch normalize(enc) {
	case Identity:
		return nopWriteCloser{w}, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case Deflate:
		return zlib.NewWriter(w), nil
	case Brotli:
		return brotli.NewWriter(w), nil
	case Zstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, err
		}
		return zw, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, enc)
	}
}

// Decode reads all of r through the decoder for enc. More than limit decoded
// bytes (when limit > 0) fails with ErrLimitExceeded.
func Decode(enc string, r io.Reader, limit int64) ([]byte, error) {
	rc, err := NewReader(enc, r)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	src := io.Reader(rc)
	if limit > 0 {
		src = io.LimitReader(rc, limit+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("decoding %s body: %w", normalize(enc), err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrLimitExceeded, limit)
	}
	return data, nil
}

// Encode compresses data with enc.
func Encode(enc string, data []byte) ([]byte, error) {
	var b bytes.Buffer
	w, err := NewWriter(enc, &b)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Negotiate picks the encoding to answer a request carrying the given
// Accept-Encoding header. Higher q values win; ties go to the better
// compressor. Identity is returned when nothing else is acceptable.
func Negotiate(acceptEncoding string) string {
	if strings.TrimSpace(acceptEncoding) == "" {
		return Identity
	}

	weights := map[string]float64{}
	wildcard := -1.0
	for _, part := range strings.Split(acceptEncoding, ",") {
		name, q := parseCoding(part)
		if name == "" {
			continue
		}
		if name == "*" {
			wildcard = q
			continue
		}
		weights[normalize(name)] = q
	}

	best, bestQ := Identity, 0.0
	for _, enc := range preference {
		q, ok := weights[enc]
		if !ok {
			if wildcard < 0 || enc == Identity {
				continue
			}
			q = wildcard
		}
		if q > bestQ {
			best, bestQ = enc, q
		}
	}
	return best
}

func parseCoding(part string) (string, float64) {
	fields := strings.Split(part, ";")
	name := strings.ToLower(strings.TrimSpace(fields[0]))
	q := 1.0
	for _, param := range fields[1:] {
		k, v, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok || strings.TrimSpace(k) != "q" {
			continue
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			q = f
		}
	}
	return name, q
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
