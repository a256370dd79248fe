package encoding

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupportedEncodings(t *testing.T) {
	assert.Equal(t, []string{"identity", "gzip", "deflate", "br", "zstd"}, SupportedEncodings())
	assert.Equal(t, "identity, gzip, deflate, br, zstd", AcceptEncoding())

	// callers cannot mutate the advertised list
	list := SupportedEncodings()
	list[0] = "mutated"
	assert.Equal(t, Identity, SupportedEncodings()[0])
}

func TestIsSupported(t *testing.T) {
	for _, enc := range []string{"", "identity", "GZIP", "x-gzip", "deflate", "br", "zstd"} {
		assert.True(t, IsSupported(enc), enc)
	}
	for _, enc := range []string{"compress", "lz4", "snappy"} {
		assert.False(t, IsSupported(enc), enc)
	}
}

func TestEncodeDecodeEachEncoding(t *testing.T) {
	body := []byte(strings.Repeat("[12:00:00] [Server thread/INFO]: Preparing spawn area\n", 500))

	for _, enc := range SupportedEncodings() {
		t.Run(enc, func(t *testing.T) {
			compressed, err := Encode(enc, body)
			require.NoError(t, err)
			if enc != Identity {
				assert.Less(t, len(compressed), len(body))
			}

			decoded, err := Decode(enc, bytes.NewReader(compressed), 0)
			require.NoError(t, err)
			assert.Equal(t, body, decoded)
		})
	}
}

func TestDecode_Limit(t *testing.T) {
	body := bytes.Repeat([]byte("a"), 4096)
	compressed, err := Encode(Gzip, body)
	require.NoError(t, err)

	_, err = Decode(Gzip, bytes.NewReader(compressed), 1024)
	assert.ErrorIs(t, err, ErrLimitExceeded)

	decoded, err := Decode(Gzip, bytes.NewReader(compressed), 4096)
	require.NoError(t, err)
	assert.Len(t, decoded, 4096)
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode("compress", strings.NewReader("x"), 0)
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Decode(Gzip, strings.NewReader("definitely not gzip"), 0)
	assert.Error(t, err)

	_, err = NewWriter("lz4", &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestNegotiate(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", Identity},
		{"identity", Identity},
		{"gzip", Gzip},
		{"gzip, br", Brotli},
		{"gzip, deflate, br, zstd", Zstd},
		{"gzip;q=1.0, br;q=0.5", Gzip},
		{"br;q=0, gzip;q=0.1", Gzip},
		{"*", Zstd},
		{"zstd;q=0, *;q=0.5", Brotli},
		{"compress, snappy", Identity},
		{" GZIP ; q=0.8 ", Gzip},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, Negotiate(tt.header))
		})
	}
}
