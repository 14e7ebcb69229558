package compresspool

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var algorithms = []Algorithm{None, Gzip, LZ4, Zstd}

func testPayload() []byte {
	// Repetitive enough that every real algorithm shrinks it.
	return bytes.Repeat([]byte("swimmer pools recycle expensive values. "), 200)
}

func TestRoundtrip(t *testing.T) {
	payload := testPayload()
	for _, alg := range algorithms {
		t.Run(string(alg), func(t *testing.T) {
			c, err := NewCompressor(&Config{Algorithm: alg, Level: Default})
			require.NoError(t, err)
			assert.Equal(t, alg, c.Algorithm())

			compressed, err := c.Compress(payload)
			require.NoError(t, err)
			if alg != None {
				assert.Less(t, len(compressed), len(payload))
			}

			decompressed, err := c.Decompress(compressed)
			require.NoError(t, err)
			assert.Equal(t, payload, decompressed)
		})
	}
}

func TestRoundtripStream(t *testing.T) {
	payload := testPayload()
	for _, alg := range algorithms {
		t.Run(string(alg), func(t *testing.T) {
			c, err := NewCompressor(&Config{Algorithm: alg, Level: Default})
			require.NoError(t, err)

			var compressed bytes.Buffer
			require.NoError(t, c.CompressStream(&compressed, bytes.NewReader(payload)))

			var decompressed bytes.Buffer
			require.NoError(t, c.DecompressStream(&decompressed, &compressed))
			assert.Equal(t, payload, decompressed.Bytes())
		})
	}
}

func TestRoundtripEmpty(t *testing.T) {
	for _, alg := range algorithms {
		t.Run(string(alg), func(t *testing.T) {
			c, err := NewCompressor(&Config{Algorithm: alg, Level: Default})
			require.NoError(t, err)

			compressed, err := c.Compress(nil)
			require.NoError(t, err)
			decompressed, err := c.Decompress(compressed)
			require.NoError(t, err)
			assert.Empty(t, decompressed)
		})
	}
}

func TestLevels(t *testing.T) {
	payload := testPayload()
	for _, alg := range []Algorithm{Gzip, LZ4, Zstd} {
		for _, level := range []Level{Fastest, Default, Best} {
			c, err := NewCompressor(&Config{Algorithm: alg, Level: level})
			require.NoError(t, err)

			compressed, err := c.Compress(payload)
			require.NoError(t, err)
			decompressed, err := c.Decompress(compressed)
			require.NoError(t, err)
			require.Equal(t, payload, decompressed, "%s at level %d", alg, level)
		}
	}
}

func TestHandleReuse(t *testing.T) {
	c, err := NewCompressor(&Config{Algorithm: Gzip, Level: Default})
	require.NoError(t, err)

	// Sequential calls must reuse the same pooled writer and reader.
	payload := testPayload()
	for i := 0; i < 20; i++ {
		compressed, err := c.Compress(payload)
		require.NoError(t, err)
		decompressed, err := c.Decompress(compressed)
		require.NoError(t, err)
		require.Equal(t, payload, decompressed)
	}
	gc := c.(*gzipCompressor)
	assert.LessOrEqual(t, gc.writers.Stats().Allocated, int64(1))
	assert.LessOrEqual(t, gc.readers.Stats().Allocated, int64(1))
}

func TestDecompressGarbage(t *testing.T) {
	for _, alg := range []Algorithm{Gzip, LZ4, Zstd} {
		t.Run(string(alg), func(t *testing.T) {
			c, err := NewCompressor(&Config{Algorithm: alg, Level: Default})
			require.NoError(t, err)

			_, err = c.Decompress([]byte("definitely not compressed data"))
			assert.Error(t, err)
		})
	}
}

func TestUnsupportedAlgorithm(t *testing.T) {
	_, err := NewCompressor(&Config{Algorithm: "brotli"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unsupported"))
}

func TestDefaultConfig(t *testing.T) {
	c, err := NewCompressor(nil)
	require.NoError(t, err)
	assert.Equal(t, LZ4, c.Algorithm())
}

func TestConcurrentCompress(t *testing.T) {
	c, err := NewCompressor(&Config{Algorithm: Zstd, Level: Fastest})
	require.NoError(t, err)

	payload := testPayload()
	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			for j := 0; j < 200; j++ {
				compressed, err := c.Compress(payload)
				if err != nil {
					done <- err
					return
				}
				decompressed, err := c.Decompress(compressed)
				if err != nil {
					done <- err
					return
				}
				if !bytes.Equal(payload, decompressed) {
					done <- assert.AnError
					return
				}
			}
			done <- nil
		}()
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-done)
	}
}

func BenchmarkCompress(b *testing.B) {
	payload := testPayload()
	for _, alg := range []Algorithm{Gzip, LZ4, Zstd} {
		c, err := NewCompressor(&Config{Algorithm: alg, Level: Default})
		if err != nil {
			b.Fatal(err)
		}
		b.Run(string(alg), func(b *testing.B) {
			b.SetBytes(int64(len(payload)))
			for i := 0; i < b.N; i++ {
				if _, err := c.Compress(payload); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
