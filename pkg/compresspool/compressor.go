// Package compresspool provides compression with pooled codec handles.
//
// Compressor construction is cheap, but the writer and reader handles behind
// it are not: a zstd encoder or gzip writer carries large internal state.
// Every compressor here keeps its handles in swimmer pools and resets them
// between uses, so steady-state compression does not allocate codec state.
//
// Algorithms: Gzip (wide compatibility), LZ4 (fastest), Zstd (best ratio),
// and None (passthrough for testing and config-driven bypass).
package compresspool

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/caelunshun/swimmer/pkg/pool"
)

// Algorithm represents a compression algorithm.
type Algorithm string

const (
	// None performs no compression.
	None Algorithm = "none"
	// Gzip is the ubiquitous DEFLATE-based format.
	Gzip Algorithm = "gzip"
	// LZ4 favors speed over ratio.
	LZ4 Algorithm = "lz4"
	// Zstd favors ratio at good speed.
	Zstd Algorithm = "zstd"
)

// Level controls the speed/ratio trade-off.
type Level int

const (
	// Fastest prioritizes throughput.
	Fastest Level = 1
	// Default balances speed and ratio.
	Default Level = 5
	// Best maximizes compression ratio.
	Best Level = 9
)

// Compressor compresses and decompresses data. Implementations are safe for
// concurrent use; concurrent calls draw separate handles from the pools.
type Compressor interface {
	// Compress returns the compressed form of data. data is not modified.
	Compress(data []byte) ([]byte, error)

	// Decompress returns the original form of data. data is not modified.
	Decompress(data []byte) ([]byte, error)

	// CompressStream compresses src into dst.
	CompressStream(dst io.Writer, src io.Reader) error

	// DecompressStream decompresses src into dst.
	DecompressStream(dst io.Writer, src io.Reader) error

	// Algorithm returns the algorithm in use.
	Algorithm() Algorithm
}

// Config configures a Compressor.
type Config struct {
	Algorithm  Algorithm
	Level      Level
	BufferSize int // initial capacity of pooled scratch buffers
}

// DefaultConfig returns a balanced configuration: LZ4 at the default level
// with 64KB scratch buffers.
func DefaultConfig() *Config {
	return &Config{
		Algorithm:  LZ4,
		Level:      Default,
		BufferSize: 64 * 1024,
	}
}

// NewCompressor creates a compressor for the configured algorithm. A nil
// config selects DefaultConfig.
func NewCompressor(config *Config) (Compressor, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 64 * 1024
	}

	switch config.Algorithm {
	case None:
		return &noneCompressor{}, nil
	case Gzip:
		return newGzipCompressor(config)
	case LZ4:
		return newLZ4Compressor(config), nil
	case Zstd:
		return newZstdCompressor(config)
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", config.Algorithm)
	}
}

// noneCompressor passes data through unchanged.
type noneCompressor struct{}

func (c *noneCompressor) Compress(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (c *noneCompressor) Decompress(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (c *noneCompressor) CompressStream(dst io.Writer, src io.Reader) error {
	_, err := io.Copy(dst, src)
	return err
}

func (c *noneCompressor) DecompressStream(dst io.Writer, src io.Reader) error {
	_, err := io.Copy(dst, src)
	return err
}

func (c *noneCompressor) Algorithm() Algorithm { return None }

// gzipCompressor pools gzip writer and reader handles.
type gzipCompressor struct {
	writers *pool.Pool[*gzip.Writer]
	readers *pool.Pool[*gzip.Reader]
	buffers *pool.Pool[*bytes.Buffer]
}

func newGzipCompressor(config *Config) (*gzipCompressor, error) {
	level, err := gzipLevel(config.Level)
	if err != nil {
		return nil, err
	}
	return &gzipCompressor{
		writers: pool.New(
			func() *gzip.Writer {
				w, _ := gzip.NewWriterLevel(io.Discard, level)
				return w
			},
			nil,
		),
		readers: pool.New(func() *gzip.Reader { return new(gzip.Reader) }, nil),
		buffers: pool.NewBuffers(config.BufferSize),
	}, nil
}

func (c *gzipCompressor) Compress(data []byte) ([]byte, error) {
	bg := c.buffers.Get()
	defer bg.Release()
	wg := c.writers.Get()
	defer wg.Release()

	w := wg.Value
	w.Reset(bg.Value)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	return copyOut(bg.Value), nil
}

func (c *gzipCompressor) Decompress(data []byte) ([]byte, error) {
	bg := c.buffers.Get()
	defer bg.Release()
	if err := c.DecompressStream(bg.Value, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return copyOut(bg.Value), nil
}

func (c *gzipCompressor) CompressStream(dst io.Writer, src io.Reader) error {
	wg := c.writers.Get()
	defer wg.Release()

	w := wg.Value
	w.Reset(dst)
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("gzip compress stream: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gzip compress stream: %w", err)
	}
	return nil
}

func (c *gzipCompressor) DecompressStream(dst io.Writer, src io.Reader) error {
	rg := c.readers.Get()
	defer rg.Release()

	r := rg.Value
	if err := r.Reset(src); err != nil {
		return fmt.Errorf("gzip decompress: %w", err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		return fmt.Errorf("gzip decompress: %w", err)
	}
	return r.Close()
}

func (c *gzipCompressor) Algorithm() Algorithm { return Gzip }

// lz4Compressor pools lz4 frame writer and reader handles.
type lz4Compressor struct {
	level   lz4.CompressionLevel
	writers *pool.Pool[*lz4.Writer]
	readers *pool.Pool[*lz4.Reader]
	buffers *pool.Pool[*bytes.Buffer]
}

func newLZ4Compressor(config *Config) *lz4Compressor {
	level := lz4Level(config.Level)
	return &lz4Compressor{
		level: level,
		writers: pool.New(
			func() *lz4.Writer {
				w := lz4.NewWriter(io.Discard)
				_ = w.Apply(lz4.CompressionLevelOption(level))
				return w
			},
			nil,
		),
		readers: pool.New(func() *lz4.Reader { return lz4.NewReader(nil) }, nil),
		buffers: pool.NewBuffers(config.BufferSize),
	}
}

func (c *lz4Compressor) Compress(data []byte) ([]byte, error) {
	bg := c.buffers.Get()
	defer bg.Release()
	if err := c.CompressStream(bg.Value, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return copyOut(bg.Value), nil
}

func (c *lz4Compressor) Decompress(data []byte) ([]byte, error) {
	bg := c.buffers.Get()
	defer bg.Release()
	if err := c.DecompressStream(bg.Value, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return copyOut(bg.Value), nil
}

func (c *lz4Compressor) CompressStream(dst io.Writer, src io.Reader) error {
	wg := c.writers.Get()
	defer wg.Release()

	w := wg.Value
	w.Reset(dst)
	// Reset puts the writer back in its pre-write state, where Apply is legal.
	_ = w.Apply(lz4.CompressionLevelOption(c.level))
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("lz4 compress stream: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("lz4 compress stream: %w", err)
	}
	return nil
}

func (c *lz4Compressor) DecompressStream(dst io.Writer, src io.Reader) error {
	rg := c.readers.Get()
	defer rg.Release()

	r := rg.Value
	r.Reset(src)
	if _, err := io.Copy(dst, r); err != nil {
		return fmt.Errorf("lz4 decompress: %w", err)
	}
	return nil
}

func (c *lz4Compressor) Algorithm() Algorithm { return LZ4 }

// zstdCompressor uses the concurrency-safe EncodeAll/DecodeAll paths for
// in-memory data and pooled stream handles for readers and writers.
type zstdCompressor struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder

	streamEncoders *pool.Pool[*zstd.Encoder]
	streamDecoders *pool.Pool[*zstd.Decoder]
}

func newZstdCompressor(config *Config) (*zstdCompressor, error) {
	level := zstdLevel(config.Level)

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}

	return &zstdCompressor{
		encoder: encoder,
		decoder: decoder,
		streamEncoders: pool.New(
			func() *zstd.Encoder {
				e, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
				return e
			},
			nil,
		),
		streamDecoders: pool.New(
			func() *zstd.Decoder {
				d, _ := zstd.NewReader(nil)
				return d
			},
			nil,
		),
	}, nil
}

func (c *zstdCompressor) Compress(data []byte) ([]byte, error) {
	return c.encoder.EncodeAll(data, nil), nil
}

func (c *zstdCompressor) Decompress(data []byte) ([]byte, error) {
	out, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return out, nil
}

func (c *zstdCompressor) CompressStream(dst io.Writer, src io.Reader) error {
	eg := c.streamEncoders.Get()
	defer eg.Release()

	e := eg.Value
	e.Reset(dst)
	if _, err := io.Copy(e, src); err != nil {
		return fmt.Errorf("zstd compress stream: %w", err)
	}
	if err := e.Close(); err != nil {
		return fmt.Errorf("zstd compress stream: %w", err)
	}
	return nil
}

func (c *zstdCompressor) DecompressStream(dst io.Writer, src io.Reader) error {
	dg := c.streamDecoders.Get()
	defer dg.Release()

	d := dg.Value
	if err := d.Reset(src); err != nil {
		return fmt.Errorf("zstd decompress stream: %w", err)
	}
	if _, err := io.Copy(dst, d); err != nil {
		return fmt.Errorf("zstd decompress stream: %w", err)
	}
	return nil
}

func (c *zstdCompressor) Algorithm() Algorithm { return Zstd }

// copyOut copies a pooled buffer's contents into a fresh slice the caller
// owns after the buffer returns to its pool.
func copyOut(buf *bytes.Buffer) []byte {
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out
}

func gzipLevel(level Level) (int, error) {
	switch level {
	case Fastest:
		return gzip.BestSpeed, nil
	case Default, 0:
		return gzip.DefaultCompression, nil
	case Best:
		return gzip.BestCompression, nil
	default:
		if level < Fastest || level > Best {
			return 0, fmt.Errorf("invalid gzip level: %d", level)
		}
		return int(level), nil
	}
}

func lz4Level(level Level) lz4.CompressionLevel {
	switch {
	case level <= Fastest:
		return lz4.Fast
	case level >= Best:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}

func zstdLevel(level Level) zstd.EncoderLevel {
	switch {
	case level <= Fastest:
		return zstd.SpeedFastest
	case level >= Best:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}
