// Package jsonpool provides high-performance JSON serialization backed by
// pooled buffers.
//
// Marshal and Unmarshal are drop-in replacements for the standard library
// functions using goccy/go-json. The *ToBuffer and *ToWriter variants encode
// through a shared buffer pool so repeated serialization reuses scratch
// memory instead of allocating it.
package jsonpool

import (
	"bytes"
	"io"

	gojson "github.com/goccy/go-json"

	"github.com/caelunshun/swimmer/pkg/pool"
)

// maxPooledBuffer is the capacity above which a buffer is discarded instead
// of returned, so one huge payload does not pin memory forever.
const maxPooledBuffer = 1 << 20

const initialBufferSize = 4096

var buffers = pool.NewBuffers(initialBufferSize)

// Marshal is a drop-in replacement for json.Marshal.
func Marshal(v interface{}) ([]byte, error) {
	return gojson.Marshal(v)
}

// Unmarshal is a drop-in replacement for json.Unmarshal.
func Unmarshal(data []byte, v interface{}) error {
	return gojson.Unmarshal(data, v)
}

// MarshalIndent is a drop-in replacement for json.MarshalIndent.
func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return gojson.MarshalIndent(v, prefix, indent)
}

// MarshalToBuffer encodes v into a pooled buffer and returns the guard
// holding it. The caller reads guard.Value and must Release the guard when
// done; the buffer's contents are invalid after release.
func MarshalToBuffer(v interface{}) (*pool.Pooled[*bytes.Buffer], error) {
	g := buffers.Get()
	enc := gojson.NewEncoder(g.Value)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		g.Release()
		return nil, err
	}
	return g, nil
}

// MarshalToWriter encodes v directly to w through a pooled scratch buffer.
func MarshalToWriter(w io.Writer, v interface{}) error {
	g, err := MarshalToBuffer(v)
	if err != nil {
		return err
	}
	defer release(g)
	_, err = g.Value.WriteTo(w)
	return err
}

// MarshalMultiple encodes several values into one byte slice, separated by
// the given separator. The trailing newline Encode appends is stripped from
// each value.
func MarshalMultiple(values []interface{}, separator []byte) ([]byte, error) {
	g := buffers.Get()
	defer release(g)
	buf := g.Value

	enc := gojson.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	for i, v := range values {
		if i > 0 && separator != nil {
			buf.Write(separator)
		}
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
		if buf.Len() > 0 && buf.Bytes()[buf.Len()-1] == '\n' {
			buf.Truncate(buf.Len() - 1)
		}
	}

	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// MarshalArray encodes a slice of values as a JSON array.
func MarshalArray(values []interface{}) ([]byte, error) {
	if len(values) == 0 {
		return []byte("[]"), nil
	}

	g := buffers.Get()
	defer release(g)
	buf := g.Value

	buf.WriteByte('[')
	for i, v := range values {
		if i > 0 {
			buf.WriteByte(',')
		}
		data, err := gojson.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	buf.WriteByte(']')

	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// StreamingEncoder writes a sequence of values to a writer as either a JSON
// array or line-delimited JSON, without buffering the whole output.
type StreamingEncoder struct {
	w       io.Writer
	enc     *gojson.Encoder
	isArray bool
	first   bool
	pretty  bool
}

// NewStreamingEncoder creates a streaming encoder. When isArray is true the
// output is a single JSON array; otherwise each value becomes one line.
func NewStreamingEncoder(w io.Writer, isArray bool) *StreamingEncoder {
	se := &StreamingEncoder{
		w:       w,
		enc:     gojson.NewEncoder(w),
		isArray: isArray,
		first:   true,
	}
	se.enc.SetEscapeHTML(false)
	if isArray {
		w.Write([]byte{'['})
	}
	return se
}

// SetPretty enables indented output.
func (se *StreamingEncoder) SetPretty(pretty bool, indent string) {
	se.pretty = pretty
	if pretty {
		se.enc.SetIndent("", indent)
	}
}

// Encode writes one value.
func (se *StreamingEncoder) Encode(v interface{}) error {
	if se.isArray {
		if !se.first {
			se.w.Write([]byte{','})
			if se.pretty {
				se.w.Write([]byte{'\n'})
			}
		}
		se.first = false
	}
	return se.enc.Encode(v)
}

// Close finalizes the output.
func (se *StreamingEncoder) Close() error {
	if se.isArray {
		if se.pretty {
			se.w.Write([]byte{'\n'})
		}
		_, err := se.w.Write([]byte{']'})
		return err
	}
	return nil
}

// release returns a buffer guard, dropping oversized buffers so the pool
// holds only reasonably sized scratch space.
func release(g *pool.Pooled[*bytes.Buffer]) {
	if g.Value != nil && g.Value.Cap() > maxPooledBuffer {
		g.Discard()
		return
	}
	g.Release()
}
