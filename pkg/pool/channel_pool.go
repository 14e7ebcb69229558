package pool

// ChannelPool pools buffered channels of a fixed size. Channels are drained
// before re-entering the pool so a reused channel never delivers stale
// values.
type ChannelPool[T any] struct {
	inner *Pool[chan T]
	size  int
}

// NewChannelPool creates a channel pool with the given buffer size.
func NewChannelPool[T any](size int) *ChannelPool[T] {
	return &ChannelPool[T]{
		size: size,
		inner: New(
			func() chan T { return make(chan T, size) },
			func(ch chan T) chan T {
				for {
					select {
					case <-ch:
					default:
						return ch
					}
				}
			},
		),
	}
}

// Get retrieves an empty channel from the pool.
func (p *ChannelPool[T]) Get() chan T {
	return p.inner.Detach()
}

// Put returns a channel to the pool. The channel must not have concurrent
// senders; any buffered values are discarded.
func (p *ChannelPool[T]) Put(ch chan T) {
	if ch == nil {
		return
	}
	p.inner.Attach(ch).Release()
}

// Size returns the number of channels immediately available.
func (p *ChannelPool[T]) Size() int {
	return p.inner.Size()
}
