package store

import "context"

// keysetCursor: ambil batch berikutnya memakai item terakhir sebagai keyset.
// Tidak pernah memuat seluruh tabel.
type keysetCursor[T any] struct {
	fetch func(ctx context.Context, last *T) ([]T, error)
	batch int

	buf  []T
	pos  int
	last *T
	done bool
}

func (c *keysetCursor[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if c.pos >= len(c.buf) {
		if c.done {
			return zero, false, nil
		}
		rows, err := c.fetch(ctx, c.last)
		if err != nil {
			return zero, false, err
		}
		c.buf, c.pos = rows, 0
		if len(rows) < c.batch {
			c.done = true
		}
		if len(rows) == 0 {
			return zero, false, nil
		}
	}
	it := c.buf[c.pos]
	c.pos++
	c.last = &it
	return it, true, nil
}

func (c *keysetCursor[T]) Close() error {
	c.buf = nil
	c.done = true
	return nil
}
