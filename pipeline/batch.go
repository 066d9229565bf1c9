package pipeline

import (
	"context"

	"github.com/kbukum/seqkit/errors"
)

// Chunk groups consecutive values into slices of size elements; the last
// slice may be shorter. size <= 0 uses the configured default.
//
// Each yielded slice is freshly allocated and owned by the caller.
func Chunk[T any](p *Pipeline[T], size int) *Pipeline[[]T] {
	if size <= 0 {
		size = active().chunkSize
	}
	return chain(p, "Chunk", func(_ context.Context, in Iterator[T]) operator[[]T] {
		return &chunkOp[T]{in: input[T]{it: in}, size: size}
	})
}

// Batch is Chunk with the size checked instead of defaulted.
func Batch[T any](p *Pipeline[T], size int) *Pipeline[[]T] {
	if size <= 0 {
		err := errors.InvalidArgument("size", "must be positive")
		return Fail[[]T](errors.Aggregate(err, p.Close()))
	}
	return Chunk(p, size)
}

type chunkOp[T any] struct {
	in   input[T]
	size int
	done bool
}

func (o *chunkOp[T]) advance(ctx context.Context) ([]T, bool, error) {
	if o.done {
		return nil, false, nil
	}
	var chunk []T
	for len(chunk) < o.size {
		val, ok, err := o.in.next(ctx)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			o.done = true
			break
		}
		if chunk == nil {
			chunk = make([]T, 0, o.size)
		}
		chunk = append(chunk, val)
	}
	if len(chunk) == 0 {
		return nil, false, nil
	}
	return chunk, true, nil
}

func (o *chunkOp[T]) release() error { return o.in.close() }
