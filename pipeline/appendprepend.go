package pipeline

import (
	"context"

	"github.com/kbukum/seqkit/errors"
)

// appendPrepend is the chain head shared by consecutive Append and Prepend
// calls. prepended is kept in call order and emitted in reverse.
type appendPrepend[T any] struct {
	up        source[T]
	prepended []T
	appended  []T
}

func (s *appendPrepend[T]) open(ctx context.Context) Iterator[T] {
	return drive[T](ctx, &appendPrependOp[T]{
		in:        input[T]{it: s.up.open(ctx)},
		prepended: s.prepended,
		appended:  s.appended,
		next:      len(s.prepended) - 1,
	})
}

func (s *appendPrepend[T]) discard() error { return s.up.discard() }

// Append yields v after every element of p.
func Append[T any](p *Pipeline[T], v T) *Pipeline[T] {
	return appendPrependChain(p, "Append", func(h *appendPrepend[T]) { h.appended = append(h.appended, v) })
}

// Prepend yields v before every element of p. Consecutive prepends are
// emitted last-prepended-first.
func Prepend[T any](p *Pipeline[T], v T) *Pipeline[T] {
	return appendPrependChain(p, "Prepend", func(h *appendPrepend[T]) { h.prepended = append(h.prepended, v) })
}

func appendPrependChain[T any](p *Pipeline[T], op string, add func(*appendPrepend[T])) *Pipeline[T] {
	if p != nil {
		if head, ok := p.src.(*appendPrepend[T]); ok {
			next, ok := p.reissue()
			if !ok {
				return Fail[T](errors.StaleHandle(op))
			}
			add(head)
			return next
		}
	}
	src, err := p.claim(op)
	if err != nil {
		return Fail[T](err)
	}
	head := &appendPrepend[T]{up: src}
	add(head)
	return newPipeline[T](head)
}

type appendPrependOp[T any] struct {
	in        input[T]
	prepended []T
	appended  []T
	next      int
	phase     int
}

func (o *appendPrependOp[T]) advance(ctx context.Context) (T, bool, error) {
	var zero T
	for {
		switch o.phase {
		case 0:
			if o.next >= 0 {
				v := o.prepended[o.next]
				o.next--
				return v, true, nil
			}
			o.phase = 1
		case 1:
			v, ok, err := o.in.next(ctx)
			if err != nil {
				return zero, false, err
			}
			if ok {
				return v, true, nil
			}
			o.phase, o.next = 2, 0
		default:
			if o.next < len(o.appended) {
				v := o.appended[o.next]
				o.next++
				return v, true, nil
			}
			return zero, false, nil
		}
	}
}

func (o *appendPrependOp[T]) release() error { return o.in.close() }
