package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/spf13/cobra"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/pipeline"
)

const stdinPath = "-"

// lineIterator yields the lines of r without their terminators.
type lineIterator struct {
	r       io.ReadCloser
	scanner *bufio.Scanner
	once    sync.Once
	err     error
}

// maxLineSize bounds a single input line.
const maxLineSize = 16 << 20

func newLineIterator(r io.ReadCloser) *lineIterator {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineSize)
	return &lineIterator{r: r, scanner: sc}
}

func (it *lineIterator) Next(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if !it.scanner.Scan() {
		return "", false, it.scanner.Err()
	}
	return it.scanner.Text(), true, nil
}

func (it *lineIterator) Close() error {
	it.once.Do(func() { it.err = it.r.Close() })
	return it.err
}

// lines returns a pipeline over the lines of path. The file is opened when
// enumeration starts; "-" reads the command's standard input.
func lines(cmd *cobra.Command, path string) *pipeline.Pipeline[string] {
	return pipeline.FromFunc(func(ctx context.Context) pipeline.Iterator[string] {
		if path == stdinPath {
			return newLineIterator(io.NopCloser(cmd.InOrStdin()))
		}
		f, err := os.Open(path)
		if err != nil {
			return pipeline.Fail[string](err).Iter(ctx)
		}
		return newLineIterator(f)
	})
}

// inputPath returns args[i] or stdin when absent.
func inputPath(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return stdinPath
}

func parseInt(_ context.Context, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.InvalidArgument("input", fmt.Sprintf("%q is not an integer", s))
	}
	return n, nil
}

func identity[T any](_ context.Context, v T) (T, error) { return v, nil }

// write drains p into the command's output, one formatted element per line.
func write[T any](ctx context.Context, cmd *cobra.Command, p *pipeline.Pipeline[T], format func(T) string) error {
	w := bufio.NewWriter(cmd.OutOrStdout())
	err := pipeline.Drain(p, func(_ context.Context, v T) error {
		_, err := fmt.Fprintln(w, format(v))
		return err
	}).Run(ctx)
	return errors.Aggregate(err, w.Flush())
}
