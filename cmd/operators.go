package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/seqkit/collections"
	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/pipeline"
	"github.com/kbukum/seqkit/validation"
)

func stringComparer(cmd *cobra.Command) collections.Comparer[string] {
	if fold, _ := cmd.Flags().GetBool("fold"); fold {
		return collections.FoldStringComparer{}
	}
	return collections.StringComparer{}
}

func checkInputs(paths ...string) error {
	v := validation.New()
	for _, p := range paths {
		v.FileExists("input", p)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func newCountByCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "countby [FILE]",
		Short: "Count occurrences of each distinct line",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := inputPath(args, 0)
			if err := checkInputs(path); err != nil {
				return err
			}
			return a.run(cmd, func(ctx context.Context) error {
				counts := pipeline.CountBy(lines(cmd, path), identity[string], stringComparer(cmd))
				return write(ctx, cmd, instrument(a, counts, "countby"), func(kv pipeline.KeyValue[string, int]) string {
					return kv.Key + "\t" + strconv.Itoa(kv.Value)
				})
			})
		},
	}
	cmd.Flags().Bool("fold", false, "compare lines case-insensitively")
	return cmd
}

func newGroupByCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groupby [FILE]",
		Short: "Group integer lines by their remainder modulo --mod",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := inputPath(args, 0)
			mod, _ := cmd.Flags().GetInt("mod")
			if err := validation.New().Positive("mod", mod).FileExists("input", path).Validate(); err != nil {
				return err
			}
			return a.run(cmd, func(ctx context.Context) error {
				ints := pipeline.Select(lines(cmd, path), parseInt)
				groups := pipeline.GroupBy(ints, func(_ context.Context, v int) (int, error) {
					return v % mod, nil
				})
				return write(ctx, cmd, instrument(a, groups, "groupby"), func(g *collections.Grouping[int, int]) string {
					var b strings.Builder
					fmt.Fprintf(&b, "%d:", g.Key())
					for v := range g.Elements().All() {
						b.WriteString(" " + strconv.Itoa(v))
					}
					return b.String()
				})
			})
		},
	}
	cmd.Flags().Int("mod", 2, "modulus used as the group key")
	return cmd
}

func newSortCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sort [FILE]",
		Short: "Sort lines, stably",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := inputPath(args, 0)
			if err := checkInputs(path); err != nil {
				return err
			}
			flags := cmd.Flags()
			desc, _ := flags.GetBool("desc")
			numeric, _ := flags.GetBool("numeric")
			fold, _ := flags.GetBool("fold")

			return a.run(cmd, func(ctx context.Context) error {
				src := lines(cmd, path)
				if numeric {
					ints := pipeline.Select(src, parseInt)
					if desc {
						ints = pipeline.OrderByDescending(ints, identity[int])
					} else {
						ints = pipeline.OrderBy(ints, identity[int])
					}
					return write(ctx, cmd, instrument(a, ints, "sort"), strconv.Itoa)
				}

				key := identity[string]
				if fold {
					key = func(_ context.Context, s string) (string, error) { return strings.ToLower(s), nil }
				}
				var sorted *pipeline.Pipeline[string]
				if desc {
					sorted = pipeline.ThenByDescending(pipeline.OrderByDescending(src, key), identity[string])
				} else {
					sorted = pipeline.ThenBy(pipeline.OrderBy(src, key), identity[string])
				}
				return write(ctx, cmd, instrument(a, sorted, "sort"), func(s string) string { return s })
			})
		},
	}
	cmd.Flags().Bool("desc", false, "sort in descending order")
	cmd.Flags().Bool("numeric", false, "compare lines as integers")
	cmd.Flags().Bool("fold", false, "ignore case, breaking ties by byte order")
	return cmd
}

func newDistinctCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distinct [FILE]",
		Short: "Print each line once, in order of first appearance",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := inputPath(args, 0)
			if err := checkInputs(path); err != nil {
				return err
			}
			return a.run(cmd, func(ctx context.Context) error {
				out := pipeline.Distinct(lines(cmd, path), stringComparer(cmd))
				return write(ctx, cmd, instrument(a, out, "distinct"), func(s string) string { return s })
			})
		},
	}
	cmd.Flags().Bool("fold", false, "compare lines case-insensitively")
	return cmd
}

func newExceptCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "except EXCLUDE [FILE]",
		Short: "Print distinct lines of FILE that do not appear in EXCLUDE",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			exclude, path := args[0], inputPath(args, 1)
			if exclude == stdinPath {
				return errors.InvalidArgument("exclude", "must be a file")
			}
			if err := checkInputs(exclude, path); err != nil {
				return err
			}
			return a.run(cmd, func(ctx context.Context) error {
				out := pipeline.Except(lines(cmd, path), lines(cmd, exclude), stringComparer(cmd))
				return write(ctx, cmd, instrument(a, out, "except"), func(s string) string { return s })
			})
		},
	}
	cmd.Flags().Bool("fold", false, "compare lines case-insensitively")
	return cmd
}

func newTakeCommand(a *app) *cobra.Command {
	return newPartitionCommand(a, "take", "Print the first N lines", pipeline.Take[string], pipeline.TakeLast[string])
}

func newSkipCommand(a *app) *cobra.Command {
	return newPartitionCommand(a, "skip", "Print all but the first N lines", pipeline.Skip[string], pipeline.SkipLast[string])
}

type partitionFunc func(*pipeline.Pipeline[string], int) *pipeline.Pipeline[string]

func newPartitionCommand(a *app, name, short string, front, back partitionFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name + " N [FILE]",
		Short: short,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.InvalidArgument("N", "must be an integer")
			}
			path := inputPath(args, 1)
			if err := validation.New().NonNegative("N", n).FileExists("input", path).Validate(); err != nil {
				return err
			}
			op := front
			if last, _ := cmd.Flags().GetBool("last"); last {
				op = back
			}
			return a.run(cmd, func(ctx context.Context) error {
				out := op(lines(cmd, path), n)
				return write(ctx, cmd, instrument(a, out, name), func(s string) string { return s })
			})
		},
	}
	cmd.Flags().Bool("last", false, "count N from the end of the input")
	return cmd
}

func newMergeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge FILE...",
		Short: "Interleave the lines of several files as they are read",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buffer, _ := cmd.Flags().GetInt("buffer")
			v := validation.New().NonNegative("buffer", buffer)
			for _, p := range args {
				v.Custom(p != stdinPath, "input", "merge reads files only").FileExists("input", p)
			}
			if err := v.Validate(); err != nil {
				return err
			}
			return a.run(cmd, func(ctx context.Context) error {
				inputs := make([]*pipeline.Pipeline[string], len(args))
				for i, p := range args {
					inputs[i] = lines(cmd, p)
				}
				out := pipeline.Merge(inputs...)
				if buffer > 0 {
					out = pipeline.Buffer(out, buffer)
				}
				return write(ctx, cmd, instrument(a, out, "merge"), func(s string) string { return s })
			})
		},
	}
	cmd.Flags().Int("buffer", 0, "read ahead up to this many merged lines")
	return cmd
}
