package generation

import (
	"iter"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"combitest/internal/domain"
)

// Shard distributes a sequence round-robin over total shards and yields
// the members of shard index (0-based). Running every shard of the same
// sequence covers it exactly once.
func Shard(seq iter.Seq[domain.Combination], index, total int) (iter.Seq[domain.Combination], error) {
	if total < 1 || index < 0 || index >= total {
		return nil, errors.Errorf("invalid shard %d of %d", index, total)
	}
	return func(yield func(domain.Combination) bool) {
		i := 0
		for c := range seq {
			if i%total == index {
				if !yield(c) {
					return
				}
			}
			i++
		}
	}, nil
}

// ParseShard parses the 1-based "i/n" notation used on the command line
// and returns a 0-based index.
func ParseShard(s string) (index, total int, err error) {
	a, b, ok := strings.Cut(s, "/")
	if !ok {
		return 0, 0, errors.Errorf("shard %q: want i/n", s)
	}
	i, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0, errors.Wrapf(err, "shard %q", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return 0, 0, errors.Wrapf(err, "shard %q", s)
	}
	if n < 1 || i < 1 || i > n {
		return 0, 0, errors.Errorf("shard %q out of range", s)
	}
	return i - 1, n, nil
}

// Limit stops a sequence after n combinations. n <= 0 means no limit.
func Limit(seq iter.Seq[domain.Combination], n int) iter.Seq[domain.Combination] {
	if n <= 0 {
		return seq
	}
	return func(yield func(domain.Combination) bool) {
		count := 0
		for c := range seq {
			if !yield(c) {
				return
			}
			count++
			if count >= n {
				return
			}
		}
	}
}

// Collect materializes a sequence.
func Collect(seq iter.Seq[domain.Combination]) []domain.Combination {
	var out []domain.Combination
	for c := range seq {
		out = append(out, c)
	}
	return out
}
