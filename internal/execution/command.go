package execution

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"
	"unicode"

	"github.com/pkg/errors"

	"combitest/internal/domain"
)

const (
	// DefaultSkipExitCode marks a skipped test, following the automake convention.
	DefaultSkipExitCode = 77
	// EnvPrefix prefixes the variables exported to command predicates.
	EnvPrefix = "CIT_"

	outputTailLines = 20
	waitDelay       = 2 * time.Second
)

// Command is a predicate that runs an external program once per
// combination. Exit status 0 passes, 1 fails, SkipExitCode skips; any
// other status, or a failure to start, is an error.
type Command struct {
	Path string
	Args []string
	Dir  string
	Env  []string

	// SkipExitCode defaults to DefaultSkipExitCode.
	SkipExitCode int

	// DatabaseName, when set, selects the DB_DATABASE exported for a worker.
	DatabaseName func(workerID int) string
}

// NewCommand splits a command line on whitespace into a Command.
func NewCommand(line string) (*Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, errors.New("empty command")
	}
	return &Command{Path: fields[0], Args: fields[1:]}, nil
}

// Evaluate runs the command with the combination exported in its environment.
func (c *Command) Evaluate(ctx context.Context, comb domain.Combination) (Outcome, error) {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Env = os.Environ()
	cmd.Env = append(cmd.Env, c.Env...)
	cmd.Env = append(cmd.Env, CombinationEnv(comb)...)
	if c.DatabaseName != nil {
		// Provisioned databases are numbered from 1; sequential runs use worker 0.
		id := max(WorkerID(ctx), 1)
		cmd.Env = append(cmd.Env, "DB_DATABASE="+c.DatabaseName(id))
	}
	cmd.Dir = c.Dir
	cmd.WaitDelay = waitDelay

	output, err := cmd.CombinedOutput()
	if err == nil {
		return Pass, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return 0, errors.Wrapf(err, "run %s", c.Path)
	}
	skip := c.SkipExitCode
	if skip == 0 {
		skip = DefaultSkipExitCode
	}
	switch code := exitErr.ExitCode(); code {
	case skip:
		return Skip, nil
	case 1:
		if tail := outputTail(output); tail != "" {
			return Fail, Reason(tail)
		}
		return Fail, nil
	default:
		if tail := outputTail(output); tail != "" {
			return 0, errors.Errorf("%s: %s", exitErr, tail)
		}
		return 0, errors.Errorf("%s", exitErr)
	}
}

// CombinationEnv renders a combination as environment assignments:
// one CIT_<DIMENSION> per pair plus CIT_COMBINATION holding the key.
func CombinationEnv(comb domain.Combination) []string {
	pairs := comb.Pairs()
	env := make([]string, 0, len(pairs)+1)
	for _, p := range pairs {
		env = append(env, EnvPrefix+EnvName(p.Dimension)+"="+string(p.Value))
	}
	return append(env, EnvPrefix+"COMBINATION="+comb.Key())
}

// EnvName upper-cases a dimension name and replaces anything outside
// [A-Z0-9] with an underscore.
func EnvName(dimension string) string {
	return strings.Map(func(r rune) rune {
		r = unicode.ToUpper(r)
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, dimension)
}

func outputTail(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(lines) > outputTailLines {
		lines = lines[len(lines)-outputTailLines:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
