package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/benz9527/xseq/lib/infra"
	"github.com/benz9527/xseq/lib/list"
	"github.com/benz9527/xseq/lib/xlog"
)

const (
	atLeastOneArg = -1
	optionalArg   = -2
)

type command struct {
	args int // exact number of arguments when not negative
	fn   func(it *interpreter, args []string) (string, error)
}

var commands = map[string]command{
	"append": {atLeastOneArg, func(it *interpreter, args []string) (string, error) {
		it.chain.Append(strings.Join(args, " "))
		return "ok", nil
	}},
	"insert": {atLeastOneArg, func(it *interpreter, args []string) (string, error) {
		if len(args) < 2 {
			return "", infra.NewErrorStack("usage: insert <index> <value>")
		}
		idx, err := parseIndex(args[0])
		if err != nil {
			return "", err
		}
		return "ok", it.chain.Insert(idx, strings.Join(args[1:], " "))
	}},
	"get": {1, func(it *interpreter, args []string) (string, error) {
		idx, err := parseIndex(args[0])
		if err != nil {
			return "", err
		}
		return it.chain.Get(idx)
	}},
	"set": {atLeastOneArg, func(it *interpreter, args []string) (string, error) {
		if len(args) < 2 {
			return "", infra.NewErrorStack("usage: set <index> <value>")
		}
		idx, err := parseIndex(args[0])
		if err != nil {
			return "", err
		}
		return "ok", it.chain.Set(idx, strings.Join(args[1:], " "))
	}},
	"del": {1, func(it *interpreter, args []string) (string, error) {
		idx, err := parseIndex(args[0])
		if err != nil {
			return "", err
		}
		return "ok", it.chain.Delete(idx)
	}},
	"pop": {optionalArg, func(it *interpreter, args []string) (string, error) {
		if len(args) == 0 {
			return it.chain.PopBack()
		}
		idx, err := parseIndex(args[0])
		if err != nil {
			return "", err
		}
		return it.chain.Pop(idx)
	}},
	"contains": {atLeastOneArg, func(it *interpreter, args []string) (string, error) {
		return strconv.FormatBool(it.chain.Contains(strings.Join(args, " "))), nil
	}},
	"count": {atLeastOneArg, func(it *interpreter, args []string) (string, error) {
		return strconv.FormatInt(it.chain.Count(strings.Join(args, " ")), 10), nil
	}},
	"index": {atLeastOneArg, func(it *interpreter, args []string) (string, error) {
		idx, _ := it.chain.Index(strings.Join(args, " "))
		return strconv.FormatInt(idx, 10), nil
	}},
	"remove": {atLeastOneArg, func(it *interpreter, args []string) (string, error) {
		return strconv.FormatBool(it.chain.Remove(strings.Join(args, " "))), nil
	}},
	"len": {0, func(it *interpreter, _ []string) (string, error) {
		return strconv.FormatInt(it.chain.Len(), 10), nil
	}},
	"list": {0, func(it *interpreter, _ []string) (string, error) {
		return it.chain.String(), nil
	}},
	"repr": {0, func(it *interpreter, _ []string) (string, error) {
		return it.chain.GoString(), nil
	}},
	"reverse": {0, func(it *interpreter, _ []string) (string, error) {
		return fmt.Sprint(slices.Collect(it.chain.Backward())), nil
	}},
	"check": {0, func(it *interpreter, _ []string) (string, error) {
		return "ok", it.chain.Verify()
	}},
	"clear": {0, func(it *interpreter, _ []string) (string, error) {
		it.chain.Clear()
		return "ok", nil
	}},
}

// parseIndex hands the non-numeric arguments to the chain index
// conversion, so they are reported as a type error. Integers beyond
// int64 are out of any chain's range.
func parseIndex(arg string) (int64, error) {
	n, err := strconv.ParseInt(arg, 10, 64)
	switch {
	case err == nil:
		return list.AsIndex(n)
	case errors.Is(err, strconv.ErrRange):
		return 0, infra.WrapErrorStackWithMessage(list.ErrChainIndexOutOfRange, fmt.Sprintf("index %s overflows int64", arg))
	default:
	}
	return list.AsIndex(arg)
}

// interpreter runs one chain command per input line.
// Blank lines and lines starting with # are skipped.
type interpreter struct {
	chain  list.Chain[string]
	logger xlog.XLogger
	out    io.Writer
}

func newInterpreter(chain list.Chain[string], logger xlog.XLogger, out io.Writer) *interpreter {
	return &interpreter{
		chain:  chain,
		logger: logger,
		out:    out,
	}
}

func (it *interpreter) exec(line string) (string, error) {
	fields := strings.Fields(line)
	name, args := strings.ToLower(fields[0]), fields[1:]
	cmd, ok := commands[name]
	if !ok {
		return "", infra.NewErrorStack("unknown command: " + name)
	}
	switch {
	case cmd.args >= 0 && len(args) != cmd.args,
		cmd.args == atLeastOneArg && len(args) == 0,
		cmd.args == optionalArg && len(args) > 1:
		return "", infra.NewErrorStack(fmt.Sprintf("wrong number of arguments for %s: %d", name, len(args)))
	default:
	}
	return cmd.fn(it, args)
}

func (it *interpreter) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		res, err := it.exec(line)
		if err != nil {
			it.logger.Debug("command failed", zap.Int("line", lineNo), zap.String("command", line))
			_, _ = fmt.Fprintf(it.out, "error: %v\n", err)
			continue
		}
		_, _ = fmt.Fprintln(it.out, res)
	}
	return infra.WrapErrorStack(scanner.Err())
}
