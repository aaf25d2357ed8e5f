package infra

import (
	"errors"
	"fmt"
	"io"
	"path"
	"runtime"
	"strconv"
	"strings"

	"go.uber.org/zap/zapcore"
)

// References:
// https://github.com/pkg/errors/blob/master/stack.go

const maxStackDepth = 16

type Frame uintptr

func (frame Frame) pc() uintptr {
	return uintptr(frame) - 1
}

func (frame Frame) fileLine() (string, int, bool) {
	fn := runtime.FuncForPC(frame.pc())
	if fn == nil {
		return "", 0, false
	}
	f, l := fn.FileLine(frame.pc())
	return f, l, true
}

func (frame Frame) name() string {
	fn := runtime.FuncForPC(frame.pc())
	if fn == nil {
		return "unknownFunc"
	}
	return fn.Name()
}

// Format characters:
// %s - source file
// %d - source line
// %n - function name
// %v - equivalent to %s:%d
// %+s - function name and full path separated by \n\t
// %+v - equivalent to %+s:%d
func (frame Frame) Format(s fmt.State, verb rune) {
	switch verb {
	case 's':
		file, _, ok := frame.fileLine()
		if !ok {
			file = "unknownFile"
		}
		if s.Flag('+') {
			_, _ = io.WriteString(s, frame.name())
			_, _ = io.WriteString(s, "\n\t")
			_, _ = io.WriteString(s, file)
			return
		}
		_, _ = io.WriteString(s, path.Base(file))
	case 'd':
		_, line, _ := frame.fileLine()
		_, _ = io.WriteString(s, strconv.Itoa(line))
	case 'n':
		_, _ = io.WriteString(s, funcName(frame.name()))
	case 'v':
		frame.Format(s, 's')
		_, _ = io.WriteString(s, ":")
		frame.Format(s, 'd')
	}
}

func (frame Frame) MarshalText() ([]byte, error) {
	file, line, ok := frame.fileLine()
	if !ok {
		return []byte("unknownFrame"), nil
	}
	return []byte(frame.name() + " " + file + ":" + strconv.Itoa(line)), nil
}

func funcName(name string) string {
	i := strings.LastIndex(name, "/")
	name = name[i+1:]
	i = strings.Index(name, ".")
	return name[i+1:]
}

type stack []Frame

func callers(skip int) stack {
	var pcs [maxStackDepth]uintptr
	n := runtime.Callers(skip, pcs[:])
	st := make(stack, 0, n)
	for i := 0; i < n; i++ {
		st = append(st, Frame(pcs[i]))
	}
	return st
}

// ErrorStack is an error carrying the frames where it was created.
// It is also a zap object marshaler, so it can be inlined into the
// structured log entries as a JSON object instead of a plain string.
type ErrorStack interface {
	error
	zapcore.ObjectMarshaler
	Unwrap() error
	Frames() []Frame
}

var _ ErrorStack = (*errorStack)(nil)

type errorStack struct {
	cause error
	msg   string
	st    stack
}

func (es *errorStack) Error() string {
	if es.cause == nil {
		return es.msg
	}
	if len(es.msg) == 0 {
		return es.cause.Error()
	}
	return es.msg + ": " + es.cause.Error()
}

func (es *errorStack) Unwrap() error {
	return es.cause
}

func (es *errorStack) Frames() []Frame {
	return es.st
}

func (es *errorStack) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		_, _ = io.WriteString(s, es.Error())
		if s.Flag('+') {
			for _, f := range es.st {
				_, _ = io.WriteString(s, "\n")
				f.Format(s, verb)
			}
		}
	case 's':
		_, _ = io.WriteString(s, es.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", es.Error())
	}
}

func (es *errorStack) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("error", es.Error())
	return enc.AddArray("errorStack", zapcore.ArrayMarshalerFunc(func(arr zapcore.ArrayEncoder) error {
		for _, f := range es.st {
			text, _ := f.MarshalText()
			arr.AppendString(string(text))
		}
		return nil
	}))
}

func NewErrorStack(msg string) error {
	return &errorStack{
		msg: msg,
		st:  callers(3),
	}
}

// WrapErrorStack returns nil if err is nil.
// An error already carrying a stack is returned as is.
func WrapErrorStack(err error) error {
	if err == nil {
		return nil
	}
	var es ErrorStack
	if errors.As(err, &es) {
		return err
	}
	return &errorStack{
		cause: err,
		st:    callers(3),
	}
}

func WrapErrorStackWithMessage(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &errorStack{
		cause: err,
		msg:   msg,
		st:    callers(3),
	}
}
