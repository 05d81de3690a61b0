package errs

import (
	"errors"
	"fmt"
	"log/slog"
)

// Wrap adds context while keeping the chain intact for errors.Is/As.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &wrapped{msg: msg, err: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &wrapped{msg: fmt.Sprintf(format, args...), err: err}
}

type wrapped struct {
	msg string
	err error
}

func (w *wrapped) Error() string { return w.msg + ": " + w.err.Error() }
func (w *wrapped) Unwrap() error { return w.err }

// Loggable makes slog encode an error as structured fields.
// Usage: slog.Any("err", errs.Loggable(err))
func Loggable(err error) slog.LogValuer { return loggable{err: err} }

type loggable struct{ err error }

func (l loggable) LogValue() slog.Value {
	if l.err == nil {
		return slog.GroupValue()
	}
	return slog.GroupValue(
		slog.String("message", l.err.Error()),
		slog.Any("chain", Chain(l.err)),
	)
}

// Chain returns the unwrap chain as strings, outer to inner.
func Chain(err error) []string {
	out := make([]string, 0, 4)
	for e := err; e != nil; e = errors.Unwrap(e) {
		out = append(out, e.Error())
	}
	return out
}
