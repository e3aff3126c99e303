package log

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
)

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// FormatError renders err together with its stack trace if the error or its
// cause carries one. Errors without a stack trace render as their plain
// message.
func FormatError(err error) string {
	stErr, ok := err.(stackTracer)
	if !ok {
		stErr, ok = errors.Cause(err).(stackTracer)
	}

	if ok {
		b := &bytes.Buffer{}
		fmt.Fprintf(b, "%s\n", err)

		for _, f := range stErr.StackTrace() {
			fmt.Fprintf(b, "  %+v\n", f)
		}

		return b.String()
	}

	return fmt.Sprint(err)
}
