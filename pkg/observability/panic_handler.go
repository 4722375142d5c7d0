package observability

import (
	"fmt"
	"runtime/debug"
)

// RecoverPanic recovers a panic from the calling goroutine and logs it at
// Error level with the panic value, the stack, and a short context label.
// Must be deferred directly:
//
//	defer observability.RecoverPanic(logger, "worker loop")
//
// The panic is not re-raised; the surrounding function returns normally.
func RecoverPanic(logger *Logger, context string) {
	if r := recover(); r != nil {
		logger.WithField("panic", r).
			WithField("stack", string(debug.Stack())).
			WithField("context", context).
			Error("PANIC recovered")
	}
}

// MustRecover converts a recovered panic value to an error, or nil when
// no panic occurred. Callers pass recover() from their own defer so the
// panic is caught in the right frame:
//
//	defer func() {
//	    if rerr := observability.MustRecover(recover()); rerr != nil {
//	        err = rerr
//	    }
//	}()
//
// The stack trace is not included; use RecoverPanic where the full trace
// should be logged.
func MustRecover(r interface{}) error {
	if r != nil {
		return fmt.Errorf("panic: %v", r)
	}
	return nil
}
