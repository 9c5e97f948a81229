package utils

import (
	"context"
	"runtime/debug"
	"strings"
	"unicode/utf8"
)

// ToPointer returns a pointer to a copy of v.
func ToPointer[T any](v T) *T {
	return &v
}

// PanicHandler receives a recovered panic value and the goroutine stack.
type PanicHandler func(recovered interface{}, stack []byte)

// GoSafe runs fn in a goroutine and recovers from panics, reporting them to onPanic.
// Deferred calls inside fn run before onPanic.
func GoSafe(fn func(), onPanic PanicHandler) {
	go func() {
		defer func() {
			if r := recover(); r != nil && onPanic != nil {
				onPanic(r, debug.Stack())
			}
		}()
		fn()
	}()
}

// ShouldContinue reports whether ctx is still alive.
func ShouldContinue(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	default:
		return true
	}
}

// CleanToValidUTF8 drops invalid byte sequences and trims whitespace.
func CleanToValidUTF8(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	return strings.TrimSpace(s)
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// NormalizeTicker upper-cases and trims a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
