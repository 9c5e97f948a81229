package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatEpoch(t *testing.T) {
	assert.Equal(t, "2024-11-01 00:00:00", FormatEpoch(1730419200))
}

func TestLookbackWindow(t *testing.T) {
	now := time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC)
	from, to := LookbackWindow(now, 30)
	assert.Equal(t, now, to)
	assert.Equal(t, time.Date(2024, 10, 31, 0, 0, 0, 0, time.UTC), from)
}

func TestGoSafeReportsPanic(t *testing.T) {
	type report struct {
		value interface{}
		stack []byte
	}
	reports := make(chan report, 1)

	GoSafe(func() {
		panic("feed exploded")
	}, func(recovered interface{}, stack []byte) {
		reports <- report{value: recovered, stack: stack}
	})

	select {
	case r := <-reports:
		assert.Equal(t, "feed exploded", r.value)
		assert.Contains(t, string(r.stack), "TestGoSafeReportsPanic")
	case <-time.After(time.Second):
		t.Fatal("panic was not reported")
	}
}

func TestGoSafeWithoutHandlerStillRecovers(t *testing.T) {
	done := make(chan struct{})
	GoSafe(func() {
		defer close(done)
		panic("ignored")
	}, nil)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goroutine did not run")
	}
}

func TestShouldContinue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	assert.True(t, ShouldContinue(ctx))
	cancel()
	assert.False(t, ShouldContinue(ctx))
}

func TestStringHelpers(t *testing.T) {
	assert.Equal(t, "AAPL", NormalizeTicker(" aapl "))
	assert.Equal(t, "abc", CleanToValidUTF8(" a\xffbc "))
	assert.Equal(t, "Appl", Truncate("Apple", 4))
	assert.Equal(t, "Apple", Truncate("Apple", 10))
	assert.Equal(t, 5, *ToPointer(5))
}
