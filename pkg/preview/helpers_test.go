package preview_test

import (
	"github.com/goliatone/go-specviz/pkg/debounce"
	"github.com/goliatone/go-specviz/pkg/testsupport"
)

func debounceClock(c *testsupport.ManualClock) debounce.Option {
	return debounce.WithClock(c)
}
