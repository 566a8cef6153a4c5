// internal/curve/default.go
package curve

import (
	_ "embed"
	"sync"
)

//go:embed wbb_default.yaml
var defaultCurve []byte

var (
	defaultOnce sync.Once
	defaultMap  *Map
	defaultErr  error
)

// Default returns the built-in WBB power curve. It is parsed on first use.
func Default() (*Map, error) {
	defaultOnce.Do(func() {
		defaultMap, defaultErr = parse(defaultCurve)
		if defaultErr != nil {
			defaultErr = &ResourceError{Resource: "wbb_default.yaml", Err: defaultErr}
		}
	})
	return defaultMap, defaultErr
}
