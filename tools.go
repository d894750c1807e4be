//go:build tools

package tools

import (
	// mockery generates the listener mocks in pkg/fit/mocks.
	// Run: go run github.com/vektra/mockery/v2
	_ "github.com/vektra/mockery/v2"
)
