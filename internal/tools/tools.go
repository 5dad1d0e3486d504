//go:build tools

// Package tools pins the code-generation-only dependency versions that
// `go mod tidy` would otherwise prune, following the standard Go idiom for
// a tool dependency with no runtime import: a blank import behind a build
// tag that is never compiled into the binary.
package tools

import (
	_ "github.com/oapi-codegen/oapi-codegen/v2/cmd/oapi-codegen"
)
