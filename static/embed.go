// Package static bundles the HTML shell served at the site root.
package static

import _ "embed"

// Index is the root page.
//
//go:embed index.html
var Index []byte
