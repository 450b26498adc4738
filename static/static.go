// Package static embeds the assets served under /static and /docs.
package static

import "embed"

//go:embed openapi.html openapi.json
var FS embed.FS
