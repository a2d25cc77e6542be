package web

import "embed"

// FS holds the page templates and the static assets under templates/ and static/.
//
//go:embed templates static
var FS embed.FS
