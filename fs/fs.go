package appfs

import "embed"

// FS holds all static assets shipped with the binaries: goose migrations
// and email templates.
//go:embed migrations templates
var FS embed.FS
