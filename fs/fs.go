// Package appfs embeds non-Go assets shipped with the backend binary:
// database migrations and email templates.
package appfs

import "embed"

//go:embed migrations all:templates
var FS embed.FS
