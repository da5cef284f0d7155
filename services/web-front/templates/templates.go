// Package templates embeds the HTML views of the web front.
package templates

import "embed"

//go:embed html/*.html
var FS embed.FS
