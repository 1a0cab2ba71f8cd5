// Package web holds the default greeting site: layout, routes, components and
// static assets. `greetform init` copies it into a new project.
package web

import "embed"

//go:embed layout.html routes components public
var Starter embed.FS
