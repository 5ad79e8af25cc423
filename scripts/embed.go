// Package scripts embeds the Risor report scripts shipped with schematic.
package scripts

import "embed"

// FS holds report/*.risor.
//
//go:embed report/*.risor
var FS embed.FS
