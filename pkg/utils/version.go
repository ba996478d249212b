// Package utils carries the small helpers shared across psyche commands that
// are too slight to be packages of their own.
package utils

// Build identification, stamped by the release pipeline via ldflags.
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)
