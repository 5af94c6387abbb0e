// Package version holds build metadata, set with -ldflags "-X".
package version

var Version = "0.1.0"
