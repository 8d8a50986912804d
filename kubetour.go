// Package kubetour holds build-time identity shared by the binaries
package kubetour

const Name = "kubetour"

// Version is overridden at build time via -ldflags
var Version = "dev"
