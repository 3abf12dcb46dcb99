// ABOUTME: Build and product identification
// ABOUTME: Reported in the WebSocket hello and the CLI banner
package version

import "fmt"

// Version is overridden at build time with -ldflags "-X .../version.Version=..."
var Version = "0.3.0"

const (
	Product      = "Resonate Beatbox"
	Manufacturer = "Resonate"
)

// String returns "Product vVersion"
func String() string {
	return fmt.Sprintf("%s v%s", Product, Version)
}
