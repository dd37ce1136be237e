package espalier

// Version is the library release version. Overridden at build time via
// -ldflags "-X github.com/espalier-dev/espalier.Version=...".
var Version = "0.3.0"
