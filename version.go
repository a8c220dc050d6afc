package xmlpo

// Version information for xmlpo.
// These values can be overridden at build time using ldflags:
//
//	go build -ldflags "-X github.com/ZaguanLabs/xmlpo.GitCommit=$(git rev-parse HEAD)"
const (
	// Name is the application name.
	Name = "xmlpo"

	// Description is a short description of the application.
	Description = "Extract translatable messages from XML documents into PO catalogs and merge translations back"

	// Version is the semantic version of the application.
	Version = "0.1.0"

	// Repository is the source code repository URL.
	Repository = "https://github.com/ZaguanLabs/xmlpo"

	// License is the software license.
	License = "MIT"
)

// Build information, set via ldflags.
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// FullVersion returns the version string with the short commit appended
// when known.
func FullVersion() string {
	v := Version
	if GitCommit != "unknown" && GitCommit != "" {
		short := GitCommit
		if len(short) > 7 {
			short = short[:7]
		}
		v += "+" + short
	}
	return v
}

// Generator is the value written to the X-Generator header of catalogs.
func Generator() string {
	return Name + " " + Version
}
