package version

// At build time, the versions is replaced with the current version using the -X linker flag
var (
	// Version is the main version number that is being run at the moment.
	Version = "0.1.0"

	// GitCommit is the git commit the executable was built from.
	GitCommit string

	// BuildDate is the date the executable was built.
	BuildDate string
)
