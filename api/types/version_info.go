package types

// VersionDetail represents detail information of the folio build.
type VersionDetail struct {
	// FolioVersion
	FolioVersion string `json:"folioVersion" yaml:"folioVersion"`

	// GitCommit
	GitCommit string `json:"gitCommit" yaml:"gitCommit"`

	// GoVersion
	GoVersion string `json:"goVersion" yaml:"goVersion"`

	// BuildDate
	BuildDate string `json:"buildDate" yaml:"buildDate"`
}
