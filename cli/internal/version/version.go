package version

import (
	"fmt"
	"runtime"

	goversion "github.com/hashicorp/go-version"
)

// Set at build time with -ldflags "-X".
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	BuildDate string `json:"buildDate"`
	GitCommit string `json:"gitCommit"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

func Get() Info {
	return Info{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// Prerelease reports whether the version carries a prerelease suffix such
// as "-rc.1". Unparseable versions count as prereleases.
func (i Info) Prerelease() bool {
	v, err := goversion.NewVersion(i.Version)
	if err != nil {
		return true
	}
	return v.Prerelease() != ""
}

func (i Info) String() string {
	return fmt.Sprintf("jobly %s (%s %s)", i.Version, i.Platform, i.GoVersion)
}

// Rows returns the fields as label/value pairs for table output.
func (i Info) Rows() [][]string {
	return [][]string{
		{"Version", i.Version},
		{"Build Date", i.BuildDate},
		{"Git Commit", i.GitCommit},
		{"Platform", i.Platform},
		{"Go Version", i.GoVersion},
	}
}
