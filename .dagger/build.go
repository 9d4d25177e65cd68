package main

import (
	"fmt"
	"strings"
	"time"

	"context"

	"dagger/tome/internal/dagger"
)

// Build and return directory of go binaries. The sqlite-vec bindings
// need CGO, so builds target linux only, with the GNU cross toolchain
// for arm64.
func (t *Tome) Build(
	ctx context.Context,

	// Linker flags for go build
	// +optional
	// +default="-s -w"
	ldflags string,
) *dagger.Directory {
	crossCompilers := map[string]string{
		"amd64": "gcc",
		"arm64": "aarch64-linux-gnu-gcc",
	}

	// create empty directory to put build artifacts
	outputs := dag.Directory()

	golang := t.goContainer().
		WithExec([]string{"apt-get", "install", "-y", "gcc-aarch64-linux-gnu"})

	for goarch, cc := range crossCompilers {
		path := fmt.Sprintf("linux/%s/", goarch)

		build := golang.
			WithEnvVariable("GOOS", "linux").
			WithEnvVariable("GOARCH", goarch).
			WithEnvVariable("CC", cc).
			WithExec([]string{"go", "build", "-ldflags", ldflags, "-o", path, "./cli/tome"})

		outputs = outputs.WithDirectory(path, build.Directory(path))
	}

	// return build directory
	return outputs
}

// BuildRelease compiles versioned release binaries with embedded version info
func (t *Tome) BuildRelease(
	ctx context.Context,

	// Version string of build
	version string,

	// Git commit SHA of build
	commit string,
) *dagger.Directory {
	buildtime := time.Now()

	ldflags := []string{
		"-s",
		"-w",
		fmt.Sprintf("-X 'github.com/papyrusco/tome/pkg/utils.Version=%s'", version),
		fmt.Sprintf("-X 'github.com/papyrusco/tome/pkg/utils.Sha=%s'", commit),
		fmt.Sprintf("-X 'github.com/papyrusco/tome/pkg/utils.Buildtime=%s'", buildtime),
	}

	return t.Build(ctx, strings.Join(ldflags, " "))
}
