package ops

import (
	"context"
	"time"

	"github.com/PassKeyRa/suisource-mcp/internal/project"
)

// GetProjectInfoInput contains parameters for the GetProjectInfo operation.
type GetProjectInfoInput struct {
	PackageID string
}

// GetProjectInfo resolves the package's upgrade family and returns the
// aggregate view: every version's decompiled modules plus last-changed
// timestamps, newest activity first.
func GetProjectInfo(ctx context.Context, env *Env, input GetProjectInfoInput) (*project.View, error) {
	packageID, err := ValidatePackageID(input.PackageID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	view, err := env.Projects.Build(ctx, packageID)
	if err != nil {
		return nil, err
	}

	modules, failed := countModules(view)
	recordRun(env, "get_project_info", packageID, len(view.Packages), modules, failed, time.Since(start))

	return view, nil
}

// countModules tallies module outcomes across the family. A package
// whose fetch failed outright counts as one failure.
func countModules(view *project.View) (modules, failed int) {
	for _, pkg := range view.Packages {
		if pkg.Error != "" {
			failed++
			continue
		}
		modules += len(pkg.Modules)
		for _, m := range pkg.Modules {
			if m.Error != "" {
				failed++
			}
		}
	}
	return modules, failed
}
