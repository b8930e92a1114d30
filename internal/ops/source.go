package ops

import (
	"context"
	"path/filepath"
	"sort"
	"time"
)

// GetSourceCodeInput contains parameters for the GetSourceCode operation.
type GetSourceCodeInput struct {
	PackageID string
}

// GetSourceCodeOutput summarizes one package's decompilation run.
// Success means every module decompiled; partial failures leave the
// run successful at the request level with the failures listed.
type GetSourceCodeOutput struct {
	Success           bool              `json:"success"`
	PackageID         string            `json:"package_id"`
	OutputDirInfo     string            `json:"output_dir_info"`
	TotalModules      int               `json:"total_modules"`
	DecompiledModules []string          `json:"decompiled_modules"`
	FailedModules     map[string]string `json:"failed_modules"`
	DecompiledCount   int               `json:"decompiled_count"`
	FailedCount       int               `json:"failed_count"`
}

// GetSourceCode fetches a package's bytecode, decompiles every module,
// and reports per-module outcomes. Sources land on disk under
// <workdir>/<package_id>/ via the provider's cache.
func GetSourceCode(ctx context.Context, env *Env, input GetSourceCodeInput) (*GetSourceCodeOutput, error) {
	packageID, err := ValidatePackageID(input.PackageID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	modules, err := env.Sources.Modules(ctx, packageID)
	if err != nil {
		return nil, err
	}

	decompiled := make([]string, 0, len(modules))
	failed := make(map[string]string)
	for _, m := range modules {
		if m.Error != "" {
			failed[m.Name] = m.Error
			continue
		}
		decompiled = append(decompiled, m.Name)
	}
	sort.Strings(decompiled)

	recordRun(env, "get_source_code", packageID, 1, len(modules), len(failed), time.Since(start))

	return &GetSourceCodeOutput{
		Success:           len(failed) == 0,
		PackageID:         packageID,
		OutputDirInfo:     filepath.Join(env.Cfg.Workdir, packageID),
		TotalModules:      len(modules),
		DecompiledModules: decompiled,
		FailedModules:     failed,
		DecompiledCount:   len(decompiled),
		FailedCount:       len(failed),
	}, nil
}
