package ops

import (
	"context"
	"testing"

	"github.com/PassKeyRa/suisource-mcp/internal/catalog"
	"github.com/PassKeyRa/suisource-mcp/internal/errors"
	"github.com/PassKeyRa/suisource-mcp/internal/project"
	"github.com/PassKeyRa/suisource-mcp/internal/source"
)

func ms(v int64) *int64 { return &v }

func TestGetProjectInfo_ReturnsView(t *testing.T) {
	env := testEnv(t)
	view := &project.View{
		PackageID:  "0xabc",
		OriginalID: "0x111",
		Packages: []project.Package{
			{
				PackageID:     "0xabc",
				Version:       2,
				Modules:       []source.ModuleSource{{Name: "coin", Source: "module coin {}"}},
				LastChangedMs: ms(500),
			},
			{
				PackageID: "0x111",
				Version:   1,
				Modules:   []source.ModuleSource{{Name: "coin", Source: "module coin {}"}},
			},
		},
	}
	env.Projects = &fakeProjects{view: view}

	got, err := GetProjectInfo(context.Background(), env, GetProjectInfoInput{PackageID: "0xABC"})
	if err != nil {
		t.Fatalf("GetProjectInfo failed: %v", err)
	}
	if got != view {
		t.Error("expected the builder's view to be returned unmodified")
	}
}

func TestGetProjectInfo_RecordsRun(t *testing.T) {
	env := testEnv(t)
	env.Projects = &fakeProjects{view: &project.View{
		PackageID:  "0xabc",
		OriginalID: "0x111",
		Packages: []project.Package{
			{
				PackageID: "0xabc",
				Version:   2,
				Modules: []source.ModuleSource{
					{Name: "coin", Source: "module coin {}"},
					{Name: "pool", Error: "boom"},
				},
			},
			{PackageID: "0x111", Version: 1, Error: "fetch failed"},
		},
	}}

	if _, err := GetProjectInfo(context.Background(), env, GetProjectInfoInput{PackageID: "0xabc"}); err != nil {
		t.Fatalf("GetProjectInfo failed: %v", err)
	}

	runs, err := catalog.List(env.DB, 10)
	if err != nil {
		t.Fatalf("catalog.List failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len(runs) = %d, want 1", len(runs))
	}
	r := runs[0]
	if r.Tool != "get_project_info" {
		t.Errorf("Tool = %q", r.Tool)
	}
	// Two family members, two modules in the healthy one, one failed
	// module plus one failed package.
	if r.Packages != 2 || r.Modules != 2 || r.Failed != 2 {
		t.Errorf("run counts = %d/%d/%d, want 2/2/2", r.Packages, r.Modules, r.Failed)
	}
}

func TestGetProjectInfo_BuildFailurePropagates(t *testing.T) {
	env := testEnv(t)
	env.Projects = &fakeProjects{err: errors.NewUpstreamUnavailable("rpc down")}

	_, err := GetProjectInfo(context.Background(), env, GetProjectInfoInput{PackageID: "0xabc"})
	if !errors.Is(err, errors.ErrUpstreamUnavailable) {
		t.Errorf("err = %v, want UPSTREAM_UNAVAILABLE", err)
	}

	runs, listErr := catalog.List(env.DB, 10)
	if listErr != nil {
		t.Fatalf("catalog.List failed: %v", listErr)
	}
	if len(runs) != 0 {
		t.Errorf("failed build recorded a run: %+v", runs)
	}
}

func TestGetProjectInfo_InvalidID(t *testing.T) {
	env := testEnv(t)
	env.Projects = &fakeProjects{}

	_, err := GetProjectInfo(context.Background(), env, GetProjectInfoInput{PackageID: "0x"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("err = %v, want INVALID_REQUEST", err)
	}
}

func TestListRuns(t *testing.T) {
	env := testEnv(t)

	for _, run := range []catalog.Run{
		{Tool: "get_source_code", PackageID: "0x1", CreatedAt: 100},
		{Tool: "get_project_info", PackageID: "0x2", CreatedAt: 200},
	} {
		if _, err := catalog.Record(env.DB, run); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	out, err := ListRuns(env, ListRunsInput{Limit: 10})
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(out.Runs) != 2 {
		t.Fatalf("len(Runs) = %d, want 2", len(out.Runs))
	}
	if out.Runs[0].PackageID != "0x2" {
		t.Errorf("Runs[0].PackageID = %q, want 0x2 (newest first)", out.Runs[0].PackageID)
	}
}

func TestListRuns_NilDB(t *testing.T) {
	env := testEnv(t)
	env.DB = nil

	out, err := ListRuns(env, ListRunsInput{Limit: 10})
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if out.Runs == nil || len(out.Runs) != 0 {
		t.Errorf("Runs = %v, want empty non-nil slice", out.Runs)
	}
}
