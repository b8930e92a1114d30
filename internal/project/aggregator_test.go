package project

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/PassKeyRa/suisource-mcp/internal/errors"
	"github.com/PassKeyRa/suisource-mcp/internal/history"
	"github.com/PassKeyRa/suisource-mcp/internal/lineage"
	"github.com/PassKeyRa/suisource-mcp/internal/source"
)

type fakeLineage struct {
	lineage *lineage.Lineage
	err     error
}

func (f *fakeLineage) Resolve(_ context.Context, _ string) (*lineage.Lineage, error) {
	return f.lineage, f.err
}

type fakeSources struct {
	modules map[string][]source.ModuleSource
	errs    map[string]error
}

func (f *fakeSources) Modules(_ context.Context, id string) ([]source.ModuleSource, error) {
	if err, ok := f.errs[id]; ok {
		return nil, err
	}
	return f.modules[id], nil
}

type fakeHistory struct {
	records map[string]*history.ChangeRecord
	errs    map[string]error
	enabled bool
}

func (f *fakeHistory) Enabled() bool { return f.enabled }

func (f *fakeHistory) LastChanged(_ context.Context, id string) (*history.ChangeRecord, error) {
	if err, ok := f.errs[id]; ok {
		return nil, err
	}
	return f.records[id], nil
}

func family(ids ...string) *lineage.Lineage {
	lin := &lineage.Lineage{OriginalID: ids[0]}
	for i, id := range ids {
		lin.Packages = append(lin.Packages, lineage.Entry{PackageID: id, Version: uint64(i + 1)})
	}
	return lin
}

func mods(name string) []source.ModuleSource {
	return []source.ModuleSource{{Name: name, Source: "module 0x0::" + name + " {}"}}
}

func TestBuild_SortDescendingByChangeTime(t *testing.T) {
	// A changed at t=5, B at t=10, C has no record; lineage order [A, B, C].
	agg := New(
		&fakeLineage{lineage: family("0xa", "0xb", "0xc")},
		&fakeSources{modules: map[string][]source.ModuleSource{
			"0xa": mods("a"), "0xb": mods("b"), "0xc": mods("c"),
		}},
		&fakeHistory{enabled: true, records: map[string]*history.ChangeRecord{
			"0xa": {PackageID: "0xa", TimestampMs: 5},
			"0xb": {PackageID: "0xb", TimestampMs: 10},
		}},
		2,
	)

	view, err := agg.Build(context.Background(), "0xa")
	require.NoError(t, err)
	require.Len(t, view.Packages, 3)
	require.Equal(t, "0xb", view.Packages[0].PackageID)
	require.Equal(t, "0xa", view.Packages[1].PackageID)
	require.Equal(t, "0xc", view.Packages[2].PackageID)
	require.Nil(t, view.Packages[2].LastChangedMs)
}

func TestBuild_AbsentRecordsKeepLineageOrder(t *testing.T) {
	agg := New(
		&fakeLineage{lineage: family("0xa", "0xb", "0xc")},
		&fakeSources{modules: map[string][]source.ModuleSource{
			"0xa": mods("a"), "0xb": mods("b"), "0xc": mods("c"),
		}},
		nil, // history disabled end-to-end
		4,
	)

	view, err := agg.Build(context.Background(), "0xa")
	require.NoError(t, err)
	for i, want := range []string{"0xa", "0xb", "0xc"} {
		require.Equal(t, want, view.Packages[i].PackageID)
		require.Nil(t, view.Packages[i].LastChangedMs)
	}
}

func TestBuild_PartialFailureSucceeds(t *testing.T) {
	agg := New(
		&fakeLineage{lineage: family("0xa", "0xb")},
		&fakeSources{
			modules: map[string][]source.ModuleSource{"0xb": mods("b")},
			errs:    map[string]error{"0xa": errors.NewUpstreamUnavailable("rpc down")},
		},
		nil,
		2,
	)

	view, err := agg.Build(context.Background(), "0xb")
	require.NoError(t, err, "a single package failing must not fail the call")
	require.Len(t, view.Packages, 2)

	byID := map[string]Package{}
	for _, p := range view.Packages {
		byID[p.PackageID] = p
	}
	require.NotEmpty(t, byID["0xa"].Error)
	require.Empty(t, byID["0xa"].Modules)
	require.Empty(t, byID["0xb"].Error)
	require.Len(t, byID["0xb"].Modules, 1)
}

func TestBuild_TotalFailure(t *testing.T) {
	agg := New(
		&fakeLineage{lineage: family("0xa", "0xb")},
		&fakeSources{errs: map[string]error{
			"0xa": errors.NewUpstreamUnavailable("rpc down"),
			"0xb": errors.NewUpstreamUnavailable("rpc down"),
		}},
		nil,
		2,
	)

	_, err := agg.Build(context.Background(), "0xa")
	require.True(t, errors.Is(err, errors.ErrUpstreamUnavailable),
		"every sub-step failing must surface UPSTREAM_UNAVAILABLE, got %v", err)
}

func TestBuild_HistoryOnlySuccessIsNotTotalFailure(t *testing.T) {
	agg := New(
		&fakeLineage{lineage: family("0xa")},
		&fakeSources{errs: map[string]error{"0xa": errors.NewUpstreamUnavailable("rpc down")}},
		&fakeHistory{enabled: true, records: map[string]*history.ChangeRecord{
			"0xa": {PackageID: "0xa", TimestampMs: 42},
		}},
		2,
	)

	view, err := agg.Build(context.Background(), "0xa")
	require.NoError(t, err)
	require.NotEmpty(t, view.Packages[0].Error)
	require.NotNil(t, view.Packages[0].LastChangedMs)
	require.EqualValues(t, 42, *view.Packages[0].LastChangedMs)
}

func TestBuild_HistoryErrorRecordedInline(t *testing.T) {
	agg := New(
		&fakeLineage{lineage: family("0xa")},
		&fakeSources{modules: map[string][]source.ModuleSource{"0xa": mods("a")}},
		&fakeHistory{enabled: true, errs: map[string]error{
			"0xa": errors.NewUpstreamUnavailable("tx query down"),
		}},
		2,
	)

	view, err := agg.Build(context.Background(), "0xa")
	require.NoError(t, err)
	require.NotEmpty(t, view.Packages[0].HistoryError)
	require.Nil(t, view.Packages[0].LastChangedMs)
	require.Len(t, view.Packages[0].Modules, 1)
}

func TestBuild_LineageFailurePropagates(t *testing.T) {
	agg := New(
		&fakeLineage{err: errors.NewNotFound("0xdead")},
		&fakeSources{},
		nil,
		2,
	)

	_, err := agg.Build(context.Background(), "0xdead")
	require.True(t, errors.Is(err, errors.ErrNotFound))
}

type blockingSources struct{}

func (blockingSources) Modules(ctx context.Context, _ string) ([]source.ModuleSource, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestBuild_CancellationReturnsNoPartialView(t *testing.T) {
	agg := New(
		&fakeLineage{lineage: family("0xa", "0xb", "0xc")},
		blockingSources{},
		nil,
		1,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	view, err := agg.Build(ctx, "0xa")
	require.Error(t, err)
	require.Nil(t, view, "cancellation is all-or-nothing")
}
