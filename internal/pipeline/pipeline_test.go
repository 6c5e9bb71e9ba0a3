package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/paperstack-cli/internal/archive"
	"github.com/KaramelBytes/paperstack-cli/internal/events"
	"github.com/KaramelBytes/paperstack-cli/internal/history"
	"github.com/KaramelBytes/paperstack-cli/internal/metrics"
	"github.com/KaramelBytes/paperstack-cli/internal/stack"
)

const paper = `Deep Learning for Research Dashboards
The user logs in through an authentication flow. The admin reviews analytics
reports on a dashboard backed by a database API.`

type fakeRecorder struct {
	records []history.Record
	err     error
}

func (f *fakeRecorder) Record(_ context.Context, r history.Record) error {
	f.records = append(f.records, r)
	return f.err
}

type fakePublisher struct {
	keys []string
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, key, path string) (string, error) {
	f.keys = append(f.keys, key)
	if f.err != nil {
		return "", f.err
	}
	return "s3://bucket/" + key, nil
}

type fakeNotifier struct{ events []events.Event }

func (f *fakeNotifier) Notify(_ context.Context, e events.Event) error {
	f.events = append(f.events, e)
	return nil
}

func newTestPipeline(t *testing.T, mutate func(*Options)) (*Pipeline, Options) {
	t.Helper()
	opts := Options{
		OutputDir:         filepath.Join(t.TempDir(), "uploads"),
		TempDir:           t.TempDir(),
		AllowedExtensions: []string{"pdf", "txt"},
		MaxBytes:          1 << 20,
	}
	if mutate != nil {
		mutate(&opts)
	}
	return New(opts), opts
}

func txtRequest(tech string) Request {
	return Request{Filename: "paper.txt", Data: []byte(paper), Technology: tech}
}

func TestRunProducesArchive(t *testing.T) {
	p, opts := newTestPipeline(t, nil)

	out := p.Run(context.Background(), txtRequest("Flask Stack"))
	require.True(t, out.OK(), "unexpected error: %v", out.Err)
	res := out.Result

	assert.Equal(t, stack.Flask, res.Technology)
	assert.False(t, res.Fallback)
	assert.Equal(t, "research-app", res.ProjectName)
	assert.Equal(t, "paper.txt", res.SourceName)
	assert.Equal(t, paper, res.Abstract)
	assert.Contains(t, res.Concepts.Features, "Dashboard")

	assert.True(t, strings.HasPrefix(res.Archive.Name, "research-app-"))
	assert.True(t, strings.HasSuffix(res.Archive.Name, ".zip"))
	assert.Equal(t, filepath.Join(opts.OutputDir, res.Archive.Name), res.Archive.Path)
	assert.Equal(t, res.GenerationID[:8], strings.TrimSuffix(strings.TrimPrefix(res.Archive.Name, "research-app-"), ".zip"))

	entries, err := archive.List(res.Archive.Path)
	require.NoError(t, err)
	want := res.Project.AllPaths()
	sort.Strings(entries)
	sort.Strings(want)
	assert.Equal(t, want, entries)
}

func TestRunRemovesScratch(t *testing.T) {
	p, opts := newTestPipeline(t, nil)
	require.True(t, p.Run(context.Background(), txtRequest("")).OK())

	left, err := os.ReadDir(opts.TempDir)
	require.NoError(t, err)
	assert.Empty(t, left, "scratch directories should be removed")
}

func TestRunArchiveNamesAreUnique(t *testing.T) {
	p, _ := newTestPipeline(t, nil)
	a := p.Run(context.Background(), txtRequest("MERN Stack"))
	b := p.Run(context.Background(), txtRequest("MERN Stack"))
	require.True(t, a.OK())
	require.True(t, b.OK())
	assert.NotEqual(t, a.Result.Archive.Path, b.Result.Archive.Path)
	assert.NotEqual(t, a.Result.GenerationID, b.Result.GenerationID)
}

func TestRunUnknownTechnologyFallsBack(t *testing.T) {
	p, _ := newTestPipeline(t, nil)
	out := p.Run(context.Background(), txtRequest("COBOL Stack"))
	require.True(t, out.OK())
	assert.Equal(t, stack.MERN, out.Result.Technology)
	assert.True(t, out.Result.Fallback)
}

func TestRunDefaultTechnologyOption(t *testing.T) {
	p, _ := newTestPipeline(t, func(o *Options) { o.DefaultTechnology = "LAMP Stack" })
	out := p.Run(context.Background(), txtRequest(""))
	require.True(t, out.OK())
	assert.Equal(t, stack.LAMP, out.Result.Technology)
	assert.False(t, out.Result.Fallback)
}

func TestRunCustomProjectName(t *testing.T) {
	p, _ := newTestPipeline(t, nil)
	req := txtRequest("Flask Stack")
	req.ProjectName = "paper-lab"
	out := p.Run(context.Background(), req)
	require.True(t, out.OK())
	assert.True(t, strings.HasPrefix(out.Result.Archive.Name, "paper-lab-"))
	assert.Equal(t, "paper-lab", out.Result.Project.Name())
}

func TestUnsafeDefaultProjectNameFallsBack(t *testing.T) {
	p, opts := newTestPipeline(t, func(o *Options) { o.ProjectName = "../escape" })
	out := p.Run(context.Background(), txtRequest("Flask Stack"))
	require.True(t, out.OK())
	assert.Equal(t, DefaultProjectName, out.Result.ProjectName)
	assert.Equal(t, opts.OutputDir, filepath.Dir(out.Result.Archive.Path))
	assert.True(t, strings.HasPrefix(out.Result.Archive.Name, DefaultProjectName+"-"))
}

func TestRunInputErrors(t *testing.T) {
	p, _ := newTestPipeline(t, func(o *Options) { o.MaxBytes = 16 })
	cases := []struct {
		name string
		req  Request
		code Code
	}{
		{"no file", Request{Filename: "a.pdf"}, CodeFileRequired},
		{"empty filename", Request{Data: []byte("x")}, CodeEmptyFilename},
		{"wrong extension", Request{Filename: "a.docx", Data: []byte("x")}, CodeInvalidType},
		{"no extension", Request{Filename: "paper", Data: []byte("x")}, CodeInvalidType},
		{"too large", Request{Filename: "a.txt", Data: []byte(strings.Repeat("x", 17))}, CodeTooLarge},
		{"bad project name", Request{Filename: "a.txt", Data: []byte("x"), ProjectName: "../up"}, CodeInvalidName},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := p.Run(context.Background(), tc.req)
			require.False(t, out.OK())
			require.NotNil(t, out.Err)
			assert.Nil(t, out.Result)
			assert.Equal(t, tc.code, out.Err.Code)
			assert.True(t, out.Err.IsInput())
		})
	}
}

func TestRunExtractFailure(t *testing.T) {
	p, _ := newTestPipeline(t, nil)
	out := p.Run(context.Background(), Request{Filename: "paper.pdf", Data: []byte("not a pdf")})
	require.NotNil(t, out.Err)
	assert.Equal(t, StageExtract, out.Err.Stage)
	assert.Equal(t, CodeExtractFailed, out.Err.Code)
	assert.False(t, out.Err.IsInput())
	assert.Error(t, errors.Unwrap(out.Err))
}

func TestRunArchiveFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	p, _ := newTestPipeline(t, func(o *Options) { o.OutputDir = filepath.Join(blocker, "uploads") })

	out := p.Run(context.Background(), txtRequest(""))
	require.NotNil(t, out.Err)
	assert.Equal(t, StageArchive, out.Err.Stage)
	assert.Equal(t, CodeArchiveFailed, out.Err.Code)
}

func TestRunCanceled(t *testing.T) {
	p, _ := newTestPipeline(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := p.Run(ctx, txtRequest(""))
	require.NotNil(t, out.Err)
	assert.Equal(t, CodeCanceled, out.Err.Code)
	assert.ErrorIs(t, out.Err, context.Canceled)
}

func TestRunSideEffects(t *testing.T) {
	rec := &fakeRecorder{}
	pub := &fakePublisher{}
	note := &fakeNotifier{}
	p, _ := newTestPipeline(t, func(o *Options) {
		o.History = rec
		o.Publisher = pub
		o.Notifier = note
		o.Metrics = metrics.New()
	})

	out := p.Run(context.Background(), txtRequest("Django Stack"))
	require.True(t, out.OK())
	res := out.Result

	require.Len(t, pub.keys, 1)
	assert.Equal(t, res.Archive.Name, pub.keys[0])
	assert.Equal(t, "s3://bucket/"+res.Archive.Name, res.PublishedURL)

	require.Len(t, rec.records, 1)
	assert.Equal(t, res.GenerationID, rec.records[0].ID)
	assert.Equal(t, "Django Stack", rec.records[0].Technology)
	assert.Equal(t, len(res.Archive.Entries), rec.records[0].FileCount)

	require.Len(t, note.events, 1)
	assert.Equal(t, res.PublishedURL, note.events[0].PublishedURL)
}

func TestRunSideEffectFailuresAreNotFatal(t *testing.T) {
	p, _ := newTestPipeline(t, func(o *Options) {
		o.History = &fakeRecorder{err: errors.New("disk full")}
		o.Publisher = &fakePublisher{err: errors.New("access denied")}
	})
	out := p.Run(context.Background(), txtRequest(""))
	require.True(t, out.OK())
	assert.Empty(t, out.Result.PublishedURL)
}

func TestPreviewTruncation(t *testing.T) {
	p, _ := newTestPipeline(t, func(o *Options) { o.PreviewChars = 10 })
	out := p.Run(context.Background(), txtRequest(""))
	require.True(t, out.OK())
	assert.Equal(t, "Deep Learn...", out.Result.Abstract)
}
