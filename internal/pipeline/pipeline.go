// Package pipeline runs one paper through extraction, analysis, scaffold
// generation, materialization and archiving.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/paperstack-cli/internal/analysis"
	"github.com/KaramelBytes/paperstack-cli/internal/archive"
	"github.com/KaramelBytes/paperstack-cli/internal/events"
	"github.com/KaramelBytes/paperstack-cli/internal/history"
	"github.com/KaramelBytes/paperstack-cli/internal/metrics"
	"github.com/KaramelBytes/paperstack-cli/internal/parser"
	"github.com/KaramelBytes/paperstack-cli/internal/project"
	"github.com/KaramelBytes/paperstack-cli/internal/publish"
	"github.com/KaramelBytes/paperstack-cli/internal/stack"
	"github.com/KaramelBytes/paperstack-cli/internal/utils"
)

const (
	DefaultProjectName  = "research-app"
	DefaultPreviewChars = 800
)

// Recorder persists finished generations.
type Recorder interface {
	Record(ctx context.Context, r history.Record) error
}

// Options configures a Pipeline. Zero values take the defaults noted.
type Options struct {
	// OutputDir receives archives. Required.
	OutputDir string
	// TempDir hosts per-request scratch directories; empty means the OS default.
	TempDir           string
	ProjectName       string   // default "research-app"; invalid names fall back to it
	DefaultTechnology string   // default stack.Default
	AllowedExtensions []string // default {"pdf"}; without the dot
	MaxBytes          int64    // 0 disables the size check
	PreviewChars      int      // default 800
	History           Recorder // optional
	Publisher         publish.Publisher
	Notifier          events.Notifier
	Metrics           *metrics.Metrics
	Logger            *slog.Logger
}

// Request is one generation input. A nil Data means no file was supplied.
type Request struct {
	Filename    string
	Data        []byte
	Technology  string
	ProjectName string
}

// Result is a successful generation.
type Result struct {
	GenerationID string
	Technology   stack.ID
	// Fallback is set when the requested technology was not recognized.
	Fallback     bool
	ProjectName  string
	SourceName   string
	Text         string
	Abstract     string
	Concepts     analysis.Concepts
	Project      *project.Project
	Archive      *archive.Result
	PublishedURL string
	Duration     time.Duration
}

// Outcome carries exactly one of Result or Err.
type Outcome struct {
	Result *Result
	Err    *Error
}

// OK reports whether the generation succeeded.
func (o Outcome) OK() bool { return o.Err == nil && o.Result != nil }

// Pipeline is safe for concurrent use; every Run works in its own scratch
// directory and writes a uniquely named archive.
type Pipeline struct {
	opts    Options
	log     *slog.Logger
	allowed map[string]struct{}
}

// New applies defaults to opts.
func New(opts Options) *Pipeline {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.ProjectName == "" {
		opts.ProjectName = DefaultProjectName
	} else if !project.ValidName(opts.ProjectName) {
		log.Warn("invalid default project name", "name", opts.ProjectName, "using", DefaultProjectName)
		opts.ProjectName = DefaultProjectName
	}
	if opts.DefaultTechnology == "" {
		opts.DefaultTechnology = string(stack.Default)
	}
	if len(opts.AllowedExtensions) == 0 {
		opts.AllowedExtensions = []string{"pdf"}
	}
	if opts.PreviewChars <= 0 {
		opts.PreviewChars = DefaultPreviewChars
	}
	if opts.Notifier == nil {
		opts.Notifier = events.Nop{}
	}
	allowed := make(map[string]struct{}, len(opts.AllowedExtensions))
	for _, e := range opts.AllowedExtensions {
		allowed[strings.TrimPrefix(strings.ToLower(e), ".")] = struct{}{}
	}
	return &Pipeline{opts: opts, log: log, allowed: allowed}
}

// OutputDir returns the directory archives are written to.
func (p *Pipeline) OutputDir() string { return p.opts.OutputDir }

// Validate checks a request without running it.
func (p *Pipeline) Validate(req Request) *Error {
	if req.Data == nil {
		return inputError(CodeFileRequired, "No file provided")
	}
	if strings.TrimSpace(req.Filename) == "" {
		return inputError(CodeEmptyFilename, "No file selected")
	}
	if !p.allowedFile(req.Filename) {
		return inputError(CodeInvalidType, fmt.Sprintf("Invalid file type. Allowed: %s", strings.Join(p.opts.AllowedExtensions, ", ")))
	}
	if p.opts.MaxBytes > 0 && int64(len(req.Data)) > p.opts.MaxBytes {
		return inputError(CodeTooLarge, fmt.Sprintf("File exceeds the %s upload limit", utils.HumanSize(p.opts.MaxBytes)))
	}
	if req.ProjectName != "" && !project.ValidName(req.ProjectName) {
		return inputError(CodeInvalidName, "Project name may contain only letters, digits, '.', '_' and '-'")
	}
	return nil
}

func (p *Pipeline) allowedFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	_, ok := p.allowed[ext[1:]]
	return ok
}

// Run performs one generation and reports it as an Outcome.
func (p *Pipeline) Run(ctx context.Context, req Request) Outcome {
	start := time.Now()
	res, perr := p.run(ctx, req, start)
	if perr != nil {
		p.opts.Metrics.ObserveUpload(string(perr.Code))
		level := slog.LevelError
		if perr.IsInput() {
			level = slog.LevelWarn
		}
		p.log.Log(ctx, level, "generation failed",
			"stage", perr.Stage, "code", perr.Code, "file", req.Filename, "error", perr)
		return Outcome{Err: perr}
	}
	p.opts.Metrics.ObserveUpload("ok")
	p.opts.Metrics.ObserveGeneration(string(res.Technology), res.Duration, res.Archive.Size)
	p.log.Info("generation complete",
		"id", res.GenerationID, "technology", res.Technology,
		"archive", res.Archive.Name, "files", len(res.Archive.Entries), "elapsed", res.Duration)
	return Outcome{Result: res}
}

func (p *Pipeline) run(ctx context.Context, req Request, start time.Time) (*Result, *Error) {
	if perr := p.Validate(req); perr != nil {
		return nil, perr
	}
	name := req.ProjectName
	if name == "" {
		name = p.opts.ProjectName
	}
	label := req.Technology
	if strings.TrimSpace(label) == "" {
		label = p.opts.DefaultTechnology
	}
	st, known := stack.Resolve(label)
	if !known {
		p.log.Warn("technology_fallback", "requested", label, "using", st.ID)
	}
	id := uuid.NewString()
	log := p.log.With("id", id)

	log.Debug("extracting text", "file", req.Filename, "bytes", len(req.Data))
	text, err := parser.ParseBytes(req.Filename, req.Data)
	if err != nil {
		return nil, stageError(StageExtract, CodeExtractFailed, "Could not extract text from the document", err)
	}

	concepts := analysis.Extract(text)
	log.Debug("concepts extracted", "keywords", len(concepts.Keywords), "features", len(concepts.Features))

	proj, err := st.Generate(concepts, name)
	if err != nil {
		return nil, stageError(StageGenerate, CodeGenerateFailed, "Could not generate the project", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, stageError(StageMaterialize, CodeCanceled, "Generation canceled", err)
	}
	scratch, err := os.MkdirTemp(p.opts.TempDir, "paperstack-*")
	if err != nil {
		return nil, stageError(StageMaterialize, CodeIOError, "Could not create a scratch directory", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			log.Warn("scratch cleanup failed", "dir", scratch, "error", err)
		}
	}()
	root := filepath.Join(scratch, name)
	log.Debug("materializing project", "dir", root)
	if err := proj.Materialize(root); err != nil {
		return nil, stageError(StageMaterialize, CodeIOError, "Could not write project files", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, stageError(StageArchive, CodeCanceled, "Generation canceled", err)
	}
	archiveName := fmt.Sprintf("%s-%s", name, id[:8])
	arc, err := archive.Create(root, p.opts.OutputDir, archiveName)
	if err != nil {
		return nil, stageError(StageArchive, CodeArchiveFailed, "Could not create the ZIP file", err)
	}

	res := &Result{
		GenerationID: id,
		Technology:   st.ID,
		Fallback:     !known,
		ProjectName:  name,
		SourceName:   filepath.Base(req.Filename),
		Text:         text,
		Abstract:     utils.Preview(text, p.opts.PreviewChars),
		Concepts:     concepts,
		Project:      proj,
		Archive:      arc,
	}
	p.sideEffects(ctx, log, res)
	res.Duration = time.Since(start)
	return res, nil
}

// sideEffects publishes, records and announces res. Failures are logged
// and never fail the generation.
func (p *Pipeline) sideEffects(ctx context.Context, log *slog.Logger, res *Result) {
	if p.opts.Publisher != nil {
		url, err := p.opts.Publisher.Publish(ctx, res.Archive.Name, res.Archive.Path)
		if err != nil {
			log.Warn("archive publish failed", "error", err)
		} else {
			res.PublishedURL = url
		}
	}
	if p.opts.History != nil {
		err := p.opts.History.Record(ctx, history.Record{
			ID:          res.GenerationID,
			Technology:  string(res.Technology),
			ProjectName: res.ProjectName,
			SourceName:  res.SourceName,
			ArchiveName: res.Archive.Name,
			ArchivePath: res.Archive.Path,
			ArchiveSize: res.Archive.Size,
			FileCount:   len(res.Archive.Entries),
			Features:    res.Concepts.Features,
		})
		if err != nil {
			log.Warn("history record failed", "error", err)
		}
	}
	err := p.opts.Notifier.Notify(ctx, events.Event{
		GenerationID: res.GenerationID,
		Technology:   string(res.Technology),
		ProjectName:  res.ProjectName,
		ArchiveName:  res.Archive.Name,
		ArchiveSize:  res.Archive.Size,
		FileCount:    len(res.Archive.Entries),
		PublishedURL: res.PublishedURL,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		log.Warn("event notify failed", "error", err)
	}
}
