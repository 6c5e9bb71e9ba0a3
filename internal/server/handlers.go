package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/KaramelBytes/paperstack-cli/internal/archive"
	"github.com/KaramelBytes/paperstack-cli/internal/history"
	"github.com/KaramelBytes/paperstack-cli/internal/pipeline"
	"github.com/KaramelBytes/paperstack-cli/internal/runner"
	"github.com/KaramelBytes/paperstack-cli/internal/stack"
)

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Analysis is the concept summary in an upload response.
type Analysis struct {
	Keywords       []string `json:"keywords"`
	TechnicalTerms []string `json:"technical_terms"`
	Features       []string `json:"features"`
	ContentLength  int      `json:"content_length"`
	Abstract       string   `json:"abstract"`
}

// UploadResponse is the JSON response for POST /upload.
type UploadResponse struct {
	Success            bool     `json:"success"`
	GenerationID       string   `json:"generation_id"`
	Analysis           Analysis `json:"analysis"`
	ProjectStructure   []string `json:"project_structure"`
	ZipFilename        string   `json:"zip_filename"`
	ZipPath            string   `json:"zip_path"`
	DownloadURL        string   `json:"download_url"`
	Technology         string   `json:"technology"`
	TechnologyFallback bool     `json:"technology_fallback,omitempty"`
	PublishedURL       string   `json:"published_url,omitempty"`
}

// Technology is one entry of GET /technologies.
type Technology struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Message: "paperstack API is running"})
}

// handleUpload handles POST /upload - run one paper through the pipeline.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// allow the multipart framing on top of the file itself
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+(1<<20))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) || strings.Contains(err.Error(), "request body too large") {
			s.metrics.ObserveUpload(string(pipeline.CodeTooLarge))
			writeJSONError(w, http.StatusRequestEntityTooLarge, string(pipeline.CodeTooLarge), "File exceeds the upload limit")
			return
		}
		writeJSONError(w, http.StatusBadRequest, "parse_error", "Failed to parse multipart form: "+err.Error())
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	req := pipeline.Request{
		Technology:  r.FormValue("technology"),
		ProjectName: r.FormValue("project_name"),
	}
	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// leave Data nil so the pipeline reports file_required
	case err != nil:
		writeJSONError(w, http.StatusBadRequest, "parse_error", "Failed to read uploaded file: "+err.Error())
		return
	default:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, string(pipeline.CodeIOError), "Failed to read uploaded file")
			return
		}
		req.Filename = filepath.Base(header.Filename)
		req.Data = data
	}

	out := s.pipe.Run(r.Context(), req)
	if out.Err != nil {
		writeJSONError(w, statusFor(out.Err), string(out.Err.Code), out.Err.Message)
		return
	}
	res := out.Result
	prefix := strings.TrimSuffix(r.URL.Path, "/upload")
	writeJSON(w, http.StatusOK, UploadResponse{
		Success:      true,
		GenerationID: res.GenerationID,
		Analysis: Analysis{
			Keywords:       nonNil(res.Concepts.TopKeywords(10)),
			TechnicalTerms: nonNil(res.Concepts.TechnicalTerms),
			Features:       nonNil(res.Concepts.Features),
			ContentLength:  res.Concepts.ContentLength,
			Abstract:       res.Abstract,
		},
		ProjectStructure:   res.Project.Paths(),
		ZipFilename:        res.Archive.Name,
		ZipPath:            res.Archive.Path,
		DownloadURL:        prefix + "/download/" + url.PathEscape(res.Archive.Name),
		Technology:         string(res.Technology),
		TechnologyFallback: res.Fallback,
		PublishedURL:       res.PublishedURL,
	})
}

// statusFor maps pipeline failures to HTTP statuses. An upload that cannot
// be parsed as a PDF is the client's fault.
func statusFor(e *pipeline.Error) int {
	switch {
	case e.Code == pipeline.CodeTooLarge:
		return http.StatusRequestEntityTooLarge
	case e.IsInput(), e.Stage == pipeline.StageExtract:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// archiveName validates a client-supplied archive file name.
func archiveName(name string) (string, bool) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".zip") {
		return "", false
	}
	return name, true
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name, ok := archiveName(r.PathValue("name"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "not_found", "File not found")
		return
	}
	f, err := os.Open(filepath.Join(s.pipe.OutputDir(), name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeJSONError(w, http.StatusNotFound, "not_found", "File not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, string(pipeline.CodeIOError), "Download error")
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		writeJSONError(w, http.StatusNotFound, "not_found", "File not found")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (s *Server) handleTechnologies(w http.ResponseWriter, r *http.Request) {
	all := stack.All()
	out := make([]Technology, 0, len(all))
	for _, st := range all {
		out = append(out, Technology{ID: string(st.ID), Name: string(st.ID), Description: st.Description})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGenerations(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSONError(w, http.StatusNotFound, "not_configured", "Generation history is not enabled")
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSONError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	recs, err := s.history.List(r.Context(), limit)
	if err != nil {
		s.log.Error("list generations", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "history_error", "Failed to read generation history")
		return
	}
	if recs == nil {
		recs = []history.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// handleRunStart handles POST /run/{name}: unpack an archive into a fresh
// directory and run its stack recipe.
func (s *Server) handleRunStart(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		writeJSONError(w, http.StatusNotFound, "not_configured", "Running generated apps is not enabled")
		return
	}
	name, ok := archiveName(r.PathValue("name"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "not_found", "File not found")
		return
	}
	src := filepath.Join(s.pipe.OutputDir(), name)
	if _, err := os.Stat(src); err != nil {
		writeJSONError(w, http.StatusNotFound, "not_found", "File not found")
		return
	}

	label := r.FormValue("technology")
	if label == "" && s.history != nil {
		if rec, err := s.history.GetByArchive(r.Context(), name); err == nil {
			label = rec.Technology
		} else if !errors.Is(err, history.ErrNotFound) {
			s.log.Warn("history lookup failed", "archive", name, "error", err)
		}
	}
	if label == "" {
		writeJSONError(w, http.StatusBadRequest, "technology_required", "Specify the technology of this archive")
		return
	}
	st, known := stack.Resolve(label)
	if !known {
		writeJSONError(w, http.StatusBadRequest, "invalid_technology", "Unknown technology: "+label)
		return
	}

	dir := filepath.Join(s.pipe.OutputDir(), "runs", strings.TrimSuffix(name, ".zip")+"-"+uuid.NewString()[:8])
	if err := archive.Extract(src, dir); err != nil {
		s.log.Error("extract archive for run", "archive", name, "error", err)
		writeJSONError(w, http.StatusInternalServerError, string(pipeline.CodeIOError), "Failed to unpack archive")
		return
	}
	task := s.runner.Start(s.runCtx, dir, runner.RecipeFor(st))
	writeJSON(w, http.StatusAccepted, task.Info())
}

func (s *Server) handleRunList(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		writeJSONError(w, http.StatusNotFound, "not_configured", "Running generated apps is not enabled")
		return
	}
	tasks := s.runner.List()
	out := make([]runner.Info, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Info())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) lookupTask(w http.ResponseWriter, r *http.Request) (*runner.Task, bool) {
	if s.runner == nil {
		writeJSONError(w, http.StatusNotFound, "not_configured", "Running generated apps is not enabled")
		return nil, false
	}
	t, ok := s.runner.Get(r.PathValue("id"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "not_found", "Run not found")
		return nil, false
	}
	return t, true
}

func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	if t, ok := s.lookupTask(w, r); ok {
		writeJSON(w, http.StatusOK, t.Info())
	}
}

func (s *Server) handleRunCancel(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookupTask(w, r)
	if !ok {
		return
	}
	t.Cancel()
	<-t.Done()
	writeJSON(w, http.StatusOK, t.Info())
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, status int, errorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}
