package web

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/vscan/internal/core"
	"github.com/JonMunkholm/vscan/internal/dataset"
	"github.com/JonMunkholm/vscan/internal/logging"
	"github.com/JonMunkholm/vscan/internal/schema"
	"github.com/JonMunkholm/vscan/internal/summary"
)

// maxMemory is the part of a multipart upload held in memory; the rest
// spills to temporary files.
const maxMemory = 32 << 20

// artifactTypes lists the downloadable artifact extensions.
var artifactTypes = map[string]string{
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".zip":  "application/zip",
	".enc":  "application/octet-stream",
}

// artifactView is an artifact as returned to HTTP clients.
type artifactView struct {
	Label    string `json:"label"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Rows     int    `json:"rows"`
	Password string `json:"password,omitempty"`
	Backend  string `json:"backend,omitempty"`
}

func viewArtifact(runID string, a core.Artifact) artifactView {
	name := filepath.Base(a.Path)
	return artifactView{
		Label:    a.Label,
		Name:     name,
		URL:      "/api/artifacts/" + runID + "/" + name,
		Rows:     a.Rows,
		Password: a.Password,
		Backend:  a.Backend,
	}
}

type reportResponse struct {
	RunID     string         `json:"run_id"`
	Input     string         `json:"input"`
	Schema    string         `json:"schema"`
	Missing   []string       `json:"missing_roles,omitempty"`
	Skipped   int            `json:"skipped_rows"`
	Artifacts []artifactView `json:"artifacts"`
}

type entityResponse struct {
	RunID        string       `json:"run_id"`
	Role         string       `json:"role"`
	ID           string       `json:"id"`
	Period       string       `json:"period"`
	Transactions int          `json:"transactions"`
	Artifact     artifactView `json:"artifact"`
	Warning      string       `json:"warning,omitempty"`
}

type healthResponse struct {
	Status string                 `json:"status"`
	Runs   *core.RunLimiterStatus `json:"runs,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if l := s.service.Limiter(); l != nil {
		st := l.Status()
		resp.Runs = &st
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// handleReport runs the period reports for an uploaded export.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ds, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	opts, err := s.reportOptions(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Upload.Timeout)
	defer cancel()

	res, err := s.service.Process(ctx, ds, opts)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := reportResponse{
		RunID:     res.RunID,
		Input:     res.Input,
		Schema:    res.Variant,
		Missing:   res.Missing,
		Skipped:   res.Skipped,
		Artifacts: make([]artifactView, len(res.Artifacts)),
	}
	for i, a := range res.Artifacts {
		resp.Artifacts[i] = viewArtifact(res.RunID, a)
	}
	writeJSON(w, r, http.StatusCreated, resp)
}

// handleEntity writes the single-entity report for one card or cashier.
func (s *Server) handleEntity(w http.ResponseWriter, r *http.Request) {
	role, err := schema.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	if !role.IsEntity() {
		respondError(w, r, fmt.Errorf("%w: role %q is not an entity", errBadRequest, role))
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, r, fmt.Errorf("%w: missing identifier", errBadRequest))
		return
	}

	ds, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	opts := core.LookupOptions{
		Encrypt:          s.defaults.Encrypt,
		IncludeIntervals: s.defaults.IncludeIntervals,
	}
	if err := formBool(r, "encrypt", &opts.Encrypt); err != nil {
		respondError(w, r, err)
		return
	}
	if err := formBool(r, "include_intervals", &opts.IncludeIntervals); err != nil {
		respondError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Upload.Timeout)
	defer cancel()

	res, err := s.service.LookupEntity(ctx, ds, role, id, opts)
	if res == nil {
		respondError(w, r, err)
		return
	}

	resp := entityResponse{
		RunID:        res.RunID,
		Role:         string(role),
		ID:           res.Summary.ID,
		Period:       res.Summary.Period,
		Transactions: res.Summary.Count,
		Artifact:     viewArtifact(res.RunID, res.Artifact),
	}
	if err != nil {
		logging.FromContext(r.Context()).Warn("entity report written with errors", "error", err)
		resp.Warning = core.FormatUserError(err)
	}
	writeJSON(w, r, http.StatusCreated, resp)
}

// handleArtifact downloads a finished artifact from its run's directory.
func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	runID, name := chi.URLParam(r, "run"), chi.URLParam(r, "name")
	ctype, ok := artifactTypes[strings.ToLower(filepath.Ext(name))]
	if !ok || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		writeError(w, r, http.StatusNotFound, "FILE007", "artifact not found")
		return
	}
	if id, err := uuid.Parse(runID); err != nil || id.String() != runID {
		writeError(w, r, http.StatusNotFound, "FILE007", "artifact not found")
		return
	}

	f, err := os.Open(filepath.Join(s.service.RunDir(runID), name))
	if errors.Is(err, fs.ErrNotExist) {
		writeError(w, r, http.StatusNotFound, "FILE007", "artifact not found")
		return
	}
	if err != nil {
		respondError(w, r, fmt.Errorf("open artifact: %w", err))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		writeError(w, r, http.StatusNotFound, "FILE007", "artifact not found")
		return
	}

	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// readUpload parses the multipart "file" field into a dataset.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*dataset.Dataset, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return nil, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: no file provided", errBadRequest)
	}
	defer file.Close()

	return dataset.Read(file, filepath.Base(header.Filename))
}

// reportOptions overlays the form fields on the configured defaults.
func (s *Server) reportOptions(r *http.Request) (core.Options, error) {
	opts := s.defaults

	for _, f := range []struct {
		key string
		dst *int
	}{
		{"top_n_cards", &opts.TopNCards},
		{"top_n_cashiers", &opts.TopNCashiers},
	} {
		if err := formInt(r, f.key, f.dst); err != nil {
			return opts, err
		}
	}
	for _, f := range []struct {
		key string
		dst *bool
	}{
		{"encrypt", &opts.Encrypt},
		{"separate_cards", &opts.SeparateCards},
		{"include_intervals", &opts.IncludeIntervals},
	} {
		if err := formBool(r, f.key, f.dst); err != nil {
			return opts, err
		}
	}

	if v := r.FormValue("period"); v != "" {
		mode, err := summary.ParseMode(v)
		if err != nil {
			return opts, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		opts.Period = mode
	}
	return opts, nil
}

func formInt(r *http.Request, key string, dst *int) error {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fmt.Errorf("%w: %s must be a non-negative integer", errBadRequest, key)
	}
	*dst = n
	return nil
}

func formBool(r *http.Request, key string, dst *bool) error {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%w: %s must be true or false", errBadRequest, key)
	}
	*dst = b
	return nil
}
