package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/finpipe/statement-ledger/internal/adapter/http/dto"
	"github.com/finpipe/statement-ledger/internal/adapter/spreadsheet"
	"github.com/finpipe/statement-ledger/internal/infrastructure/logger"
	"github.com/finpipe/statement-ledger/internal/usecase"
)

// StatementIngester ingests statement files.
type StatementIngester interface {
	CheckConnection(ctx context.Context) error
	IngestFile(ctx context.Context, path, sourceFile string) (*usecase.IngestResult, error)
}

// Transformer runs the classification step.
type Transformer interface {
	Run(ctx context.Context) (*usecase.ClassifyResult, error)
}

// UploadConfig holds upload limits and storage.
type UploadConfig struct {
	Dir      string
	MaxBytes int64
}

// UploadHandler serves the statement upload page.
type UploadHandler struct {
	ingester  StatementIngester
	transform Transformer
	flashes   usecase.FlashStore
	cfg       UploadConfig
	logger    zerolog.Logger
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(ingester StatementIngester, transform Transformer, flashes usecase.FlashStore, cfg UploadConfig, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		ingester:  ingester,
		transform: transform,
		flashes:   flashes,
		cfg:       cfg,
		logger:    logger,
	}
}

// Page renders the upload form with any pending flash messages.
func (h *UploadHandler) Page(w http.ResponseWriter, r *http.Request) {
	session := flashSession(w, r)

	flashes, err := h.flashes.Pop(r.Context(), session)
	if err != nil {
		log := logger.FromContext(r.Context(), h.logger)
		log.Warn().Err(err).Msg("failed to read flash messages")
	}

	renderPage(w, h.logger, "upload.html", map[string]any{
		"Flashes": dto.FlashesFromUseCase(flashes),
	})
}

// Upload stores the posted statement, ingests it, runs the transformation and
// redirects back to the upload page.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	session := flashSession(w, r)
	flashes := h.upload(w, r)

	if err := h.flashes.Push(r.Context(), session, flashes); err != nil {
		log := logger.FromContext(r.Context(), h.logger)
		log.Error().Err(err).Msg("failed to store flash messages")
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *UploadHandler) upload(w http.ResponseWriter, r *http.Request) []usecase.Flash {
	ctx := r.Context()
	log := logger.FromContext(ctx, h.logger)

	if h.cfg.MaxBytes > 0 {
		if r.ContentLength > h.cfg.MaxBytes {
			return []usecase.Flash{{Category: flashError, Message: msgTooLarge}}
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBytes)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return []usecase.Flash{{Category: flashError, Message: msgTooLarge}}
		}
		return []usecase.Flash{{Category: flashError, Message: msgNoFile}}
	}
	defer file.Close()

	if header.Filename == "" {
		return []usecase.Flash{{Category: flashError, Message: msgNoFile}}
	}

	if err := h.ingester.CheckConnection(ctx); err != nil {
		log.Error().Err(err).Msg("database connectivity check failed before upload")
		return []usecase.Flash{{Category: flashError, Message: msgDatabaseDown}}
	}

	name := secureFilename(header.Filename)
	if name == "" || !spreadsheet.Supported(name) {
		return []usecase.Flash{{Category: flashError, Message: msgTypeNotAllowed}}
	}

	path, err := h.save(file, name)
	if err != nil {
		log.Error().Err(err).Str("file", name).Msg("failed to store upload")
		return []usecase.Flash{{Category: flashError, Message: fmt.Sprintf("Error processing file: %v", err)}}
	}

	result, err := h.ingester.IngestFile(ctx, path, name)
	if err != nil {
		return []usecase.Flash{{Category: flashError, Message: ingestFlash(err)}}
	}

	flashes := []usecase.Flash{{Category: flashSuccess, Message: fmt.Sprintf(msgIngested, result.Rows)}}

	run, err := h.transform.Run(ctx)
	if err != nil {
		log.Error().Err(err).Msg("transformation failed after upload")
		return append(flashes, usecase.Flash{Category: flashWarning, Message: msgTransformFailed})
	}

	return append(flashes, usecase.Flash{Category: flashSuccess, Message: fmt.Sprintf(msgTransformed, run.Rows)})
}

func (h *UploadHandler) save(src io.Reader, name string) (string, error) {
	if err := os.MkdirAll(h.cfg.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(h.cfg.Dir, uuid.NewString()+"_"+name)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("write upload file: %w", err)
	}

	return path, dst.Close()
}

// Ingest accepts a multipart statement and reports the outcome as JSON.
// The transformation runs afterwards unless skip_transform=true.
func (h *UploadHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.cfg.MaxBytes > 0 {
		if r.ContentLength > h.cfg.MaxBytes {
			writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge, "")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBytes)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge, "")
			return
		}
		writeError(w, http.StatusBadRequest, msgNoFile, err.Error())
		return
	}
	defer file.Close()

	name := secureFilename(header.Filename)
	if name == "" || !spreadsheet.Supported(name) {
		writeError(w, http.StatusUnsupportedMediaType, msgTypeNotAllowed, "")
		return
	}

	path, err := h.save(file, name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store file", err.Error())
		return
	}

	result, err := h.ingester.IngestFile(ctx, path, name)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to ingest statement", err.Error())
		return
	}

	resp := dto.IngestResponse{File: name, Rows: result.Rows, Warnings: result.Warnings}

	if r.URL.Query().Get("skip_transform") != "true" {
		run, err := h.transform.Run(ctx)
		if err != nil {
			log := logger.FromContext(ctx, h.logger)
			log.Error().Err(err).Msg("transformation failed after ingestion")
			resp.TransformError = err.Error()
		} else {
			resp.Transform = dto.TransformFromResult(run)
		}
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Transform runs the classification step on demand.
func (h *UploadHandler) Transform(w http.ResponseWriter, r *http.Request) {
	run, err := h.transform.Run(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "transformation failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransformFromResult(run))
}
