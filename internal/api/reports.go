package api

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soochol/medsum/internal/extract"
	"github.com/soochol/medsum/internal/medsum"
)

const uploadField = "file"

func (s *Server) uploadReport(w http.ResponseWriter, r *http.Request) {
	owner, _ := PrincipalFrom(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		s.logger.Warn("report.upload.bad_form", "err", err)
		s.writeError(w, medsum.NewInvalidUpload(), "")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[uploadField]
	if len(headers) != 1 {
		s.writeError(w, medsum.NewInvalidUpload(), "")
		return
	}

	doc, cleanup, err := s.spool(r.Context(), headers[0])
	if err != nil {
		s.writeError(w, err, "Upload failed")
		return
	}
	defer cleanup()

	result, err := s.reports.Upload(r.Context(), owner, []medsum.UploadedDocument{doc})
	if err != nil {
		s.writeError(w, err, "Upload failed")
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// spool saves a multipart file to the upload spool. The returned cleanup
// releases it.
func (s *Server) spool(ctx context.Context, fh *multipart.FileHeader) (medsum.UploadedDocument, func(), error) {
	src, err := fh.Open()
	if err != nil {
		return medsum.UploadedDocument{}, nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	mimeType := fh.Header.Get("Content-Type")
	info, err := s.uploads.Save(ctx, fh.Filename, mimeType, src)
	if err != nil {
		return medsum.UploadedDocument{}, nil, err
	}
	cleanup := func() {
		if err := s.uploads.Release(context.WithoutCancel(ctx), info.ID); err != nil {
			s.logger.Warn("report.upload.cleanup_failed", "file_id", info.ID, "err", err)
		}
	}

	if mimeType == "" {
		if mimeType, err = extract.DetectMediaType(info.Path); err != nil {
			cleanup()
			return medsum.UploadedDocument{}, nil, err
		}
		s.logger.Info("report.upload.detected_type", "mime", mimeType)
	}
	return medsum.UploadedDocument{FilePath: info.Path, MIMEType: mimeType}, cleanup, nil
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.reports.Retrieve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err, "Error retrieving report")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
