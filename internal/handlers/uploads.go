package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/jeremyjsx/quickfacts/internal/media"
	"github.com/jeremyjsx/quickfacts/internal/metrics"
)

// Base64 inflates payloads by a third; leave room for the JSON envelope.
const maxUploadBody = media.MaxImageBytes*4/3 + 1<<20

type UploadsHandler struct {
	host    media.Host
	metrics *metrics.Metrics
	errs    errorWriter
}

func NewUploadsHandler(host media.Host, m *metrics.Metrics, logger *slog.Logger, debug bool) *UploadsHandler {
	return &UploadsHandler{
		host:    host,
		metrics: m,
		errs:    errorWriter{logger: logger, debug: debug},
	}
}

type UploadImageRequest struct {
	File     string   `json:"file"`
	Folder   string   `json:"folder"`
	PublicID string   `json:"publicId"`
	Tags     []string `json:"tags"`
}

func (h *UploadsHandler) UploadImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)

		in, err := readUpload(r)
		if err != nil {
			h.count("rejected")
			var input *media.InputError
			if errors.As(err, &input) {
				writeError(w, http.StatusBadRequest, "BAD_REQUEST", input.Error(), nil)
				return
			}
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid upload body", nil)
			return
		}

		res, err := h.host.Upload(r.Context(), in)
		if err != nil {
			var input *media.InputError
			if errors.As(err, &input) {
				h.count("rejected")
			} else {
				h.count("error")
			}
			h.errs.write(w, r, "upload image", err)
			return
		}

		h.count("ok")
		writeJSON(w, http.StatusCreated, res)
	}
}

func (h *UploadsHandler) count(result string) {
	if h.metrics != nil {
		h.metrics.Uploads.WithLabelValues(result).Inc()
	}
}

// readUpload accepts either a JSON body with a base64 data URL in "file" or a
// multipart form with a "file" part.
func readUpload(r *http.Request) (media.UploadInput, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "multipart/form-data" {
		return readMultipartUpload(r)
	}

	var req UploadImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return media.UploadInput{}, err
	}
	if strings.TrimSpace(req.File) == "" {
		return media.UploadInput{}, &media.InputError{Err: media.ErrMissingFile}
	}
	data, contentType, err := media.DecodeDataURL(req.File)
	if err != nil {
		return media.UploadInput{}, err
	}
	return media.UploadInput{
		Data:        data,
		ContentType: contentType,
		Folder:      req.Folder,
		PublicID:    req.PublicID,
		Tags:        req.Tags,
	}, nil
}

func readMultipartUpload(r *http.Request) (media.UploadInput, error) {
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		return media.UploadInput{}, err
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return media.UploadInput{}, &media.InputError{Err: media.ErrMissingFile}
		}
		return media.UploadInput{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return media.UploadInput{}, err
	}
	if len(data) == 0 {
		return media.UploadInput{}, &media.InputError{Err: media.ErrMissingFile}
	}

	var tags []string
	for _, t := range strings.Split(r.FormValue("tags"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return media.UploadInput{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
		Folder:      r.FormValue("folder"),
		PublicID:    r.FormValue("publicId"),
		Tags:        tags,
	}, nil
}
