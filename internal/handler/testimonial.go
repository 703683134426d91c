package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/DukeRupert/vouch/internal/auth"
	"github.com/DukeRupert/vouch/internal/domain"
	"github.com/DukeRupert/vouch/internal/service"
	"github.com/google/uuid"
)

// multipartMemory is the in-memory budget for multipart forms; an image
// larger than this spills to a temp file.
const multipartMemory = 2 << 20

// TestimonialHandler serves testimonial links to owners and the public
// completion endpoint to their customers.
type TestimonialHandler struct {
	testimonials service.TestimonialService
	logger       *slog.Logger
}

func NewTestimonialHandler(testimonials service.TestimonialService, logger *slog.Logger) *TestimonialHandler {
	return &TestimonialHandler{
		testimonials: testimonials,
		logger:       logger,
	}
}

// RegisterRoutes registers testimonial routes.
//
// Routes:
//   - POST   /api/landing-pages/{id}/testimonials -> CreateLink (auth)
//   - GET    /api/landing-pages/{id}/testimonials -> ListForPage (auth)
//   - GET    /api/testimonials                    -> List (auth)
//   - GET    /api/testimonials/{id}               -> Get (auth)
//   - PATCH  /api/testimonials/{id}               -> Update (auth)
//   - DELETE /api/testimonials/{id}               -> Delete (auth)
//   - POST   /api/testimonials/delete             -> DeleteMany (auth)
//   - GET    /api/public/testimonials/{id}        -> PublicGet
//   - POST   /api/public/testimonials/{id}        -> Complete
func (h *TestimonialHandler) RegisterRoutes(mux *http.ServeMux, requireAccount func(http.Handler) http.Handler) {
	mux.Handle("POST /api/landing-pages/{id}/testimonials", requireAccount(http.HandlerFunc(h.CreateLink)))
	mux.Handle("GET /api/landing-pages/{id}/testimonials", requireAccount(http.HandlerFunc(h.ListForPage)))
	mux.Handle("GET /api/testimonials", requireAccount(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/testimonials/{id}", requireAccount(http.HandlerFunc(h.Get)))
	mux.Handle("PATCH /api/testimonials/{id}", requireAccount(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/testimonials/{id}", requireAccount(http.HandlerFunc(h.Delete)))
	mux.Handle("POST /api/testimonials/delete", requireAccount(http.HandlerFunc(h.DeleteMany)))

	mux.HandleFunc("GET /api/public/testimonials/{id}", h.PublicGet)
	mux.HandleFunc("POST /api/public/testimonials/{id}", h.Complete)
}

func (h *TestimonialHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromRequest(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}
	pageID, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	t, err := h.testimonials.CreateLink(r.Context(), accountID, pageID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, newTestimonialView(t))
}

func (h *TestimonialHandler) ListForPage(w http.ResponseWriter, r *http.Request) {
	pageID, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	h.list(w, r, &pageID)
}

func (h *TestimonialHandler) List(w http.ResponseWriter, r *http.Request) {
	var pageID *uuid.UUID
	if raw := r.URL.Query().Get("landing_page_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			BadRequestResponse(w, r, h.logger, "Invalid landing_page_id")
			return
		}
		pageID = &id
	}
	h.list(w, r, pageID)
}

func (h *TestimonialHandler) list(w http.ResponseWriter, r *http.Request, pageID *uuid.UUID) {
	accountID, ok := auth.GetAccountIDFromRequest(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	q := r.URL.Query()
	params := domain.ListTestimonialsParams{
		AccountID:     accountID,
		LandingPageID: pageID,
		CustomerName:  q.Get("customer_name"),
		Page:          pageParams(r),
	}
	if raw := q.Get("status"); raw != "" {
		status := domain.TestimonialStatus(raw)
		if !status.IsValid() {
			BadRequestResponse(w, r, h.logger, "Invalid status")
			return
		}
		params.Status = &status
	}
	if raw := q.Get("stars"); raw != "" {
		stars, err := strconv.Atoi(raw)
		if err != nil {
			BadRequestResponse(w, r, h.logger, "Invalid stars")
			return
		}
		params.Stars = &stars
	}

	page, err := h.testimonials.List(r.Context(), params)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toList(page, newTestimonialView))
}

func (h *TestimonialHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromRequest(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	t, err := h.testimonials.GetForAccount(r.Context(), accountID, id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newTestimonialView(t))
}

type updateTestimonialRequest struct {
	CustomerName *string `json:"customer_name"`
	Title        *string `json:"title"`
	Message      *string `json:"message"`
	Stars        *int    `json:"stars"`
	Status       *string `json:"status"`
}

func (req updateTestimonialRequest) update() domain.TestimonialUpdate {
	u := domain.TestimonialUpdate{
		CustomerName: req.CustomerName,
		Title:        req.Title,
		Message:      req.Message,
		Stars:        req.Stars,
	}
	if req.Status != nil {
		status := domain.TestimonialStatus(*req.Status)
		u.Status = &status
	}
	return u
}

// Update accepts JSON, or multipart/form-data when replacing the image.
func (h *TestimonialHandler) Update(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromRequest(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var (
		req   updateTestimonialRequest
		image *domain.ImageFile
	)
	if isMultipart(r) {
		form, img, err := readForm(w, r)
		if err != nil {
			ErrorResponse(w, r, h.logger, err)
			return
		}
		image = img
		req.CustomerName = form.optional("customer_name")
		req.Title = form.optional("title")
		req.Message = form.optional("message")
		req.Status = form.optional("status")
		if raw := form.optional("stars"); raw != nil {
			stars, err := strconv.Atoi(*raw)
			if err != nil {
				BadRequestResponse(w, r, h.logger, "Invalid stars")
				return
			}
			req.Stars = &stars
		}
	} else if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	result, err := h.testimonials.Update(r.Context(), accountID, id, req.update(), image)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newCompletionView(result))
}

func (h *TestimonialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromRequest(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.testimonials.Delete(r.Context(), accountID, id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TestimonialHandler) DeleteMany(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromRequest(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	var req idsRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	n, err := h.testimonials.DeleteMany(r.Context(), accountID, req.IDs)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, deletedResponse{Deleted: n})
}

// =============================================================================
// Public completion
// =============================================================================

type publicTestimonialView struct {
	ID            uuid.UUID `json:"id"`
	LandingPageID uuid.UUID `json:"landing_page_id"`
	Status        string    `json:"status"`
}

// PublicGet lets the completion page check a link before showing the form.
func (h *TestimonialHandler) PublicGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	t, err := h.testimonials.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, publicTestimonialView{
		ID:            t.ID,
		LandingPageID: t.LandingPageID,
		Status:        string(t.Status),
	})
}

type submissionRequest struct {
	CustomerName string `json:"customer_name"`
	Title        string `json:"title"`
	Message      string `json:"message"`
	Stars        int    `json:"stars"`
}

// Complete records a customer's submission. Accepts JSON, or
// multipart/form-data with an optional "image" file.
func (h *TestimonialHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var (
		req   submissionRequest
		image *domain.ImageFile
	)
	if isMultipart(r) {
		form, img, err := readForm(w, r)
		if err != nil {
			ErrorResponse(w, r, h.logger, err)
			return
		}
		image = img
		req.CustomerName = form.value("customer_name")
		req.Title = form.value("title")
		req.Message = form.value("message")
		if raw := form.value("stars"); raw != "" {
			if req.Stars, err = strconv.Atoi(raw); err != nil {
				BadRequestResponse(w, r, h.logger, "Invalid stars")
				return
			}
		}
	} else if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	result, err := h.testimonials.Complete(r.Context(), id, domain.Submission{
		CustomerName: req.CustomerName,
		Title:        req.Title,
		Message:      req.Message,
		Stars:        req.Stars,
	}, image)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newCompletionView(result))
}

// =============================================================================
// Multipart helpers
// =============================================================================

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

type formValues map[string][]string

func (f formValues) value(key string) string {
	if v := f[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func (f formValues) optional(key string) *string {
	if v, ok := f[key]; ok && len(v) > 0 {
		return &v[0]
	}
	return nil
}

// readForm parses a multipart body and reads the optional "image" file.
// Images over domain.MaxImageSize are read one byte past the limit so the
// uploader reports them as too large.
func readForm(w http.ResponseWriter, r *http.Request) (formValues, *domain.ImageFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, domain.MaxImageSize+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, nil, domain.Errorf(domain.ETOOLARGE, "", "Request body too large")
		}
		return nil, nil, domain.Invalid("", "Malformed multipart form")
	}

	form := formValues(r.MultipartForm.Value)

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return form, nil, nil
	}
	if err != nil {
		return nil, nil, domain.Invalid("", "Malformed image upload")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, domain.MaxImageSize+1))
	if err != nil {
		return nil, nil, domain.Invalid("", "Failed to read image upload")
	}

	return form, &domain.ImageFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
