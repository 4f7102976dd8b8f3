package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/visionverse/visionlink/internal/domain"
	logpkg "github.com/visionverse/visionlink/internal/logger"
	clickuc "github.com/visionverse/visionlink/internal/usecase/click"
	healthuc "github.com/visionverse/visionlink/internal/usecase/health"
	productuc "github.com/visionverse/visionlink/internal/usecase/product"
	visionuc "github.com/visionverse/visionlink/internal/usecase/vision"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API over the vision/product linking core.
type Server struct {
	visions       *visionuc.Service
	products      *productuc.Service
	clicks        *clickuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	visions *visionuc.Service,
	products *productuc.Service,
	clicks *clickuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		visions:  visions,
		products: products,
		clicks:   clicks,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrVisionNotFound, http.StatusNotFound, CodeVisionNotFound),
		sentinelHandler(domain.ErrProductNotFound, http.StatusNotFound, CodeProductNotFound),
		sentinelHandler(domain.ErrForbidden, http.StatusForbidden, CodeForbidden),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProviderError),
	}
	return s
}

// Register mounts every route on the router.
func (s *Server) Register(r chi.Router) {
	r.Post("/visions", s.CreateVision)
	r.Get("/visions", s.ListVisions)
	r.Post("/visions/search", s.SearchVisions)
	r.Get("/visions/{id}", s.GetVision)
	r.Patch("/visions/{id}", s.UpdateVisionSale)
	r.Delete("/visions/{id}", s.DeleteVision)
	r.Get("/visions/{id}/support", s.GetSupport)
	r.Post("/visions/{id}/support", s.ToggleSupport)

	r.Post("/products", s.CreateProduct)
	r.Get("/products", s.ListProducts)
	r.Get("/products/{id}", s.GetProduct)
	r.Patch("/products/{id}", s.UpdateProductSale)
	r.Delete("/products/{id}", s.DeleteProduct)

	r.Post("/clicks", s.RecordClick)

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// CreateVision handles POST /visions.
func (s *Server) CreateVision(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	var req CreateVisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	res, err := s.visions.Create(r.Context(), visionuc.CreateInput{
		OwnerID:     ident.ID,
		OwnerName:   ident.Name,
		OwnerEmail:  ident.Email,
		Description: req.Description,
		FilePath:    req.FilePath,
		Price:       req.Price,
		OnSale:      req.OnSale,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := CreateVisionResponse{
		Vision:      s.visionResponse(r, &res.Vision),
		IsDuplicate: res.IsDuplicate,
	}
	status := http.StatusCreated
	if res.IsDuplicate {
		status = http.StatusOK
		resp.DuplicateScore = &res.DuplicateScore
	}
	writeJSON(w, status, resp)
}

// ListVisions handles GET /visions.
func (s *Server) ListVisions(w http.ResponseWriter, r *http.Request) {
	in := visionuc.ListInput{}
	q := r.URL.Query()
	var userID *string
	if err := runtime.BindQueryParameter("form", true, false, "userId", q, &userID); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid userId parameter")
		return
	}
	if userID != nil {
		in.OwnerID = *userID
	}
	limit, skip, ok := bindPageParams(w, q)
	if !ok {
		return
	}
	in.Limit, in.Skip = limit, skip

	res, err := s.visions.List(r.Context(), in)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]VisionResponse, len(res.Visions))
	for i := range res.Visions {
		items[i] = s.visionResponse(r, &res.Visions[i])
	}
	writeJSON(w, http.StatusOK, VisionListResponse{Items: items, Total: res.Total})
}

// GetVision handles GET /visions/{id}.
func (s *Server) GetVision(w http.ResponseWriter, r *http.Request) {
	v, err := s.visions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.visionResponse(r, &v))
}

// UpdateVisionSale handles PATCH /visions/{id}.
func (s *Server) UpdateVisionSale(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	var req UpdateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	v, err := s.visions.UpdateSale(r.Context(), chi.URLParam(r, "id"), ident.ID, req.Price, req.OnSale)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.visionResponse(r, &v))
}

// DeleteVision handles DELETE /visions/{id}.
func (s *Server) DeleteVision(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	if err := s.visions.Delete(r.Context(), chi.URLParam(r, "id"), ident.ID); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SearchVisions handles POST /visions/search.
func (s *Server) SearchVisions(w http.ResponseWriter, r *http.Request) {
	var req SearchVisionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	results, err := s.visions.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]SearchVisionItem, len(results))
	for i := range results {
		items[i] = SearchVisionItem{
			Vision: s.visionResponse(r, &results[i].Vision),
			Score:  results[i].Score,
		}
	}
	writeJSON(w, http.StatusOK, SearchVisionsResponse{Items: items})
}

// GetSupport handles GET /visions/{id}/support.
func (s *Server) GetSupport(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	supported, count, err := s.visions.SupportStatus(r.Context(), chi.URLParam(r, "id"), ident.ID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SupportResponse{Supported: supported, Count: count})
}

// ToggleSupport handles POST /visions/{id}/support.
func (s *Server) ToggleSupport(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	supported, count, err := s.visions.ToggleSupport(r.Context(), chi.URLParam(r, "id"), ident.ID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SupportResponse{Supported: supported, Count: count})
}

// CreateProduct handles POST /products.
func (s *Server) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	res, err := s.products.Create(r.Context(), productuc.CreateInput{
		OwnerID:     ident.ID,
		OwnerName:   ident.Name,
		OwnerEmail:  ident.Email,
		Description: req.Description,
		URL:         req.URL,
		FilePath:    req.FilePath,
		Price:       req.Price,
		OnSale:      req.OnSale,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, productToAPI(&res.Product, res.LinkedVision))
}

// ListProducts handles GET /products. The page is scoped to the caller's own
// products.
func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	limit, skip, ok := bindPageParams(w, r.URL.Query())
	if !ok {
		return
	}

	res, err := s.products.List(r.Context(), productuc.ListInput{
		OwnerID: ident.ID,
		Limit:   limit,
		Skip:    skip,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]ProductResponse, len(res.Products))
	for i := range res.Products {
		p := &res.Products[i]
		items[i] = productToAPI(p, s.products.PrimaryVision(r.Context(), p))
	}
	writeJSON(w, http.StatusOK, ProductListResponse{Items: items, Total: res.Total})
}

// GetProduct handles GET /products/{id}.
func (s *Server) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productToAPI(&p, s.products.PrimaryVision(r.Context(), &p)))
}

// UpdateProductSale handles PATCH /products/{id}.
func (s *Server) UpdateProductSale(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	var req UpdateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	p, err := s.products.UpdateSale(r.Context(), chi.URLParam(r, "id"), ident.ID, req.Price, req.OnSale)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productToAPI(&p, nil))
}

// DeleteProduct handles DELETE /products/{id}.
func (s *Server) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	if err := s.products.Delete(r.Context(), chi.URLParam(r, "id"), ident.ID); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordClick handles POST /clicks.
func (s *Server) RecordClick(w http.ResponseWriter, r *http.Request) {
	var req RecordClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.clicks.Record(r.Context(), req.VisionID, req.ProductID); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) visionResponse(r *http.Request, v *domain.Vision) VisionResponse {
	return visionToAPI(v, linkedProductsToAPI(s.visions.LinkedProducts(r.Context(), v)))
}

func (s *Server) requireIdentity(w http.ResponseWriter, r *http.Request) (Identity, bool) {
	ident := IdentityFromContext(r.Context())
	if ident.ID == "" {
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, "missing X-User-ID header")
		return Identity{}, false
	}
	return ident, true
}

func bindPageParams(w http.ResponseWriter, q url.Values) (limit, skip int, ok bool) {
	var limitPtr, skipPtr *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &limitPtr); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid limit parameter")
		return 0, 0, false
	}
	if err := runtime.BindQueryParameter("form", true, false, "skip", q, &skipPtr); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid skip parameter")
		return 0, 0, false
	}
	if limitPtr != nil {
		limit = *limitPtr
	}
	if skipPtr != nil {
		skip = *skipPtr
	}
	return limit, skip, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrValidation,
		domain.ErrVisionNotFound,
		domain.ErrProductNotFound,
		domain.ErrForbidden,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	// Prefer the request-scoped logger so the entry carries the request_id.
	reqLogger := s.logger
	if l, ok := logpkg.FromContext(r.Context()); ok {
		reqLogger = l
	}
	reqLogger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	reqLogger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
