package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/Evgen-Mutagen/paymentref/internal/core"
	"github.com/Evgen-Mutagen/paymentref/internal/model"
	"github.com/Evgen-Mutagen/paymentref/pkg/paymentref"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	maxCheckBody = 1 << 10
	maxJSONBody  = 16 << 10
)

type ReferenceController struct {
	referenceService core.ReferenceService
	validate         *validator.Validate
	logger           *zap.Logger
}

func NewReferenceController(
	referenceService core.ReferenceService,
	validate *validator.Validate,
	logger *zap.Logger,
) *ReferenceController {
	return &ReferenceController{
		referenceService: referenceService,
		validate:         validate,
		logger:           logger,
	}
}

func toResponse(value string, res paymentref.Result) model.ValidationResponse {
	return model.ValidationResponse{
		Reference: value,
		Valid:     res.Valid,
		Scheme:    res.Scheme.String(),
		Kind:      res.Kind.String(),
		Message:   res.Message,
	}
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// decodeJSON writes the error response itself and reports whether v was filled.
func (c *ReferenceController) decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := render.DecodeJSON(body, v); err != nil {
		c.logger.Debug("Invalid request format", zap.Error(err))
		if isTooLarge(err) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return false
	}
	return true
}

func (c *ReferenceController) Validate(w http.ResponseWriter, r *http.Request) {
	var request model.ValidationRequest

	if !c.decodeJSON(w, r, &request) {
		return
	}
	if err := c.validate.Struct(request); err != nil {
		c.logger.Debug("Invalid request", zap.Error(err))
		http.Error(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}

	res := c.referenceService.Validate(r.Context(), request.Reference)
	render.JSON(w, r, toResponse(request.Reference, res))
}

// Check takes the reference as a plain text body and answers with a status
// code only: 200 valid, 422 invalid.
func (c *ReferenceController) Check(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCheckBody))
	if err != nil {
		if isTooLarge(err) {
			http.Error(w, "Payment reference too long", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	reference := string(body)
	if reference == "" {
		http.Error(w, "Empty payment reference", http.StatusBadRequest)
		return
	}

	res := c.referenceService.Validate(r.Context(), reference)
	switch res.Kind {
	case paymentref.KindValid:
		w.WriteHeader(http.StatusOK)
	case paymentref.KindChecksumMismatch, paymentref.KindMalformedInput:
		http.Error(w, res.Message, http.StatusUnprocessableEntity)
	default:
		http.Error(w, res.Message, http.StatusInternalServerError)
	}
}

func (c *ReferenceController) Batch(w http.ResponseWriter, r *http.Request) {
	var request model.BatchRequest

	if !c.decodeJSON(w, r, &request) {
		return
	}
	if err := c.validate.Struct(request); err != nil {
		c.logger.Debug("Invalid request", zap.Error(err))
		http.Error(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}

	results := c.referenceService.ValidateBatch(r.Context(), request.References)
	responses := make([]model.ValidationResponse, len(results))
	for i, res := range results {
		responses[i] = toResponse(request.References[i], res)
	}

	render.JSON(w, r, responses)
}

func (c *ReferenceController) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.referenceService.Stats(r.Context())
	if err != nil {
		c.logger.Error("Failed to get stats", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if len(stats) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	render.JSON(w, r, stats)
}
