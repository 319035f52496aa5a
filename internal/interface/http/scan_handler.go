package http

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/evelynko/skinsight/internal/domain/scan"
	"github.com/evelynko/skinsight/internal/domain/skin"
	apperrors "github.com/evelynko/skinsight/pkg/errors"
)

// AnalyzeScan runs the one-shot image analysis pipeline.
func (h *Handler) AnalyzeScan(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	image, err := readImage(c)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	analysis, err := h.scanSvc.AnalyzeImage(c.Request.Context(), claims.UserID, image)
	if err != nil {
		abortWithScanError(c, err, "scan_failed")
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// StartSession opens a continuous-capture scan.
func (h *Handler) StartSession(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	id := h.sessions.create(claims.UserID)
	c.JSON(http.StatusCreated, gin.H{"sessionId": id})
}

// SessionFrame processes one captured frame and returns live guidance.
func (h *Handler) SessionFrame(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid session id", err))
		return
	}
	image, err := readImage(c)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	display, err := h.sessions.tick(claims.UserID, id, image, time.Now())
	if err != nil {
		if errors.Is(err, errSessionNotFound) {
			abortWithError(c, NewHTTPError(http.StatusNotFound, "not_found", "scan session not found", err))
			return
		}
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, display)
}

// CompleteSession finalizes the capture and runs the full analysis.
func (h *Handler) CompleteSession(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid session id", err))
		return
	}

	local, snapshot, err := h.sessions.complete(claims.UserID, id)
	if err != nil {
		if errors.Is(err, errSessionNotFound) {
			abortWithError(c, NewHTTPError(http.StatusNotFound, "not_found", "scan session not found", err))
			return
		}
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	analysis, err := h.scanSvc.CompleteCapture(c.Request.Context(), claims.UserID, local, snapshot)
	if err != nil {
		abortWithScanError(c, err, "scan_failed")
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// CancelSession drops an in-flight capture without invoking the remote model.
func (h *Handler) CancelSession(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid session id", err))
		return
	}
	if !h.sessions.cancel(claims.UserID, id) {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "not_found", "scan session not found", nil))
		return
	}
	c.Status(http.StatusNoContent)
}

// LatestAnalysis returns the cached result of the user's last scan.
func (h *Handler) LatestAnalysis(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	analysis, err := h.scanSvc.LatestAnalysis(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithScanError(c, err, "fetch_failed")
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// Profile returns the user's biometric profile.
func (h *Handler) Profile(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	profile, err := h.scanSvc.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithScanError(c, err, "fetch_failed")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdatePreferences replaces the profile's preference block.
func (h *Handler) UpdatePreferences(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	var prefs skin.Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	profile, err := h.scanSvc.UpdatePreferences(c.Request.Context(), claims.UserID, prefs)
	if err != nil {
		abortWithScanError(c, err, "update_failed")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Prescription returns the ingredient prescription derived from the profile.
func (h *Handler) Prescription(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	prescription, err := h.scanSvc.Prescription(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithScanError(c, err, "fetch_failed")
		return
	}
	c.JSON(http.StatusOK, prescription)
}

// RoutinePlan returns the morning/evening routine allocation.
func (h *Handler) RoutinePlan(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	plan, err := h.scanSvc.RoutinePlan(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithScanError(c, err, "fetch_failed")
		return
	}
	c.JSON(http.StatusOK, plan)
}

// ScanProduct extracts a product from a label photo and adds it to the shelf.
func (h *Handler) ScanProduct(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	image, err := readImage(c)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	product, err := h.scanSvc.ScanProduct(c.Request.Context(), claims.UserID, image)
	if err != nil {
		abortWithScanError(c, err, "scan_failed")
		return
	}

	c.JSON(http.StatusCreated, product)
}

// ListProducts returns the user's shelf.
func (h *Handler) ListProducts(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	products, err := h.scanSvc.Products(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithScanError(c, err, "fetch_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": products})
}

// AuditProduct scores one shelf product against the profile.
func (h *Handler) AuditProduct(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid product id", err))
		return
	}
	audit, err := h.scanSvc.Audit(c.Request.Context(), claims.UserID, id)
	if err != nil {
		abortWithScanError(c, err, "fetch_failed")
		return
	}
	c.JSON(http.StatusOK, audit)
}

// SimilarProducts lists shelf products with the closest ingredient profiles.
func (h *Handler) SimilarProducts(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid product id", err))
		return
	}
	products, err := h.scanSvc.Similar(c.Request.Context(), claims.UserID, id)
	if err != nil {
		abortWithScanError(c, err, "fetch_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": products})
}

// ProductDecision weighs a candidate purchase against the shelf.
func (h *Handler) ProductDecision(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	var candidate scan.CandidateProduct
	if err := c.ShouldBindJSON(&candidate); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	decision, err := h.scanSvc.Decide(c.Request.Context(), claims.UserID, candidate)
	if err != nil {
		abortWithScanError(c, err, "decision_failed")
		return
	}
	c.JSON(http.StatusOK, decision)
}

// ShelfHealth grades the whole shelf.
func (h *Handler) ShelfHealth(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	health, err := h.scanSvc.ShelfHealth(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithScanError(c, err, "fetch_failed")
		return
	}
	c.JSON(http.StatusOK, health)
}

func abortWithScanError(c *gin.Context, err error, fallbackCode string) {
	status := http.StatusInternalServerError
	code := fallbackCode
	switch {
	case apperrors.IsCode(err, "invalid_input"):
		status = http.StatusBadRequest
		code = "invalid_request"
	case apperrors.IsCode(err, "not_found"):
		status = http.StatusNotFound
		code = "not_found"
	case apperrors.IsCode(err, "unauthorized"):
		status = http.StatusUnauthorized
		code = "unauthorized"
	case apperrors.IsCode(err, "storage_error"):
		status = http.StatusInternalServerError
		code = "storage_error"
	}
	abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
}

type imagePayload struct {
	Image string `json:"image"`
}

// readImage accepts either a multipart "image" part or a JSON body with a
// base64-encoded image field.
func readImage(c *gin.Context) ([]byte, error) {
	contentType := c.GetHeader("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		fileHeader, err := c.FormFile("image")
		if err != nil {
			return nil, errors.New("image is required")
		}
		file, err := fileHeader.Open()
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return io.ReadAll(file)
	}

	var payload imagePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		return nil, err
	}
	if payload.Image == "" {
		return nil, errors.New("image is required")
	}
	data, err := base64.StdEncoding.DecodeString(trimDataURL(payload.Image))
	if err != nil {
		return nil, errors.New("image must be base64 encoded")
	}
	return data, nil
}

func trimDataURL(raw string) string {
	if idx := strings.Index(raw, ";base64,"); idx >= 0 {
		return raw[idx+len(";base64,"):]
	}
	return raw
}
