package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/cnsipo-attrs/internal/application/auxfill"
	"github.com/turtacn/cnsipo-attrs/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/cnsipo-attrs/pkg/types/attrs"
)

// MaxBatchItems bounds the number of inputs of one batch request.
const MaxBatchItems = 1000

// Classifier is the parser surface the API exposes.
type Classifier interface {
	ParseAddress(text string) attrs.AddressResult
	ParseApplicants(names, address string) attrs.ApplicantResult
	ParseIntCl(codes string) attrs.IPCResult
}

// ClassifyHandler serves the address, applicant and IPC endpoints.
type ClassifyHandler struct {
	classifier Classifier
	metrics    *prometheus.AppMetrics
}

// NewClassifyHandler creates a ClassifyHandler. metrics may be nil.
func NewClassifyHandler(classifier Classifier, metrics *prometheus.AppMetrics) *ClassifyHandler {
	return &ClassifyHandler{classifier: classifier, metrics: metrics}
}

// RegisterRoutes mounts the handler under rg.
func (h *ClassifyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/address", h.Address)
	rg.POST("/addresses", h.Addresses)
	rg.POST("/applicants", h.Applicants)
	rg.GET("/ipc", h.IPC)
}

// AddressResponse is one classified address.
type AddressResponse struct {
	Input string `json:"input"`
	attrs.AddressResult
}

// AddressBatchRequest is the body of POST /addresses.
type AddressBatchRequest struct {
	Texts []string `json:"texts" binding:"required"`
}

// ApplicantsRequest is the body of POST /applicants.
type ApplicantsRequest struct {
	Names   string `json:"names" binding:"required"`
	Address string `json:"address"`
}

// ApplicantsResponse carries the entities plus the aux-table bitmask.
type ApplicantsResponse struct {
	attrs.ApplicantResult
	Attrs int `json:"attrs"`
}

// IPCResponse is one classified IPC list.
type IPCResponse struct {
	Input string `json:"input"`
	attrs.IPCResult
}

// Address handles GET /address?text=...
func (h *ClassifyHandler) Address(c *gin.Context) {
	text, ok := c.GetQuery("text")
	if !ok || strings.TrimSpace(text) == "" {
		badRequest(c, "missing required query parameter", "text")
		return
	}
	c.JSON(http.StatusOK, h.address(text))
}

// Addresses handles POST /addresses.
func (h *ClassifyHandler) Addresses(c *gin.Context) {
	var req AddressBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err.Error())
		return
	}
	if len(req.Texts) > MaxBatchItems {
		badRequest(c, "too many texts", "at most "+strconv.Itoa(MaxBatchItems))
		return
	}
	out := make([]AddressResponse, len(req.Texts))
	for i, text := range req.Texts {
		out[i] = h.address(text)
	}
	c.JSON(http.StatusOK, gin.H{"results": out})
}

func (h *ClassifyHandler) address(text string) AddressResponse {
	r := h.classifier.ParseAddress(text)
	prometheus.RecordClassification(h.metrics, auxfill.FieldAddress.String(), auxfill.AddressOutcome(r))
	return AddressResponse{Input: text, AddressResult: r}
}

// Applicants handles POST /applicants.
func (h *ClassifyHandler) Applicants(c *gin.Context) {
	var req ApplicantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err.Error())
		return
	}
	r := h.classifier.ParseApplicants(req.Names, req.Address)
	if r.Entities == nil {
		r.Entities = []attrs.Entity{}
	}
	prometheus.RecordClassification(h.metrics, auxfill.FieldApplicant.String(), auxfill.ApplicantOutcome(r))
	c.JSON(http.StatusOK, ApplicantsResponse{ApplicantResult: r, Attrs: auxfill.AttrsMask(r)})
}

// IPC handles GET /ipc?codes=...
func (h *ClassifyHandler) IPC(c *gin.Context) {
	codes, ok := c.GetQuery("codes")
	if !ok || strings.TrimSpace(codes) == "" {
		badRequest(c, "missing required query parameter", "codes")
		return
	}
	r := h.classifier.ParseIntCl(codes)
	prometheus.RecordClassification(h.metrics, auxfill.FieldIntCl.String(), auxfill.IPCOutcome(r))
	c.JSON(http.StatusOK, IPCResponse{Input: codes, IPCResult: r})
}

//Personal.AI order the ending
