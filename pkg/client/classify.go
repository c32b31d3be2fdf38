package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/turtacn/cnsipo-attrs/pkg/errors"
	"github.com/turtacn/cnsipo-attrs/pkg/types/attrs"
)

const apiPrefix = "/api/v1"

// MaxBatchItems is the server's limit on texts per batch request.
// ParseAddresses splits larger inputs.
const MaxBatchItems = 1000

// AddressResult is one classified address.
type AddressResult struct {
	Input string `json:"input"`
	attrs.AddressResult
}

// ApplicantsResult is a classified applicant list with its attrs bitmask.
type ApplicantsResult struct {
	attrs.ApplicantResult
	Attrs int `json:"attrs"`
}

// IPCResult is one classified IPC code list.
type IPCResult struct {
	Input string `json:"input"`
	attrs.IPCResult
}

// Liveness is the body of /healthz.
type Liveness struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// Readiness is the body of /readyz.
type Readiness struct {
	Status     string               `json:"status"`
	RefData    map[string]int       `json:"refdata,omitempty"`
	Components map[string]Component `json:"components,omitempty"`
}

// Component is the state of one readiness dependency.
type Component struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ParseAddress classifies one applicant address.
func (c *Client) ParseAddress(ctx context.Context, text string) (*AddressResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.InvalidParam("address text is required")
	}
	var out AddressResult
	if err := c.get(ctx, apiPrefix+"/address", url.Values{"text": {text}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ParseAddresses classifies texts in order, sending at most MaxBatchItems
// per request.
func (c *Client) ParseAddresses(ctx context.Context, texts []string) ([]AddressResult, error) {
	out := make([]AddressResult, 0, len(texts))
	for start := 0; start < len(texts); start += MaxBatchItems {
		end := start + MaxBatchItems
		if end > len(texts) {
			end = len(texts)
		}
		var resp struct {
			Results []AddressResult `json:"results"`
		}
		req := struct {
			Texts []string `json:"texts"`
		}{Texts: texts[start:end]}
		if err := c.post(ctx, apiPrefix+"/addresses", req, &resp); err != nil {
			return nil, err
		}
		out = append(out, resp.Results...)
	}
	return out, nil
}

// ParseApplicants classifies a semicolon separated applicant list sharing
// one address.
func (c *Client) ParseApplicants(ctx context.Context, names, address string) (*ApplicantsResult, error) {
	req := struct {
		Names   string `json:"names"`
		Address string `json:"address,omitempty"`
	}{Names: names, Address: address}
	var out ApplicantsResult
	if err := c.post(ctx, apiPrefix+"/applicants", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ParseIPC classifies a semicolon separated IPC code list.
func (c *Client) ParseIPC(ctx context.Context, codes string) (*IPCResult, error) {
	if strings.TrimSpace(codes) == "" {
		return nil, errors.InvalidParam("IPC codes are required")
	}
	var out IPCResult
	if err := c.get(ctx, apiPrefix+"/ipc", url.Values{"codes": {codes}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health calls /healthz.
func (c *Client) Health(ctx context.Context) (*Liveness, error) {
	var out Liveness
	if err := c.get(ctx, "/healthz", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ready calls /readyz once. A server that is not ready yields an *APIError
// with IsUnavailable set.
func (c *Client) Ready(ctx context.Context) (*Readiness, error) {
	var out Readiness
	if err := c.do(ctx, 0, http.MethodGet, "/readyz", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

//Personal.AI order the ending
