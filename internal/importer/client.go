// Package importer calls the downstream import/ingestion collaborator that
// owns survey persistence. One call is made per write.
package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const resourceType = "directional_surveys"

// Operation is the downstream import operation kind.
type Operation string

const (
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Request is the downstream wire payload.
type Request struct {
	Data            interface{} `json:"data"`
	ImportOperation Operation   `json:"importOperation"`
	ResourceType    string      `json:"resourceType"`
}

// Result is the downstream response for create/update imports.
type Result struct {
	Found    int `json:"found"`
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
}

// DeleteResult is the downstream response for deletes.
type DeleteResult struct {
	Updated int `json:"updated"`
}

// Client is the outbound boundary to the import service.
type Client interface {
	// Import pushes a full record downstream and reports how many rows the
	// service found, imported, and updated.
	Import(ctx context.Context, data interface{}) (*Result, error)

	// Delete removes everything downstream keyed by the given well id.
	Delete(ctx context.Context, wellID string) (*DeleteResult, error)
}

// HTTPClient implements Client over HTTP JSON.
type HTTPClient struct {
	baseURL string
	httpc   *http.Client
}

// NewHTTPClient creates a client for the import service at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Import(ctx context.Context, data interface{}) (*Result, error) {
	var result Result
	req := Request{Data: data, ImportOperation: OperationUpdate, ResourceType: resourceType}
	if err := c.post(ctx, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Delete(ctx context.Context, wellID string) (*DeleteResult, error) {
	var result DeleteResult
	req := Request{
		Data:            map[string]string{"wellID": wellID},
		ImportOperation: OperationDelete,
		ResourceType:    resourceType,
	}
	if err := c.post(ctx, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) post(ctx context.Context, body Request, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode import request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/imports", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build import request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("import call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("import service returned %d: %s", resp.StatusCode, snippet)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode import response: %w", err)
	}
	return nil
}
