package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Metadata travels with every indexed vector so retrieval can recover the
// chunk text and its owner without a second lookup.
type Metadata struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Text   string `json:"text"`
}

// Record is one (id, vector, metadata) entry in the index. Upserting the
// same id again overwrites the previous entry.
type Record struct {
	ID       string    `json:"id"`
	Values   []float32 `json:"values"`
	Metadata Metadata  `json:"metadata"`
}

// Match is one ranked hit from a similarity query.
type Match struct {
	ID       string   `json:"id"`
	Score    float32  `json:"score"`
	Metadata Metadata `json:"metadata"`
}

// Config holds settings for a Pinecone-style serverless index.
type Config struct {
	APIKey    string
	IndexHost string
	Namespace string
}

// PineconeClient is a write-and-query adapter for a Pinecone index. This
// service only appends to the index; it never deletes or mutates records it
// previously wrote.
type PineconeClient struct {
	cfg        Config
	httpClient *http.Client
}

func NewPineconeClient(cfg Config) *PineconeClient {
	return &PineconeClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Upsert writes all records in one call. Idempotent per id: last write wins.
func (c *PineconeClient) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	reqBody := map[string]interface{}{
		"vectors":   records,
		"namespace": c.cfg.Namespace,
	}
	if _, err := c.post(ctx, "/vectors/upsert", reqBody); err != nil {
		return err
	}
	return nil
}

// Query returns up to topK nearest records across the whole namespace. The
// index is not filtered by user here; callers post-filter on
// Metadata.UserID. With many users a single user's records can be crowded
// out of the global top-k.
func (c *PineconeClient) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	reqBody := map[string]interface{}{
		"vector":          vector,
		"topK":            topK,
		"includeMetadata": true,
		"namespace":       c.cfg.Namespace,
	}

	raw, err := c.post(ctx, "/query", reqBody)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Matches []Match `json:"matches"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse query json failed: %w", err)
	}
	return parsed.Matches, nil
}

func (c *PineconeClient) post(ctx context.Context, path string, reqBody interface{}) ([]byte, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %w", err)
	}

	host := c.cfg.IndexHost
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	url := strings.TrimRight(host, "/") + path

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("response status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}
