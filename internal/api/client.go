package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sliink/formatbridge/internal/model"
)

// DefaultSubmitTimeout bounds one outbound submission so a hung endpoint
// cannot hold a request open indefinitely.
const DefaultSubmitTimeout = 10 * time.Second

// Client posts records to a remote transaction endpoint. It satisfies
// core.Submitter, letting the file-to-API bridge target another bridge
// instance instead of the in-process store.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the bridge API at baseURL. A non-positive
// timeout falls back to DefaultSubmitTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultSubmitTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Submit delivers one record to POST /api/transactions.
func (c *Client) Submit(rec *model.Record) (model.Transaction, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return model.Transaction{}, err
	}

	resp, err := c.http.Post(c.baseURL+"/api/transactions", "application/json", bytes.NewReader(body))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("delivering record: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return model.Transaction{}, fmt.Errorf("transaction endpoint returned %s", resp.Status)
	}

	var out struct {
		Transaction struct {
			ID         int64     `json:"id"`
			ReceivedAt time.Time `json:"receivedAt"`
		} `json:"transaction"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return model.Transaction{}, fmt.Errorf("decoding submit response: %w", err)
	}

	return model.Transaction{
		ID:         out.Transaction.ID,
		ReceivedAt: out.Transaction.ReceivedAt,
		Record:     rec,
	}, nil
}
