package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"printd/internal/model"
)

var ErrUserNotFound = errors.New("user not found")

// ProgressPrinted is the fulfillment stage a freshly printed order
// carries on the ledger.
const ProgressPrinted = "打单"

// PlatformClient talks to the external collaboration platform hosting
// the shared ledger, the notification channel and the user directory.
type PlatformClient struct {
	baseURL string
	client  *http.Client
}

func NewPlatformClient(baseURL string) *PlatformClient {
	return &PlatformClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// RecordFields is the ledger row schema. The field names are the
// platform's column titles and are part of the wire contract.
type RecordFields struct {
	OrderID   int64  `json:"订单编号"`
	LocalID   int64  `json:"编号"`
	Address   string `json:"地址"`
	Content   string `json:"货物"`
	PrintTime int64  `json:"打单时间"`
	Printer   string `json:"打单人"`
	Progress  string `json:"当前进度"`
	Handler   string `json:"当前处理人"`
	HandledAt int64  `json:"当前处理时间"`
	Overall   string `json:"总体进度"`
}

type Record struct {
	Fields RecordFields `json:"fields"`
}

type Message struct {
	OrderID  int64  `json:"order_id"`
	LocalID  int64  `json:"id"`
	Address  string `json:"address"`
	Content  string `json:"content"`
	Progress string `json:"cur_progress"`
	Handler  string `json:"cur_man"`
	Time     string `json:"cur_time"`
}

// WriteRecord inserts one order into the ledger. Writes are idempotent
// by order number on the platform side: a duplicate-key conflict means
// the record is already there and counts as success.
func (c *PlatformClient) WriteRecord(ctx context.Context, rec Record) error {
	return c.post(ctx, "/api/records", rec)
}

// SendMessage pushes the new-order notification to the chat channel.
func (c *PlatformClient) SendMessage(ctx context.Context, msg Message) error {
	return c.post(ctx, "/api/messages", msg)
}

// SendAlert pushes an operational alert to the ops channel.
func (c *PlatformClient) SendAlert(ctx context.Context, text string) error {
	return c.post(ctx, "/api/alerts", map[string]string{"text": text})
}

func (c *PlatformClient) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusConflict:
		// 409 means the key already exists, which is the idempotent
		// outcome of a retried write.
		return nil
	default:
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status: %d, body: %s", resp.StatusCode, string(raw))
	}
}

// ListPlaces fetches the platform's current list of known place names.
func (c *PlatformClient) ListPlaces(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/places", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status: %d, body: %s", resp.StatusCode, string(raw))
	}

	var res struct {
		Places []string `json:"places"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return res.Places, nil
}

// LookupUser resolves an operator by phone and password against the
// platform's user directory.
func (c *PlatformClient) LookupUser(ctx context.Context, phone, password string) (*model.Identity, error) {
	q := url.Values{}
	q.Set("phone", phone)
	q.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/users?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var identity model.Identity
		if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return &identity, nil
	case http.StatusNotFound:
		return nil, ErrUserNotFound
	default:
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status: %d, body: %s", resp.StatusCode, string(raw))
	}
}
