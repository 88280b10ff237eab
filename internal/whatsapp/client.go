package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultBaseURL    = "https://graph.facebook.com"
	defaultAPIVersion = "v21.0"
)

// ErrNotConfigured is returned by SendTemplate when no access token is set.
var ErrNotConfigured = errors.New("whatsapp: access token not configured")

// Config controls how the Cloud API client behaves.
type Config struct {
	BaseURL     string
	APIVersion  string
	AccessToken string
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// Client calls the WhatsApp Cloud API (Graph API) on behalf of a business
// phone number.
type Client struct {
	baseURL     string
	apiVersion  string
	accessToken string
	httpClient  *http.Client
}

// Template names an approved message template and its language code.
type Template struct {
	Name     string
	Language string
}

// APIError is a non-2xx Graph API response.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	Code       int    `json:"code"`
	TraceID    string `json:"fbtrace_id"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("whatsapp: graph api status %d", e.StatusCode)
	}
	return fmt.Sprintf("whatsapp: graph api status %d: %s (code %d)", e.StatusCode, e.Message, e.Code)
}

// NewClient builds a Client, filling defaults for empty settings.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	version := strings.Trim(strings.TrimSpace(cfg.APIVersion), "/")
	if version == "" {
		version = defaultAPIVersion
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:     baseURL,
		apiVersion:  version,
		accessToken: strings.TrimSpace(cfg.AccessToken),
		httpClient:  httpClient,
	}
}

type templateRequest struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Template         struct {
		Name     string `json:"name"`
		Language struct {
			Code string `json:"code"`
		} `json:"language"`
	} `json:"template"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// SendTemplate sends an approved template message from phoneNumberID to the
// recipient and returns the provider message id.
func (c *Client) SendTemplate(ctx context.Context, phoneNumberID, to string, tmpl Template) (string, error) {
	ctx, span := otel.Tracer("whatsapp/Client").Start(ctx, "SendTemplate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("whatsapp.template", tmpl.Name),
			attribute.String("whatsapp.phone_number_id", phoneNumberID),
		),
	)
	defer span.End()

	if c.accessToken == "" {
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(phoneNumberID) == "" || strings.TrimSpace(to) == "" {
		return "", errors.New("whatsapp: phone number id and recipient required")
	}
	if strings.TrimSpace(tmpl.Name) == "" {
		return "", errors.New("whatsapp: template name required")
	}

	var req templateRequest
	req.MessagingProduct = "whatsapp"
	req.To = to
	req.Type = "template"
	req.Template.Name = tmpl.Name
	req.Template.Language.Code = tmpl.Language

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("whatsapp: marshal template body: %w", err)
	}
	data, err := c.post(ctx, "/"+phoneNumberID+"/messages", body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send template")
		return "", err
	}

	var resp sendResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("whatsapp: decode send response: %w", err)
	}
	if len(resp.Messages) == 0 || resp.Messages[0].ID == "" {
		return "", errors.New("whatsapp: send response has no message id")
	}
	span.SetAttributes(attribute.String("whatsapp.message_id", resp.Messages[0].ID))
	return resp.Messages[0].ID, nil
}

func (c *Client) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	url := c.baseURL + "/" + c.apiVersion + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("whatsapp: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("whatsapp: http error: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("whatsapp: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeAPIError(resp.StatusCode, data)
	}
	return data, nil
}

func decodeAPIError(status int, data []byte) error {
	var wrapper struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil && wrapper.Error != nil {
		wrapper.Error.StatusCode = status
		return wrapper.Error
	}
	return &APIError{StatusCode: status, Message: strings.TrimSpace(string(data))}
}
