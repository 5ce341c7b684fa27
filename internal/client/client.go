// Package client talks to the review backend over its REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"listing-review/internal/domain"

	"go.uber.org/zap"
)

// Client is a REST client for the review backend. It never retries: every
// call reaches the backend at most once.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New returns a client for baseURL. A zero timeout means no client-side limit
// beyond the caller's context.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type apiError struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out tokenResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// Register creates an account and returns its bearer token
func (c *Client) Register(ctx context.Context, email, password string, role domain.Role) (string, error) {
	var out tokenResponse
	body := map[string]string{"email": email, "password": password, "role": role.String()}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", body, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// ListProducts returns every product
func (c *Client) ListProducts(ctx context.Context, token string) ([]*domain.Product, error) {
	var out []*domain.Product
	if err := c.do(ctx, http.MethodGet, "/api/products", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProduct returns one product
func (c *Client) GetProduct(ctx context.Context, token, id string) (*domain.Product, error) {
	var out domain.Product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProduct overwrites the editable fields of a product
func (c *Client) UpdateProduct(ctx context.Context, token, id string, details domain.ProductDetails) (*domain.Product, error) {
	var out domain.Product
	if err := c.do(ctx, http.MethodPut, "/api/products/"+url.PathEscape(id), token, details, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type submitRequest struct {
	ProductID      string                `json:"productId"`
	PersonID       string                `json:"personId"`
	ProductDetails domain.ProductDetails `json:"productDetails"`
}

// SubmitReview records a pending review of productID
func (c *Client) SubmitReview(ctx context.Context, token, productID, personID string, details domain.ProductDetails) (*domain.Review, error) {
	var out domain.Review
	body := submitRequest{ProductID: productID, PersonID: personID, ProductDetails: details}
	if err := c.do(ctx, http.MethodPost, "/api/reviews", token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PendingReviews returns the reviews awaiting a decision
func (c *Client) PendingReviews(ctx context.Context, token string) ([]*domain.Review, error) {
	var out []*domain.Review
	if err := c.do(ctx, http.MethodGet, "/api/reviews/pending", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetReview returns one review
func (c *Client) GetReview(ctx context.Context, token, id string) (*domain.Review, error) {
	var out domain.Review
	if err := c.do(ctx, http.MethodGet, "/api/reviews/"+url.PathEscape(id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DecideReview moves a pending review to decision
func (c *Client) DecideReview(ctx context.Context, token, id string, decision domain.Decision) (*domain.Review, error) {
	var out domain.Review
	body := map[string]string{"status": string(decision)}
	if err := c.do(ctx, http.MethodPut, "/api/reviews/"+url.PathEscape(id)+"/status", token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReviewsByPerson returns personID's reviews grouped by status
func (c *Client) ReviewsByPerson(ctx context.Context, token, personID string) (domain.ReviewPartition, error) {
	var out domain.ReviewPartition
	if err := c.do(ctx, http.MethodGet, "/api/reviews/person/"+url.PathEscape(personID), token, nil, &out); err != nil {
		return domain.ReviewPartition{}, err
	}
	return out, nil
}

// UserStats returns review counts for personID
func (c *Client) UserStats(ctx context.Context, token, personID string) (domain.UserStats, error) {
	var out domain.UserStats
	if err := c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(personID)+"/stats", token, nil, &out); err != nil {
		return domain.UserStats{}, err
	}
	return out, nil
}

// UploadImage sends an image as the multipart "image" field and returns its URL
func (c *Client) UploadImage(ctx context.Context, token, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("read image %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/uploads", token, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := c.send(ctx, req, &out); err != nil {
		return "", err
	}
	return out.ImageURL, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, path, token, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(ctx, req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) send(ctx context.Context, req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s %s: %v", domain.ErrTransientNetwork, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Backend call",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: decode %s %s response: %v", domain.ErrTransientNetwork, req.Method, req.URL.Path, err)
	}
	return nil
}

// statusError maps a failed response onto the domain error taxonomy
func statusError(resp *http.Response) error {
	var body apiError
	message := resp.Status
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil && body.Error.Message != "" {
		message = body.Error.Message
	}

	var kind error
	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		kind = domain.ErrValidation
	case http.StatusUnauthorized:
		kind = domain.ErrUnauthenticated
	case http.StatusForbidden:
		kind = domain.ErrUnauthorized
	case http.StatusNotFound:
		kind = domain.ErrNotFound
	case http.StatusConflict:
		kind = domain.ErrConflict
	default:
		kind = domain.ErrTransientNetwork
	}

	if errors.Is(kind, domain.ErrValidation) {
		if fieldErrs := fieldErrors(body.Error.Details); len(fieldErrs) > 0 {
			return fieldErrs
		}
	}
	return fmt.Errorf("%w: %s", kind, message)
}

func fieldErrors(details map[string]any) domain.ValidationErrors {
	raw, ok := details["validation_errors"]
	if !ok {
		return nil
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var out domain.ValidationErrors
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil
	}
	return out
}
