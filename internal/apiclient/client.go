// Package apiclient consumes the opaque backend provisioning API. Account
// creation and deletion live there because they require identity-provider
// admin privileges this server does not hold; the backend also re-verifies
// the bearer token, making it the actual security boundary for these calls.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ridemap/admin-server/internal/config"
)

// Success sentinels returned by the backend.
const (
	UserCreated = "auth/user-created-successfully"
	UserUpdated = "auth/user-updated-successfully"
)

// ErrNetwork marks a transport-level failure, distinguished from a
// structured backend rejection.
var ErrNetwork = errors.New("network error")

// APIError is a structured backend rejection with a known or unknown code.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend rejected request: %s", e.Message)
}

// Known backend error codes mapped to user-facing messages. Unknown codes
// fall through to a generic message.
var errorMessages = map[string]string{
	"auth/email-already-exists":        "Email already exist",
	"auth/phone-number-already-exists": "Phone number already exist",
	"validation/enroll-already-exist":  "Enroll no already exist",
	"auth/invalid-phone-number":        "Invalid phone number",
	"Invalid token":                    "Login again session has expired",
}

const genericErrorMessage = "Something went wrong, please try again"

// Client calls the backend API with the caller's bearer token.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(cfg config.BackendConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
}

// backendResponse is the envelope every endpoint answers with.
type backendResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) post(ctx context.Context, token, path string, payload any) (*backendResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNetwork, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var decoded backendResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}

	if resp.StatusCode/100 != 2 {
		code := decoded.Code
		if code == "" {
			code = decoded.Message
		}
		message, known := errorMessages[code]
		if !known {
			message = genericErrorMessage
		}
		return nil, &APIError{Code: code, Message: message}
	}
	return &decoded, nil
}

// CreateAdminRequest provisions an institute admin account.
type CreateAdminRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Institute string `json:"institute"`
	Password  string `json:"password"`
}

func (c *Client) CreateAdmin(ctx context.Context, token string, req CreateAdminRequest) error {
	_, err := c.post(ctx, token, "/admin/create", req)
	return err
}

// DeleteAdmin hard-deletes an admin account; soft deletion is the isHided
// flag handled store-side.
func (c *Client) DeleteAdmin(ctx context.Context, token, uid string) error {
	_, err := c.post(ctx, token, "/admin/delete", map[string]string{"userId": uid})
	return err
}

// UserPayload is the rider shape the backend create/update endpoints take.
type UserPayload struct {
	Name         string `json:"name"`
	FatherName   string `json:"fatherName"`
	EnrollNo     string `json:"enrollNo"`
	Department   string `json:"department"`
	EmailOrPhone string `json:"emailOrPhone"`
	Phone        string `json:"phone"`
	Gender       string `json:"gender"`
	City         string `json:"city"`
	BusStop      string `json:"busStop"`
	BusNo        string `json:"busNo,omitempty"`
	Address      string `json:"address"`
	ValidUpto    string `json:"validUpto"`
}

func (c *Client) CreateUser(ctx context.Context, token string, user UserPayload) error {
	resp, err := c.post(ctx, token, "/user/create", user)
	if err != nil {
		return err
	}
	if resp.Message != UserCreated {
		return &APIError{Code: resp.Message, Message: genericErrorMessage}
	}
	return nil
}

func (c *Client) UpdateUser(ctx context.Context, token, uid string, user UserPayload) error {
	payload := struct {
		UserPayload
		UID string `json:"uid"`
	}{UserPayload: user, UID: uid}

	resp, err := c.post(ctx, token, "/user/update", payload)
	if err != nil {
		return err
	}
	if resp.Message != UserUpdated {
		return &APIError{Code: resp.Message, Message: genericErrorMessage}
	}
	return nil
}
