package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ridemap/admin-server/internal/config"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := New(config.BackendConfig{BaseURL: server.URL, TimeoutSeconds: 5})
	return client, server
}

func respond(w http.ResponseWriter, status int, code, message string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": code, "message": message})
}

func TestKnownErrorCodesMapToMessages(t *testing.T) {
	cases := []struct {
		code    string
		message string
	}{
		{"auth/email-already-exists", "Email already exist"},
		{"auth/phone-number-already-exists", "Phone number already exist"},
		{"validation/enroll-already-exist", "Enroll no already exist"},
		{"auth/invalid-phone-number", "Invalid phone number"},
		{"Invalid token", "Login again session has expired"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
				respond(w, http.StatusBadRequest, tc.code, "raw backend text")
			})
			defer server.Close()

			err := client.CreateAdmin(context.Background(), "tok", CreateAdminRequest{Name: "A"})
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Code != tc.code || apiErr.Message != tc.message {
				t.Fatalf("got code=%q message=%q", apiErr.Code, apiErr.Message)
			}
		})
	}
}

func TestUnknownErrorCodeFallsBackToGeneric(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusInternalServerError, "auth/some-new-code", "internal detail")
	})
	defer server.Close()

	err := client.DeleteAdmin(context.Background(), "tok", "uid-1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "Something went wrong, please try again" {
		t.Fatalf("unknown code must map to the generic message, got %q", apiErr.Message)
	}
}

func TestErrorCodeFallsBackToMessageField(t *testing.T) {
	// Some backend rejections carry the code in the message field only.
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusUnauthorized, "", "Invalid token")
	})
	defer server.Close()

	err := client.CreateUser(context.Background(), "tok", UserPayload{Name: "A"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "Login again session has expired" {
		t.Fatalf("got %q", apiErr.Message)
	}
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	err := client.CreateAdmin(context.Background(), "tok", CreateAdminRequest{})
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Fatal("a transport failure is not a backend rejection")
	}
}

func TestBearerTokenAndPathForwarded(t *testing.T) {
	var gotAuth, gotPath string
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		respond(w, http.StatusOK, "", UserCreated)
	})
	defer server.Close()

	if err := client.CreateUser(context.Background(), "session-token", UserPayload{Name: "A"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if gotAuth != "Bearer session-token" {
		t.Fatalf("authorization header = %q", gotAuth)
	}
	if gotPath != "/user/create" {
		t.Fatalf("path = %q", gotPath)
	}
}

func TestCreateUserRequiresSentinel(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, "", "ok")
	})
	defer server.Close()

	err := client.CreateUser(context.Background(), "tok", UserPayload{Name: "A"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("a 2xx without the creation sentinel is still a failure, got %v", err)
	}
}

func TestUpdateUserSentinelAndUID(t *testing.T) {
	var decoded map[string]any
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&decoded)
		respond(w, http.StatusOK, "", UserUpdated)
	})
	defer server.Close()

	if err := client.UpdateUser(context.Background(), "tok", "uid-9", UserPayload{EnrollNo: "20TD0324"}); err != nil {
		t.Fatalf("update user: %v", err)
	}
	if decoded["uid"] != "uid-9" {
		t.Fatalf("payload uid = %v", decoded["uid"])
	}
	if decoded["enrollNo"] != "20TD0324" {
		t.Fatalf("payload enrollNo = %v", decoded["enrollNo"])
	}
}
