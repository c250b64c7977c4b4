package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRespondWithSuccess(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondWithSuccess(rec, http.StatusCreated, "Registration successful", map[string]string{"key": "value"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp SuccessResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "Registration successful", resp.Message)
}

func TestRespondWithFailure(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondWithFailure(rec, http.StatusUnauthorized, "Bad request", "Authentication failed")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp FailureResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Bad request", resp.Status)
	assert.Equal(t, "Authentication failed", resp.Message)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRespondWithFieldErrors(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondWithFieldErrors(rec, []FieldError{
		{Field: "email", Message: "email is required"},
		{Field: "password", Message: "password is required"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp FieldErrorResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Errors, 2)
	assert.Equal(t, "email", resp.Errors[0].Field)
}

func TestParseJSONRequest(t *testing.T) {
	t.Run("Valid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"test"}`))
		var target struct {
			Name string `json:"name"`
		}
		assert.NoError(t, ParseJSONRequest(req, &target))
		assert.Equal(t, "test", target.Name)
	})

	t.Run("Malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{not json`))
		var target map[string]interface{}
		assert.Error(t, ParseJSONRequest(req, &target))
	})
}

func TestPanicRecoveryMiddleware(t *testing.T) {
	handler := PanicRecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("something went wrong")
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)

	assert.NotPanics(t, func() {
		handler.ServeHTTP(rec, req)
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp FailureResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Internal server error", resp.Message)
}

func TestDefaultServerConfig(t *testing.T) {
	t.Run("Default port", func(t *testing.T) {
		os.Unsetenv("PORT")
		config := DefaultServerConfig()
		assert.Equal(t, "3000", config.Port)
	})

	t.Run("Port from environment", func(t *testing.T) {
		os.Setenv("PORT", "8080")
		defer os.Unsetenv("PORT")
		config := DefaultServerConfig()
		assert.Equal(t, "8080", config.Port)
	})
}

func TestStartServerWithGracefulShutdown(t *testing.T) {
	t.Run("Returns the listen error", func(t *testing.T) {
		server := &http.Server{Addr: "127.0.0.1:-1", Handler: http.NewServeMux()}

		err := StartServerWithGracefulShutdown(server, "test-service")
		assert.Error(t, err)
	})

	t.Run("SIGTERM shuts the server down cleanly", func(t *testing.T) {
		server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()}

		done := make(chan error, 1)
		go func() {
			done <- StartServerWithGracefulShutdown(server, "test-service")
		}()

		// Give the server a moment to install its signal handler and listen
		time.Sleep(100 * time.Millisecond)
		assert.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not shut down after SIGTERM")
		}
	})
}

func TestCreateServer(t *testing.T) {
	config := DefaultServerConfig()
	server := CreateServer(config, http.NewServeMux())
	assert.Equal(t, ":"+config.Port, server.Addr)
	assert.Equal(t, config.ReadTimeout, server.ReadTimeout)
	assert.Equal(t, config.WriteTimeout, server.WriteTimeout)
	assert.Equal(t, config.IdleTimeout, server.IdleTimeout)
}
