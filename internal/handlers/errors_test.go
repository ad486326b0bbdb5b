package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"copool/internal/services"

	"github.com/gin-gonic/gin"
)

func TestHandleServiceErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid input", services.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
		{"capacity", services.ErrCapacityExceeded, http.StatusConflict, "CAPACITY_EXCEEDED"},
		{"forbidden", services.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"not found", services.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"precondition", services.ErrPrecondition, http.StatusPreconditionFailed, "PRECONDITION_FAILED"},
		{"conflict", services.ErrConflict, http.StatusConflict, "CONFLICT"},
		{"wrapped sentinel", fmt.Errorf("join ride: %w", services.ErrCapacityExceeded), http.StatusConflict, "CAPACITY_EXCEEDED"},
		{"internal", services.ErrInternal, http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"unknown", fmt.Errorf("driver exploded"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(recorder)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			handleServiceError(c, tc.err)

			if recorder.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", recorder.Code, tc.wantStatus)
			}

			var body struct {
				Status string `json:"status"`
				Error  struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Status != "error" {
				t.Errorf("status field = %q", body.Status)
			}
			if body.Error.Code != tc.wantCode {
				t.Errorf("error code = %q, want %q", body.Error.Code, tc.wantCode)
			}
		})
	}
}

func TestHandleServiceErrorHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	handleServiceError(c, fmt.Errorf("mongo: connection reset by peer"))

	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", recorder.Code)
	}

	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Message != "internal server error" {
		t.Errorf("message = %q, want the generic internal error text", body.Error.Message)
	}
}
