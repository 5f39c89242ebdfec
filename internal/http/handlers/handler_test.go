package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if _, ok := getUserID(c); ok {
		t.Fatal("expected no user id on a fresh context")
	}

	c.Set("user_id", int64(42))
	id, ok := getUserID(c)
	if !ok || id != 42 {
		t.Fatalf("getUserID = %d,%v, want 42,true", id, ok)
	}
}
