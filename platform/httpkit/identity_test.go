package httpkit

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestGetIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if GetIdentity(c).IsAuthenticated() {
		t.Fatal("expected unauthenticated identity when context keys are absent")
	}

	uid := uuid.New()
	c.Set(ContextUserIDKey, uid)
	c.Set(ContextRolesKey, []string{"ADMIN"})

	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		t.Fatal("expected authenticated identity")
	}
	if id.UserID() != uid {
		t.Fatalf("expected user id %s, got %s", uid, id.UserID())
	}
	if !id.HasRole("ADMIN") {
		t.Fatal("expected ADMIN role")
	}
	if id.HasRole("USER") {
		t.Fatal("did not expect USER role")
	}
}
