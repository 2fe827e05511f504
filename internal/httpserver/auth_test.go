package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"projecttracker/internal/handler"
	"projecttracker/internal/model"
	"projecttracker/pkg/util"
)

const testSecret = "unit-test-secret"

// newAuthRouter wires AuthMiddleware in front of an echo route so the
// tests can observe what identity landed on the context.
func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(testSecret))
	r.GET("/whoami", func(c *gin.Context) {
		rawID, _ := c.Get(handler.CtxUserID)
		rawRole, _ := c.Get(handler.CtxRole)
		c.JSON(http.StatusOK, gin.H{
			"user_id": rawID,
			"role":    rawRole.(model.Role).String(),
		})
	})
	return r
}

func doAuthed(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMissingTokenIsRejected(t *testing.T) {
	router := newAuthRouter()

	for name, header := range map[string]string{
		"no header":       "",
		"empty bearer":    "Bearer",
		"wrong scheme":    "Basic dXNlcjpwYXNz",
		"too many fields": "Bearer a b",
	} {
		w := doAuthed(router, header)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", name, w.Code)
		}
	}
}

func TestGarbageTokenIsRejected(t *testing.T) {
	router := newAuthRouter()

	w := doAuthed(router, "Bearer not.a.jwt")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401: %s", w.Code, w.Body.String())
	}
}

func TestTokenSignedWithWrongSecretIsRejected(t *testing.T) {
	router := newAuthRouter()

	token, err := util.GenerateJWT(42, "admin", "some-other-secret")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	w := doAuthed(router, "Bearer "+token)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401: %s", w.Code, w.Body.String())
	}
}

func TestExpiredTokenIsRejected(t *testing.T) {
	router := newAuthRouter()

	claims := jwt.MapClaims{
		"user_id": 42,
		"role":    "admin",
		"exp":     time.Now().Add(-time.Hour).Unix(),
		"iat":     time.Now().Add(-2 * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	w := doAuthed(router, "Bearer "+token)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401: %s", w.Code, w.Body.String())
	}
}

func TestNonNumericUserIDClaimIsRejected(t *testing.T) {
	router := newAuthRouter()

	claims := jwt.MapClaims{
		"user_id": "42",
		"role":    "admin",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	w := doAuthed(router, "Bearer "+token)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401: %s", w.Code, w.Body.String())
	}
}

func TestValidTokenSetsIdentity(t *testing.T) {
	router := newAuthRouter()

	token, err := util.GenerateJWT(42, "project_manager", testSecret)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	w := doAuthed(router, "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp struct {
		UserID int    `json:"user_id"`
		Role   string `json:"role"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.UserID != 42 {
		t.Errorf("user_id = %d, want 42", resp.UserID)
	}
	if resp.Role != "project_manager" {
		t.Errorf("role = %q, want project_manager", resp.Role)
	}
}

func TestUnknownRoleClaimDefaultsToTeamMember(t *testing.T) {
	router := newAuthRouter()

	token, err := util.GenerateJWT(7, "superuser", testSecret)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	w := doAuthed(router, "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Role string `json:"role"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Role != "team_member" {
		t.Errorf("role = %q, want team_member fallback", resp.Role)
	}
}
