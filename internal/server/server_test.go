package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authdomain "github.com/casaantigua/anticuario/internal/auth/domain"
	inventorydomain "github.com/casaantigua/anticuario/internal/inventory/domain"
	qrdomain "github.com/casaantigua/anticuario/internal/qr/domain"
)

type fakeAuthService struct{}

func (f *fakeAuthService) Login(ctx context.Context, req authdomain.LoginRequest) (authdomain.LoginResponse, error) {
	if req.Email == "clerk@example.com" && req.Password == "correct" {
		return authdomain.LoginResponse{Token: "clerk-token"}, nil
	}
	return authdomain.LoginResponse{}, authdomain.ErrInvalidCredentials
}

func (f *fakeAuthService) VerifyToken(ctx context.Context, token string) (*authdomain.Claims, error) {
	switch token {
	case "admin-token":
		return &authdomain.Claims{UserID: "1", Email: "admin@example.com", Role: authdomain.RoleAdmin}, nil
	case "clerk-token":
		return &authdomain.Claims{UserID: "2", Email: "clerk@example.com", Role: authdomain.RoleClerk}, nil
	case "viewer-token":
		return &authdomain.Claims{UserID: "3", Email: "viewer@example.com", Role: authdomain.RoleViewer}, nil
	}
	return nil, authdomain.ErrInvalidToken
}

func (f *fakeAuthService) Me(ctx context.Context, userID string) (*authdomain.User, error) {
	return &authdomain.User{Email: "admin@example.com", Role: authdomain.RoleAdmin}, nil
}

func (f *fakeAuthService) CreateUser(ctx context.Context, req authdomain.CreateUserRequest) (*authdomain.User, error) {
	return &authdomain.User{Email: req.Email, Role: req.Role}, nil
}

type fakeInventoryService struct {
	created *inventorydomain.CreateItemRequest
}

func (f *fakeInventoryService) Create(ctx context.Context, req inventorydomain.CreateItemRequest) (*inventorydomain.Item, error) {
	f.created = &req
	return &inventorydomain.Item{Name: req.Name, Category: req.Category}, nil
}

func (f *fakeInventoryService) List(ctx context.Context, req inventorydomain.ListItemRequest) (inventorydomain.ListItemResponse, error) {
	return inventorydomain.ListItemResponse{Items: []*inventorydomain.Item{{Name: "Mesa"}}}, nil
}

func (f *fakeInventoryService) GetByID(ctx context.Context, req inventorydomain.GetItemRequest) (*inventorydomain.Item, error) {
	return nil, inventorydomain.ErrNotFound
}

func (f *fakeInventoryService) GetByFriendlyID(ctx context.Context, friendlyID string) (*inventorydomain.Item, error) {
	return nil, inventorydomain.ErrInvalidFriendlyID
}

func (f *fakeInventoryService) Update(ctx context.Context, req inventorydomain.UpdateItemRequest) (*inventorydomain.Item, error) {
	return nil, inventorydomain.ErrNotFound
}

func (f *fakeInventoryService) Delete(ctx context.Context, id string, actor string) error {
	return inventorydomain.ErrItemInUse
}

func (f *fakeInventoryService) Stats(ctx context.Context) (*inventorydomain.Stats, error) {
	return &inventorydomain.Stats{}, nil
}

func (f *fakeInventoryService) DecrementStock(ctx context.Context, id string, qty int64) error {
	return nil
}

func (f *fakeInventoryService) RestoreStock(ctx context.Context, id string, qty int64) error {
	return nil
}

type fakeQRService struct{}

func (f *fakeQRService) Render(ctx context.Context, req qrdomain.RenderRequest) (*qrdomain.RenderResult, error) {
	if req.ItemID == "" {
		return nil, qrdomain.ErrInvalidItemID
	}
	return &qrdomain.RenderResult{
		Data:        []byte("png-bytes"),
		ContentType: "image/png",
		FileName:    "qr-" + req.ItemID + ".png",
	}, nil
}

func (f *fakeQRService) View(ctx context.Context, itemID string) (*qrdomain.PublicView, error) {
	return nil, qrdomain.ErrItemNotFound
}

func newTestServer(t *testing.T) (*Server, *fakeInventoryService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ErrorHandlingMiddleware())

	inv := &fakeInventoryService{}
	s := &Server{
		engine:       r,
		authSvc:      &fakeAuthService{},
		inventorySvc: inv,
		qrSvc:        &fakeQRService{},
	}
	s.registerPublicRoutes()
	s.registerStaffRoutes()
	return s, inv
}

func doRequest(s *Server, method, path, token, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestAuthRequired_RejectsMissingAndBadTokens(t *testing.T) {
	s, _ := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/api/inventory", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "unauthorized", env.Error.Type)

	w = doRequest(s, http.MethodGet, "/api/inventory", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireWrite_BlocksViewers(t *testing.T) {
	s, inv := newTestServer(t)

	body := `{"item_name":"Mesa","category":"Mobiliario","initial_quantity":1,"unit_price":1000}`

	w := doRequest(s, http.MethodPost, "/api/inventory", "viewer-token", body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "forbidden", env.Error.Type)
	assert.Nil(t, inv.created)

	w = doRequest(s, http.MethodPost, "/api/inventory", "clerk-token", body)
	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, inv.created)
	assert.Equal(t, "Mesa", inv.created.Name)
	// Actor comes from the verified token, never the body.
	assert.Equal(t, "clerk@example.com", inv.created.Actor)
}

func TestListEnvelopeCarriesCount(t *testing.T) {
	s, _ := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/api/inventory", "viewer-token", "")
	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)
}

func TestErrorMapping(t *testing.T) {
	s, _ := newTestServer(t)

	// Domain not-found surfaces as 404.
	w := doRequest(s, http.MethodGet, "/api/inventory/12345", "viewer-token", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "not_found", env.Error.Type)

	// Domain validation surfaces as 400.
	w = doRequest(s, http.MethodGet, "/api/inventory/friendly/nope", "viewer-token", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Referenced item cannot be deleted: 409.
	w = doRequest(s, http.MethodDelete, "/api/inventory/12345", "admin-token", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	env = decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "conflict", env.Error.Type)

	// Malformed JSON body: validation envelope with field errors.
	w = doRequest(s, http.MethodPost, "/api/inventory", "clerk-token", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env = decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "validation_error", env.Error.Type)
	require.NotEmpty(t, env.Error.Errors)
}

func TestLoginEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	w := doRequest(s, http.MethodPost, "/api/auth/login", "", `{"email":"clerk@example.com","password":"correct"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(s, http.MethodPost, "/api/auth/login", "", `{"email":"clerk@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCategoriesArePublic(t *testing.T) {
	s, _ := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/api/categories", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Count)
	assert.Equal(t, 12, *env.Count)
}

func TestRenderQR_SetsCacheHeaders(t *testing.T) {
	s, _ := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/api/qr/123", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "qr-123.png")
}
