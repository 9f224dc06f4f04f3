package routes_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/catalog/internal/app"
	"github.com/templui/catalog/internal/config"
	"github.com/templui/catalog/internal/routes"
	"github.com/templui/catalog/internal/storage"
	"github.com/templui/catalog/internal/testutil"
)

const (
	baseURL  = "http://catalog.test"
	password = "correct horse battery"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0x01}, 1016)...)

type server struct {
	t       *testing.T
	app     *app.App
	handler http.Handler
}

func newServer(t *testing.T) *server {
	t.Helper()

	cfg := &config.Config{
		AppEnv:            "development",
		AppURL:            baseURL,
		JWTSecret:         "test-secret",
		JWTExpiry:         time.Hour,
		StorageDriver:     "local",
		StorageURL:        baseURL + "/storage",
		UploadMaxSize:     5 << 20,
		ProductPerPageMax: 100,
	}

	store, err := storage.NewLocalStorage(t.TempDir(), cfg.StorageURL)
	require.NoError(t, err)

	a := app.Build(cfg, testutil.DB(t), store)
	return &server{t: t, app: a, handler: routes.SetupRoutes(a)}
}

func (s *server) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *server) json(method, path, token string, body any) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, token)
}

func (s *server) multipart(method, path, token string, fields map[string]string, filename string, content []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(s.t, w.WriteField(k, v))
	}
	if filename != "" {
		fw, err := w.CreateFormFile("image", filename)
		require.NoError(s.t, err)
		_, err = fw.Write(content)
		require.NoError(s.t, err)
	}
	require.NoError(s.t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return s.do(req, token)
}

func (s *server) createUser(email string, admin bool) {
	_, err := s.app.UserService.Create("Test User", email, password, admin)
	require.NoError(s.t, err)
}

func (s *server) login(email string) string {
	rec := s.json(http.MethodPost, "/api/login", "", map[string]string{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Token     string `json:"token"`
		TokenType string `json:"token_type"`
		User      struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(s.t, "Bearer", body.TokenType)
	assert.Equal(s.t, email, body.User.Email)
	assert.NotContains(s.t, rec.Body.String(), "password")
	return body.Token
}

func (s *server) adminToken() string {
	s.createUser("admin@example.com", true)
	return s.login("admin@example.com")
}

type productBody struct {
	Data struct {
		ID              string  `json:"id"`
		Title           string  `json:"title"`
		Price           float64 `json:"price"`
		Description     string  `json:"description"`
		DescriptionHTML string  `json:"description_html"`
		ImageURL        *string `json:"image_url"`
		ImageMime       *string `json:"image_mime"`
		ImageSize       *int64  `json:"image_size"`
		CreatedBy       string  `json:"created_by"`
		UpdatedBy       string  `json:"updated_by"`
		CreatedAt       string  `json:"created_at"`
		UpdatedAt       string  `json:"updated_at"`
	} `json:"data"`
}

func decodeProduct(t *testing.T, rec *httptest.ResponseRecorder) productBody {
	t.Helper()
	var body productBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

type errorBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestLoginUserLogout(t *testing.T) {
	s := newServer(t)
	token := s.adminToken()

	rec := s.json(http.MethodGet, "/api/user", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"admin@example.com"`)

	rec = s.json(http.MethodGet, "/api/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = s.json(http.MethodGet, "/api/user", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginWithForm(t *testing.T) {
	s := newServer(t)
	s.createUser("admin@example.com", true)

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader("email=admin%40example.com&password=correct+horse+battery"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := s.do(req, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginFailures(t *testing.T) {
	s := newServer(t)
	s.createUser("admin@example.com", true)
	s.createUser("staff@example.com", false)

	rec := s.json(http.MethodPost, "/api/login", "", map[string]string{"email": "admin@example.com", "password": "wrong password!"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "The provided credentials are incorrect.", decodeError(t, rec).Message)

	rec = s.json(http.MethodPost, "/api/login", "", map[string]string{"email": "staff@example.com", "password": password})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.json(http.MethodPost, "/api/login", "", map[string]string{})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec).Errors, "email")
}

func TestLoginIsRateLimited(t *testing.T) {
	s := newServer(t)

	for i := 0; i < 5; i++ {
		rec := s.json(http.MethodPost, "/api/login", "", map[string]string{"email": "x@example.com", "password": "nope"})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	}

	rec := s.json(http.MethodPost, "/api/login", "", map[string]string{"email": "x@example.com", "password": "nope"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestProductRoutesRequireAdmin(t *testing.T) {
	s := newServer(t)

	rec := s.json(http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	s.createUser("staff@example.com", false)
	staff, err := s.app.AuthService.Login("staff@example.com", password)
	require.Error(t, err)
	require.Nil(t, staff)

	u, err := s.app.UserService.SetAdmin("staff@example.com", false)
	require.NoError(t, err)
	token, _, err := s.app.AuthService.IssueToken(u)
	require.NoError(t, err)

	rec = s.json(http.MethodGet, "/api/products", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.json(http.MethodPost, "/api/products", token, map[string]string{"title": "Mug"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProductLifecycle(t *testing.T) {
	s := newServer(t)
	token := s.adminToken()

	// Create with image
	rec := s.multipart(http.MethodPost, "/api/products", token, map[string]string{
		"title":       "Cat mug",
		"description": "A **cat** on a mug",
		"price":       "12.50",
	}, "cat.png", pngBytes)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decodeProduct(t, rec)
	id := created.Data.ID
	require.NotEmpty(t, id)
	require.NotNil(t, created.Data.ImageURL)
	assert.True(t, strings.HasSuffix(*created.Data.ImageURL, "/cat.png"))
	assert.Equal(t, "image/png", *created.Data.ImageMime)
	assert.Equal(t, int64(1024), *created.Data.ImageSize)
	assert.InDelta(t, 12.5, created.Data.Price, 0.001)
	assert.Contains(t, created.Data.DescriptionHTML, "<strong>cat</strong>")
	assert.Equal(t, created.Data.CreatedBy, created.Data.UpdatedBy)

	// Image is served
	oldImagePath := strings.TrimPrefix(*created.Data.ImageURL, baseURL)
	rec = s.do(httptest.NewRequest(http.MethodGet, oldImagePath, nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pngBytes, rec.Body.Bytes())

	// List
	rec = s.json(http.MethodGet, "/api/products?search=mug", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data []map[string]any `json:"data"`
		Meta map[string]int   `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Data, 1)
	assert.Equal(t, 1, list.Meta["total"])
	assert.Equal(t, 10, list.Meta["per_page"])
	assert.Equal(t, 1, list.Meta["from"])

	// Partial JSON update keeps the image
	rec = s.json(http.MethodPatch, "/api/products/"+id, token, map[string]any{"price": 3})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	patched := decodeProduct(t, rec)
	assert.Equal(t, "Cat mug", patched.Data.Title)
	assert.InDelta(t, 3.0, patched.Data.Price, 0.001)
	assert.Equal(t, *created.Data.ImageURL, *patched.Data.ImageURL)

	// Replacing the image removes the old one
	rec = s.multipart(http.MethodPut, "/api/products/"+id, token, map[string]string{"title": "Dog mug"}, "dog.png", pngBytes[:512])
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	replaced := decodeProduct(t, rec)
	assert.Equal(t, "Dog mug", replaced.Data.Title)
	assert.True(t, strings.HasSuffix(*replaced.Data.ImageURL, "/dog.png"))
	assert.Equal(t, int64(512), *replaced.Data.ImageSize)

	rec = s.do(httptest.NewRequest(http.MethodGet, oldImagePath, nil), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Show
	rec = s.json(http.MethodGet, "/api/products/"+id, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Dog mug", decodeProduct(t, rec).Data.Title)

	// Delete
	rec = s.json(http.MethodDelete, "/api/products/"+id, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = s.json(http.MethodGet, "/api/products/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found.", decodeError(t, rec).Message)

	rec = s.json(http.MethodDelete, "/api/products/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductValidation(t *testing.T) {
	s := newServer(t)
	token := s.adminToken()

	rec := s.json(http.MethodPost, "/api/products", token, map[string]any{"price": -1})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs := decodeError(t, rec).Errors
	assert.Contains(t, errs, "title")
	assert.Contains(t, errs, "price")

	rec = s.multipart(http.MethodPost, "/api/products", token, map[string]string{"title": "Fake"}, "cat.png", []byte("definitely not an image"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec).Errors, "image")

	rec = s.json(http.MethodGet, "/api/products?sort_field=password&sort_direction=up&per_page=1000", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs = decodeError(t, rec).Errors
	assert.Contains(t, errs, "sort_field")
	assert.Contains(t, errs, "sort_direction")
	assert.Contains(t, errs, "per_page")

	rec = s.json(http.MethodGet, "/api/products", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[],"meta":{"current_page":1,"last_page":1,"per_page":10,"total":0,"from":0,"to":0}}`, rec.Body.String())
}

func TestSPAFallback(t *testing.T) {
	s := newServer(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/", nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<div id="app">`)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/products/123/edit", nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<div id="app">`)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/assets/app.css", nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "font-family")

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/nope", nil), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Not found."}`, rec.Body.String())

	rec = s.do(httptest.NewRequest(http.MethodGet, "/storage/", nil), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImageURLWithReservedCharactersResolves(t *testing.T) {
	s := newServer(t)
	token := s.adminToken()

	rec := s.multipart(http.MethodPost, "/api/products", token, map[string]string{"title": "Hash"}, "a#1 50%.png", pngBytes)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	imageURL := *decodeProduct(t, rec).Data.ImageURL
	assert.True(t, strings.HasSuffix(imageURL, "/a%231%2050%25.png"), imageURL)

	rec = s.do(httptest.NewRequest(http.MethodGet, strings.TrimPrefix(imageURL, baseURL), nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pngBytes, rec.Body.Bytes())
}
