package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/foliocms/folio/internal/auth"
	"github.com/foliocms/folio/internal/middleware"
	"github.com/foliocms/folio/internal/service"
	"github.com/foliocms/folio/internal/testutil"
	"github.com/foliocms/folio/internal/view"
)

const testSecret = "handler-test-secret"

type testEnv struct {
	store   *testutil.MemoryStore
	objects *testutil.ObjectStore
	issuer  *auth.TokenIssuer
	router  http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := testutil.DiscardLogger()
	store := testutil.NewMemoryStore()
	objects := testutil.NewObjectStore()
	issuer := auth.NewTokenIssuer(testSecret)

	renderer := view.NewRenderer(func(key string) string { return "https://img.test/" + key })
	base := New(renderer, CookieFlashes{}, 1<<20, logger)

	authSvc := service.NewAuthService(store, auth.NewHasher(4), issuer, logger)
	techSvc := service.NewTechService(store, objects, service.Options{}, logger)
	expSvc := service.NewExperienceService(store, objects, service.Options{}, logger)
	projSvc := service.NewProjectService(store, objects, service.Options{}, logger)

	authH := NewAuthHandler(base, authSvc, issuer.TTL(), false)
	techH := NewTechHandler(base, techSvc)
	expH := NewExperienceHandler(base, expSvc)
	projH := NewProjectHandler(base, projSvc)
	portH := NewPortfolioHandler(base, techSvc, expSvc, projSvc)

	r := chi.NewRouter()
	r.Use(middleware.Session(issuer, logger))
	r.NotFound(base.NotFound)
	r.MethodNotAllowed(base.MethodNotAllowed)

	r.Get("/auth/login", authH.LoginForm)
	r.Post("/auth/login", authH.Login)
	r.Get("/auth/register", authH.RegisterForm)
	r.Post("/auth/register", authH.Register)
	r.Get("/auth/logout", authH.Logout)

	r.Get("/tech", techH.List)
	r.Post("/tech", techH.Create)
	r.Get("/tech/create", techH.CreateForm)
	r.Post("/tech/create", techH.Create)
	r.Get("/tech/edit/{id}", techH.EditForm)
	r.Post("/tech/edit/{id}", techH.Update)
	r.Post("/tech/update/{id}", techH.UpdateInPlace)
	r.Post("/tech/delete/{id}", techH.Delete)

	r.Get("/experiences", expH.List)
	r.Post("/experiences/create", expH.Create)
	r.Get("/experiences/edit/{id}", expH.EditForm)
	r.Post("/experiences/edit/{id}", expH.Update)
	r.Post("/experiences/delete/{id}", expH.Delete)

	r.Get("/projects", projH.List)
	r.Post("/projects/create", projH.Create)
	r.Post("/projects/edit/{id}", projH.Update)
	r.Post("/projects/delete/{id}", projH.Delete)

	r.Get("/portfolio", portH.Show)

	return &testEnv{store: store, objects: objects, issuer: issuer, router: r}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// multipartRequest builds a form post. A non-empty fileField attaches a PNG.
func multipartRequest(t *testing.T, target string, fields map[string]string, fileField string) *http.Request {
	t.Helper()
	return multipartFileRequest(t, target, fields, fileField, testutil.PNG)
}

// multipartFileRequest builds a form post attaching data under fileField.
func multipartFileRequest(t *testing.T, target string, fields map[string]string, fileField string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, "logo.png")
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func formRequest(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
