package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliocms/folio/internal/service"
	"github.com/foliocms/folio/internal/testutil"
	"github.com/foliocms/folio/internal/view"
)

func createTech(t *testing.T, env *testEnv, name string) {
	t.Helper()
	rec := env.do(multipartRequest(t, "/tech/create", map[string]string{"name_tech": name}, "img_tech"))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	require.Equal(t, techPath, rec.Header().Get("Location"))
}

func TestTechHandler_CreateAndList(t *testing.T) {
	env := newTestEnv(t)

	createTech(t, env, "Go")
	require.Len(t, env.objects.Puts, 1)
	assert.Equal(t, "img_tech-1.png", env.objects.Puts[0])

	rec := env.do(httptest.NewRequest(http.MethodGet, "/tech", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, `<span class="name">Go</span>`)
	assert.Contains(t, body, `src="https://img.test/img_tech-1.png"`)
}

func TestTechHandler_CreateAlias(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(multipartRequest(t, "/tech", map[string]string{"name_tech": "Go"}, "img_tech"))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Len(t, env.objects.Puts, 1)
}

func TestTechHandler_CreateWithoutImage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(multipartRequest(t, "/tech/create", map[string]string{"name_tech": "Go"}, ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "An image is required.")
	assert.Contains(t, rec.Body.String(), `value="Go"`)
	assert.Empty(t, env.objects.Puts)
}

func TestTechHandler_EditReplacesImage(t *testing.T) {
	env := newTestEnv(t)
	createTech(t, env, "Go")
	oldKey := env.objects.Puts[0]

	rec := env.do(multipartRequest(t, "/tech/edit/1", map[string]string{"name_tech": "Golang"}, ""))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, env.objects.Deletes)

	rec = env.do(multipartRequest(t, "/tech/edit/1", map[string]string{"name_tech": "Golang"}, "img_tech"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 1, env.objects.DeleteCount(oldKey))

	tech, err := env.store.GetTechByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Golang", tech.Name)
	assert.Equal(t, env.objects.Puts[1], *tech.ImageKey)
}

func TestTechHandler_UpdateInPlace(t *testing.T) {
	env := newTestEnv(t)
	createTech(t, env, "Go")

	rec := env.do(multipartRequest(t, "/tech/update/1", map[string]string{"name_tech": "Rust"}, ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"name_tech":"Rust","img_tech":null}`, rec.Body.String())

	rec = env.do(multipartRequest(t, "/tech/update/1", map[string]string{"name_tech": "Rust"}, "edit_img_tech"))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp techUpdateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.ImageKey)
	assert.Equal(t, "edit_img_tech-2.png", *resp.ImageKey)

	rec = env.do(multipartRequest(t, "/tech/update/1", map[string]string{"name_tech": " "}, ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"name is required."}`, rec.Body.String())

	rec = env.do(multipartRequest(t, "/tech/update/99", map[string]string{"name_tech": "Zig"}, ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"tech not found"}`, rec.Body.String())
}

func TestTechHandler_DeleteKeepsObject(t *testing.T) {
	env := newTestEnv(t)
	createTech(t, env, "Go")

	rec := env.do(httptest.NewRequest(http.MethodPost, "/tech/delete/1", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, env.objects.Deletes)
	assert.True(t, env.objects.Has(env.objects.Puts[0]))

	rec = env.do(httptest.NewRequest(http.MethodPost, "/tech/delete/1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTechHandler_UnknownOrBadID(t *testing.T) {
	env := newTestEnv(t)

	for _, target := range []string{"/tech/edit/42", "/tech/edit/abc", "/tech/edit/-1"} {
		rec := env.do(httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
	}
}

func TestTechHandler_StoreFailure(t *testing.T) {
	env := newTestEnv(t)
	env.store.Err = testutil.ErrInjected

	rec := env.do(multipartRequest(t, "/tech/create", map[string]string{"name_tech": "Go"}, "img_tech"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), testutil.ErrInjected.Error())
	require.Len(t, env.objects.Puts, 1)
	assert.Equal(t, 1, env.objects.DeleteCount(env.objects.Puts[0]))
}

func TestTechHandler_UploadLimit(t *testing.T) {
	const limit = 64

	tests := []struct {
		name     string
		size     int
		wantCode int
	}{
		{"one byte under", limit - 1, http.StatusSeeOther},
		{"at limit", limit, http.StatusSeeOther},
		{"one byte over", limit + 1, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := testutil.DiscardLogger()
			objects := testutil.NewObjectStore()
			svc := service.NewTechService(testutil.NewMemoryStore(), objects, service.Options{}, logger)
			h := NewTechHandler(New(view.NewRenderer(func(k string) string { return k }), nil, limit, logger), svc)

			img := make([]byte, tt.size)
			copy(img, testutil.PNG)
			// Other fields count against the form headroom, not the image limit.
			fields := map[string]string{"name_tech": strings.Repeat("x", 200)}
			rec := httptest.NewRecorder()
			h.Create(rec, multipartFileRequest(t, "/tech/create", fields, "img_tech", img))

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusBadRequest {
				assert.Contains(t, rec.Body.String(), "The image is too large.")
				assert.Empty(t, objects.Puts)
			} else {
				assert.Len(t, objects.Puts, 1)
			}
		})
	}
}

func TestTechHandler_BodyOverHeadroom(t *testing.T) {
	logger := testutil.DiscardLogger()
	objects := testutil.NewObjectStore()
	svc := service.NewTechService(testutil.NewMemoryStore(), objects, service.Options{}, logger)
	h := NewTechHandler(New(view.NewRenderer(func(k string) string { return k }), nil, 64, logger), svc)

	fields := map[string]string{"name_tech": strings.Repeat("x", multipartMemory+128)}
	rec := httptest.NewRecorder()
	h.Create(rec, multipartRequest(t, "/tech/create", fields, "img_tech"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, objects.Puts)
}

func TestExperienceHandler_ConstraintViolation(t *testing.T) {
	env := newTestEnv(t)
	env.store.Err = &pgconn.PgError{Code: "23514", ConstraintName: "experiences_dates_check"}

	rec := env.do(multipartRequest(t, "/experiences/create", map[string]string{
		"dept_exp":  "Engineering",
		"comp_exp":  "Acme",
		"start_exp": "2022-03-01",
	}, "img_exp"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "The submitted values were rejected.")
	assert.NotContains(t, rec.Body.String(), "experiences_dates_check")
	require.Len(t, env.objects.Puts, 1)
	assert.Equal(t, 1, env.objects.DeleteCount(env.objects.Puts[0]))
}

func TestExperienceHandler_Create(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(multipartRequest(t, "/experiences/create", map[string]string{
		"dept_exp":  "Engineering",
		"comp_exp":  "Acme",
		"job_exp":   "Backend, , SRE ",
		"tech_exp":  "Go,PostgreSQL",
		"start_exp": "2022-03-01",
		"end_exp":   "",
	}, "img_exp"))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, experiencesPath, rec.Header().Get("Location"))

	items, err := env.store.ListExperiences(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, []string{"Backend", "SRE"}, items[0].JobTitles)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, items[0].TechTags)
	assert.True(t, items[0].IsCurrent())

	rec = env.do(httptest.NewRequest(http.MethodGet, "/experiences", nil))
	assert.Contains(t, rec.Body.String(), "Mar 2022 - Present")
}

func TestExperienceHandler_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		fields  map[string]string
		message string
	}{
		{
			name:    "missing start",
			fields:  map[string]string{"dept_exp": "Eng", "comp_exp": "Acme"},
			message: "start_date is required.",
		},
		{
			name:    "bad start",
			fields:  map[string]string{"dept_exp": "Eng", "comp_exp": "Acme", "start_exp": "03/01/2022"},
			message: "start_date is invalid.",
		},
		{
			name:    "end before start",
			fields:  map[string]string{"dept_exp": "Eng", "comp_exp": "Acme", "start_exp": "2022-03-01", "end_exp": "2021-01-01"},
			message: "end_date is invalid.",
		},
		{
			name:    "missing company",
			fields:  map[string]string{"dept_exp": "Eng", "start_exp": "2022-03-01"},
			message: "company is required.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(multipartRequest(t, "/experiences/create", tt.fields, "img_exp"))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.message)
		})
	}
	assert.Empty(t, env.objects.Puts)
}

func TestExperienceHandler_UpdateUsesStoredKey(t *testing.T) {
	env := newTestEnv(t)
	fields := map[string]string{"dept_exp": "Eng", "comp_exp": "Acme", "start_exp": "2022-03-01"}
	rec := env.do(multipartRequest(t, "/experiences/create", fields, "img_exp"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	stored := env.objects.Puts[0]

	fields["old_img"] = "img_exp-forged.png"
	rec = env.do(multipartRequest(t, "/experiences/edit/1", fields, "img_exp"))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	assert.Equal(t, 1, env.objects.DeleteCount(stored))
	assert.Equal(t, 0, env.objects.DeleteCount("img_exp-forged.png"))
}

func TestExperienceHandler_InvalidEditKeepsStoredImage(t *testing.T) {
	env := newTestEnv(t)
	fields := map[string]string{"dept_exp": "Eng", "comp_exp": "Acme", "start_exp": "2022-03-01"}
	require.Equal(t, http.StatusSeeOther, env.do(multipartRequest(t, "/experiences/create", fields, "img_exp")).Code)
	stored := env.objects.Puts[0]

	rec := env.do(multipartRequest(t, "/experiences/edit/1", map[string]string{
		"dept_exp":  "Eng",
		"comp_exp":  "",
		"start_exp": "2022-03-01",
		"old_img":   stored,
	}, ""))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="old_img" value="`+stored+`"`)
	assert.Contains(t, rec.Body.String(), `src="https://img.test/`+stored+`"`)
	assert.Equal(t, 0, env.objects.DeleteCount(stored))
}

func TestProjectHandler_InvalidEditKeepsStoredImage(t *testing.T) {
	env := newTestEnv(t)
	fields := map[string]string{"name_project": "folio", "desc_project": "CMS", "github_project": "https://github.com/foliocms/folio"}
	require.Equal(t, http.StatusSeeOther, env.do(multipartRequest(t, "/projects/create", fields, "img_project")).Code)
	stored := env.objects.Puts[0]

	fields["name_project"] = ""
	rec := env.do(multipartRequest(t, "/projects/edit/1", fields, ""))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="old_imgProject" value="`+stored+`"`)
}

func TestProjectHandler_CreateAndValidate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(multipartRequest(t, "/projects/create", map[string]string{
		"name_project":   "folio",
		"desc_project":   "Portfolio CMS",
		"tech_project":   "Go, templ",
		"github_project": "javascript:alert(1)",
	}, "img_project"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.objects.Puts)

	rec = env.do(multipartRequest(t, "/projects/create", map[string]string{
		"name_project":   "folio",
		"desc_project":   "Portfolio CMS",
		"tech_project":   "Go, templ",
		"github_project": "https://github.com/foliocms/folio",
	}, "img_project"))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, projectsPath, rec.Header().Get("Location"))

	items, err := env.store.ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, []string{"Go", "templ"}, items[0].TechTags)
}

func TestPortfolioHandler_Show(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.store.CreateTech(ctx, testutil.NewTestTechInput("Go"), "tech.png")
	require.NoError(t, err)
	_, err = env.store.CreateExperience(ctx, testutil.NewTestExperienceInput("Acme"), "exp.png")
	require.NoError(t, err)
	_, err = env.store.CreateProject(ctx, testutil.NewTestProjectInput("folio"), "proj.png")
	require.NoError(t, err)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/portfolio", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Go")
	assert.Contains(t, body, "Acme")
	assert.Contains(t, body, "folio")
	assert.NotContains(t, body, "/tech/delete/")
}

func TestHandler_NotFoundPage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not found")
}
