package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"todo-web/app/controllers"
	"todo-web/app/services"
	"todo-web/app/views"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testApp struct {
	handler http.Handler
	store   *services.GormTodoService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	store := services.NewGormTodoService(db)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	renderer, err := views.New()
	require.NoError(t, err)

	controller := controllers.NewTodoController(store, renderer, zap.NewNop())
	return &testApp{handler: NewHandler(controller, zap.NewNop()), store: store}
}

func (a *testApp) do(t *testing.T, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) count(t *testing.T) int {
	t.Helper()
	todos, err := a.store.List(context.Background())
	require.NoError(t, err)
	return len(todos)
}

func TestCreate_ListsNewestFirst(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/", url.Values{"title": {"Older"}, "desc": {"first"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, 1, app.count(t))

	time.Sleep(2 * time.Millisecond)
	rec = app.do(t, http.MethodPost, "/", url.Values{"title": {"Newer"}, "desc": {"second"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 2, app.count(t))

	rec = app.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	newer := strings.Index(body, "Newer")
	older := strings.Index(body, "Older")
	require.NotEqual(t, -1, newer)
	require.NotEqual(t, -1, older)
	assert.Less(t, newer, older, "most recent item must be listed first")
}

func TestCreate_MissingFieldsInsertsNothing(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{"no fields", url.Values{}},
		{"title only", url.Values{"title": {"Lonely"}}},
		{"desc only", url.Values{"desc": {"No title"}}},
		{"empty title", url.Values{"title": {""}, "desc": {"x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)

			rec := app.do(t, http.MethodPost, "/", tt.form)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), "No Todos found")
			assert.Equal(t, 0, app.count(t))
		})
	}
}

func TestUpdate_PersistsFieldsKeepsIdentity(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	created, err := app.store.Create(ctx, "Draft", "first pass")
	require.NoError(t, err)
	target := "/update/" + itoa(created.SNo)

	rec := app.do(t, http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Draft"`)

	rec = app.do(t, http.MethodPost, target, url.Values{"title": {"Final"}, "desc": {"second pass"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	found, err := app.store.Get(ctx, created.SNo)
	require.NoError(t, err)
	assert.Equal(t, created.SNo, found.SNo)
	assert.Equal(t, "Final", found.Title)
	assert.Equal(t, "second pass", found.Desc)
	assert.True(t, found.DateCreated.Equal(created.DateCreated))
	assert.Equal(t, 1, app.count(t))
}

func TestDelete_RemovesFromList(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	keep, err := app.store.Create(ctx, "Keeper", "stays")
	require.NoError(t, err)
	gone, err := app.store.Create(ctx, "Goner", "leaves")
	require.NoError(t, err)

	rec := app.do(t, http.MethodGet, "/delete/"+itoa(gone.SNo), nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = app.do(t, http.MethodGet, "/", nil)
	body := rec.Body.String()
	assert.NotContains(t, body, "Goner")
	assert.Contains(t, body, "Keeper")

	_, err = app.store.Get(ctx, keep.SNo)
	assert.NoError(t, err)
}

func TestUnknownIdentifier_NotFound(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		method string
		target string
		form   url.Values
	}{
		{http.MethodGet, "/update/42", nil},
		{http.MethodPost, "/update/42", url.Values{"title": {"a"}, "desc": {"b"}}},
		{http.MethodGet, "/delete/42", nil},
		{http.MethodGet, "/update/abc", nil},
		{http.MethodGet, "/delete/-1", nil},
		{http.MethodGet, "/delete/99999999999999999999999", nil},
		{http.MethodGet, "/nowhere", nil},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := app.do(t, tt.method, tt.target, tt.form)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Contains(t, rec.Body.String(), "Not Found")
		})
	}
	assert.Equal(t, 0, app.count(t))
}

func TestAboutAndHealth(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/about", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "About MyTodo")

	rec = app.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRequestIDHeader(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/nowhere", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func itoa(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}
