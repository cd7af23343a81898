package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afterclass/afterclass-backend/internal/domain"
	"github.com/afterclass/afterclass-backend/internal/service"
	"github.com/afterclass/afterclass-backend/internal/testutil"
)

func setupWorkshopHandler() (*WorkshopHandler, *testutil.MockWorkshopRepository, *testutil.MockWorkshopIndex, *testutil.MockSyncRecordRepository) {
	repo := testutil.NewMockWorkshopRepository()
	index := testutil.NewMockWorkshopIndex()
	syncRepo := testutil.NewMockSyncRecordRepository()
	combiner := service.NewWorkshopCombiner(service.NewWorkshopService(repo), index, syncRepo, nil)
	return NewWorkshopHandler(combiner), repo, index, syncRepo
}

func workshopBody(providerID uuid.UUID) string {
	body := map[string]any{
		"title":         "Pottery for beginners",
		"keywords":      "clay, craft",
		"categoryId":    1,
		"price":         "250",
		"minAge":        6,
		"maxAge":        12,
		"providerId":    providerID.String(),
		"providerTitle": "Makers Studio",
		"address": map[string]any{
			"city":   "Kyiv",
			"street": "Peremohy Ave",
		},
	}
	data, _ := json.Marshal(body)
	return string(data)
}

func TestCreateWorkshop_Success(t *testing.T) {
	h, repo, index, _ := setupWorkshopHandler()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/workshops", strings.NewReader(workshopBody(uuid.New())))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.CreateWorkshop(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var created domain.Workshop
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.True(t, created.Price.Equal(decimal.NewFromInt(250)))

	_, ok := repo.Workshops[created.ID]
	assert.True(t, ok)
	_, ok = index.Docs[created.ID]
	assert.True(t, ok)
}

func TestCreateWorkshop_IndexDownStillCreated(t *testing.T) {
	h, repo, index, syncRepo := setupWorkshopHandler()
	index.IndexErr = testutil.ErrIndexDown

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/workshops", strings.NewReader(workshopBody(uuid.New())))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.CreateWorkshop(c))

	// Caller still gets a success; the failure went to the ledger
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, repo.Workshops, 1)
	assert.Len(t, syncRepo.Records, 1)
}

func TestCreateWorkshop_ValidationError(t *testing.T) {
	h, _, _, _ := setupWorkshopHandler()

	body := strings.Replace(workshopBody(uuid.New()), "Pottery for beginners", "", 1)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/workshops", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.CreateWorkshop(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var problem ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, ErrorTypeValidation, problem.Type)
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "title", problem.Errors[0].Field)
}

func TestGetWorkshop_NotFound(t *testing.T) {
	h, _, _, _ := setupWorkshopHandler()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/workshops/:id")
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	require.NoError(t, h.GetWorkshop(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetWorkshop_InvalidID(t *testing.T) {
	h, _, _, _ := setupWorkshopHandler()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/workshops/:id")
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	require.NoError(t, h.GetWorkshop(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetWorkshops_ResponseShapeIdenticalAcrossPaths(t *testing.T) {
	h, _, index, _ := setupWorkshopHandler()

	// Seed through the handler so both stores hold the record
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/workshops", strings.NewReader(workshopBody(uuid.New())))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.CreateWorkshop(e.NewContext(req, rec)))

	list := func() string {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/workshops", nil)
		rec := httptest.NewRecorder()
		require.NoError(t, h.GetWorkshops(e.NewContext(req, rec)))
		require.Equal(t, http.StatusOK, rec.Code)
		return rec.Body.String()
	}

	fromIndex := list()

	index.SearchErr = testutil.ErrIndexDown
	fromStore := list()

	// Callers cannot tell which path served them
	assert.JSONEq(t, fromIndex, fromStore)
}

func TestGetWorkshops_InvalidFilterParam(t *testing.T) {
	h, _, _, _ := setupWorkshopHandler()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/workshops?minAge=abc", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.GetWorkshops(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteWorkshop_NotFound(t *testing.T) {
	h, _, _, _ := setupWorkshopHandler()

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/workshops/:id")
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	require.NoError(t, h.DeleteWorkshop(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
