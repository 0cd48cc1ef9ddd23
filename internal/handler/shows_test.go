package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayaseru/shiori/internal/apperr"
	"github.com/ayaseru/shiori/internal/bus"
	"github.com/ayaseru/shiori/internal/command"
	"github.com/ayaseru/shiori/internal/query"
	"github.com/ayaseru/shiori/internal/repository"
)

// stubShowHandler wires a ShowHandler to buses whose handlers are plain
// closures, so each test controls exactly what the bus returns.
func stubShowHandler(t *testing.T, handlers map[string]bus.HandlerFunc) *ShowHandler {
	t.Helper()
	cb := bus.NewCommandBus(nil)
	qb := bus.NewQueryBus(nil, time.Minute)
	for name, h := range handlers {
		if strings.HasPrefix(name, "show.") && !strings.Contains(name, "get") && !strings.Contains(name, "list") {
			require.NoError(t, cb.Register(name, h))
		} else {
			require.NoError(t, qb.Register(name, h))
		}
	}
	return NewShowHandler(cb, qb)
}

func jsonRequest(method, target, body string) (*http.Request, *httptest.ResponseRecorder) {
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return req, httptest.NewRecorder()
}

func TestShowCreateReturns201(t *testing.T) {
	var got command.AddShow
	h := stubShowHandler(t, map[string]bus.HandlerFunc{
		"show.add": func(ctx context.Context, msg any) (any, error) {
			got = msg.(command.AddShow)
			return echo.Map{"id": 1}, nil
		},
	})

	req, rec := jsonRequest(http.MethodPost, "/v1/shows",
		`{"title":"  Frieren ","total_episodes":28,"premiere_at":"2026-04-05","status":"watching"}`)
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Frieren", got.Title)
	assert.Equal(t, uint32(28), got.TotalEpisodes)
	assert.Equal(t, "WATCHING", got.Status)
	assert.Equal(t, time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC), got.PremiereAt)
}

func TestShowCreateValidationMapsTo422(t *testing.T) {
	h := stubShowHandler(t, map[string]bus.HandlerFunc{
		"show.add": func(ctx context.Context, msg any) (any, error) {
			return nil, &apperr.ValidationError{Field: "title", Reason: "must not be empty"}
		},
	})

	req, rec := jsonRequest(http.MethodPost, "/v1/shows", `{"title":""}`)
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation failed")
	assert.Contains(t, rec.Body.String(), "title")
}

func TestShowCreateBadPremiereRejected(t *testing.T) {
	h := stubShowHandler(t, map[string]bus.HandlerFunc{})

	req, rec := jsonRequest(http.MethodPost, "/v1/shows", `{"title":"x","premiere_at":"05/04/2026"}`)
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "premiere_at")
}

func TestShowGetNotFoundMapsTo404(t *testing.T) {
	h := stubShowHandler(t, map[string]bus.HandlerFunc{
		"show.get": func(ctx context.Context, msg any) (any, error) {
			return nil, repository.ErrShowNotFound
		},
	})

	req, rec := jsonRequest(http.MethodGet, "/v1/shows/99", "")
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("99")

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShowGetRejectsBadID(t *testing.T) {
	h := stubShowHandler(t, map[string]bus.HandlerFunc{})

	req, rec := jsonRequest(http.MethodGet, "/v1/shows/abc", "")
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShowUpdateNoChangeIs200(t *testing.T) {
	h := stubShowHandler(t, map[string]bus.HandlerFunc{
		"show.update": func(ctx context.Context, msg any) (any, error) {
			return nil, repository.ErrNoChange
		},
	})

	req, rec := jsonRequest(http.MethodPatch, "/v1/shows/3", `{"title":"Same Title"}`)
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("3")

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "no change")
}

func TestShowSetStatusUppercasesInput(t *testing.T) {
	var got command.SetShowStatus
	h := stubShowHandler(t, map[string]bus.HandlerFunc{
		"show.set_status": func(ctx context.Context, msg any) (any, error) {
			got = msg.(command.SetShowStatus)
			return echo.Map{"id": 3}, nil
		},
	})

	req, rec := jsonRequest(http.MethodPost, "/v1/shows/3/status", `{"status":" completed "}`)
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("3")

	require.NoError(t, h.SetStatus(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "COMPLETED", got.Status)
	assert.Equal(t, uint64(3), got.ShowID)
}

func TestShowDeleteReturns204(t *testing.T) {
	h := stubShowHandler(t, map[string]bus.HandlerFunc{
		"show.delete": func(ctx context.Context, msg any) (any, error) {
			return nil, nil
		},
	})

	req, rec := jsonRequest(http.MethodDelete, "/v1/shows/3", "")
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("3")

	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestWriteErrorDuplicateMapsTo409(t *testing.T) {
	req, rec := jsonRequest(http.MethodPost, "/", "")
	c := echo.New().NewContext(req, rec)

	require.NoError(t, writeError(c, repository.ErrDuplicate))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")
}

func TestWriteErrorNetworkMapsTo502(t *testing.T) {
	req, rec := jsonRequest(http.MethodGet, "/", "")
	c := echo.New().NewContext(req, rec)

	err := &apperr.NetworkError{URL: "https://myanimelist.net/animelist/x", Err: context.DeadlineExceeded}
	require.NoError(t, writeError(c, err))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "upstream request failed")
}

func TestWriteErrorUnknownMapsTo500(t *testing.T) {
	req, rec := jsonRequest(http.MethodGet, "/", "")
	c := echo.New().NewContext(req, rec)

	require.NoError(t, writeError(c, context.Canceled))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestQueryCommandRouting(t *testing.T) {
	// "show.get"/"show.list" register on the query bus, mutations on the
	// command bus; a mixed map must not cross-register.
	h := stubShowHandler(t, map[string]bus.HandlerFunc{
		"show.add": func(ctx context.Context, msg any) (any, error) { return echo.Map{}, nil },
		"show.get": func(ctx context.Context, msg any) (any, error) { return echo.Map{}, nil },
	})

	_, err := h.Queries.Dispatch(context.Background(), query.GetShow{ShowID: 1})
	assert.NoError(t, err)
	_, err = h.Commands.Dispatch(context.Background(), command.AddShow{Title: "x"})
	assert.NoError(t, err)
}
