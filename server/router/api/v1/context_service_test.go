package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grambharat/gramsathi/store"
)

func TestContextHandlers(t *testing.T) {
	svc, _ := newTestService(t, &scriptedLLM{})

	rec := invoke(t, svc.GetContext, http.MethodGet, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{}`, rec.Body.String())

	rec = invoke(t, svc.UpdateContext, http.MethodPost,
		`{"season": "Monsoon", "location": "Muzaffarpur, Bihar", "cropCycle": "Kharif sowing"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = invoke(t, svc.GetContext, http.MethodGet, "", nil)
	body := decodeJSON(t, rec)
	require.Equal(t, "Monsoon", body["season"])
	require.Equal(t, "Muzaffarpur, Bihar", body["location"])
	require.Equal(t, "Kharif sowing", body["cropCycle"])

	// Updates overwrite the whole record.
	rec = invoke(t, svc.UpdateContext, http.MethodPost, `{"season": "Winter"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = invoke(t, svc.GetContext, http.MethodGet, "", nil)
	body = decodeJSON(t, rec)
	require.Equal(t, "Winter", body["season"])
	require.NotContains(t, body, "location")
}

func TestListMemoriesHandler(t *testing.T) {
	svc, _ := newTestService(t, &scriptedLLM{})

	rec := invoke(t, svc.ListMemories, http.MethodGet, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Memories []*store.MemoryRecord `json:"memories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Empty(t, body.Memories)

	_, err := svc.Store.AddMemory(context.Background(), "grows wheat", store.MemoryCategoryAgricultural)
	require.NoError(t, err)

	rec = invoke(t, svc.ListMemories, http.MethodGet, "", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Memories, 1)
	require.Equal(t, "grows wheat", body.Memories[0].Content)
}

func TestListPersonasHandler(t *testing.T) {
	svc, _ := newTestService(t, &scriptedLLM{})

	rec := invoke(t, svc.ListPersonas, http.MethodGet, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var personas []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &personas))
	require.Len(t, personas, 4)
	for _, p := range personas {
		require.NotEmpty(t, p["id"])
		require.NotEmpty(t, p["name"])
		require.NotEmpty(t, p["description"])
	}
}

func TestLogEarthquakeAlert(t *testing.T) {
	svc, _ := newTestService(t, &scriptedLLM{})

	rec := invoke(t, svc.LogEarthquakeAlert, http.MethodPost, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	require.Equal(t, "logged", body["status"])
	require.NotEmpty(t, body["time"])
}
