package tracker

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/devadeboye/mini-jira/tests/e2e"

	"github.com/devadeboye/mini-jira/internal/testutil"
)

// doJSON fires a request with the bearer token set and returns the
// decoded generic body alongside the raw response
func doJSON(t *testing.T, method string, url string, token string, body string) (*http.Response, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	parsed := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoErrorf(t, json.Unmarshal(raw, &parsed), "body: %s", raw)
	}
	return resp, parsed
}

func registerUser(t *testing.T, srvURL string, username string) string {
	t.Helper()

	body := `{"username": "` + username + `", "email": "` + username + `@example.com", "password": "StrongEnoughPassword", "fullName": "Test User"}`
	resp, parsed := doJSON(t, http.MethodPost, srvURL+"/auth/register", "", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	token, _ := parsed["accessToken"].(string)
	require.NotEmpty(t, token)
	return token
}

func Test_ProjectLifecycle(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	e2e.ServeWithTx(pg.Pool, t, func(_ pgx.Tx, srvURL string, _ e2e.Services) {
		token := registerUser(t, srvURL, "owner")

		t.Run("full sprint flow", func(t *testing.T) {
			// Create project
			resp, project := doJSON(t, http.MethodPost, srvURL+"/projects", token,
				`{"name": "Apollo", "description": "Launch tracking"}`)
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			projectID, _ := project["id"].(string)
			require.NotEmpty(t, projectID)

			// First project flips the owner flag
			resp, me := doJSON(t, http.MethodGet, srvURL+"/auth/me", token, "")
			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.Equal(t, true, me["hasCreatedProject"])

			// Create sprint, starts planned
			resp, sprint := doJSON(t, http.MethodPost, srvURL+"/projects/"+projectID+"/sprints", token,
				`{"name": "Sprint 1", "goal": "Ship the MVP"}`)
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			sprintID, _ := sprint["id"].(string)
			require.NotEmpty(t, sprintID)
			require.Equal(t, "planned", sprint["status"])

			// Activate it
			resp, sprint = doJSON(t, http.MethodPost, srvURL+"/sprints/"+sprintID+"/status", token,
				`{"status": "active"}`)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.Equal(t, "active", sprint["status"])

			// Skipping states is rejected
			resp, _ = doJSON(t, http.MethodPost, srvURL+"/sprints/"+sprintID+"/status", token,
				`{"status": "planned"}`)
			require.Equal(t, http.StatusConflict, resp.StatusCode)

			// Two items, one finished
			resp, item := doJSON(t, http.MethodPost, srvURL+"/sprints/"+sprintID+"/items", token,
				`{"title": "Build login page", "storyPoints": "3"}`)
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			itemID, _ := item["id"].(string)

			resp, _ = doJSON(t, http.MethodPost, srvURL+"/sprints/"+sprintID+"/items", token,
				`{"title": "Wire database", "storyPoints": "5"}`)
			require.Equal(t, http.StatusCreated, resp.StatusCode)

			resp, item = doJSON(t, http.MethodPatch, srvURL+"/items/"+itemID+"/status", token,
				`{"status": "done"}`)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.Equal(t, "done", item["status"])

			// Stats aggregate points and completion
			resp, stats := doJSON(t, http.MethodGet, srvURL+"/sprints/"+sprintID+"/stats", token, "")
			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.EqualValues(t, 2, stats["totalItems"])
			require.Equal(t, "8", stats["totalPoints"])
			require.Equal(t, "3", stats["completedPoints"])
			require.Equal(t, "37.5", stats["completionPct"])
		})

		t.Run("regular user cannot delete projects", func(t *testing.T) {
			resp, project := doJSON(t, http.MethodPost, srvURL+"/projects", token,
				`{"name": "Doomed"}`)
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			projectID, _ := project["id"].(string)

			resp, body := doJSON(t, http.MethodDelete, srvURL+"/projects/"+projectID, token, "")
			require.Equal(t, http.StatusForbidden, resp.StatusCode)
			require.Equal(t, "Insufficient permissions", body["message"])
		})

		t.Run("unknown ids are not found", func(t *testing.T) {
			resp, _ := doJSON(t, http.MethodGet, srvURL+"/projects/c6f1cbc8-0000-0000-0000-000000000000", token, "")
			require.Equal(t, http.StatusNotFound, resp.StatusCode)

			resp, _ = doJSON(t, http.MethodGet, srvURL+"/projects/not-a-uuid", token, "")
			require.Equal(t, http.StatusNotFound, resp.StatusCode)
		})

		t.Run("invalid story points are rejected", func(t *testing.T) {
			resp, project := doJSON(t, http.MethodPost, srvURL+"/projects", token, `{"name": "Points"}`)
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			projectID, _ := project["id"].(string)

			resp, sprint := doJSON(t, http.MethodPost, srvURL+"/projects/"+projectID+"/sprints", token,
				`{"name": "Sprint"}`)
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			sprintID, _ := sprint["id"].(string)

			resp, _ = doJSON(t, http.MethodPost, srvURL+"/sprints/"+sprintID+"/items", token,
				`{"title": "Negative", "storyPoints": "-1"}`)
			require.Equal(t, http.StatusConflict, resp.StatusCode)
		})
	})
}
