package update

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcnksm/go-latest"
)

func releaseServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestCheckForUpdate(t *testing.T) {
	ts := releaseServer(t, `{"version":"1.2.0","message":"security fix"}`)

	newest, notes, newer, err := checkForUpdateSource("v1.0.0", &latest.JSON{URL: ts.URL})
	require.NoError(t, err)
	assert.True(t, newer)
	assert.Equal(t, "1.2.0", newest)
	assert.Equal(t, "security fix", notes)
}

func TestCheckForUpdateNoUpdate(t *testing.T) {
	ts := releaseServer(t, `{"version":"1.2.0","message":"security fix"}`)

	_, notes, newer, err := checkForUpdateSource("1.2.0", &latest.JSON{URL: ts.URL})
	require.NoError(t, err)
	assert.False(t, newer)
	assert.Empty(t, notes)
}

func TestCheckForUpdateEmptyVersion(t *testing.T) {
	_, _, _, err := checkForUpdateSource(" ", &latest.JSON{URL: "http://127.0.0.1:0"})
	assert.Error(t, err)
}
