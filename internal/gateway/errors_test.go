package gateway

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromUpstreamStatus(t *testing.T) {
	t.Run("404 names resource and identifier", func(t *testing.T) {
		e := FromUpstreamStatus("el competidor", "c1", http.StatusNotFound, nil)
		assert.Equal(t, http.StatusNotFound, e.Status)
		assert.Equal(t, "No se encontró el competidor para el identificador c1", e.Envelope.Error)
		assert.Equal(t, "c1", e.Envelope.RequestedID)
	})

	t.Run("404 without identifier", func(t *testing.T) {
		e := FromUpstreamStatus("las ideas de negocio", "", http.StatusNotFound, nil)
		assert.Equal(t, "No se encontró las ideas de negocio", e.Envelope.Error)
	})

	t.Run("401 keeps authorization prefix", func(t *testing.T) {
		e := FromUpstreamStatus("el recurso", "c1", http.StatusUnauthorized, nil)
		assert.Equal(t, http.StatusUnauthorized, e.Status)
		assert.Contains(t, e.Envelope.Error, "No tienes autorización para acceder")
	})

	t.Run("other statuses pass through with body detail", func(t *testing.T) {
		e := FromUpstreamStatus("el recurso", "c1", http.StatusBadGateway, []byte("upstream exploded"))
		assert.Equal(t, http.StatusBadGateway, e.Status)
		assert.Equal(t, http.StatusBadGateway, e.Envelope.UpstreamStatus)
		assert.Equal(t, "upstream exploded", e.Envelope.Detail)
	})
}

func TestInternalCarriesTimestamp(t *testing.T) {
	e := Internal(errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, e.Status)
	assert.Equal(t, "boom", e.Envelope.Detail)

	ts, err := time.Parse(time.RFC3339, e.Envelope.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), ts, time.Minute)
}

func TestAuthRequiredNeverListsValues(t *testing.T) {
	e := AuthRequired([]string{"lang", "theme"})

	assert.Equal(t, http.StatusUnauthorized, e.Status)
	assert.Equal(t, []string{"lang", "theme"}, e.Envelope.AvailableCookies)
	assert.NotContains(t, e.Envelope.Error, "dark")
}
