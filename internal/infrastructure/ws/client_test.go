package ws

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClient_SendDropsWhenFull(t *testing.T) {
	c := NewClient(nil, 2, nil)

	assert.True(t, c.Send(&WSMessage{Type: RideUpdate}))
	assert.True(t, c.Send(&WSMessage{Type: RideUpdate}))
	assert.False(t, c.Send(&WSMessage{Type: RideUpdate}))
	assert.Len(t, c.Message, 2)
}

func TestClient_SendAfterClose(t *testing.T) {
	c := NewClient(nil, 1, nil)
	c.Close()
	c.Close()

	assert.True(t, c.IsClosed())
	assert.False(t, c.Send(&WSMessage{Type: NewRide}))
}

func TestClient_UniqueIDs(t *testing.T) {
	assert.NotEqual(t, NewClient(nil, 1, nil).ID(), NewClient(nil, 1, nil).ID())
}

func TestNewUpgrader_CheckOrigin(t *testing.T) {
	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Origin", "https://dash.example.com")

	assert.True(t, NewUpgrader([]string{"*"}).CheckOrigin(req))
	assert.True(t, NewUpgrader(nil).CheckOrigin(req))
	assert.True(t, NewUpgrader([]string{"https://dash.example.com"}).CheckOrigin(req))
	assert.False(t, NewUpgrader([]string{"https://other.example.com"}).CheckOrigin(req))
}
