package socket

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// NewUpgrader accepts any origin when allowed is empty, otherwise only the
// listed ones.
func NewUpgrader(allowed []string) *websocket.Upgrader {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(set) == 0 {
				return true
			}
			return set[r.Header.Get("Origin")]
		},
	}
}
