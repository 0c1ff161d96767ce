package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type reporter struct {
	Id       string
	Name     string
	TeamId   string
	Conn     *websocket.Conn
	JoinedAt time.Time

	mu *sync.Mutex
}

func newReporter(conn *websocket.Conn, userId, name string) *reporter {
	return &reporter{
		Id:   userId,
		Name: name,
		Conn: conn,
		mu:   new(sync.Mutex),
	}
}

func (r *reporter) writeJson(msg interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r == nil || r.Conn == nil {
		return nil
	}
	return r.Conn.WriteJSON(msg)
}

func (r *reporter) writeControl(messageType int, data []byte, deadline time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r == nil || r.Conn == nil {
		return nil
	}
	return r.Conn.WriteControl(messageType, data, deadline)
}

func (r *reporter) response() reporterResponse {
	return reporterResponse{
		UserId:   r.Id,
		Name:     r.Name,
		TeamId:   r.TeamId,
		JoinedAt: r.JoinedAt.UTC().Format(time.RFC3339),
	}
}
