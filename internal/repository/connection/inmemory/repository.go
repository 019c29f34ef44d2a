package inmemory

import (
	"log/slog"
	"sync"

	"github.com/sharetube/playerwall/internal/repository/connection"
)

// repo binds player hosts to their websocket connections.
type repo struct {
	connList map[*connection.Conn]string
	idList   map[string]*connection.Conn
	logger   *slog.Logger
	mu       sync.RWMutex
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		connList: make(map[*connection.Conn]string),
		idList:   make(map[string]*connection.Conn),
		logger:   logger,
	}
}

func (r *repo) Add(conn *connection.Conn, playerID string) error {
	funcName := "connection.inmemory.Add"
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug(funcName, "player_id", playerID)
	if r.connList[conn] != "" || r.idList[playerID] != nil {
		r.logger.Info(funcName, "error", connection.ErrAlreadyExists)
		return connection.ErrAlreadyExists
	}

	r.connList[conn] = playerID
	r.idList[playerID] = conn

	r.logger.Debug(funcName, "result", "OK")
	return nil
}

// RemoveByPlayerID drops the binding of playerID only if it still points
// at conn, so a stale teardown cannot unbind a host that reconnected.
func (r *repo) RemoveByPlayerID(playerID string, conn *connection.Conn) error {
	funcName := "connection.inmemory.RemoveByPlayerID"
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug(funcName, "player_id", playerID)
	bound, ok := r.idList[playerID]
	if !ok || (conn != nil && bound != conn) {
		r.logger.Info(funcName, "error", connection.ErrNotFound)
		return connection.ErrNotFound
	}

	delete(r.connList, bound)
	delete(r.idList, playerID)

	r.logger.Debug(funcName, "result", "OK")
	return nil
}

func (r *repo) GetPlayerID(conn *connection.Conn) (string, error) {
	funcName := "connection.inmemory.GetPlayerID"
	r.mu.RLock()
	defer r.mu.RUnlock()

	playerID, ok := r.connList[conn]
	if !ok {
		r.logger.Info(funcName, "error", connection.ErrNotFound)
		return "", connection.ErrNotFound
	}

	return playerID, nil
}

func (r *repo) GetConn(playerID string) (*connection.Conn, error) {
	funcName := "connection.inmemory.GetConn"
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.idList[playerID]
	if !ok {
		r.logger.Info(funcName, "player_id", playerID, "error", connection.ErrNotFound)
		return nil, connection.ErrNotFound
	}

	return conn, nil
}

// Send writes v as JSON to the connection bound to playerID.
func (r *repo) Send(playerID string, v any) error {
	conn, err := r.GetConn(playerID)
	if err != nil {
		return err
	}

	return conn.WriteJSON(v)
}
