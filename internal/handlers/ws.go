package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/boardwalk-dev/boardwalk/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

const eventBoardUpdated = "board.updated"

// LayoutSource reads the current order of a board.
type LayoutSource interface {
	Layout(ctx context.Context, boardID string) ([]types.ListLayout, error)
}

// BoardAuthorizer checks that a user may watch a board.
type BoardAuthorizer interface {
	Authorize(ctx context.Context, boardID, ownerID string) error
}

type subscriber struct {
	conn *websocket.Conn
	send chan types.BoardEvent
}

// Hub fans board events out to websocket subscribers. Each connection has
// its own writer goroutine; a subscriber whose buffer is full is dropped.
type Hub struct {
	mu      sync.RWMutex
	boards  map[string]map[*subscriber]struct{}
	layouts LayoutSource
	origins map[string]struct{}
}

func NewHub(layouts LayoutSource, allowedOrigins []string) *Hub {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}
	return &Hub{
		boards:  make(map[string]map[*subscriber]struct{}),
		layouts: layouts,
		origins: origins,
	}
}

func (h *Hub) subscribe(boardID string, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.boards[boardID] == nil {
		h.boards[boardID] = make(map[*subscriber]struct{})
	}
	h.boards[boardID][s] = struct{}{}
}

func (h *Hub) unsubscribe(boardID string, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.boards[boardID]
	if !ok {
		return
	}
	if _, ok := subs[s]; !ok {
		return
	}
	delete(subs, s)
	close(s.send)
	if len(subs) == 0 {
		delete(h.boards, boardID)
	}
}

// Subscribers returns the number of connections watching boardID.
func (h *Hub) Subscribers(boardID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.boards[boardID])
}

// Publish sends the board's fresh order to its subscribers.
func (h *Hub) Publish(ctx context.Context, boardID, reason string) {
	if h.Subscribers(boardID) == 0 {
		return
	}

	lists, err := h.layouts.Layout(ctx, boardID)
	if err != nil {
		zap.L().Warn("failed to load board layout for broadcast", zap.String("board_id", boardID), zap.Error(err))
		return
	}

	h.Broadcast(types.BoardEvent{
		Type:    eventBoardUpdated,
		BoardID: boardID,
		Reason:  reason,
		Lists:   lists,
	})
}

func (h *Hub) Broadcast(event types.BoardEvent) {
	h.mu.RLock()
	var slow []*subscriber
	for s := range h.boards[event.BoardID] {
		select {
		case s.send <- event:
		default:
			slow = append(slow, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range slow {
		zap.L().Warn("dropping slow websocket subscriber", zap.String("board_id", event.BoardID))
		h.unsubscribe(event.BoardID, s)
	}
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	_, ok := h.origins[origin]
	return ok
}

// WebSocket upgrades the request and streams events for :boardId.
func (h *Hub) WebSocket(boards BoardAuthorizer) gin.HandlerFunc {
	upgrader := websocket.Upgrader{CheckOrigin: h.checkOrigin}

	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		boardID, ok := uuidParam(c, "boardId")
		if !ok {
			return
		}

		if err := boards.Authorize(c.Request.Context(), boardID, userID); err != nil {
			respondError(c, err)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			zap.L().Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		s := &subscriber{conn: conn, send: make(chan types.BoardEvent, sendBuffer)}
		h.subscribe(boardID, s)

		go h.writePump(boardID, s)
		h.readPump(boardID, s)
	}
}

// readPump drains client frames so pongs and close frames are processed.
func (h *Hub) readPump(boardID string, s *subscriber) {
	defer h.unsubscribe(boardID, s)

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.L().Debug("websocket closed", zap.String("board_id", boardID), zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(boardID string, s *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := s.conn.WriteJSON(map[string]string{
		"type":    "connected",
		"boardId": boardID,
	})
	if err != nil {
		return
	}

	for {
		select {
		case event, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteJSON(event); err != nil {
				zap.L().Debug("websocket write failed", zap.String("board_id", boardID), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
