package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// #region upgrader
var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// wsFrame is one inbound client frame.
type wsFrame struct {
	Event string      `json:"event"`
	Data  TurnRequest `json:"data"`
}

// #endregion upgrader

// #region handler
// handleWebsocket serves the realtime loop for one conversation: inbound
// student turns, outbound acks, and the room's stored-message broadcasts.
func (s *Server) handleWebsocket(c *gin.Context) {
	conversationID := c.Param("conversation")
	if _, err := uuid.Parse(conversationID); err != nil {
		respondError(c, http.StatusBadRequest, "invalid conversation id")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "conversation", conversationID, "error", err)
		return
	}
	defer conn.Close()

	cl := &wsClient{conn: conn}
	s.hub.Subscribe(conversationID, cl)
	defer s.hub.Unsubscribe(conversationID, cl)
	s.logger.Info("websocket subscriber joined", "conversation", conversationID)

	if err := cl.send(Event{Event: eventSubscribed, Data: gin.H{"conversation_id": conversationID}}); err != nil {
		return
	}

	for {
		var frame wsFrame
		if err := conn.ReadJSON(&frame); err != nil {
			s.logger.Info("websocket subscriber left", "conversation", conversationID, "reason", err.Error())
			return
		}

		if frame.Event != eventSend {
			if err := cl.send(Event{Event: eventError, Data: gin.H{"message": "unknown event: " + frame.Event}}); err != nil {
				return
			}
			continue
		}

		req := frame.Data
		if req.ConversationID == "" {
			req.ConversationID = conversationID
		}
		if req.ConversationID != conversationID {
			if err := cl.send(Event{Event: eventError, Data: gin.H{"message": "conversation mismatch"}}); err != nil {
				return
			}
			continue
		}

		ack := func(messageID string) {
			if err := cl.send(Event{Event: eventAck, Data: gin.H{"message_id": messageID, "status": "received"}}); err != nil {
				s.logger.Warn("websocket ack failed", "conversation", conversationID, "error", err)
			}
		}

		if _, err := s.processTurn(c.Request.Context(), req, ack); err != nil {
			if sendErr := cl.send(Event{Event: eventError, Data: gin.H{"message": userMessage(err)}}); sendErr != nil {
				return
			}
		}
	}
}

// userMessage maps a pipeline error onto the string clients see.
func userMessage(err error) string {
	if errors.Is(err, errBadRequest) {
		return err.Error()
	}
	return "failed to process message"
}

// #endregion handler
