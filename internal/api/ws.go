package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/sprite-ai/civtriage/internal/board"
	"github.com/sprite-ai/civtriage/internal/intake"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024 * 16,
	WriteBufferSize: 1024 * 16,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local dev; restrict in production
	},
}

// WebSocket message types from client.
const (
	wsMsgAssess       = "assess"
	wsMsgSubmit       = "submit"
	wsMsgUpdateStatus = "update_status"
	wsMsgList         = "list"
	wsMsgFinish       = "finish"
)

// WebSocket message types to client.
const (
	wsMsgAssessment = "assessment"
	wsMsgReport     = "report"
	wsMsgReports    = "reports"
	wsMsgSummary    = "summary"
	wsMsgError      = "error"
)

// wsMessage is the envelope for WebSocket messages in both directions.
type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// wsUpdateStatus is the payload for "update_status" messages.
type wsUpdateStatus struct {
	ID string `json:"id"`
	statusRequest
}

// wsListMsg is the payload for "list" messages.
type wsListMsg struct {
	Status   string `json:"status,omitempty"`
	Severity string `json:"severity,omitempty"`
}

// wsSummaryResponse is sent when the operator finishes the session.
type wsSummaryResponse struct {
	SessionID string      `json:"session_id"`
	Assessed  int         `json:"assessed"`
	Submitted []string    `json:"submitted"`
	Updated   []string    `json:"updated"`
	Stats     board.Stats `json:"stats"`
}

// triageSession holds the state for one operator console connection.
type triageSession struct {
	id        string
	assessed  int
	submitted []string
	updated   []string
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	session := &triageSession{id: uuid.NewString()}
	log.Printf("websocket session %s opened", session.id)
	defer log.Printf("websocket session %s closed", session.id)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read: %v", err)
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			sendWSError(conn, "invalid message format")
			continue
		}

		switch msg.Type {
		case wsMsgAssess:
			s.handleWSAssess(conn, session, msg.Data)
		case wsMsgSubmit:
			s.handleWSSubmit(r.Context(), conn, session, msg.Data)
		case wsMsgUpdateStatus:
			s.handleWSUpdateStatus(conn, session, msg.Data)
		case wsMsgList:
			s.handleWSList(conn, msg.Data)
		case wsMsgFinish:
			s.handleWSFinish(conn, session)
		default:
			sendWSError(conn, "unknown message type: "+msg.Type)
		}
	}
}

func (s *Server) handleWSAssess(conn *websocket.Conn, session *triageSession, data json.RawMessage) {
	var req assessRequest
	if err := json.Unmarshal(data, &req); err != nil {
		sendWSError(conn, "invalid assess data")
		return
	}
	if err := intake.ValidateHours(req.HoursElapsed); err != nil {
		sendWSError(conn, err.Error())
		return
	}

	a := s.engine.Assess(req.Text, req.HoursElapsed)
	session.assessed++
	sendWSMessage(conn, wsMsgAssessment, newAssessmentJSON(a))
}

func (s *Server) handleWSSubmit(ctx context.Context, conn *websocket.Conn, session *triageSession, data json.RawMessage) {
	var req submitRequest
	if err := json.Unmarshal(data, &req); err != nil {
		sendWSError(conn, "invalid submit data")
		return
	}
	rec, err := req.record()
	if err != nil {
		sendWSError(conn, err.Error())
		return
	}

	report, err := s.submit(ctx, rec)
	if err != nil {
		sendWSError(conn, err.Error())
		return
	}
	session.submitted = append(session.submitted, report.ID)
	sendWSMessage(conn, wsMsgReport, newReportJSON(report, s.board.Now()))
}

func (s *Server) handleWSUpdateStatus(conn *websocket.Conn, session *triageSession, data json.RawMessage) {
	var req wsUpdateStatus
	if err := json.Unmarshal(data, &req); err != nil {
		sendWSError(conn, "invalid update_status data")
		return
	}
	u, err := req.update()
	if err != nil {
		sendWSError(conn, err.Error())
		return
	}

	report, err := s.board.UpdateStatus(req.ID, u)
	if err != nil {
		sendWSError(conn, err.Error())
		return
	}
	session.updated = append(session.updated, report.ID)
	sendWSMessage(conn, wsMsgReport, newReportJSON(report, s.board.Now()))
}

func (s *Server) handleWSList(conn *websocket.Conn, data json.RawMessage) {
	var req wsListMsg
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			sendWSError(conn, "invalid list data")
			return
		}
	}

	resp, err := s.listReports(req.Status, req.Severity)
	if err != nil {
		sendWSError(conn, err.Error())
		return
	}
	sendWSMessage(conn, wsMsgReports, resp)
}

func (s *Server) handleWSFinish(conn *websocket.Conn, session *triageSession) {
	sendWSMessage(conn, wsMsgSummary, wsSummaryResponse{
		SessionID: session.id,
		Assessed:  session.assessed,
		Submitted: nonNil(session.submitted),
		Updated:   nonNil(session.updated),
		Stats:     s.board.Stats(),
	})
}

func sendWSMessage(conn *websocket.Conn, msgType string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Printf("ws marshal: %v", err)
		return
	}
	msg := wsMessage{Type: msgType, Data: raw}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("ws write: %v", err)
	}
}

func sendWSError(conn *websocket.Conn, errMsg string) {
	sendWSMessage(conn, wsMsgError, map[string]string{"message": errMsg})
}
