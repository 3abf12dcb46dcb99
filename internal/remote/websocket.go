// ABOUTME: WebSocket control endpoint
// ABOUTME: Accepts JSON commands and broadcasts device status to every session
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Resonate-Protocol/resonate-beatbox/internal/control"
)

// Path is the HTTP path of the control endpoint
const Path = "/beatbox"

const (
	writeDeadline = 10 * time.Second
	pingInterval  = 30 * time.Second
	sendQueueSize = 32
)

// WebSocketConfig holds WebSocket endpoint configuration
type WebSocketConfig struct {
	DeviceID string
	Name     string
	Version  string
	Patterns []string
	Debug    bool
}

// WebSocketServer serves the JSON control protocol
type WebSocketServer struct {
	config    WebSocketConfig
	commander *Commander
	upgrader  websocket.Upgrader

	sessions   map[string]*session
	sessionsMu sync.RWMutex
	closing    bool // set once shutdown begins; guarded by sessionsMu

	statusMu sync.RWMutex
	status   *DeviceStatus

	httpServer *http.Server
	wg         sync.WaitGroup
}

type session struct {
	id       string
	conn     *websocket.Conn
	sendChan chan Message
	once     sync.Once
}

func (s *session) close() {
	s.once.Do(func() { close(s.sendChan) })
}

// NewWebSocketServer creates the endpoint. Commands go through commander.
func NewWebSocketServer(config WebSocketConfig, commander *Commander) *WebSocketServer {
	return &WebSocketServer{
		config:    config,
		commander: commander,
		upgrader: websocket.Upgrader{
			// Control clients live on the local network
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sessions: make(map[string]*session),
	}
}

// Handler returns an HTTP handler serving the control endpoint at Path
func (s *WebSocketServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(Path, s.handleWebSocket)
	return mux
}

// Serve accepts connections on ln until ctx is cancelled
func (s *WebSocketServer) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.Handler()}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	log.Printf("WebSocket control endpoint listening on %s%s", ln.Addr(), Path)

	select {
	case <-ctx.Done():
	case err, ok := <-errChan:
		if ok {
			return fmt.Errorf("websocket server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("WebSocket server shutdown error: %v", err)
	}

	s.closeSessions()
	s.wg.Wait()
	return nil
}

// PublishStatus records the latest status and broadcasts it to every session
func (s *WebSocketServer) PublishStatus(st control.Status) {
	ds := StatusFrom(st)

	s.statusMu.Lock()
	s.status = &ds
	s.statusMu.Unlock()

	s.broadcast(Message{Type: TypeStatus, Payload: ds})
}

// Sessions returns the number of connected clients
func (s *WebSocketServer) Sessions() int {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()
	return len(s.sessions)
}

func (s *WebSocketServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	log.Printf("New control connection from %s", r.RemoteAddr)
	s.handleConnection(conn)
}

func (s *WebSocketServer) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	sess := &session{
		id:       uuid.New().String(),
		conn:     conn,
		sendChan: make(chan Message, sendQueueSize),
	}

	// Queue the greeting before the session becomes visible to broadcasts
	sess.sendChan <- Message{Type: TypeHello, Payload: DeviceHello{
		DeviceID: s.config.DeviceID,
		Name:     s.config.Name,
		Version:  s.config.Version,
		Session:  sess.id,
		Patterns: s.config.Patterns,
	}}
	s.statusMu.RLock()
	if s.status != nil {
		sess.sendChan <- Message{Type: TypeStatus, Payload: *s.status}
	}
	s.statusMu.RUnlock()

	s.sessionsMu.Lock()
	if s.closing {
		s.sessionsMu.Unlock()
		log.Printf("Rejecting control connection during shutdown")
		return
	}
	s.sessions[sess.id] = sess
	s.wg.Add(1)
	s.sessionsMu.Unlock()

	go func() {
		defer s.wg.Done()
		s.sessionWriter(sess)
	}()

	defer func() {
		s.sessionsMu.Lock()
		delete(s.sessions, sess.id)
		s.sessionsMu.Unlock()
		sess.close()
		log.Printf("Control session closed: %s", sess.id)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}

		s.handleMessage(sess, data)
	}
}

// sessionWriter is the only goroutine writing to a session's connection
func (s *WebSocketServer) sessionWriter(sess *session) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-sess.sendChan:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				log.Printf("Error marshaling message: %v", err)
				continue
			}
			sess.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := sess.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("Error writing to session %s: %v", sess.id, err)
				return
			}

		case <-ticker.C:
			if err := sess.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeDeadline)); err != nil {
				return
			}
		}
	}
}

func (s *WebSocketServer) handleMessage(sess *session, data []byte) {
	var msg inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(sess, "invalid_message", err.Error())
		return
	}

	if msg.Type != TypeCommand {
		s.sendError(sess, "unknown_type", fmt.Sprintf("unsupported message type %q", msg.Type))
		return
	}

	var req CommandRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		s.sendError(sess, "invalid_payload", err.Error())
		return
	}

	cmd, err := s.commander.ExecuteLine(req.ToLine())
	if err != nil {
		code := "invalid_command"
		if errors.Is(err, ErrBusy) {
			code = "busy"
		}
		s.sendError(sess, code, err.Error())
		return
	}

	if s.config.Debug {
		log.Printf("WebSocket command from %s: %s", sess.id, cmd)
	}

	// Acknowledge with the last known status; the loop publishes the
	// updated status once the command has been applied.
	s.statusMu.RLock()
	var ack DeviceStatus
	if s.status != nil {
		ack = *s.status
	}
	s.statusMu.RUnlock()
	ack.LastCommand = cmd.String()
	s.send(sess, Message{Type: TypeStatus, Payload: ack})
}

func (s *WebSocketServer) sendError(sess *session, code, message string) {
	s.send(sess, Message{Type: TypeError, Payload: ErrorPayload{Error: code, Message: message}})
}

// send queues msg without blocking; slow sessions lose messages.
// sendChan is only closed after the session leaves the map, by the
// goroutine that also handles its incoming messages.
func (s *WebSocketServer) send(sess *session, msg Message) {
	select {
	case sess.sendChan <- msg:
	default:
		log.Printf("Session %s send queue full, dropping %s", sess.id, msg.Type)
	}
}

func (s *WebSocketServer) broadcast(msg Message) {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()

	for _, sess := range s.sessions {
		s.send(sess, msg)
	}
}

func (s *WebSocketServer) closeSessions() {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()

	s.closing = true
	for _, sess := range s.sessions {
		sess.conn.Close()
	}
}
