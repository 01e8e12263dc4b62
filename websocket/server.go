package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	aero "github.com/esimov/ascii-aero/aero-solver"
)

const (
	writeWait  = 2 * time.Second
	sendBuffer = 4
)

type HttpParams struct {
	Address string
	Prefix  string
	Root    string
}

// Server streams simulation frames to websocket clients and forwards
// the commands they send to the simulation queue.
type Server struct {
	params   HttpParams
	queue    *aero.Queue
	upgrader websocket.Upgrader
	srv      *http.Server

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewServer creates a server serving the static files under p.Root and the /ws endpoint.
func NewServer(p HttpParams, q *aero.Queue) (*Server, error) {
	root, err := filepath.Abs(p.Root)
	if err != nil {
		return nil, err
	}
	p.Root = root
	if p.Prefix == "" {
		p.Prefix = "/"
	}

	s := &Server{
		params: p,
		queue:  q,
		// A server application calls the Upgrade method from an HTTP request handler to initiate a connection
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
	s.srv = &http.Server{
		Addr:    p.Address,
		Handler: s.Handler(),
	}
	return s, nil
}

// Handler returns the request handler with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(s.params.Prefix, http.StripPrefix(s.params.Prefix, http.FileServer(http.Dir(s.params.Root))))
	mux.HandleFunc("/ws", s.wsHandler)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Print(r.RemoteAddr + " " + r.Method + " " + r.URL.String())
		mux.ServeHTTP(w, r)
	})
}

// ListenAndServe blocks serving requests until Shutdown is called.
func (s *Server) ListenAndServe() error {
	log.Printf("serving %s as %s on %s", s.params.Root, s.params.Prefix, s.params.Address)
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server and disconnects every client.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)

	s.mu.Lock()
	for c := range s.clients {
		c.conn.Close()
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()

	return err
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Broadcast sends the frame to every client. Clients still busy with
// earlier frames skip this one.
func (s *Server) Broadcast(f *aero.Frame) {
	if s.Clients() == 0 {
		return
	}
	msg, err := json.Marshal(f)
	if err != nil {
		log.Printf("error: encoding frame %d: %v", f.Index, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

// wsHandler defines the websocket connection endpoint
func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	// Upgrade the http connection to a WebSocket connection
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if _, ok := err.(websocket.HandshakeError); !ok {
			log.Println(err)
		}
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	go s.writeSocket(c)
	go s.readSocket(c)
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()
	c.conn.Close()
}

// readSocket listen for new commands being sent to the websocket
func (s *Server) readSocket(c *client) {
	defer s.drop(c)

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			return
		}
		cmd, err := aero.ParseCommand(string(msg))
		if err != nil {
			log.Printf("ignoring message: %v", err)
			continue
		}
		if !s.queue.Push(cmd) {
			log.Printf("command queue full, dropping %q", msg)
		}
	}
}

// writeSocket pushes queued frames to the client until its channel is closed
func (s *Server) writeSocket(c *client) {
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Println(err)
			s.drop(c)
			return
		}
	}
}
