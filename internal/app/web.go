package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/pressure_computer/internal/config"
	"github.com/relabs-tech/pressure_computer/internal/env"
	"github.com/relabs-tech/pressure_computer/internal/store"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// historySource is implemented by *store.Recorder.
type historySource interface {
	Range(from, to time.Time, limit int) ([]env.Sample, error)
}

const maxHistory = 10000

// webState holds the latest sample and the connected websocket clients.
type webState struct {
	mu     sync.RWMutex
	last   env.Sample
	have   bool
	conns  map[*websocket.Conn]bool
	connMu sync.Mutex
}

func newWebState() *webState {
	return &webState{conns: make(map[*websocket.Conn]bool)}
}

// update stores s and pushes it to every websocket client.
func (ws *webState) update(s env.Sample) {
	ws.mu.Lock()
	ws.last = s
	ws.have = true
	ws.mu.Unlock()

	msg, err := json.Marshal(s)
	if err != nil {
		log.Printf("web: json marshal error: %v", err)
		return
	}
	ws.connMu.Lock()
	defer ws.connMu.Unlock()
	for c := range ws.conns {
		if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Printf("web: websocket write error: %v", err)
			c.Close()
			delete(ws.conns, c)
		}
	}
}

func (ws *webState) handleLatest(w http.ResponseWriter, r *http.Request) {
	ws.mu.RLock()
	defer ws.mu.RUnlock()

	if !ws.have {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ws.last); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

func (ws *webState) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	ws.connMu.Lock()
	ws.conns[conn] = true
	ws.connMu.Unlock()

	ws.mu.RLock()
	last, have := ws.last, ws.have
	ws.mu.RUnlock()
	if have {
		ws.connMu.Lock()
		conn.WriteJSON(last)
		ws.connMu.Unlock()
	}

	// Drain until the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	ws.connMu.Lock()
	delete(ws.conns, conn)
	ws.connMu.Unlock()
	conn.Close()
}

// handleHistory serves /api/history?from=RFC3339&to=RFC3339. The default
// window is the last hour.
func handleHistory(h historySource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h == nil {
			http.Error(w, "history recording is disabled", http.StatusNotFound)
			return
		}
		to := time.Now()
		from := to.Add(-time.Hour)
		var err error
		if v := r.URL.Query().Get("from"); v != "" {
			if from, err = time.Parse(time.RFC3339, v); err != nil {
				http.Error(w, fmt.Sprintf("invalid from: %v", err), http.StatusBadRequest)
				return
			}
		}
		if v := r.URL.Query().Get("to"); v != "" {
			if to, err = time.Parse(time.RFC3339, v); err != nil {
				http.Error(w, fmt.Sprintf("invalid to: %v", err), http.StatusBadRequest)
				return
			}
		}
		samples, err := h.Range(from, to, maxHistory)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if samples == nil {
			samples = []env.Sample{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(samples); err != nil {
			log.Printf("json encode error: %v", err)
		}
	}
}

func newWebMux(ws *webState, h historySource) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/pressure", ws.handleLatest)
	mux.HandleFunc("/api/history", handleHistory(h))
	mux.HandleFunc("/ws", ws.handleWS)
	mux.Handle("/", http.FileServer(http.Dir("web")))
	return mux
}

func RunWeb() error {
	cfg := config.Get()
	ws := newWebState()

	var h historySource
	if cfg.RecorderDBPath != "" {
		rec, err := store.Open(cfg.RecorderDBPath)
		if err != nil {
			return fmt.Errorf("failed to open recorder: %w", err)
		}
		defer rec.Close()
		h = rec
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicPressure, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s env.Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("MQTT payload unmarshal error: %v", err)
			return
		}
		ws.update(s)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("subscribed to MQTT topic %s", cfg.TopicPressure)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, newWebMux(ws, h))
}
