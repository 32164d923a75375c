package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/drift_tracker/internal/config"
	"github.com/relabs-tech/drift_tracker/internal/drift"
	"github.com/relabs-tech/drift_tracker/internal/pose"
)

var upgrader = websocket.Upgrader{
	// The page is served from this same process; same-origin checks add
	// nothing on a LAN-only viewer.
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsHub fans MQTT updates out to connected websocket clients.
type wsHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func newWSHub() *wsHub {
	return &wsHub{clients: make(map[*websocket.Conn]bool)}
}

func (h *wsHub) add(c *websocket.Conn) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
}

func (h *wsHub) broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			c.Close()
			delete(h.clients, c)
		}
	}
}

// RunWeb subscribes to the pose topics, keeps both trajectories in memory,
// and serves them over an HTTP API plus a websocket live feed.
func RunWeb() error {
	cfg := config.Get()

	agg := drift.NewAggregator()
	hub := newWSHub()

	// 1) Connect to the MQTT broker
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Mirror pose updates into the aggregator and the live feed
	onPose := func(_ mqtt.Client, msg mqtt.Message) {
		var u pose.Update
		if err := json.Unmarshal(msg.Payload(), &u); err != nil {
			log.Printf("web: pose unmarshal error: %v", err)
			return
		}
		agg.OnPose(u)
		hub.broadcast(msg.Payload())
	}
	for _, topic := range []string{cfg.TopicPoseDR, cfg.TopicPoseVisual} {
		token := client.Subscribe(topic, 0, onPose)
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
		log.Printf("web: subscribed to %s", topic)
	}

	// 3) JSON API: both trajectories and the current drift
	http.HandleFunc("/api/trajectories", func(w http.ResponseWriter, r *http.Request) {
		dr, vis := agg.Trajectories()
		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(struct {
			DR     []drift.Point `json:"dr"`
			Visual []drift.Point `json:"visual"`
		}{dr, vis})
		if err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	http.HandleFunc("/api/drift", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(struct {
			Drift float64 `json:"drift_m"`
			RMS   float64 `json:"rms_m"`
		}{agg.Drift(), agg.RMSDrift(100)})
		if err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	// 4) Websocket live feed: every pose update as it arrives
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("web: websocket upgrade: %v", err)
			return
		}
		hub.add(conn)
	})

	// 5) Static files from ./web as the root
	http.Handle("/", http.FileServer(http.Dir("web")))

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}
