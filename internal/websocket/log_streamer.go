package websocket

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// recentEntries is how many log lines are replayed to a console that
// connects after startup.
const recentEntries = 100

// LogEntry is one structured log line as sent to the web console.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// LogStreamer implements io.Writer so it can be installed as the log
// output. Every line is written through to the underlying sink (the log
// file) and broadcast to all connected WebSocket consoles. A circular
// buffer retains the most recent entries for replay to new clients.
type LogStreamer struct {
	out      io.Writer
	upgrader websocket.Upgrader

	clientsMutex sync.RWMutex
	clients      map[*websocket.Conn]bool

	bufferMutex sync.RWMutex
	recent      []LogEntry
	bufferIndex int
}

// NewLogStreamer creates a log streamer that tees log output to out.
func NewLogStreamer(out io.Writer) *LogStreamer {
	return &LogStreamer{
		out: out,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*websocket.Conn]bool),
		recent:  make([]LogEntry, recentEntries),
	}
}

// Write captures one log line, persists it and fans it out to clients.
func (ls *LogStreamer) Write(p []byte) (n int, err error) {
	n, err = ls.out.Write(p)
	if err != nil {
		return n, err
	}

	entry := parseLogLine(string(p))

	ls.bufferMutex.Lock()
	ls.recent[ls.bufferIndex] = entry
	ls.bufferIndex = (ls.bufferIndex + 1) % recentEntries
	ls.bufferMutex.Unlock()

	ls.broadcast(entry)
	return n, nil
}

// HandleConnection upgrades a /logs request, replays the recent buffer
// and keeps the client subscribed until it disconnects.
func (ls *LogStreamer) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := ls.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ERROR] WebSocket upgrade failed: %v", err)
		return
	}

	ls.clientsMutex.Lock()
	ls.clients[conn] = true
	ls.clientsMutex.Unlock()

	ls.replayRecent(conn)

	// The read loop exists only to notice the disconnect.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				ls.drop(conn)
				break
			}
		}
	}()
}

// ClientCount returns the number of connected consoles.
func (ls *LogStreamer) ClientCount() int {
	ls.clientsMutex.RLock()
	defer ls.clientsMutex.RUnlock()
	return len(ls.clients)
}

func (ls *LogStreamer) broadcast(entry LogEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	var failed []*websocket.Conn

	ls.clientsMutex.RLock()
	for client := range ls.clients {
		client.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			failed = append(failed, client)
		}
	}
	ls.clientsMutex.RUnlock()

	for _, client := range failed {
		ls.drop(client)
	}
}

// replayRecent sends the buffered entries in chronological order.
func (ls *LogStreamer) replayRecent(conn *websocket.Conn) {
	ls.bufferMutex.RLock()
	defer ls.bufferMutex.RUnlock()

	for i := 0; i < recentEntries; i++ {
		entry := ls.recent[(ls.bufferIndex+i)%recentEntries]
		if entry.Timestamp == "" {
			continue
		}
		data, err := json.Marshal(entry)
		if err != nil {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

func (ls *LogStreamer) drop(conn *websocket.Conn) {
	ls.clientsMutex.Lock()
	delete(ls.clients, conn)
	ls.clientsMutex.Unlock()
	conn.Close()
}

// parseLogLine extracts the [LEVEL] tag from a standard log line of the
// form "YYYY/MM/DD HH:MM:SS [LEVEL] message". Lines without a tag are
// treated as INFO.
func parseLogLine(line string) LogEntry {
	entry := LogEntry{
		Timestamp: time.Now().Format(time.RFC3339),
		Level:     "INFO",
		Message:   strings.TrimRight(line, "\n"),
	}

	start := strings.IndexByte(line, '[')
	if start < 0 {
		return entry
	}
	end := strings.IndexByte(line[start:], ']')
	if end < 0 {
		return entry
	}

	entry.Level = line[start+1 : start+end]
	entry.Message = strings.TrimSpace(strings.TrimRight(line[start+end+1:], "\n"))
	return entry
}
