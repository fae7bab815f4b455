package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/scrubdeck/scrubdeck/log"
)

// EventCallback receives property changes (name, value) and other mpv
// events (event name, whole message).
type EventCallback func(name string, data interface{})

// observed lists the properties the listener subscribes to.
var observed = []string{
	"eof-reached",
	"paused-for-cache",
	"demuxer-cache-state",
	"duration",
}

// EventListener keeps one connection open and turns mpv notifications into callbacks.
type EventListener struct {
	socketPath string
	conn       net.Conn
	callback   EventCallback
	mu         sync.Mutex
	listening  bool
	done       chan struct{}
}

// NewEventListener creates a listener for the given socket.
func NewEventListener(socketPath string, callback EventCallback) *EventListener {
	return &EventListener{
		socketPath: socketPath,
		callback:   callback,
	}
}

// Start connects and subscribes. Observers are bound to the connection, so
// they are registered on the one the read loop uses.
func (el *EventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	for i, name := range observed {
		if err := writeCommand(conn, ipcCommand{Command: []interface{}{"observe_property", i + 1, name}}); err != nil {
			_ = conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	el.conn = conn
	el.listening = true
	el.done = make(chan struct{})

	go el.readLoop(conn, el.done)

	log.Infof("mpv event listener started on %s (observing: %v)", el.socketPath, observed)
	return nil
}

// Stop closes the connection and waits for the read loop to exit.
func (el *EventListener) Stop() {
	el.mu.Lock()
	if !el.listening {
		el.mu.Unlock()
		return
	}
	el.listening = false
	_ = el.conn.Close()
	done := el.done
	el.mu.Unlock()

	<-done
}

func (el *EventListener) readLoop(conn net.Conn, done chan struct{}) {
	defer close(done)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		el.processEvent(scanner.Bytes())
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		log.Warnf("event listener read error: %v", err)
	}
}

// processEvent parses and dispatches a single mpv message.
func (el *EventListener) processEvent(line []byte) {
	var event map[string]interface{}
	if err := json.Unmarshal(line, &event); err != nil {
		return
	}

	eventType, ok := event["event"].(string)
	if !ok || el.callback == nil {
		// Replies to our own observe_property commands.
		return
	}

	if eventType == "property-change" {
		name, _ := event["name"].(string)
		if name != "" && lo.Contains(observed, name) {
			el.callback(name, event["data"])
		}
		return
	}

	el.callback(eventType, event)
}

// parseCacheState extracts the buffered range around the reader position
// from a demuxer-cache-state value.
func parseCacheState(data interface{}) (start, duration float64, ok bool) {
	state, isMap := data.(map[string]interface{})
	if !isMap {
		return 0, 0, false
	}

	reader, hasReader := state["reader-pts"].(float64)

	if ranges, isSlice := state["seekable-ranges"].([]interface{}); isSlice {
		first := mo.None[[2]float64]()
		for _, raw := range ranges {
			r, isRange := raw.(map[string]interface{})
			if !isRange {
				continue
			}
			s, okStart := r["start"].(float64)
			e, okEnd := r["end"].(float64)
			if !okStart || !okEnd || e < s {
				continue
			}
			if first.IsAbsent() {
				first = mo.Some([2]float64{s, e})
			}
			if hasReader && reader >= s && reader <= e {
				return s, e - s, true
			}
		}
		if r, found := first.Get(); found {
			return r[0], r[1] - r[0], true
		}
	}

	if end, hasEnd := state["cache-end"].(float64); hasEnd && end >= 0 {
		return 0, end, true
	}

	return 0, 0, false
}
