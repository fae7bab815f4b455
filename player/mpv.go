package player

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/scrubdeck/scrubdeck/log"
	"github.com/scrubdeck/scrubdeck/playback"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	quitTimeout       = 3 * time.Second
)

// ErrExited is reported when mpv quits on its own, e.g. the window was closed.
var ErrExited = errors.New("mpv exited")

// MPV implements playback.Engine on top of an mpv process.
type MPV struct {
	cfg Config
	cb  playback.Callbacks

	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{}
	tickerStop chan struct{}
	tickerDone chan struct{}
	listener   *EventListener

	closing atomic.Bool
	ready   atomic.Bool
	paused  atomic.Bool
	volume  atomic.Uint64
	pauseMu sync.Mutex // orders pause writes so the latest wins
	mu      sync.Mutex // serializes IPC round trips
	life    sync.Mutex // guards the process, ticker and listener
	pending sync.WaitGroup
}

// NewMPV creates an engine reporting to cb. Nothing starts until Load.
func NewMPV(cfg Config, cb playback.Callbacks) *MPV {
	if cfg.Binary == "" {
		cfg.Binary = "mpv"
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.SocketDir == "" {
		cfg.SocketDir = os.TempDir()
	}

	exited := make(chan struct{})
	close(exited)

	m := &MPV{cfg: cfg, cb: cb, exited: exited}
	m.paused.Store(true)
	m.volume.Store(math.Float64bits(1))
	return m
}

// Load validates the target and starts loading it in the background. Launch
// and IPC failures are reported through EngineFailed.
func (m *MPV) Load(src playback.Source) error {
	target, err := sanitizeMediaTarget(src.URL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	m.pending.Add(1)
	go func() {
		defer m.pending.Done()
		if err := m.load(target, src); err != nil && !m.closing.Load() {
			m.cb.EngineFailed(err)
		}
	}()

	return nil
}

func (m *MPV) load(target string, src playback.Source) error {
	m.life.Lock()
	defer m.life.Unlock()

	if m.closing.Load() {
		return nil
	}

	if m.running() {
		title := sanitizeTitle(src.Title)
		if err := m.Set("http-header-fields", headerList(src.Headers)); err != nil {
			return err
		}
		if err := m.Set("force-media-title", title); err != nil {
			return err
		}
		_, err := m.sendCommand("loadfile", target, "replace")
		return err
	}

	if err := m.launch(target, src); err != nil {
		return err
	}

	m.listener = NewEventListener(m.socketPath, m.onEvent)
	if err := m.listener.Start(); err != nil {
		return err
	}

	m.startTicker()
	return nil
}

// args builds the mpv command line. User configuration (mpv.conf) is
// respected: no video output or profile flags are passed.
func (m *MPV) args(target string, src playback.Source) []string {
	title := sanitizeTitle(src.Title)
	if title == "" {
		title = filepath.Base(target)
	}

	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
		fmt.Sprintf("--force-media-title=%s", title),
		fmt.Sprintf("--title=%s", title),
		"--force-window=yes",
		"--idle=yes",
		"--keep-open=yes",
		fmt.Sprintf("--volume=%g", math.Float64frombits(m.volume.Load())*100),
	}

	if m.paused.Load() {
		args = append(args, "--pause")
	}

	if headers := headerList(src.Headers); len(headers) > 0 {
		args = append(args, fmt.Sprintf("--http-header-fields=%s", strings.Join(headers, ",")))
	}

	return append(args, target)
}

// headerList renders headers as sorted "Key: value" entries with commas escaped.
func headerList(headers map[string]string) []string {
	list := make([]string, 0, len(headers))
	for k, v := range headers {
		list = append(list, fmt.Sprintf("%s: %s", k, strings.ReplaceAll(v, ",", "%2C")))
	}
	sort.Strings(list)
	return list
}

func (m *MPV) launch(target string, src playback.Source) error {
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Errorf("generate socket name: %w", err)
	}
	m.mu.Lock()
	m.socketPath = filepath.Join(m.cfg.SocketDir, fmt.Sprintf("scrubdeck-%x.sock", randomBytes))
	m.mu.Unlock()

	m.cmd = exec.Command(m.cfg.Binary, m.args(target, src)...)

	// Detach from the parent process group so terminal signals do not reach mpv.
	m.cmd.SysProcAttr = ownGroup()
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	exited := make(chan struct{})
	m.exited = exited
	cmd := m.cmd
	go func() {
		_ = cmd.Wait()
		m.ready.Store(false)
		close(exited)
		if !m.closing.Load() {
			m.cb.EngineFailed(ErrExited)
		}
	}()

	if err := m.waitForSocket(); err != nil {
		select {
		case <-exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killGroup(cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.ready.Store(true)

	// SetPaused may have been called after args were built.
	if err := m.applyPause(); err != nil {
		log.Warnf("mpv: apply pause: %s", err)
	}
	return nil
}

// Wait returns a channel that is closed when the mpv process exits.
func (m *MPV) Wait() <-chan struct{} {
	m.life.Lock()
	defer m.life.Unlock()
	return m.exited
}

func (m *MPV) running() bool {
	if m.socketPath == "" {
		return false
	}
	select {
	case <-m.exited:
		return false
	default:
		return true
	}
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

// onEvent translates mpv notifications into core callbacks.
func (m *MPV) onEvent(name string, data interface{}) {
	switch name {
	case "eof-reached":
		if reached, _ := data.(bool); reached {
			m.cb.EndOfStreamReached()
		}
	case "paused-for-cache":
		if starved, _ := data.(bool); starved {
			m.cb.PlaybackBufferEmpty(true)
		} else {
			m.cb.PlaybackLikelyToKeepUp(true)
		}
	case "demuxer-cache-state":
		if start, duration, ok := parseCacheState(data); ok {
			m.cb.BufferedRangeUpdate(start, duration)
		}
	case "duration":
		if d, ok := data.(float64); ok && d > 0 {
			m.cb.ItemStatusChanged(playback.ItemReadyToPlay, d)
		}
	case "file-loaded":
		d, err := m.GetDuration()
		if err != nil {
			// Live streams have no duration.
			d = 0
		}
		m.cb.ItemStatusChanged(playback.ItemReadyToPlay, d)
	case "end-file":
		event, _ := data.(map[string]interface{})
		if reason, _ := event["reason"].(string); reason == "error" {
			log.Errorf("mpv end-file: %v", event["file_error"])
			m.cb.ItemStatusChanged(playback.ItemFailed, 0)
		}
	}
}

// GetTimePos returns the current playback position in seconds.
func (m *MPV) GetTimePos() (float64, error) {
	return m.getFloatProperty("time-pos")
}

// GetDuration returns the total duration of the current media in seconds.
func (m *MPV) GetDuration() (float64, error) {
	return m.getFloatProperty("duration")
}

// Seek moves playback to an absolute position. done runs on another goroutine.
func (m *MPV) Seek(seconds float64, done func(ok bool)) {
	m.pending.Add(1)
	go func() {
		defer m.pending.Done()
		_, err := m.sendCommand("seek", seconds, "absolute+exact")
		if err != nil {
			log.Warnf("mpv seek to %.2f: %s", seconds, err)
		}
		done(err == nil)
	}()
}

// SetPaused sets mpv's pause property. Before launch the state is
// remembered and applied once the socket is up.
func (m *MPV) SetPaused(paused bool) error {
	m.paused.Store(paused)
	if !m.ready.Load() {
		return nil
	}
	return m.applyPause()
}

func (m *MPV) applyPause() error {
	m.pauseMu.Lock()
	defer m.pauseMu.Unlock()
	return m.Set("pause", m.paused.Load())
}

// SetVolume sets the volume from a 0..1 level. Before launch the level is
// remembered for the command line.
func (m *MPV) SetVolume(volume float64) error {
	m.volume.Store(math.Float64bits(volume))
	if !m.ready.Load() {
		return nil
	}
	return m.Set("volume", volume*100)
}

// startTicker polls time-pos and duration at the configured interval.
func (m *MPV) startTicker() {
	if m.tickerStop != nil {
		return
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	exited := m.exited
	m.tickerStop, m.tickerDone = stop, done

	go func() {
		defer close(done)

		ticker := time.NewTicker(m.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-exited:
				return
			case <-ticker.C:
				pos, err := m.GetTimePos()
				if err != nil {
					continue
				}

				dur, err := m.GetDuration()
				if err != nil {
					dur = 0
				}

				m.cb.PeriodicTimeUpdate(pos, dur)
			}
		}
	}()
}

func (m *MPV) stopTicker() {
	if m.tickerStop == nil {
		return
	}
	close(m.tickerStop)
	<-m.tickerDone
	m.tickerStop, m.tickerDone = nil, nil
}

// Close shuts down mpv and waits for every background goroutine.
func (m *MPV) Close() error {
	m.closing.Store(true)

	m.life.Lock()
	m.stopTicker()
	if m.listener != nil {
		m.listener.Stop()
		m.listener = nil
	}

	if m.running() {
		_, _ = m.sendCommand("quit")

		select {
		case <-m.exited:
		case <-time.After(quitTimeout):
			_ = killGroup(m.cmd)
			<-m.exited
		}
	}
	socketPath := m.socketPath
	m.life.Unlock()

	// Loads started before Close observe closing once they get the lock.
	m.pending.Wait()

	if socketPath != "" {
		_ = os.Remove(socketPath)
	}

	return nil
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.socketPath
}

// Set writes an mpv property.
func (m *MPV) Set(property string, value interface{}) error {
	_, err := m.sendCommand("set_property", property, value)
	return err
}

// getFloatProperty is a helper to retrieve a float64 mpv property via IPC.
func (m *MPV) getFloatProperty(name string) (float64, error) {
	data, err := m.sendCommand("get_property", name)
	if err != nil {
		return 0, err
	}

	if data == nil {
		return 0, fmt.Errorf("property %s: nil response", name)
	}

	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected float64, got %T", name, data)
	}

	return val, nil
}

// sanitizeMediaTarget validates that a target is safe to pass to mpv.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	// A leading dash would be parsed as an mpv flag.
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

// sanitizeTitle strips characters that break the mpv command line.
func sanitizeTitle(title string) string {
	t := strings.ReplaceAll(title, "\n", " ")
	t = strings.ReplaceAll(t, "\r", " ")
	t = strings.ReplaceAll(t, "\t", " ")
	t = strings.ReplaceAll(t, "\x00", "")
	return strings.TrimSpace(t)
}
