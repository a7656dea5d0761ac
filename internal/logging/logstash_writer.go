package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"sync"
	"time"
)

// LogstashWriter mirrors log lines to a Logstash json_lines TCP input. It
// keeps one connection open and drops writes while Logstash is unreachable,
// so logging never blocks on the network.
type LogstashWriter struct {
	addr          string
	service       string
	dialTimeout   time.Duration
	writeTimeout  time.Duration
	retryInterval time.Duration
	dial          func(network, addr string, timeout time.Duration) (net.Conn, error)
	now           func() time.Time

	mu        sync.Mutex
	conn      net.Conn
	nextRetry time.Time
	closed    bool
}

type Option func(*LogstashWriter)

// WithDialTimeout overrides the TCP dial timeout. Defaults to 2 seconds.
func WithDialTimeout(d time.Duration) Option {
	return func(w *LogstashWriter) {
		w.dialTimeout = d
	}
}

// WithWriteTimeout overrides the TCP write timeout. Defaults to 1 second.
func WithWriteTimeout(d time.Duration) Option {
	return func(w *LogstashWriter) {
		w.writeTimeout = d
	}
}

// WithRetryInterval overrides the pause after a failed connect or write.
// Defaults to 5 seconds.
func WithRetryInterval(d time.Duration) Option {
	return func(w *LogstashWriter) {
		w.retryInterval = d
	}
}

// WithService tags every forwarded event with a service name.
func WithService(name string) Option {
	return func(w *LogstashWriter) {
		w.service = strings.TrimSpace(name)
	}
}

func NewLogstashWriter(addr string, opts ...Option) (*LogstashWriter, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, errors.New("logstash: empty address")
	}

	w := &LogstashWriter{
		addr:          addr,
		dialTimeout:   2 * time.Second,
		writeTimeout:  time.Second,
		retryInterval: 5 * time.Second,
		dial:          net.DialTimeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Setup points the standard logger at stderr and, when addr is set, at
// Logstash as well. The returned closer is a no-op without Logstash.
func Setup(addr, service string) (io.Closer, error) {
	log.SetFlags(log.LstdFlags | log.LUTC)
	if strings.TrimSpace(addr) == "" {
		log.SetOutput(os.Stderr)
		return io.NopCloser(nil), nil
	}
	w, err := NewLogstashWriter(addr, WithService(service))
	if err != nil {
		return nil, err
	}
	log.SetOutput(io.MultiWriter(os.Stderr, w))
	return w, nil
}

// Write implements io.Writer. It always reports success to the caller; lines
// that cannot be delivered are dropped until the next retry window.
func (w *LogstashWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	data := w.encode(p)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, io.ErrClosedPipe
	}
	if err := w.ensureConnLocked(); err != nil {
		return len(p), nil
	}
	if w.writeTimeout > 0 {
		_ = w.conn.SetWriteDeadline(w.now().Add(w.writeTimeout))
	}
	if _, err := w.conn.Write(data); err != nil {
		w.closeConnLocked()
		w.scheduleRetryLocked()
	}
	return len(p), nil
}

func (w *LogstashWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.closeConnLocked()
}

// encode turns one log line into a single JSON event. The access log already
// writes JSON after the standard log prefix; that object is merged in as is.
// Anything else becomes the event message.
func (w *LogstashWriter) encode(p []byte) []byte {
	line := bytes.TrimRight(p, "\r\n")
	event := map[string]any{}
	if i := bytes.IndexByte(line, '{'); i >= 0 && json.Valid(line[i:]) {
		if err := json.Unmarshal(line[i:], &event); err != nil {
			event = map[string]any{}
		}
	}
	if len(event) == 0 {
		event["message"] = string(line)
	}
	if _, ok := event["@timestamp"]; !ok {
		event["@timestamp"] = w.now().UTC().Format(time.RFC3339Nano)
	}
	if w.service != "" {
		event["service"] = w.service
	}

	data, err := json.Marshal(event)
	if err != nil {
		data = append([]byte(nil), line...)
	}
	return append(data, '\n')
}

func (w *LogstashWriter) ensureConnLocked() error {
	if w.conn != nil {
		return nil
	}
	if !w.nextRetry.IsZero() && w.now().Before(w.nextRetry) {
		return errRetryCooldown
	}

	conn, err := w.dial("tcp", w.addr, w.dialTimeout)
	if err != nil {
		w.scheduleRetryLocked()
		return err
	}
	w.conn = conn
	w.nextRetry = time.Time{}
	return nil
}

func (w *LogstashWriter) closeConnLocked() error {
	if w.conn == nil {
		return nil
	}
	err := w.conn.Close()
	w.conn = nil
	return err
}

func (w *LogstashWriter) scheduleRetryLocked() {
	if w.retryInterval <= 0 {
		w.nextRetry = time.Time{}
		return
	}
	w.nextRetry = w.now().Add(w.retryInterval)
}

var errRetryCooldown = errors.New("logstash: retry cooldown in effect")
