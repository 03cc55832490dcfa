package gelf

import (
	"encoding/json"
	"net"
	"os"
	"strings"
	"time"

	"github.com/tenantkyc/kycdesk/internal/metrics"
)

// Writer sends GELF messages over UDP. It expects one JSON-encoded zap entry
// per Write and implements zapcore.WriteSyncer so it can back a zap core.
type Writer struct {
	conn     net.Conn
	hostname string
	service  string
}

// New creates a GELF UDP writer connected to addr (e.g. "172.17.0.1:12201").
func New(addr, service string) (*Writer, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, err
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = service + "-server"
	}

	return &Writer{conn: conn, hostname: hostname, service: service}, nil
}

// Write converts one zap JSON entry to a GELF message and sends it.
// Log delivery is best effort; Write never fails the log call. Dropped
// messages are counted under operation "gelf".
func (w *Writer) Write(p []byte) (int, error) {
	payload, err := json.Marshal(w.message(p))
	if err == nil {
		_, err = w.conn.Write(payload)
	}
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("gelf").Inc()
	}
	return len(p), nil
}

func (w *Writer) Sync() error { return nil }

func (w *Writer) Close() error { return w.conn.Close() }

// message maps the zap entry onto GELF 1.1. Unknown keys become additional
// fields prefixed with an underscore.
func (w *Writer) message(p []byte) map[string]any {
	line := strings.TrimRight(string(p), "\n")
	msg := map[string]any{
		"version":   "1.1",
		"host":      w.hostname,
		"timestamp": float64(time.Now().UnixNano()) / 1e9,
		"level":     6,
		"_service":  w.service,
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		msg["short_message"] = line
		return msg
	}

	short, _ := entry["msg"].(string)
	if short == "" {
		short = line
	}
	msg["short_message"] = short
	if lvl, ok := entry["level"].(string); ok {
		msg["level"] = syslogLevel(lvl)
	}
	for k, v := range entry {
		switch k {
		case "msg", "level", "ts":
			continue
		case "id":
			k = "entry_id"
		}
		msg["_"+k] = v
	}
	return msg
}

func syslogLevel(zapLevel string) int {
	switch zapLevel {
	case "debug":
		return 7
	case "info":
		return 6
	case "warn":
		return 4
	case "error":
		return 3
	case "dpanic", "panic":
		return 2
	case "fatal":
		return 1
	}
	return 6
}
