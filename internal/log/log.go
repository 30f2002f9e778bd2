// Package log writes one JSON object per line for catalog events: API
// mutations, rejected requests, loader progress and server lifecycle.
package log

import (
	"encoding/json"
	"io"
	"log"
	"maps"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
)

const startKey = "log.start"

type entry struct {
	TS        string         `json:"ts"`
	Level     string         `json:"level"`
	Action    string         `json:"action"`
	ReqID     string         `json:"req_id,omitempty"`
	RunID     string         `json:"run_id,omitempty"`
	IP        string         `json:"ip,omitempty"`
	Method    string         `json:"method,omitempty"`
	Route     string         `json:"route,omitempty"`
	Path      string         `json:"path,omitempty"`
	Status    int            `json:"status,omitempty"`
	LatencyMS float64        `json:"latency_ms,omitempty"`
	Err       string         `json:"err,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

func write(level string, c *fiber.Ctx, action string, err error, fields map[string]any) {
	e := entry{TS: time.Now().UTC().Format(time.RFC3339), Level: level, Action: action}
	if c != nil {
		e.IP = c.IP()
		e.Method = c.Method()
		e.Route = c.Route().Path
		e.Path = c.Path()
		e.Status = c.Response().StatusCode()
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			e.ReqID = rid
		}
		if start, ok := c.Locals(startKey).(time.Time); ok {
			e.LatencyMS = float64(time.Since(start).Microseconds()) / 1000
		}
	}
	// loader lines carry their run id at the top level
	if id, ok := fields["run_id"].(string); ok {
		e.RunID = id
		fields = maps.Clone(fields)
		delete(fields, "run_id")
	}
	if len(fields) > 0 {
		e.Fields = fields
	}
	if err != nil {
		e.Err = err.Error()
	}
	b, _ := json.Marshal(e)
	log.Println(string(b))
}

// Start stamps the request start so entries written while handling it
// report latency_ms.
func Start() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(startKey, time.Now())
		return c.Next()
	}
}

// Tee duplicates log output into path (append mode). The returned closer
// releases the file; on error the standard logger is left untouched.
func Tee(path string) (io.Closer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(io.MultiWriter(os.Stdout, f))
	return f, nil
}

// c may be nil for events outside a request (startup, loader).
func Info(c *fiber.Ctx, action string, fields map[string]any) { write("info", c, action, nil, fields) }

// Audit records a catalog mutation.
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write("audit", c, action, nil, fields)
}

// Warn records a rejected request: bad input or a rate-limit hit.
func Warn(c *fiber.Ctx, action string, fields map[string]any) {
	write("warn", c, action, nil, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write("error", c, action, err, fields)
}
