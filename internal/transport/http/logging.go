package http

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	requestBodyLogKey  = "http.request.body.summary"
	responseBodyLogKey = "http.response.body.summary"
	maxLoggedBody      = 2048
	redacted           = "redacted"
)

// sensitiveKeys are matched as substrings of lowercased JSON, form and query
// keys.
var sensitiveKeys = []string{"token", "authorization", "api_key", "apikey", "secret", "password"}

type accessLogEntry struct {
	Time      string `json:"time"`
	UserUUID  string `json:"user_uuid"`
	LatencyMS int64  `json:"latency_ms"`
	Request   struct {
		Method string `json:"method"`
		URI    string `json:"uri"`
		Body   any    `json:"body,omitempty"`
	} `json:"request"`
	Response struct {
		Status int    `json:"status"`
		Body   any    `json:"body,omitempty"`
		Error  string `json:"error,omitempty"`
	} `json:"response"`
}

func registerLogging(e *echo.Echo) {
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := accessLogEntry{
				Time:      v.StartTime.UTC().Format(time.RFC3339),
				UserUUID:  "anonymous",
				LatencyMS: v.Latency.Milliseconds(),
			}
			if user, ok := CurrentUser(c); ok {
				entry.UserUUID = user.ID.String()
			}
			entry.Request.Method = v.Method
			entry.Request.URI = redactURI(v.URI)
			entry.Request.Body = c.Get(requestBodyLogKey)
			entry.Response.Status = v.Status
			entry.Response.Body = c.Get(responseBodyLogKey)
			if v.Error != nil {
				entry.Response.Error = v.Error.Error()
			}

			buf, err := json.Marshal(entry)
			if err != nil {
				return err
			}
			log.Println(string(buf))
			return nil
		},
	}))

	e.Use(middleware.BodyDump(func(c echo.Context, reqBody, resBody []byte) {
		if summary := sanitizeBody(reqBody, c.Request().Header.Get(echo.HeaderContentType)); summary != nil {
			c.Set(requestBodyLogKey, summary)
		}
		if summary := sanitizeBody(resBody, c.Response().Header().Get(echo.HeaderContentType)); summary != nil {
			c.Set(responseBodyLogKey, summary)
		}
	}))
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// redactURI hides sensitive query values such as the page token.
func redactURI(uri string) string {
	parsed, err := url.ParseRequestURI(uri)
	if err != nil || parsed.RawQuery == "" {
		return uri
	}
	values := parsed.Query()
	changed := false
	for key := range values {
		if isSensitiveKey(key) {
			values.Set(key, redacted)
			changed = true
		}
	}
	if !changed {
		return uri
	}
	parsed.RawQuery = values.Encode()
	return parsed.RequestURI()
}

func sanitizeBody(body []byte, contentType string) any {
	if len(body) == 0 {
		return nil
	}
	lowered := strings.ToLower(strings.TrimSpace(contentType))

	switch {
	case strings.HasPrefix(lowered, "text/html"):
		return fmt.Sprintf("html (%d bytes)", len(body))
	case strings.HasPrefix(lowered, "text/csv"):
		return fmt.Sprintf("csv (%d bytes)", len(body))
	case strings.HasPrefix(lowered, "application/json") || json.Valid(body):
		var data any
		if err := json.Unmarshal(body, &data); err == nil {
			return limitJSONSize(sanitizeJSON(data))
		}
	case strings.HasPrefix(lowered, "application/x-www-form-urlencoded"):
		if values, err := url.ParseQuery(string(body)); err == nil && len(values) > 0 {
			fields := make(map[string]any, len(values))
			for key, vals := range values {
				if isSensitiveKey(key) {
					fields[key] = redacted
					continue
				}
				fields[key] = clampString(strings.Join(vals, ","))
			}
			return limitJSONSize(fields)
		}
	}

	if containsBinaryBytes(body) {
		return "binary"
	}
	return clampString(string(body))
}

func sanitizeJSON(value any) any {
	switch v := value.(type) {
	case map[string]any:
		result := make(map[string]any, len(v))
		for key, val := range v {
			if isSensitiveKey(key) {
				result[key] = redacted
				continue
			}
			result[key] = sanitizeJSON(val)
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, item := range v {
			result[i] = sanitizeJSON(item)
		}
		return result
	case string:
		if containsBinaryBytes([]byte(v)) {
			return "binary"
		}
		return clampString(v)
	default:
		return v
	}
}

// limitJSONSize swaps values that encode larger than maxLoggedBody for a
// shallow preview.
func limitJSONSize(value any) any {
	buf, err := json.Marshal(value)
	if err != nil || len(buf) <= maxLoggedBody {
		return value
	}
	return map[string]any{
		"_truncated": true,
		"_preview":   previewJSON(value, 0),
	}
}

func previewJSON(value any, depth int) any {
	const (
		maxDepth         = 3
		maxMapEntries    = 6
		maxArraySamples  = 2
		maxStringPreview = 160
	)
	if depth >= maxDepth {
		return "...(omitted)..."
	}

	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		result := make(map[string]any, maxMapEntries+1)
		for i, key := range keys {
			if i == maxMapEntries {
				result["_omitted_fields"] = len(keys) - i
				break
			}
			result[key] = previewJSON(v[key], depth+1)
		}
		return result
	case []any:
		sample := make([]any, 0, maxArraySamples)
		for i := 0; i < len(v) && i < maxArraySamples; i++ {
			sample = append(sample, previewJSON(v[i], depth+1))
		}
		return map[string]any{"_total_items": len(v), "_sample": sample}
	case string:
		return truncateUTF8(v, maxStringPreview)
	default:
		return v
	}
}

func containsBinaryBytes(data []byte) bool {
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			return true
		}
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return true
		}
		data = data[size:]
	}
	return false
}

func clampString(value string) string {
	return truncateUTF8(value, maxLoggedBody)
}

func truncateUTF8(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	truncated := value[:limit]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated + "...(truncated)"
}
