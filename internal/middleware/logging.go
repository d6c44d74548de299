package middleware

import (
	"bytes"
	"io"
	"regexp"
	"strings"
	"time"

	"worklog_go/pkg/log"

	"github.com/gin-gonic/gin"
)

// 超过该长度的 body 只记录前缀
const maxLoggedBody = 2048

var sensitiveField = regexp.MustCompile(`"(password|refresh_token|access_token)"\s*:\s*"[^"]*"`)

// BodyLogWriter 用于记录响应的 body
type BodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write 实现了 io.Writer 接口，将响应写入 gin.ResponseWriter 和一个内部的 buffer
func (w *BodyLogWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// RequestLogger 记录每个请求的耗时、状态码以及请求/响应 body。
// multipart 上传不读取 body。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		var requestBody []byte
		if c.Request.Body != nil && !isMultipart(c.Request.Header.Get("Content-Type")) {
			requestBody, _ = io.ReadAll(c.Request.Body)
			// 重新设置回去，后续处理函数才能读取
			c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
		}

		blw := &BodyLogWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = blw

		c.Next()

		log.Infow("HTTP request",
			"latency", time.Since(startTime),
			"status", c.Writer.Status(),
			"client_ip", c.ClientIP(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"request_body", truncateBody(string(requestBody)),
			"response_body", truncateBody(blw.body.String()),
		)
	}
}

func isMultipart(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "multipart/")
}

func truncateBody(s string) string {
	s = sensitiveField.ReplaceAllString(s, `"$1":"***"`)
	if len(s) <= maxLoggedBody {
		return s
	}
	return s[:maxLoggedBody] + "...(truncated)"
}
