// Package lambdaproxy runs an http.Handler behind AWS Lambda. It converts API
// Gateway v2 HTTP events into *http.Request values, serves them in-process and
// converts the recorded response back into an event response.
package lambdaproxy

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// Handler is the function signature lambda.Start expects.
type Handler func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

// New adapts h. A malformed event yields a 400 response, never an invocation
// error.
func New(h http.Handler) Handler {
	return func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		req, err := Request(ctx, evt)
		if err != nil {
			return events.APIGatewayV2HTTPResponse{
				StatusCode: http.StatusBadRequest,
				Headers:    map[string]string{"Content-Type": "text/plain; charset=utf-8"},
				Body:       "invalid request",
			}, nil
		}

		w := newRecorder()
		h.ServeHTTP(w, req)
		return w.response(), nil
	}
}

// Request builds the *http.Request an event describes.
func Request(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (*http.Request, error) {
	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := evt.RawPath
	if path == "" {
		path = evt.RequestContext.HTTP.Path
	}
	if path == "" {
		path = "/"
	}

	u := &url.URL{Path: path, RawQuery: evt.RawQueryString}
	if evt.RawQueryString == "" && len(evt.QueryStringParameters) > 0 {
		q := url.Values{}
		for k, v := range evt.QueryStringParameters {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	body := []byte(evt.Body)
	if evt.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(evt.Body)
		if err != nil {
			return nil, fmt.Errorf("lambdaproxy: decode body: %w", err)
		}
		body = decoded
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("lambdaproxy: build request: %w", err)
	}
	for k, v := range evt.Headers {
		req.Header.Set(k, v)
	}
	if len(evt.Cookies) > 0 {
		req.Header.Set("Cookie", strings.Join(evt.Cookies, "; "))
	}

	req.Host = evt.RequestContext.DomainName
	if h := req.Header.Get("Host"); req.Host == "" && h != "" {
		req.Host = h
	}
	req.ContentLength = int64(len(body))
	if ip := evt.RequestContext.HTTP.SourceIP; ip != "" {
		req.RemoteAddr = ip + ":0"
	}
	if req.Header.Get("X-Request-ID") == "" && evt.RequestContext.RequestID != "" {
		req.Header.Set("X-Request-ID", evt.RequestContext.RequestID)
	}
	return req, nil
}

// recorder is a minimal http.ResponseWriter that buffers the response.
type recorder struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newRecorder() *recorder { return &recorder{header: http.Header{}} }

func (r *recorder) Header() http.Header { return r.header }

func (r *recorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.body.Write(b)
}

func (r *recorder) response() events.APIGatewayV2HTTPResponse {
	status := r.status
	if status == 0 {
		status = http.StatusOK
	}

	out := events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{},
	}
	for k, vv := range r.header {
		if http.CanonicalHeaderKey(k) == "Set-Cookie" {
			out.Cookies = append(out.Cookies, vv...)
			continue
		}
		out.Headers[k] = strings.Join(vv, ",")
	}

	if binaryBody(r.header) {
		out.Body = base64.StdEncoding.EncodeToString(r.body.Bytes())
		out.IsBase64Encoded = true
	} else {
		out.Body = r.body.String()
	}
	return out
}

// binaryBody reports whether the body must be base64-encoded for the gateway.
func binaryBody(h http.Header) bool {
	if enc := h.Get("Content-Encoding"); enc != "" && enc != "identity" {
		return true
	}
	ct := strings.ToLower(h.Get("Content-Type"))
	switch {
	case ct == "",
		strings.HasPrefix(ct, "text/"),
		strings.Contains(ct, "json"),
		strings.Contains(ct, "xml"),
		strings.Contains(ct, "javascript"):
		return false
	}
	return true
}
