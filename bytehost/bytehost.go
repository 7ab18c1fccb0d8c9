// Package bytehost serves large, out-of-band byte buffers (meshes, images)
// over plain HTTP rather than CBOR/WebSocket, so a Buffer component's
// uri_bytes field can point clients at a URL instead of inlining megabytes
// into a frame (SPEC_FULL §C.7). Grounded on
// original_source/rigatoni/geometry/byte_server.py's ByteServer, reimplemented
// over net/http rather than a hand-rolled socket/HTTP parser - the original's
// raw socket.socket loop and regex-based request parsing exist only because
// Python's standard library offers nothing as direct as net/http for this.
package bytehost

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/noodles-run/noodles-server/types"
)

// Publisher is the narrow interface geometry.CreateGeometryFromPoints
// accepts for large buffers that should not be inlined into a frame
// (SPEC_FULL §C.7). *Host implements it.
type Publisher interface {
	Publish(data []byte) (uri string)
}

// Host maps opaque tags to byte buffers and serves them over HTTP, mirroring
// ByteServer.add_buffer/get_buffer.
type Host struct {
	baseURL string
	logger  types.Logger

	mu      sync.RWMutex
	buffers map[string][]byte
	nextTag atomic.Uint64
}

// New constructs a Host whose public URLs are rooted at baseURL (e.g.
// "http://192.168.1.12:8000" - the same host:port the HTTP server in Serve
// will listen on). log may be nil, in which case types.DefaultLogger() is
// used.
func New(baseURL string, log types.Logger) *Host {
	if log == nil {
		log = types.DefaultLogger()
	}
	return &Host{baseURL: baseURL, logger: log, buffers: make(map[string][]byte)}
}

// Publish stores data and returns the URL clients can fetch it from,
// mirroring ByteServer.add_buffer.
func (h *Host) Publish(data []byte) string {
	tag := strconv.FormatUint(h.nextTag.Add(1)-1, 10)

	h.mu.Lock()
	h.buffers[tag] = data
	h.mu.Unlock()

	url := fmt.Sprintf("%s/%s", h.baseURL, tag)
	h.logger.Infof("added buffer to byte host: %s (%d bytes)", url, len(data))
	return url
}

// ServeHTTP implements http.Handler: GET /{tag} returns the stored buffer as
// application/octet-stream, or 404 if the tag is unknown - the Go
// equivalent of ByteServer._run's request loop, minus its hand-rolled HTTP
// parsing.
func (h *Host) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	tag := r.URL.Path
	for len(tag) > 0 && tag[0] == '/' {
		tag = tag[1:]
	}

	h.mu.RLock()
	data, ok := h.buffers[tag]
	h.mu.RUnlock()
	if !ok {
		http.Error(w, "unknown buffer tag", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Serve starts an HTTP server for h on addr (host:port) and blocks until it
// errors or is shut down - the long-running counterpart to ByteServer's
// background thread, run by the caller on its own goroutine.
func Serve(addr string, h *Host) error {
	srv := &http.Server{Addr: addr, Handler: h}
	return srv.ListenAndServe()
}

// LocalURL builds a baseURL of the form http://<host>:<port> using the
// machine's outbound IP, mirroring ByteServer's socket.gethostbyname(name)
// resolution (SPEC_FULL §C.7) - needed because uri_bytes must be reachable
// by remote clients, not just 127.0.0.1.
func LocalURL(port int) (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return fmt.Sprintf("http://127.0.0.1:%d", port), nil
	}
	defer conn.Close()
	host, _, err := net.SplitHostPort(conn.LocalAddr().String())
	if err != nil {
		return fmt.Sprintf("http://127.0.0.1:%d", port), nil
	}
	return fmt.Sprintf("http://%s:%d", host, port), nil
}
