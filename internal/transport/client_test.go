package transport

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

// TestNewClient tests the Client constructor.
func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("empty proxy creates a direct client", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient(Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.ProxyAddress() != "" {
			t.Errorf("ProxyAddress() = %q, expected empty", client.ProxyAddress())
		}
	})

	t.Run("valid proxy address creates client", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient(Options{ProxyAddress: "127.0.0.1:9050"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.ProxyAddress() != "127.0.0.1:9050" {
			t.Errorf("ProxyAddress() = %q, expected %q", client.ProxyAddress(), "127.0.0.1:9050")
		}
	})

	t.Run("address without port returns error", func(t *testing.T) {
		t.Parallel()

		_, err := NewClient(Options{ProxyAddress: "127.0.0.1"})
		if !errors.Is(err, ErrInvalidProxyAddress) {
			t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
		}
	})
}

// TestIsValidProxyAddress tests the proxy address validation function.
func TestIsValidProxyAddress(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		address  string
		expected bool
	}{
		{"valid IPv4 with port", "127.0.0.1:9050", true},
		{"valid localhost with port", "localhost:1080", true},
		{"valid hostname with port", "proxy.example.com:1080", true},
		{"valid IPv6 with port", "[::1]:1080", true},
		{"empty string", "", false},
		{"no port", "127.0.0.1", false},
		{"empty host", ":9050", false},
		{"empty port", "127.0.0.1:", false},
		{"multiple colons", "127.0.0.1:9050:extra", false},
		{"port zero", "127.0.0.1:0", false},
		{"port too large", "127.0.0.1:65536", false},
		{"non-numeric port", "127.0.0.1:socks", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := isValidProxyAddress(tc.address); got != tc.expected {
				t.Errorf("isValidProxyAddress(%q) = %v, expected %v", tc.address, got, tc.expected)
			}
		})
	}
}

// TestProxyStatus tests ProxyStatus String and Error.
func TestProxyStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status  ProxyStatus
		str     string
		wantErr error
	}{
		{ProxyStatusOK, "OK", nil},
		{ProxyStatusDirect, "direct", nil},
		{ProxyStatusWrongType, "wrong type (not SOCKS5)", ErrProxyNotSOCKS5},
		{ProxyStatusCannotConnect, "cannot connect", ErrProxyCannotConnect},
		{ProxyStatusTimeout, "timeout", ErrProxyTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			t.Parallel()

			if tt.status.String() != tt.str {
				t.Errorf("String() = %q, expected %q", tt.status.String(), tt.str)
			}
			if !errors.Is(tt.status.Error(), tt.wantErr) {
				t.Errorf("Error() = %v, expected %v", tt.status.Error(), tt.wantErr)
			}
		})
	}
}

// startListener starts a TCP listener whose connections are served by handle.
func startListener(t *testing.T, handle func(net.Conn)) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				handle(conn)
			}()
		}
	}()
	return ln.Addr().String()
}

// serveSOCKS5 implements just enough of SOCKS5 CONNECT (no auth, IPv4 and
// domain targets) to tunnel a test HTTP request.
func serveSOCKS5(used *atomic.Int32) func(net.Conn) {
	return func(conn net.Conn) {
		greeting := make([]byte, 2)
		if _, err := io.ReadFull(conn, greeting); err != nil {
			return
		}
		if _, err := io.ReadFull(conn, make([]byte, greeting[1])); err != nil {
			return
		}
		if _, err := conn.Write([]byte{0x05, 0x00}); err != nil {
			return
		}

		header := make([]byte, 4)
		if _, err := io.ReadFull(conn, header); err != nil {
			return
		}
		var host string
		switch header[3] {
		case 0x01:
			ip := make([]byte, 4)
			if _, err := io.ReadFull(conn, ip); err != nil {
				return
			}
			host = net.IP(ip).String()
		case 0x03:
			n := make([]byte, 1)
			if _, err := io.ReadFull(conn, n); err != nil {
				return
			}
			name := make([]byte, n[0])
			if _, err := io.ReadFull(conn, name); err != nil {
				return
			}
			host = string(name)
		default:
			return
		}
		portBytes := make([]byte, 2)
		if _, err := io.ReadFull(conn, portBytes); err != nil {
			return
		}
		port := binary.BigEndian.Uint16(portBytes)

		target, err := net.Dial("tcp", net.JoinHostPort(host, strconv.Itoa(int(port))))
		if err != nil {
			_, _ = conn.Write([]byte{0x05, 0x04, 0x00, 0x01, 0, 0, 0, 0, 0, 0})
			return
		}
		defer target.Close()
		used.Add(1)

		if _, err := conn.Write([]byte{0x05, 0x00, 0x00, 0x01, 127, 0, 0, 1, 0, 0}); err != nil {
			return
		}

		done := make(chan struct{}, 2)
		go func() { _, _ = io.Copy(target, conn); done <- struct{}{} }()
		go func() { _, _ = io.Copy(conn, target); done <- struct{}{} }()
		<-done
	}
}

// TestCheckProxy tests the SOCKS5 handshake check against fake proxies.
func TestCheckProxy(t *testing.T) {
	t.Parallel()

	t.Run("direct client reports direct", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient(Options{})
		if err != nil {
			t.Fatal(err)
		}
		if got := client.CheckProxy(t.Context()); got != ProxyStatusDirect {
			t.Errorf("expected ProxyStatusDirect, got %v", got)
		}
	})

	t.Run("SOCKS5 proxy is OK", func(t *testing.T) {
		t.Parallel()

		var used atomic.Int32
		addr := startListener(t, serveSOCKS5(&used))
		client, err := NewClient(Options{ProxyAddress: addr})
		if err != nil {
			t.Fatal(err)
		}
		if got := client.CheckProxy(t.Context()); got != ProxyStatusOK {
			t.Errorf("expected ProxyStatusOK, got %v", got)
		}
	})

	t.Run("HTTP server is wrong type", func(t *testing.T) {
		t.Parallel()

		addr := startListener(t, func(conn net.Conn) {
			_, _ = conn.Write([]byte("HTTP/1.1 400 Bad Request\r\n\r\n"))
		})
		client, err := NewClient(Options{ProxyAddress: addr})
		if err != nil {
			t.Fatal(err)
		}
		if got := client.CheckProxy(t.Context()); got != ProxyStatusWrongType {
			t.Errorf("expected ProxyStatusWrongType, got %v", got)
		}
	})

	t.Run("proxy requiring auth is wrong type", func(t *testing.T) {
		t.Parallel()

		addr := startListener(t, func(conn net.Conn) {
			_, _ = io.ReadFull(conn, make([]byte, 3))
			_, _ = conn.Write([]byte{0x05, 0xFF})
		})
		client, err := NewClient(Options{ProxyAddress: addr})
		if err != nil {
			t.Fatal(err)
		}
		if got := client.CheckProxy(t.Context()); got != ProxyStatusWrongType {
			t.Errorf("expected ProxyStatusWrongType, got %v", got)
		}
	})

	t.Run("closed port cannot connect", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatal(err)
		}
		addr := ln.Addr().String()
		ln.Close()

		client, err := NewClient(Options{ProxyAddress: addr})
		if err != nil {
			t.Fatal(err)
		}
		if got := client.CheckProxy(t.Context()); got != ProxyStatusCannotConnect {
			t.Errorf("expected ProxyStatusCannotConnect, got %v", got)
		}
	})
}

// TestNewHTTPClient tests requests made with the built HTTP client.
func TestNewHTTPClient(t *testing.T) {
	t.Parallel()

	t.Run("direct request carries the user agent", func(t *testing.T) {
		t.Parallel()

		var gotUA atomic.Value
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA.Store(r.UserAgent())
			w.WriteHeader(http.StatusNoContent)
		}))
		t.Cleanup(srv.Close)

		client, err := NewClient(Options{UserAgent: "riskbrief-test/1.0", Timeout: 5 * time.Second})
		if err != nil {
			t.Fatal(err)
		}
		resp, err := client.NewHTTPClient().Get(srv.URL)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()

		if gotUA.Load() != "riskbrief-test/1.0" {
			t.Errorf("expected user agent riskbrief-test/1.0, got %v", gotUA.Load())
		}
	})

	t.Run("explicit user agent is kept", func(t *testing.T) {
		t.Parallel()

		var gotUA atomic.Value
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA.Store(r.UserAgent())
		}))
		t.Cleanup(srv.Close)

		client, err := NewClient(Options{UserAgent: "default-agent"})
		if err != nil {
			t.Fatal(err)
		}
		req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL, nil)
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("User-Agent", "sdk-agent")
		resp, err := client.NewHTTPClient().Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()

		if gotUA.Load() != "sdk-agent" {
			t.Errorf("expected sdk-agent, got %v", gotUA.Load())
		}
	})

	t.Run("request is tunneled through the SOCKS5 proxy", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("tunneled"))
		}))
		t.Cleanup(srv.Close)

		var used atomic.Int32
		addr := startListener(t, serveSOCKS5(&used))
		client, err := NewClient(Options{ProxyAddress: addr, Timeout: 5 * time.Second})
		if err != nil {
			t.Fatal(err)
		}

		resp, err := client.NewHTTPClient().Get(srv.URL)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if string(body) != "tunneled" {
			t.Errorf("expected body %q, got %q", "tunneled", body)
		}
		if used.Load() == 0 {
			t.Error("expected the request to go through the proxy")
		}
	})

	t.Run("cancelled context aborts the request", func(t *testing.T) {
		t.Parallel()

		block := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			select {
			case <-block:
			case <-r.Context().Done():
			}
		}))
		t.Cleanup(func() {
			close(block)
			srv.Close()
		})

		client, err := NewClient(Options{})
		if err != nil {
			t.Fatal(err)
		}
		ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
		if err != nil {
			t.Fatal(err)
		}
		_, err = client.NewHTTPClient().Do(req)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded, got %v", err)
		}
	})
}
