package httpapi

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
)

// userIDFromRequest resolves the placing user. Clients that authenticate
// upstream pass an explicit X-User-ID header; everyone else is identified
// by a hash of their client address so raw IPs never reach the journal.
func userIDFromRequest(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-User-ID")); id != "" {
		return id
	}
	sum := sha256.Sum256([]byte(clientAddr(r)))
	return "anon-" + hex.EncodeToString(sum[:8])
}

// clientAddr returns the originating client address, honoring the first
// entry of X-Forwarded-For when a proxy sits in front of the server.
func clientAddr(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if addr := strings.TrimSpace(first); addr != "" {
			return addr
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
