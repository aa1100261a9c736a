package jsonrpc

import (
	"net"
	"net/http"
	"strings"

	"github.com/mezonai/token/logx"
)

// JSON-RPC Method name constants
const (
	// Token methods
	MethodTokenInfo        = "token.info"
	MethodTokenBalanceOf   = "token.balanceof"
	MethodTokenTotalSupply = "token.totalsupply"
	MethodTokenTransfer    = "token.transfer"

	// Account methods
	MethodAccountGetCurrentNonce = "account.getcurrentnonce"

	// Health methods
	MethodHealthCheck = "health.check"
)

// JSON-RPC error codes
const (
	codeInvalidParams = -32602
	codeServerError   = -32000
)

func extractClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		logx.Debug("SECURITY", "X-Forwarded-For: ", xff)
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	return "unknown"
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
