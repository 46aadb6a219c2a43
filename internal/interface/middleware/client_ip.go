package middleware

import (
	"net"

	"github.com/gin-gonic/gin"
)

const CtxRealIPKey = "real_ip"

// ForwardingHeaders are consulted, in order, for requests arriving from a
// trusted proxy.
var ForwardingHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

// TrustProxies makes gin honour ForwardingHeaders only when the direct peer
// is one of proxies (IPs or CIDRs). With no proxies every forwarding header
// is ignored and the peer address is used.
func TrustProxies(e *gin.Engine, proxies []string) error {
	e.ForwardedByClientIP = true
	e.RemoteIPHeaders = ForwardingHeaders
	if len(proxies) == 0 {
		return e.SetTrustedProxies(nil)
	}
	return e.SetTrustedProxies(proxies)
}

// RealIP resolves the caller address once per request.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(CtxRealIPKey, c.ClientIP())
		c.Next()
	}
}

// ClientIP returns the address stored by RealIP, or "unknown".
func ClientIP(c *gin.Context) string {
	if ip := c.GetString(CtxRealIPKey); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// SkipPrivateIP lets loopback and private-range callers bypass rate limiting.
func SkipPrivateIP() SkipFunc {
	return func(c *gin.Context) bool {
		ip := net.ParseIP(ClientIP(c))
		return ip != nil && (ip.IsLoopback() || ip.IsPrivate())
	}
}
