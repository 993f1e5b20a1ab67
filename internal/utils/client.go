package utils

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mssola/user_agent"
)

// GetRealIP extracts the client IP, preferring proxy headers over the socket
// address. X-Real-IP wins, then the first public entry of X-Forwarded-For,
// then gin's ClientIP fallback.
func GetRealIP(c *gin.Context) string {
	realIP := strings.TrimSpace(c.Request.Header.Get("X-Real-IP"))
	if realIP != "" && isValidIP(realIP) && !isPrivateIP(net.ParseIP(realIP)) {
		return realIP
	}

	forwarded := c.Request.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		ips := strings.Split(forwarded, ",")
		for _, ipStr := range ips {
			clientIP := strings.TrimSpace(ipStr)
			if isValidIP(clientIP) && !isPrivateIP(net.ParseIP(clientIP)) {
				return clientIP
			}
		}
		if first := strings.TrimSpace(ips[0]); isValidIP(first) {
			return first
		}
	}

	return c.ClientIP()
}

// GetUserAgent extracts the User-Agent header from the request
func GetUserAgent(c *gin.Context) string {
	ua := c.Request.UserAgent()
	if ua == "" {
		return "Unknown"
	}
	return ua
}

// ParseUserAgent breaks a user agent string into the fields the audit trail
// stores.
func ParseUserAgent(uaString string) map[string]interface{} {
	ua := user_agent.New(uaString)
	browser, version := ua.Browser()

	return map[string]interface{}{
		"browser":         browser,
		"browser_version": version,
		"os":              ua.OS(),
		"platform":        ua.Platform(),
		"mobile":          ua.Mobile(),
		"bot":             ua.Bot(),
	}
}

func isValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}

func isPrivateIP(ip net.IP) bool {
	if ip == nil {
		return false
	}
	return ip.IsPrivate() || ip.IsLoopback()
}
