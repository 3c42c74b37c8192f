package results

import (
	"fmt"
	"strings"
)

// Protocol is the proxy protocol as reported by the external checker.
type Protocol string

const (
	ProtocolHTTP    Protocol = "HTTP"
	ProtocolHTTPS   Protocol = "HTTPS"
	ProtocolSOCKS4  Protocol = "SOCKS4"
	ProtocolSOCKS5  Protocol = "SOCKS5"
	ProtocolUnknown Protocol = "UNKNOWN"
)

// ParseProtocol maps a source protocol string onto the known set. An empty
// or unrecognized value yields ProtocolUnknown, never an empty protocol.
func ParseProtocol(s string) Protocol {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HTTP":
		return ProtocolHTTP
	case "HTTPS":
		return ProtocolHTTPS
	case "SOCKS4":
		return ProtocolSOCKS4
	case "SOCKS5":
		return ProtocolSOCKS5
	default:
		return ProtocolUnknown
	}
}

// Status describes what we know about a proxy from the artifacts alone.
type Status string

const (
	// StatusWorking means the checker recorded a timeout for the proxy,
	// i.e. it was successfully checked. This derivation is intentional; no
	// liveness probe happens on this side.
	StatusWorking Status = "working"
	StatusUnknown Status = "unknown"
	// StatusListed marks records recovered from the plain text artifacts,
	// which carry no check outcome at all.
	StatusListed Status = "listed"
)

// NotAvailable fills optional fields absent from the source artifact.
const NotAvailable = "N/A"

// Record is the canonical proxy representation every downstream consumer
// operates on, regardless of which artifact it came from. Records are
// immutable once built and are produced fresh on every read; the filesystem
// artifacts are the only persistent store.
type Record struct {
	Proxy    string   `json:"proxy"`
	Protocol Protocol `json:"protocol"`
	Host     string   `json:"host"`
	Port     string   `json:"port"`
	Timeout  string   `json:"timeout,omitempty"`
	ExitIP   string   `json:"exitIp,omitempty"`
	Status   Status   `json:"status"`
	ASNOrg   string   `json:"asnOrg"`
	Country  string   `json:"country"`
}

// displayString renders protocol://[user:pass@]host:port. The scheme is
// included only when the source carried a protocol; credentials only when
// both username and password are present.
func displayString(protocol, username, password, host string, port int) string {
	var sb strings.Builder
	if protocol != "" {
		sb.WriteString(strings.ToLower(protocol))
		sb.WriteString("://")
	}
	if username != "" && password != "" {
		sb.WriteString(username)
		sb.WriteString(":")
		sb.WriteString(password)
		sb.WriteString("@")
	}
	sb.WriteString(host)
	sb.WriteString(":")
	sb.WriteString(fmt.Sprintf("%d", port))
	return sb.String()
}
