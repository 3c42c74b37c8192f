package results

// Stats summarizes a record set for the dashboard.
type Stats struct {
	Working int `json:"working"`
	HTTP    int `json:"http"`
	SOCKS4  int `json:"socks4"`
	SOCKS5  int `json:"socks5"`
}

// ComputeStats counts records by status and protocol. HTTP and HTTPS are
// merged into one bucket. Pure function, no I/O.
func ComputeStats(records []Record) Stats {
	var stats Stats
	for _, r := range records {
		if r.Status == StatusWorking {
			stats.Working++
		}
		switch r.Protocol {
		case ProtocolHTTP, ProtocolHTTPS:
			stats.HTTP++
		case ProtocolSOCKS4:
			stats.SOCKS4++
		case ProtocolSOCKS5:
			stats.SOCKS5++
		}
	}
	return stats
}

// FilterByProtocol returns the records matching protocol. An empty selector
// returns the input unchanged.
func FilterByProtocol(records []Record, protocol Protocol) []Record {
	if protocol == "" {
		return records
	}
	filtered := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Protocol == protocol {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
