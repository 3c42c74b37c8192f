package results

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Mpratama260304/proxy-scraper-checker/internal/shared/logger"
	"github.com/Mpratama260304/proxy-scraper-checker/internal/tool"
)

// structuredProxy mirrors one element of the checker's proxies.json. The
// enrichment objects follow the GeoLite2 record shape the checker embeds.
type structuredProxy struct {
	Protocol string   `json:"protocol"`
	Username *string  `json:"username"`
	Password *string  `json:"password"`
	Host     string   `json:"host"`
	Port     int      `json:"port"`
	ExitIP   *string  `json:"exit_ip"`
	Timeout  *float64 `json:"timeout"`
	ASN      *struct {
		AutonomousSystemOrganization string `json:"autonomous_system_organization"`
	} `json:"asn"`
	Geolocation *struct {
		Country *struct {
			Names map[string]string `json:"names"`
		} `json:"country"`
	} `json:"geolocation"`
}

// LoadRecords normalizes whatever artifacts exist in outputDir into canonical
// records. The structured artifact strictly wins when parseable; otherwise
// the aggregated text file is used; if neither exists the result is an empty
// set, never an error.
func LoadRecords(outputDir string) []Record {
	if records, ok := loadStructured(filepath.Join(outputDir, tool.StructuredArtifact)); ok {
		return records
	}
	return loadTextFallback(filepath.Join(outputDir, tool.TextArtifactDir, tool.AllProtocolsFile))
}

func loadStructured(path string) ([]Record, bool) {
	l := logger.WithComponent("Results/Parser")

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.Warn().Err(err).Str("path", path).Msg("Failed to read structured artifact.")
		}
		return nil, false
	}

	var proxies []structuredProxy
	if err := json.Unmarshal(data, &proxies); err != nil {
		l.Warn().Err(err).Str("path", path).Msg("Structured artifact unparseable, falling back to text artifact.")
		return nil, false
	}

	records := make([]Record, 0, len(proxies))
	for _, p := range proxies {
		records = append(records, normalizeStructured(p))
	}
	l.Debug().Int("count", len(records)).Msg("Loaded records from structured artifact.")
	return records, true
}

func normalizeStructured(p structuredProxy) Record {
	record := Record{
		Proxy:    displayString(p.Protocol, deref(p.Username), deref(p.Password), p.Host, p.Port),
		Protocol: ParseProtocol(p.Protocol),
		Host:     p.Host,
		Port:     strconv.Itoa(p.Port),
		Status:   StatusUnknown,
		ASNOrg:   NotAvailable,
		Country:  NotAvailable,
	}
	if p.Timeout != nil {
		// A recorded timeout means the checker got a response. That is the
		// whole meaning of "working" here.
		record.Status = StatusWorking
		record.Timeout = strconv.FormatFloat(*p.Timeout, 'f', -1, 64)
	}
	if p.ExitIP != nil {
		record.ExitIP = *p.ExitIP
	}
	if p.ASN != nil && p.ASN.AutonomousSystemOrganization != "" {
		record.ASNOrg = p.ASN.AutonomousSystemOrganization
	}
	if p.Geolocation != nil && p.Geolocation.Country != nil {
		if name := p.Geolocation.Country.Names["en"]; name != "" {
			record.Country = name
		}
	}
	return record
}

// schemePrefixes in match order; longer schemes first so "https" and
// "socks5" are not swallowed by their prefixes.
var schemePrefixes = []struct {
	prefix   string
	protocol Protocol
}{
	{"https", ProtocolHTTPS},
	{"http", ProtocolHTTP},
	{"socks4", ProtocolSOCKS4},
	{"socks5", ProtocolSOCKS5},
}

func loadTextFallback(path string) []Record {
	l := logger.WithComponent("Results/Parser")

	file, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.Warn().Err(err).Str("path", path).Msg("Failed to open text artifact.")
		}
		return []Record{}
	}
	defer file.Close()

	records := []Record{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		records = append(records, Record{
			Proxy:    line,
			Protocol: protocolFromLine(line),
			Host:     NotAvailable,
			Port:     NotAvailable,
			Status:   StatusListed,
			ASNOrg:   NotAvailable,
			Country:  NotAvailable,
		})
	}
	if err := scanner.Err(); err != nil {
		l.Warn().Err(err).Str("path", path).Msg("Error while scanning text artifact.")
	}
	l.Debug().Int("count", len(records)).Msg("Loaded records from text artifact.")
	return records
}

func protocolFromLine(line string) Protocol {
	lower := strings.ToLower(line)
	for _, s := range schemePrefixes {
		if strings.HasPrefix(lower, s.prefix) {
			return s.protocol
		}
	}
	return ProtocolUnknown
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
