package virtualizor

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// maxIndexedAccounts bounds the indexed env form (VIRTUALIZOR_HOST_1..10).
const maxIndexedAccounts = 10

// Account is one independent Virtualizor panel credential set. VMs are
// partitioned across accounts; a vpsid is unique only within one account.
type Account struct {
	Host     string
	Port     int
	Protocol string
	APIKey   string
	APIPass  string
}

// BaseURL returns the panel endpoint for this account.
func (a Account) BaseURL() string {
	return fmt.Sprintf("%s://%s:%d", a.Protocol, a.Host, a.Port)
}

// LoadAccountsFromEnv reads panel accounts from the environment. Three
// forms are supported, tried in priority order, first non-empty wins:
// indexed (VIRTUALIZOR_HOST_1..10), CSV (VIRTUALIZOR_HOSTS), and the
// legacy single-account form (VIRTUALIZOR_HOST).
func LoadAccountsFromEnv() []Account {
	if accounts := loadIndexed(); len(accounts) > 0 {
		return accounts
	}
	if accounts := loadCSV(); len(accounts) > 0 {
		return accounts
	}
	return loadLegacy()
}

func loadIndexed() []Account {
	var accounts []Account
	for i := 1; i <= maxIndexedAccounts; i++ {
		host := strings.TrimSpace(os.Getenv(fmt.Sprintf("VIRTUALIZOR_HOST_%d", i)))
		if host == "" {
			continue
		}
		accounts = append(accounts, Account{
			Host:     host,
			Port:     portOrDefault(os.Getenv(fmt.Sprintf("VIRTUALIZOR_PORT_%d", i))),
			Protocol: protocolOrDefault(os.Getenv(fmt.Sprintf("VIRTUALIZOR_PROTOCOL_%d", i))),
			APIKey:   strings.TrimSpace(os.Getenv(fmt.Sprintf("VIRTUALIZOR_API_KEY_%d", i))),
			APIPass:  strings.TrimSpace(os.Getenv(fmt.Sprintf("VIRTUALIZOR_API_PASSWORD_%d", i))),
		})
	}
	return accounts
}

func loadCSV() []Account {
	hosts := splitCSV(os.Getenv("VIRTUALIZOR_HOSTS"))
	if len(hosts) == 0 {
		return nil
	}
	keys := splitCSV(os.Getenv("VIRTUALIZOR_API_KEYS"))
	passes := splitCSV(os.Getenv("VIRTUALIZOR_API_PASSWORDS"))
	ports := splitCSV(os.Getenv("VIRTUALIZOR_PORTS"))
	protocols := splitCSV(os.Getenv("VIRTUALIZOR_PROTOCOLS"))

	accounts := make([]Account, 0, len(hosts))
	for i, host := range hosts {
		accounts = append(accounts, Account{
			Host:     host,
			Port:     portOrDefault(at(ports, i)),
			Protocol: protocolOrDefault(at(protocols, i)),
			APIKey:   at(keys, i),
			APIPass:  at(passes, i),
		})
	}
	return accounts
}

func loadLegacy() []Account {
	host := strings.TrimSpace(os.Getenv("VIRTUALIZOR_HOST"))
	if host == "" {
		return nil
	}
	return []Account{{
		Host:     host,
		Port:     portOrDefault(os.Getenv("VIRTUALIZOR_PORT")),
		Protocol: protocolOrDefault(os.Getenv("VIRTUALIZOR_PROTOCOL")),
		APIKey:   strings.TrimSpace(os.Getenv("VIRTUALIZOR_API_KEY")),
		APIPass:  strings.TrimSpace(os.Getenv("VIRTUALIZOR_API_PASSWORD")),
	}}
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

func portOrDefault(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 4085
	}
	port, err := strconv.Atoi(raw)
	if err != nil {
		return 4085
	}
	return port
}

func protocolOrDefault(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw != "http" && raw != "https" {
		return "https"
	}
	return raw
}
