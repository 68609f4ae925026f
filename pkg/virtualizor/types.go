package virtualizor

import (
	"encoding/json"
	"sort"
	"strings"
)

// VPS is the normalized view of one VM entry from a panel listing.
type VPS struct {
	VpsID    string
	Hostname string
	IPs      map[string]struct{}
	// Running mirrors the panel's power flag (status=1).
	Running bool
}

// HasIP reports whether the VM owns the given address.
func (v VPS) HasIP(ip string) bool {
	_, ok := v.IPs[strings.TrimSpace(ip)]
	return ok
}

// IPList returns the VM's addresses in stable order.
func (v VPS) IPList() []string {
	out := make([]string, 0, len(v.IPs))
	for ip := range v.IPs {
		out = append(out, ip)
	}
	sort.Strings(out)
	return out
}

// listVSResponse is the raw act=listvs payload. The vs field is a map of
// vpsid -> VM object, but some panel versions emit an array instead.
type listVSResponse struct {
	VS json.RawMessage `json:"vs"`
}

// rawVPS tolerates the field shapes seen across panel versions: ips may be
// a map, an array or a single string, and addresses also appear under ip.
type rawVPS struct {
	VpsID    json.Number     `json:"vpsid"`
	Hostname string          `json:"hostname"`
	IPs      json.RawMessage `json:"ips"`
	IP       json.RawMessage `json:"ip"`
	Status   json.Number     `json:"status"`
}

func (r rawVPS) normalize() VPS {
	v := VPS{
		VpsID:    r.VpsID.String(),
		Hostname: strings.TrimSpace(r.Hostname),
		IPs:      make(map[string]struct{}),
		Running:  r.Status.String() == "1",
	}
	collectIPs(r.IPs, v.IPs)
	collectIPs(r.IP, v.IPs)
	return v
}

// collectIPs merges every address found in raw into the set, whatever the
// JSON shape: "1.2.3.4", ["1.2.3.4", ...], or {"12": "1.2.3.4", ...}
// (including one more level of nesting for versions that group by type).
func collectIPs(raw json.RawMessage, into map[string]struct{}) {
	if len(raw) == 0 {
		return
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		addIP(into, single)
		return
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			collectIPs(item, into)
		}
		return
	}

	var object map[string]json.RawMessage
	if err := json.Unmarshal(raw, &object); err == nil {
		for _, item := range object {
			collectIPs(item, into)
		}
	}
}

func addIP(into map[string]struct{}, ip string) {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return
	}
	into[ip] = struct{}{}
}

// parseVSList decodes the vs payload, accepting both map and array forms,
// and normalizes every entry.
func parseVSList(raw json.RawMessage) []VPS {
	if len(raw) == 0 {
		return nil
	}

	var asMap map[string]rawVPS
	if err := json.Unmarshal(raw, &asMap); err == nil {
		out := make([]VPS, 0, len(asMap))
		for key, entry := range asMap {
			v := entry.normalize()
			if v.VpsID == "" {
				v.VpsID = key
			}
			out = append(out, v)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].VpsID < out[j].VpsID })
		return out
	}

	var asList []rawVPS
	if err := json.Unmarshal(raw, &asList); err == nil {
		out := make([]VPS, 0, len(asList))
		for _, entry := range asList {
			out = append(out, entry.normalize())
		}
		return out
	}

	return nil
}

// OSTemplate is an installable OS image on a panel.
type OSTemplate struct {
	ID   string
	Name string
}

// osTemplateResponse is the raw act=ostemplate payload.
type osTemplateResponse struct {
	OSTemplates map[string]struct {
		Name string `json:"name"`
	} `json:"oslist"`
}
