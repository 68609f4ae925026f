package virtualizor

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Match is the outcome of resolving an IP/hostname to a panel VM.
type Match struct {
	VpsID        string
	AccountIndex int
	Hostname     string
	IPs          []string
}

// FindVpsID locates the VM owning the given IP and/or hostname. Accounts
// are scanned in declared order and the first one producing a match wins.
// Within an account, match priority is: ip AND hostname, then ip, then
// hostname (case-insensitive), then the single-tenant heuristic (the
// account exposes exactly one VM). A nil Match with nil error means at
// least one account was scanned and none matched, which is a normal
// outcome, not a failure (the VM may not exist yet or its address may not
// have propagated). When every account listing fails the last failure is
// returned instead: a panel outage must not masquerade as a miss.
func (c *Client) FindVpsID(ctx context.Context, ip, hostname string) (*Match, error) {
	ip = strings.TrimSpace(ip)
	hostname = strings.TrimSpace(hostname)

	var lastErr error
	scanned := false
	for idx := range c.accounts {
		vms, err := c.listVMs(ctx, idx)
		if err != nil {
			// A broken account must not hide a VM on a later one.
			c.logger.Warn("account listing failed during resolution",
				zap.Int("account", idx),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		scanned = true

		if vm := matchInAccount(vms, ip, hostname); vm != nil {
			c.resolved.Set(vm.VpsID, idx, 0)
			c.logger.Info("resolved vps",
				zap.String("vpsid", vm.VpsID),
				zap.Int("account", idx),
				zap.String("hostname", vm.Hostname),
			)
			return &Match{
				VpsID:        vm.VpsID,
				AccountIndex: idx,
				Hostname:     vm.Hostname,
				IPs:          vm.IPList(),
			}, nil
		}
	}

	if !scanned && lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}

func matchInAccount(vms []VPS, ip, hostname string) *VPS {
	if len(vms) == 0 {
		return nil
	}

	// (a) ip AND hostname both match exactly.
	if ip != "" && hostname != "" {
		for i := range vms {
			if vms[i].HasIP(ip) && strings.EqualFold(vms[i].Hostname, hostname) {
				return &vms[i]
			}
		}
	}
	// (b) ip matches exactly.
	if ip != "" {
		for i := range vms {
			if vms[i].HasIP(ip) {
				return &vms[i]
			}
		}
	}
	// (c) hostname matches exactly, case-insensitive.
	if hostname != "" {
		for i := range vms {
			if strings.EqualFold(vms[i].Hostname, hostname) {
				return &vms[i]
			}
		}
	}
	// (d) single-tenant heuristic: the only VM on the account is assumed
	// to be the target.
	if len(vms) == 1 && (ip != "" || hostname != "") {
		return &vms[0]
	}
	return nil
}

// accountFor resolves the owning account for a vpsid: cache first, then a
// rescan of every account until one reports the vpsid (which is cached).
// Returns -1 when no account knows the vpsid.
func (c *Client) accountFor(ctx context.Context, vpsid string) (int, error) {
	if idx, ok := c.resolved.Get(vpsid); ok {
		return idx, nil
	}

	var lastErr error
	for idx := range c.accounts {
		vms, err := c.listVMs(ctx, idx)
		if err != nil {
			lastErr = err
			continue
		}
		for _, vm := range vms {
			if vm.VpsID == vpsid {
				c.resolved.Set(vpsid, idx, 0)
				return idx, nil
			}
		}
	}
	if lastErr != nil {
		return -1, lastErr
	}
	return -1, nil
}

func (c *Client) listVMs(ctx context.Context, accountIdx int) ([]VPS, error) {
	var out listVSResponse
	if err := c.call(ctx, accountIdx, "listvs", nil, nil, &out); err != nil {
		return nil, err
	}
	return parseVSList(out.VS), nil
}

// Templates lists the OS templates available to the account owning vpsid.
func (c *Client) Templates(ctx context.Context, vpsid string) ([]OSTemplate, error) {
	idx, err := c.accountFor(ctx, vpsid)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("svs", vpsid)
	var out osTemplateResponse
	if err := c.call(ctx, idx, "ostemplate", params, nil, &out); err != nil {
		return nil, err
	}

	templates := make([]OSTemplate, 0, len(out.OSTemplates))
	for id, tpl := range out.OSTemplates {
		templates = append(templates, OSTemplate{ID: id, Name: tpl.Name})
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })
	return templates, nil
}

// Reinstall rebuilds the VM from a template, setting a new root password.
func (c *Client) Reinstall(ctx context.Context, vpsid, templateID, newPassword string) error {
	idx, err := c.accountFor(ctx, vpsid)
	if err != nil {
		return err
	}
	if idx < 0 {
		return &NotFoundError{VpsID: vpsid}
	}

	params := url.Values{}
	params.Set("svs", vpsid)

	form := url.Values{}
	form.Set("newos", templateID)
	form.Set("newpass", newPassword)
	form.Set("conf", newPassword)
	form.Set("reinsos", "Reinstall")

	return c.call(ctx, idx, "ostemplate", params, form, nil)
}

// StatusOf returns the current listing entry for a vpsid, or nil when no
// account reports it.
func (c *Client) StatusOf(ctx context.Context, vpsid string) (*VPS, error) {
	idx, err := c.accountFor(ctx, vpsid)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, nil
	}
	vms, err := c.listVMs(ctx, idx)
	if err != nil {
		return nil, err
	}
	for i := range vms {
		if vms[i].VpsID == vpsid {
			return &vms[i], nil
		}
	}
	return nil, nil
}

// NotFoundError marks an operation against a vpsid no account reports.
type NotFoundError struct {
	VpsID string
}

func (e *NotFoundError) Error() string {
	return "virtualizor: no account owns vpsid " + e.VpsID
}
