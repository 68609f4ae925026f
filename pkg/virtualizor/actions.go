package virtualizor

import (
	"context"
	"net/url"
)

// vmAction posts a power action for the VM on whichever account owns it.
func (c *Client) vmAction(ctx context.Context, vpsid, act string) error {
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
	form.Set("action", act)
	return c.call(ctx, idx, act, params, form, nil)
}

// Start powers the VM on.
func (c *Client) Start(ctx context.Context, vpsid string) error {
	return c.vmAction(ctx, vpsid, "start")
}

// Stop powers the VM off.
func (c *Client) Stop(ctx context.Context, vpsid string) error {
	return c.vmAction(ctx, vpsid, "stop")
}

// Restart reboots the VM.
func (c *Client) Restart(ctx context.Context, vpsid string) error {
	return c.vmAction(ctx, vpsid, "restart")
}
