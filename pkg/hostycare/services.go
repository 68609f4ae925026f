package hostycare

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// Product is a purchasable VPS plan.
type Product struct {
	ID    json.Number `json:"id"`
	Name  string      `json:"name"`
	Price string      `json:"price"`
}

type productsResponse struct {
	Products []Product `json:"products"`
}

// Service is a provisioned service under the reseller account.
type Service struct {
	ID          json.Number `json:"id"`
	Domain      string      `json:"domain"`
	Status      string      `json:"status"`
	DedicatedIP string      `json:"dedicatedip"`
}

type orderResponse struct {
	Order struct {
		ServiceID json.Number `json:"serviceid"`
		OrderID   json.Number `json:"orderid"`
	} `json:"order"`
	Service Service `json:"service"`
}

type serviceResponse struct {
	Service Service `json:"service"`
}

type creditResponse struct {
	Credit string `json:"credit"`
}

// TestConnection verifies credentials against the panel.
func (c *Client) TestConnection(ctx context.Context) error {
	return c.doGet(ctx, "/testConnection", nil)
}

// Products lists purchasable plans.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var out productsResponse
	if err := c.doGet(ctx, "/products", &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// CreateService orders a new service under the given product. params carry
// provider-side configuration (hostname, root password, OS template...).
func (c *Client) CreateService(ctx context.Context, productID string, params map[string]string) (serviceID, ip string, err error) {
	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	var out orderResponse
	if err := c.doPost(ctx, "/order/products/"+productID, form, &out); err != nil {
		return "", "", err
	}
	id := out.Order.ServiceID.String()
	if id == "" || id == "0" {
		id = out.Service.ID.String()
	}
	return id, out.Service.DedicatedIP, nil
}

// GetService fetches the current state of a service.
func (c *Client) GetService(ctx context.Context, serviceID string) (*Service, error) {
	var out serviceResponse
	if err := c.doGet(ctx, "/services/"+serviceID, &out); err != nil {
		return nil, err
	}
	return &out.Service, nil
}

func (c *Client) Start(ctx context.Context, serviceID string) error {
	return c.doPost(ctx, "/services/"+serviceID+"/start", nil, nil)
}

func (c *Client) Stop(ctx context.Context, serviceID string) error {
	return c.doPost(ctx, "/services/"+serviceID+"/stop", nil, nil)
}

func (c *Client) Reboot(ctx context.Context, serviceID string) error {
	return c.doPost(ctx, "/services/"+serviceID+"/reboot", nil, nil)
}

func (c *Client) Suspend(ctx context.Context, serviceID string) error {
	return c.doPost(ctx, "/services/"+serviceID+"/suspend", nil, nil)
}

func (c *Client) Unsuspend(ctx context.Context, serviceID string) error {
	return c.doPost(ctx, "/services/"+serviceID+"/unsuspend", nil, nil)
}

func (c *Client) Terminate(ctx context.Context, serviceID string) error {
	return c.doPost(ctx, "/services/"+serviceID+"/terminate", nil, nil)
}

// ChangePassword sets a new root password on the service.
func (c *Client) ChangePassword(ctx context.Context, serviceID, newPassword string) error {
	form := url.Values{}
	form.Set("newpassword", newPassword)
	return c.doPost(ctx, "/services/"+serviceID+"/changepassword", form, nil)
}

// Reinstall rebuilds the service from an OS template.
func (c *Client) Reinstall(ctx context.Context, serviceID, templateID, newPassword string) error {
	form := url.Values{}
	form.Set("osid", templateID)
	form.Set("newpassword", newPassword)
	return c.doPost(ctx, "/services/"+serviceID+"/reinstall", form, nil)
}

// OSTemplate is an installable image for a service.
type OSTemplate struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
}

type templatesResponse struct {
	Templates []OSTemplate `json:"templates"`
}

// Templates lists the OS templates installable on a service.
func (c *Client) Templates(ctx context.Context, serviceID string) ([]OSTemplate, error) {
	var out templatesResponse
	if err := c.doGet(ctx, "/services/"+serviceID+"/templates", &out); err != nil {
		return nil, err
	}
	return out.Templates, nil
}

// Credit returns the remaining reseller billing credit on the panel.
func (c *Client) Credit(ctx context.Context) (string, error) {
	var out creditResponse
	if err := c.doGet(ctx, "/billing/credit", &out); err != nil {
		return "", err
	}
	if out.Credit == "" {
		return "", fmt.Errorf("hostycare: credit missing from response")
	}
	return out.Credit, nil
}
