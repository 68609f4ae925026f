package order

import (
	"errors"
	"strings"
	"time"

	"github.com/sulphurninja/oceanlinux-sub001/internal/domain/provider"
)

// Status represents the lifecycle state of an order.
type Status string

const (
	StatusPending      Status = "pending"
	StatusProvisioning Status = "provisioning"
	StatusActive       Status = "active"
	StatusFailed       Status = "failed"
	StatusTerminated   Status = "terminated"
)

// PendingIP is stored as the address until the provider reports a real one.
const PendingIP = "Pending"

var ErrInvalidState = errors.New("invalid order state for operation")

// Order is the core domain entity. Only provisioning-related fields are
// owned by this service; the rest belong to the order store.
type Order struct {
	ID         int64         `json:"id,string"`
	ResellerID int64         `json:"reseller_id,string"`
	Provider   provider.Name `json:"provider"`

	ProductName string `json:"product_name"`
	MemoryTier  string `json:"memory_tier"`
	Price       int64  `json:"price"`

	Status             Status `json:"status"`
	ProvisioningStatus Status `json:"provisioning_status"`
	ProvisioningError  string `json:"provisioning_error,omitempty"`

	HostycareServiceID string `json:"hostycare_service_id,omitempty"`
	SmartVPSServiceID  string `json:"smartvps_service_id,omitempty"`

	Hostname  string `json:"hostname"`
	IPAddress string `json:"ip_address"`
	Username  string `json:"username"`
	Password  string `json:"-"`

	ExpiryDate *time.Time `json:"expiry_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ServiceRef returns the provider-specific reference this order holds:
// Hostycare keeps a numeric service id, SmartVPS addresses by IP, and
// Virtualizor resolves from IP/hostname at call time.
func (o *Order) ServiceRef() string {
	switch o.Provider {
	case provider.Hostycare:
		return o.HostycareServiceID
	case provider.SmartVPS:
		if o.SmartVPSServiceID != "" {
			return o.SmartVPSServiceID
		}
		return o.IPAddress
	default:
		return ""
	}
}

// HasPendingIP reports whether the provider has not yet assigned an address.
func (o *Order) HasPendingIP() bool {
	ip := strings.TrimSpace(o.IPAddress)
	return ip == "" || strings.EqualFold(ip, PendingIP)
}

// Provisioned reports whether a successful provision already bound a
// provider service to this order. The (provider, serviceId) pair is
// immutable once set.
func (o *Order) Provisioned() bool {
	return o.HostycareServiceID != "" || o.SmartVPSServiceID != "" ||
		(o.ProvisioningStatus == StatusActive && o.IPAddress != "")
}

// MarkProvisioning transitions the order into provisioning.
func (o *Order) MarkProvisioning() {
	o.Status = StatusProvisioning
	o.ProvisioningStatus = StatusProvisioning
	o.ProvisioningError = ""
	o.UpdatedAt = time.Now().UTC()
}

// MarkActive records a successful provision.
func (o *Order) MarkActive(serviceID, ip, username, password, hostname string) {
	switch o.Provider {
	case provider.Hostycare:
		o.HostycareServiceID = serviceID
	case provider.SmartVPS:
		o.SmartVPSServiceID = serviceID
	}
	if ip == "" {
		ip = PendingIP
	}
	o.IPAddress = ip
	o.Username = username
	o.Password = password
	o.Hostname = hostname
	o.Status = StatusActive
	o.ProvisioningStatus = StatusActive
	o.ProvisioningError = ""
	o.UpdatedAt = time.Now().UTC()
}

// MarkProvisionFailed records a failed provision with a human-readable reason.
func (o *Order) MarkProvisionFailed(errMsg string) {
	o.Status = StatusFailed
	o.ProvisioningStatus = StatusFailed
	o.ProvisioningError = errMsg
	o.UpdatedAt = time.Now().UTC()
}

// ExtendExpiry pushes the expiry date forward by the given number of days,
// anchored on the later of now and the current expiry.
func (o *Order) ExtendExpiry(days int) time.Time {
	base := time.Now().UTC()
	if o.ExpiryDate != nil && o.ExpiryDate.After(base) {
		base = *o.ExpiryDate
	}
	next := base.AddDate(0, 0, days)
	o.ExpiryDate = &next
	o.UpdatedAt = time.Now().UTC()
	return next
}
