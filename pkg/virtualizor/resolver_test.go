package virtualizor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sulphurninja/oceanlinux-sub001/pkg/remote"
)

// fakePanel is one Virtualizor account backed by httptest.
type fakePanel struct {
	server *httptest.Server
	hits   atomic.Int32
	listvs string
	// lastForm captures the most recent POST body per action.
	lastForm url.Values
}

func newFakePanel(t *testing.T, listvs string) *fakePanel {
	t.Helper()
	panel := &fakePanel{listvs: listvs}
	panel.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panel.hits.Add(1)
		assert.Equal(t, "json", r.URL.Query().Get("api"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))

		if r.Method == http.MethodPost {
			require.NoError(t, r.ParseForm())
			panel.lastForm = r.PostForm
		}

		switch r.URL.Query().Get("act") {
		case "listvs":
			w.Write([]byte(`{"vs": ` + panel.listvs + `}`))
		case "ostemplate":
			if r.Method == http.MethodPost {
				w.Write([]byte(`{"done": true}`))
				return
			}
			w.Write([]byte(`{"oslist": {"101": {"name": "Ubuntu 22.04"}, "55": {"name": "Debian 12"}}}`))
		default:
			w.Write([]byte(`{"done": true}`))
		}
	}))
	t.Cleanup(panel.server.Close)
	return panel
}

func (p *fakePanel) account(t *testing.T) Account {
	t.Helper()
	u, err := url.Parse(p.server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return Account{Host: u.Hostname(), Port: port, Protocol: "http", APIKey: "test-key", APIPass: "test-pass"}
}

func newTestClient(t *testing.T, panels ...*fakePanel) *Client {
	t.Helper()
	accounts := make([]Account, 0, len(panels))
	for _, p := range panels {
		accounts = append(accounts, p.account(t))
	}
	client, err := New(accounts, zap.NewNop())
	require.NoError(t, err)
	// Keep unit tests fast; retry behavior is covered separately.
	client.retry = remote.RetryPolicy{MaxRetries: 0}
	return client
}

func TestFindVpsID_SingletonHeuristicStopsScanning(t *testing.T) {
	// Account 1 has no match, account 2 exposes exactly one VM that does
	// not list the IP yet, account 3 must never be contacted.
	panel1 := newFakePanel(t, `{"1": {"vpsid": 1, "hostname": "other", "ips": ["192.168.0.1"]}}`)
	panel2 := newFakePanel(t, `{"77": {"vpsid": 77, "hostname": "lonely", "ips": []}}`)
	panel3 := newFakePanel(t, `{"9": {"vpsid": 9, "hostname": "far", "ips": ["10.0.0.5"]}}`)
	client := newTestClient(t, panel1, panel2, panel3)

	match, err := client.FindVpsID(context.Background(), "10.0.0.5", "")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "77", match.VpsID)
	assert.Equal(t, 1, match.AccountIndex)
	assert.Equal(t, int32(0), panel3.hits.Load(), "first match must stop the account scan")
}

func TestFindVpsID_MatchPriority(t *testing.T) {
	// Two VMs share the hostname; the one also owning the IP must win.
	panel := newFakePanel(t, `{
		"1": {"vpsid": 1, "hostname": "web", "ips": ["10.0.0.1"]},
		"2": {"vpsid": 2, "hostname": "web", "ips": ["10.0.0.2"]}
	}`)
	client := newTestClient(t, panel)

	match, err := client.FindVpsID(context.Background(), "10.0.0.2", "web")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "2", match.VpsID)
}

func TestFindVpsID_HostnameIsCaseInsensitive(t *testing.T) {
	panel := newFakePanel(t, `{"5": {"vpsid": 5, "hostname": "Ocean-Linux-4GB", "ips": []}, "6": {"vpsid": 6, "hostname": "other", "ips": []}}`)
	client := newTestClient(t, panel)

	match, err := client.FindVpsID(context.Background(), "", "ocean-linux-4gb")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "5", match.VpsID)
}

func TestFindVpsID_MissIsNotAnError(t *testing.T) {
	panel := newFakePanel(t, `{"1": {"vpsid": 1, "hostname": "a", "ips": []}, "2": {"vpsid": 2, "hostname": "b", "ips": []}}`)
	client := newTestClient(t, panel)

	match, err := client.FindVpsID(context.Background(), "10.9.9.9", "nope")
	require.NoError(t, err)
	assert.Nil(t, match)
}

// newBrokenPanel answers every call with a server error.
func newBrokenPanel(t *testing.T) *fakePanel {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "panel unavailable", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)
	return &fakePanel{server: server}
}

func TestFindVpsID_AllAccountsFailingIsAnError(t *testing.T) {
	client := newTestClient(t, newBrokenPanel(t), newBrokenPanel(t))

	match, err := client.FindVpsID(context.Background(), "10.0.0.5", "")
	require.Error(t, err, "a full panel outage must not read as a miss")
	assert.Nil(t, match)

	var protoErr *remote.ProtocolError
	assert.True(t, errors.As(err, &protoErr))
}

func TestFindVpsID_PartialOutageStillReportsMiss(t *testing.T) {
	// One account is down, but the other lists fine and has no match:
	// that is a genuine miss, not a failure. Two VMs keep the
	// single-tenant heuristic out of play.
	healthy := newFakePanel(t, `{"1": {"vpsid": 1, "hostname": "a", "ips": []}, "2": {"vpsid": 2, "hostname": "b", "ips": []}}`)
	client := newTestClient(t, newBrokenPanel(t), healthy)

	match, err := client.FindVpsID(context.Background(), "10.9.9.9", "nope")
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestResolutionCacheRoutesFollowUps(t *testing.T) {
	panel1 := newFakePanel(t, `{}`)
	panel2 := newFakePanel(t, `{"77": {"vpsid": 77, "hostname": "lonely", "ips": ["10.0.0.5"]}}`)
	client := newTestClient(t, panel1, panel2)

	match, err := client.FindVpsID(context.Background(), "10.0.0.5", "")
	require.NoError(t, err)
	require.NotNil(t, match)

	panel1Hits := panel1.hits.Load()
	templates, err := client.Templates(context.Background(), "77")
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "101", templates[0].ID)
	assert.Equal(t, "Ubuntu 22.04", templates[0].Name)

	// The cached vpsid -> account mapping skips rescanning account 1.
	assert.Equal(t, panel1Hits, panel1.hits.Load())
}

func TestAccountFor_RescansWhenCacheCold(t *testing.T) {
	panel1 := newFakePanel(t, `{}`)
	panel2 := newFakePanel(t, `{"42": {"vpsid": 42, "hostname": "cold", "ips": []}}`)
	client := newTestClient(t, panel1, panel2)

	// vpsid supplied directly without a prior FindVpsID.
	templates, err := client.Templates(context.Background(), "42")
	require.NoError(t, err)
	assert.Len(t, templates, 2)
	assert.Greater(t, panel1.hits.Load(), int32(0))
}

func TestReinstall_PostsTemplateForm(t *testing.T) {
	panel := newFakePanel(t, `{"42": {"vpsid": 42, "hostname": "h", "ips": []}}`)
	client := newTestClient(t, panel)

	require.NoError(t, client.Reinstall(context.Background(), "42", "101", "new-pass-12"))

	require.NotNil(t, panel.lastForm)
	assert.Equal(t, "101", panel.lastForm.Get("newos"))
	assert.Equal(t, "new-pass-12", panel.lastForm.Get("newpass"))
	assert.Equal(t, "new-pass-12", panel.lastForm.Get("conf"))
	assert.Equal(t, "Reinstall", panel.lastForm.Get("reinsos"))
}

func TestReinstall_UnknownVpsID(t *testing.T) {
	panel := newFakePanel(t, `{}`)
	client := newTestClient(t, panel)

	err := client.Reinstall(context.Background(), "404", "101", "pw")
	require.Error(t, err)

	var notFound *NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestCall_EnvelopeErrorIsProtocolError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "Invalid API credentials"}`))
	}))
	t.Cleanup(server.Close)

	panel := &fakePanel{server: server}
	client := newTestClient(t, panel)

	_, err := client.listVMs(context.Background(), 0)
	require.Error(t, err)

	var protoErr *remote.ProtocolError
	require.True(t, errors.As(err, &protoErr))
	assert.Contains(t, protoErr.Message, "Invalid API credentials")
}
