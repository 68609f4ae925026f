package hostycare

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sulphurninja/oceanlinux-sub001/pkg/remote"
)

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:    baseURL,
		Username:   "reseller",
		APIKey:     "secret123",
		Timeout:    5 * time.Second,
		RetryCount: 0,
		RetryDelay: time.Millisecond,
		RateLimit:  6000,
		RateBurst:  100,
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(Config{BaseURL: "https://example.com"})
	require.Error(t, err)

	var authErr *remote.AuthConfigError
	require.True(t, errors.As(err, &authErr))
	assert.Contains(t, authErr.Missing, "HOSTYCARE_USERNAME")
	assert.Contains(t, authErr.Missing, "HOSTYCARE_API_KEY")
}

func TestClient_SendsAuthHeadersAndFormBody(t *testing.T) {
	var gotUsername, gotToken, gotContentType, gotPassword string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUsername = r.Header.Get("username")
		gotToken = r.Header.Get("token")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		gotPassword = r.PostFormValue("newpassword")
		w.Write([]byte(`{"status":"success"}`))
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL))
	require.NoError(t, err)
	fixed := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return fixed }

	require.NoError(t, client.ChangePassword(context.Background(), "42", "hunter2!"))

	assert.Equal(t, "reseller", gotUsername)
	assert.Equal(t, Token("reseller", "secret123", fixed), gotToken)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, "hunter2!", gotPassword)
}

func TestClient_NonJSONBodyIsProtocolError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL))
	require.NoError(t, err)

	err = client.TestConnection(context.Background())
	require.Error(t, err)

	var protoErr *remote.ProtocolError
	require.True(t, errors.As(err, &protoErr))
	assert.Equal(t, "non-JSON response", protoErr.Message)
	assert.Contains(t, protoErr.Body, "maintenance")
}

func TestClient_EnvelopeErrorIsProtocolError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","error":"invalid product"}`))
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL))
	require.NoError(t, err)

	_, _, err = client.CreateService(context.Background(), "77", map[string]string{"hostname": "h"})
	require.Error(t, err)

	var protoErr *remote.ProtocolError
	require.True(t, errors.As(err, &protoErr))
	assert.Equal(t, "invalid product", protoErr.Message)
}

func TestClient_ServerErrorRetriesThenSucceeds(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{"status":"error","error":"upstream"}`))
			return
		}
		w.Write([]byte(`{"status":"success","products":[{"id":1,"name":"VPS-2G","price":"300"}]}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.RetryCount = 2
	client, err := New(cfg)
	require.NoError(t, err)

	products, err := client.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "VPS-2G", products[0].Name)
	assert.Equal(t, 2, calls)
}

func TestClient_CreateServiceParsesServiceAndIP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/order/products/77", r.URL.Path)
		w.Write([]byte(`{"status":"success","order":{"serviceid":991,"orderid":1201},"service":{"id":991,"status":"Pending","dedicatedip":"203.0.113.9"}}`))
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL))
	require.NoError(t, err)

	serviceID, ip, err := client.CreateService(context.Background(), "77", map[string]string{"hostname": "h1"})
	require.NoError(t, err)
	assert.Equal(t, "991", serviceID)
	assert.Equal(t, "203.0.113.9", ip)
}
