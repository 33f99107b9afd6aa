// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpcclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/decred/dcrd/dcrjson/v4"

	"github.com/YadnyeshUbhad/bluecarbond/rpc/jsonrpc/types"
)

// ConnConfig describes the connection configuration parameters for the
// client.
type ConnConfig struct {
	// Host is the IP address and port of the RPC server you want to
	// connect to.
	Host string

	// User is the username to use to authenticate to the RPC server.
	User string

	// Pass is the passphrase to use to authenticate to the RPC server.
	Pass string

	// DisableTLS specifies whether transport layer security should be
	// disabled.  It is recommended to always use TLS if the RPC server
	// supports it as otherwise your username and password is sent
	// across the wire in cleartext.
	DisableTLS bool

	// Certificates are the bytes for a PEM-encoded certificate chain
	// used for the TLS connection.  It has no effect if the DisableTLS
	// parameter is true.
	Certificates []byte
}

// Client represents a bluecarbond RPC client which allows easy access
// to the various RPC methods available on a ledger server.
type Client struct {
	id         atomic.Uint64
	config     *ConnConfig
	httpClient *http.Client
}

// New creates a new RPC client based on the provided connection
// configuration details.
func New(config *ConnConfig) (*Client, error) {
	if config.Host == "" {
		return nil, errors.New("rpcclient: missing host")
	}

	var tlsConfig *tls.Config
	if !config.DisableTLS {
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		if len(config.Certificates) > 0 {
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(config.Certificates) {
				return nil, errors.New("rpcclient: invalid certificates")
			}
			tlsConfig.RootCAs = pool
		}
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Transport: &http.Transport{TLSClientConfig: tlsConfig},
		},
	}, nil
}

// nextID returns the next id to be used when sending a JSON-RPC
// message.
func (c *Client) nextID() uint64 {
	return c.id.Add(1)
}

// rawResponse is a partially-unmarshaled JSON-RPC response.  For this
// to be valid (according to JSON-RPC 1.0 spec), ID may not be nil.
type rawResponse struct {
	Result json.RawMessage   `json:"result"`
	Error  *dcrjson.RPCError `json:"error"`
}

// result checks whether the unmarshaled response contains a non-nil
// error, returning nil if not.  If the response is valid and contains
// no error, the raw bytes of the request are returned for further
// processing.
func (r rawResponse) result() (result []byte, err error) {
	if r.Error != nil {
		return nil, r.Error
	}
	return r.Result, nil
}

// send marshals the passed command, issues it to the configured server
// over HTTP POST, and returns the raw result bytes.
func (c *Client) send(ctx context.Context, method types.Method, cmd interface{}) ([]byte, error) {
	marshalledJSON, err := dcrjson.MarshalCmd("1.0", c.nextID(), cmd)
	if err != nil {
		return nil, err
	}

	protocol := "https"
	if c.config.DisableTLS {
		protocol = "http"
	}
	url := protocol + "://" + c.config.Host

	bodyReader := bytes.NewReader(marshalledJSON)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url,
		bodyReader)
	if err != nil {
		return nil, err
	}
	httpReq.Close = true
	httpReq.Header.Set("Content-Type", "application/json")
	if c.config.User != "" {
		httpReq.SetBasicAuth(c.config.User, c.config.Pass)
	}

	httpResponse, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	respBytes, err := io.ReadAll(httpResponse.Body)
	httpResponse.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("error reading json reply: %w", err)
	}

	var resp rawResponse
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		// When the response itself isn't a valid JSON-RPC response,
		// return an error which includes the HTTP status code and raw
		// response bytes.
		if httpResponse.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("status code: %d, response: %q",
				httpResponse.StatusCode, string(respBytes))
		}
		return nil, err
	}
	result, err := resp.result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return result, nil
}

// RawRequest allows the caller to send a raw or custom request to the
// server.  The method may be any string and the params may be anything
// that marshals to valid JSON.
func (c *Client) RawRequest(ctx context.Context, method string, params []json.RawMessage) (json.RawMessage, error) {
	if method == "" {
		return nil, errors.New("no method")
	}
	// params defaults to an empty array for a consistent wire format.
	if params == nil {
		params = []json.RawMessage{}
	}

	req := &dcrjson.Request{
		Jsonrpc: "1.0",
		ID:      c.nextID(),
		Method:  method,
		Params:  params,
	}
	marshalledJSON, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	protocol := "https"
	if c.config.DisableTLS {
		protocol = "http"
	}
	url := protocol + "://" + c.config.Host

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url,
		bytes.NewReader(marshalledJSON))
	if err != nil {
		return nil, err
	}
	httpReq.Close = true
	httpReq.Header.Set("Content-Type", "application/json")
	if c.config.User != "" {
		httpReq.SetBasicAuth(c.config.User, c.config.Pass)
	}

	httpResponse, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	respBytes, err := io.ReadAll(httpResponse.Body)
	httpResponse.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("error reading json reply: %w", err)
	}

	var resp rawResponse
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		if httpResponse.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("status code: %d, response: %q",
				httpResponse.StatusCode, string(respBytes))
		}
		return nil, err
	}
	return resp.result()
}
