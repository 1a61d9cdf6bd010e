package transfer

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEPortalConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *EPortalConfig
		wantErr error
	}{
		{
			name:    "valid config",
			config:  &EPortalConfig{Endpoint: "https://example.com/ePortalService.asmx", Login: "acme", Password: "secret"},
			wantErr: nil,
		},
		{
			name:    "missing endpoint",
			config:  &EPortalConfig{Login: "acme", Password: "secret"},
			wantErr: ErrConfigMissingEndpoint,
		},
		{
			name:    "missing login",
			config:  &EPortalConfig{Endpoint: "https://example.com", Password: "secret"},
			wantErr: ErrConfigMissingLogin,
		},
		{
			name:    "missing password",
			config:  &EPortalConfig{Endpoint: "https://example.com", Login: "acme"},
			wantErr: ErrConfigMissingPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.True(t, tt.config.TimeoutSeconds > 0)
			}
		})
	}
}

func newTestClient(t *testing.T, handler http.Handler) *EPortalClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewEPortalClient(&EPortalConfig{
		Endpoint: server.URL,
		Login:    "acme",
		Password: "secret",
	})
	require.NoError(t, err)
	return client
}

func TestEPortalClient_SendFile(t *testing.T) {
	var gotBody []byte
	var gotAction, gotContentType string

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAction = r.Header.Get("SOAPAction")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		fmt.Fprint(w, `<?xml version="1.0"?>
			<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
				<soap:Body><SendFileResponse/></soap:Body>
			</soap:Envelope>`)
	}))

	err := client.SendFile(context.Background(), "order-321.xml", []byte(`<Order id="321"/>`))
	require.NoError(t, err)

	assert.Equal(t, "http://tempuri.org/SendFile", gotAction)
	assert.Equal(t, "text/xml; charset=utf-8", gotContentType)

	body := string(gotBody)
	assert.Contains(t, body, "<login>acme</login>")
	assert.Contains(t, body, "<password>secret</password>")
	assert.Contains(t, body, "<filename>order-321.xml</filename>")
	// the document must travel escaped inside the envelope
	assert.Contains(t, body, "&lt;Order id=&#34;321&#34;/&gt;")

	var envelope struct {
		Body struct {
			SendFile struct {
				Content string `xml:"content"`
			} `xml:"SendFile"`
		} `xml:"Body"`
	}
	require.NoError(t, xml.Unmarshal(gotBody, &envelope))
	assert.Equal(t, `<Order id="321"/>`, envelope.Body.SendFile.Content)
}

func TestEPortalClient_SendFile_HTTPError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	err := client.SendFile(context.Background(), "order-1.xml", []byte("<Order/>"))
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestEPortalClient_SendFile_Fault(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?>
			<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
				<soap:Body>
					<soap:Fault>
						<faultcode>soap:Client</faultcode>
						<faultstring>invalid credentials</faultstring>
					</soap:Fault>
				</soap:Body>
			</soap:Envelope>`)
	}))

	err := client.SendFile(context.Background(), "order-1.xml", []byte("<Order/>"))
	require.ErrorIs(t, err, ErrFault)
	assert.Contains(t, err.Error(), "invalid credentials")
}
