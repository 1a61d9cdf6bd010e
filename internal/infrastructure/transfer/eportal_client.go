// Package transfer implements the ePortal SOAP client that hands export
// documents to the trading partner.
package transfer

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	appexport "github.com/malnatis/order-export/internal/application/export"
)

// maxResponseSize is the maximum allowed response size from ePortal (1MB)
const maxResponseSize = 1 * 1024 * 1024

// sendFileNamespace is the document namespace of the SendFile operation.
const sendFileNamespace = "http://tempuri.org/"

// Errors returned by the client
var (
	ErrConfigMissingEndpoint = errors.New("eportal: endpoint is required")
	ErrConfigMissingLogin    = errors.New("eportal: login is required")
	ErrConfigMissingPassword = errors.New("eportal: password is required")
	ErrRequestFailed         = errors.New("eportal: request failed")
	ErrFault                 = errors.New("eportal: service fault")
)

// EPortalConfig holds configuration for the ePortal file transfer service.
type EPortalConfig struct {
	// Endpoint is the service URL, e.g. https://example.com/ePortalService.asmx
	Endpoint string
	// Login is the trading partner account name
	Login string
	// Password is the trading partner account password
	Password string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// Validate validates the configuration and fills in defaults.
func (c *EPortalConfig) Validate() error {
	if c.Endpoint == "" {
		return ErrConfigMissingEndpoint
	}
	if c.Login == "" {
		return ErrConfigMissingLogin
	}
	if c.Password == "" {
		return ErrConfigMissingPassword
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 60
	}
	return nil
}

// EPortalClient sends export documents through the ePortal SendFile
// operation.
type EPortalClient struct {
	config     *EPortalConfig
	httpClient *http.Client
}

// NewEPortalClient creates an ePortal client with the given configuration.
func NewEPortalClient(config *EPortalConfig) (*EPortalClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &EPortalClient{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// soapEnvelope is the SOAP 1.1 request wrapper.
type soapEnvelope struct {
	XMLName xml.Name `xml:"soap:Envelope"`
	XMLNS   string   `xml:"xmlns:soap,attr"`
	Body    soapBody `xml:"soap:Body"`
}

type soapBody struct {
	SendFile sendFileRequest
}

// sendFileRequest carries the SendFile operation arguments.
type sendFileRequest struct {
	XMLName  xml.Name `xml:"SendFile"`
	XMLNS    string   `xml:"xmlns,attr"`
	Login    string   `xml:"login"`
	Password string   `xml:"password"`
	Content  string   `xml:"content"`
	Filename string   `xml:"filename"`
}

// SendFile delivers one document under the given filename.
func (c *EPortalClient) SendFile(ctx context.Context, filename string, content []byte) error {
	envelope := soapEnvelope{
		XMLNS: "http://schemas.xmlsoap.org/soap/envelope/",
		Body: soapBody{
			SendFile: sendFileRequest{
				XMLNS:    sendFileNamespace,
				Login:    c.config.Login,
				Password: c.config.Password,
				Content:  string(content),
				Filename: filename,
			},
		},
	}

	payload, err := xml.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("eportal: failed to encode request: %w", err)
	}
	payload = append([]byte(xml.Header), payload...)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("eportal: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", sendFileNamespace+"SendFile")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("eportal: failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: HTTP %d sending %s", ErrRequestFailed, resp.StatusCode, filename)
	}
	if fault, ok := parseFault(body); ok {
		return fmt.Errorf("%w: %s", ErrFault, fault)
	}
	return nil
}

// soapFault is the SOAP 1.1 fault shape, namespace-agnostic.
type soapFault struct {
	FaultCode   string `xml:"faultcode"`
	FaultString string `xml:"faultstring"`
}

type faultEnvelope struct {
	Body struct {
		Fault *soapFault `xml:"Fault"`
	} `xml:"Body"`
}

// parseFault reports whether the response body carries a SOAP fault.
func parseFault(body []byte) (string, bool) {
	var envelope faultEnvelope
	if err := xml.Unmarshal(body, &envelope); err != nil {
		return "", false
	}
	if envelope.Body.Fault == nil {
		return "", false
	}
	fault := envelope.Body.Fault
	return fmt.Sprintf("%s: %s", fault.FaultCode, fault.FaultString), true
}

// Ensure EPortalClient implements FileTransfer
var _ appexport.FileTransfer = (*EPortalClient)(nil)
