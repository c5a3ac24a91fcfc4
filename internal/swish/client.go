// Package swish implements the mobile payment gateway contract: mutually
// authenticated payment request and refund instructions, plus rendering of the
// scannable commerce code.
package swish

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kallbadhuset/bastubokning/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	paymentRequestPath = "/swish-cpcapi/api/v2/paymentrequests/"
	refundPath         = "/swish-cpcapi/api/v2/refunds/"

	// The gateway rejects messages longer than 50 characters.
	maxMessageLength = 50

	refundMessage = "Återbetalning avbokning"
)

var ErrInvalidAmount = errors.New("amount must be a positive number")

// RequestError carries the gateway's validation response, typically a 422 with
// error details in the body.
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("payment gateway rejected the request with status %d: %s", e.Status, e.Body)
}

type Config struct {
	BaseURL     string
	QRCodeURL   string
	PayeeAlias  string
	CallbackURL string

	// Client certificate and key for the mutually authenticated connection,
	// plus the gateway's CA chain. Left empty in tests.
	CertPEM []byte
	KeyPEM  []byte
	CAPEM   []byte
}

type Client struct {
	config Config
	logger *slog.Logger
	http   *http.Client
	// The QR endpoint is served without client-certificate authentication
	// and breaks when offered one, so it gets its own transport.
	qrHTTP *http.Client
}

func NewClient(config Config, logger *slog.Logger) (*Client, error) {
	httpClient := &http.Client{Timeout: 15 * time.Second}

	if len(config.CertPEM) > 0 {
		cert, err := tls.X509KeyPair(config.CertPEM, config.KeyPEM)
		if err != nil {
			return nil, fmt.Errorf("loading gateway client certificate: %w", err)
		}

		tlsConfig := &tls.Config{Certificates: []tls.Certificate{cert}}

		if len(config.CAPEM) > 0 {
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(config.CAPEM) {
				return nil, errors.New("no usable certificates in gateway CA bundle")
			}
			tlsConfig.RootCAs = pool
		}

		httpClient.Transport = &http.Transport{TLSClientConfig: tlsConfig}
	}

	return &Client{
		config: config,
		logger: logger,
		http:   httpClient,
		qrHTTP: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// instructionID generates the gateway's expected instruction id format, 32
// uppercase hex characters.
func instructionID() string {
	id := uuid.New()
	return strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
}

func (c *Client) CreatePaymentRequest(
	ctx context.Context,
	amount decimal.Decimal,
	message string) (*domain.PaymentRequest, error) {

	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	id := instructionID()

	if runes := []rune(message); len(runes) > maxMessageLength {
		message = string(runes[:maxMessageLength])
	}

	body := map[string]string{
		"payeeAlias":  c.config.PayeeAlias,
		"currency":    "SEK",
		"callbackUrl": c.config.CallbackURL,
		"amount":      amount.StringFixed(2),
		"message":     message,
	}

	resp, err := c.put(ctx, c.config.BaseURL+paymentRequestPath+id, body)
	if err != nil {
		return nil, err
	}

	token := resp.Header.Get("PaymentRequestToken")
	if token == "" {
		return nil, errors.New("payment request token missing from gateway response")
	}

	qrCode, err := c.renderQRCode(ctx, token)
	if err != nil {
		return nil, err
	}

	c.logger.Info("created payment request", "id", id)

	return &domain.PaymentRequest{
		ID:     id,
		Token:  token,
		QRCode: qrCode,
	}, nil
}

func (c *Client) CreateRefund(
	ctx context.Context,
	originalPaymentReference string,
	amount decimal.Decimal) (*domain.Refund, error) {

	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	id := instructionID()

	body := map[string]string{
		"payerAlias":               c.config.PayeeAlias,
		"currency":                 "SEK",
		"callbackUrl":              c.config.CallbackURL,
		"originalPaymentReference": originalPaymentReference,
		"amount":                   amount.StringFixed(2),
		"message":                  refundMessage,
	}

	resp, err := c.put(ctx, c.config.BaseURL+refundPath+id, body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, &RequestError{Status: resp.StatusCode}
	}

	c.logger.Info("created refund", "id", id, "originalPaymentReference", originalPaymentReference)

	return &domain.Refund{
		InstructionID: id,
		Location:      resp.Header.Get("Location"),
	}, nil
}

// DeepLink builds the app link that opens the paying party's app directly on
// mobile devices.
func DeepLink(token, callbackURL string) string {
	return fmt.Sprintf("swish://paymentrequest?token=%s&callbackurl=%s", token, url.QueryEscape(callbackURL))
}

func (c *Client) put(ctx context.Context, requestURL string, body map[string]string) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, requestURL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{Status: resp.StatusCode, Body: string(respBody)}
	}

	return resp, nil
}

func (c *Client) renderQRCode(ctx context.Context, token string) (string, error) {
	body := map[string]string{
		"token":  token,
		"size":   "300",
		"format": "png",
		"border": "0",
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.QRCodeURL, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.qrHTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	image, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", &RequestError{Status: resp.StatusCode, Body: string(image)}
	}

	return base64.StdEncoding.EncodeToString(image), nil
}
