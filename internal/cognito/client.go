// Package cognito implements the identity provider side of the authentication flow over the
// provider's JSON-1.1 HTTP API.
package cognito

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/fzdarsky/cognito-srp/internal/logging"
	"github.com/fzdarsky/cognito-srp/pkg/protocol"
	"github.com/fzdarsky/cognito-srp/pkg/srp"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "cognito-srp"
)

// Endpoint returns the regional identity provider URL.
func Endpoint(region string) string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/", region)
}

// RegionFromPoolID returns the region prefix of a pool id such as "us-east-1_AbCdEf".
func RegionFromPoolID(poolID string) (string, error) {
	region, name, ok := strings.Cut(poolID, "_")
	if !ok || region == "" || name == "" {
		return "", protocol.NewConfigurationError(fmt.Sprintf("pool id %q has no region prefix", poolID))
	}
	return region, nil
}

// Client talks to the identity provider. It is safe for concurrent use.
type Client struct {
	endpoint        string
	clientID        string
	clientSecret    string
	sendClientProof bool
	logger          *logging.Logger
	http            *resty.Client
}

// Option configures a Client.
type Option func(*Client)

// WithClientSecret enables SECRET_HASH for app clients that have a secret.
func WithClientSecret(secret string) Option {
	return func(c *Client) {
		c.clientSecret = secret
	}
}

// WithTimeout bounds every HTTP round trip.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
		c.http.SetLogger(restyLogger{logger})
	}
}

// WithClientProof sends M1 as SRP_M1. The hosted provider rejects unknown challenge responses,
// so it is off by default.
func WithClientProof() Option {
	return func(c *Client) {
		c.sendClientProof = true
	}
}

// NewClient creates a client for the app client clientID at endpoint.
func NewClient(endpoint, clientID string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		clientID: clientID,
		logger:   logging.Discard(),
		http: resty.New().
			SetTimeout(defaultTimeout).
			SetHeader("User-Agent", userAgent),
	}
	c.http.SetLogger(restyLogger{c.logger})

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Initiate starts USER_SRP_AUTH with the client public value A and returns the
// PASSWORD_VERIFIER challenge.
func (c *Client) Initiate(ctx context.Context, username, srpA string) (*protocol.Challenge, error) {
	params := map[string]string{
		protocol.ParamUsername: username,
		protocol.ParamSRPA:     srpA,
	}
	if c.clientSecret != "" {
		params[protocol.ParamSecretHash] = protocol.SecretHash(c.clientSecret, username, c.clientID)
	}

	req := &protocol.InitiateAuthRequest{
		AuthFlow:       protocol.AuthFlowUserSRP,
		ClientID:       c.clientID,
		AuthParameters: params,
	}

	var resp protocol.AuthResponse
	if err := c.call(ctx, protocol.TargetInitiateAuth, req, &resp); err != nil {
		return nil, err
	}

	return protocol.ChallengeFromResponse(&resp)
}

// Respond answers the PASSWORD_VERIFIER challenge and returns the issued tokens.
func (c *Client) Respond(ctx context.Context, resp *protocol.ChallengeResponse) (*protocol.AuthenticationResult, error) {
	out := *resp
	if !c.sendClientProof {
		out.ClientProof = ""
	}
	if c.clientSecret != "" {
		out.SecretHash = protocol.SecretHash(c.clientSecret, out.Username, c.clientID)
	}

	req := &protocol.RespondToAuthChallengeRequest{
		ChallengeName:      protocol.ChallengePasswordVerifier,
		ClientID:           c.clientID,
		ChallengeResponses: out.Responses(),
		Session:            out.Session,
	}

	var final protocol.AuthResponse
	if err := c.call(ctx, protocol.TargetRespondToAuthChallenge, req, &final); err != nil {
		return nil, err
	}

	return final.Result()
}

// call posts one JSON-1.1 request and decodes the response into out.
func (c *Client) call(ctx context.Context, target string, in, out any) error {
	body, err := protocol.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	operation := target[strings.LastIndexByte(target, '.')+1:]
	c.logger.Debug("calling identity provider", map[string]any{
		"operation": operation,
		"endpoint":  c.endpoint,
	})

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader(protocol.TargetHeader, target).
		SetHeader("Content-Type", protocol.ContentType).
		SetBody(body).
		Post(c.endpoint)
	if err != nil {
		return fmt.Errorf("%w: %w", protocol.NewNetworkError(operation), err)
	}

	if resp.IsError() {
		se := protocol.ParseServiceError(resp.StatusCode(), resp.Body())
		c.logger.Debug("identity provider returned an error", map[string]any{
			"operation": operation,
			"status":    resp.StatusCode(),
			"type":      se.Kind(),
		})
		return se
	}

	if err := protocol.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: %s response: %v", srp.ErrFormat, operation, err)
	}

	c.logger.Debug("identity provider call succeeded", map[string]any{
		"operation": operation,
		"status":    resp.StatusCode(),
		"duration":  resp.Time().String(),
	})

	return nil
}

// restyLogger routes resty's internal messages to the structured logger.
type restyLogger struct {
	logger *logging.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), map[string]any{"component": "http"})
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)), map[string]any{"component": "http"})
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), map[string]any{"component": "http"})
}
