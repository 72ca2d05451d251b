// Package protocol defines the identity provider's USER_SRP_AUTH wire types, error codes and the
// JSON codec shared by the HTTP client and the in-process test provider.
package protocol

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/fzdarsky/cognito-srp/pkg/srp"
)

// Auth flow and challenge names.
const (
	AuthFlowUserSRP           = "USER_SRP_AUTH"
	ChallengePasswordVerifier = "PASSWORD_VERIFIER"
)

// JSON-1.1 request framing.
const (
	ContentType                  = "application/x-amz-json-1.1"
	TargetHeader                 = "X-Amz-Target"
	TargetInitiateAuth           = "AWSCognitoIdentityProviderService.InitiateAuth"
	TargetRespondToAuthChallenge = "AWSCognitoIdentityProviderService.RespondToAuthChallenge"
)

// Parameter keys used in AuthParameters, ChallengeParameters and ChallengeResponses.
const (
	ParamUsername                 = "USERNAME"
	ParamSecretHash               = "SECRET_HASH"
	ParamSRPA                     = "SRP_A"
	ParamSRPB                     = "SRP_B"
	ParamSalt                     = "SALT"
	ParamSecretBlock              = "SECRET_BLOCK"
	ParamUserIDForSRP             = "USER_ID_FOR_SRP"
	ParamPasswordClaimSecretBlock = "PASSWORD_CLAIM_SECRET_BLOCK"
	ParamPasswordClaimSignature   = "PASSWORD_CLAIM_SIGNATURE"
	ParamTimestamp                = "TIMESTAMP"

	// ParamSRPM1 and ParamSRPM2 carry the SRP-6a proofs for providers that exchange them.
	// The hosted identity provider does neither and signals acceptance by issuing tokens.
	ParamSRPM1 = "SRP_M1"
	ParamSRPM2 = "SRP_M2"
)

// InitiateAuthRequest is the body of an InitiateAuth call.
type InitiateAuthRequest struct {
	AuthFlow       string            `json:"AuthFlow"`
	ClientID       string            `json:"ClientId"`
	AuthParameters map[string]string `json:"AuthParameters"`
}

// RespondToAuthChallengeRequest is the body of a RespondToAuthChallenge call.
type RespondToAuthChallengeRequest struct {
	ChallengeName      string            `json:"ChallengeName"`
	ClientID           string            `json:"ClientId"`
	ChallengeResponses map[string]string `json:"ChallengeResponses"`
	Session            string            `json:"Session,omitempty"`
}

// AuthResponse is the body returned by both InitiateAuth and RespondToAuthChallenge.
// Exactly one of ChallengeName and AuthenticationResult is set on success.
type AuthResponse struct {
	ChallengeName        string                `json:"ChallengeName,omitempty"`
	ChallengeParameters  map[string]string     `json:"ChallengeParameters,omitempty"`
	Session              string                `json:"Session,omitempty"`
	AuthenticationResult *AuthenticationResult `json:"AuthenticationResult,omitempty"`
}

// AuthenticationResult holds the tokens issued after a successful exchange.
type AuthenticationResult struct {
	AccessToken  string `json:"AccessToken,omitempty"`
	ExpiresIn    int    `json:"ExpiresIn,omitempty"`
	IDToken      string `json:"IdToken,omitempty"`
	RefreshToken string `json:"RefreshToken,omitempty"`
	TokenType    string `json:"TokenType,omitempty"`

	// ServerProof is the hex M2 when the provider sent one in SRP_M2.
	ServerProof string `json:"-"`
}

// Challenge is a decoded PASSWORD_VERIFIER challenge.
type Challenge struct {
	Session      string
	SRPB         string
	Salt         string
	SecretBlock  string
	Username     string
	UserIDForSRP string
}

// Parameters renders c as ChallengeParameters.
func (c *Challenge) Parameters() map[string]string {
	params := map[string]string{
		ParamSRPB:        c.SRPB,
		ParamSalt:        c.Salt,
		ParamSecretBlock: c.SecretBlock,
		ParamUsername:    c.Username,
	}
	if c.UserIDForSRP != "" {
		params[ParamUserIDForSRP] = c.UserIDForSRP
	}
	return params
}

// ChallengeFromResponse extracts the PASSWORD_VERIFIER challenge from an InitiateAuth response.
func ChallengeFromResponse(resp *AuthResponse) (*Challenge, error) {
	if resp.ChallengeName != ChallengePasswordVerifier {
		return nil, fmt.Errorf("%w: got %q, want %s", ErrUnexpectedChallenge, resp.ChallengeName, ChallengePasswordVerifier)
	}

	c := &Challenge{
		Session:      resp.Session,
		SRPB:         resp.ChallengeParameters[ParamSRPB],
		Salt:         resp.ChallengeParameters[ParamSalt],
		SecretBlock:  resp.ChallengeParameters[ParamSecretBlock],
		Username:     resp.ChallengeParameters[ParamUsername],
		UserIDForSRP: resp.ChallengeParameters[ParamUserIDForSRP],
	}

	for key, value := range map[string]string{
		ParamSRPB:        c.SRPB,
		ParamSalt:        c.Salt,
		ParamSecretBlock: c.SecretBlock,
	} {
		if value == "" {
			return nil, fmt.Errorf("%w: challenge parameter %s is missing", srp.ErrFormat, key)
		}
	}

	return c, nil
}

// ChallengeResponse answers a PASSWORD_VERIFIER challenge.
type ChallengeResponse struct {
	Session     string
	Username    string
	SecretBlock string
	Timestamp   string
	Signature   string

	// Optional fields, omitted from the wire when empty.
	ClientProof string
	SecretHash  string
}

// Responses renders r as ChallengeResponses.
func (r *ChallengeResponse) Responses() map[string]string {
	responses := map[string]string{
		ParamUsername:                 r.Username,
		ParamPasswordClaimSecretBlock: r.SecretBlock,
		ParamPasswordClaimSignature:   r.Signature,
		ParamTimestamp:                r.Timestamp,
	}
	if r.ClientProof != "" {
		responses[ParamSRPM1] = r.ClientProof
	}
	if r.SecretHash != "" {
		responses[ParamSecretHash] = r.SecretHash
	}
	return responses
}

// ChallengeResponseFromRequest decodes the ChallengeResponses of a RespondToAuthChallenge call.
func ChallengeResponseFromRequest(req *RespondToAuthChallengeRequest) (*ChallengeResponse, error) {
	if req.ChallengeName != ChallengePasswordVerifier {
		return nil, fmt.Errorf("%w: got %q, want %s", ErrUnexpectedChallenge, req.ChallengeName, ChallengePasswordVerifier)
	}

	r := &ChallengeResponse{
		Session:     req.Session,
		Username:    req.ChallengeResponses[ParamUsername],
		SecretBlock: req.ChallengeResponses[ParamPasswordClaimSecretBlock],
		Timestamp:   req.ChallengeResponses[ParamTimestamp],
		Signature:   req.ChallengeResponses[ParamPasswordClaimSignature],
		ClientProof: req.ChallengeResponses[ParamSRPM1],
		SecretHash:  req.ChallengeResponses[ParamSecretHash],
	}
	if r.Username == "" || r.SecretBlock == "" || r.Timestamp == "" || r.Signature == "" {
		return nil, fmt.Errorf("%w: incomplete challenge response", srp.ErrFormat)
	}

	return r, nil
}

// Result returns the tokens of a final response. A response that carries another challenge
// instead (new password, MFA) yields ErrUnexpectedChallenge.
func (r *AuthResponse) Result() (*AuthenticationResult, error) {
	if r.AuthenticationResult == nil {
		if r.ChallengeName != "" {
			return nil, fmt.Errorf("%w: %s is not supported", ErrUnexpectedChallenge, r.ChallengeName)
		}
		return nil, fmt.Errorf("%w: response carries neither tokens nor a challenge", srp.ErrFormat)
	}

	result := *r.AuthenticationResult
	result.ServerProof = r.ChallengeParameters[ParamSRPM2]
	return &result, nil
}

// NewFinalResponse wraps result in an AuthResponse, moving its server proof into
// ChallengeParameters.
func NewFinalResponse(result *AuthenticationResult) *AuthResponse {
	resp := &AuthResponse{AuthenticationResult: result}
	if result.ServerProof != "" {
		resp.ChallengeParameters = map[string]string{ParamSRPM2: result.ServerProof}
	}
	return resp
}

// SecretHash returns SECRET_HASH for app clients that have a secret:
// base64(HMAC-SHA256(clientSecret, username | clientID)).
func SecretHash(clientSecret, username, clientID string) string {
	mac := hmac.New(sha256.New, []byte(clientSecret))
	mac.Write([]byte(username))
	mac.Write([]byte(clientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
