package srptest

import (
	"errors"
	"io"
	"net/http"

	"github.com/fzdarsky/cognito-srp/pkg/protocol"
)

const maxBodySize = 1 << 20

// Handler serves InitiateAuth and RespondToAuthChallenge over the JSON-1.1 protocol, selected by
// the X-Amz-Target header. Mount it on an httptest.Server to exercise HTTP clients.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeServiceError(w, &protocol.ServiceError{
				StatusCode: http.StatusMethodNotAllowed,
				Type:       "UnknownOperationException",
				Message:    "only POST is supported",
			})
			return
		}

		body := io.LimitReader(r.Body, maxBodySize)
		switch r.Header.Get(protocol.TargetHeader) {
		case protocol.TargetInitiateAuth:
			s.handleInitiateAuth(w, r, body)
		case protocol.TargetRespondToAuthChallenge:
			s.handleRespondToAuthChallenge(w, r, body)
		default:
			writeServiceError(w, serviceError("UnknownOperationException", "unknown target"))
		}
	})
}

func (s *Server) handleInitiateAuth(w http.ResponseWriter, r *http.Request, body io.Reader) {
	var req protocol.InitiateAuthRequest
	if err := protocol.Decode(body, &req); err != nil {
		writeServiceError(w, serviceError("SerializationException", "request body is not valid JSON"))
		return
	}
	if req.AuthFlow != protocol.AuthFlowUserSRP {
		writeServiceError(w, serviceError(protocol.ExceptionInvalidParameter, "unsupported AuthFlow "+req.AuthFlow))
		return
	}

	username := req.AuthParameters[protocol.ParamUsername]
	if se := s.checkClient(req.ClientID, username, req.AuthParameters[protocol.ParamSecretHash]); se != nil {
		writeServiceError(w, se)
		return
	}

	challenge, err := s.Initiate(r.Context(), username, req.AuthParameters[protocol.ParamSRPA])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &protocol.AuthResponse{
		ChallengeName:       protocol.ChallengePasswordVerifier,
		ChallengeParameters: challenge.Parameters(),
		Session:             challenge.Session,
	})
}

func (s *Server) handleRespondToAuthChallenge(w http.ResponseWriter, r *http.Request, body io.Reader) {
	var req protocol.RespondToAuthChallengeRequest
	if err := protocol.Decode(body, &req); err != nil {
		writeServiceError(w, serviceError("SerializationException", "request body is not valid JSON"))
		return
	}

	resp, err := protocol.ChallengeResponseFromRequest(&req)
	if err != nil {
		writeServiceError(w, serviceError(protocol.ExceptionInvalidParameter, err.Error()))
		return
	}
	if se := s.checkClient(req.ClientID, resp.Username, resp.SecretHash); se != nil {
		writeServiceError(w, se)
		return
	}

	result, err := s.Respond(r.Context(), resp)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, protocol.NewFinalResponse(result))
}

// checkClient validates the app client id and, for clients with a secret, SECRET_HASH.
func (s *Server) checkClient(clientID, username, secretHash string) *protocol.ServiceError {
	if s.clientID == "" {
		return nil
	}
	if clientID != s.clientID {
		return serviceError(protocol.ExceptionResourceNotFound, "User pool client "+clientID+" does not exist.")
	}
	if s.clientSecret != "" && secretHash != protocol.SecretHash(s.clientSecret, username, clientID) {
		return serviceError(protocol.ExceptionNotAuthorized, "Unable to verify secret hash for client "+clientID)
	}
	return nil
}

func writeError(w http.ResponseWriter, err error) {
	var se *protocol.ServiceError
	if errors.As(err, &se) {
		writeServiceError(w, se)
		return
	}
	writeServiceError(w, &protocol.ServiceError{
		StatusCode: http.StatusInternalServerError,
		Type:       protocol.ExceptionInternalError,
		Message:    err.Error(),
	})
}

func writeServiceError(w http.ResponseWriter, se *protocol.ServiceError) {
	writeJSON(w, se.StatusCode, se)
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", protocol.ContentType)
	w.WriteHeader(statusCode)

	// The status line is already out; nothing useful to do on failure.
	_ = protocol.Encode(w, v)
}
