// Package httpagent is a reference Agent Facade implementation (spec.md
// §4.2) speaking a JSON-over-HTTP/2 (h2c) encoding of the wire format in
// spec.md §6.2. It exists so the Pipeline is runnable end-to-end against a
// real backend in integration tests and the demo CLI; the protocol's actual
// RPC/signing semantics remain an external concern per spec.md §1.
package httpagent

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
	"golang.org/x/net/http2"

	"github.com/icgateway/gateway"
)

// Agent implements gateway.Agent against a backend endpoint that accepts
// POSTed call envelopes and returns JSON-encoded HttpResponse records.
type Agent struct {
	BaseURL    string
	HTTPClient *http.Client

	// UpdatePollInterval and UpdatePollAttempts bound the retry-go loop
	// UpdateAndWait uses while polling for commitment. The spec applies
	// no internal timeout to update_and_wait; bound ctx externally.
	UpdatePollInterval time.Duration
	UpdatePollAttempts uint
}

// New builds an Agent with an HTTP/2-over-cleartext (h2c) client transport,
// matching the backend's preference for multiplexed RPC calls.
func New(baseURL string) *Agent {
	return &Agent{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Transport: &http2.Transport{
				AllowHTTP: true,
				DialTLSContext: func(ctx context.Context, network, addr string, cfg *tls.Config) (net.Conn, error) {
					var d net.Dialer
					return d.DialContext(ctx, network, addr)
				},
			},
		},
		UpdatePollInterval: 200 * time.Millisecond,
		UpdatePollAttempts: 50,
	}
}

type callEnvelope struct {
	Method             string      `json:"method"`
	URL                string      `json:"url"`
	Headers            [][2]string `json:"headers"`
	Body               []byte      `json:"body"`
	MaxVerificationVer *uint16     `json:"max_verification_version,omitempty"`
}

type replyEnvelope struct {
	StatusCode        uint16             `json:"status_code"`
	Headers           [][2]string        `json:"headers"`
	Body              []byte             `json:"body"`
	Upgrade           bool               `json:"upgrade,omitempty"`
	StreamingStrategy *streamingEnvelope `json:"streaming_strategy,omitempty"`
}

type streamingEnvelope struct {
	CallbackServicePrincipal string `json:"callback_service_principal"`
	CallbackMethodName       string `json:"callback_method_name"`
	Token                    []byte `json:"token"`
}

func toWire(req gateway.HttpRequest, maxVersion uint16) callEnvelope {
	headers := make([][2]string, len(req.Headers))
	for i, h := range req.Headers {
		headers[i] = [2]string{h.Name, h.Value}
	}
	return callEnvelope{
		Method:             req.Method,
		URL:                req.URL,
		Headers:            headers,
		Body:               req.Body,
		MaxVerificationVer: &maxVersion,
	}
}

func fromWire(r replyEnvelope) gateway.HttpResponse {
	headers := make([]gateway.HttpHeader, len(r.Headers))
	for i, h := range r.Headers {
		headers[i] = gateway.HttpHeader{Name: h[0], Value: h[1]}
	}
	resp := gateway.HttpResponse{
		StatusCode: r.StatusCode,
		Headers:    headers,
		Body:       r.Body,
		Upgrade:    r.Upgrade,
	}
	if r.StreamingStrategy != nil {
		resp.StreamingStrategy = &gateway.StreamingStrategy{
			Kind: gateway.StreamCallback,
			CallbackRef: gateway.CallbackRef{
				ServicePrincipal: r.StreamingStrategy.CallbackServicePrincipal,
				MethodName:       r.StreamingStrategy.CallbackMethodName,
			},
			InitialToken: gateway.Token(r.StreamingStrategy.Token),
		}
	}
	return resp
}

func (a *Agent) post(ctx context.Context, path string, envelope any) (replyEnvelope, error) {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return replyEnvelope{}, gateway.AgentError{Kind: gateway.AgentOther, Msg: err.Error()}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return replyEnvelope{}, gateway.AgentError{Kind: gateway.AgentOther, Msg: err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.HTTPClient.Do(httpReq)
	if err != nil {
		return replyEnvelope{}, gateway.AgentError{Kind: gateway.AgentHTTPTransport, Msg: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return replyEnvelope{}, gateway.AgentError{Kind: gateway.AgentHTTPTransport, Msg: err.Error()}
	}
	if resp.StatusCode >= 400 {
		return replyEnvelope{}, gateway.AgentError{
			Kind:       gateway.AgentHTTPTransport,
			HTTPStatus: resp.StatusCode,
			Payload:    body,
			Msg:        fmt.Sprintf("backend transport error: HTTP %d", resp.StatusCode),
		}
	}

	var out replyEnvelope
	if err := json.Unmarshal(body, &out); err != nil {
		return replyEnvelope{}, gateway.AgentError{Kind: gateway.AgentOther, Msg: err.Error()}
	}
	return out, nil
}

// Query implements gateway.Agent.
func (a *Agent) Query(ctx context.Context, service, method string, req gateway.HttpRequest, maxVersion uint16) (gateway.HttpResponse, error) {
	out, err := a.post(ctx, fmt.Sprintf("/api/v2/canister/%s/query/%s", service, method), toWire(req, maxVersion))
	if err != nil {
		return gateway.HttpResponse{}, err
	}
	return fromWire(out), nil
}

// RangeQuery implements gateway.Agent; it is semantically a Query, kept as
// a separate method name per spec.md §4.2 for call-site clarity.
func (a *Agent) RangeQuery(ctx context.Context, service, method string, req gateway.HttpRequest, maxVersion uint16) (gateway.HttpResponse, error) {
	return a.Query(ctx, service, method, req, maxVersion)
}

// UpdateAndWait implements gateway.Agent: it submits the update call, then
// polls for its committed result via retry-go. The spec applies no
// internal timeout; bound ctx externally to bound this loop.
func (a *Agent) UpdateAndWait(ctx context.Context, service, method string, req gateway.HttpRequest) (gateway.HttpResponse, error) {
	submitOut, err := a.post(ctx, fmt.Sprintf("/api/v2/canister/%s/call/%s", service, method), toWire(req, gateway.MaxVerificationVersion))
	if err != nil {
		return gateway.HttpResponse{}, err
	}
	if submitOut.StatusCode != 0 {
		// the backend answered synchronously; nothing to poll.
		return fromWire(submitOut), nil
	}

	var result gateway.HttpResponse
	pollErr := retry.Do(
		func() error {
			out, err := a.post(ctx, fmt.Sprintf("/api/v2/canister/%s/read_state/%s", service, method), toWire(req, gateway.MaxVerificationVersion))
			if err != nil {
				return err
			}
			if out.StatusCode == 0 {
				return fmt.Errorf("update call not yet committed")
			}
			result = fromWire(out)
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(a.UpdatePollAttempts),
		retry.Delay(a.UpdatePollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.OnRetry(func(n uint, err error) {
			gateway.Log().Debug("polling update call", zap.Uint("attempt", n), zap.Error(err))
		}),
	)
	if pollErr != nil {
		return gateway.HttpResponse{}, gateway.AgentError{Kind: gateway.AgentOther, Msg: pollErr.Error()}
	}
	return result, nil
}

// StreamCallback implements gateway.Agent.
func (a *Agent) StreamCallback(ctx context.Context, ref gateway.CallbackRef, token gateway.Token) ([]byte, gateway.Token, error) {
	type callbackReq struct {
		Token []byte `json:"token"`
	}
	payload, _ := json.Marshal(callbackReq{Token: token})
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/api/v2/canister/%s/callback/%s", a.BaseURL, ref.ServicePrincipal, ref.MethodName),
		bytes.NewReader(payload))
	if err != nil {
		return nil, nil, gateway.AgentError{Kind: gateway.AgentOther, Msg: err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, nil, gateway.AgentError{Kind: gateway.AgentHTTPTransport, Msg: err.Error()}
	}
	defer resp.Body.Close()

	var out struct {
		Body  []byte `json:"body"`
		Token []byte `json:"token,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, nil, gateway.AgentError{Kind: gateway.AgentOther, Msg: err.Error()}
	}
	var next gateway.Token
	if out.Token != nil {
		next = gateway.Token(out.Token)
	}
	return out.Body, next, nil
}

// RootKey implements gateway.Agent.
func (a *Agent) RootKey(ctx context.Context) ([]byte, error) {
	out, err := a.post(ctx, "/api/v2/status", nil)
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}
