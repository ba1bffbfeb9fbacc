package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"github.com/solport/devportal/pkg/infra/httpx"
)

// Client is the portal's boundary to a Solana RPC node. Only the two calls
// the portal needs are exposed; anything heavier belongs in a real SDK.
//
//go:generate mockery --name=Client --dir=. --output=./mocks --filename=solana_client_mock.go --case=underscore --with-expecter
type Client interface {
	// RequestAirdrop asks the cluster faucet to transfer lamports to the
	// wallet and returns the transaction signature.
	RequestAirdrop(ctx context.Context, wallet string, lamports int64) (string, error)
	// GetBalance returns the wallet's balance in lamports.
	GetBalance(ctx context.Context, wallet string) (int64, error)
}

type Config struct {
	RPCURL  string
	Timeout time.Duration
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type client struct {
	httpClient *fasthttp.Client
	breaker    httpx.CircuitBreaker
	logger     *logrus.Logger
	rpcURL     string
	timeout    time.Duration
}

func NewClient(cfg Config, logger *logrus.Logger) Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &client{
		httpClient: &fasthttp.Client{
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxConnsPerHost:     64,
			MaxIdleConnDuration: 30 * time.Second,
		},
		breaker: httpx.NewCircuitBreaker("solana-rpc", 30*time.Second, 5),
		logger:  logger,
		rpcURL:  cfg.RPCURL,
		timeout: timeout,
	}
}

func (c *client) RequestAirdrop(ctx context.Context, wallet string, lamports int64) (string, error) {
	result, err := c.call(ctx, "requestAirdrop", []interface{}{wallet, lamports})
	if err != nil {
		return "", err
	}
	var signature string
	if err := json.Unmarshal(result, &signature); err != nil {
		return "", fmt.Errorf("unexpected requestAirdrop result: %w", err)
	}
	return signature, nil
}

func (c *client) GetBalance(ctx context.Context, wallet string) (int64, error) {
	result, err := c.call(ctx, "getBalance", []interface{}{wallet})
	if err != nil {
		return 0, err
	}
	var payload struct {
		Value int64 `json:"value"`
	}
	if err := json.Unmarshal(result, &payload); err != nil {
		return 0, fmt.Errorf("unexpected getBalance result: %w", err)
	}
	return payload.Value, nil
}

func (c *client) call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode rpc request: %w", err)
	}

	var result json.RawMessage
	err = c.breaker.Execute(func() error {
		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(c.rpcURL)
		req.Header.SetMethod(fasthttp.MethodPost)
		req.Header.SetContentType("application/json")
		req.SetBodyRaw(body)

		timeout := c.timeout
		if deadline, ok := ctx.Deadline(); ok {
			if remaining := time.Until(deadline); remaining < timeout {
				timeout = remaining
			}
		}
		if err := c.httpClient.DoTimeout(req, resp, timeout); err != nil {
			return fmt.Errorf("rpc transport error: %w", err)
		}
		if resp.StatusCode() != fasthttp.StatusOK {
			return fmt.Errorf("rpc returned status %d", resp.StatusCode())
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(resp.Body(), &rpcResp); err != nil {
			return fmt.Errorf("failed to decode rpc response: %w", err)
		}
		if rpcResp.Error != nil {
			return fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
		}
		result = rpcResp.Result
		return nil
	})
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"method": method,
		}).WithError(err).Warn("solana rpc call failed")
		return nil, err
	}
	return result, nil
}
