package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"solana-token-qualifier/internal/observability"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
	DefaultRPS         = 10
)

// HTTPClient implements RPCClient using HTTP JSON-RPC 2.0 with bounded
// retries, request rate limiting and an optional circuit breaker.
type HTTPClient struct {
	endpoint    string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker
	requestID   atomic.Uint64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.retryDelay = d
	}
}

// WithRateLimit sets the request rate limit in requests per second.
func WithRateLimit(rps int) ClientOption {
	return func(c *HTTPClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), rps)
	}
}

// WithCircuitBreaker installs a circuit breaker around all RPC calls.
// When the breaker is open, calls fail immediately without hitting the
// network, which plays into the risk gate's fail-open semantics.
func WithCircuitBreaker(settings gobreaker.Settings) ClientOption {
	return func(c *HTTPClient) {
		c.breaker = gobreaker.NewCircuitBreaker(settings)
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient creates a new Solana RPC HTTP client.
func NewHTTPClient(endpoint string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
		limiter:     rate.NewLimiter(rate.Limit(DefaultRPS), DefaultRPS),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile-time interface check.
var _ RPCClient = (*HTTPClient)(nil)

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// call performs a JSON-RPC call through the rate limiter and breaker,
// with retries and exponential backoff.
func (c *HTTPClient) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	start := time.Now()
	var err error
	if c.breaker == nil {
		err = c.doCall(ctx, method, params, result)
	} else {
		_, err = c.breaker.Execute(func() (interface{}, error) {
			return nil, c.doCall(ctx, method, params, result)
		})
	}
	observability.RecordRPCCall(method, time.Since(start).Seconds(), err)
	return err
}

func (c *HTTPClient) doCall(ctx context.Context, method string, params []interface{}, result interface{}) error {
	reqID := c.requestID.Add(1)
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(respBody, &rpcResp); err != nil {
			lastErr = fmt.Errorf("unmarshal response: %w", err)
			continue
		}

		if rpcResp.Error != nil {
			// RPC errors are not retried
			return rpcResp.Error
		}

		if result != nil && rpcResp.Result != nil {
			if err := json.Unmarshal(rpcResp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// GetSignaturesForAddress retrieves signatures for an address with pagination.
func (c *HTTPClient) GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error) {
	config := make(map[string]interface{})
	if opts != nil {
		if opts.Before != "" {
			config["before"] = opts.Before
		}
		if opts.Until != "" {
			config["until"] = opts.Until
		}
		if opts.Limit > 0 {
			config["limit"] = opts.Limit
		}
	}

	params := []interface{}{address}
	if len(config) > 0 {
		params = append(params, config)
	}

	var result []getSignaturesResult
	if err := c.call(ctx, "getSignaturesForAddress", params, &result); err != nil {
		return nil, err
	}

	sigs := make([]SignatureInfo, len(result))
	for i, r := range result {
		sigs[i] = SignatureInfo{
			Signature: r.Signature,
			Slot:      r.Slot,
			BlockTime: r.BlockTime,
			Err:       r.Err,
		}
	}

	return sigs, nil
}

type getSignaturesResult struct {
	Signature string      `json:"signature"`
	Slot      int64       `json:"slot"`
	BlockTime *int64      `json:"blockTime"`
	Err       interface{} `json:"err"`
}

// GetTransaction retrieves a transaction by signature.
// Returns nil if the transaction is not found.
func (c *HTTPClient) GetTransaction(ctx context.Context, signature string) (*Transaction, error) {
	params := []interface{}{
		signature,
		map[string]interface{}{
			"encoding":                       "json",
			"maxSupportedTransactionVersion": 0,
		},
	}

	var result getTransactionResult
	if err := c.call(ctx, "getTransaction", params, &result); err != nil {
		return nil, err
	}

	if result.Slot == 0 && result.BlockTime == nil {
		return nil, nil
	}

	tx := &Transaction{
		Slot:      result.Slot,
		Signature: signature,
	}
	if result.BlockTime != nil {
		tx.BlockTime = *result.BlockTime
	}
	if result.Meta != nil {
		tx.Meta = &TransactionMeta{
			Err:          result.Meta.Err,
			Fee:          result.Meta.Fee,
			PreBalances:  result.Meta.PreBalances,
			PostBalances: result.Meta.PostBalances,
			LogMessages:  result.Meta.LogMessages,
		}
	}
	if result.Transaction != nil && result.Transaction.Message != nil {
		tx.Message = &TransactionMessage{
			AccountKeys: result.Transaction.Message.AccountKeys,
		}
	}

	return tx, nil
}

type getTransactionResult struct {
	Slot        int64               `json:"slot"`
	BlockTime   *int64              `json:"blockTime"`
	Meta        *getTransactionMeta `json:"meta"`
	Transaction *getTransactionTx   `json:"transaction"`
}

type getTransactionMeta struct {
	Err          interface{} `json:"err"`
	Fee          uint64      `json:"fee"`
	PreBalances  []uint64    `json:"preBalances"`
	PostBalances []uint64    `json:"postBalances"`
	LogMessages  []string    `json:"logMessages"`
}

type getTransactionTx struct {
	Message *getTransactionMessage `json:"message"`
}

type getTransactionMessage struct {
	AccountKeys []string `json:"accountKeys"`
}

// GetProgramAccounts retrieves accounts owned by a program.
func (c *HTTPClient) GetProgramAccounts(ctx context.Context, programID string, filter *ProgramAccountsFilter) ([]ProgramAccount, error) {
	config := map[string]interface{}{
		"encoding": "base64",
	}
	var filters []interface{}
	if filter != nil {
		if filter.DataSize > 0 {
			filters = append(filters, map[string]interface{}{"dataSize": filter.DataSize})
		}
		if filter.MemcmpBytes != "" {
			filters = append(filters, map[string]interface{}{
				"memcmp": map[string]interface{}{
					"offset": filter.MemcmpOffset,
					"bytes":  filter.MemcmpBytes,
				},
			})
		}
	}
	if len(filters) > 0 {
		config["filters"] = filters
	}

	params := []interface{}{programID, config}

	var result []getProgramAccountResult
	if err := c.call(ctx, "getProgramAccounts", params, &result); err != nil {
		return nil, err
	}

	accounts := make([]ProgramAccount, 0, len(result))
	for _, r := range result {
		acc := ProgramAccount{
			Pubkey: r.Pubkey,
			Account: AccountInfo{
				Lamports:   r.Account.Lamports,
				Owner:      r.Account.Owner,
				Executable: r.Account.Executable,
				RentEpoch:  r.Account.RentEpoch,
			},
		}
		if len(r.Account.Data) >= 1 {
			acc.Account.Data = r.Account.Data[0]
		}
		accounts = append(accounts, acc)
	}

	return accounts, nil
}

type getProgramAccountResult struct {
	Pubkey  string              `json:"pubkey"`
	Account getAccountInfoValue `json:"account"`
}

// GetAccountInfo retrieves account info by public key.
// Returns nil if account not found.
func (c *HTTPClient) GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error) {
	params := []interface{}{
		pubkey,
		map[string]interface{}{
			"encoding": "base64",
		},
	}

	var result getAccountInfoResult
	if err := c.call(ctx, "getAccountInfo", params, &result); err != nil {
		return nil, err
	}

	if result.Value == nil {
		return nil, nil
	}

	info := &AccountInfo{
		Lamports:   result.Value.Lamports,
		Owner:      result.Value.Owner,
		Executable: result.Value.Executable,
		RentEpoch:  result.Value.RentEpoch,
	}
	if len(result.Value.Data) >= 1 {
		info.Data = result.Value.Data[0]
	}

	return info, nil
}

type getAccountInfoResult struct {
	Value *getAccountInfoValue `json:"value"`
}

type getAccountInfoValue struct {
	Lamports   uint64   `json:"lamports"`
	Owner      string   `json:"owner"`
	Data       []string `json:"data"` // [base64_data, encoding]
	Executable bool     `json:"executable"`
	RentEpoch  uint64   `json:"rentEpoch"`
}

// GetTokenLargestAccounts retrieves the largest token accounts for a mint.
func (c *HTTPClient) GetTokenLargestAccounts(ctx context.Context, mint string) ([]TokenAccountBalance, error) {
	params := []interface{}{mint}

	var result tokenLargestAccountsResult
	if err := c.call(ctx, "getTokenLargestAccounts", params, &result); err != nil {
		return nil, err
	}

	balances := make([]TokenAccountBalance, 0, len(result.Value))
	for _, v := range result.Value {
		b := TokenAccountBalance{
			Address:  v.Address,
			Decimals: v.Decimals,
		}
		if v.UIAmount != nil {
			b.Amount = *v.UIAmount
		}
		balances = append(balances, b)
	}

	return balances, nil
}

type tokenLargestAccountsResult struct {
	Value []tokenAmountValue `json:"value"`
}

type tokenAmountValue struct {
	Address  string   `json:"address"`
	UIAmount *float64 `json:"uiAmount"`
	Decimals int      `json:"decimals"`
}

// GetTokenSupply retrieves the total supply of a token mint.
func (c *HTTPClient) GetTokenSupply(ctx context.Context, mint string) (*TokenSupply, error) {
	params := []interface{}{mint}

	var result tokenSupplyResult
	if err := c.call(ctx, "getTokenSupply", params, &result); err != nil {
		return nil, err
	}

	supply := &TokenSupply{Decimals: result.Value.Decimals}
	if result.Value.UIAmount != nil {
		supply.Amount = *result.Value.UIAmount
	}
	return supply, nil
}

type tokenSupplyResult struct {
	Value tokenAmountValue `json:"value"`
}
