package jsonrpc

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/mezonai/token/errors"
	"github.com/mezonai/token/exception"
	"github.com/mezonai/token/interfaces"
	"github.com/mezonai/token/jsonx"
	"github.com/mezonai/token/logx"
	"github.com/mezonai/token/ratelimit"
	"github.com/mezonai/token/service"
	"github.com/mezonai/token/transaction"
	"github.com/mezonai/token/types"
	"github.com/mezonai/token/utils"
)

// --- Error type used by handlers ---

type rpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func toJRPC2Error(e *rpcError) error {
	if e == nil {
		return nil
	}
	var networkError errors.NetworkError
	err := jsonx.Unmarshal([]byte(e.Message), &networkError)
	if err == nil {
		return jrpc2.Errorf(jrpc2.Code(e.Code), "%s", networkError.Message).WithData(networkError)
	}
	return jrpc2.Errorf(jrpc2.Code(e.Code), "%s", e.Message)
}

func newRPCError(err error) *rpcError {
	netErr := errors.FromDomainError(err)
	code := codeServerError
	switch netErr.Code {
	case errors.ErrCodeInvalidRequest, errors.ErrCodeInvalidAddress, errors.ErrCodeInvalidAmount:
		code = codeInvalidParams
	}
	return &rpcError{Code: code, Message: netErr.Error()}
}

// --- Params/Results ---

type tokenInfoResponse struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	TotalSupply string `json:"total_supply"`
}

type balanceOfRequest struct {
	Address string `json:"address"`
}

type balanceOfResponse struct {
	Address  string `json:"address"`
	Balance  string `json:"balance"`
	Decimals uint8  `json:"decimals"`
}

type totalSupplyResponse struct {
	TotalSupply string `json:"total_supply"`
	Decimals    uint8  `json:"decimals"`
}

type transferParams struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
	Nonce     uint64 `json:"nonce"`
	Signature string `json:"signature"`
}

type transferResponse struct {
	Ok        bool   `json:"ok"`
	TxHash    string `json:"tx_hash"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

type getCurrentNonceRequest struct {
	Address string `json:"address"`
	Tag     string `json:"tag"`
}

type getCurrentNonceResponse struct {
	Address string `json:"address"`
	Nonce   uint64 `json:"nonce"`
	Tag     string `json:"tag"`
}

// --- Server ---

type Server struct {
	addr        string
	tokenSvc    interfaces.TokenService
	healthSvc   interfaces.HealthService
	corsConfig  CORSConfig
	rateLimiter *ratelimit.GlobalRateLimiter
	httpServer  *http.Server
	listener    net.Listener
	bridge      bridgeHandler
}

type bridgeHandler interface {
	http.Handler
	Close() error
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

func NewServer(addr string, tokenSvc interfaces.TokenService, healthSvc interfaces.HealthService) *Server {
	return &Server{
		addr:      addr,
		tokenSvc:  tokenSvc,
		healthSvc: healthSvc,
		corsConfig: CORSConfig{
			AllowedOrigins: []string{},
			AllowedMethods: []string{},
			AllowedHeaders: []string{},
			MaxAge:         0,
		},
	}
}

// Handler returns the HTTP handler serving JSON-RPC with CORS headers.
func (s *Server) Handler() http.Handler {
	if s.bridge == nil {
		s.bridge = jhttp.NewBridge(s.buildMethodMap(), &jhttp.BridgeOptions{Server: &jrpc2.ServerOptions{}})
	}
	jh := s.bridge

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.setCORSHeaders(w, r)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		clientIP := extractClientIPFromRequest(r)
		if s.rateLimiter != nil && !s.rateLimiter.AllowIP(clientIP) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(errors.NewError(errors.ErrCodeRateLimited, errors.ErrMsgRateLimited).Error()))
			return
		}
		logx.Debug("JSONRPC", "Request from ", clientIP)
		jh.ServeHTTP(w, r)
	})
}

// Start listens in the background; use Shutdown to stop.
// Start binds the listen address and serves in the background. Bind errors are
// returned to the caller.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("jsonrpc listen %s: %w", s.addr, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	exception.SafeGoWithPanic("jsonrpc", func() {
		logx.Info("JSONRPC", "Listening on ", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logx.Error("JSONRPC", "Server stopped: ", err)
		}
	})
	return nil
}

// Addr is the bound address once Start has succeeded, otherwise the configured one.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	if s.bridge != nil {
		_ = s.bridge.Close()
	}
	return err
}

// SetRateLimiter enables per-IP and per-sender limits; nil disables them.
func (s *Server) SetRateLimiter(rl *ratelimit.GlobalRateLimiter) {
	s.rateLimiter = rl
}

// SetCORSConfig allows configuring CORS settings
func (s *Server) SetCORSConfig(config CORSConfig) {
	s.corsConfig = config
}

// Build jrpc2 method map
func (s *Server) buildMethodMap() handler.Map {
	return handler.Map{
		MethodTokenInfo: handler.New(func(ctx context.Context) (*tokenInfoResponse, error) {
			res, err := s.rpcTokenInfo()
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res.(*tokenInfoResponse), nil
		}),
		MethodTokenBalanceOf: handler.New(func(ctx context.Context, p balanceOfRequest) (*balanceOfResponse, error) {
			res, err := s.rpcBalanceOf(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res.(*balanceOfResponse), nil
		}),
		MethodTokenTotalSupply: handler.New(func(ctx context.Context) (*totalSupplyResponse, error) {
			res, err := s.rpcTotalSupply()
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res.(*totalSupplyResponse), nil
		}),
		MethodTokenTransfer: handler.New(func(ctx context.Context, p transferParams) (*transferResponse, error) {
			res, err := s.rpcTransfer(ctx, p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res.(*transferResponse), nil
		}),
		MethodAccountGetCurrentNonce: handler.New(func(ctx context.Context, p getCurrentNonceRequest) (*getCurrentNonceResponse, error) {
			res, err := s.rpcGetCurrentNonce(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res.(*getCurrentNonceResponse), nil
		}),
		MethodHealthCheck: handler.New(func(ctx context.Context) (*service.HealthCheckResponse, error) {
			return s.healthSvc.Check(ctx)
		}),
	}
}

// --- Implementations ---

func (s *Server) rpcTokenInfo() (interface{}, *rpcError) {
	info := s.tokenSvc.TokenInfo()
	return &tokenInfoResponse{
		Name:        info.Name,
		Symbol:      info.Symbol,
		Decimals:    info.Decimals,
		TotalSupply: utils.Uint256ToString(s.tokenSvc.TotalSupply()),
	}, nil
}

func (s *Server) rpcBalanceOf(p balanceOfRequest) (interface{}, *rpcError) {
	if strings.TrimSpace(p.Address) == "" {
		return nil, newRPCError(errors.NewError(errors.ErrCodeInvalidAddress, errors.ErrMsgInvalidAddress))
	}
	return &balanceOfResponse{
		Address:  p.Address,
		Balance:  utils.Uint256ToString(s.tokenSvc.BalanceOf(types.Address(p.Address))),
		Decimals: s.tokenSvc.TokenInfo().Decimals,
	}, nil
}

func (s *Server) rpcTotalSupply() (interface{}, *rpcError) {
	return &totalSupplyResponse{
		TotalSupply: utils.Uint256ToString(s.tokenSvc.TotalSupply()),
		Decimals:    s.tokenSvc.TokenInfo().Decimals,
	}, nil
}

func (s *Server) rpcTransfer(ctx context.Context, p transferParams) (interface{}, *rpcError) {
	amount, err := utils.ParseAmount(p.Amount)
	if err != nil {
		return nil, newRPCError(err)
	}
	tx := transaction.NewTransfer(types.Address(p.Sender), types.Address(p.Recipient), amount, p.Nonce)
	tx.Signature = p.Signature

	// only requests signed by the sender count against the sender's limit
	if s.rateLimiter != nil {
		if err := tx.Validate(); err != nil {
			return nil, newRPCError(err)
		}
		if !tx.Verify() {
			return nil, newRPCError(service.ErrInvalidSignature)
		}
		if !s.rateLimiter.AllowWallet(p.Sender) {
			return nil, newRPCError(errors.NewError(errors.ErrCodeRateLimited, errors.ErrMsgRateLimited))
		}
	}

	record, err := s.tokenSvc.SubmitTransfer(ctx, tx)
	if err != nil {
		logx.Warn("JSONRPC", fmt.Sprintf("Transfer from %s rejected: %v", p.Sender, err))
		return nil, newRPCError(err)
	}
	return &transferResponse{
		Ok:        true,
		TxHash:    tx.Hash(),
		Sender:    string(record.Sender),
		Recipient: string(record.Recipient),
		Amount:    utils.Uint256ToString(record.Amount),
	}, nil
}

func (s *Server) rpcGetCurrentNonce(p getCurrentNonceRequest) (interface{}, *rpcError) {
	if p.Tag == "" {
		p.Tag = "latest"
	}
	// transfers apply immediately, so pending and latest agree
	if p.Tag != "latest" && p.Tag != "pending" {
		return nil, newRPCError(errors.NewError(errors.ErrCodeInvalidRequest, "invalid tag: must be 'latest' or 'pending'"))
	}
	if strings.TrimSpace(p.Address) == "" {
		return nil, newRPCError(errors.NewError(errors.ErrCodeInvalidAddress, errors.ErrMsgInvalidAddress))
	}
	nonce, err := s.tokenSvc.CurrentNonce(types.Address(p.Address))
	if err != nil {
		return nil, newRPCError(err)
	}
	return &getCurrentNonceResponse{Address: p.Address, Nonce: nonce, Tag: p.Tag}, nil
}

// --- Helpers ---

func (s *Server) setCORSHeaders(w http.ResponseWriter, r *http.Request) {
	// Set allowed origins
	if len(s.corsConfig.AllowedOrigins) > 0 {
		if s.corsConfig.AllowedOrigins[0] == "*" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			// Check if the request origin is in the allowed list
			origin := r.Header.Get("Origin")
			for _, allowedOrigin := range s.corsConfig.AllowedOrigins {
				if origin == allowedOrigin {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
	}

	// Set allowed methods
	if len(s.corsConfig.AllowedMethods) > 0 {
		methods := strings.Join(s.corsConfig.AllowedMethods, ", ")
		w.Header().Set("Access-Control-Allow-Methods", methods)
	}

	// Set allowed headers
	if len(s.corsConfig.AllowedHeaders) > 0 {
		headers := strings.Join(s.corsConfig.AllowedHeaders, ", ")
		w.Header().Set("Access-Control-Allow-Headers", headers)
	}

	// Set max age
	if s.corsConfig.MaxAge > 0 {
		w.Header().Set("Access-Control-Max-Age", fmt.Sprintf("%d", s.corsConfig.MaxAge))
	}
}

// --- Env helpers ---

// CORSFromEnv reads environment variables and constructs a CORSConfig.
// Returns (cfg, true) if any CORS-related env var is set; otherwise (zero, false).
//
// Env vars:
// - CORS_ALLOWED_ORIGINS: comma-separated list
// - CORS_ALLOWED_METHODS: comma-separated list
// - CORS_ALLOWED_HEADERS: comma-separated list
// - CORS_MAX_AGE: integer seconds
func CORSFromEnv() (CORSConfig, bool) {
	origins := os.Getenv("CORS_ALLOWED_ORIGINS")
	methods := os.Getenv("CORS_ALLOWED_METHODS")
	headers := os.Getenv("CORS_ALLOWED_HEADERS")
	maxAgeStr := os.Getenv("CORS_MAX_AGE")

	var maxAge int
	if maxAgeStr != "" {
		if v, err := strconv.Atoi(maxAgeStr); err == nil {
			maxAge = v
		}
	}

	var allowedOrigins, allowedMethods, allowedHeaders []string
	if origins != "" {
		allowedOrigins = splitAndTrim(origins)
	}
	if methods != "" {
		allowedMethods = splitAndTrim(methods)
	}
	if headers != "" {
		allowedHeaders = splitAndTrim(headers)
	}

	provided := len(allowedOrigins) > 0 || len(allowedMethods) > 0 || len(allowedHeaders) > 0 || maxAge > 0
	if !provided {
		return CORSConfig{}, false
	}

	return CORSConfig{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: allowedMethods,
		AllowedHeaders: allowedHeaders,
		MaxAge:         maxAge,
	}, true
}

// CORSFromOrigins is the CORS setup used when only an origin list is configured.
func CORSFromOrigins(origins []string) CORSConfig {
	return CORSConfig{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}
}
