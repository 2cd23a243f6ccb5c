package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/yourorg/swapkit-go/internal/apperr"
	"github.com/yourorg/swapkit-go/internal/model"
	"github.com/yourorg/swapkit-go/internal/plugin"
	"github.com/yourorg/swapkit-go/internal/types"
	"github.com/yourorg/swapkit-go/internal/wallet"
)

type errorResponse struct {
	Error string     `json:"error"`
	Key   apperr.Key `json:"key,omitempty"`
}

type assetView struct {
	Asset     string `json:"asset"`
	Value     string `json:"value"`
	BaseValue string `json:"baseValue"`
	Decimals  int32  `json:"decimals"`
}

type walletView struct {
	Chain      types.Chain `json:"chain"`
	Address    string      `json:"address"`
	WalletType wallet.Type `json:"walletType"`
	Balance    []assetView `json:"balance"`
}

// approveRequest is the body of /approve and /approved. Spender is a
// contract address or a plugin name. Decimals is required for contract tokens.
type approveRequest struct {
	Asset    string `json:"asset"`
	Amount   string `json:"amount"`
	Decimals int32  `json:"decimals,omitempty"`
	Spender  string `json:"spender"`
}

// statusFor maps error keys to HTTP status codes
var statusFor = map[apperr.Key]int{
	apperr.KeyWalletConnectionNotFound:          http.StatusNotFound,
	apperr.KeyPluginNotFound:                    http.StatusNotFound,
	apperr.KeyInboundDataNotFound:               http.StatusNotFound,
	apperr.KeySwapInvalidParams:                 http.StatusBadRequest,
	apperr.KeySwapAssetNotRecognized:            http.StatusBadRequest,
	apperr.KeyAssetValueInvalid:                 http.StatusBadRequest,
	apperr.KeyApproveAssetAddressOrFromNotFound: http.StatusBadRequest,
	apperr.KeyTransactionInvalidSenderAddress:   http.StatusBadRequest,
	apperr.KeyExplorerUnsupportedChain:          http.StatusBadRequest,
	apperr.KeyTransactionDepositInsufficient:    http.StatusPaymentRequired,
	apperr.KeyWalletMethodNotSupported:          http.StatusNotImplemented,
	apperr.KeyChainHalted:                       http.StatusServiceUnavailable,
	apperr.KeyNodeRequestFailed:                 http.StatusBadGateway,
	apperr.KeyTransactionDepositServerError:     http.StatusBadGateway,
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	key, ok := apperr.KeyOf(err)
	status := http.StatusInternalServerError
	if ok {
		if s, found := statusFor[key]; found {
			status = s
		}
	}
	if status >= http.StatusInternalServerError {
		logrus.WithError(err).Error("Request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Key: key})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// chainParam parses the {chain} URL parameter
func chainParam(w http.ResponseWriter, r *http.Request) (types.Chain, bool) {
	raw := chi.URLParam(r, "chain")
	chain, ok := types.ParseChain(raw)
	if !ok {
		badRequest(w, "unknown chain "+strconv.Quote(raw))
	}
	return chain, ok
}

func toWalletView(w *wallet.ChainWallet) walletView {
	v := walletView{
		Chain:      w.Chain,
		Address:    w.Address,
		WalletType: w.WalletType,
	}
	if w.Balance != nil {
		v.Balance = make([]assetView, 0, len(w.Balance))
		for _, av := range w.Balance {
			v.Balance = append(v.Balance, assetView{
				Asset:     av.Identifier(),
				Value:     av.Value().String(),
				BaseValue: av.BaseValue().String(),
				Decimals:  av.Decimals,
			})
		}
	}
	return v
}

// handleHealth is a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleMetrics exposes Prometheus metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.EnableMetrics || s.gatherer == nil {
		http.Error(w, "Metrics disabled", http.StatusServiceUnavailable)
		return
	}
	promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

// handleStatus provides detailed service status information
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	breakers := make(map[string]string, len(s.nodes))
	for _, n := range s.nodes {
		if cb := n.Breaker(); cb != nil {
			breakers[string(n.Network())] = cb.GetState().String()
		}
	}

	status := map[string]interface{}{
		"status":           "operational",
		"uptime":           time.Since(startTime).String(),
		"stagenet":         s.cfg.Stagenet,
		"connected_chains": s.client.ConnectedChains(),
		"connect_methods":  s.client.ConnectMethods(),
		"plugins":          s.client.Plugins(),
		"default_plugin":   s.client.DefaultPlugin(),
		"node_circuits":    breakers,
	}
	if s.exporter != nil {
		status["export"] = s.exporter.Status()
	}
	writeJSON(w, http.StatusOK, status)
}

// handleWallets lists every connected wallet with its cached balance
func (s *Server) handleWallets(w http.ResponseWriter, r *http.Request) {
	chains := s.client.ConnectedChains()
	out := make([]walletView, 0, len(chains))
	for _, chain := range chains {
		if cw, ok := s.client.GetWallet(chain); ok {
			out = append(out, toWalletView(cw))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleWallet returns one wallet, refreshing its balance on ?refresh=true
func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request) {
	chain, ok := chainParam(w, r)
	if !ok {
		return
	}

	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	if !refresh {
		cw, found := s.client.GetWallet(chain)
		if !found {
			writeError(w, apperr.New(apperr.KeyWalletConnectionNotFound))
			return
		}
		writeJSON(w, http.StatusOK, toWalletView(cw))
		return
	}

	scamFilter := true
	if raw := r.URL.Query().Get("scamFilter"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			scamFilter = v
		}
	}
	cw, err := s.client.GetWalletWithBalance(r.Context(), chain, scamFilter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWalletView(cw))
}

func (s *Server) handleExplorerTx(w http.ResponseWriter, r *http.Request) {
	chain, ok := chainParam(w, r)
	if !ok {
		return
	}
	url, err := s.client.GetExplorerTxURL(chain, chi.URLParam(r, "hash"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) handleExplorerAddress(w http.ResponseWriter, r *http.Request) {
	chain, ok := chainParam(w, r)
	if !ok {
		return
	}
	url, err := s.client.GetExplorerAddressURL(chain, chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	chain, ok := chainParam(w, r)
	if !ok {
		return
	}
	valid, supported := s.client.ValidateAddress(chain, chi.URLParam(r, "address"))
	writeJSON(w, http.StatusOK, map[string]bool{"valid": valid, "supported": supported})
}

// handleSwap dispatches a quoted route to its plugin
func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	var params plugin.SwapParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	txHash, err := s.client.Swap(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"txHash": txHash})
}

func (s *Server) decodeApprove(w http.ResponseWriter, r *http.Request) (model.AssetValue, string, bool) {
	var req approveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return model.AssetValue{}, "", false
	}

	var (
		av  model.AssetValue
		err error
	)
	if req.Decimals > 0 {
		av, err = model.NewAssetValue(req.Asset, req.Amount, req.Decimals)
	} else {
		av, err = model.ParseAssetValue(req.Asset, req.Amount)
		if err == nil && av.Address != "" {
			err = apperr.Newf(apperr.KeyAssetValueInvalid, "decimals are required for token %s", av.Identifier())
		}
	}
	if err != nil {
		writeError(w, err)
		return model.AssetValue{}, "", false
	}
	if req.Spender == "" {
		req.Spender = string(s.client.DefaultPlugin())
	}
	return av, req.Spender, true
}

// handleApprove grants the spender an allowance covering the asset value
func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	av, spender, ok := s.decodeApprove(w, r)
	if !ok {
		return
	}
	txHash, err := s.client.ApproveAssetValue(r.Context(), av, spender)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"txHash": txHash})
}

// handleIsApproved reports whether the allowance already covers the value
func (s *Server) handleIsApproved(w http.ResponseWriter, r *http.Request) {
	av, spender, ok := s.decodeApprove(w, r)
	if !ok {
		return
	}
	approved, err := s.client.IsAssetValueApproved(r.Context(), av, spender)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"approved": approved})
}
