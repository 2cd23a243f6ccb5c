package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourorg/swapkit-go/internal/apperr"
	"github.com/yourorg/swapkit-go/internal/model"
	"github.com/yourorg/swapkit-go/internal/otel"
	"github.com/yourorg/swapkit-go/internal/plugin"
	"github.com/yourorg/swapkit-go/internal/types"
	"github.com/yourorg/swapkit-go/internal/wallet"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ApproveMode selects between granting and checking an allowance
type ApproveMode int

const (
	ApproveModeApprove ApproveMode = iota
	ApproveModeCheckOnly
)

// String returns the mode name used in logs and metrics
func (m ApproveMode) String() string {
	if m == ApproveModeCheckOnly {
		return "check_only"
	}
	return "approve"
}

// Approved is returned by ApproveAssetValue when no approval is needed
const Approved = "approved"

type approval struct {
	txHash   string
	approved bool
}

// ApproveAssetValue grants spender an allowance covering av. spender is a
// contract address or the name of a plugin that resolves one.
func (c *Client) ApproveAssetValue(ctx context.Context, av model.AssetValue, contractAddressOrPlugin string) (string, error) {
	res, err := c.approve(ctx, av, ApproveModeApprove, contractAddressOrPlugin)
	if err != nil {
		return "", err
	}
	return res.txHash, nil
}

// IsAssetValueApproved reports whether the current allowance covers av
func (c *Client) IsAssetValueApproved(ctx context.Context, av model.AssetValue, contractAddressOrPlugin string) (bool, error) {
	res, err := c.approve(ctx, av, ApproveModeCheckOnly, contractAddressOrPlugin)
	if err != nil {
		return false, err
	}
	return res.approved, nil
}

func (c *Client) approve(ctx context.Context, av model.AssetValue, mode ApproveMode, contractAddressOrPlugin string) (res approval, err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveDispatch(mode.String(), string(av.Chain), err, start) }()

	chain := av.Chain
	isEVMChain := types.IsApprovalChain(chain)
	if (isEVMChain && av.IsGasAsset()) || !isEVMChain || av.IsSynthetic() {
		return approval{txHash: Approved, approved: true}, nil
	}

	ctx, span := otel.Tracer().Start(ctx, "core.approve", trace.WithAttributes(
		attribute.String("chain", string(chain)),
		attribute.String("mode", mode.String()),
		attribute.String("asset", av.Identifier()),
	))
	defer span.End()
	defer func() { otel.RecordError(ctx, err) }()

	w, ok := c.wallets.Get(chain)
	if !ok {
		return approval{}, apperr.New(apperr.KeyWalletConnectionNotFound)
	}

	var (
		approver wallet.Approver
		checker  wallet.ApprovalChecker
	)
	if mode == ApproveModeCheckOnly {
		checker, ok = w.Toolbox.(wallet.ApprovalChecker)
	} else {
		approver, ok = w.Toolbox.(wallet.Approver)
	}
	if !ok {
		return approval{}, apperr.Newf(apperr.KeyWalletConnectionNotFound, "wallet for %s cannot %s", chain, mode)
	}

	from := c.wallets.Address(chain)
	if av.Address == "" || from == "" {
		return approval{}, apperr.New(apperr.KeyApproveAssetAddressOrFromNotFound)
	}

	spender, err := c.resolveSpender(ctx, chain, contractAddressOrPlugin)
	if err != nil {
		return approval{}, err
	}

	params := wallet.ApproveParams{
		Amount:         av.BaseValue(),
		AssetAddress:   av.Address,
		From:           from,
		SpenderAddress: spender,
	}

	opID := uuid.NewString()
	log := logrus.WithFields(logrus.Fields{
		"op_id":   opID,
		"chain":   chain,
		"asset":   av.Identifier(),
		"spender": spender,
		"mode":    mode.String(),
	})

	if mode == ApproveModeCheckOnly {
		approved, err := checker.IsApproved(ctx, params)
		if err != nil {
			return approval{}, err
		}
		log.WithField("approved", approved).Debug("Allowance checked")
		return approval{approved: approved}, nil
	}

	txHash, err := approver.Approve(ctx, params)
	if err != nil {
		return approval{}, err
	}
	log.WithField("tx", txHash).Info("Approval sent")
	c.emitTx(TxEvent{Kind: "approve", Chain: chain, TxHash: txHash})
	return approval{txHash: txHash}, nil
}

// resolveSpender asks a registered plugin for its spender, falling back to
// treating the argument as a literal address
func (c *Client) resolveSpender(ctx context.Context, chain types.Chain, contractAddressOrPlugin string) (string, error) {
	p, err := c.plugins.Get(plugin.Name(contractAddressOrPlugin))
	if err != nil {
		return contractAddressOrPlugin, nil
	}
	resolver, ok := p.(plugin.SpenderResolver)
	if !ok {
		return contractAddressOrPlugin, nil
	}
	return resolver.GetSpender(ctx, chain)
}
