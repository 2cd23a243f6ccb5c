package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourorg/swapkit-go/internal/apperr"
	"github.com/yourorg/swapkit-go/internal/otel"
	"github.com/yourorg/swapkit-go/internal/plugin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Swap forwards params to the requested plugin, or the default one, and
// returns the plugin's transaction hash unchanged. Plugin errors are returned
// as-is; nothing is retried.
func (c *Client) Swap(ctx context.Context, params plugin.SwapParams) (txHash string, err error) {
	start := time.Now()
	target := string(params.ProviderName())
	defer func() { c.metrics.ObserveDispatch("swap", target, err, start) }()

	if params.Route == nil {
		return "", apperr.New(apperr.KeySwapInvalidParams)
	}

	name, p, err := c.plugins.Resolve(params.ProviderName())
	if err != nil {
		return "", err
	}
	target = string(name)

	ctx, span := otel.Tracer().Start(ctx, "core.Swap", trace.WithAttributes(
		attribute.String("plugin", target),
		attribute.String("sell_asset", params.Route.SellAsset),
		attribute.String("buy_asset", params.Route.BuyAsset),
	))
	defer span.End()

	log := logrus.WithFields(logrus.Fields{
		"op_id":      uuid.NewString(),
		"plugin":     name,
		"sell_asset": params.Route.SellAsset,
		"buy_asset":  params.Route.BuyAsset,
	})
	log.Debug("Dispatching swap")

	txHash, err = p.Swap(ctx, params)
	if err != nil {
		otel.RecordError(ctx, err)
		log.WithError(err).Warn("Swap failed")
		return "", err
	}

	log.WithField("tx", txHash).Info("Swap sent")
	chain, chainErr := params.Route.SellChain()
	if chainErr != nil {
		log.WithError(chainErr).Debug("Swap event without sell chain")
	}
	c.emitTx(TxEvent{Kind: "swap", Chain: chain, TxHash: txHash, Plugin: name})
	return txHash, nil
}
