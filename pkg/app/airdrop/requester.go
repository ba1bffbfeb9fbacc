package airdrop

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	appusage "github.com/solport/devportal/pkg/app/usage"
	"github.com/solport/devportal/pkg/common"
	domainerrors "github.com/solport/devportal/pkg/domain"
	domain "github.com/solport/devportal/pkg/domain/usage"
	"github.com/solport/devportal/pkg/infra/prometheus"
	"github.com/solport/devportal/pkg/infra/solana"
)

// ErrInvalidAmount covers amounts that do not parse as SOL or are not positive.
var ErrInvalidAmount = errors.New("invalid airdrop amount")

// Result is a successful airdrop: the faucet accepted the transfer and
// returned a transaction signature.
type Result struct {
	Signature string `json:"signature"`
	Wallet    string `json:"wallet"`
	Lamports  int64  `json:"lamports"`
	Sol       string `json:"sol"`
}

// Requester runs the faucet flow: admission check, RPC transfer, detached
// usage record. The usage record never fails the request; the admission
// check failing to evaluate does (fail closed).
type Requester struct {
	rpc     solana.Client
	limiter *appusage.Limiter
	tracker *appusage.Tracker
	logger  *logrus.Logger
}

func NewRequester(
	rpc solana.Client,
	limiter *appusage.Limiter,
	tracker *appusage.Tracker,
	logger *logrus.Logger,
) *Requester {
	return &Requester{
		rpc:     rpc,
		limiter: limiter,
		tracker: tracker,
		logger:  logger,
	}
}

func (r *Requester) Request(ctx context.Context, userID, wallet, amountSol string) (*Result, error) {
	lamports, err := domain.SolToLamports(amountSol)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if lamports <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	if !validWalletAddress(wallet) {
		return nil, domainerrors.ErrInvalidWallet
	}

	decision, err := r.limiter.Check(ctx, userID, lamports)
	if err != nil {
		prometheus.AirdropsTotal.WithLabelValues("check_unavailable").Inc()
		return nil, err
	}
	if !decision.Allowed {
		prometheus.AirdropsTotal.WithLabelValues("denied").Inc()
		prometheus.AdmissionDeniedTotal.WithLabelValues(common.AirdropUsageDomain, decision.Reason).Inc()
		return nil, &domainerrors.AdmissionDeniedError{Decision: decision}
	}

	signature, err := r.rpc.RequestAirdrop(ctx, wallet, lamports)
	if err != nil {
		prometheus.AirdropsTotal.WithLabelValues("rpc_error").Inc()
		return nil, fmt.Errorf("airdrop transfer failed: %w", err)
	}

	// The transfer succeeded; accounting must not undo that.
	r.tracker.RecordDetached(userID, lamports, wallet)
	prometheus.AirdropsTotal.WithLabelValues("success").Inc()

	r.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"wallet":    wallet,
		"lamports":  lamports,
		"signature": signature,
	}).Info("airdrop completed")

	return &Result{
		Signature: signature,
		Wallet:    wallet,
		Lamports:  lamports,
		Sol:       domain.LamportsToSol(lamports),
	}, nil
}

// validWalletAddress checks the base58 shape of a Solana pubkey without
// pulling in a full SDK.
func validWalletAddress(wallet string) bool {
	if len(wallet) < 32 || len(wallet) > 44 {
		return false
	}
	for _, c := range wallet {
		switch {
		case c >= '1' && c <= '9':
		case c >= 'A' && c <= 'H':
		case c >= 'J' && c <= 'N':
		case c >= 'P' && c <= 'Z':
		case c >= 'a' && c <= 'k':
		case c >= 'm' && c <= 'z':
		default:
			return false
		}
	}
	return true
}
