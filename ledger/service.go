package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/reactor/errors"
)

// Config seeds a Service.
type Config struct {
	// Principal identifies the account the service manages.
	Principal string
	Balance   uint64
}

// Service is an in-memory ledger for a single account. Transfers spend
// from an allowance set by Approve and credit the recipient.
type Service struct {
	accounts  map[string]uint64
	principal string
	balance   uint64
	allowance uint64
	mu        sync.Mutex
}

var _ API = (*Service)(nil)

func NewService(cfg Config) *Service {
	if cfg.Principal == "" {
		cfg.Principal = "anonymous"
	}
	return &Service{
		principal: cfg.Principal,
		balance:   cfg.Balance,
		accounts:  make(map[string]uint64),
	}
}

func (s *Service) Balance(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance, nil
}

// Approve sets the allowance that Transfer may spend and returns it.
// An amount of zero revokes the allowance.
func (s *Service) Approve(ctx context.Context, amount uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allowance = amount

	Logger().Debug("allowance approved", zap.Uint64("amount", amount))
	return s.allowance, nil
}

// Transfer moves args.Amount to args.To and returns the remaining balance.
func (s *Service) Transfer(ctx context.Context, args TransferArgs) (uint64, error) {
	if args.To == "" {
		return 0, errors.InvalidInput(errors.PhaseInvoke, "transfer recipient is empty")
	}
	if args.Amount == 0 {
		return 0, errors.InvalidInput(errors.PhaseInvoke, "transfer amount must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if args.Amount > s.allowance {
		return 0, errors.New(errors.PhaseInvoke, errors.KindPermission).
			Method("transfer").
			Value(args.Amount).
			Detail("amount exceeds approved allowance of %d", s.allowance).
			Build()
	}
	if args.Amount > s.balance {
		return 0, errors.New(errors.PhaseInvoke, errors.KindInvalidInput).
			Method("transfer").
			Value(args.Amount).
			Detail("insufficient funds: balance %d", s.balance).
			Build()
	}

	s.balance -= args.Amount
	s.allowance -= args.Amount
	s.accounts[args.To] += args.Amount

	Logger().Info("transfer",
		zap.String("to", args.To),
		zap.Uint64("amount", args.Amount),
		zap.Uint64("balance", s.balance))
	return s.balance, nil
}

// DepositPrincipal returns the deposit address derived from the principal:
// the first 20 bytes of its SHA-256, hex encoded with a 0x prefix.
func (s *Service) DepositPrincipal(ctx context.Context) (string, error) {
	sum := sha256.Sum256([]byte(s.principal))
	return "0x" + hex.EncodeToString(sum[:20]), nil
}

// Received returns how much has been transferred to account.
func (s *Service) Received(account string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[account]
}
