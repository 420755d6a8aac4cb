package node

import (
	"context"
	"fmt"

	dadbs "github.com/DADBSLabs/DADBS-TESTNET"
	"github.com/DADBSLabs/DADBS-TESTNET/types"

	"go.uber.org/zap"
)

// Service wraps a Validator with call-order enforcement and
// capability routing. Transports serve the validator exclusively
// through this wrapper.
type Service struct {
	v     dadbs.Validator
	guard *Guard
	caps  types.Capabilities
	log   *zap.Logger

	// Optional interfaces (nil if not implemented).
	gen dadbs.Generator
	sq  dadbs.StakeQuerier
}

// NewService wraps v. A nil logger disables logging.
func NewService(v dadbs.Validator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		v:     v,
		guard: NewGuard(),
		log:   logger,
	}
	// Pre-discover optional interfaces (validated after Info).
	s.gen, _ = v.(dadbs.Generator)
	s.sq, _ = v.(dadbs.StakeQuerier)
	return s
}

// Info serves the announcement, validates the capability
// declaration against the interfaces the validator implements, and
// unlocks serving calls. Repeated calls pass through.
func (s *Service) Info(ctx context.Context, req types.RequestInfo) (types.ResponseInfo, error) {
	first := s.guard.AcquireInfo()

	resp, err := s.v.Info(ctx, req)
	if err != nil {
		if first {
			s.guard.FailInfo()
		}
		return resp, err
	}

	if first {
		if err := s.verifyCapabilities(resp.Capabilities); err != nil {
			s.guard.FailInfo()
			return types.ResponseInfo{}, err
		}
		s.caps = resp.Capabilities
		s.guard.CompleteInfo()
	}
	return resp, nil
}

// ConfirmTransaction delegates the confirmation poll. Safe for
// concurrent use once Info has completed.
func (s *Service) ConfirmTransaction(ctx context.Context, req types.RequestConfirm) (types.ResponseConfirm, error) {
	s.guard.CheckServing()
	return s.v.ConfirmTransaction(ctx, req)
}

// Generate delegates to the Generator capability if declared.
func (s *Service) Generate(ctx context.Context, req types.RequestGenerate) (types.ResponseGenerate, error) {
	s.guard.CheckServing()
	if s.gen == nil || !s.caps.Has(types.CapGeneration) {
		return types.ResponseGenerate{}, dadbs.NewNotSupportedError("Generate", s.caps)
	}
	return s.gen.Generate(ctx, req)
}

// QueryStake delegates to the StakeQuerier capability if declared.
func (s *Service) QueryStake(ctx context.Context, req types.RequestStake) (types.ResponseStake, error) {
	s.guard.CheckServing()
	if s.sq == nil || !s.caps.Has(types.CapStakeQuery) {
		return types.ResponseStake{}, dadbs.NewNotSupportedError("QueryStake", s.caps)
	}
	return s.sq.QueryStake(ctx, req)
}

// Capabilities returns the validator's declared capabilities.
// Only valid after Info completes.
func (s *Service) Capabilities() types.Capabilities {
	return s.caps
}

// AsGenerator returns the Generator interface or nil.
func (s *Service) AsGenerator() dadbs.Generator {
	if s.caps.Has(types.CapGeneration) {
		return s.gen
	}
	return nil
}

// AsStakeQuerier returns the StakeQuerier interface or nil.
func (s *Service) AsStakeQuerier() dadbs.StakeQuerier {
	if s.caps.Has(types.CapStakeQuery) {
		return s.sq
	}
	return nil
}

// Close is a no-op for the service wrapper.
func (s *Service) Close() error { return nil }

var _ dadbs.Connection = (*Service)(nil)

// verifyCapabilities checks the declared capabilities against the
// interfaces the wrapped value implements. Declaring a capability
// without implementing it is an error; the reverse only logs, since
// the capability will simply not be used.
func (s *Service) verifyCapabilities(declared types.Capabilities) error {
	if declared.Has(types.CapGeneration) && s.gen == nil {
		return fmt.Errorf("node: validator declared CapGeneration but does not implement Generator")
	}
	if declared.Has(types.CapStakeQuery) && s.sq == nil {
		return fmt.Errorf("node: validator declared CapStakeQuery but does not implement StakeQuerier")
	}
	if !declared.Has(types.CapGeneration) && s.gen != nil {
		s.log.Warn("validator implements Generator but did not declare it; capability will not be used")
	}
	if !declared.Has(types.CapStakeQuery) && s.sq != nil {
		s.log.Warn("validator implements StakeQuerier but did not declare it; capability will not be used")
	}
	return nil
}
