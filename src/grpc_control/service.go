package grpc_control

import (
	"context"
	"encoding/json"
	"fmt"

	"twsclient/src/config"
	"twsclient/src/interfaces"
	"twsclient/src/logger"
	"twsclient/src/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ControlService lets operators manage subscriptions and the session policy
// of a running client. Messages are protobuf well-known types so no
// generated code is needed on either side.
type ControlService struct {
	Config     *config.Config
	ConfigPath string // empty disables persistence
	State      interfaces.IClientState
	Logger     *logger.Logger
}

var _ ControlServer = (*ControlService)(nil)

func NewControlService(cfg *config.Config, cfgPath string, state interfaces.IClientState, log *logger.Logger) *ControlService {
	return &ControlService{
		Config:     cfg,
		ConfigPath: cfgPath,
		State:      state,
		Logger:     log,
	}
}

// -----------------------------------------------------------------------------

func (s *ControlService) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"connected":      s.State.IsConnected(),
		"server_version": s.State.ServerVersion(),
		"pending_calls":  s.State.PendingCalls(),
		"subscriptions":  len(s.State.Snapshots()),
		"live_orders":    len(s.State.Orders()),
	})
}

// -----------------------------------------------------------------------------

// Subscribe takes the fields of a subscription entry (symbol, sec_type,
// exchange, currency, ...) and returns the market data request id.
func (s *ControlService) Subscribe(ctx context.Context, req *structpb.Struct) (*wrapperspb.Int32Value, error) {
	var entry models.MSubscriptionEntry
	if err := fromStruct(req, &entry); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "bad subscription: %v", err)
	}
	if entry.Symbol == "" {
		return nil, status.Error(codes.InvalidArgument, "symbol is required")
	}
	contract, err := entry.Contract()
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	id, err := s.State.RequestMarketData(contract, entry.GenericTicks, false)
	if err != nil {
		s.Logger.Error("gRPC: Subscribe %s failed: %v", entry.Symbol, err)
		return nil, status.Error(codeOf(err), err.Error())
	}

	if s.Config != nil && s.Config.AddSubscription(entry) {
		s.persist()
	}
	s.Logger.Info("gRPC: Subscribed %s as request %d", entry.Symbol, id)
	return wrapperspb.Int32(int32(id)), nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) Cancel(ctx context.Context, req *wrapperspb.Int32Value) (*emptypb.Empty, error) {
	id := int(req.GetValue())
	snap, found := s.State.Snapshot(id)
	if !found {
		return nil, status.Errorf(codes.NotFound, "no subscription %d", id)
	}
	if err := s.State.CancelMarketData(id); err != nil {
		return nil, status.Error(codeOf(err), err.Error())
	}

	if s.Config != nil && s.Config.RemoveSubscription(snap.Contract.Symbol) > 0 {
		s.persist()
	}
	s.Logger.Info("gRPC: Cancelled request %d (%s)", id, snap.Contract.Symbol)
	return &emptypb.Empty{}, nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) GetSnapshot(ctx context.Context, req *wrapperspb.Int32Value) (*structpb.Struct, error) {
	snap, found := s.State.Snapshot(int(req.GetValue()))
	if !found {
		return nil, status.Errorf(codes.NotFound, "no subscription %d", req.GetValue())
	}
	return toStruct(snap)
}

func (s *ControlService) ListSnapshots(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(map[string]any{"snapshots": s.State.Snapshots()})
}

// -----------------------------------------------------------------------------

func (s *ControlService) GetPolicy(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return policyStruct(s.State.Policy())
}

// SetPolicy applies the fields present in req; see models.MPolicyUpdate.
func (s *ControlService) SetPolicy(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var update models.MPolicyUpdate
	if err := fromStruct(req, &update); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "bad policy: %v", err)
	}
	if update.DuplicateTimeoutMs != nil && *update.DuplicateTimeoutMs < 0 {
		return nil, status.Error(codes.InvalidArgument, "duplicate_timeout_ms must not be negative")
	}

	p := update.Apply(s.State.Policy())
	s.State.SetPolicy(p)

	if s.Config != nil {
		s.Config.Policy.DuplicateTimeoutMs = int(p.DuplicateTimeout.Milliseconds())
		s.Config.Policy.GenerateTradesFromLast = p.GenerateTradesFromLast
		s.Config.Policy.GenerateTradesFromVolume = p.GenerateTradesFromVolume
		s.Config.Policy.SuppressSizeWithPrice = p.SuppressSizeWithPrice
		s.persist()
	}
	s.Logger.Info("gRPC: Session policy changed: %+v", p)
	return policyStruct(p)
}

// -----------------------------------------------------------------------------

func (s *ControlService) persist() {
	if s.ConfigPath == "" {
		return
	}
	if err := s.Config.Save(s.ConfigPath); err != nil {
		s.Logger.Error("gRPC: Failed to save config: %v", err)
	}
}

// toStruct converts v through its JSON form so field names match the REST API.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode: %v", err)
	}
	return out, nil
}

func fromStruct(in *structpb.Struct, v any) error {
	if in == nil {
		return fmt.Errorf("empty message")
	}
	raw, err := in.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func policyStruct(p models.MSessionPolicy) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"duplicate_timeout_ms":        p.DuplicateTimeout.Milliseconds(),
		"generate_trades_from_last":   p.GenerateTradesFromLast,
		"generate_trades_from_volume": p.GenerateTradesFromVolume,
		"suppress_size_with_price":    p.SuppressSizeWithPrice,
	})
}

// -----------------------------------------------------------------------------

// Register attaches the service to srv.
func Register(srv *grpc.Server, svc *ControlService) {
	srv.RegisterService(&ServiceDesc, svc)
}
