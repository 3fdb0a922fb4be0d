package core

import (
	"context"

	"codeassist/pkg/corerpc"
	"codeassist/pkg/logging"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// StateService exposes the state document over gRPC.
type StateService struct {
	store *StateStore
}

// NewStateService creates a StateService over store.
func NewStateService(store *StateStore) *StateService {
	return &StateService{store: store}
}

// GetLatestState returns the whole state document as JSON.
func (s *StateService) GetLatestState(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String(s.store.Latest()), nil
}

// UpdateProviderPartial applies a masked provider update.
func (s *StateService) UpdateProviderPartial(ctx context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
	update, err := corerpc.ProviderUpdateFromStruct(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if len(update.UpdateMask) == 0 && !update.SetAsActive {
		return nil, status.Error(codes.InvalidArgument, "update mask is empty")
	}

	if err := s.store.ApplyProviderUpdate(update); err != nil {
		return nil, status.Errorf(codes.Internal, "failed to apply update: %v", err)
	}

	logging.Debug("Core", "Applied %s update to fields %v (active=%t)", update.Provider, update.UpdateMask, update.SetAsActive)
	return &emptypb.Empty{}, nil
}
