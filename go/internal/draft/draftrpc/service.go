package draftrpc

import (
	"context"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/ledger"
	"github.com/mcdev12/dynasty-draft/go/internal/models"
)

// Engine is what the service needs from the orchestrator. The Client
// implements it too.
type Engine interface {
	StartDraft(ctx context.Context, draftID, commissionerID uuid.UUID) (models.DraftStatus, error)
	PauseDraft(ctx context.Context, draftID, commissionerID uuid.UUID) (models.DraftStatus, error)
	ResumeDraft(ctx context.Context, draftID, commissionerID uuid.UUID) (models.DraftStatus, error)
	CompleteDraft(ctx context.Context, draftID, commissionerID uuid.UUID) (models.DraftStatus, error)
	ResetDraft(ctx context.Context, draftID, commissionerID uuid.UUID) (models.DraftStatus, error)
	UndoLastPick(ctx context.Context, draftID, commissionerID uuid.UUID) (*ledger.Snapshot, error)
	SubmitPick(ctx context.Context, draftID, teamID, playerID uuid.UUID) (models.DraftPick, error)
	SetAutopick(ctx context.Context, draftID, teamID uuid.UUID, enabled bool) (*ledger.Snapshot, error)
	SetPresence(ctx context.Context, draftID, teamID uuid.UUID, online bool) error
	GetSnapshot(ctx context.Context, draftID uuid.UUID) (*ledger.Snapshot, error)
	ListAvailablePlayers(ctx context.Context, draftID uuid.UUID) ([]models.Player, error)
	ActivateDraft(ctx context.Context, draftID uuid.UUID) (*ledger.Snapshot, error)
	ListActiveDrafts(ctx context.Context) ([]uuid.UUID, error)
}

// Service implements the DraftService RPCs on top of an Engine
type Service struct {
	engine Engine
}

func NewService(engine Engine) *Service {
	return &Service{engine: engine}
}

// NewHandler builds an HTTP handler serving every DraftService procedure. It
// returns the path to mount it on.
func NewHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(StartDraftProcedure, connect.NewUnaryHandler(StartDraftProcedure, svc.commissionerOp(svc.engine.StartDraft), opts...))
	mux.Handle(PauseDraftProcedure, connect.NewUnaryHandler(PauseDraftProcedure, svc.commissionerOp(svc.engine.PauseDraft), opts...))
	mux.Handle(ResumeDraftProcedure, connect.NewUnaryHandler(ResumeDraftProcedure, svc.commissionerOp(svc.engine.ResumeDraft), opts...))
	mux.Handle(CompleteDraftProcedure, connect.NewUnaryHandler(CompleteDraftProcedure, svc.commissionerOp(svc.engine.CompleteDraft), opts...))
	mux.Handle(ResetDraftProcedure, connect.NewUnaryHandler(ResetDraftProcedure, svc.commissionerOp(svc.engine.ResetDraft), opts...))
	mux.Handle(UndoLastPickProcedure, connect.NewUnaryHandler(UndoLastPickProcedure, svc.UndoLastPick, opts...))
	mux.Handle(SubmitPickProcedure, connect.NewUnaryHandler(SubmitPickProcedure, svc.SubmitPick, opts...))
	mux.Handle(SetAutopickProcedure, connect.NewUnaryHandler(SetAutopickProcedure, svc.SetAutopick, opts...))
	mux.Handle(SetPresenceProcedure, connect.NewUnaryHandler(SetPresenceProcedure, svc.SetPresence, opts...))
	mux.Handle(GetSnapshotProcedure, connect.NewUnaryHandler(GetSnapshotProcedure, svc.GetSnapshot, opts...))
	mux.Handle(ListAvailablePlayersProcedure, connect.NewUnaryHandler(ListAvailablePlayersProcedure, svc.ListAvailablePlayers, opts...))
	mux.Handle(ActivateDraftProcedure, connect.NewUnaryHandler(ActivateDraftProcedure, svc.ActivateDraft, opts...))
	mux.Handle(ListActiveDraftsProcedure, connect.NewUnaryHandler(ListActiveDraftsProcedure, svc.ListActiveDrafts, opts...))

	return "/" + ServiceName + "/", mux
}

func (s *Service) commissionerOp(op func(context.Context, uuid.UUID, uuid.UUID) (models.DraftStatus, error)) func(context.Context, *connect.Request[CommissionerRequest]) (*connect.Response[StatusResponse], error) {
	return func(ctx context.Context, req *connect.Request[CommissionerRequest]) (*connect.Response[StatusResponse], error) {
		if err := requireIDs(idField{"draft_id", req.Msg.DraftID}, idField{"commissioner_id", req.Msg.CommissionerID}); err != nil {
			return nil, err
		}
		status, err := op(ctx, req.Msg.DraftID, req.Msg.CommissionerID)
		if err != nil {
			return nil, rpcError(err, req.Spec().Procedure, req.Msg.DraftID)
		}
		return connect.NewResponse(&StatusResponse{Status: status}), nil
	}
}

func (s *Service) UndoLastPick(ctx context.Context, req *connect.Request[CommissionerRequest]) (*connect.Response[SnapshotResponse], error) {
	if err := requireIDs(idField{"draft_id", req.Msg.DraftID}, idField{"commissioner_id", req.Msg.CommissionerID}); err != nil {
		return nil, err
	}
	snap, err := s.engine.UndoLastPick(ctx, req.Msg.DraftID, req.Msg.CommissionerID)
	if err != nil {
		return nil, rpcError(err, req.Spec().Procedure, req.Msg.DraftID)
	}
	return connect.NewResponse(&SnapshotResponse{Snapshot: snap}), nil
}

func (s *Service) SubmitPick(ctx context.Context, req *connect.Request[SubmitPickRequest]) (*connect.Response[SubmitPickResponse], error) {
	if err := requireIDs(idField{"draft_id", req.Msg.DraftID}, idField{"team_id", req.Msg.TeamID}, idField{"player_id", req.Msg.PlayerID}); err != nil {
		return nil, err
	}
	p, err := s.engine.SubmitPick(ctx, req.Msg.DraftID, req.Msg.TeamID, req.Msg.PlayerID)
	if err != nil {
		return nil, rpcError(err, req.Spec().Procedure, req.Msg.DraftID)
	}
	return connect.NewResponse(&SubmitPickResponse{Pick: p}), nil
}

func (s *Service) SetAutopick(ctx context.Context, req *connect.Request[SetAutopickRequest]) (*connect.Response[SnapshotResponse], error) {
	if err := requireIDs(idField{"draft_id", req.Msg.DraftID}, idField{"team_id", req.Msg.TeamID}); err != nil {
		return nil, err
	}
	snap, err := s.engine.SetAutopick(ctx, req.Msg.DraftID, req.Msg.TeamID, req.Msg.Enabled)
	if err != nil {
		return nil, rpcError(err, req.Spec().Procedure, req.Msg.DraftID)
	}
	return connect.NewResponse(&SnapshotResponse{Snapshot: snap}), nil
}

func (s *Service) SetPresence(ctx context.Context, req *connect.Request[SetPresenceRequest]) (*connect.Response[SetPresenceResponse], error) {
	if err := requireIDs(idField{"draft_id", req.Msg.DraftID}, idField{"team_id", req.Msg.TeamID}); err != nil {
		return nil, err
	}
	if err := s.engine.SetPresence(ctx, req.Msg.DraftID, req.Msg.TeamID, req.Msg.Online); err != nil {
		return nil, rpcError(err, req.Spec().Procedure, req.Msg.DraftID)
	}
	return connect.NewResponse(&SetPresenceResponse{}), nil
}

func (s *Service) GetSnapshot(ctx context.Context, req *connect.Request[DraftRequest]) (*connect.Response[SnapshotResponse], error) {
	if err := requireIDs(idField{"draft_id", req.Msg.DraftID}); err != nil {
		return nil, err
	}
	snap, err := s.engine.GetSnapshot(ctx, req.Msg.DraftID)
	if err != nil {
		return nil, rpcError(err, req.Spec().Procedure, req.Msg.DraftID)
	}
	return connect.NewResponse(&SnapshotResponse{Snapshot: snap}), nil
}

func (s *Service) ListAvailablePlayers(ctx context.Context, req *connect.Request[DraftRequest]) (*connect.Response[ListAvailablePlayersResponse], error) {
	if err := requireIDs(idField{"draft_id", req.Msg.DraftID}); err != nil {
		return nil, err
	}
	players, err := s.engine.ListAvailablePlayers(ctx, req.Msg.DraftID)
	if err != nil {
		return nil, rpcError(err, req.Spec().Procedure, req.Msg.DraftID)
	}
	return connect.NewResponse(&ListAvailablePlayersResponse{Players: players}), nil
}

func (s *Service) ActivateDraft(ctx context.Context, req *connect.Request[DraftRequest]) (*connect.Response[SnapshotResponse], error) {
	if err := requireIDs(idField{"draft_id", req.Msg.DraftID}); err != nil {
		return nil, err
	}
	snap, err := s.engine.ActivateDraft(ctx, req.Msg.DraftID)
	if err != nil {
		return nil, rpcError(err, req.Spec().Procedure, req.Msg.DraftID)
	}
	return connect.NewResponse(&SnapshotResponse{Snapshot: snap}), nil
}

func (s *Service) ListActiveDrafts(ctx context.Context, req *connect.Request[ListActiveDraftsRequest]) (*connect.Response[ListActiveDraftsResponse], error) {
	ids, err := s.engine.ListActiveDrafts(ctx)
	if err != nil {
		return nil, rpcError(err, req.Spec().Procedure, uuid.Nil)
	}
	return connect.NewResponse(&ListActiveDraftsResponse{DraftIDs: ids}), nil
}

type idField struct {
	name string
	id   uuid.UUID
}

func requireIDs(fields ...idField) error {
	for _, f := range fields {
		if f.id == uuid.Nil {
			return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%s is required", f.name))
		}
	}
	return nil
}

func rpcError(err error, procedure string, draftID uuid.UUID) error {
	cerr := toConnectError(err)
	if connect.CodeOf(cerr) == connect.CodeInternal {
		log.Error().Err(err).Str("procedure", procedure).Str("draft_id", draftID.String()).Msg("draft rpc failed")
	} else {
		log.Debug().Err(err).Str("procedure", procedure).Str("draft_id", draftID.String()).Msg("draft rpc rejected")
	}
	return cerr
}
