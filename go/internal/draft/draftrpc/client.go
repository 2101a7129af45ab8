package draftrpc

import (
	"context"
	"strings"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/ledger"
	"github.com/mcdev12/dynasty-draft/go/internal/models"
)

// Client calls a remote DraftService. Errors carry the engine sentinels, so
// callers can use errors.Is as they would in-process.
type Client struct {
	startDraft           *connect.Client[CommissionerRequest, StatusResponse]
	pauseDraft           *connect.Client[CommissionerRequest, StatusResponse]
	resumeDraft          *connect.Client[CommissionerRequest, StatusResponse]
	completeDraft        *connect.Client[CommissionerRequest, StatusResponse]
	resetDraft           *connect.Client[CommissionerRequest, StatusResponse]
	undoLastPick         *connect.Client[CommissionerRequest, SnapshotResponse]
	submitPick           *connect.Client[SubmitPickRequest, SubmitPickResponse]
	setAutopick          *connect.Client[SetAutopickRequest, SnapshotResponse]
	setPresence          *connect.Client[SetPresenceRequest, SetPresenceResponse]
	getSnapshot          *connect.Client[DraftRequest, SnapshotResponse]
	listAvailablePlayers *connect.Client[DraftRequest, ListAvailablePlayersResponse]
	activateDraft        *connect.Client[DraftRequest, SnapshotResponse]
	listActiveDrafts     *connect.Client[ListActiveDraftsRequest, ListActiveDraftsResponse]
}

var _ Engine = (*Client)(nil)

func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)

	return &Client{
		startDraft:           connect.NewClient[CommissionerRequest, StatusResponse](httpClient, baseURL+StartDraftProcedure, opts...),
		pauseDraft:           connect.NewClient[CommissionerRequest, StatusResponse](httpClient, baseURL+PauseDraftProcedure, opts...),
		resumeDraft:          connect.NewClient[CommissionerRequest, StatusResponse](httpClient, baseURL+ResumeDraftProcedure, opts...),
		completeDraft:        connect.NewClient[CommissionerRequest, StatusResponse](httpClient, baseURL+CompleteDraftProcedure, opts...),
		resetDraft:           connect.NewClient[CommissionerRequest, StatusResponse](httpClient, baseURL+ResetDraftProcedure, opts...),
		undoLastPick:         connect.NewClient[CommissionerRequest, SnapshotResponse](httpClient, baseURL+UndoLastPickProcedure, opts...),
		submitPick:           connect.NewClient[SubmitPickRequest, SubmitPickResponse](httpClient, baseURL+SubmitPickProcedure, opts...),
		setAutopick:          connect.NewClient[SetAutopickRequest, SnapshotResponse](httpClient, baseURL+SetAutopickProcedure, opts...),
		setPresence:          connect.NewClient[SetPresenceRequest, SetPresenceResponse](httpClient, baseURL+SetPresenceProcedure, opts...),
		getSnapshot:          connect.NewClient[DraftRequest, SnapshotResponse](httpClient, baseURL+GetSnapshotProcedure, opts...),
		listAvailablePlayers: connect.NewClient[DraftRequest, ListAvailablePlayersResponse](httpClient, baseURL+ListAvailablePlayersProcedure, opts...),
		activateDraft:        connect.NewClient[DraftRequest, SnapshotResponse](httpClient, baseURL+ActivateDraftProcedure, opts...),
		listActiveDrafts:     connect.NewClient[ListActiveDraftsRequest, ListActiveDraftsResponse](httpClient, baseURL+ListActiveDraftsProcedure, opts...),
	}
}

func (c *Client) StartDraft(ctx context.Context, draftID, commissionerID uuid.UUID) (models.DraftStatus, error) {
	return callStatus(ctx, c.startDraft, draftID, commissionerID)
}

func (c *Client) PauseDraft(ctx context.Context, draftID, commissionerID uuid.UUID) (models.DraftStatus, error) {
	return callStatus(ctx, c.pauseDraft, draftID, commissionerID)
}

func (c *Client) ResumeDraft(ctx context.Context, draftID, commissionerID uuid.UUID) (models.DraftStatus, error) {
	return callStatus(ctx, c.resumeDraft, draftID, commissionerID)
}

func (c *Client) CompleteDraft(ctx context.Context, draftID, commissionerID uuid.UUID) (models.DraftStatus, error) {
	return callStatus(ctx, c.completeDraft, draftID, commissionerID)
}

func (c *Client) ResetDraft(ctx context.Context, draftID, commissionerID uuid.UUID) (models.DraftStatus, error) {
	return callStatus(ctx, c.resetDraft, draftID, commissionerID)
}

func (c *Client) UndoLastPick(ctx context.Context, draftID, commissionerID uuid.UUID) (*ledger.Snapshot, error) {
	res, err := c.undoLastPick.CallUnary(ctx, connect.NewRequest(&CommissionerRequest{DraftID: draftID, CommissionerID: commissionerID}))
	if err != nil {
		return nil, fromConnectError(err)
	}
	return res.Msg.Snapshot, nil
}

func (c *Client) SubmitPick(ctx context.Context, draftID, teamID, playerID uuid.UUID) (models.DraftPick, error) {
	res, err := c.submitPick.CallUnary(ctx, connect.NewRequest(&SubmitPickRequest{DraftID: draftID, TeamID: teamID, PlayerID: playerID}))
	if err != nil {
		return models.DraftPick{}, fromConnectError(err)
	}
	return res.Msg.Pick, nil
}

func (c *Client) SetAutopick(ctx context.Context, draftID, teamID uuid.UUID, enabled bool) (*ledger.Snapshot, error) {
	res, err := c.setAutopick.CallUnary(ctx, connect.NewRequest(&SetAutopickRequest{DraftID: draftID, TeamID: teamID, Enabled: enabled}))
	if err != nil {
		return nil, fromConnectError(err)
	}
	return res.Msg.Snapshot, nil
}

func (c *Client) SetPresence(ctx context.Context, draftID, teamID uuid.UUID, online bool) error {
	_, err := c.setPresence.CallUnary(ctx, connect.NewRequest(&SetPresenceRequest{DraftID: draftID, TeamID: teamID, Online: online}))
	return fromConnectError(err)
}

func (c *Client) GetSnapshot(ctx context.Context, draftID uuid.UUID) (*ledger.Snapshot, error) {
	res, err := c.getSnapshot.CallUnary(ctx, connect.NewRequest(&DraftRequest{DraftID: draftID}))
	if err != nil {
		return nil, fromConnectError(err)
	}
	return res.Msg.Snapshot, nil
}

func (c *Client) ListAvailablePlayers(ctx context.Context, draftID uuid.UUID) ([]models.Player, error) {
	res, err := c.listAvailablePlayers.CallUnary(ctx, connect.NewRequest(&DraftRequest{DraftID: draftID}))
	if err != nil {
		return nil, fromConnectError(err)
	}
	return res.Msg.Players, nil
}

func (c *Client) ActivateDraft(ctx context.Context, draftID uuid.UUID) (*ledger.Snapshot, error) {
	res, err := c.activateDraft.CallUnary(ctx, connect.NewRequest(&DraftRequest{DraftID: draftID}))
	if err != nil {
		return nil, fromConnectError(err)
	}
	return res.Msg.Snapshot, nil
}

func (c *Client) ListActiveDrafts(ctx context.Context) ([]uuid.UUID, error) {
	res, err := c.listActiveDrafts.CallUnary(ctx, connect.NewRequest(&ListActiveDraftsRequest{}))
	if err != nil {
		return nil, fromConnectError(err)
	}
	return res.Msg.DraftIDs, nil
}

func callStatus(ctx context.Context, client *connect.Client[CommissionerRequest, StatusResponse], draftID, commissionerID uuid.UUID) (models.DraftStatus, error) {
	res, err := client.CallUnary(ctx, connect.NewRequest(&CommissionerRequest{DraftID: draftID, CommissionerID: commissionerID}))
	if err != nil {
		return "", fromConnectError(err)
	}
	return res.Msg.Status, nil
}
