package admin

import (
	"context"
	"encoding/json"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/picha-labs/picha/dao/nft"
	"github.com/picha-labs/picha/service/apiserver/internal/svc"
	"github.com/picha-labs/picha/service/apiserver/internal/types"
	types2 "github.com/picha-labs/picha/types"
)

const retryBatchSize = 50

type CanisterLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCanisterLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CanisterLogic {
	return &CanisterLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *CanisterLogic) Status() (*types.CanisterStatusResp, error) {
	status, err := l.svcCtx.CanisterClient.CheckStatus(l.ctx)
	resp := &types.CanisterStatusResp{
		Healthy:    status.Healthy,
		CanisterId: status.CanisterId,
		Network:    status.Network,
		Cycles:     status.Cycles,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp, nil
}

func (l *CanisterLogic) Info() (*types.CanisterInfoResp, error) {
	info := l.svcCtx.CanisterClient.GetInfo()
	return &types.CanisterInfoResp{
		CanisterId: info.CanisterId,
		Network:    info.Network,
		Endpoint:   info.Endpoint,
		Timeout:    info.Timeout,
		MaxRetries: info.MaxRetries,
	}, nil
}

func (l *CanisterLogic) ListNfts() (*types.CanisterNftsResp, error) {
	payloads, err := l.svcCtx.CanisterClient.ListNfts(l.ctx)
	if err != nil {
		l.Errorf("fail to list canister nfts: %v", err)
		return nil, types2.AppErrCanisterUnavailable
	}

	resp := &types.CanisterNftsResp{
		Count: int64(len(payloads)),
		Nfts:  make([]map[string]interface{}, 0, len(payloads)),
	}
	for _, payload := range payloads {
		raw, err := json.Marshal(payload)
		if err != nil {
			continue
		}
		item := make(map[string]interface{})
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		resp.Nfts = append(resp.Nfts, item)
	}
	return resp, nil
}

func (l *CanisterLogic) Retry() (*types.CanisterRetryResp, error) {
	retried, failed := l.svcCtx.Engine.RetryCanister(l.ctx, retryBatchSize)
	return &types.CanisterRetryResp{Retried: retried, Failed: failed}, nil
}

// Stats summarizes how far the local store and the canister have
// converged, counting rows per canister status.
func (l *CanisterLogic) Stats() (*types.CanisterStatsResp, error) {
	counts, err := l.svcCtx.NftModel.GetCanisterStatusCounts()
	if err != nil {
		return nil, types2.AppErrInternal
	}
	var total int64
	for _, count := range counts {
		total += count
	}
	syncPercentage := float64(100)
	if total > 0 {
		syncPercentage = float64(counts[nft.CanisterStatusMinted]) / float64(total) * 100
	}

	info := l.svcCtx.CanisterClient.GetInfo()
	return &types.CanisterStatsResp{
		CanisterInfo: types.CanisterInfoResp{
			CanisterId: info.CanisterId,
			Network:    info.Network,
			Endpoint:   info.Endpoint,
			Timeout:    info.Timeout,
			MaxRetries: info.MaxRetries,
		},
		TotalLocal:     total,
		StatusCounts:   counts,
		SyncPercentage: syncPercentage,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// SyncCheck reconciles the local rows against the canister listing.
func (l *CanisterLogic) SyncCheck() (*types.SyncCheckResp, error) {
	report, err := l.svcCtx.Engine.SyncCheck(l.ctx)
	if err != nil {
		l.Errorf("fail to run sync check: %v", err)
		return nil, types2.AppErrCanisterUnavailable
	}

	resp := &types.SyncCheckResp{
		Status:             "synced",
		DiscrepanciesFound: report.DiscrepanciesFound,
		LocalOnlyNfts:      make([]types.SyncIssue, 0, len(report.LocalOnly)),
		CanisterOnlyNfts:   make([]types.SyncIssue, 0, len(report.CanisterOnly)),
		MismatchedNfts:     make([]types.SyncMismatch, 0, len(report.Mismatched)),
		TotalLocalNfts:     report.TotalLocal,
		TotalCanisterNfts:  report.TotalCanister,
		CanisterLatencyMs:  report.CanisterLatency.Milliseconds(),
	}
	if report.DiscrepanciesFound {
		resp.Status = "discrepancies"
	}
	for _, issue := range report.LocalOnly {
		resp.LocalOnlyNfts = append(resp.LocalOnlyNfts, types.SyncIssue{NftId: issue.NftId, Reason: issue.Reason})
	}
	for _, issue := range report.CanisterOnly {
		resp.CanisterOnlyNfts = append(resp.CanisterOnlyNfts, types.SyncIssue{NftId: issue.NftId, Reason: issue.Reason})
	}
	for _, mismatch := range report.Mismatched {
		resp.MismatchedNfts = append(resp.MismatchedNfts, types.SyncMismatch{
			NftId:            mismatch.NftId,
			LocalVersion:     mismatch.LocalVersion,
			CanisterVersion:  mismatch.CanisterVersion,
			LocalImageUrl:    mismatch.LocalImageUrl,
			CanisterImageUrl: mismatch.CanisterImageUrl,
		})
	}
	return resp, nil
}
