package engine

import (
	"context"
	"time"

	"github.com/picha-labs/picha/canister"
	"github.com/picha-labs/picha/dao/nft"
	"github.com/picha-labs/picha/types"
)

const syncPageSize = 200

// SyncIssue flags one NFT present on only one side of the dual store.
type SyncIssue struct {
	NftId  string
	Reason string
}

// SyncMismatch flags one NFT whose local and on-chain records diverge.
type SyncMismatch struct {
	NftId            string
	LocalVersion     int64
	CanisterVersion  int64
	LocalImageUrl    string
	CanisterImageUrl string
}

// SyncReport is the outcome of reconciling the local store against the
// canister.
type SyncReport struct {
	DiscrepanciesFound bool
	TotalLocal         int64
	TotalCanister      int64
	LocalOnly          []SyncIssue
	CanisterOnly       []SyncIssue
	Mismatched         []SyncMismatch
	CanisterLatency    time.Duration
}

// SyncCheck compares every local NFT row against the canister's full
// listing and reports rows missing on either side plus version or
// image divergence on rows present in both.
func (e *Engine) SyncCheck(ctx context.Context) (*SyncReport, error) {
	start := time.Now()
	remote, err := e.canister.ListNfts(ctx)
	if err != nil {
		return nil, err
	}
	report := &SyncReport{
		TotalCanister:   int64(len(remote)),
		CanisterLatency: time.Since(start),
	}
	remoteById := make(map[string]*canister.NftPayload, len(remote))
	for _, payload := range remote {
		remoteById[payload.NftId] = payload
	}

	seen := make(map[string]bool)
	for offset := 0; ; offset += syncPageSize {
		rows, err := e.nftModel.GetNfts(syncPageSize, offset)
		if err == types.DbErrNotFound {
			break
		} else if err != nil {
			return nil, err
		}
		for _, row := range rows {
			report.TotalLocal++
			seen[row.NftId] = true
			remoteRow, ok := remoteById[row.NftId]
			if !ok {
				reason := "minted locally but missing on canister"
				if row.CanisterStatus != nft.CanisterStatusMinted {
					reason = "canister mint pending or failed"
				}
				report.LocalOnly = append(report.LocalOnly, SyncIssue{NftId: row.NftId, Reason: reason})
				continue
			}
			if remoteRow.Version != row.EvolutionVersion || remoteRow.ImageUrl != row.ImageUrl {
				report.Mismatched = append(report.Mismatched, SyncMismatch{
					NftId:            row.NftId,
					LocalVersion:     row.EvolutionVersion,
					CanisterVersion:  remoteRow.Version,
					LocalImageUrl:    row.ImageUrl,
					CanisterImageUrl: remoteRow.ImageUrl,
				})
			}
		}
		if len(rows) < syncPageSize {
			break
		}
	}
	for _, payload := range remote {
		if !seen[payload.NftId] {
			report.CanisterOnly = append(report.CanisterOnly, SyncIssue{
				NftId:  payload.NftId,
				Reason: "on canister with no local record",
			})
		}
	}
	report.DiscrepanciesFound = len(report.LocalOnly)+len(report.CanisterOnly)+len(report.Mismatched) > 0
	return report, nil
}
