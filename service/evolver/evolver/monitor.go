/*
 * Copyright © 2026 Picha Labs
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package evolver

import (
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/picha-labs/picha/dao/nft"
	"github.com/picha-labs/picha/types"
)

const DefaultBacklogThreshold = 200

// MonitorBacklog checks how far the evolution sweep and the canister
// queue have fallen behind and warns when either crosses the threshold.
func (e *Evolver) MonitorBacklog() error {
	threshold := e.Config.Evolution.BacklogThreshold
	if threshold == 0 {
		threshold = DefaultBacklogThreshold
	}

	due, err := e.nftModel.GetNftsDueForEvolution(time.Now().UTC(), int(threshold)+1)
	if err != nil && err != types.DbErrNotFound {
		return err
	}
	dueCount := int64(len(due))

	var stuck int64
	for _, status := range []string{nft.CanisterStatusFailedMint, nft.CanisterStatusFailedUpdate} {
		rows, err := e.nftModel.GetNftsByCanisterStatus(status, int(threshold)+1)
		if err != nil && err != types.DbErrNotFound {
			return err
		}
		stuck += int64(len(rows))
	}

	if dueCount > threshold || stuck > threshold {
		logx.Errorf("evolution backlog over threshold: due:%d, canister stuck:%d, threshold:%d",
			dueCount, stuck, threshold)
	} else {
		logx.Infof("evolution backlog within threshold: due:%d, canister stuck:%d, threshold:%d",
			dueCount, stuck, threshold)
	}
	return nil
}
