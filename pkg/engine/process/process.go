// Copyright 2024 Tessera DB
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package process carries the per-query evaluation state shared by all
// operators of one plan: cancellation, deadline, memory budget and the
// blank-node manager.
package process

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tesseradb/tessera/pkg/common/mlimit"
	"github.com/tesseradb/tessera/pkg/common/moerr"
	"github.com/tesseradb/tessera/pkg/config"
	"github.com/tesseradb/tessera/pkg/container/vocab"
)

type Process struct {
	Ctx context.Context
	Id  string // query id

	Lim        *mlimit.Limiter
	BlankNodes *vocab.BlankNodeManager

	// Rows between cooperative interrupt checks in operator loops.
	CheckInterval int64
	// Size ratio above which the merge join switches to galloping.
	GallopThreshold int64

	deadline time.Time
}

func New(ctx context.Context, params *config.EngineParameters) *Process {
	if params == nil {
		params = &config.EngineParameters{}
		params.SetDefaultValues()
	}
	return &Process{
		Ctx:             ctx,
		Id:              uuid.New().String(),
		Lim:             mlimit.New(params.VocabMemoryLimit),
		BlankNodes:      vocab.NewBlankNodeManager(uint64(params.BlankNodeBlockSize)),
		CheckInterval:   params.InterruptCheckInterval,
		GallopThreshold: params.GallopThreshold,
	}
}

// SetDeadline arms the cooperative timeout. The zero time disarms it.
func (p *Process) SetDeadline(d time.Time) {
	p.deadline = d
}

// CheckInterrupt polls context cancellation and the deadline. Operator loops
// call this at a bounded row interval; the returned error names the operator
// and how far it had progressed.
func (p *Process) CheckInterrupt(descriptor string, rowsDone int) error {
	if p.Ctx != nil {
		select {
		case <-p.Ctx.Done():
			return moerr.NewQueryInterrupted(p.Ctx,
				"%s canceled after producing %d rows", descriptor, rowsDone)
		default:
		}
	}
	if !p.deadline.IsZero() && time.Now().After(p.deadline) {
		return moerr.NewQueryInterrupted(p.Ctx,
			"%s timed out after producing %d rows", descriptor, rowsDone)
	}
	return nil
}
