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

package config

import (
	"context"

	"github.com/BurntSushi/toml"

	"github.com/tesseradb/tessera/pkg/common/moerr"
	"github.com/tesseradb/tessera/pkg/logutil"
)

// EngineParameters are the tunables of the join execution core.
type EngineParameters struct {
	// Byte budget shared by all local vocabularies of a query.
	// default: 100 << 20
	VocabMemoryLimit int64 `toml:"vocabMemoryLimit"`

	// Size ratio above which the merge join switches to galloping search.
	// default: 1000
	GallopThreshold int64 `toml:"gallopThreshold"`

	// Number of emitted rows between deadline checks in the join loops.
	// default: 1024
	InterruptCheckInterval int64 `toml:"interruptCheckInterval"`

	// Number of blank-node indices reserved per block from the global
	// blank-node manager. default: 1024
	BlankNodeBlockSize int64 `toml:"blankNodeBlockSize"`

	Log logutil.LogConfig `toml:"log"`
}

func (p *EngineParameters) SetDefaultValues() {
	if p.VocabMemoryLimit <= 0 {
		p.VocabMemoryLimit = 100 << 20
	}
	if p.GallopThreshold <= 0 {
		p.GallopThreshold = 1000
	}
	if p.InterruptCheckInterval <= 0 {
		p.InterruptCheckInterval = 1024
	}
	if p.BlankNodeBlockSize <= 0 {
		p.BlankNodeBlockSize = 1024
	}
	if p.Log.Level == "" {
		p.Log.Level = "info"
	}
	if p.Log.Format == "" {
		p.Log.Format = "console"
	}
}

// LoadEngineParameters reads a toml file and fills in defaults for anything
// the file leaves unset.
func LoadEngineParameters(ctx context.Context, path string) (*EngineParameters, error) {
	params := &EngineParameters{}
	if path != "" {
		if _, err := toml.DecodeFile(path, params); err != nil {
			return nil, moerr.NewBadConfig(ctx, "%s: %s", path, err)
		}
	}
	params.SetDefaultValues()
	return params, nil
}
