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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tesseradb/tessera/pkg/common/moerr"
)

func TestDefaults(t *testing.T) {
	params, err := LoadEngineParameters(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, int64(100<<20), params.VocabMemoryLimit)
	require.Equal(t, int64(1000), params.GallopThreshold)
	require.Equal(t, int64(1024), params.InterruptCheckInterval)
	require.Equal(t, int64(1024), params.BlankNodeBlockSize)
	require.Equal(t, "info", params.Log.Level)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.toml")
	content := `
vocabMemoryLimit = 1048576
gallopThreshold = 64

[log]
level = "debug"
format = "json"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	params, err := LoadEngineParameters(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, int64(1<<20), params.VocabMemoryLimit)
	require.Equal(t, int64(64), params.GallopThreshold)
	// unset values fall back to defaults
	require.Equal(t, int64(1024), params.InterruptCheckInterval)
	require.Equal(t, "debug", params.Log.Level)
	require.Equal(t, "json", params.Log.Format)
}

func TestLoadBadFile(t *testing.T) {
	_, err := LoadEngineParameters(context.Background(), "/nonexistent/engine.toml")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadConfig))
}
