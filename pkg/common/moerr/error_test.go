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

package moerr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	ctx := context.Background()

	err := NewOOM(ctx)
	require.Equal(t, ErrOOM, err.ErrorCode())
	require.True(t, IsMoErrCode(err, ErrOOM))
	require.False(t, IsMoErrCode(err, ErrInternal))

	err = NewQueryInterrupted(ctx, "join timed out after 42 rows")
	require.Contains(t, err.Error(), "query interrupted")
	require.Contains(t, err.Error(), "42 rows")

	require.True(t, IsMoErrCode(nil, Ok))
	require.False(t, IsMoErrCode(errors.New("plain"), ErrInternal))
}

func TestErrorWrapping(t *testing.T) {
	inner := NewInvalidInput(context.Background(), "join column %d out of range", 7)
	wrapped := fmt.Errorf("computing join: %w", inner)
	require.True(t, IsMoErrCode(wrapped, ErrInvalidInput))
	require.True(t, errors.Is(wrapped, inner))
}
