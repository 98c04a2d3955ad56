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

package join

// NewPartialForTesting builds a deliberately partial join with no subtrees.
// It exists so unit tests can exercise pure helper functions in isolation.
// ComputeResult rejects such a join with ErrInvalidState, so the partial
// object can never reach the production result-computation path.
func NewPartialForTesting(leftCol, rightCol int) *Join {
	return &Join{leftCol: leftCol, rightCol: rightCol}
}
