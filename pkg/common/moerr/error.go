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
)

const (
	// 0 - 99 is OK. They do not carry info and are never returned as failures.
	Ok uint16 = 0

	// Group 1: internal errors
	ErrStart            uint16 = 20100
	ErrInternal         uint16 = 20101
	ErrOOM              uint16 = 20103
	ErrQueryInterrupted uint16 = 20104

	// Group 3: invalid input
	ErrBadConfig    uint16 = 20300
	ErrInvalidInput uint16 = 20301

	// Group 4: unexpected state
	ErrInvalidState uint16 = 20400

	ErrEnd uint16 = 65535
)

type errorCodeItem struct {
	code   uint16
	format string
}

var errorCodes = map[uint16]errorCodeItem{
	ErrInternal:         {ErrInternal, "internal error: %s"},
	ErrOOM:              {ErrOOM, "out of memory"},
	ErrQueryInterrupted: {ErrQueryInterrupted, "query interrupted: %s"},
	ErrBadConfig:        {ErrBadConfig, "invalid configuration: %s"},
	ErrInvalidInput:     {ErrInvalidInput, "invalid input: %s"},
	ErrInvalidState:     {ErrInvalidState, "invalid state: %s"},
}

// Error is the standard error type of the engine. Every failure that crosses
// a package boundary is one of these, identified by a stable numeric code.
type Error struct {
	code    uint16
	message string
}

func (e *Error) Error() string {
	return e.message
}

func (e *Error) ErrorCode() uint16 {
	return e.code
}

func (e *Error) Is(target error) bool {
	var me *Error
	if !errors.As(target, &me) {
		return false
	}
	return me.code == e.code
}

// IsMoErrCode reports whether err is an engine Error with the given code.
func IsMoErrCode(err error, code uint16) bool {
	if err == nil {
		return code == Ok
	}
	var me *Error
	if !errors.As(err, &me) {
		return false
	}
	return me.ErrorCode() == code
}

// The ctx argument is reserved for error reporting hooks (tracing spans,
// session ids). Constructors keep it first so call sites read uniformly.
func newError(_ context.Context, code uint16, args ...any) *Error {
	item, ok := errorCodes[code]
	if !ok {
		panic(fmt.Errorf("not a valid error code %d", code))
	}
	return &Error{code: code, message: fmt.Sprintf(item.format, args...)}
}

func NewInternalError(ctx context.Context, format string, args ...any) *Error {
	return newError(ctx, ErrInternal, fmt.Sprintf(format, args...))
}

func NewInternalErrorNoCtx(format string, args ...any) *Error {
	return NewInternalError(context.Background(), format, args...)
}

func NewOOM(ctx context.Context) *Error {
	return newError(ctx, ErrOOM)
}

func NewQueryInterrupted(ctx context.Context, format string, args ...any) *Error {
	return newError(ctx, ErrQueryInterrupted, fmt.Sprintf(format, args...))
}

func NewBadConfig(ctx context.Context, format string, args ...any) *Error {
	return newError(ctx, ErrBadConfig, fmt.Sprintf(format, args...))
}

func NewInvalidInput(ctx context.Context, format string, args ...any) *Error {
	return newError(ctx, ErrInvalidInput, fmt.Sprintf(format, args...))
}

func NewInvalidState(ctx context.Context, format string, args ...any) *Error {
	return newError(ctx, ErrInvalidState, fmt.Sprintf(format, args...))
}
