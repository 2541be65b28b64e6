// Copyright 2024 The terminos Authors
// This file is part of the terminos library.
//
// The terminos library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The terminos library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the terminos library. If not, see <http://www.gnu.org/licenses/>.

package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tos-network/terminos/energy"
)

func echoHandler(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return string(params), nil
}

func TestHandleSingleCallReturnsResult(t *testing.T) {
	d := NewDispatcher()
	d.Register("echo", echoHandler)

	out := d.Handle(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"echo","params":"hi"}`))
	var resp Response
	require.NoError(t, json.Unmarshal(out, &resp))
	require.Nil(t, resp.Error)
	require.Equal(t, "2.0", resp.JSONRPC)
	require.Equal(t, json.RawMessage("1"), resp.ID)
}

func TestHandleNotificationReturnsNothing(t *testing.T) {
	d := NewDispatcher()
	d.Register("echo", echoHandler)

	out := d.Handle(context.Background(), []byte(`{"jsonrpc":"2.0","method":"echo","params":"hi"}`))
	require.Nil(t, out)
}

func TestHandleUnknownMethod(t *testing.T) {
	d := NewDispatcher()

	out := d.Handle(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"nope"}`))
	var resp Response
	require.NoError(t, json.Unmarshal(out, &resp))
	require.NotNil(t, resp.Error)
	require.Equal(t, CodeMethodNotFound, resp.Error.Code)
}

func TestHandleInvalidVersion(t *testing.T) {
	d := NewDispatcher()
	d.Register("echo", echoHandler)

	out := d.Handle(context.Background(), []byte(`{"jsonrpc":"1.0","id":1,"method":"echo"}`))
	var resp Response
	require.NoError(t, json.Unmarshal(out, &resp))
	require.NotNil(t, resp.Error)
	require.Equal(t, CodeInvalidVersion, resp.Error.Code)
	require.Equal(t, json.RawMessage("1"), resp.ID)
}

// S6: a batch of 21 objects is rejected outright with
// BatchLimitExceeded; no handler runs.
func TestHandleBatchOf21Rejected(t *testing.T) {
	d := NewDispatcher()
	called := 0
	d.Register("echo", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		called++
		return "ok", nil
	})

	var items []string
	for i := 0; i < 21; i++ {
		items = append(items, fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"method":"echo"}`, i))
	}
	body := "[" + joinComma(items) + "]"

	out := d.Handle(context.Background(), []byte(body))
	var resp Response
	require.NoError(t, json.Unmarshal(out, &resp))
	require.NotNil(t, resp.Error)
	require.Equal(t, CodeBatchLimitExceeded, resp.Error.Code)
	require.Equal(t, 0, called)
}

func TestHandleBatchOf20ReturnsAllInOrder(t *testing.T) {
	d := NewDispatcher()
	d.Register("echo", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		return string(params), nil
	})

	var items []string
	for i := 0; i < 20; i++ {
		items = append(items, fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"method":"echo","params":%d}`, i, i))
	}
	body := "[" + joinComma(items) + "]"

	out := d.Handle(context.Background(), []byte(body))
	var resps []Response
	require.NoError(t, json.Unmarshal(out, &resps))
	require.Len(t, resps, 20)
	for i, r := range resps {
		require.Equal(t, json.RawMessage(fmt.Sprintf("%d", i)), r.ID)
		require.Equal(t, json.RawMessage(fmt.Sprintf(`"%d"`, i)), r.Result)
	}
}

func TestHandlerErrorMapsToWalletCode(t *testing.T) {
	d := NewDispatcher()
	d.Register("freeze", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		return nil, energy.ErrInsufficientUnlockedTos
	})

	out := d.Handle(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"freeze"}`))
	var resp Response
	require.NoError(t, json.Unmarshal(out, &resp))
	require.NotNil(t, resp.Error)
	require.Equal(t, WalletErrorCode(0), resp.Error.Code)
}

func TestRegisterDuplicateLastWriteWins(t *testing.T) {
	d := NewDispatcher()
	d.Register("m", func(ctx context.Context, params json.RawMessage) (interface{}, error) { return "first", nil })
	d.Register("m", func(ctx context.Context, params json.RawMessage) (interface{}, error) { return "second", nil })

	out := d.Handle(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"m"}`))
	var resp Response
	require.NoError(t, json.Unmarshal(out, &resp))
	require.Equal(t, json.RawMessage(`"second"`), resp.Result)
}

func joinComma(items []string) string {
	out := ""
	for i, it := range items {
		if i > 0 {
			out += ","
		}
		out += it
	}
	return out
}
