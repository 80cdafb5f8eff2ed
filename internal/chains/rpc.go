package chains

import (
	"context"

	"github.com/ybbus/jsonrpc"
)

// CallRPC runs a JSON-RPC call bound to ctx. The underlying client is not context
// aware, a cancelled call keeps running in the background until the http timeout.
func CallRPC(ctx context.Context, client jsonrpc.RPCClient, method string, params ...interface{}) (*jsonrpc.RPCResponse, error) {
	type result struct {
		resp *jsonrpc.RPCResponse
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := client.Call(method, params...)
		done <- result{resp: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		if r.resp.Error != nil {
			return nil, r.resp.Error
		}
		return r.resp, nil
	}
}
