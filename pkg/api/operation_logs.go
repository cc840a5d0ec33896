package api

import (
	"context"
	"net/http"

	"github.com/leapstack-labs/goadmin/pkg/core"
)

// OperationLogs wraps the /log/operation endpoints.
type OperationLogs struct {
	c Doer
}

// List returns a filtered page of operation logs.
func (s *OperationLogs) List(ctx context.Context, params core.OperationLogListRequest) (*OperationLogList, error) {
	return decode[OperationLogList](ctx, s.c, get(path("/log/operation/list"), params.Values()))
}

// BatchDelete deletes every log in ids.
func (s *OperationLogs) BatchDelete(ctx context.Context, ids []uint) (*core.Envelope, error) {
	body := core.DeleteOperationLogRequest{OperationLogIDs: nonNil(ids)}
	return mutate(ctx, s.c, send(http.MethodDelete, path("/log/operation/delete/batch"), body))
}
