package core

import (
	"net/url"
	"strconv"
	"time"
)

// OperationLog records one request handled by the backend.
type OperationLog struct {
	ID         uint      `json:"ID"`
	Username   string    `json:"username"`
	IP         string    `json:"ip"`
	IPLocation string    `json:"ipLocation"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Desc       string    `json:"desc"`
	Status     int       `json:"status"`
	StartTime  time.Time `json:"startTime"`
	TimeCost   int64     `json:"timeCost"` // milliseconds
	UserAgent  string    `json:"userAgent"`
}

// OperationLogListRequest holds the filters of GET /log/operation/list.
type OperationLogListRequest struct {
	Username string `json:"username,omitempty"`
	IP       string `json:"ip,omitempty"`
	Path     string `json:"path,omitempty"`
	Status   int    `json:"status,omitempty"`
	Page
}

// DeleteOperationLogRequest is the body of DELETE /log/operation/delete/batch.
type DeleteOperationLogRequest struct {
	OperationLogIDs []uint `json:"operationLogIds"`
}

// Values encodes the filters as query parameters, skipping zero values.
func (r OperationLogListRequest) Values() url.Values {
	v := url.Values{}
	setString(v, "username", r.Username)
	setString(v, "ip", r.IP)
	setString(v, "path", r.Path)
	if r.Status != 0 {
		v.Set("status", strconv.Itoa(r.Status))
	}
	r.Page.encode(v)
	return v
}
