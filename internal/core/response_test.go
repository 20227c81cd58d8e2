package core

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewResponse(t *testing.T) {
	status := NewStatus(200, "200 OK")
	resp := NewResponse("req-1", status)

	assert.NotEmpty(t, resp.ID())
	assert.Equal(t, "req-1", resp.RequestID())
	assert.Same(t, status, resp.Status())
	assert.True(t, resp.Body().IsEmpty())
	assert.Empty(t, resp.Headers())
}

func TestResponse_Chaining(t *testing.T) {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	start := time.Now()

	resp := NewResponse("req-1", NewStatus(201, "201 Created")).
		WithHeaders(h).
		WithBody(NewRawBody([]byte(`{"folders":[]}`), "application/json")).
		WithTiming(Timing{StartTime: start, EndTime: start.Add(time.Second), Total: time.Second})

	assert.Equal(t, "application/json", resp.Headers().Get("Content-Type"))
	assert.Equal(t, `{"folders":[]}`, resp.Body().String())
	assert.Equal(t, time.Second, resp.Timing().Total)
}

func TestStatus(t *testing.T) {
	tests := []struct {
		code    int
		success bool
		isError bool
	}{
		{200, true, false},
		{204, true, false},
		{301, false, false},
		{404, false, true},
		{500, false, true},
	}

	for _, tt := range tests {
		s := NewStatus(tt.code, "")
		assert.Equal(t, tt.code, s.Code())
		assert.Equal(t, tt.success, s.IsSuccess(), "code %d", tt.code)
		assert.Equal(t, tt.isError, s.IsError(), "code %d", tt.code)
	}
}
