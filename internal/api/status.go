package api

import (
	"encoding/json"

	"github.com/artpar/feedsync/internal/core"
	"github.com/artpar/feedsync/internal/lifecycle"
	"github.com/artpar/feedsync/internal/news"
)

// GetVersion queries the News app version.
type GetVersion struct {
	*lifecycle.Component[string]
}

func (c *Client) GetVersion() *GetVersion {
	hooks := lifecycle.Hooks[string]{
		Name:     "get_version",
		Expect:   lifecycle.ShapeObject,
		Required: []string{"version"},
		Build: func() (*core.Request, error) {
			return newGet(core.NewRoute("version"))
		},
		Decode: func(body json.RawMessage) (string, error) {
			return member[string](body, "version")
		},
	}
	return &GetVersion{Component: newComponent(c, hooks)}
}

// GetStatus queries the News app version and its setup warnings.
type GetStatus struct {
	*lifecycle.Component[news.ServerStatus]
}

func (c *Client) GetStatus() *GetStatus {
	hooks := lifecycle.Hooks[news.ServerStatus]{
		Name:     "get_status",
		Expect:   lifecycle.ShapeObject,
		Required: []string{"version", "warnings"},
		Build: func() (*core.Request, error) {
			return newGet(core.NewRoute("status"))
		},
		Decode: func(body json.RawMessage) (news.ServerStatus, error) {
			var status news.ServerStatus
			err := json.Unmarshal(body, &status)
			return status, err
		},
	}
	return &GetStatus{Component: newComponent(c, hooks)}
}
