package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/artpar/feedsync/internal/apierr"
	"github.com/artpar/feedsync/internal/core"
	"github.com/artpar/feedsync/internal/lifecycle"
	"github.com/artpar/feedsync/internal/news"
)

const (
	msgEmptyFolderName   = "The folder name can not be empty."
	msgFolderExists      = "The folder name already exists."
	msgInvalidFolderName = "The folder name is not valid."
)

// GetFolders lists all folders.
type GetFolders struct {
	*lifecycle.Component[[]news.Folder]
}

func (c *Client) GetFolders() *GetFolders {
	hooks := lifecycle.Hooks[[]news.Folder]{
		Name:     "get_folders",
		Expect:   lifecycle.ShapeObject,
		Required: []string{"folders"},
		Build: func() (*core.Request, error) {
			return newGet(core.NewRoute("folders"))
		},
		Decode: func(body json.RawMessage) ([]news.Folder, error) {
			return member[[]news.Folder](body, "folders")
		},
	}
	if c.store != nil {
		hooks.Sync = c.store.FoldersRequested
	}
	return &GetFolders{Component: newComponent(c, hooks)}
}

// CreateFolder creates a folder at the root.
type CreateFolder struct {
	*lifecycle.Component[news.Folder]
	name string
}

func (c *Client) CreateFolder(name string) *CreateFolder {
	op := &CreateFolder{name: name}
	hooks := lifecycle.Hooks[news.Folder]{
		Name:     "create_folder",
		Expect:   lifecycle.ShapeObject,
		Required: []string{"folders"},
		CheckInput: func() *apierr.Error {
			return checkNotEmpty(op.name, msgEmptyFolderName)
		},
		ClassifyStatus: classifyConflict(msgFolderExists, msgInvalidFolderName),
		Build: func() (*core.Request, error) {
			return newWithPayload(http.MethodPost, core.NewRoute("folders"),
				map[string]string{"name": op.name})
		},
		Decode: func(body json.RawMessage) (news.Folder, error) {
			return firstOf[news.Folder](body, "folders")
		},
	}
	if c.store != nil {
		hooks.Sync = c.store.FolderCreated
	}
	op.Component = newComponent(c, hooks)
	return op
}

// FolderName is the name to create. Name is the operation name.
func (op *CreateFolder) FolderName() string { return get(op.Component, &op.name) }

func (op *CreateFolder) SetFolderName(v string) bool {
	return set(op.Component, "name", &op.name, v)
}

// RenameFolderResult is the confirmed name of a folder.
type RenameFolderResult struct {
	FolderID int64
	Name     string
}

// RenameFolder changes a folder name.
type RenameFolder struct {
	*lifecycle.Component[RenameFolderResult]
	folderID int64
	name     string
}

func (c *Client) RenameFolder(folderID int64, name string) *RenameFolder {
	op := &RenameFolder{folderID: folderID, name: name}
	hooks := lifecycle.Hooks[RenameFolderResult]{
		Name:            "rename_folder",
		NotFoundMessage: msgFolderNotFound,
		CheckInput: func() *apierr.Error {
			return firstErr(
				func() *apierr.Error { return checkID(op.folderID, msgInvalidFolderID) },
				func() *apierr.Error { return checkNotEmpty(op.name, msgEmptyFolderName) },
			)
		},
		ClassifyStatus: classifyConflict(msgFolderExists, msgInvalidFolderName),
		Build: func() (*core.Request, error) {
			return newWithPayload(http.MethodPut, core.NewRoute("folders", strID(op.folderID)),
				map[string]string{"name": op.name})
		},
		Decode: func(json.RawMessage) (RenameFolderResult, error) {
			return RenameFolderResult{FolderID: op.folderID, Name: op.name}, nil
		},
	}
	if c.store != nil {
		hooks.Sync = func(ctx context.Context, r RenameFolderResult) error {
			return c.store.FolderRenamed(ctx, r.FolderID, r.Name)
		}
	}
	op.Component = newComponent(c, hooks)
	return op
}

func (op *RenameFolder) FolderID() int64 { return get(op.Component, &op.folderID) }
func (op *RenameFolder) FolderName() string {
	return get(op.Component, &op.name)
}

func (op *RenameFolder) SetFolderID(v int64) bool {
	return set(op.Component, "folderId", &op.folderID, v)
}
func (op *RenameFolder) SetFolderName(v string) bool {
	return set(op.Component, "name", &op.name, v)
}

// DeleteFolder removes a folder with its feeds.
type DeleteFolder struct {
	*lifecycle.Component[int64]
	folderID int64
}

func (c *Client) DeleteFolder(folderID int64) *DeleteFolder {
	op := &DeleteFolder{folderID: folderID}
	hooks := lifecycle.Hooks[int64]{
		Name:            "delete_folder",
		NotFoundMessage: msgFolderNotFound,
		CheckInput: func() *apierr.Error {
			return checkID(op.folderID, msgInvalidFolderID)
		},
		Build: func() (*core.Request, error) {
			return newDelete(core.NewRoute("folders", strID(op.folderID)))
		},
		Decode: func(json.RawMessage) (int64, error) {
			return op.folderID, nil
		},
	}
	if c.store != nil {
		hooks.Sync = c.store.FolderDeleted
	}
	op.Component = newComponent(c, hooks)
	return op
}

func (op *DeleteFolder) FolderID() int64 { return get(op.Component, &op.folderID) }

func (op *DeleteFolder) SetFolderID(v int64) bool {
	return set(op.Component, "folderId", &op.folderID, v)
}

// MarkFolderRead marks the items of a folder up to a newest item ID as read.
type MarkFolderRead struct {
	*lifecycle.Component[MarkReadResult]
	folderID     int64
	newestItemID int64
}

func (c *Client) MarkFolderRead(folderID, newestItemID int64) *MarkFolderRead {
	op := &MarkFolderRead{folderID: folderID, newestItemID: newestItemID}
	hooks := lifecycle.Hooks[MarkReadResult]{
		Name:            "mark_folder_read",
		NotFoundMessage: msgFolderNotFound,
		CheckInput: func() *apierr.Error {
			return firstErr(
				func() *apierr.Error { return checkID(op.folderID, msgInvalidFolderID) },
				func() *apierr.Error { return checkID(op.newestItemID, msgInvalidNewestID) },
			)
		},
		Build: func() (*core.Request, error) {
			return newWithPayload(http.MethodPut, core.NewRoute("folders", strID(op.folderID), "read"),
				map[string]int64{"newestItemId": op.newestItemID})
		},
		Decode: func(json.RawMessage) (MarkReadResult, error) {
			return MarkReadResult{ID: op.folderID, NewestItemID: op.newestItemID}, nil
		},
	}
	if c.store != nil {
		hooks.Sync = func(ctx context.Context, r MarkReadResult) error {
			return c.store.FolderMarkedRead(ctx, r.ID, r.NewestItemID)
		}
	}
	op.Component = newComponent(c, hooks)
	return op
}

func (op *MarkFolderRead) FolderID() int64     { return get(op.Component, &op.folderID) }
func (op *MarkFolderRead) NewestItemID() int64 { return get(op.Component, &op.newestItemID) }

func (op *MarkFolderRead) SetFolderID(v int64) bool {
	return set(op.Component, "folderId", &op.folderID, v)
}
func (op *MarkFolderRead) SetNewestItemID(v int64) bool {
	return set(op.Component, "newestItemId", &op.newestItemID, v)
}
