package testserver

import (
	"cmp"
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/artpar/feedsync/internal/config"
	"github.com/artpar/feedsync/internal/news"
)

func apiPath(route string) string {
	return config.APIRoute + "/" + route
}

func (s *Server) register(mux *http.ServeMux) {
	handle := func(method, route string, h http.HandlerFunc) {
		mux.HandleFunc(method+" "+apiPath(route), s.recordingWrapper(h))
	}
	handle("GET", "version", s.getVersion)
	handle("GET", "status", s.getStatus)

	handle("GET", "folders", s.getFolders)
	handle("POST", "folders", s.createFolder)
	handle("PUT", "folders/{id}", s.renameFolder)
	handle("DELETE", "folders/{id}", s.deleteFolder)
	handle("PUT", "folders/{id}/read", s.markFolderRead)

	handle("GET", "feeds", s.getFeeds)
	handle("POST", "feeds", s.createFeed)
	handle("DELETE", "feeds/{id}", s.deleteFeed)
	handle("PUT", "feeds/{id}/{action}", s.updateFeed)

	handle("GET", "items", s.getItems)
	handle("GET", "items/updated", s.getUpdatedItems)
	handle("PUT", "items/read", s.markAllRead)
	handle("PUT", "items/{a}/{b}", s.updateItems)
	handle("PUT", "items/{feed}/{guid}/{action}", s.starItem)

	mux.HandleFunc("/", s.recordingWrapper(Handlers{}.Status(http.StatusNotFound)))
}

// Seed replaces the app content.
func (s *Server) Seed(folders []news.Folder, feeds []news.Feed, items []news.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folders = slices.Clone(folders)
	s.feeds = slices.Clone(feeds)
	s.items = nil
	s.addItemsLocked(items)
}

// AddItems inserts or replaces items. Items without a modification time are
// stamped with the current time.
func (s *Server) AddItems(items ...news.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addItemsLocked(items)
}

func (s *Server) addItemsLocked(items []news.Item) {
	now := time.Now().Unix()
	for _, it := range items {
		if it.LastModified == 0 {
			it.LastModified = now
		}
		if i := s.itemIndex(it.ID); i >= 0 {
			s.items[i] = it
		} else {
			s.items = append(s.items, it)
		}
	}
}

func (s *Server) Folders() []news.Folder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.folders)
}

func (s *Server) Feeds() []news.Feed {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.feeds)
}

// Item returns the server copy of an item.
func (s *Server) Item(id int64) (news.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.itemIndex(id); i >= 0 {
		return s.items[i], true
	}
	return news.Item{}, false
}

func (s *Server) itemIndex(id int64) int {
	return slices.IndexFunc(s.items, func(it news.Item) bool { return it.ID == id })
}

func (s *Server) feedIndex(id int64) int {
	return slices.IndexFunc(s.feeds, func(f news.Feed) bool { return f.ID == id })
}

func (s *Server) folderIndex(id int64) int {
	return slices.IndexFunc(s.folders, func(f news.Folder) bool { return f.ID == id })
}

func (s *Server) newID() int64 {
	s.nextID++
	return s.nextID
}

func writeJSON(w http.ResponseWriter, data any) {
	Handlers{}.JSON(http.StatusOK, data)(w, nil)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return 0, false
	}
	return id, true
}

func (s *Server) getVersion(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, map[string]string{"version": s.version})
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, news.ServerStatus{Version: s.version, Warnings: s.warnings})
}

func (s *Server) getFolders(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	folders := s.folders
	if folders == nil {
		folders = []news.Folder{}
	}
	writeJSON(w, map[string]any{"folders": folders})
}

func (s *Server) folderNameTaken(name string, except int64) bool {
	return slices.ContainsFunc(s.folders, func(f news.Folder) bool {
		return f.Name == name && f.ID != except
	})
}

func (s *Server) createFolder(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case in.Name == "":
		w.WriteHeader(http.StatusUnprocessableEntity)
	case s.folderNameTaken(in.Name, 0):
		w.WriteHeader(http.StatusConflict)
	default:
		folder := news.Folder{ID: s.newID(), Name: in.Name}
		s.folders = append(s.folders, folder)
		writeJSON(w, map[string]any{"folders": []news.Folder{folder}})
	}
}

func (s *Server) renameFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.folderIndex(id)
	switch {
	case i < 0:
		w.WriteHeader(http.StatusNotFound)
	case in.Name == "":
		w.WriteHeader(http.StatusUnprocessableEntity)
	case s.folderNameTaken(in.Name, id):
		w.WriteHeader(http.StatusConflict)
	default:
		s.folders[i].Name = in.Name
	}
}

func (s *Server) deleteFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.folderIndex(id)
	if i < 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	s.folders = slices.Delete(s.folders, i, i+1)
	for _, f := range s.feeds {
		if f.FolderID == id {
			s.removeFeedLocked(f.ID)
		}
	}
}

func (s *Server) removeFeedLocked(id int64) {
	s.feeds = slices.DeleteFunc(s.feeds, func(f news.Feed) bool { return f.ID == id })
	s.items = slices.DeleteFunc(s.items, func(it news.Item) bool { return it.FeedID == id })
}

func (s *Server) markReadLocked(newest int64, match func(news.Item) bool) {
	now := time.Now().Unix()
	for i, it := range s.items {
		if it.ID <= newest && it.Unread && match(it) {
			s.items[i].Unread = false
			s.items[i].LastModified = now
		}
	}
}

func (s *Server) feedsInFolder(folderID int64) []int64 {
	var ids []int64
	for _, f := range s.feeds {
		if f.FolderID == folderID {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

type newestPayload struct {
	NewestItemID int64 `json:"newestItemId"`
}

func (s *Server) markFolderRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in newestPayload
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.folderIndex(id) < 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	feeds := s.feedsInFolder(id)
	s.markReadLocked(in.NewestItemID, func(it news.Item) bool { return slices.Contains(feeds, it.FeedID) })
}

func (s *Server) newestItemIDLocked() int64 {
	var newest int64
	for _, it := range s.items {
		newest = max(newest, it.ID)
	}
	return newest
}

func (s *Server) getFeeds(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := news.FeedList{Feeds: make([]news.Feed, 0, len(s.feeds)), NewestItemID: s.newestItemIDLocked()}
	for _, f := range s.feeds {
		f.UnreadCount = 0
		for _, it := range s.items {
			if it.FeedID == f.ID && it.Unread {
				f.UnreadCount++
			}
		}
		list.Feeds = append(list.Feeds, f)
	}
	for _, it := range s.items {
		if it.Starred {
			list.StarredCount++
		}
	}
	writeJSON(w, list)
}

func (s *Server) createFeed(w http.ResponseWriter, r *http.Request) {
	var in struct {
		URL      string `json:"url"`
		FolderID int64  `json:"folderId"`
	}
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case slices.ContainsFunc(s.feeds, func(f news.Feed) bool { return f.URL == in.URL }):
		w.WriteHeader(http.StatusConflict)
	case in.FolderID != 0 && s.folderIndex(in.FolderID) < 0:
		w.WriteHeader(http.StatusUnprocessableEntity)
	default:
		feed := news.Feed{ID: s.newID(), FolderID: in.FolderID, URL: in.URL, Title: in.URL, Added: time.Now().Unix()}
		s.feeds = append(s.feeds, feed)
		writeJSON(w, map[string]any{"feeds": []news.Feed{feed}, "newestItemId": s.newestItemIDLocked()})
	}
}

func (s *Server) deleteFeed(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.feedIndex(id) < 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	s.removeFeedLocked(id)
}

func (s *Server) updateFeed(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in struct {
		FeedTitle    string `json:"feedTitle"`
		FolderID     int64  `json:"folderId"`
		NewestItemID int64  `json:"newestItemId"`
	}
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.feedIndex(id)
	if i < 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.PathValue("action") {
	case "rename":
		s.feeds[i].Title = in.FeedTitle
	case "move":
		if in.FolderID != 0 && s.folderIndex(in.FolderID) < 0 {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		s.feeds[i].FolderID = in.FolderID
	case "read":
		s.markReadLocked(in.NewestItemID, func(it news.Item) bool { return it.FeedID == id })
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func queryInt(r *http.Request, name string, def int64) int64 {
	v, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	if err != nil {
		return def
	}
	return v
}

func (s *Server) matchType(t news.ItemType, id int64) func(news.Item) bool {
	switch t {
	case news.ItemTypeFeed:
		return func(it news.Item) bool { return it.FeedID == id }
	case news.ItemTypeFolder:
		feeds := s.feedsInFolder(id)
		return func(it news.Item) bool { return slices.Contains(feeds, it.FeedID) }
	case news.ItemTypeStarred:
		return func(it news.Item) bool { return it.Starred }
	default:
		return func(news.Item) bool { return true }
	}
}

func (s *Server) getItems(w http.ResponseWriter, r *http.Request) {
	batch := queryInt(r, "batchSize", -1)
	offset := queryInt(r, "offset", 0)
	getRead := r.URL.Query().Get("getRead") != "false"
	oldestFirst := r.URL.Query().Get("oldestFirst") == "true"

	s.mu.Lock()
	defer s.mu.Unlock()
	match := s.matchType(news.ItemType(queryInt(r, "type", int64(news.ItemTypeAll))), queryInt(r, "id", 0))

	items := []news.Item{}
	for _, it := range s.items {
		if !match(it) || (!getRead && !it.Unread) {
			continue
		}
		if offset > 0 && ((oldestFirst && it.ID <= offset) || (!oldestFirst && it.ID >= offset)) {
			continue
		}
		items = append(items, it)
	}
	slices.SortFunc(items, func(a, b news.Item) int {
		if oldestFirst {
			return cmp.Compare(a.ID, b.ID)
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if batch >= 0 && int64(len(items)) > batch {
		items = items[:batch]
	}
	writeJSON(w, map[string]any{"items": items})
}

func (s *Server) getUpdatedItems(w http.ResponseWriter, r *http.Request) {
	since := queryInt(r, "lastModified", 0)

	s.mu.Lock()
	defer s.mu.Unlock()
	match := s.matchType(news.ItemType(queryInt(r, "type", int64(news.ItemTypeAll))), queryInt(r, "id", 0))

	items := []news.Item{}
	for _, it := range s.items {
		if it.LastModified >= since && match(it) {
			items = append(items, it)
		}
	}
	writeJSON(w, map[string]any{"items": items})
}

func (s *Server) markAllRead(w http.ResponseWriter, r *http.Request) {
	var in newestPayload
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markReadLocked(in.NewestItemID, func(news.Item) bool { return true })
}

// updateItems serves items/{id}/read|unread and items/read|unread|star|unstar/multiple.
func (s *Server) updateItems(w http.ResponseWriter, r *http.Request) {
	a, b := r.PathValue("a"), r.PathValue("b")
	if b == "multiple" {
		s.updateMultiple(w, r, a)
		return
	}

	id, err := strconv.ParseInt(a, 10, 64)
	if err != nil || (b != "read" && b != "unread") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.itemIndex(id)
	if i < 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	s.items[i].Unread = b == "unread"
	s.items[i].LastModified = time.Now().Unix()
}

func (s *Server) updateMultiple(w http.ResponseWriter, r *http.Request, action string) {
	now := time.Now().Unix()
	switch action {
	case "read", "unread":
		var in struct {
			Items []int64 `json:"items"`
		}
		if !decode(w, r, &in) {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, id := range in.Items {
			if i := s.itemIndex(id); i >= 0 {
				s.items[i].Unread = action == "unread"
				s.items[i].LastModified = now
			}
		}
	case "star", "unstar":
		var in struct {
			Items []news.StarRef `json:"items"`
		}
		if !decode(w, r, &in) {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, ref := range in.Items {
			if i := s.starIndex(ref); i >= 0 {
				s.items[i].Starred = action == "star"
				s.items[i].LastModified = now
			}
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *Server) starIndex(ref news.StarRef) int {
	return slices.IndexFunc(s.items, func(it news.Item) bool { return it.Ref() == ref })
}

func (s *Server) starItem(w http.ResponseWriter, r *http.Request) {
	feedID, ok := pathID(w, r, "feed")
	if !ok {
		return
	}
	action := r.PathValue("action")
	if action != "star" && action != "unstar" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.starIndex(news.StarRef{FeedID: feedID, GUIDHash: r.PathValue("guid")})
	if i < 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	s.items[i].Starred = action == "star"
	s.items[i].LastModified = time.Now().Unix()
}
