package youtube

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
)

type item = map[string]any

// fakeAPI serves canned pages for the four endpoints. Page i>0 is addressed
// by the token "p<i>".
type fakeAPI struct {
	mu sync.Mutex

	threads map[string][][]item
	replies map[string][][]item
	search  [][]item
	videos  map[string]item

	// quotaAfter lets a key answer that many requests before it reports
	// quotaExceeded; keys absent from the map never run out.
	quotaAfter map[string]int
	// throttle makes a key answer rateLimitExceeded that many times before
	// it is served again.
	throttle map[string]int
	// failReplies makes the given reply page of a parent answer 500.
	failReplies map[string]int
	// failThreads makes every thread request of a video answer 500.
	failThreads map[string]bool

	used     map[string]int
	requests map[string]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		threads:     map[string][][]item{},
		replies:     map[string][][]item{},
		videos:      map[string]item{},
		quotaAfter:  map[string]int{},
		throttle:    map[string]int{},
		failReplies: map[string]int{},
		failThreads: map[string]bool{},
		used:        map[string]int{},
		requests:    map[string]int{},
	}
}

func (f *fakeAPI) start(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeAPI) client(srv *httptest.Server) *Client {
	return NewClient(Options{BaseURL: srv.URL, RetryWait: time.Millisecond})
}

func (f *fakeAPI) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[path]
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests[r.URL.Path]++
	key := r.Header.Get(apiKeyHeader)
	if key == "" {
		writeJSON(w, http.StatusForbidden, apiErrorBody(403, "forbidden"))
		return
	}
	if f.throttle[key] > 0 {
		f.throttle[key]--
		writeJSON(w, http.StatusForbidden, apiErrorBody(403, "rateLimitExceeded"))
		return
	}
	if limit, ok := f.quotaAfter[key]; ok && f.used[key] >= limit {
		writeJSON(w, http.StatusForbidden, apiErrorBody(403, "quotaExceeded"))
		return
	}
	f.used[key]++

	q := r.URL.Query()
	idx := 0
	if tok := q.Get("pageToken"); tok != "" {
		idx, _ = strconv.Atoi(strings.TrimPrefix(tok, "p"))
	}

	var pages [][]item
	switch r.URL.Path {
	case "/commentThreads":
		vid := q.Get("videoId")
		if f.failThreads[vid] {
			writeJSON(w, http.StatusInternalServerError, apiErrorBody(500, "backendError"))
			return
		}
		pages = f.threads[vid]
	case "/comments":
		parent := q.Get("parentId")
		if bad, ok := f.failReplies[parent]; ok && bad == idx {
			writeJSON(w, http.StatusInternalServerError, apiErrorBody(500, "backendError"))
			return
		}
		pages = f.replies[parent]
	case "/search":
		pages = f.search
	case "/videos":
		var items []item
		for _, id := range strings.Split(q.Get("id"), ",") {
			if v, ok := f.videos[id]; ok {
				items = append(items, v)
			}
		}
		pages = [][]item{items}
	default:
		writeJSON(w, http.StatusNotFound, apiErrorBody(404, "notFound"))
		return
	}

	body := item{"items": []item{}}
	if idx < len(pages) {
		body["items"] = pages[idx]
	}
	if idx+1 < len(pages) {
		body["nextPageToken"] = fmt.Sprintf("p%d", idx+1)
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func apiErrorBody(code int, reason string) item {
	return item{"error": item{
		"code":    code,
		"message": reason,
		"errors":  []item{{"reason": reason, "domain": "youtube.quota"}},
	}}
}

func commentItem(id, author, text, parent string) item {
	sn := item{
		"authorDisplayName": author,
		"authorChannelId":   item{"value": "UC_" + author},
		"textOriginal":      text,
		"likeCount":         1,
		"publishedAt":       "2024-05-01T12:00:00Z",
	}
	if parent != "" {
		sn["parentId"] = parent
	}
	return item{"id": id, "snippet": sn}
}

func threadItem(video, id, author string, replies int) item {
	return item{
		"id": id,
		"snippet": item{
			"videoId":         video,
			"totalReplyCount": replies,
			"topLevelComment": commentItem(id, author, "top "+id, ""),
		},
	}
}

func videoItem(id, title, description string, views int) item {
	return item{
		"id": id,
		"snippet": item{
			"title":        title,
			"description":  description,
			"channelId":    "UCchan",
			"channelTitle": "Chan",
			"publishedAt":  "2024-01-01T00:00:00Z",
		},
		"statistics":     item{"viewCount": strconv.Itoa(views)},
		"contentDetails": item{"duration": "PT1M"},
	}
}

// aliceBobCarol: Carol replies once to Alice and once to Bob, the thread
// listing spans two pages.
func aliceBobCarol(f *fakeAPI, video string) {
	f.threads[video] = [][]item{
		{threadItem(video, "c1", "Alice", 1)},
		{threadItem(video, "c2", "Bob", 1)},
	}
	f.replies["c1"] = [][]item{{commentItem("r1", "Carol", "oi Alice", "c1")}}
	f.replies["c2"] = [][]item{{commentItem("r2", "Carol", "oi Bob", "c2")}}
}
