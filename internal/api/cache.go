package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/screening-outcome-classifier/internal/domain"
)

// cachedReport is a rendered summary response.
type cachedReport struct {
	contentType string
	runID       string
	body        []byte
}

// reportCache memoises rendered summaries by request digest. Summaries are
// deterministic for a given body, format and set of windows, apart from the
// run ID.
type reportCache struct {
	entries *lru.Cache[string, cachedReport]
}

func newReportCache(size int) (*reportCache, error) {
	entries, err := lru.New[string, cachedReport](size)
	if err != nil {
		return nil, err
	}
	return &reportCache{entries: entries}, nil
}

// cacheKey digests the request together with the effective windows, so a
// configuration reload never serves a report built with the old windows.
func cacheKey(format string, windows domain.WindowConfig, body []byte) string {
	encoded, _ := json.Marshal(windows)

	h := sha256.New()
	h.Write([]byte(format))
	h.Write([]byte{0})
	h.Write(encoded)
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func (rc *reportCache) get(key string) (cachedReport, bool) {
	if rc == nil {
		return cachedReport{}, false
	}
	return rc.entries.Get(key)
}

func (rc *reportCache) add(key string, report cachedReport) {
	if rc == nil {
		return
	}
	rc.entries.Add(key, report)
}

func (rc *reportCache) len() int {
	if rc == nil {
		return 0
	}
	return rc.entries.Len()
}
