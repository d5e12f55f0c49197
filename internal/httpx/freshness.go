package httpx

import (
	"fmt"
	"net/http"
	"time"
)

// Freshness is the per-call cache policy an adapter sends upstream.
// The zero value bypasses every intermediate cache.
type Freshness struct {
	maxAge time.Duration
}

// Bypass asks intermediaries for a fresh copy.
func Bypass() Freshness { return Freshness{} }

// TTL allows a cached copy no older than d. Non-positive d means Bypass.
func TTL(d time.Duration) Freshness {
	if d <= 0 {
		return Bypass()
	}
	return Freshness{maxAge: d.Truncate(time.Second)}
}

func (f Freshness) IsBypass() bool { return f.maxAge <= 0 }
func (f Freshness) MaxAge() time.Duration { return f.maxAge }

func (f Freshness) String() string {
	if f.IsBypass() {
		return "bypass"
	}
	return fmt.Sprintf("ttl(%ds)", int(f.maxAge.Seconds()))
}

// Apply writes the request headers that express f.
func (f Freshness) Apply(req *http.Request) {
	if f.IsBypass() {
		req.Header.Set("Cache-Control", "no-cache, no-store, max-age=0")
		req.Header.Set("Pragma", "no-cache")
		return
	}
	req.Header.Set("Cache-Control", fmt.Sprintf("max-age=%d", int(f.maxAge.Seconds())))
}
