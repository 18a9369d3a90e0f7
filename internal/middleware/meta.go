package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const reportMetaKey = "academia.report_meta"

// Sources reported in the meta block of cached report responses.
const (
	SourceCache    = "cache"
	SourceDatabase = "database"
)

type reportMeta struct {
	start  time.Time
	source string
}

// RequestTiming stamps the request start. ReportMeta measures against it.
func RequestTiming() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(reportMetaKey, &reportMeta{start: time.Now()})
		c.Next()
	}
}

// MarkCacheHit records whether the payload was read from Redis or rebuilt
// from Postgres.
func MarkCacheHit(c *gin.Context, hit bool) {
	meta := metaOf(c)
	meta.source = SourceDatabase
	if hit {
		meta.source = SourceCache
	}
}

// ReportMeta returns the envelope meta block for a report response. The
// elapsed time is taken when it is called, so build it right before writing.
func ReportMeta(c *gin.Context) map[string]interface{} {
	meta := metaOf(c)
	out := map[string]interface{}{
		"processing_time_ms": time.Since(meta.start).Milliseconds(),
	}
	if meta.source != "" {
		out["source"] = meta.source
		out["cache_hit"] = meta.source == SourceCache
	}
	return out
}

func metaOf(c *gin.Context) *reportMeta {
	if v, ok := c.Get(reportMetaKey); ok {
		if meta, ok := v.(*reportMeta); ok {
			return meta
		}
	}
	// Without RequestTiming the clock starts at the first call.
	meta := &reportMeta{start: time.Now()}
	c.Set(reportMetaKey, meta)
	return meta
}
