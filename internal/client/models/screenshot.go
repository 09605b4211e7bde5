package models

// ScreenshotCacheEntry caches a captured page screenshot keyed by URL.
// It is a pure cache: no sync state and no eviction.
type ScreenshotCacheEntry struct {
	URL         string
	ImageBase64 string
	CreatedAt   int64
}
