package domain

// ProjectCache remembers files whose content is already fully migrated and
// formatted, so later runs can skip them.
type ProjectCache struct {
	RootPath   string                     `json:"root_path"`
	ConfigHash string                     `json:"config_hash"`
	Files      map[string]FileFingerprint `json:"files"`
}

// FileFingerprint is keyed by path relative to the workspace root.
type FileFingerprint struct {
	ContentHash string `json:"content_hash"`
}

func (c *ProjectCache) IsInvalidated(configHash string) bool {
	return c.ConfigHash != configHash
}

// IsSettled reports whether the file at rel still has the recorded content.
func (c *ProjectCache) IsSettled(rel, contentHash string) bool {
	if c == nil {
		return false
	}
	fp, ok := c.Files[rel]
	return ok && fp.ContentHash == contentHash
}
