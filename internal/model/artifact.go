package model

// Artifact is a rendered template stored in object storage. Once written it
// is never updated or deleted.
type Artifact struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Size int    `json:"size"`
}
