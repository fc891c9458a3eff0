package scratchapi

import "time"

// ProjectMetadata is the api.scratch.mit.edu record for one project. The
// project token it carries is required to download the project.json and is
// only present on public, shared projects.
type ProjectMetadata struct {
	ID              int64             `json:"id"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Instructions    string            `json:"instructions"`
	Visibility      string            `json:"visibility"`
	Public          bool              `json:"public"`
	CommentsAllowed bool              `json:"comments_allowed"`
	IsPublished     bool              `json:"is_published"`
	Author          Author            `json:"author"`
	Image           string            `json:"image"`
	Images          map[string]string `json:"images"`
	History         History           `json:"history"`
	Stats           Stats             `json:"stats"`
	Remix           Remix             `json:"remix"`
	ProjectToken    string            `json:"project_token"`
}

// Author is the project owner's account record.
type Author struct {
	ID          int64   `json:"id"`
	Username    string  `json:"username"`
	ScratchTeam bool    `json:"scratchteam"`
	History     History `json:"history"`
	Profile     Profile `json:"profile"`
}

// Profile carries avatar URLs keyed by size ("90x90" and friends).
type Profile struct {
	ID     *int64            `json:"id"`
	Images map[string]string `json:"images"`
}

// History holds whichever timestamps the API filled for this record.
type History struct {
	Joined   *time.Time `json:"joined,omitempty"`
	Created  *time.Time `json:"created,omitempty"`
	Modified *time.Time `json:"modified,omitempty"`
	Shared   *time.Time `json:"shared,omitempty"`
}

// Stats are the public engagement counters.
type Stats struct {
	Views     int64 `json:"views"`
	Loves     int64 `json:"loves"`
	Favorites int64 `json:"favorites"`
	Remixes   int64 `json:"remixes"`
}

// Remix links a remixed project to its parent and original root.
type Remix struct {
	Parent *int64 `json:"parent"`
	Root   *int64 `json:"root"`
}

// ErrorResponse is the API's error body shape.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
