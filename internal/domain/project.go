package domain

import "time"

// Project is a cached snapshot of a server-side project listing entry; it is
// never authoritative between fetches.
type Project struct {
	ID           string
	Name         string
	Path         string
	Language     string
	IsGitRepo    bool
	LastModified time.Time
}

type ProjectDetails struct {
	Project
	Files []string
}

type FileContent struct {
	Path     string
	Content  string
	Modified time.Time
}
