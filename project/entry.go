package project

// Candidate is one file offered through click-upload.
type Candidate struct {
	Name string
	// RelativePath is the directory-rooted path when a folder was selected; empty for flat picks.
	RelativePath string
	Size         int64
	MIMEType     string
	Read         func() ([]byte, error)
}

func (c Candidate) path() string {
	if c.RelativePath != "" {
		return c.RelativePath
	}
	return c.Name
}

// TreeEntry is one node of a drag-and-drop payload. Leaves are files; other nodes list
// their children.
type TreeEntry interface {
	Name() string
	IsLeaf() bool
	Size() int64
	Read() ([]byte, error)
	Children() ([]TreeEntry, error)
}
