package plasticcli

// RepositoryRef identifies a repository hosted on a Plastic SCM server.
type RepositoryRef struct {
	Name   string `json:"name" yaml:"name"`
	Server string `json:"server" yaml:"server"`
}

// ChangesetRecord describes one committed changeset.
// Date holds the text printed by cm and is never parsed.
type ChangesetRecord struct {
	ID         int64  `json:"id" yaml:"id"`
	Author     string `json:"author" yaml:"author"`
	Date       string `json:"date" yaml:"date"`
	Comment    string `json:"comment" yaml:"comment"`
	Branch     string `json:"branch" yaml:"branch"`
	Repository string `json:"repository" yaml:"repository"`
}
