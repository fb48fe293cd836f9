package commands

// CheckInstalledRequest selects the executable probed by CheckInstalled. An empty path selects the configured or default cm.
type CheckInstalledRequest struct {
	ExecutablePath string `json:"cm_path,omitempty"`
}

// ValidatePathRequest carries the candidate executable or installation directory.
type ValidatePathRequest struct {
	ExecutablePath string `json:"cm_path" validate:"required"`
}

// DetectServerRequest selects the executable used for server detection.
type DetectServerRequest struct {
	ExecutablePath string `json:"cm_path,omitempty"`
}

// ListRepositoriesRequest names the server whose repositories are listed.
type ListRepositoriesRequest struct {
	Server         string `json:"server" validate:"required"`
	ExecutablePath string `json:"cm_path,omitempty"`
}

// ListAllChangesetsRequest names the server whose history is merged. A nil Limit selects the configured default.
type ListAllChangesetsRequest struct {
	Server         string `json:"server" validate:"required"`
	Limit          *int   `json:"limit,omitempty" validate:"omitempty,gte=0"`
	ExecutablePath string `json:"cm_path,omitempty"`
}
