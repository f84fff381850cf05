package wiring

import (
	"github.com/niksavis/burndown-chart/pkg/domain/project"
	"github.com/niksavis/burndown-chart/pkg/storage"
)

// Workspace bundles core infrastructure dependencies.
type Workspace struct {
	Root     string
	Repo     *storage.FilesystemRepository
	Settings *project.Settings
}

func NewWorkspace(root string) *Workspace {
	repo := storage.NewFilesystemRepository(root)

	settings, err := repo.LoadSettings()
	if err != nil || settings == nil {
		settings = project.DefaultSettings()
	}

	return &Workspace{
		Root:     root,
		Repo:     repo,
		Settings: settings,
	}
}
