package app

import (
	"fmt"

	foldersHTTP "github.com/keywarden/keywarden/internal/folders/http"
	foldersRepository "github.com/keywarden/keywarden/internal/folders/repository"
	foldersUseCase "github.com/keywarden/keywarden/internal/folders/usecase"
)

// foldersComponents holds the folders module dependencies.
type foldersComponents struct {
	repository foldersUseCase.FolderRepository
	useCase    foldersUseCase.FolderUseCase
	handler    *foldersHTTP.FolderHandler
}

// FolderRepository returns the folder repository for the configured driver.
func (c *Container) FolderRepository() (foldersUseCase.FolderRepository, error) {
	err := c.initOnce("folderRepository", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for folder repository: %w", err)
		}
		switch c.config.DBDriver {
		case "postgres":
			c.folders.repository = foldersRepository.NewPostgreSQLFolderRepository(db)
		case "mysql":
			c.folders.repository = foldersRepository.NewMySQLFolderRepository(db)
		default:
			return fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
		return nil
	})
	return c.folders.repository, err
}

// FolderUseCase returns the folder use case.
func (c *Container) FolderUseCase() (foldersUseCase.FolderUseCase, error) {
	err := c.initOnce("folderUseCase", func() error {
		txManager, err := c.TxManager()
		if err != nil {
			return fmt.Errorf("failed to get tx manager for folder use case: %w", err)
		}
		folderRepo, err := c.FolderRepository()
		if err != nil {
			return fmt.Errorf("failed to get folder repository for folder use case: %w", err)
		}
		c.folders.useCase = foldersUseCase.NewFolderUseCase(txManager, folderRepo)
		return nil
	})
	return c.folders.useCase, err
}

// FolderHandler returns the folder HTTP handler.
func (c *Container) FolderHandler() (*foldersHTTP.FolderHandler, error) {
	err := c.initOnce("folderHandler", func() error {
		useCase, err := c.FolderUseCase()
		if err != nil {
			return fmt.Errorf("failed to get folder use case for handler: %w", err)
		}
		c.folders.handler = foldersHTTP.NewFolderHandler(useCase, c.Logger())
		return nil
	})
	return c.folders.handler, err
}
