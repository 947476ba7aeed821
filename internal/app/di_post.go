package app

import (
	"fmt"
	"sync"

	postHTTP "github.com/allisson/warden/internal/post/http"
	postRepository "github.com/allisson/warden/internal/post/repository"
	postUseCase "github.com/allisson/warden/internal/post/usecase"
)

type postComponents struct {
	postRepo        postUseCase.PostRepository
	postUseCase     postUseCase.PostUseCase
	postHandler     *postHTTP.PostHandler
	postRepoInit    sync.Once
	postUseCaseInit sync.Once
	postHandlerInit sync.Once
}

// PostRepository returns the post repository based on database driver.
func (c *Container) PostRepository() (postUseCase.PostRepository, error) {
	err := c.once("postRepo", &c.postRepoInit, func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for post repository: %w", err)
		}
		switch c.config.DBDriver {
		case "postgres":
			c.postRepo = postRepository.NewPostgreSQLPostRepository(db)
		case "mysql":
			c.postRepo = postRepository.NewMySQLPostRepository(db)
		default:
			return fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.postRepo, nil
}

// PostUseCase returns the post use case.
func (c *Container) PostUseCase() (postUseCase.PostUseCase, error) {
	err := c.once("postUseCase", &c.postUseCaseInit, func() error {
		repo, err := c.PostRepository()
		if err != nil {
			return err
		}
		auditLogUseCase, err := c.AuditLogUseCase()
		if err != nil {
			return err
		}
		c.postUseCase = postUseCase.NewPostUseCase(repo, c.OwnershipScoper(), auditLogUseCase, c.config.StoreTimeout)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.postUseCase, nil
}

// PostHandler returns the HTTP handler for posts.
func (c *Container) PostHandler() (*postHTTP.PostHandler, error) {
	err := c.once("postHandler", &c.postHandlerInit, func() error {
		useCase, err := c.PostUseCase()
		if err != nil {
			return fmt.Errorf("failed to get post use case for post handler: %w", err)
		}
		c.postHandler = postHTTP.NewPostHandler(useCase, c.Logger())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.postHandler, nil
}
