package app

import (
	"fmt"
	"sync"

	userHTTP "github.com/allisson/warden/internal/user/http"
	userRepository "github.com/allisson/warden/internal/user/repository"
	userUseCase "github.com/allisson/warden/internal/user/usecase"
)

type userComponents struct {
	userRepo        userUseCase.UserRepository
	userUseCase     userUseCase.UserUseCase
	userHandler     *userHTTP.UserHandler
	userRepoInit    sync.Once
	userUseCaseInit sync.Once
	userHandlerInit sync.Once
}

// UserRepository returns the user repository based on database driver.
func (c *Container) UserRepository() (userUseCase.UserRepository, error) {
	err := c.once("userRepo", &c.userRepoInit, func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for user repository: %w", err)
		}
		switch c.config.DBDriver {
		case "postgres":
			c.userRepo = userRepository.NewPostgreSQLUserRepository(db)
		case "mysql":
			c.userRepo = userRepository.NewMySQLUserRepository(db)
		default:
			return fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.userRepo, nil
}

// UserUseCase returns the user management use case. Deactivating a user revokes their
// sessions through the token use case.
func (c *Container) UserUseCase() (userUseCase.UserUseCase, error) {
	err := c.once("userUseCase", &c.userUseCaseInit, func() error {
		repo, err := c.UserRepository()
		if err != nil {
			return err
		}
		registry, err := c.CapabilityRegistry()
		if err != nil {
			return err
		}
		tokenUseCase, err := c.TokenUseCase()
		if err != nil {
			return err
		}
		auditLogUseCase, err := c.AuditLogUseCase()
		if err != nil {
			return err
		}
		c.userUseCase = userUseCase.NewUserUseCase(
			repo,
			c.PasswordService(),
			registry,
			tokenUseCase,
			auditLogUseCase,
			c.config.StoreTimeout,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.userUseCase, nil
}

// UserHandler returns the HTTP handler for registration, profiles and user administration.
func (c *Container) UserHandler() (*userHTTP.UserHandler, error) {
	err := c.once("userHandler", &c.userHandlerInit, func() error {
		useCase, err := c.UserUseCase()
		if err != nil {
			return fmt.Errorf("failed to get user use case for user handler: %w", err)
		}
		c.userHandler = userHTTP.NewUserHandler(useCase, c.Logger())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.userHandler, nil
}
