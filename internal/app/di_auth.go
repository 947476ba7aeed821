package app

import (
	"context"
	"fmt"
	"sync"

	authHTTP "github.com/allisson/warden/internal/auth/http"
	authRepository "github.com/allisson/warden/internal/auth/repository"
	authService "github.com/allisson/warden/internal/auth/service"
	authUseCase "github.com/allisson/warden/internal/auth/usecase"
)

// authComponents groups the lazily built pieces of the auth module.
type authComponents struct {
	capabilityRegistry authService.CapabilityRegistry
	ownershipScoper    authService.OwnershipScoper
	passwordService    authService.PasswordService
	tokenService       authService.TokenService
	accessTokenService authService.AccessTokenService
	auditSigner        authService.AuditSigner
	refreshTokenRepo   authUseCase.RefreshTokenRepository
	auditLogRepo       authUseCase.AuditLogRepository
	auditLogUseCase    authUseCase.AuditLogUseCase
	tokenUseCase       authUseCase.TokenUseCase
	guardUseCase       authUseCase.GuardUseCase
	tokenHandler       *authHTTP.TokenHandler
	auditLogHandler    *authHTTP.AuditLogHandler

	capabilityRegistryInit sync.Once
	ownershipScoperInit    sync.Once
	passwordServiceInit    sync.Once
	tokenServiceInit       sync.Once
	accessTokenServiceInit sync.Once
	auditSignerInit        sync.Once
	refreshTokenRepoInit   sync.Once
	auditLogRepoInit       sync.Once
	auditLogUseCaseInit    sync.Once
	tokenUseCaseInit       sync.Once
	guardUseCaseInit       sync.Once
	tokenHandlerInit       sync.Once
	auditLogHandlerInit    sync.Once
}

// CapabilityRegistry returns the role -> capability registry. ROLE_MATRIX_FILE replaces the
// built-in matrix when set.
func (c *Container) CapabilityRegistry() (authService.CapabilityRegistry, error) {
	err := c.once("capabilityRegistry", &c.capabilityRegistryInit, func() error {
		matrix := authService.DefaultRoleMatrix()
		if c.config.RoleMatrixFile != "" {
			loaded, err := authService.LoadRoleMatrix(c.config.RoleMatrixFile)
			if err != nil {
				return fmt.Errorf("failed to load role matrix: %w", err)
			}
			matrix = loaded
		}
		c.capabilityRegistry = authService.NewCapabilityRegistry(matrix)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.capabilityRegistry, nil
}

// OwnershipScoper returns the row visibility scoper.
func (c *Container) OwnershipScoper() authService.OwnershipScoper {
	c.ownershipScoperInit.Do(func() {
		c.ownershipScoper = authService.NewOwnershipScoper(authService.DefaultVisibility())
	})
	return c.ownershipScoper
}

// PasswordService returns the password hashing service.
func (c *Container) PasswordService() authService.PasswordService {
	c.passwordServiceInit.Do(func() {
		c.passwordService = authService.NewPasswordService()
	})
	return c.passwordService
}

// TokenService returns the opaque refresh token generator.
func (c *Container) TokenService() authService.TokenService {
	c.tokenServiceInit.Do(func() {
		c.tokenService = authService.NewTokenService()
	})
	return c.tokenService
}

// AuditSigner returns the audit log signer.
func (c *Container) AuditSigner() authService.AuditSigner {
	c.auditSignerInit.Do(func() {
		c.auditSigner = authService.NewAuditSigner()
	})
	return c.auditSigner
}

// AccessTokenService returns the JWT access token service. The signing secret goes through
// the secret resolver so it may be stored KMS-encrypted.
func (c *Container) AccessTokenService() (authService.AccessTokenService, error) {
	err := c.once("accessTokenService", &c.accessTokenServiceInit, func() error {
		resolver, err := c.SecretResolver()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), c.config.StoreTimeout)
		defer cancel()

		secret, err := resolver.Resolve(ctx, c.config.JWTSecret)
		if err != nil {
			return fmt.Errorf("failed to resolve jwt secret: %w", err)
		}
		c.accessTokenService, err = authService.NewAccessTokenService(authService.AccessTokenConfig{
			Secret:   secret,
			Issuer:   c.config.JWTIssuer,
			Audience: c.config.JWTAudience,
			TTL:      c.config.AccessTokenExpiration,
			Leeway:   c.config.TokenClockSkew,
		})
		if err != nil {
			return fmt.Errorf("failed to create access token service: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.accessTokenService, nil
}

// RefreshTokenRepository returns the refresh token store selected by REFRESH_TOKEN_STORE and,
// for the sql store, the database driver.
func (c *Container) RefreshTokenRepository() (authUseCase.RefreshTokenRepository, error) {
	err := c.once("refreshTokenRepo", &c.refreshTokenRepoInit, func() (err error) {
		c.refreshTokenRepo, err = c.initRefreshTokenRepository()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.refreshTokenRepo, nil
}

// AuditLogRepository returns the audit log repository based on database driver.
func (c *Container) AuditLogRepository() (authUseCase.AuditLogRepository, error) {
	err := c.once("auditLogRepo", &c.auditLogRepoInit, func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for audit log repository: %w", err)
		}
		switch c.config.DBDriver {
		case "postgres":
			c.auditLogRepo = authRepository.NewPostgreSQLAuditLogRepository(db)
		case "mysql":
			c.auditLogRepo = authRepository.NewMySQLAuditLogRepository(db)
		default:
			return fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.auditLogRepo, nil
}

// AuditLogUseCase returns the audit sink.
func (c *Container) AuditLogUseCase() (authUseCase.AuditLogUseCase, error) {
	err := c.once("auditLogUseCase", &c.auditLogUseCaseInit, func() error {
		repo, err := c.AuditLogRepository()
		if err != nil {
			return err
		}
		resolver, err := c.SecretResolver()
		if err != nil {
			return err
		}

		var signingKey []byte
		if c.config.AuditSigningKey != "" {
			ctx, cancel := context.WithTimeout(context.Background(), c.config.StoreTimeout)
			defer cancel()
			signingKey, err = resolver.Resolve(ctx, c.config.AuditSigningKey)
			if err != nil {
				return fmt.Errorf("failed to resolve audit signing key: %w", err)
			}
		}

		c.auditLogUseCase = authUseCase.NewAuditLogUseCase(repo, c.AuditSigner(), authUseCase.AuditLogConfig{
			SigningKey:   signingKey,
			KeyID:        c.config.AuditSigningKeyID,
			StoreTimeout: c.config.StoreTimeout,
		}, c.Logger())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.auditLogUseCase, nil
}

// TokenUseCase returns the token service use case wrapped with business metrics.
func (c *Container) TokenUseCase() (authUseCase.TokenUseCase, error) {
	err := c.once("tokenUseCase", &c.tokenUseCaseInit, func() error {
		txManager, err := c.TxManager()
		if err != nil {
			return err
		}
		userRepo, err := c.UserRepository()
		if err != nil {
			return err
		}
		refreshRepo, err := c.RefreshTokenRepository()
		if err != nil {
			return err
		}
		accessTokens, err := c.AccessTokenService()
		if err != nil {
			return err
		}
		auditLogUseCase, err := c.AuditLogUseCase()
		if err != nil {
			return err
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return err
		}

		useCase := authUseCase.NewTokenUseCase(
			c.config,
			txManager,
			userRepo,
			refreshRepo,
			accessTokens,
			c.TokenService(),
			c.PasswordService(),
			auditLogUseCase,
		)
		c.tokenUseCase = authUseCase.NewTokenUseCaseWithMetrics(useCase, businessMetrics)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.tokenUseCase, nil
}

// GuardUseCase returns the authorization guard wrapped with business metrics.
func (c *Container) GuardUseCase() (authUseCase.GuardUseCase, error) {
	err := c.once("guardUseCase", &c.guardUseCaseInit, func() error {
		accessTokens, err := c.AccessTokenService()
		if err != nil {
			return err
		}
		userRepo, err := c.UserRepository()
		if err != nil {
			return err
		}
		registry, err := c.CapabilityRegistry()
		if err != nil {
			return err
		}
		auditLogUseCase, err := c.AuditLogUseCase()
		if err != nil {
			return err
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return err
		}

		useCase := authUseCase.NewGuardUseCase(
			accessTokens,
			userRepo,
			registry,
			c.OwnershipScoper(),
			auditLogUseCase,
			c.Logger(),
			c.config.StoreTimeout,
		)
		c.guardUseCase = authUseCase.NewGuardUseCaseWithMetrics(useCase, businessMetrics)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.guardUseCase, nil
}

// TokenHandler returns the HTTP handler for login, refresh and logout.
func (c *Container) TokenHandler() (*authHTTP.TokenHandler, error) {
	err := c.once("tokenHandler", &c.tokenHandlerInit, func() error {
		tokenUseCase, err := c.TokenUseCase()
		if err != nil {
			return fmt.Errorf("failed to get token use case for token handler: %w", err)
		}
		c.tokenHandler = authHTTP.NewTokenHandler(tokenUseCase, c.Logger())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.tokenHandler, nil
}

// AuditLogHandler returns the HTTP handler for audit log queries.
func (c *Container) AuditLogHandler() (*authHTTP.AuditLogHandler, error) {
	err := c.once("auditLogHandler", &c.auditLogHandlerInit, func() error {
		auditLogUseCase, err := c.AuditLogUseCase()
		if err != nil {
			return fmt.Errorf("failed to get audit log use case for audit log handler: %w", err)
		}
		c.auditLogHandler = authHTTP.NewAuditLogHandler(auditLogUseCase, c.Logger())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.auditLogHandler, nil
}

func (c *Container) initRefreshTokenRepository() (authUseCase.RefreshTokenRepository, error) {
	if c.config.RefreshTokenStore == RefreshTokenStoreRedis {
		client, err := c.RedisClient()
		if err != nil {
			return nil, fmt.Errorf("failed to get redis client for refresh token repository: %w", err)
		}
		return authRepository.NewRedisRefreshTokenRepository(client), nil
	}
	if c.config.RefreshTokenStore != RefreshTokenStoreSQL {
		return nil, fmt.Errorf("unsupported refresh token store: %s", c.config.RefreshTokenStore)
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for refresh token repository: %w", err)
	}
	switch c.config.DBDriver {
	case "postgres":
		return authRepository.NewPostgreSQLRefreshTokenRepository(db), nil
	case "mysql":
		return authRepository.NewMySQLRefreshTokenRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}
