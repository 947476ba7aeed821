package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	authDomain "github.com/allisson/warden/internal/auth/domain"
)

// UserRegistrar creates user accounts.
type UserRegistrar interface {
	Register(
		ctx context.Context,
		caller *authDomain.Identity,
		input *authDomain.RegisterUserInput,
	) (*authDomain.User, error)
}

// systemIdentity is the caller used for accounts created from the command line, which may
// assign any role. It has no user record behind it.
var systemIdentity = &authDomain.Identity{
	SubjectID: uuid.Nil,
	Role:      authDomain.RoleAdmin,
	IsActive:  true,
}

// RunCreateUser creates a user with the given role, typically to bootstrap the first admin.
// When password is empty it is read from term.Reader.
func RunCreateUser(
	ctx context.Context,
	registrar UserRegistrar,
	logger *slog.Logger,
	name, email, role, password string,
	format string,
	term IOTuple,
) error {
	parsedRole, err := authDomain.ParseRole(role)
	if err != nil {
		return fmt.Errorf("invalid role: %w", err)
	}

	if password == "" {
		_, _ = fmt.Fprint(term.Writer, "Enter password: ")
		line, err := bufio.NewReader(term.Reader).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
		_, _ = fmt.Fprintln(term.Writer)
	}

	logger.Info("creating user", slog.String("email", email), slog.String("role", string(parsedRole)))

	user, err := registrar.Register(ctx, systemIdentity, &authDomain.RegisterUserInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     parsedRole,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	payload := map[string]any{
		"id":    user.ID.String(),
		"name":  user.Name,
		"email": user.Email,
		"role":  string(user.Role),
	}
	err = render(term.Writer, format, payload, func(w io.Writer) {
		_, _ = fmt.Fprintf(w, "User created successfully\n\n")
		_, _ = fmt.Fprintf(w, "ID:    %s\n", user.ID)
		_, _ = fmt.Fprintf(w, "Email: %s\n", user.Email)
		_, _ = fmt.Fprintf(w, "Role:  %s\n", user.Role)
	})
	if err != nil {
		return err
	}

	logger.Info("user created successfully", slog.String("user_id", user.ID.String()))
	return nil
}
