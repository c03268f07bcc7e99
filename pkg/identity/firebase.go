// Package identity adapts the Firebase Admin SDK to the account operations
// the establishment lifecycle needs.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/config"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/enums"
	pkgerrors "github.com/SamuelGunda/NowAround-Backend-sub000/pkg/errors"
)

const (
	defaultTimeout = 10 * time.Second
	RoleClaim      = "role"
)

// OwnerInfo describes the account created for an establishment owner.
type OwnerInfo struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// DisplayName joins the owner's names.
func (o OwnerInfo) DisplayName() string {
	return strings.TrimSpace(strings.TrimSpace(o.FirstName) + " " + strings.TrimSpace(o.LastName))
}

// Principal is the verified caller behind a bearer token.
type Principal struct {
	IdentityRef string
	Email       string
	Role        enums.Role
}

type authAPI interface {
	CreateUser(ctx context.Context, user *firebaseauth.UserToCreate) (*firebaseauth.UserRecord, error)
	DeleteUser(ctx context.Context, uid string) error
	SetCustomUserClaims(ctx context.Context, uid string, customClaims map[string]interface{}) error
	UpdateUser(ctx context.Context, uid string, user *firebaseauth.UserToUpdate) (*firebaseauth.UserRecord, error)
	GetUser(ctx context.Context, uid string) (*firebaseauth.UserRecord, error)
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// FirebaseClient manages accounts in Firebase Authentication.
type FirebaseClient struct {
	client  authAPI
	timeout time.Duration

	isEmailTaken func(error) bool
	isNotFound   func(error) bool
}

// New initialises the Firebase app from configuration.
func New(ctx context.Context, cfg config.FirebaseConfig) (*FirebaseClient, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("firebase project id is required")
	}

	var clientOpts []option.ClientOption
	switch {
	case cfg.CredentialsJSON != "":
		clientOpts = append(clientOpts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise firebase app: %w", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialise firebase auth client: %w", err)
	}
	return newFirebaseClient(authClient, cfg.Timeout), nil
}

func newFirebaseClient(api authAPI, timeout time.Duration) *FirebaseClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &FirebaseClient{
		client:       api,
		timeout:      timeout,
		isEmailTaken: firebaseauth.IsEmailAlreadyExists,
		isNotFound:   firebaseauth.IsUserNotFound,
	}
}

// CreateAccount registers the owner and returns the provider's uid.
func (c *FirebaseClient) CreateAccount(ctx context.Context, owner OwnerInfo) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	params := (&firebaseauth.UserToCreate{}).
		Email(strings.ToLower(strings.TrimSpace(owner.Email))).
		Password(owner.Password).
		DisplayName(owner.DisplayName())

	record, err := c.client.CreateUser(ctx, params)
	if err != nil {
		if c.isEmailTaken(err) {
			return "", pkgerrors.Wrap(pkgerrors.CodeEmailInUse, err, "email already in use")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create identity account")
	}
	return record.UID, nil
}

// DeleteAccount removes the account. A missing account is not an error.
func (c *FirebaseClient) DeleteAccount(ctx context.Context, ref string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.client.DeleteUser(ctx, ref); err != nil {
		if c.isNotFound(err) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete identity account")
	}
	return nil
}

func (c *FirebaseClient) AssignRole(ctx context.Context, ref string, role enums.Role) error {
	if !role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", role))
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.client.SetCustomUserClaims(ctx, ref, map[string]interface{}{RoleClaim: role.String()}); err != nil {
		return c.mapRefError(err, "assign role")
	}
	return nil
}

func (c *FirebaseClient) ChangePassword(ctx context.Context, ref, password string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if _, err := c.client.UpdateUser(ctx, ref, (&firebaseauth.UserToUpdate{}).Password(password)); err != nil {
		return c.mapRefError(err, "change password")
	}
	return nil
}

// GetOwnerNameAndEmail returns the account's display name and email.
func (c *FirebaseClient) GetOwnerNameAndEmail(ctx context.Context, ref string) (string, string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	record, err := c.client.GetUser(ctx, ref)
	if err != nil {
		return "", "", c.mapRefError(err, "load identity account")
	}
	if record.UserInfo == nil || record.Email == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeDependency, "identity account has no email")
	}
	return record.DisplayName, record.Email, nil
}

// VerifyIDToken validates a Firebase ID token and extracts the role claim.
func (c *FirebaseClient) VerifyIDToken(ctx context.Context, idToken string) (*Principal, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	token, err := c.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid id token")
	}

	principal := &Principal{IdentityRef: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		principal.Email = email
	}
	if raw, ok := token.Claims[RoleClaim].(string); ok {
		if role, err := enums.ParseRole(raw); err == nil {
			principal.Role = role
		}
	}
	return principal, nil
}

func (c *FirebaseClient) mapRefError(err error, action string) error {
	if c.isNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "identity account not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

func (c *FirebaseClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}
