package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"alerthub_backend/internal/auth/repository"
	"alerthub_backend/platform/apperr"
	"alerthub_backend/platform/config"
	"alerthub_backend/platform/logger"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleService handles the OAuth delegation flow. Accounts are matched by
// email; unknown emails get a citizen account created on first sign-in.
type GoogleService struct {
	auth    *Service
	repo    Repository
	oauth   *oauth2.Config
	enabled bool
	log     *logger.Logger
}

func NewGoogleService(auth *Service, repo Repository, cfg config.OAuthConfig, log *logger.Logger) *GoogleService {
	return &GoogleService{
		auth: auth,
		repo: repo,
		oauth: &oauth2.Config{
			ClientID:     cfg.GetGoogleClientID(),
			ClientSecret: cfg.GetGoogleClientSecret(),
			RedirectURL:  cfg.GetGoogleRedirectURL(),
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
		enabled: cfg.IsGoogleOAuthEnabled(),
		log:     log,
	}
}

// Enabled reports whether Google credentials are configured.
func (g *GoogleService) Enabled() bool {
	return g.enabled
}

// AuthURL returns the Google consent URL for the given anti-forgery state.
func (g *GoogleService) AuthURL(state string) string {
	return g.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// NewState returns a random URL-safe anti-forgery token.
func NewState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

type googleUserInfo struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Name       string `json:"name"`
}

// Exchange trades the callback code for a profile and returns a signed access
// token for the matching (or newly created) account.
func (g *GoogleService) Exchange(ctx context.Context, code string) (string, repository.User, error) {
	if !g.enabled {
		return "", repository.User{}, apperr.Unavailable("google sign-in is not configured")
	}

	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		g.log.UpstreamError("google", "token_exchange", err)
		return "", repository.User{}, apperr.Unauthorized("google sign-in failed")
	}

	info, err := g.fetchUserInfo(ctx, token)
	if err != nil {
		g.log.UpstreamError("google", "userinfo", err)
		return "", repository.User{}, apperr.Unauthorized("google sign-in failed")
	}
	if info.Email == "" {
		return "", repository.User{}, apperr.Unauthorized("google account has no email")
	}

	user, err := g.findOrCreateUser(ctx, info)
	if err != nil {
		return "", repository.User{}, err
	}

	accessToken, err := g.auth.signAccessToken(user)
	if err != nil {
		return "", repository.User{}, apperr.Wrap(apperr.KindInternal, "sign token", err)
	}

	g.log.AuthEvent("google_login", user.Email, true, "")
	return accessToken, user, nil
}

func (g *GoogleService) fetchUserInfo(ctx context.Context, token *oauth2.Token) (googleUserInfo, error) {
	client := g.oauth.Client(ctx, token)

	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return googleUserInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleUserInfo{}, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return googleUserInfo{}, err
	}
	return info, nil
}

func (g *GoogleService) findOrCreateUser(ctx context.Context, info googleUserInfo) (repository.User, error) {
	emailAddr := strings.ToLower(strings.TrimSpace(info.Email))

	user, err := g.repo.GetUserByEmail(ctx, emailAddr)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return repository.User{}, apperr.Wrap(apperr.KindInternal, "load user", err)
	}

	firstName := strings.TrimSpace(info.GivenName)
	lastName := strings.TrimSpace(info.FamilyName)
	if firstName == "" {
		firstName = strings.TrimSpace(info.Name)
	}
	if firstName == "" {
		firstName = emailAddr
	}
	if lastName == "" {
		lastName = "-"
	}

	// The account is OAuth-only: an unguessable random password keeps the
	// credential login path closed until the user resets it.
	random, err := NewState()
	if err != nil {
		return repository.User{}, apperr.Wrap(apperr.KindInternal, "generate password", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(random), bcryptCost)
	if err != nil {
		return repository.User{}, apperr.Wrap(apperr.KindInternal, "hash password", err)
	}

	roleID, err := g.repo.GetRoleID(ctx, RoleCitizen)
	if err != nil {
		return repository.User{}, apperr.Wrap(apperr.KindInternal, "resolve default role", err)
	}

	user, err = g.repo.CreateUser(ctx, firstName, lastName, emailAddr, string(hash), nil, roleID)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			// Lost a race with a concurrent registration; load the winner.
			return g.repo.GetUserByEmail(ctx, emailAddr)
		}
		return repository.User{}, apperr.Wrap(apperr.KindInternal, "create user", err)
	}
	return user, nil
}
