package core

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"codeassist/internal/config"
	"codeassist/pkg/corerpc"
	"codeassist/pkg/logging"
	"codeassist/pkg/oauth"

	"golang.org/x/oauth2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// CallbackPath is the path the identity provider redirects to, on both the
// CLI's local listener and the core's HTTP endpoint.
const CallbackPath = "/oauth/callback"

// AccountService starts logins, signs users out, and streams auth state.
type AccountService struct {
	corerpc.UnimplementedAccountServiceServer

	provider    config.ProviderConfig
	store       *StateStore
	pending     *PendingLogins
	broadcaster *authBroadcaster
}

// NewAccountService creates an AccountService over store.
func NewAccountService(provider config.ProviderConfig, store *StateStore, pending *PendingLogins) *AccountService {
	return &AccountService{
		provider:    provider,
		store:       store,
		pending:     pending,
		broadcaster: newAuthBroadcaster(),
	}
}

// LoginClicked builds the authorization URL for the mode and base URL
// currently stored in state. The redirect goes to the caller's listener.
func (a *AccountService) LoginClicked(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	callbackURI := in.GetValue()
	if err := validateLoopbackURI(callbackURI); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid callback URI: %v", err)
	}

	mode := a.store.Get(KeyMode).String()
	if mode == "" {
		return nil, status.Error(codes.FailedPrecondition, "no Code Assist mode selected")
	}
	modeCfg := a.provider.Mode(mode)
	if modeCfg.AuthorizeURL == "" || modeCfg.TokenURL == "" || modeCfg.ClientID == "" {
		return nil, status.Errorf(codes.FailedPrecondition, "identity provider for mode %q is not configured", mode)
	}

	baseURL := a.store.Get(KeyBaseURL).String()
	if baseURL == "" {
		baseURL = modeCfg.BaseURL
	}

	pkce, err := oauth.GeneratePKCE()
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	state, err := oauth.GenerateState()
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	nonce, err := oauth.GenerateNonce()
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	oc := &oauth2.Config{
		ClientID: modeCfg.ClientID,
		Endpoint: oauth2.Endpoint{
			AuthURL:   modeCfg.AuthorizeURL,
			TokenURL:  modeCfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: strings.TrimSuffix(callbackURI, "/") + CallbackPath,
		Scopes:      modeCfg.Scopes,
	}

	authURL := oc.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", pkce.CodeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", pkce.CodeChallengeMethod),
		oauth2.SetAuthURLParam("nonce", nonce),
	)

	a.pending.Put(state, &pendingLogin{
		Mode:         mode,
		BaseURL:      baseURL,
		CodeVerifier: pkce.CodeVerifier,
		OAuth2:       oc,
		CreatedAt:    time.Now(),
	})

	logging.Info("Core", "Started %s login, redirect URI %s", mode, oc.RedirectURL)
	return wrapperspb.String(authURL), nil
}

// LogoutClicked removes stored credentials and identity and notifies
// subscribers.
func (a *AccountService) LogoutClicked(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	err := a.store.Set(map[string]any{
		KeyAPIKey:       nil,
		KeyRefreshToken: nil,
		KeyUserInfo:     nil,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to clear credentials: %v", err)
	}

	logging.Info("Core", "Signed out")
	a.broadcaster.publish(&corerpc.AuthState{})
	return &emptypb.Empty{}, nil
}

// SubscribeToAuthStatusUpdate sends the current auth state, then every
// change, until the client goes away.
func (a *AccountService) SubscribeToAuthStatusUpdate(_ *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	updates, unsubscribe := a.broadcaster.subscribe()
	defer unsubscribe()

	if err := sendAuthState(stream, a.store.AuthState()); err != nil {
		return err
	}

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case state, ok := <-updates:
			if !ok {
				return nil
			}
			if err := sendAuthState(stream, state); err != nil {
				return err
			}
		}
	}
}

// completeLogin stores the result of a successful code exchange and
// notifies subscribers.
func (a *AccountService) completeLogin(login *pendingLogin, token *oauth2.Token) (*corerpc.UserInfo, error) {
	idToken, _ := token.Extra("id_token").(string)
	user, err := userFromIDToken(idToken)
	if err != nil {
		return nil, err
	}

	values := map[string]any{
		KeyAPIKey: token.AccessToken,
		KeyUserInfo: map[string]any{
			"uid":         user.UID,
			"displayName": user.DisplayName,
			"email":       user.Email,
		},
	}
	if token.RefreshToken != "" {
		values[KeyRefreshToken] = token.RefreshToken
	}
	if err := a.store.Set(values); err != nil {
		return nil, fmt.Errorf("failed to store credentials: %w", err)
	}

	logging.Info("Core", "Signed in user %s (%s mode)", user.UID, login.Mode)
	a.broadcaster.publish(a.store.AuthState())
	return user, nil
}

func sendAuthState(stream grpc.ServerStreamingServer[structpb.Struct], state *corerpc.AuthState) error {
	msg, err := state.ToStruct()
	if err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	return stream.Send(msg)
}

// validateLoopbackURI accepts only http URIs on localhost or a loopback IP.
func validateLoopbackURI(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" {
		return fmt.Errorf("scheme must be http, got %q", u.Scheme)
	}
	host := u.Hostname()
	if host == "localhost" {
		return nil
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return nil
	}
	return fmt.Errorf("host %q is not a loopback address", host)
}
