package http

import (
	"context"

	"horizon/internal/domain/dashboard"
	"horizon/internal/domain/linking"
	"horizon/internal/domain/user"
)

type MockUserService struct {
	SignUpFunc          func(ctx context.Context, params user.SignUpParams) (*user.User, *user.Session, error)
	SignInFunc          func(ctx context.Context, email, password string) (*user.Session, error)
	GetLoggedInUserFunc func(ctx context.Context, sessionSecret string) (*user.User, error)
	LogoutFunc          func(ctx context.Context, sessionSecret string) error
}

func (m *MockUserService) SignUp(ctx context.Context, params user.SignUpParams) (*user.User, *user.Session, error) {
	if m.SignUpFunc != nil {
		return m.SignUpFunc(ctx, params)
	}
	return nil, nil, nil
}

func (m *MockUserService) SignIn(ctx context.Context, email, password string) (*user.Session, error) {
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, email, password)
	}
	return nil, nil
}

func (m *MockUserService) GetLoggedInUser(ctx context.Context, sessionSecret string) (*user.User, error) {
	if m.GetLoggedInUserFunc != nil {
		return m.GetLoggedInUserFunc(ctx, sessionSecret)
	}
	return nil, nil
}

func (m *MockUserService) Logout(ctx context.Context, sessionSecret string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, sessionSecret)
	}
	return nil
}

type MockLinkingService struct {
	CreateLinkTokenFunc     func(ctx context.Context, u *user.User) (string, error)
	ExchangePublicTokenFunc func(ctx context.Context, publicToken string, u *user.User) (*linking.ExchangeResult, error)
}

func (m *MockLinkingService) CreateLinkToken(ctx context.Context, u *user.User) (string, error) {
	if m.CreateLinkTokenFunc != nil {
		return m.CreateLinkTokenFunc(ctx, u)
	}
	return "", nil
}

func (m *MockLinkingService) ExchangePublicToken(ctx context.Context, publicToken string, u *user.User) (*linking.ExchangeResult, error) {
	if m.ExchangePublicTokenFunc != nil {
		return m.ExchangePublicTokenFunc(ctx, publicToken, u)
	}
	return nil, nil
}

type MockDashboardService struct {
	GetAccountsFunc            func(ctx context.Context, userID string) (*dashboard.Summary, error)
	GetAccountBySharableIDFunc func(ctx context.Context, userID, sharableID string) (*dashboard.Account, error)
}

func (m *MockDashboardService) GetAccounts(ctx context.Context, userID string) (*dashboard.Summary, error) {
	if m.GetAccountsFunc != nil {
		return m.GetAccountsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockDashboardService) GetAccountBySharableID(ctx context.Context, userID, sharableID string) (*dashboard.Account, error) {
	if m.GetAccountBySharableIDFunc != nil {
		return m.GetAccountBySharableIDFunc(ctx, userID, sharableID)
	}
	return nil, nil
}
