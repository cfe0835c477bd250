package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	ssov1 "github.com/Nergous/sso_protos/gen/go/sso"

	grpclog "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpcretry "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/retry"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// Client talks to the SSO service that owns credentials and tokens.
type Client struct {
	auth  ssov1.AuthClient
	app   ssov1.AppClient
	conn  *grpc.ClientConn
	appID uint32
	log   *slog.Logger
}

type Options struct {
	Address      string
	Timeout      time.Duration
	RetriesCount int
	Insecure     bool
	AppID        uint32
}

func New(log *slog.Logger, opts Options) (*Client, error) {
	const op = "grpc.New"

	retryOpts := []grpcretry.CallOption{
		grpcretry.WithCodes(codes.Unavailable, codes.Aborted, codes.DeadlineExceeded),
		grpcretry.WithMax(uint(opts.RetriesCount)),
		grpcretry.WithPerRetryTimeout(opts.Timeout),
	}

	logOpts := []grpclog.Option{
		grpclog.WithLogOnEvents(grpclog.StartCall, grpclog.FinishCall),
	}

	creds := insecure.NewCredentials()
	if !opts.Insecure {
		creds = credentials.NewClientTLSFromCert(nil, "")
	}

	cc, err := grpc.NewClient(opts.Address,
		grpc.WithTransportCredentials(creds),
		grpc.WithChainUnaryInterceptor(
			grpclog.UnaryClientInterceptor(InterceptorLogger(log), logOpts...),
			grpcretry.UnaryClientInterceptor(retryOpts...),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Client{
		auth:  ssov1.NewAuthClient(cc),
		app:   ssov1.NewAppClient(cc),
		conn:  cc,
		appID: opts.AppID,
		log:   log,
	}, nil
}

// InterceptorLogger adapts slog to the interceptor logger interface.
func InterceptorLogger(l *slog.Logger) grpclog.Logger {
	return grpclog.LoggerFunc(func(ctx context.Context, lvl grpclog.Level, msg string, fields ...any) {
		l.Log(ctx, slog.Level(lvl), msg, fields...)
	})
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) ValidateToken(ctx context.Context, token string) (int64, bool, error) {
	resp, err := c.auth.ValidateToken(ctx, &ssov1.ValidateTokenRequest{Token: token})
	if err != nil {
		c.log.Error("sso.ValidateToken failed", slog.String("error", err.Error()))
		return 0, false, err
	}

	return int64(resp.GetUserId()), resp.GetValid(), nil
}

func (c *Client) Register(ctx context.Context, email, password string) (int64, error) {
	resp, err := c.auth.Register(ctx, &ssov1.RegisterRequest{Email: email, Password: password})
	if err != nil {
		c.log.Error("sso.Register failed", slog.String("error", err.Error()))
		return 0, err
	}

	return int64(resp.GetUserId()), nil
}

func (c *Client) Login(ctx context.Context, email, password string) (accessToken string, refreshToken string, err error) {
	resp, err := c.auth.Login(ctx, &ssov1.LoginRequest{Email: email, Password: password, AppId: c.appID})
	if err != nil {
		c.log.Error("sso.Login failed", slog.String("error", err.Error()))
		return "", "", err
	}

	return resp.GetAccessToken(), resp.GetRefreshToken(), nil
}

func (c *Client) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	resp, err := c.app.IsAdmin(ctx, &ssov1.IsAdminRequest{UserId: uint32(userID), AppId: c.appID})
	if err != nil {
		c.log.Error("sso.IsAdmin failed", slog.String("error", err.Error()))
		return false, err
	}

	return resp.GetIsAdmin(), nil
}
