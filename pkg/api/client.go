package api

import (
	"context"
	"strings"
	"sync"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
)

// Client calls every wasteline.v1 procedure. After SetToken each call
// carries the session as a Bearer token.
type Client struct {
	mu    sync.RWMutex
	token string

	adminLogin        *connect.Client[AdminLoginRequest, LoginResponse]
	requestCode       *connect.Client[RequestCodeRequest, RequestCodeResponse]
	verifyCode        *connect.Client[VerifyCodeRequest, LoginResponse]
	registerHousehold *connect.Client[NewHouseholdRequest, HouseholdResponse]

	listHouseholds      *connect.Client[ListHouseholdsRequest, ListHouseholdsResponse]
	getMyHousehold      *connect.Client[emptypb.Empty, HouseholdResponse]
	listRouteHouseholds *connect.Client[emptypb.Empty, ListRouteHouseholdsResponse]
	createHousehold     *connect.Client[NewHouseholdRequest, HouseholdResponse]
	updateHousehold     *connect.Client[UpdateHouseholdRequest, HouseholdResponse]
	setPaymentStatus    *connect.Client[SetPaymentStatusRequest, HouseholdResponse]
	sendReminders       *connect.Client[SendRemindersRequest, SendRemindersResponse]

	listDrivers *connect.Client[emptypb.Empty, ListStaffResponse]
	listHelpers *connect.Client[emptypb.Empty, ListStaffResponse]
	createStaff *connect.Client[StaffRequest, StaffResponse]
	updateStaff *connect.Client[StaffRequest, StaffResponse]

	getMetrics *connect.Client[emptypb.Empty, MetricsResponse]
}

// NewClient creates a client for the server at baseURL.
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	c := &Client{}
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{
		connect.WithCodec(Codec{}),
		connect.WithInterceptors(c.authInterceptor()),
	}, opts...)

	c.adminLogin = connect.NewClient[AdminLoginRequest, LoginResponse](httpClient, baseURL+AuthAdminLoginProcedure, opts...)
	c.requestCode = connect.NewClient[RequestCodeRequest, RequestCodeResponse](httpClient, baseURL+AuthRequestCodeProcedure, opts...)
	c.verifyCode = connect.NewClient[VerifyCodeRequest, LoginResponse](httpClient, baseURL+AuthVerifyCodeProcedure, opts...)
	c.registerHousehold = connect.NewClient[NewHouseholdRequest, HouseholdResponse](httpClient, baseURL+AuthRegisterHouseholdProcedure, opts...)

	c.listHouseholds = connect.NewClient[ListHouseholdsRequest, ListHouseholdsResponse](httpClient, baseURL+HouseholdListProcedure, opts...)
	c.getMyHousehold = connect.NewClient[emptypb.Empty, HouseholdResponse](httpClient, baseURL+HouseholdGetMineProcedure, opts...)
	c.listRouteHouseholds = connect.NewClient[emptypb.Empty, ListRouteHouseholdsResponse](httpClient, baseURL+HouseholdListRouteProcedure, opts...)
	c.createHousehold = connect.NewClient[NewHouseholdRequest, HouseholdResponse](httpClient, baseURL+HouseholdCreateProcedure, opts...)
	c.updateHousehold = connect.NewClient[UpdateHouseholdRequest, HouseholdResponse](httpClient, baseURL+HouseholdUpdateProcedure, opts...)
	c.setPaymentStatus = connect.NewClient[SetPaymentStatusRequest, HouseholdResponse](httpClient, baseURL+HouseholdSetPaymentStatusProcedure, opts...)
	c.sendReminders = connect.NewClient[SendRemindersRequest, SendRemindersResponse](httpClient, baseURL+HouseholdSendRemindersProcedure, opts...)

	c.listDrivers = connect.NewClient[emptypb.Empty, ListStaffResponse](httpClient, baseURL+StaffListDriversProcedure, opts...)
	c.listHelpers = connect.NewClient[emptypb.Empty, ListStaffResponse](httpClient, baseURL+StaffListHelpersProcedure, opts...)
	c.createStaff = connect.NewClient[StaffRequest, StaffResponse](httpClient, baseURL+StaffCreateProcedure, opts...)
	c.updateStaff = connect.NewClient[StaffRequest, StaffResponse](httpClient, baseURL+StaffUpdateProcedure, opts...)

	c.getMetrics = connect.NewClient[emptypb.Empty, MetricsResponse](httpClient, baseURL+ReportGetMetricsProcedure, opts...)
	return c
}

// SetToken sets the session token sent with subsequent calls.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) authInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			c.mu.RLock()
			token := c.token
			c.mu.RUnlock()
			if token != "" && req.Spec().IsClient {
				req.Header().Set("Authorization", "Bearer "+token)
			}
			return next(ctx, req)
		}
	}
}

func call[Req, Res any](ctx context.Context, client *connect.Client[Req, Res], req *Req) (*Res, error) {
	resp, err := client.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func (c *Client) AdminLogin(ctx context.Context, req *AdminLoginRequest) (*LoginResponse, error) {
	return call(ctx, c.adminLogin, req)
}

func (c *Client) RequestCode(ctx context.Context, req *RequestCodeRequest) (*RequestCodeResponse, error) {
	return call(ctx, c.requestCode, req)
}

func (c *Client) VerifyCode(ctx context.Context, req *VerifyCodeRequest) (*LoginResponse, error) {
	return call(ctx, c.verifyCode, req)
}

func (c *Client) RegisterHousehold(ctx context.Context, req *NewHouseholdRequest) (*HouseholdResponse, error) {
	return call(ctx, c.registerHousehold, req)
}

func (c *Client) ListHouseholds(ctx context.Context, req *ListHouseholdsRequest) (*ListHouseholdsResponse, error) {
	return call(ctx, c.listHouseholds, req)
}

func (c *Client) GetMyHousehold(ctx context.Context) (*HouseholdResponse, error) {
	return call(ctx, c.getMyHousehold, &emptypb.Empty{})
}

func (c *Client) ListRouteHouseholds(ctx context.Context) (*ListRouteHouseholdsResponse, error) {
	return call(ctx, c.listRouteHouseholds, &emptypb.Empty{})
}

func (c *Client) CreateHousehold(ctx context.Context, req *NewHouseholdRequest) (*HouseholdResponse, error) {
	return call(ctx, c.createHousehold, req)
}

func (c *Client) UpdateHousehold(ctx context.Context, req *UpdateHouseholdRequest) (*HouseholdResponse, error) {
	return call(ctx, c.updateHousehold, req)
}

func (c *Client) SetPaymentStatus(ctx context.Context, req *SetPaymentStatusRequest) (*HouseholdResponse, error) {
	return call(ctx, c.setPaymentStatus, req)
}

func (c *Client) SendReminders(ctx context.Context, req *SendRemindersRequest) (*SendRemindersResponse, error) {
	return call(ctx, c.sendReminders, req)
}

func (c *Client) ListDrivers(ctx context.Context) (*ListStaffResponse, error) {
	return call(ctx, c.listDrivers, &emptypb.Empty{})
}

func (c *Client) ListHelpers(ctx context.Context) (*ListStaffResponse, error) {
	return call(ctx, c.listHelpers, &emptypb.Empty{})
}

func (c *Client) CreateStaff(ctx context.Context, req *StaffRequest) (*StaffResponse, error) {
	return call(ctx, c.createStaff, req)
}

func (c *Client) UpdateStaff(ctx context.Context, req *StaffRequest) (*StaffResponse, error) {
	return call(ctx, c.updateStaff, req)
}

func (c *Client) GetMetrics(ctx context.Context) (*MetricsResponse, error) {
	return call(ctx, c.getMetrics, &emptypb.Empty{})
}
