package api

import "time"

// Payment is one recorded collection.
type Payment struct {
	ID     string    `json:"id"`
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
	Month  string    `json:"month"`
}

// Household is a billed residence.
type Household struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Address            string    `json:"address"`
	Phone              string    `json:"phone"`
	PaymentHistory     []Payment `json:"paymentHistory"`
	LastCollectionDate time.Time `json:"lastCollectionDate"`
	Status             string    `json:"status"`
	AssignedRoute      string    `json:"assignedRoute"`
	Version            int64     `json:"version,omitempty"`
}

// Staff is a driver or helper. VehicleDetails is set for drivers only.
type Staff struct {
	ID             int64   `json:"id"`
	Role           string  `json:"role"`
	Name           string  `json:"name"`
	Phone          string  `json:"phone"`
	Salary         float64 `json:"salary"`
	AssignedRoute  string  `json:"assignedRoute"`
	VehicleDetails string  `json:"vehicleDetails,omitempty"`
	Version        int64   `json:"version,omitempty"`
}

type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned by every successful sign-in.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Role      string    `json:"role"`
	Subject   string    `json:"subject"`
	Name      string    `json:"name,omitempty"`
}

// RequestCodeRequest asks for a one-time code. Role is "household" or "driver".
type RequestCodeRequest struct {
	Role  string `json:"role"`
	Phone string `json:"phone"`
}

type RequestCodeResponse struct {
	ChallengeID string    `json:"challengeId"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type VerifyCodeRequest struct {
	ChallengeID string `json:"challengeId"`
	Code        string `json:"code"`
}

// NewHouseholdRequest carries the caller-supplied fields of a new household.
// It is used by both RegisterHousehold and CreateHousehold.
type NewHouseholdRequest struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	AssignedRoute string `json:"assignedRoute,omitempty"`
}

type HouseholdResponse struct {
	Household Household `json:"household"`
}

// ListHouseholdsRequest selects and orders the admin table.
// Empty fields mean no text filter, all statuses and id ascending.
type ListHouseholdsRequest struct {
	Query         string `json:"query,omitempty"`
	Status        string `json:"status,omitempty"`
	SortKey       string `json:"sortKey,omitempty"`
	SortDirection string `json:"sortDirection,omitempty"`
}

type ListHouseholdsResponse struct {
	Households []Household `json:"households"`
	Total      int         `json:"total"`
}

type ListRouteHouseholdsResponse struct {
	Route      string      `json:"route"`
	Households []Household `json:"households"`
}

type UpdateHouseholdRequest struct {
	Household Household `json:"household"`
}

type SetPaymentStatusRequest struct {
	HouseholdID int64  `json:"householdId"`
	Status      string `json:"status"`
}

// SendRemindersRequest names the households to remind. An empty list means
// every household.
type SendRemindersRequest struct {
	HouseholdIDs []int64 `json:"householdIds,omitempty"`
}

type SendRemindersResponse struct {
	Requested int `json:"requested"`
	Sent      int `json:"sent"`
}

type ListStaffResponse struct {
	Staff []Staff `json:"staff"`
}

type StaffRequest struct {
	Staff Staff `json:"staff"`
}

type StaffResponse struct {
	Staff Staff `json:"staff"`
}

// MetricsResponse is the admin dashboard summary.
type MetricsResponse struct {
	Period               string  `json:"period"`
	Households           int     `json:"households"`
	PaidCount            int     `json:"paidCount"`
	DueCount             int     `json:"dueCount"`
	PaidPercent          float64 `json:"paidPercent"`
	HouseholdFee         float64 `json:"householdFee"`
	HouseholdCollections float64 `json:"householdCollections"`
	CommercialIncome     float64 `json:"commercialIncome"`
	TotalCollections     float64 `json:"totalCollections"`
	PendingAmount        float64 `json:"pendingAmount"`
	TotalExpenses        float64 `json:"totalExpenses"`
	NetProfit            float64 `json:"netProfit"`
}
