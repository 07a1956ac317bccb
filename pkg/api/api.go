// Package api defines the wasteline.v1 Connect procedures, their JSON
// messages and a typed client. Messages are plain Go structs carried by a
// JSON codec; parameterless calls use emptypb.Empty.
package api

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// Service names.
const (
	AuthServiceName      = "wasteline.v1.AuthService"
	HouseholdServiceName = "wasteline.v1.HouseholdService"
	StaffServiceName     = "wasteline.v1.StaffService"
	ReportServiceName    = "wasteline.v1.ReportService"
)

// Fully-qualified procedure paths.
const (
	AuthAdminLoginProcedure        = "/" + AuthServiceName + "/AdminLogin"
	AuthRequestCodeProcedure       = "/" + AuthServiceName + "/RequestCode"
	AuthVerifyCodeProcedure        = "/" + AuthServiceName + "/VerifyCode"
	AuthRegisterHouseholdProcedure = "/" + AuthServiceName + "/RegisterHousehold"

	HouseholdListProcedure             = "/" + HouseholdServiceName + "/ListHouseholds"
	HouseholdGetMineProcedure          = "/" + HouseholdServiceName + "/GetMyHousehold"
	HouseholdListRouteProcedure        = "/" + HouseholdServiceName + "/ListRouteHouseholds"
	HouseholdCreateProcedure           = "/" + HouseholdServiceName + "/CreateHousehold"
	HouseholdUpdateProcedure           = "/" + HouseholdServiceName + "/UpdateHousehold"
	HouseholdSetPaymentStatusProcedure = "/" + HouseholdServiceName + "/SetPaymentStatus"
	HouseholdSendRemindersProcedure    = "/" + HouseholdServiceName + "/SendReminders"

	StaffListDriversProcedure = "/" + StaffServiceName + "/ListDrivers"
	StaffListHelpersProcedure = "/" + StaffServiceName + "/ListHelpers"
	StaffCreateProcedure      = "/" + StaffServiceName + "/CreateStaff"
	StaffUpdateProcedure      = "/" + StaffServiceName + "/UpdateStaff"

	ReportGetMetricsProcedure = "/" + ReportServiceName + "/GetMetrics"
)

// Codec is a Connect codec named "json". Protobuf messages go through
// protojson, everything else through encoding/json.
type Codec struct{}

// Name implements connect.Codec.
func (Codec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (Codec) Marshal(msg any) ([]byte, error) {
	if m, ok := msg.(proto.Message); ok {
		return protojson.Marshal(m)
	}
	return json.Marshal(msg)
}

// Unmarshal implements connect.Codec. An empty body leaves msg at its zero value.
func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if m, ok := msg.(proto.Message); ok {
		return protojson.UnmarshalOptions{DiscardUnknown: true}.Unmarshal(data, m)
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("invalid JSON message: %w", err)
	}
	return nil
}
