package service

import (
	"github.com/mmynk/wasteline/internal/models"
	"github.com/mmynk/wasteline/pkg/api"
)

func toAPIHousehold(h models.Household) api.Household {
	history := make([]api.Payment, len(h.PaymentHistory))
	for i, p := range h.PaymentHistory {
		history[i] = api.Payment{ID: p.ID, Date: p.Date, Amount: p.Amount, Month: p.Month}
	}
	return api.Household{
		ID:                 h.ID,
		Name:               h.Name,
		Address:            h.Address,
		Phone:              h.Phone,
		PaymentHistory:     history,
		LastCollectionDate: h.LastCollectionDate,
		Status:             string(h.Status),
		AssignedRoute:      h.AssignedRoute,
		Version:            h.Version,
	}
}

func toAPIHouseholds(households []models.Household) []api.Household {
	out := make([]api.Household, len(households))
	for i, h := range households {
		out[i] = toAPIHousehold(h)
	}
	return out
}

func fromAPIHousehold(h api.Household) models.Household {
	history := make([]models.Payment, len(h.PaymentHistory))
	for i, p := range h.PaymentHistory {
		history[i] = models.Payment{ID: p.ID, Date: p.Date, Amount: p.Amount, Month: p.Month}
	}
	return models.Household{
		ID:                 h.ID,
		Name:               h.Name,
		Address:            h.Address,
		Phone:              h.Phone,
		PaymentHistory:     history,
		LastCollectionDate: h.LastCollectionDate,
		Status:             models.PaymentStatus(h.Status),
		AssignedRoute:      h.AssignedRoute,
		Version:            h.Version,
	}
}

func toAPIStaff(s models.Staff) api.Staff {
	return api.Staff{
		ID:             s.ID,
		Role:           string(s.Role),
		Name:           s.Name,
		Phone:          s.Phone,
		Salary:         s.Salary,
		AssignedRoute:  s.AssignedRoute,
		VehicleDetails: s.VehicleDetails,
		Version:        s.Version,
	}
}

func toAPIStaffList(members []models.Staff) []api.Staff {
	out := make([]api.Staff, len(members))
	for i, s := range members {
		out[i] = toAPIStaff(s)
	}
	return out
}

func fromAPIStaff(s api.Staff) models.Staff {
	return models.Staff{
		ID:             s.ID,
		Role:           models.StaffRole(s.Role),
		Name:           s.Name,
		Phone:          s.Phone,
		Salary:         s.Salary,
		AssignedRoute:  s.AssignedRoute,
		VehicleDetails: s.VehicleDetails,
		Version:        s.Version,
	}
}
