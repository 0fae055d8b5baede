package web

import (
	"time"

	"github.com/shopspring/decimal"

	"gymdesk/internal/domain/attendance"
	"gymdesk/internal/domain/dateutil"
	"gymdesk/internal/domain/member"
	"gymdesk/internal/domain/membership"
	"gymdesk/internal/domain/payment"
	"gymdesk/internal/domain/staff"
)

// Wire shapes. Civil dates are YYYY-MM-DD strings, money is a decimal string,
// and the kiosk PIN hash never leaves the server.

type memberView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Status      string    `json:"status"`
	HasKioskPIN bool      `json:"has_kiosk_pin"`
	CreatedAt   time.Time `json:"created_at"`
}

func newMemberView(m member.Member) memberView {
	return memberView{
		ID:          m.ID,
		Name:        m.Name,
		Email:       m.Email,
		Phone:       m.Phone,
		Status:      m.Status,
		HasKioskPIN: m.PINHash != "",
		CreatedAt:   m.CreatedAt,
	}
}

type staffView struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	Status        string `json:"status"`
	JoiningDate   string `json:"joining_date"`
	MonthlySalary int64  `json:"monthly_salary"`
}

func newStaffView(s staff.Staff) staffView {
	return staffView{
		ID:            s.ID,
		Name:          s.Name,
		Email:         s.Email,
		Role:          s.Role,
		Status:        s.Status,
		JoiningDate:   dateutil.Format(s.JoiningDate),
		MonthlySalary: s.MonthlySalary,
	}
}

type membershipView struct {
	ID        string          `json:"id"`
	MemberID  string          `json:"member_id"`
	PlanName  string          `json:"plan_name"`
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	Status    string          `json:"status"`
	Price     decimal.Decimal `json:"price"`
}

func newMembershipView(m membership.Membership) membershipView {
	return membershipView{
		ID:        m.ID,
		MemberID:  m.MemberID,
		PlanName:  m.PlanName,
		StartDate: dateutil.Format(m.StartDate),
		EndDate:   dateutil.Format(m.EndDate),
		Status:    m.Status,
		Price:     m.Price,
	}
}

type paymentView struct {
	ID            string          `json:"id"`
	MemberID      string          `json:"member_id"`
	MembershipID  string          `json:"membership_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   string          `json:"payment_date"`
	Method        string          `json:"method"`
	InvoiceNumber string          `json:"invoice_number"`
}

func newPaymentView(p payment.Payment) paymentView {
	return paymentView{
		ID:            p.ID,
		MemberID:      p.MemberID,
		MembershipID:  p.MembershipID,
		Amount:        p.Amount,
		PaymentDate:   dateutil.Format(p.PaymentDate),
		Method:        p.Method,
		InvoiceNumber: p.InvoiceNumber,
	}
}

type dailyRecordView struct {
	ID       string `json:"id"`
	MemberID string `json:"member_id"`
	Date     string `json:"date"`
	Status   string `json:"status"`
	Source   string `json:"source"`
	Notes    string `json:"notes,omitempty"`
}

type staffRecordView struct {
	ID          string  `json:"id"`
	StaffID     string  `json:"staff_id"`
	Date        string  `json:"date"`
	Status      string  `json:"status"`
	InTime      string  `json:"in_time,omitempty"`
	OutTime     string  `json:"out_time,omitempty"`
	HoursWorked float64 `json:"hours_worked"`
	Source      string  `json:"source"`
	Notes       string  `json:"notes,omitempty"`
}

func newStaffRecordView(r attendance.StaffRecord) staffRecordView {
	return staffRecordView{
		ID:          r.ID,
		StaffID:     r.StaffID,
		Date:        dateutil.Format(r.Date),
		Status:      r.Status,
		InTime:      r.InTime,
		OutTime:     r.OutTime,
		HoursWorked: r.HoursWorked,
		Source:      r.Source,
		Notes:       r.Notes,
	}
}

type sessionView struct {
	ID           string    `json:"id"`
	MemberID     string    `json:"member_id"`
	CheckInTime  time.Time `json:"check_in_time"`
	CheckOutTime time.Time `json:"check_out_time,omitzero"`
}

func newSessionView(s attendance.Session) sessionView {
	return sessionView{ID: s.ID, MemberID: s.MemberID, CheckInTime: s.CheckInTime, CheckOutTime: s.CheckOutTime}
}
