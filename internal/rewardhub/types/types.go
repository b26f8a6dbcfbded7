package types

import "github.com/shopspring/decimal"

type Role string

const (
	RoleGuest Role = "guest"
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type View string

const (
	ViewHome           View = "home"
	ViewEarn           View = "earn"
	ViewWallet         View = "wallet"
	ViewAdminDashboard View = "admin_dashboard"
	ViewAdminUsers     View = "admin_users"
	ViewAdminPayouts   View = "admin_payouts"
	ViewAdminTasks     View = "admin_tasks"
)

type WithdrawalStatus string

const (
	WithdrawalPending   WithdrawalStatus = "pending"
	WithdrawalCompleted WithdrawalStatus = "completed"
	WithdrawalFailed    WithdrawalStatus = "failed"
)

type TaskStatus string

const (
	TaskAvailable TaskStatus = "available"
	TaskCompleted TaskStatus = "completed"
)

// WithdrawalRecord is immutable once written to the history except for its
// status, which an admin settles exactly once.
type WithdrawalRecord struct {
	ID      string
	Amount  decimal.Decimal
	Method  string
	Account string
	Date    string
	Status  WithdrawalStatus
}

type PendingWithdrawal struct {
	Amount decimal.Decimal
	Method string
	Date   string
}

type UserProfile struct {
	ID                string
	Username          string
	Balance           decimal.Decimal
	CompletedTasks    int
	CompletedTaskIDs  []string
	Streak            int
	LastCheckIn       string
	ReferralCode      string
	ReferralCount     int
	WithdrawalHistory []WithdrawalRecord
	PendingWithdrawal *PendingWithdrawal
	Role              Role
}

type EarnTask struct {
	ID          string
	Title       string
	Reward      decimal.Decimal
	Icon        string
	Description string
}

type AdCampaign struct {
	ID          string
	SponsorName string
	Reward      decimal.Decimal
	Category    string
	VideoURL    string
	Thumbnail   string
	Description string
}

type AdminLoginRequest struct {
	Key string `json:"key"`
}

type NavigateRequest struct {
	View View `json:"view"`
}

type WithdrawalRequest struct {
	Amount  float64 `json:"amount"`
	Method  string  `json:"method"`
	Account string  `json:"account"`
}

type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Reward      float64 `json:"reward"`
	Icon        string  `json:"icon"`
	Description string  `json:"description"`
}

type UpdateTaskRewardRequest struct {
	Reward float64 `json:"reward"`
}

type SettlePayoutRequest struct {
	Status WithdrawalStatus `json:"status"`
}

// Response models carry money as plain JSON numbers; the internal
// representations stay decimal.

type SessionResponse struct {
	Role  Role   `json:"role"`
	View  View   `json:"view"`
	Token string `json:"token,omitempty"`
}

type ProfileResponse struct {
	ID                string              `json:"id"`
	Username          string              `json:"username"`
	Balance           float64             `json:"balance"`
	CompletedTasks    int                 `json:"completed_tasks"`
	CompletedTaskIDs  []string            `json:"completed_task_ids"`
	Streak            int                 `json:"streak"`
	LastCheckIn       string              `json:"last_check_in,omitempty"`
	ReferralCode      string              `json:"referral_code"`
	ReferralCount     int                 `json:"referral_count"`
	Role              Role                `json:"role"`
	PendingWithdrawal *PendingResponse    `json:"pending_withdrawal,omitempty"`
	History           []WithdrawalSummary `json:"withdrawal_history"`
}

type PendingResponse struct {
	Amount float64 `json:"amount"`
	Method string  `json:"method"`
	Date   string  `json:"date"`
}

type WithdrawalSummary struct {
	ID      string           `json:"id"`
	Amount  float64          `json:"amount"`
	Method  string           `json:"method"`
	Account string           `json:"account"`
	Date    string           `json:"date"`
	Status  WithdrawalStatus `json:"status"`
}

type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Reward      float64    `json:"reward"`
	Icon        string     `json:"icon"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
}

type AdResponse struct {
	ID          string     `json:"id"`
	SponsorName string     `json:"sponsor_name"`
	Reward      float64    `json:"reward"`
	Category    string     `json:"category"`
	VideoURL    string     `json:"video_url"`
	Thumbnail   string     `json:"thumbnail"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
}

type AdminOverview struct {
	ActiveUsers    int     `json:"active_users"`
	TotalBalance   float64 `json:"total_balance"`
	CompletedTasks int     `json:"completed_tasks"`
	PendingPayouts int     `json:"pending_payouts"`
	TotalPaidOut   float64 `json:"total_paid_out"`
}

func (p *UserProfile) ToResponse() ProfileResponse {
	resp := ProfileResponse{
		ID:               p.ID,
		Username:         p.Username,
		Balance:          p.Balance.InexactFloat64(),
		CompletedTasks:   p.CompletedTasks,
		CompletedTaskIDs: p.CompletedTaskIDs,
		Streak:           p.Streak,
		LastCheckIn:      p.LastCheckIn,
		ReferralCode:     p.ReferralCode,
		ReferralCount:    p.ReferralCount,
		Role:             p.Role,
		History:          make([]WithdrawalSummary, 0, len(p.WithdrawalHistory)),
	}
	if p.PendingWithdrawal != nil {
		resp.PendingWithdrawal = &PendingResponse{
			Amount: p.PendingWithdrawal.Amount.InexactFloat64(),
			Method: p.PendingWithdrawal.Method,
			Date:   p.PendingWithdrawal.Date,
		}
	}
	for _, w := range p.WithdrawalHistory {
		resp.History = append(resp.History, w.ToSummary())
	}
	return resp
}

func (w WithdrawalRecord) ToSummary() WithdrawalSummary {
	return WithdrawalSummary{
		ID:      w.ID,
		Amount:  w.Amount.InexactFloat64(),
		Method:  w.Method,
		Account: w.Account,
		Date:    w.Date,
		Status:  w.Status,
	}
}
