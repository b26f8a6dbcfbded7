package controller

import (
	"time"

	"github.com/earningbd/rewardhub/internal/rewardhub/identity"
	"github.com/earningbd/rewardhub/internal/rewardhub/session"
	"github.com/earningbd/rewardhub/internal/rewardhub/tasks"
	"github.com/earningbd/rewardhub/internal/rewardhub/types"
	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const tokenLifetime = 72 * time.Hour

type profileStore interface {
	Snapshot() types.UserProfile
	Reset(id, username string)
	HasCompleted(taskID string) bool
	Reward(amount decimal.Decimal, taskID string) (decimal.Decimal, error)
	AddReferral(reward decimal.Decimal) (decimal.Decimal, error)
	RequestWithdrawal(amount decimal.Decimal, method, account string) (*types.WithdrawalRecord, error)
	ClearPendingWithdrawal()
	SettleWithdrawal(id string, status types.WithdrawalStatus) (*types.WithdrawalRecord, error)
}

type taskCatalog interface {
	Tasks() []types.EarnTask
	Task(id string) (*types.EarnTask, error)
	CreateTask(title string, reward decimal.Decimal, icon, description string) (*types.EarnTask, error)
	UpdateTaskReward(id string, reward decimal.Decimal) error
	Ads() []types.AdCampaign
	Ad(id string) (*types.AdCampaign, error)
}

// Controller is the single owner of application state. Views observe it
// through snapshots; every mutation enters through one of its commands, and
// role checks happen here, before dispatch, not in whatever surface renders.
type Controller struct {
	profile        profileStore
	tasks          taskCatalog
	session        *session.Machine
	resolver       *identity.Resolver
	jwtSecret      []byte
	referralReward decimal.Decimal
	logger         *zap.Logger
}

func NewController(p profileStore, t taskCatalog, m *session.Machine, r *identity.Resolver, jwtSecret []byte, referralReward int64, logger *zap.Logger) *Controller {
	return &Controller{
		profile:        p,
		tasks:          t,
		session:        m,
		resolver:       r,
		jwtSecret:      jwtSecret,
		referralReward: decimal.NewFromInt(referralReward),
		logger:         logger,
	}
}

// State returns the current role and view.
func (c *Controller) State() (types.Role, types.View) {
	return c.session.State()
}

// EnterPortal switches a guest into the user portal and mints a user token.
func (c *Controller) EnterPortal() (string, error) {
	if err := c.session.EnterPortal(); err != nil {
		return "", err
	}
	return c.createToken(types.RoleUser)
}

// AdminLogin verifies the shared admin key and mints an admin token.
func (c *Controller) AdminLogin(key string) (string, error) {
	if err := c.session.AdminLogin(key); err != nil {
		return "", err
	}
	return c.createToken(types.RoleAdmin)
}

// Logout returns to the guest gate and discards all session-scoped earning
// state. The device identity survives, so the reseeded profile keeps its id.
func (c *Controller) Logout() error {
	c.session.Logout()
	id, err := c.resolver.ResolveUserID()
	if err != nil {
		return errors.Wrap(err, "resolver.ResolveUserID failed: ")
	}
	c.profile.Reset(id, c.resolver.ResolveUsername())
	return nil
}

// Navigate changes the current view within the role's permitted set.
func (c *Controller) Navigate(view types.View) error {
	return c.session.Navigate(view)
}

// Authorize checks that a token's role and session id still match the live
// session. Tokens from before a logout or role change stop authorizing.
func (c *Controller) Authorize(role types.Role, sessionID string) error {
	if !c.session.Matches(role, sessionID) {
		return session.ErrNotPermitted
	}
	return nil
}

// Profile returns a read-only snapshot for the dashboard and wallet views.
func (c *Controller) Profile() (types.UserProfile, error) {
	if err := c.requireRole(types.RoleUser); err != nil {
		return types.UserProfile{}, err
	}
	return c.profile.Snapshot(), nil
}

// EarnTasks lists the catalog with per-profile completion status.
func (c *Controller) EarnTasks() ([]types.TaskResponse, error) {
	if err := c.requireRole(types.RoleUser); err != nil {
		return nil, err
	}
	tasks := c.tasks.Tasks()
	out := make([]types.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		status := types.TaskAvailable
		if c.profile.HasCompleted(t.ID) {
			status = types.TaskCompleted
		}
		out = append(out, types.TaskResponse{
			ID:          t.ID,
			Title:       t.Title,
			Reward:      t.Reward.InexactFloat64(),
			Icon:        t.Icon,
			Description: t.Description,
			Status:      status,
		})
	}
	return out, nil
}

// EarnAds lists sponsored campaigns with per-profile watch status.
func (c *Controller) EarnAds() ([]types.AdResponse, error) {
	if err := c.requireRole(types.RoleUser); err != nil {
		return nil, err
	}
	ads := c.tasks.Ads()
	out := make([]types.AdResponse, 0, len(ads))
	for _, a := range ads {
		status := types.TaskAvailable
		if c.profile.HasCompleted(tasks.AdTaskID(a.ID)) {
			status = types.TaskCompleted
		}
		out = append(out, types.AdResponse{
			ID:          a.ID,
			SponsorName: a.SponsorName,
			Reward:      a.Reward.InexactFloat64(),
			Category:    a.Category,
			VideoURL:    a.VideoURL,
			Thumbnail:   a.Thumbnail,
			Description: a.Description,
			Status:      status,
		})
	}
	return out, nil
}

// CompleteTask rewards the task's amount once. Returns the new balance.
func (c *Controller) CompleteTask(taskID string) (decimal.Decimal, error) {
	if err := c.requireRole(types.RoleUser); err != nil {
		return decimal.Zero, err
	}
	task, err := c.tasks.Task(taskID)
	if err != nil {
		return decimal.Zero, err
	}
	return c.profile.Reward(task.Reward, task.ID)
}

// WatchAd rewards an ad view once per campaign.
func (c *Controller) WatchAd(adID string) (decimal.Decimal, error) {
	if err := c.requireRole(types.RoleUser); err != nil {
		return decimal.Zero, err
	}
	ad, err := c.tasks.Ad(adID)
	if err != nil {
		return decimal.Zero, err
	}
	return c.profile.Reward(ad.Reward, tasks.AdTaskID(ad.ID))
}

// AddReferral credits the flat referral reward and bumps the counter.
func (c *Controller) AddReferral() (decimal.Decimal, error) {
	if err := c.requireRole(types.RoleUser); err != nil {
		return decimal.Zero, err
	}
	return c.profile.AddReferral(c.referralReward)
}

// Withdraw places a validated withdrawal request.
func (c *Controller) Withdraw(amount decimal.Decimal, method, account string) (*types.WithdrawalRecord, error) {
	if err := c.requireRole(types.RoleUser); err != nil {
		return nil, err
	}
	return c.profile.RequestWithdrawal(amount, method, account)
}

// ClearPending dismisses the pending-withdrawal summary.
func (c *Controller) ClearPending() error {
	if err := c.requireRole(types.RoleUser); err != nil {
		return err
	}
	c.profile.ClearPendingWithdrawal()
	return nil
}

// Overview aggregates the numbers for the admin dashboard.
func (c *Controller) Overview() (*types.AdminOverview, error) {
	if err := c.requireRole(types.RoleAdmin); err != nil {
		return nil, err
	}
	user := c.profile.Snapshot()
	pending := 0
	paidOut := decimal.Zero
	for _, w := range user.WithdrawalHistory {
		switch w.Status {
		case types.WithdrawalPending:
			pending++
		case types.WithdrawalCompleted:
			paidOut = paidOut.Add(w.Amount)
		}
	}
	return &types.AdminOverview{
		ActiveUsers:    1,
		TotalBalance:   user.Balance.InexactFloat64(),
		CompletedTasks: user.CompletedTasks,
		PendingPayouts: pending,
		TotalPaidOut:   paidOut.InexactFloat64(),
	}, nil
}

// Users lists every profile this process hosts. One session means one entry.
func (c *Controller) Users() ([]types.ProfileResponse, error) {
	if err := c.requireRole(types.RoleAdmin); err != nil {
		return nil, err
	}
	user := c.profile.Snapshot()
	return []types.ProfileResponse{user.ToResponse()}, nil
}

// Payouts lists every withdrawal on record, newest first.
func (c *Controller) Payouts() ([]types.WithdrawalSummary, error) {
	if err := c.requireRole(types.RoleAdmin); err != nil {
		return nil, err
	}
	user := c.profile.Snapshot()
	out := make([]types.WithdrawalSummary, 0, len(user.WithdrawalHistory))
	for _, w := range user.WithdrawalHistory {
		out = append(out, w.ToSummary())
	}
	return out, nil
}

// SettlePayout resolves a pending withdrawal as completed or failed.
func (c *Controller) SettlePayout(id string, status types.WithdrawalStatus) (*types.WithdrawalRecord, error) {
	if err := c.requireRole(types.RoleAdmin); err != nil {
		return nil, err
	}
	return c.profile.SettleWithdrawal(id, status)
}

// AdminTasks lists the raw catalog for the task management view.
func (c *Controller) AdminTasks() ([]types.TaskResponse, error) {
	if err := c.requireRole(types.RoleAdmin); err != nil {
		return nil, err
	}
	tasks := c.tasks.Tasks()
	out := make([]types.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, types.TaskResponse{
			ID:          t.ID,
			Title:       t.Title,
			Reward:      t.Reward.InexactFloat64(),
			Icon:        t.Icon,
			Description: t.Description,
			Status:      types.TaskAvailable,
		})
	}
	return out, nil
}

// CreateTask adds an earn task to the catalog.
func (c *Controller) CreateTask(title string, reward decimal.Decimal, icon, description string) (*types.EarnTask, error) {
	if err := c.requireRole(types.RoleAdmin); err != nil {
		return nil, err
	}
	return c.tasks.CreateTask(title, reward, icon, description)
}

// UpdateTaskReward changes a task's payout.
func (c *Controller) UpdateTaskReward(id string, reward decimal.Decimal) error {
	if err := c.requireRole(types.RoleAdmin); err != nil {
		return err
	}
	return c.tasks.UpdateTaskReward(id, reward)
}

func (c *Controller) requireRole(role types.Role) error {
	if c.session.Role() != role {
		return session.ErrNotPermitted
	}
	return nil
}

func (c *Controller) createToken(role types.Role) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["role"] = string(role)
	claims["sid"] = c.session.ID().String()
	claims["exp"] = time.Now().Add(tokenLifetime).Unix()

	signed, err := token.SignedString(c.jwtSecret)
	if err != nil {
		return "", errors.Wrap(err, "token.SignedString failed: ")
	}
	return signed, nil
}
