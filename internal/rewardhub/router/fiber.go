package router

import (
	"net/http"

	"github.com/earningbd/rewardhub/internal/rewardhub/config"
	"github.com/earningbd/rewardhub/internal/rewardhub/profile"
	"github.com/earningbd/rewardhub/internal/rewardhub/router/middleware"
	"github.com/earningbd/rewardhub/internal/rewardhub/session"
	"github.com/earningbd/rewardhub/internal/rewardhub/tasks"
	"github.com/earningbd/rewardhub/internal/rewardhub/types"
	"github.com/go-faster/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type controller interface {
	State() (types.Role, types.View)
	EnterPortal() (string, error)
	AdminLogin(key string) (string, error)
	Logout() error
	Navigate(view types.View) error
	Authorize(role types.Role, sessionID string) error
	Profile() (types.UserProfile, error)
	EarnTasks() ([]types.TaskResponse, error)
	EarnAds() ([]types.AdResponse, error)
	CompleteTask(taskID string) (decimal.Decimal, error)
	WatchAd(adID string) (decimal.Decimal, error)
	AddReferral() (decimal.Decimal, error)
	Withdraw(amount decimal.Decimal, method, account string) (*types.WithdrawalRecord, error)
	ClearPending() error
	Overview() (*types.AdminOverview, error)
	Users() ([]types.ProfileResponse, error)
	Payouts() ([]types.WithdrawalSummary, error)
	SettlePayout(id string, status types.WithdrawalStatus) (*types.WithdrawalRecord, error)
	AdminTasks() ([]types.TaskResponse, error)
	CreateTask(title string, reward decimal.Decimal, icon, description string) (*types.EarnTask, error)
	UpdateTaskReward(id string, reward decimal.Decimal) error
}

type HttpRouter struct {
	controller controller
	*fiber.App
	appLogger *zap.Logger
	httpPort  string
}

const internalServerErrorMessage = "Something went wrong on the server"
const badRequestMessage = "The request is malformed or contains an error"

func (r *HttpRouter) Run() error {
	return r.App.Listen(":" + r.httpPort)
}

func (r *HttpRouter) Close() error {
	return r.App.Shutdown()
}

// GetSession reports the current role and view, the state the mini app
// renders from.
func (r *HttpRouter) GetSession(ctx *fiber.Ctx) error {
	role, view := r.controller.State()
	return ctx.JSON(types.SessionResponse{Role: role, View: view})
}

// EnterPortal is the guest gate's "Portal Access" button.
func (r *HttpRouter) EnterPortal(ctx *fiber.Ctx) error {
	token, err := r.controller.EnterPortal()
	if errors.Is(err, session.ErrNotPermitted) {
		ctx.Status(http.StatusConflict)
		return ctx.JSON(fiber.Map{"status": "error", "message": "Already inside the portal, log out first"})
	}
	if err != nil {
		r.appLogger.Error("controller.EnterPortal failed: ", zap.Error(err))
		ctx.Status(http.StatusInternalServerError)
		return ctx.JSON(fiber.Map{"status": "error", "message": internalServerErrorMessage})
	}
	role, view := r.controller.State()
	return ctx.JSON(types.SessionResponse{Role: role, View: view, Token: token})
}

// AdminLogin is the guest gate's admin key form. A wrong key is a recoverable
// validation error, not a blocking one.
func (r *HttpRouter) AdminLogin(ctx *fiber.Ctx) error {
	request := &types.AdminLoginRequest{}
	err := ctx.BodyParser(request)
	if err != nil {
		r.appLogger.Error("ctx.BodyParser failed: ", zap.Error(err))
		ctx.Status(http.StatusBadRequest)
		return ctx.JSON(fiber.Map{"status": "error", "message": badRequestMessage})
	}
	if request.Key == "" {
		ctx.Status(http.StatusBadRequest)
		return ctx.JSON(fiber.Map{"status": "error", "message": "Admin key is required"})
	}
	token, err := r.controller.AdminLogin(request.Key)
	if errors.Is(err, session.ErrBadCredential) {
		ctx.Status(http.StatusUnauthorized)
		return ctx.JSON(fiber.Map{"status": "error", "message": "Wrong key"})
	}
	if errors.Is(err, session.ErrNotPermitted) {
		ctx.Status(http.StatusConflict)
		return ctx.JSON(fiber.Map{"status": "error", "message": "Already signed in, log out first"})
	}
	if err != nil {
		r.appLogger.Error("controller.AdminLogin failed: ", zap.Error(err))
		ctx.Status(http.StatusInternalServerError)
		return ctx.JSON(fiber.Map{"status": "error", "message": internalServerErrorMessage})
	}
	role, view := r.controller.State()
	return ctx.JSON(types.SessionResponse{Role: role, View: view, Token: token})
}

// Logout drops any role back to the guest gate and resets the profile.
func (r *HttpRouter) Logout(ctx *fiber.Ctx) error {
	if err := r.controller.Logout(); err != nil {
		r.appLogger.Error("controller.Logout failed: ", zap.Error(err))
		ctx.Status(http.StatusInternalServerError)
		return ctx.JSON(fiber.Map{"status": "error", "message": internalServerErrorMessage})
	}
	role, view := r.controller.State()
	return ctx.JSON(types.SessionResponse{Role: role, View: view})
}

// Navigate switches the current view within the role's permitted set.
func (r *HttpRouter) Navigate(ctx *fiber.Ctx) error {
	request := &types.NavigateRequest{}
	err := ctx.BodyParser(request)
	if err != nil {
		r.appLogger.Error("ctx.BodyParser failed: ", zap.Error(err))
		ctx.Status(http.StatusBadRequest)
		return ctx.JSON(fiber.Map{"status": "error", "message": badRequestMessage})
	}
	if request.View == "" {
		ctx.Status(http.StatusBadRequest)
		return ctx.JSON(fiber.Map{"status": "error", "message": "A target view is required"})
	}
	err = r.controller.Navigate(request.View)
	if errors.Is(err, session.ErrViewNotAllowed) {
		ctx.Status(http.StatusForbidden)
		return ctx.JSON(fiber.Map{"status": "error", "message": "This view is not available for your role"})
	}
	if err != nil {
		r.appLogger.Error("controller.Navigate failed: ", zap.Error(err))
		ctx.Status(http.StatusInternalServerError)
		return ctx.JSON(fiber.Map{"status": "error", "message": internalServerErrorMessage})
	}
	role, view := r.controller.State()
	return ctx.JSON(types.SessionResponse{Role: role, View: view})
}

// GetProfile backs the dashboard and wallet views.
func (r *HttpRouter) GetProfile(ctx *fiber.Ctx) error {
	user, err := r.controller.Profile()
	if err != nil {
		return r.permissionError(ctx, err, "controller.Profile")
	}
	return ctx.JSON(user.ToResponse())
}

// GetEarnTasks lists the earn view's task catalog.
func (r *HttpRouter) GetEarnTasks(ctx *fiber.Ctx) error {
	list, err := r.controller.EarnTasks()
	if err != nil {
		return r.permissionError(ctx, err, "controller.EarnTasks")
	}
	return ctx.JSON(list)
}

// GetEarnAds lists the earn view's sponsored campaigns.
func (r *HttpRouter) GetEarnAds(ctx *fiber.Ctx) error {
	list, err := r.controller.EarnAds()
	if err != nil {
		return r.permissionError(ctx, err, "controller.EarnAds")
	}
	return ctx.JSON(list)
}

// CompleteTask credits a task's reward once.
func (r *HttpRouter) CompleteTask(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	if id == "" {
		ctx.Status(http.StatusBadRequest)
		return ctx.JSON(fiber.Map{"status": "error", "message": "A task id is required"})
	}
	balance, err := r.controller.CompleteTask(id)
	if errors.Is(err, tasks.ErrTaskNotFound) {
		ctx.Status(http.StatusNotFound)
		return ctx.JSON(fiber.Map{"status": "error", "message": "No task with this id"})
	}
	if errors.Is(err, profile.ErrTaskAlreadyCompleted) {
		ctx.Status(http.StatusConflict)
		return ctx.JSON(fiber.Map{"status": "error", "message": "This task is already completed"})
	}
	if err != nil {
		return r.permissionError(ctx, err, "controller.CompleteTask")
	}
	return ctx.JSON(fiber.Map{"status": "success", "balance": balance.InexactFloat64()})
}

// WatchAd credits a campaign's reward once per campaign.
func (r *HttpRouter) WatchAd(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	if id == "" {
		ctx.Status(http.StatusBadRequest)
		return ctx.JSON(fiber.Map{"status": "error", "message": "An ad id is required"})
	}
	balance, err := r.controller.WatchAd(id)
	if errors.Is(err, tasks.ErrAdNotFound) {
		ctx.Status(http.StatusNotFound)
		return ctx.JSON(fiber.Map{"status": "error", "message": "No ad campaign with this id"})
	}
	if errors.Is(err, profile.ErrTaskAlreadyCompleted) {
		ctx.Status(http.StatusConflict)
		return ctx.JSON(fiber.Map{"status": "error", "message": "This ad is already watched"})
	}
	if err != nil {
		return r.permissionError(ctx, err, "controller.WatchAd")
	}
	return ctx.JSON(fiber.Map{"status": "success", "balance": balance.InexactFloat64()})
}

// AddReferral is the earn view's referral-added callback.
func (r *HttpRouter) AddReferral(ctx *fiber.Ctx) error {
	balance, err := r.controller.AddReferral()
	if err != nil {
		return r.permissionError(ctx, err, "controller.AddReferral")
	}
	return ctx.JSON(fiber.Map{"status": "success", "balance": balance.InexactFloat64()})
}

// RequestWithdrawal places a withdrawal request from the wallet view.
func (r *HttpRouter) RequestWithdrawal(ctx *fiber.Ctx) error {
	request := &types.WithdrawalRequest{}
	err := ctx.BodyParser(request)
	if err != nil {
		r.appLogger.Error("ctx.BodyParser failed: ", zap.Error(err))
		ctx.Status(http.StatusBadRequest)
		return ctx.JSON(fiber.Map{"status": "error", "message": badRequestMessage})
	}
	if request.Method == "" || request.Account == "" {
		ctx.Status(http.StatusBadRequest)
		return ctx.JSON(fiber.Map{"status": "error", "message": "A payout method and account are required"})
	}
	record, err := r.controller.Withdraw(decimal.NewFromFloat(request.Amount), request.Method, request.Account)
	if errors.Is(err, profile.ErrInvalidWithdrawalAmount) {
		ctx.Status(http.StatusBadRequest)
		return ctx.JSON(fiber.Map{"status": "error", "message": "The withdrawal amount must be positive"})
	}
	if errors.Is(err, profile.ErrInsufficientFunds) {
		ctx.Status(http.StatusBadRequest)
		return ctx.JSON(fiber.Map{"status": "error", "message": "Not enough balance for this withdrawal"})
	}
	if errors.Is(err, profile.ErrWithdrawalPending) {
		ctx.Status(http.StatusConflict)
		return ctx.JSON(fiber.Map{"status": "error", "message": "Another withdrawal is still pending"})
	}
	if err != nil {
		return r.permissionError(ctx, err, "controller.Withdraw")
	}
	ctx.Status(http.StatusCreated)
	return ctx.JSON(record.ToSummary())
}

// ClearPending dismisses the wallet's pending-withdrawal banner.
func (r *HttpRouter) ClearPending(ctx *fiber.Ctx) error {
	if err := r.controller.ClearPending(); err != nil {
		return r.permissionError(ctx, err, "controller.ClearPending")
	}
	return ctx.JSON(fiber.Map{"status": "success"})
}

// GetOverview backs the admin dashboard view.
func (r *HttpRouter) GetOverview(ctx *fiber.Ctx) error {
	overview, err := r.controller.Overview()
	if err != nil {
		return r.permissionError(ctx, err, "controller.Overview")
	}
	return ctx.JSON(overview)
}

// GetUsers backs the admin users view.
func (r *HttpRouter) GetUsers(ctx *fiber.Ctx) error {
	users, err := r.controller.Users()
	if err != nil {
		return r.permissionError(ctx, err, "controller.Users")
	}
	return ctx.JSON(users)
}

// GetPayouts backs the admin payouts view.
func (r *HttpRouter) GetPayouts(ctx *fiber.Ctx) error {
	payouts, err := r.controller.Payouts()
	if err != nil {
		return r.permissionError(ctx, err, "controller.Payouts")
	}
	return ctx.JSON(payouts)
}

// SettlePayout resolves a pending payout as completed or failed.
func (r *HttpRouter) SettlePayout(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	if id == "" {
		ctx.Status(http.StatusBadRequest)
		return ctx.JSON(fiber.Map{"status": "error", "message": "A payout id is required"})
	}
	request := &types.SettlePayoutRequest{}
	err := ctx.BodyParser(request)
	if err != nil {
		r.appLogger.Error("ctx.BodyParser failed: ", zap.Error(err))
		ctx.Status(http.StatusBadRequest)
		return ctx.JSON(fiber.Map{"status": "error", "message": badRequestMessage})
	}
	record, err := r.controller.SettlePayout(id, request.Status)
	if errors.Is(err, profile.ErrInvalidSettleStatus) {
		ctx.Status(http.StatusBadRequest)
		return ctx.JSON(fiber.Map{"status": "error", "message": "Settle status must be completed or failed"})
	}
	if errors.Is(err, profile.ErrWithdrawalNotFound) {
		ctx.Status(http.StatusNotFound)
		return ctx.JSON(fiber.Map{"status": "error", "message": "No payout with this id"})
	}
	if errors.Is(err, profile.ErrWithdrawalSettled) {
		ctx.Status(http.StatusConflict)
		return ctx.JSON(fiber.Map{"status": "error", "message": "This payout is already settled"})
	}
	if err != nil {
		return r.permissionError(ctx, err, "controller.SettlePayout")
	}
	return ctx.JSON(record.ToSummary())
}

// GetAdminTasks backs the admin tasks view.
func (r *HttpRouter) GetAdminTasks(ctx *fiber.Ctx) error {
	list, err := r.controller.AdminTasks()
	if err != nil {
		return r.permissionError(ctx, err, "controller.AdminTasks")
	}
	return ctx.JSON(list)
}

// CreateTask adds a new earn task to the catalog.
func (r *HttpRouter) CreateTask(ctx *fiber.Ctx) error {
	request := &types.CreateTaskRequest{}
	err := ctx.BodyParser(request)
	if err != nil {
		r.appLogger.Error("ctx.BodyParser failed: ", zap.Error(err))
		ctx.Status(http.StatusBadRequest)
		return ctx.JSON(fiber.Map{"status": "error", "message": badRequestMessage})
	}
	if request.Title == "" || request.Reward == 0 {
		ctx.Status(http.StatusBadRequest)
		return ctx.JSON(fiber.Map{"status": "error", "message": "A task needs a title and a reward"})
	}
	task, err := r.controller.CreateTask(request.Title, decimal.NewFromFloat(request.Reward), request.Icon, request.Description)
	if errors.Is(err, tasks.ErrTaskExists) {
		ctx.Status(http.StatusConflict)
		return ctx.JSON(fiber.Map{"status": "error", "message": "A task with this title already exists"})
	}
	if errors.Is(err, tasks.ErrInvalidReward) {
		ctx.Status(http.StatusBadRequest)
		return ctx.JSON(fiber.Map{"status": "error", "message": "The task reward must be positive"})
	}
	if err != nil {
		return r.permissionError(ctx, err, "controller.CreateTask")
	}
	ctx.Status(http.StatusCreated)
	return ctx.JSON(fiber.Map{"status": "success", "id": task.ID})
}

// UpdateTaskReward changes a task's payout.
func (r *HttpRouter) UpdateTaskReward(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	if id == "" {
		ctx.Status(http.StatusBadRequest)
		return ctx.JSON(fiber.Map{"status": "error", "message": "A task id is required"})
	}
	request := &types.UpdateTaskRewardRequest{}
	err := ctx.BodyParser(request)
	if err != nil {
		r.appLogger.Error("ctx.BodyParser failed: ", zap.Error(err))
		ctx.Status(http.StatusBadRequest)
		return ctx.JSON(fiber.Map{"status": "error", "message": badRequestMessage})
	}
	if request.Reward == 0 {
		ctx.Status(http.StatusBadRequest)
		return ctx.JSON(fiber.Map{"status": "error", "message": "The task reward must be positive"})
	}
	err = r.controller.UpdateTaskReward(id, decimal.NewFromFloat(request.Reward))
	if errors.Is(err, tasks.ErrTaskNotFound) {
		ctx.Status(http.StatusNotFound)
		return ctx.JSON(fiber.Map{"status": "error", "message": "No task with this id"})
	}
	if errors.Is(err, tasks.ErrInvalidReward) {
		ctx.Status(http.StatusBadRequest)
		return ctx.JSON(fiber.Map{"status": "error", "message": "The task reward must be positive"})
	}
	if err != nil {
		return r.permissionError(ctx, err, "controller.UpdateTaskReward")
	}
	return ctx.JSON(fiber.Map{"status": "success"})
}

func (r *HttpRouter) permissionError(ctx *fiber.Ctx, err error, op string) error {
	if errors.Is(err, session.ErrNotPermitted) {
		ctx.Status(http.StatusForbidden)
		return ctx.JSON(fiber.Map{"status": "error", "message": "This operation is not permitted for your role"})
	}
	r.appLogger.Error(op+" failed: ", zap.Error(err))
	ctx.Status(http.StatusInternalServerError)
	return ctx.JSON(fiber.Map{"status": "error", "message": internalServerErrorMessage})
}

func CreateRouter(c controller, cfg *config.Config, logger *zap.Logger) *HttpRouter {
	appLogger := logger.Named("app")
	app := fiber.New()
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))

	r := &HttpRouter{controller: c, App: app, appLogger: appLogger, httpPort: cfg.HTTPPort}
	secret := []byte(cfg.JWTSecret)

	api := r.Group("/api/v1")
	api.Get("/session", r.GetSession)
	api.Post("/session/portal", r.EnterPortal)
	api.Post("/session/admin", r.AdminLogin)
	api.Post("/session/logout", r.Logout)

	user := api.Group("/app", middleware.Protected(secret), middleware.SessionGuard(c, types.RoleUser))
	user.Post("/navigate", r.Navigate)
	user.Get("/profile", r.GetProfile)
	user.Get("/earn/tasks", r.GetEarnTasks)
	user.Post("/earn/tasks/:id/complete", r.CompleteTask)
	user.Get("/earn/ads", r.GetEarnAds)
	user.Post("/earn/ads/:id/watch", r.WatchAd)
	user.Post("/earn/referral", r.AddReferral)
	user.Post("/wallet/withdrawals", r.RequestWithdrawal)
	user.Delete("/wallet/pending", r.ClearPending)

	admin := api.Group("/admin", middleware.Protected(secret), middleware.SessionGuard(c, types.RoleAdmin))
	admin.Post("/navigate", r.Navigate)
	admin.Get("/overview", r.GetOverview)
	admin.Get("/users", r.GetUsers)
	admin.Get("/payouts", r.GetPayouts)
	admin.Post("/payouts/:id/settle", r.SettlePayout)
	admin.Get("/tasks", r.GetAdminTasks)
	admin.Post("/tasks", r.CreateTask)
	admin.Post("/tasks/:id/reward", r.UpdateTaskReward)

	return r
}
