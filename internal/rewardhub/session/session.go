package session

import (
	"sync"

	"github.com/earningbd/rewardhub/internal/rewardhub/types"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrBadCredential  = errors.New("wrong admin key")
	ErrViewNotAllowed = errors.New("view not allowed for current role")
	ErrNotPermitted   = errors.New("operation not permitted for current role")
)

// allowedViews gates navigation per role. Guests sit on the entry gate and
// cannot navigate at all.
var allowedViews = map[types.Role][]types.View{
	types.RoleUser:  {types.ViewHome, types.ViewEarn, types.ViewWallet},
	types.RoleAdmin: {types.ViewAdminDashboard, types.ViewAdminUsers, types.ViewAdminPayouts, types.ViewAdminTasks},
}

// Machine is the navigation controller: a role/view pair cycling between
// guest, user and admin for the lifetime of the process. Each role change
// rotates the session id, which invalidates tokens minted for the old role.
type Machine struct {
	mu           sync.RWMutex
	role         types.Role
	view         types.View
	id           uuid.UUID
	adminKeyHash []byte
	logger       *zap.Logger
}

// NewMachine hashes the configured admin key up front so only the hash is
// retained for later comparisons.
func NewMachine(adminKey string, logger *zap.Logger) (*Machine, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(adminKey), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "bcrypt.GenerateFromPassword failed: ")
	}
	return &Machine{
		role:         types.RoleGuest,
		view:         types.ViewHome,
		id:           uuid.New(),
		adminKeyHash: hash,
		logger:       logger,
	}, nil
}

func (m *Machine) Role() types.Role {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.role
}

func (m *Machine) View() types.View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.view
}

func (m *Machine) State() (types.Role, types.View) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.role, m.view
}

// ID identifies the current role epoch.
func (m *Machine) ID() uuid.UUID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.id
}

// EnterPortal moves a guest into the user portal. The view stays on the
// default.
func (m *Machine) EnterPortal() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.role != types.RoleGuest {
		return ErrNotPermitted
	}
	m.role = types.RoleUser
	m.id = uuid.New()
	m.logger.Info("portal entered")
	return nil
}

// AdminLogin checks the submitted key against the stored hash. On a mismatch
// the role and view are left untouched.
func (m *Machine) AdminLogin(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.role != types.RoleGuest {
		return ErrNotPermitted
	}
	if err := bcrypt.CompareHashAndPassword(m.adminKeyHash, []byte(key)); err != nil {
		m.logger.Warn("admin login rejected")
		return ErrBadCredential
	}
	m.role = types.RoleAdmin
	m.view = types.ViewAdminDashboard
	m.id = uuid.New()
	m.logger.Info("admin logged in")
	return nil
}

// Navigate switches the view within the set permitted for the current role.
func (m *Machine) Navigate(view types.View) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range allowedViews[m.role] {
		if v == view {
			m.view = view
			return nil
		}
	}
	return ErrViewNotAllowed
}

// Logout drops back to the guest gate from any role. Callers are expected to
// reset session-scoped state alongside.
func (m *Machine) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.role = types.RoleGuest
	m.view = types.ViewHome
	m.id = uuid.New()
	m.logger.Info("logged out")
}

// Matches reports whether a token's role and session id still describe the
// machine's current state.
func (m *Machine) Matches(role types.Role, id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.role == role && m.id.String() == id
}
