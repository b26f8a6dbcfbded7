package session

import (
	"testing"

	"github.com/earningbd/rewardhub/internal/rewardhub/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAdminKey = "admin123"

func newTestMachine(t *testing.T) *Machine {
	m, err := NewMachine(testAdminKey, zap.NewNop())
	require.NoError(t, err)
	return m
}

func TestInitialState(t *testing.T) {
	m := newTestMachine(t)
	role, view := m.State()
	assert.Equal(t, types.RoleGuest, role)
	assert.Equal(t, types.ViewHome, view)
}

func TestEnterPortal(t *testing.T) {
	m := newTestMachine(t)
	require.NoError(t, m.EnterPortal())

	role, view := m.State()
	assert.Equal(t, types.RoleUser, role)
	assert.Equal(t, types.ViewHome, view, "entering the portal keeps the default view")

	assert.ErrorIs(t, m.EnterPortal(), ErrNotPermitted)
}

func TestAdminLogin(t *testing.T) {
	t.Run("correct key", func(t *testing.T) {
		m := newTestMachine(t)
		require.NoError(t, m.AdminLogin(testAdminKey))
		role, view := m.State()
		assert.Equal(t, types.RoleAdmin, role)
		assert.Equal(t, types.ViewAdminDashboard, view)
	})

	t.Run("wrong key leaves state untouched", func(t *testing.T) {
		m := newTestMachine(t)
		err := m.AdminLogin("admin1234")
		assert.ErrorIs(t, err, ErrBadCredential)
		role, view := m.State()
		assert.Equal(t, types.RoleGuest, role)
		assert.Equal(t, types.ViewHome, view)
	})

	t.Run("case sensitive", func(t *testing.T) {
		m := newTestMachine(t)
		assert.ErrorIs(t, m.AdminLogin("ADMIN123"), ErrBadCredential)
	})

	t.Run("not from inside the portal", func(t *testing.T) {
		m := newTestMachine(t)
		require.NoError(t, m.EnterPortal())
		assert.ErrorIs(t, m.AdminLogin(testAdminKey), ErrNotPermitted)
	})
}

func TestNavigate(t *testing.T) {
	testCases := []struct {
		name    string
		prepare func(m *Machine) error
		view    types.View
		wantErr error
	}{
		{name: "guest cannot navigate", prepare: func(m *Machine) error { return nil }, view: types.ViewEarn, wantErr: ErrViewNotAllowed},
		{name: "user to earn", prepare: func(m *Machine) error { return m.EnterPortal() }, view: types.ViewEarn},
		{name: "user to wallet", prepare: func(m *Machine) error { return m.EnterPortal() }, view: types.ViewWallet},
		{name: "user to home", prepare: func(m *Machine) error { return m.EnterPortal() }, view: types.ViewHome},
		{name: "user to admin view", prepare: func(m *Machine) error { return m.EnterPortal() }, view: types.ViewAdminPayouts, wantErr: ErrViewNotAllowed},
		{name: "admin to payouts", prepare: func(m *Machine) error { return m.AdminLogin(testAdminKey) }, view: types.ViewAdminPayouts},
		{name: "admin to users", prepare: func(m *Machine) error { return m.AdminLogin(testAdminKey) }, view: types.ViewAdminUsers},
		{name: "admin to tasks", prepare: func(m *Machine) error { return m.AdminLogin(testAdminKey) }, view: types.ViewAdminTasks},
		{name: "admin to user view", prepare: func(m *Machine) error { return m.AdminLogin(testAdminKey) }, view: types.ViewWallet, wantErr: ErrViewNotAllowed},
		{name: "unknown view", prepare: func(m *Machine) error { return m.EnterPortal() }, view: types.View("leaderboard"), wantErr: ErrViewNotAllowed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestMachine(t)
			require.NoError(t, tc.prepare(m))
			_, before := m.State()

			err := m.Navigate(tc.view)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				_, after := m.State()
				assert.Equal(t, before, after, "a rejected navigation must not change the view")
				return
			}
			require.NoError(t, err)
			_, after := m.State()
			assert.Equal(t, tc.view, after)
		})
	}
}

func TestLogout(t *testing.T) {
	m := newTestMachine(t)
	require.NoError(t, m.AdminLogin(testAdminKey))
	require.NoError(t, m.Navigate(types.ViewAdminPayouts))

	m.Logout()

	role, view := m.State()
	assert.Equal(t, types.RoleGuest, role)
	assert.Equal(t, types.ViewHome, view)

	// the machine cycles: a fresh portal entry works again
	assert.NoError(t, m.EnterPortal())
}

func TestSessionIDRotation(t *testing.T) {
	m := newTestMachine(t)
	guestID := m.ID()

	require.NoError(t, m.EnterPortal())
	userID := m.ID()
	assert.NotEqual(t, guestID, userID)

	assert.True(t, m.Matches(types.RoleUser, userID.String()))
	assert.False(t, m.Matches(types.RoleAdmin, userID.String()))
	assert.False(t, m.Matches(types.RoleUser, guestID.String()))

	m.Logout()
	assert.False(t, m.Matches(types.RoleUser, userID.String()),
		"a pre-logout session id must stop matching")
}
