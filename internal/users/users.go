// Package users handles registration, roles, and ban status on top of
// storage, writing an audit entry for every change.
package users

import (
	"errors"
	"fmt"
	"log"

	"contentbot/internal/storage"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
	RoleGuest = "guest"

	StatusActive = "active"
	StatusBanned = "banned"
)

func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser || role == RoleGuest
}

type Manager struct {
	store *storage.Storage
}

func NewManager(store *storage.Storage) *Manager {
	return &Manager{store: store}
}

// Register creates the user if needed. A repeat registration only
// refreshes the stored name and writes no audit entry.
func (m *Manager) Register(userID int64, name, role string) error {
	if role == "" {
		role = RoleUser
	}
	_, err := m.store.GetUser(userID)
	if err == nil {
		return m.store.CreateUser(userID, name, role)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	if err := m.store.CreateUser(userID, name, role); err != nil {
		return err
	}
	action := fmt.Sprintf("User registered: name='%s', role='%s'", name, role)
	if err := m.store.AppendAudit(userID, action); err != nil {
		return err
	}
	log.Printf("User %d (%s) registered with role '%s'", userID, name, role)
	return nil
}

// ChangeRole moves the user to newRole. adminID 0 means the change was
// not initiated by a specific admin (startup promotion).
func (m *Manager) ChangeRole(userID int64, newRole string, adminID int64) error {
	if !IsValidRole(newRole) {
		return fmt.Errorf("unknown role %q", newRole)
	}
	u, err := m.store.GetUser(userID)
	if err != nil {
		return err
	}
	if err := m.store.SetUserRole(userID, newRole); err != nil {
		return err
	}
	action := fmt.Sprintf("Role changed: '%s' → '%s'%s", u.Role, newRole, byAdmin(adminID))
	return m.store.AppendAudit(userID, action)
}

func (m *Manager) Ban(userID, adminID int64) error {
	if err := m.store.SetUserStatus(userID, StatusBanned); err != nil {
		return err
	}
	return m.store.AppendAudit(userID, "User banned"+byAdmin(adminID))
}

func (m *Manager) Unban(userID, adminID int64) error {
	if err := m.store.SetUserStatus(userID, StatusActive); err != nil {
		return err
	}
	return m.store.AppendAudit(userID, "User unbanned"+byAdmin(adminID))
}

// IsBanned reports whether the user exists and is banned. Unknown users
// are not banned.
func (m *Manager) IsBanned(userID int64) bool {
	u, err := m.store.GetUser(userID)
	if err != nil {
		return false
	}
	return u.Status == StatusBanned
}

// IsAdmin reports whether the user exists and holds the admin role.
func (m *Manager) IsAdmin(userID int64) bool {
	u, err := m.store.GetUser(userID)
	if err != nil {
		return false
	}
	return u.Role == RoleAdmin
}

func (m *Manager) Info(userID int64) (*storage.User, error) {
	return m.store.GetUser(userID)
}

func (m *Manager) List() ([]storage.User, error) {
	return m.store.ListUsers()
}

func (m *Manager) RecentAudit(limit int) ([]storage.AuditEntry, error) {
	return m.store.RecentAudit(limit)
}

// EnsureAdmins registers or promotes every configured admin ID. Called
// once at startup so ADMIN_USER_IDS always maps to admin-role records.
func (m *Manager) EnsureAdmins(ids []int64) error {
	for _, id := range ids {
		u, err := m.store.GetUser(id)
		if errors.Is(err, storage.ErrNotFound) {
			if err := m.Register(id, "", RoleAdmin); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
		if u.Role != RoleAdmin {
			if err := m.ChangeRole(id, RoleAdmin, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

func byAdmin(adminID int64) string {
	if adminID == 0 {
		return ""
	}
	return fmt.Sprintf(" by admin %d", adminID)
}
