package auth

import (
	"fmt"

	"go-wiki-store/internal/logger"

	"github.com/casbin/casbin/v2"
)

// DefaultPolicies are the baseline rules: anyone may read pages, register
// and authenticate; editors may also create, change and delete pages.
var DefaultPolicies = [][]string{
	{RoleAnonymous, "/pages/", "GET"},
	{RoleAnonymous, "/pages/:title/", "GET"},
	{RoleAnonymous, "/auth/user/", "POST"},
	{RoleAnonymous, "/auth/token/", "POST"},

	{RoleEditor, "/pages/", "POST"},
	{RoleEditor, "/pages/:title/", "PUT"},
	{RoleEditor, "/pages/:title/", "DELETE"},
}

// SeedDefaultPolicies ensures that the application has a baseline set of authorization rules.
// It checks if each default policy exists before adding it, making the operation idempotent
// and safe to run on every application start.
func SeedDefaultPolicies(e casbin.IEnforcer, log logger.Logger) {
	log.Info("Seeding default authorization policies...")

	for _, p := range DefaultPolicies {
		if has, _ := e.HasPolicy(p); !has {
			if _, err := e.AddPolicy(p); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add policy %v", p))
			}
		}
	}

	// Granting the 'editor' role all permissions of the 'anonymous' role.
	if has, _ := e.HasRoleForUser(RoleEditor, RoleAnonymous); !has {
		if _, err := e.AddRoleForUser(RoleEditor, RoleAnonymous); err != nil {
			log.Error(err, "Failed to add role 'editor' -> 'anonymous'")
		}
	}
	log.Info("Policy seeding complete.")
}
