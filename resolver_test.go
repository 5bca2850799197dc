package authcore

import (
	"context"
	"testing"

	"github.com/gemdesk/authcore/permission"
)

func resolverClient(t *testing.T) *Client {
	t.Helper()
	c := newTestClient(t, newBackend(t, twoShopBackend(t)).URL)
	mustLogin(t, c)
	if err := c.SwitchShop(context.Background(), "shop-a"); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCanDefaultDeny(t *testing.T) {
	c := resolverClient(t)

	if !c.Can(permission.SalesView) {
		t.Fatal("expected granted key to allow")
	}
	if c.Can(permission.SettingsEdit) {
		t.Fatal("expected ungranted key to deny")
	}
	// A key the server never declared resolves false, never an error.
	if c.Can("nonexistent.key") {
		t.Fatal("expected unregistered key to deny")
	}
}

func TestCanAnySemantics(t *testing.T) {
	c := resolverClient(t)

	if !c.CanAny(permission.SettingsEdit, permission.SalesView) {
		t.Fatal("expected any-of with one grant to allow")
	}
	if c.CanAny(permission.SettingsEdit, permission.ReportsView) {
		t.Fatal("expected any-of with no grants to deny")
	}
	if c.CanAny() {
		t.Fatal("expected empty any-of to deny")
	}
}

func TestCanAllSemantics(t *testing.T) {
	c := resolverClient(t)

	if !c.CanAll(permission.SalesView, permission.SalesCreate) {
		t.Fatal("expected all-of with every grant to allow")
	}
	if c.CanAll(permission.SalesView, permission.SettingsEdit) {
		t.Fatal("expected all-of with a missing grant to deny")
	}
	// Vacuous truth: a screen with no requirements stays reachable.
	if !c.CanAll() {
		t.Fatal("expected empty all-of to allow")
	}
}

func TestEffectivePermissionsProjection(t *testing.T) {
	c := resolverClient(t)

	perms := c.EffectivePermissions()
	if len(perms) != 2 {
		t.Fatalf("expected 2 granted keys, got %v", perms)
	}
	if !perms[permission.SalesView] || !perms[permission.SalesCreate] {
		t.Fatalf("expected sales grants, got %v", perms)
	}
	// Absent keys read false by map semantics.
	if perms[permission.ReportsView] {
		t.Fatal("expected ungranted key absent from projection")
	}
}

func TestRoleHelpers(t *testing.T) {
	c := resolverClient(t)

	// The fixture user is a manager: none of the admin helpers match.
	if c.IsSuperAdmin() || c.IsOrgAdmin() || c.IsShopAdmin() {
		t.Fatal("expected no admin role for manager")
	}

	anon := newTestClient(t, "http://localhost:9")
	if anon.IsSuperAdmin() {
		t.Fatal("expected no role while anonymous")
	}
}
